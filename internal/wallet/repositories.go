package wallet

import (
	"context"
	"time"

	"github.com/GiorgiUbiria/ewallet/internal/models"
)

// TxRunner runs fn inside one atomic unit of work. Repositories called with
// the context passed to fn take part in that unit.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AccountRepository interface {
	GetByID(ctx context.Context, id uint64) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// LockForUpdate locks the given accounts in ascending id order and
	// returns the ones that exist.
	LockForUpdate(ctx context.Context, ids ...uint64) (map[uint64]*models.Account, error)
	// AdjustBalance adds delta to the balance and returns the new value. It
	// fails with ErrInsufficientBalance rather than go below zero.
	AdjustBalance(ctx context.Context, id uint64, delta int64) (int64, error)
}

type RequestFilter struct {
	RequesterID uint64
	PayerID     uint64
	Status      models.TxStatus
}

// LedgerSummary aggregates an account's whole ledger. Sent and received
// sums only count completed payments.
type LedgerSummary struct {
	Total          int64
	SentAmount     int64
	ReceivedAmount int64
	Rejected       int64
	Pending        int64
}

type LedgerRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint64) (*models.Transaction, error)
	LockByID(ctx context.Context, id uint64) (*models.Transaction, error)
	// FindByIdempotencyKey returns nil, nil when the key is unknown.
	FindByIdempotencyKey(ctx context.Context, senderID uint64, key string) (*models.Transaction, error)
	// UpdateStatus moves a record from one status to another and fails with
	// ErrInvalidState if the record is no longer in from.
	UpdateStatus(ctx context.Context, id uint64, from, to models.TxStatus, at time.Time) error
	// ListForAccount returns records where the account is sender or
	// receiver, newest (highest id) first. A non-zero beforeID restricts the
	// page to older records.
	ListForAccount(ctx context.Context, accountID uint64, limit int, beforeID uint64) ([]models.Transaction, error)
	// Summarize aggregates every record of the account.
	Summarize(ctx context.Context, accountID uint64) (LedgerSummary, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]models.Transaction, error)
}

// EventRecorder stores an event inside the current unit of work.
type EventRecorder interface {
	Record(ctx context.Context, eventType string, payload any) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, any) error { return nil }
