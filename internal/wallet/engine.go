package wallet

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GiorgiUbiria/ewallet/internal/models"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200

	// Column widths of the ledger table, counted in characters.
	MaxDescriptionLength    = 500
	MaxIdempotencyKeyLength = 128
)

// Engine moves funds between accounts and drives the money-request
// lifecycle. Every balance change goes through it.
type Engine struct {
	tx       TxRunner
	accounts AccountRepository
	ledger   LedgerRepository
	events   EventRecorder
	now      func() time.Time
}

func NewEngine(tx TxRunner, accounts AccountRepository, ledger LedgerRepository, events EventRecorder) *Engine {
	if events == nil {
		events = nopRecorder{}
	}
	return &Engine{
		tx:       tx,
		accounts: accounts,
		ledger:   ledger,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type TransferInput struct {
	PayerID         uint64
	PayeeIdentifier string
	Amount          int64
	Description     string
	Method          string
	IdempotencyKey  string
}

type TransferResult struct {
	Transaction *models.Transaction
	NewBalance  int64
	// Replayed is set when an earlier transfer with the same idempotency
	// key was returned instead of moving funds again.
	Replayed bool
	// Request is the money request settled by this transfer, if any.
	Request *models.Transaction
}

// Transfer moves amount from the payer to the account named by
// PayeeIdentifier and writes exactly one payment record. Either all of it
// commits or none of it does.
func (e *Engine) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	method, err := normalizeMethod(in.Method)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if utf8.RuneCountInString(key) > MaxIdempotencyKeyLength {
		return nil, ErrInvalidIdempotency
	}

	payee, err := e.resolve(ctx, in.PayeeIdentifier)
	if err != nil {
		return nil, err
	}
	if payee.ID == in.PayerID {
		return nil, ErrSelfTransfer
	}

	if key != "" {
		res, err := e.replay(ctx, in.PayerID, payee.ID, in.Amount, key)
		if err != nil || res != nil {
			return res, err
		}
	}

	rec := &models.Transaction{
		SenderID:    in.PayerID,
		ReceiverID:  payee.ID,
		Kind:        models.KindPayment,
		Amount:      in.Amount,
		Status:      models.StatusSuccess,
		Method:      method,
		Description: description,
	}
	if key != "" {
		rec.IdempotencyKey = &key
	}

	var balance int64
	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := e.transferLocked(ctx, rec)
		balance = b
		return err
	})
	if err != nil {
		if key != "" && errors.Is(err, ErrDuplicateIdempotencyKey) {
			res, rerr := e.replay(ctx, in.PayerID, payee.ID, in.Amount, key)
			if rerr != nil {
				return nil, rerr
			}
			if res != nil {
				return res, nil
			}
		}
		return nil, storageError(err)
	}

	rec.Receiver = payee
	return &TransferResult{Transaction: rec, NewBalance: balance}, nil
}

// transferLocked performs the balance moves and the ledger write. It must
// run inside WithinTx; rec is filled with the stored record.
func (e *Engine) transferLocked(ctx context.Context, rec *models.Transaction) (int64, error) {
	locked, err := e.accounts.LockForUpdate(ctx, rec.SenderID, rec.ReceiverID)
	if err != nil {
		return 0, err
	}
	payer, ok := locked[rec.SenderID]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if _, ok := locked[rec.ReceiverID]; !ok {
		return 0, ErrAccountNotFound
	}
	if payer.Balance < rec.Amount {
		return 0, ErrInsufficientBalance
	}

	balance, err := e.accounts.AdjustBalance(ctx, rec.SenderID, -rec.Amount)
	if err != nil {
		return 0, err
	}
	if _, err := e.accounts.AdjustBalance(ctx, rec.ReceiverID, rec.Amount); err != nil {
		return 0, err
	}
	if err := e.ledger.Create(ctx, rec); err != nil {
		return 0, err
	}

	err = e.events.Record(ctx, EventTransferCompleted, TransferEvent{
		TransactionID: rec.ID,
		SenderID:      rec.SenderID,
		ReceiverID:    rec.ReceiverID,
		Amount:        rec.Amount,
		Method:        rec.Method,
		RequestID:     rec.RequestID,
		OccurredAt:    e.now(),
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (e *Engine) replay(ctx context.Context, payerID, payeeID uint64, amount int64, key string) (*TransferResult, error) {
	prev, err := e.ledger.FindByIdempotencyKey(ctx, payerID, key)
	if err != nil {
		return nil, storageError(err)
	}
	if prev == nil {
		return nil, nil
	}
	if prev.ReceiverID != payeeID || prev.Amount != amount {
		return nil, ErrIdempotencyConflict
	}
	payer, err := e.accounts.GetByID(ctx, payerID)
	if err != nil {
		return nil, storageError(err)
	}
	return &TransferResult{Transaction: prev, NewBalance: payer.Balance, Replayed: true}, nil
}

// resolve looks an account up by numeric id or, failing that, by
// case-insensitive email.
func (e *Engine) resolve(ctx context.Context, identifier string) (*models.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrPayeeRequired
	}

	var (
		acct *models.Account
		err  error
	)
	if id, perr := strconv.ParseUint(identifier, 10, 64); perr == nil {
		acct, err = e.accounts.GetByID(ctx, id)
	} else {
		acct, err = e.accounts.FindByEmail(ctx, strings.ToLower(identifier))
	}
	if err != nil {
		return nil, storageError(err)
	}
	return acct, nil
}

// Account returns the current state of an account.
func (e *Engine) Account(ctx context.Context, id uint64) (*models.Account, error) {
	acct, err := e.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return acct, nil
}

type HistoryPage struct {
	// Limit defaults to DefaultHistoryLimit and is capped at MaxHistoryLimit.
	Limit int
	// Before, when set, is the id of the oldest record already seen.
	Before uint64
}

type HistoryResult struct {
	Records []models.Transaction
	// NextBefore is the cursor for the following page; zero when the
	// account has no older records.
	NextBefore uint64
}

// History lists records where the account is sender or receiver, newest
// first, one page at a time.
func (e *Engine) History(ctx context.Context, accountID uint64, page HistoryPage) (*HistoryResult, error) {
	limit := page.Limit
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	recs, err := e.ledger.ListForAccount(ctx, accountID, limit+1, page.Before)
	if err != nil {
		return nil, storageError(err)
	}
	res := &HistoryResult{Records: recs}
	if len(recs) > limit {
		res.Records = recs[:limit]
		res.NextBefore = recs[limit-1].ID
	}
	return res, nil
}

// Summary aggregates the account's entire ledger, not just one page.
func (e *Engine) Summary(ctx context.Context, accountID uint64) (LedgerSummary, error) {
	sum, err := e.ledger.Summarize(ctx, accountID)
	if err != nil {
		return LedgerSummary{}, storageError(err)
	}
	return sum, nil
}

func normalizeMethod(m string) (string, error) {
	switch m = strings.ToLower(strings.TrimSpace(m)); m {
	case "":
		return models.MethodOnline, nil
	case models.MethodOnline, models.MethodOffline, models.MethodQR:
		return m, nil
	default:
		return "", ErrInvalidMethod
	}
}

func normalizeDescription(d string) (string, error) {
	d = strings.TrimSpace(d)
	if utf8.RuneCountInString(d) > MaxDescriptionLength {
		return "", ErrDescriptionTooLong
	}
	return d, nil
}
