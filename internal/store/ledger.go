package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(ctx context.Context, tx *models.Transaction) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Create(tx).Error
	if err != nil {
		return fmt.Errorf("create transaction: %w", translate(err))
	}
	return nil
}

func (r *LedgerRepository) GetByID(ctx context.Context, id uint64) (*models.Transaction, error) {
	var t models.Transaction
	if err := conn(ctx, r.db).First(&t, id).Error; err != nil {
		return nil, ledgerErr(err)
	}
	return &t, nil
}

func (r *LedgerRepository) LockByID(ctx context.Context, id uint64) (*models.Transaction, error) {
	var t models.Transaction
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if err != nil {
		return nil, ledgerErr(err)
	}
	return &t, nil
}

func (r *LedgerRepository) FindByIdempotencyKey(ctx context.Context, senderID uint64, key string) (*models.Transaction, error) {
	var t models.Transaction
	err := conn(ctx, r.db).
		Where("sender_id = ? AND idempotency_key = ?", senderID, key).
		Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *LedgerRepository) UpdateStatus(ctx context.Context, id uint64, from, to models.TxStatus, at time.Time) error {
	res := conn(ctx, r.db).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "resolved_at": at})
	if res.Error != nil {
		return fmt.Errorf("update status of %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return wallet.ErrInvalidState
	}
	return nil
}

func (r *LedgerRepository) ListForAccount(ctx context.Context, accountID uint64, limit int, beforeID uint64) ([]models.Transaction, error) {
	q := conn(ctx, r.db).
		Preload("Sender").
		Preload("Receiver").
		Where("(sender_id = ? OR receiver_id = ?)", accountID, accountID).
		Order("id DESC")
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []models.Transaction
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", translate(err))
	}
	return out, nil
}

const summaryQuery = `
SELECT
	COUNT(*) AS total,
	COALESCE(SUM(amount) FILTER (WHERE kind = @payment AND status = @success AND sender_id = @id), 0)::bigint AS sent_amount,
	COALESCE(SUM(amount) FILTER (WHERE kind = @payment AND status = @success AND receiver_id = @id), 0)::bigint AS received_amount,
	COUNT(*) FILTER (WHERE status = @rejected) AS rejected,
	COUNT(*) FILTER (WHERE status = @pending) AS pending
FROM transactions
WHERE sender_id = @id OR receiver_id = @id`

func (r *LedgerRepository) Summarize(ctx context.Context, accountID uint64) (wallet.LedgerSummary, error) {
	var sum wallet.LedgerSummary
	err := conn(ctx, r.db).Raw(summaryQuery, map[string]any{
		"id":       accountID,
		"payment":  string(models.KindPayment),
		"success":  string(models.StatusSuccess),
		"rejected": string(models.StatusRejected),
		"pending":  string(models.StatusPending),
	}).Scan(&sum).Error
	if err != nil {
		return wallet.LedgerSummary{}, fmt.Errorf("summarize ledger of %d: %w", accountID, translate(err))
	}
	return sum, nil
}

func (r *LedgerRepository) ListRequests(ctx context.Context, f wallet.RequestFilter) ([]models.Transaction, error) {
	q := conn(ctx, r.db).
		Preload("Sender").
		Preload("Receiver").
		Where("kind = ?", models.KindRequest)
	if f.RequesterID != 0 {
		q = q.Where("sender_id = ?", f.RequesterID)
	}
	if f.PayerID != 0 {
		q = q.Where("receiver_id = ?", f.PayerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var out []models.Transaction
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", translate(err))
	}
	return out, nil
}

func ledgerErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wallet.ErrTransactionNotFound
	}
	return translate(err)
}
