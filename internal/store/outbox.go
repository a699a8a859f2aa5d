package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Record writes an event in the caller's transaction, if any.
func (r *OutboxRepository) Record(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	ev := models.OutboxEvent{
		ID:      uuid.New(),
		Type:    eventType,
		Payload: string(body),
		Status:  models.OutboxPending,
	}
	if err := conn(ctx, r.db).Create(&ev).Error; err != nil {
		return fmt.Errorf("record %s: %w", eventType, translate(err))
	}
	return nil
}

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	var out []models.OutboxEvent
	err := conn(ctx, r.db).
		Where("status = ?", models.OutboxPending).
		Order("created_at").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("fetch pending events: %w", err)
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	err := conn(ctx, r.db).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": models.OutboxPublished, "published_at": now}).Error
	if err != nil {
		return fmt.Errorf("mark event %s published: %w", id, err)
	}
	return nil
}

// MarkFailed counts a failed attempt. After maxAttempts the event is parked
// as failed and no longer fetched.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error {
	if len(reason) > 500 {
		reason = reason[:500]
	}
	err := conn(ctx, r.db).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
			"status":     gorm.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE status END", maxAttempts, models.OutboxFailed),
		}).Error
	if err != nil {
		return fmt.Errorf("mark event %s failed: %w", id, err)
	}
	return nil
}
