package events

import (
	"context"
	"time"

	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OutboxStore interface {
	FetchPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, maxAttempts int) error
}

type WorkerConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// OutboxWorker drains committed outbox events to a Publisher. Delivery is at
// least once; consumers should dedupe on the message id.
type OutboxWorker struct {
	store     OutboxStore
	publisher Publisher
	cfg       WorkerConfig
	log       *zap.Logger
}

func NewOutboxWorker(store OutboxStore, publisher Publisher, cfg WorkerConfig, log *zap.Logger) *OutboxWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &OutboxWorker{store: store, publisher: publisher, cfg: cfg, log: log}
}

func (w *OutboxWorker) Run(ctx context.Context) {
	w.log.Info("outbox worker started", zap.Duration("interval", w.cfg.Interval))
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			w.process(ctx)
		}
	}
}

func (w *OutboxWorker) process(ctx context.Context) {
	events, err := w.store.FetchPending(ctx, w.cfg.BatchSize)
	if err != nil {
		w.log.Error("failed to fetch pending events", zap.Error(err))
		return
	}
	if len(events) == 0 {
		return
	}

	w.log.Debug("processing outbox events", zap.Int("count", len(events)))

	for _, event := range events {
		if err := w.publisher.Publish(ctx, event); err != nil {
			w.log.Error("failed to publish event",
				zap.String("event_id", event.ID.String()),
				zap.String("event_type", event.Type),
				zap.Int("attempts", event.Attempts+1),
				zap.Error(err),
			)
			if err := w.store.MarkFailed(ctx, event.ID, err.Error(), w.cfg.MaxAttempts); err != nil {
				w.log.Error("failed to record publish failure", zap.String("event_id", event.ID.String()), zap.Error(err))
			}
			continue
		}

		if err := w.store.MarkPublished(ctx, event.ID); err != nil {
			w.log.Error("failed to mark event as published",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
		}
	}
}
