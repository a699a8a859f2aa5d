package events

import (
	"context"

	"github.com/GiorgiUbiria/ewallet/internal/logger"
	"github.com/GiorgiUbiria/ewallet/internal/models"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, event models.OutboxEvent) error
}

// LogPublisher writes events to the application log. It is used when no
// broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event models.OutboxEvent) error {
	logger.Log.Info("wallet event",
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", event.Type),
		zap.String("payload", event.Payload),
	)
	return nil
}
