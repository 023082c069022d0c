package worker

import (
	"context"
	"fmt"
	"time"

	"homeboard/internal/amqp"
	"homeboard/internal/log"
	"homeboard/internal/sources"
)

// Consumer delivers activity messages to a handler until ctx is done.
type Consumer interface {
	ConsumeActivity(ctx context.Context, h amqp.Handler) error
}

// ActivityWorker writes the streak days published by the web process.
type ActivityWorker struct {
	store  sources.StreakStore
	loc    *time.Location
	logger *log.Logger
}

func NewActivityWorker(store sources.StreakStore, loc *time.Location, logger *log.Logger) *ActivityWorker {
	if loc == nil {
		loc = time.Local
	}
	return &ActivityWorker{store: store, loc: loc, logger: logger.WithComponent(log.ComponentWorker)}
}

// Handle records the message's day. Errors requeue the message.
func (w *ActivityWorker) Handle(ctx context.Context, msg *amqp.ActivityRecordedMessage) error {
	day, err := msg.Date(w.loc)
	if err != nil {
		return fmt.Errorf("message %s: %w", msg.ID, err)
	}
	if err := w.store.RecordStreakDay(ctx, msg.UserID, day); err != nil {
		return fmt.Errorf("record streak day: %w", err)
	}
	w.logger.InfoContext(ctx, "activity recorded",
		log.FieldOperation, log.OpConsume,
		"message_id", msg.ID,
		log.FieldUserID, msg.UserID,
		"day", day.String(),
		"lag_ms", time.Since(msg.Timestamp).Milliseconds())
	return nil
}

// Run consumes until ctx is cancelled. A cancelled context is a clean stop.
func (w *ActivityWorker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "activity worker started", log.FieldOperation, log.OpStartup)
	err := c.ConsumeActivity(ctx, w.Handle)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "activity worker stopped", log.FieldOperation, log.OpShutdown)
		return nil
	}
	return err
}
