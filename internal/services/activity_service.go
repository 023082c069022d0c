package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"homeboard/internal/amqp"
	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/sources"
)

// Publisher hands activity messages to the worker queue.
type Publisher interface {
	PublishActivity(ctx context.Context, msg *amqp.ActivityRecordedMessage) error
}

// ActivityService records streak days. With a publisher the write is
// deferred to the worker; without one, or when publishing fails, the day is
// written directly.
type ActivityService struct {
	store     sources.StreakStore
	publisher Publisher
	logger    *log.Logger
}

func NewActivityService(store sources.StreakStore, publisher Publisher, logger *log.Logger) *ActivityService {
	return &ActivityService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Record stores one streak day for userID.
func (s *ActivityService) Record(ctx context.Context, userID string, day core.Date) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrEmptyID
	}
	if day.IsZero() {
		return core.ErrInvalidDate
	}

	if s.publisher != nil {
		err := s.publisher.PublishActivity(ctx, amqp.NewActivityRecordedMessage(userID, day))
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.WarnContext(ctx, "publish failed, recording directly",
			log.FieldUserID, userID,
			log.FieldError, err.Error())
	}

	if err := s.store.RecordStreakDay(ctx, userID, day); err != nil {
		return fmt.Errorf("record streak day: %w", err)
	}
	return nil
}

// Close closes the publisher when it holds a connection.
func (s *ActivityService) Close() error {
	var errs []error
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
