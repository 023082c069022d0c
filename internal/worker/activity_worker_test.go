package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"homeboard/internal/amqp"
	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/sources/memory"
)

func quiet() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

type fakeConsumer struct {
	msgs []*amqp.ActivityRecordedMessage
	errs []error
}

func (f *fakeConsumer) ConsumeActivity(ctx context.Context, h amqp.Handler) error {
	for _, m := range f.msgs {
		f.errs = append(f.errs, h(ctx, m))
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleRecordsDay(t *testing.T) {
	store := memory.New(time.UTC)
	w := NewActivityWorker(store, time.UTC, quiet())
	day := core.NewDate(2025, 1, 15, time.UTC)

	msg := amqp.NewActivityRecordedMessage("u1", day)
	for range 2 {
		if err := w.Handle(context.Background(), msg); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	days, _ := store.ListStreakDays(context.Background(), "u1")
	if len(days) != 1 || !days[0].Equal(day) {
		t.Fatalf("unexpected days: %v", days)
	}
}

func TestHandleRejectsBadDay(t *testing.T) {
	w := NewActivityWorker(memory.New(time.UTC), time.UTC, quiet())
	err := w.Handle(context.Background(), &amqp.ActivityRecordedMessage{ID: "m1", UserID: "u1", Day: "yesterday"})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestRunStopsCleanly(t *testing.T) {
	store := memory.New(time.UTC)
	w := NewActivityWorker(store, time.UTC, quiet())
	day := core.NewDate(2025, 1, 15, time.UTC)
	c := &fakeConsumer{msgs: []*amqp.ActivityRecordedMessage{
		amqp.NewActivityRecordedMessage("u1", day),
		amqp.NewActivityRecordedMessage("u2", day.AddDays(-1)),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx, c); err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, err := range c.errs {
		if err != nil {
			t.Errorf("message %d: %v", i, err)
		}
	}
	if days, _ := store.ListStreakDays(context.Background(), "u2"); len(days) != 1 {
		t.Fatalf("u2 days: %v", days)
	}
}
