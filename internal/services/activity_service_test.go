package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"homeboard/internal/amqp"
	"homeboard/internal/core"
	"homeboard/internal/log"
)

type fakeStreakStore struct {
	recorded []string
	err      error
}

func (f *fakeStreakStore) ListStreakDays(context.Context, string) ([]core.Date, error) {
	return nil, nil
}

func (f *fakeStreakStore) RecordStreakDay(_ context.Context, userID string, day core.Date) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, userID+"@"+day.String())
	return nil
}

type fakePublisher struct {
	msgs   []*amqp.ActivityRecordedMessage
	err    error
	closed bool
}

func (f *fakePublisher) PublishActivity(_ context.Context, msg *amqp.ActivityRecordedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func quiet() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

var day = core.NewDate(2025, time.January, 15, time.UTC)

func TestRecordDirectWithoutPublisher(t *testing.T) {
	store := &fakeStreakStore{}
	svc := NewActivityService(store, nil, quiet())

	if err := svc.Record(context.Background(), "u1", day); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(store.recorded) != 1 || store.recorded[0] != "u1@2025-01-15" {
		t.Fatalf("unexpected writes: %v", store.recorded)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecordPublishes(t *testing.T) {
	store := &fakeStreakStore{}
	pub := &fakePublisher{}
	svc := NewActivityService(store, pub, quiet())

	if err := svc.Record(context.Background(), "u1", day); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].UserID != "u1" || pub.msgs[0].Day != "2025-01-15" {
		t.Fatalf("unexpected messages: %+v", pub.msgs)
	}
	if len(store.recorded) != 0 {
		t.Fatalf("published days must not be written directly: %v", store.recorded)
	}

	_ = svc.Close()
	if !pub.closed {
		t.Fatal("publisher should be closed")
	}
}

func TestRecordFallsBackWhenPublishFails(t *testing.T) {
	store := &fakeStreakStore{}
	svc := NewActivityService(store, &fakePublisher{err: amqp.ErrCircuitOpen}, quiet())

	if err := svc.Record(context.Background(), "u1", day); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(store.recorded) != 1 {
		t.Fatalf("expected direct write, got %v", store.recorded)
	}
}

func TestRecordValidation(t *testing.T) {
	svc := NewActivityService(&fakeStreakStore{}, nil, quiet())
	if err := svc.Record(context.Background(), " ", day); !errors.Is(err, core.ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
	if err := svc.Record(context.Background(), "u1", core.Date{}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	boom := errors.New("disk full")
	svc = NewActivityService(&fakeStreakStore{err: boom}, nil, quiet())
	if err := svc.Record(context.Background(), "u1", day); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
