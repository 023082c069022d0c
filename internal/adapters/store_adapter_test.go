package adapters

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/ports"
	"homeboard/internal/services"
	"homeboard/internal/sources/memory"
)

func setup(t *testing.T) (*StoreAdapter, *memory.Store, context.Context) {
	t.Helper()
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	resolver := core.Resolver{Now: func() time.Time { return now }, Location: time.UTC}
	store := memory.New(time.UTC)
	svc := services.NewActivityService(store, nil, log.New(log.Config{Output: io.Discard}))
	ctx := auth.WithUser(context.Background(), auth.User{ID: "u1", Name: "Una"})
	return NewStoreAdapter(store, svc, resolver), store, ctx
}

func TestEnvelopesRequireUser(t *testing.T) {
	a, _, _ := setup(t)
	ctx := context.Background()

	if env := a.ListJournals(ctx, ports.JournalQuery{}); !errors.Is(env.Err, auth.ErrUnauthenticated) {
		t.Errorf("journals: %+v", env)
	}
	if env := a.GetStreak(ctx); !errors.Is(env.Err, auth.ErrUnauthenticated) {
		t.Errorf("streak: %+v", env)
	}
	if env := a.ListTransactions(ctx, ports.TransactionQuery{}); !errors.Is(env.Err, auth.ErrUnauthenticated) {
		t.Errorf("transactions: %+v", env)
	}
	if env := a.GetGoals(ctx); !errors.Is(env.Err, auth.ErrUnauthenticated) {
		t.Errorf("goals: %+v", env)
	}
	if err := a.RecordActivity(ctx, core.NewDate(2025, 1, 15, time.UTC)); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("record: %v", err)
	}
}

func TestGetStreak(t *testing.T) {
	a, _, ctx := setup(t)

	if env := a.GetStreak(ctx); env.Present || env.Err != nil {
		t.Fatalf("no days should be absent, got %+v", env)
	}

	today := core.NewDate(2025, 1, 15, time.UTC)
	for _, d := range []core.Date{today, today.AddDays(-1), today.AddDays(-2), today.AddDays(-5)} {
		if err := a.RecordActivity(ctx, d); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	env := a.GetStreak(ctx)
	if core.Classify(env, nil) != core.StatePopulated {
		t.Fatalf("expected populated, got %+v", env)
	}
	if env.Data.Count != 3 || len(env.Data.Items) != 4 {
		t.Fatalf("unexpected snapshot %+v", env.Data)
	}
}

func TestListsAreScopedToUser(t *testing.T) {
	a, store, ctx := setup(t)
	store.AddGoal("u1", "mine")
	store.AddGoal("u2", "theirs")
	j := store.AddJournal("u2", "private", time.Now())

	env := a.GetGoals(ctx)
	if env.Err != nil || len(env.Data) != 1 || env.Data[0].Title != "mine" {
		t.Fatalf("unexpected goals %+v", env)
	}
	if _, err := a.GetJournal(ctx, j.ID); err == nil {
		t.Fatal("journal of another user must not be visible")
	}
	if env := a.ListJournals(ctx, ports.JournalQuery{PageSize: 3}); env.Err != nil || len(env.Data) != 0 {
		t.Fatalf("unexpected journals %+v", env)
	}
	if err := a.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
