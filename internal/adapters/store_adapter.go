package adapters

import (
	"context"
	"fmt"

	"homeboard/internal/auth"
	"homeboard/internal/core"
	"homeboard/internal/ports"
	"homeboard/internal/sources"
)

// Recorder stores a streak day for a user, directly or through the queue.
type Recorder interface {
	Record(ctx context.Context, userID string, day core.Date) error
}

// StoreAdapter scopes a per-user store to the request's user and reports
// every result as an envelope, so the dashboard ports never see bare errors.
type StoreAdapter struct {
	store    sources.Store
	recorder Recorder
	resolver core.Resolver
}

var (
	_ ports.JournalLister     = (*StoreAdapter)(nil)
	_ ports.StreakReader      = (*StoreAdapter)(nil)
	_ ports.TransactionLister = (*StoreAdapter)(nil)
	_ ports.GoalLister        = (*StoreAdapter)(nil)
	_ ports.ActivityRecorder  = (*StoreAdapter)(nil)
)

func NewStoreAdapter(store sources.Store, recorder Recorder, resolver core.Resolver) *StoreAdapter {
	return &StoreAdapter{store: store, recorder: recorder, resolver: resolver}
}

func userID(ctx context.Context) (string, error) {
	u, ok := auth.UserFrom(ctx)
	if !ok {
		return "", auth.ErrUnauthenticated
	}
	return u.ID, nil
}

func (a *StoreAdapter) ListJournals(ctx context.Context, q ports.JournalQuery) core.Envelope[[]core.JournalSummary] {
	uid, err := userID(ctx)
	if err != nil {
		return core.Fail[[]core.JournalSummary](err)
	}
	journals, err := a.store.ListJournals(ctx, uid, q)
	return core.Wrap(journals, err)
}

// GetJournal looks up a single entry of the current user.
func (a *StoreAdapter) GetJournal(ctx context.Context, id string) (core.JournalSummary, error) {
	uid, err := userID(ctx)
	if err != nil {
		return core.JournalSummary{}, err
	}
	return a.store.GetJournal(ctx, uid, id)
}

// GetStreak reports the current streak and the recorded days. A user with
// no recorded days has no snapshot.
func (a *StoreAdapter) GetStreak(ctx context.Context) core.Envelope[core.StreakSnapshot] {
	uid, err := userID(ctx)
	if err != nil {
		return core.Fail[core.StreakSnapshot](err)
	}
	days, err := a.store.ListStreakDays(ctx, uid)
	if err != nil {
		return core.Fail[core.StreakSnapshot](fmt.Errorf("list streak days: %w", err))
	}
	if len(days) == 0 {
		return core.Absent[core.StreakSnapshot]()
	}

	items := make([]core.StreakRecord, len(days))
	for i, d := range days {
		items[i] = core.StreakRecord{Date: d}
	}
	return core.Ok(core.StreakSnapshot{
		Count: core.CurrentStreak(days, a.resolver.Today()),
		Items: items,
	})
}

func (a *StoreAdapter) ListTransactions(ctx context.Context, q ports.TransactionQuery) core.Envelope[[]core.Transaction] {
	uid, err := userID(ctx)
	if err != nil {
		return core.Fail[[]core.Transaction](err)
	}
	txs, err := a.store.ListTransactions(ctx, uid, q)
	return core.Wrap(txs, err)
}

func (a *StoreAdapter) GetGoals(ctx context.Context) core.Envelope[[]core.GoalSummary] {
	uid, err := userID(ctx)
	if err != nil {
		return core.Fail[[]core.GoalSummary](err)
	}
	goals, err := a.store.ListGoals(ctx, uid)
	return core.Wrap(goals, err)
}

func (a *StoreAdapter) RecordActivity(ctx context.Context, day core.Date) error {
	uid, err := userID(ctx)
	if err != nil {
		return err
	}
	return a.recorder.Record(ctx, uid, day)
}

// Ping reports whether the underlying store is reachable.
func (a *StoreAdapter) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}
