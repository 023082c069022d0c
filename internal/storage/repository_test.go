package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/ports"
	"homeboard/internal/sources"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "homeboard.db")
	repo, err := NewSQLiteRepository(path, time.UTC, log.New(log.Config{Output: io.Discard}))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Fatalf("versions %d %d", v1, v2)
	}
}

func TestJournals(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	var ids []string
	for i, title := range []string{"a", "", "c", "d"} {
		j, err := repo.CreateJournal(ctx, "u1", title, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, j.ID)
	}
	_, _ = repo.CreateJournal(ctx, "u2", "other", base)

	got, err := repo.ListJournals(ctx, "u1", ports.JournalQuery{
		Sort:     ports.Sort{Field: "created_at", Direction: ports.Desc},
		PageSize: 3,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].Title != "d" || got[2].Title != "" {
		t.Fatalf("unexpected journals: %+v", got)
	}

	all, _ := repo.ListJournals(ctx, "u1", ports.JournalQuery{Sort: ports.Sort{Direction: ports.Asc}})
	if len(all) != 4 || all[0].ID != ids[0] {
		t.Fatalf("unexpected asc list: %+v", all)
	}

	if _, err := repo.GetJournal(ctx, "u2", ids[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if j, err := repo.GetJournal(ctx, "u1", ids[0]); err != nil || j.Title != "a" {
		t.Fatalf("get: %+v %v", j, err)
	}
	if _, err := repo.ListJournals(ctx, "u1", ports.JournalQuery{Sort: ports.Sort{Field: "title"}}); !errors.Is(err, sources.ErrUnsupportedSort) {
		t.Fatalf("expected ErrUnsupportedSort, got %v", err)
	}

	none, err := repo.ListJournals(ctx, "nobody", ports.JournalQuery{})
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v %v", none, err)
	}
}

func TestGoalsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for _, title := range []string{"run", "read", "save", "sleep"} {
		if _, err := repo.CreateGoal(ctx, "u1", title); err != nil {
			t.Fatalf("create goal: %v", err)
		}
	}
	goals, err := repo.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 4 || goals[0].Title != "run" || goals[3].Title != "sleep" {
		t.Fatalf("unexpected goals: %+v", goals)
	}
}

func TestStreakDays(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	mon := core.NewDate(2025, 1, 13, time.UTC)

	for _, d := range []core.Date{mon, mon, mon.AddDays(1), mon.AddDays(-3)} {
		if err := repo.RecordStreakDay(ctx, "u1", d); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	days, err := repo.ListStreakDays(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(days) != 3 || !days[0].Equal(mon.AddDays(-3)) || !days[2].Equal(mon.AddDays(1)) {
		t.Fatalf("unexpected days: %v", days)
	}
	if n := core.CurrentStreak(days, mon.AddDays(1)); n != 2 {
		t.Fatalf("streak = %d, want 2", n)
	}
	if err := repo.RecordStreakDay(ctx, "u1", core.Date{}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTransactionsHalfOpenRange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	tr, _ := core.ResolveTimeRange(core.PeriodThisMonth, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

	for _, tx := range []core.Transaction{
		{Amount: core.Money{Cents: 1050}, Type: core.Expense, Timestamp: tr.Start},
		{Amount: core.Money{Cents: 520}, Type: core.Expense, Timestamp: tr.End.Add(-time.Millisecond)},
		{Amount: core.Money{Cents: 9999}, Type: core.Expense, Timestamp: tr.End},
		{Amount: core.Money{Cents: 30000}, Type: core.Income, Timestamp: tr.Start.Add(time.Hour)},
	} {
		if _, err := repo.AddTransaction(ctx, "u1", tx); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	exp, err := repo.ListTransactions(ctx, "u1", ports.TransactionQuery{Range: tr, Type: core.Expense})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(exp) != 2 {
		t.Fatalf("got %d expenses: %+v", len(exp), exp)
	}
	if got := core.FormatAmount(core.Aggregate(exp, core.Expense)); got != "16.00" {
		t.Fatalf("total = %s", got)
	}

	both, _ := repo.ListTransactions(ctx, "u1", ports.TransactionQuery{Range: tr})
	if len(both) != 3 {
		t.Fatalf("got %d transactions without type filter", len(both))
	}

	if _, err := repo.AddTransaction(ctx, "u1", core.Transaction{Type: "gift", Timestamp: tr.Start}); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}
