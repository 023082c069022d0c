package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"homeboard/internal/core"
	"homeboard/internal/ports"
	"homeboard/internal/sources"
)

func TestListJournalsNewestFirstWithPageSize(t *testing.T) {
	ctx := context.Background()
	s := New(time.UTC)
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third", "fourth"} {
		s.AddJournal("u1", title, base.Add(time.Duration(i)*time.Hour))
	}
	s.AddJournal("u2", "someone else", base.Add(10*time.Hour))

	got, err := s.ListJournals(ctx, "u1", ports.JournalQuery{
		Sort:     ports.Sort{Field: "created_at", Direction: ports.Desc},
		PageSize: 3,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].Title != "fourth" || got[2].Title != "second" {
		t.Fatalf("unexpected order: %+v", got)
	}

	asc, _ := s.ListJournals(ctx, "u1", ports.JournalQuery{Sort: ports.Sort{Field: "created_at", Direction: ports.Asc}})
	if len(asc) != 4 || asc[0].Title != "first" {
		t.Fatalf("unexpected asc order: %+v", asc)
	}

	if _, err := s.ListJournals(ctx, "u1", ports.JournalQuery{Sort: ports.Sort{Field: "title"}}); !errors.Is(err, sources.ErrUnsupportedSort) {
		t.Fatalf("expected ErrUnsupportedSort, got %v", err)
	}
}

func TestGetJournal(t *testing.T) {
	s := New(time.UTC)
	j := s.AddJournal("u1", "hello", time.Now())

	got, err := s.GetJournal(context.Background(), "u1", j.ID)
	if err != nil || got.Title != "hello" {
		t.Fatalf("get: %+v %v", got, err)
	}
	if _, err := s.GetJournal(context.Background(), "u2", j.ID); !errors.Is(err, sources.ErrNotFound) {
		t.Fatalf("other users must not see the journal, got %v", err)
	}
}

func TestStreakDaysAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New(time.UTC)
	d := core.NewDate(2025, 1, 13, time.UTC)

	for range 3 {
		if err := s.RecordStreakDay(ctx, "u1", d); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	_ = s.RecordStreakDay(ctx, "u1", d.AddDays(-1))

	days, err := s.ListStreakDays(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(days) != 2 || !days[0].Equal(d.AddDays(-1)) || !days[1].Equal(d) {
		t.Fatalf("unexpected days: %v", days)
	}

	if err := s.RecordStreakDay(ctx, "u1", core.Date{}); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestListTransactionsFiltersRangeAndType(t *testing.T) {
	ctx := context.Background()
	s := New(time.UTC)
	jan := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, tx := range []core.Transaction{
		{Amount: core.Money{Cents: 1050}, Type: core.Expense, Timestamp: jan},
		{Amount: core.Money{Cents: 300}, Type: core.Income, Timestamp: jan},
		{Amount: core.Money{Cents: 999}, Type: core.Expense, Timestamp: feb},
	} {
		if _, err := s.AddTransaction("u1", tx); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	tr, _ := core.ResolveTimeRange(core.PeriodThisMonth, jan)
	got, err := s.ListTransactions(ctx, "u1", ports.TransactionQuery{Range: tr, Type: core.Expense})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Amount.Cents != 1050 || got[0].ID == "" {
		t.Fatalf("unexpected transactions: %+v", got)
	}

	none, _ := s.ListTransactions(ctx, "nobody", ports.TransactionQuery{Range: tr})
	if none == nil || len(none) != 0 {
		t.Fatalf("unknown user should get an empty list, got %#v", none)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.json"), time.UTC)
	if err != nil {
		t.Fatalf("missing file should be fine: %v", err)
	}
	if goals, _ := s.ListGoals(context.Background(), "u1"); len(goals) != 0 {
		t.Fatalf("expected empty store")
	}

	seed := `{
	  "users": {
	    "u1": {
	      "journals": [{"title": "Day one", "createdAt": "2025-01-10T08:00:00Z"}],
	      "goals": [{"title": "Run"}, {"title": ""}],
	      "streakDays": ["2025-01-13", "2025-01-14"],
	      "transactions": [
	        {"amount": "10,50", "type": "expense", "timestamp": "2025-01-15T10:00:00Z"},
	        {"amount": "1000", "type": "income", "timestamp": "2025-01-01T00:00:00Z"}
	      ]
	    }
	  }
	}`
	path := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err = NewFromFile(path, time.UTC)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ctx := context.Background()
	goals, _ := s.ListGoals(ctx, "u1")
	days, _ := s.ListStreakDays(ctx, "u1")
	tr, _ := core.ResolveTimeRange(core.PeriodThisMonth, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	txs, _ := s.ListTransactions(ctx, "u1", ports.TransactionQuery{Range: tr})
	if len(goals) != 2 || len(days) != 2 || len(txs) != 2 {
		t.Fatalf("goals=%d days=%d txs=%d", len(goals), len(days), len(txs))
	}
	if core.Aggregate(txs, core.Expense).Cents != 1100 {
		t.Fatalf("unexpected expense total: %v", core.Aggregate(txs, core.Expense))
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"users":{"u1":{"transactions":[{"amount":"x","type":"expense","timestamp":"2025-01-01T00:00:00Z"}]}}}`), 0o644)
	if _, err := NewFromFile(bad, time.UTC); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
