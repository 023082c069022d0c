package google

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/ports"
)

type fakeValues struct {
	values [][]interface{}
	err    error
	calls  int
	ranges []string
}

func (f *fakeValues) Values(_ context.Context, rng string) ([][]interface{}, error) {
	f.calls++
	f.ranges = append(f.ranges, rng)
	return f.values, f.err
}

func quiet() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestParseTransactions(t *testing.T) {
	values := [][]interface{}{
		{"ID", "User", "Date", "Type", "Amount"},
		{"t1", "u1", "2025-01-15", "expense", "10,50"},
		{"t2", "u1", "2025-01-16T09:00:00Z", "Income", "€ 1000.00"},
		{"t3", "u2", "20/01/2025", "expense", 7.25},
		{},
		{"t4", "u1", "not a date", "expense", "1"},
		{"t5", "u1", "2025-01-15", "transfer", "1"},
		{"t6", "u1", "2025-01-15"},
		{"", "u1", "2025-01-15", "expense", "1"},
	}

	rows, skipped := parseTransactions(values, time.UTC)
	if len(rows) != 3 {
		t.Fatalf("parsed %d rows, want 3: %+v", len(rows), rows)
	}
	if skipped != 4 {
		t.Fatalf("skipped %d, want 4", skipped)
	}
	if rows[0].tx.Amount.Cents != 1050 || rows[0].tx.Type != core.Expense || rows[0].user != "u1" {
		t.Errorf("row 0: %+v", rows[0])
	}
	if rows[1].tx.Amount.Cents != 100000 || rows[1].tx.Type != core.Income {
		t.Errorf("row 1: %+v", rows[1])
	}
	want := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	if rows[2].tx.Amount.Cents != 725 || !rows[2].tx.Timestamp.Equal(want) {
		t.Errorf("row 2: %+v", rows[2])
	}
}

func TestListTransactionsFiltersAndCaches(t *testing.T) {
	fake := &fakeValues{values: [][]interface{}{
		{"t1", "u1", "2025-01-15", "expense", "10.50"},
		{"t2", "u1", "2025-01-20", "expense", "5.20"},
		{"t3", "u1", "2025-02-01", "expense", "99"},
		{"t4", "u2", "2025-01-15", "expense", "40"},
		{"t5", "u1", "2025-01-15", "income", "300"},
	}}
	c := newClient(fake, Config{Sheet: "Tx", CacheTTL: time.Hour, Location: time.UTC}, quiet())

	tr, _ := core.ResolveTimeRange(core.PeriodThisMonth, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	q := ports.TransactionQuery{Range: tr, Type: core.Expense}

	got, err := c.ListTransactions(context.Background(), "u1", q)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions: %+v", len(got), got)
	}
	if total := core.FormatAmount(core.Aggregate(got, core.Expense)); total != "16.00" {
		t.Fatalf("total = %s", total)
	}

	if _, err := c.ListTransactions(context.Background(), "u2", q); err != nil {
		t.Fatalf("list u2: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("expected a single sheet read, got %d", fake.calls)
	}
	if fake.ranges[0] != "Tx!A:E" {
		t.Fatalf("range = %s", fake.ranges[0])
	}
}

func TestListTransactionsError(t *testing.T) {
	fake := &fakeValues{err: errors.New("quota exceeded")}
	c := newClient(fake, Config{}, quiet())

	if _, err := c.ListTransactions(context.Background(), "u1", ports.TransactionQuery{}); err == nil {
		t.Fatal("expected error")
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
	if fake.ranges[0] != "Transactions!A:E" {
		t.Fatalf("default sheet not applied: %s", fake.ranges[0])
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}, quiet()); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}
