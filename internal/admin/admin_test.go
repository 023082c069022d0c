package admin

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"homeboard/internal/log"
)

var fixedNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

// run executes one command line against dbPath and returns its stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(Options{
		DBPath:   dbPath,
		Location: time.UTC,
		Logger:   log.New(log.Config{Output: io.Discard}),
		Now:      func() time.Time { return fixedNow },
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	out, err := run(t, dbPath, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "nested", "hb.db")
	out := mustRun(t, db, "migrate")
	if !strings.HasPrefix(out, "Schema at version ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestJournalAddAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hb.db")
	mustRun(t, db, "journal", "add", "u1", "Older", "--at", "2025-01-10T08:00:00Z")
	mustRun(t, db, "journal", "add", "u1", "")
	mustRun(t, db, "journal", "add", "u2", "Not mine")

	out := mustRun(t, db, "journal", "list", "u1")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out)
	}
	if !strings.Contains(lines[1], "Untitled") || !strings.Contains(lines[2], "Older") {
		t.Fatalf("expected newest first, got %q", out)
	}
	if strings.Contains(out, "Not mine") {
		t.Fatalf("listed another user's journal: %q", out)
	}

	out = mustRun(t, db, "journal", "list", "u1", "--limit", "1")
	if strings.Contains(out, "Older") {
		t.Fatalf("limit ignored: %q", out)
	}
}

func TestJournalAddRejectsBadTimestamp(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hb.db")
	if _, err := run(t, db, "journal", "add", "u1", "x", "--at", "yesterday"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestGoals(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hb.db")
	mustRun(t, db, "goal", "add", "u1", "Run")
	mustRun(t, db, "goal", "add", "u1", "Read")

	out := mustRun(t, db, "goal", "list", "u1")
	if strings.Index(out, "Run") > strings.Index(out, "Read") {
		t.Fatalf("goals out of order: %q", out)
	}
}

func TestTransactions(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hb.db")
	out := mustRun(t, db, "tx", "add", "u1", "12,50", "expense")
	if !strings.Contains(out, "expense 12.50") {
		t.Fatalf("unexpected output %q", out)
	}
	mustRun(t, db, "tx", "add", "u1", "1000", "income", "--at", "2025-01-02T09:00:00Z")
	mustRun(t, db, "tx", "add", "u1", "7", "expense", "--at", "2024-12-31T09:00:00Z")

	out = mustRun(t, db, "tx", "list", "u1")
	if !strings.Contains(out, "12.50") || !strings.Contains(out, "1000.00") {
		t.Fatalf("missing this month's rows: %q", out)
	}
	if strings.Contains(out, "7.00") {
		t.Fatalf("listed last month's row: %q", out)
	}

	out = mustRun(t, db, "tx", "list", "u1", "--type", "income")
	if strings.Contains(out, "12.50") {
		t.Fatalf("type filter ignored: %q", out)
	}

	out = mustRun(t, db, "tx", "list", "u1", "--period", "last-month")
	if !strings.Contains(out, "7.00") {
		t.Fatalf("missing last month's row: %q", out)
	}
}

func TestTransactionValidation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hb.db")
	cases := [][]string{
		{"tx", "add", "u1", "abc", "expense"},
		{"tx", "add", "u1", "5", "gift"},
		{"tx", "list", "u1", "--period", "fortnight"},
		{"tx", "add", "u1", "5"},
	}
	for _, args := range cases {
		if _, err := run(t, db, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestActivityRecord(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hb.db")
	out := mustRun(t, db, "activity", "record", "u1")
	if strings.TrimSpace(out) != "Recorded 2025-01-15" {
		t.Fatalf("unexpected output %q", out)
	}
	mustRun(t, db, "activity", "record", "u1", "--day", "2025-01-14")
	mustRun(t, db, "activity", "record", "u1", "--day", "2025-01-14")

	out = mustRun(t, db, "activity", "list", "u1")
	if strings.TrimSpace(out) != "2025-01-14\n2025-01-15" {
		t.Fatalf("unexpected days %q", out)
	}

	if _, err := run(t, db, "activity", "record", "u1", "--day", "14/01/2025"); err == nil {
		t.Fatal("expected an error for a malformed day")
	}
}

func TestSeedImport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "hb.db")
	seed := filepath.Join(dir, "seed.json")
	doc := `{"users": {"u1": {
	  "journals": [{"title": "Day one", "createdAt": "2025-01-10T08:00:00Z"}],
	  "goals": [{"title": "Run"}],
	  "streakDays": ["2025-01-13"],
	  "transactions": [{"amount": "3", "type": "income", "timestamp": "2025-01-05T10:00:00Z"}]
	}}}`
	if err := os.WriteFile(seed, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	if out := mustRun(t, db, "seed", "import", seed); !strings.Contains(out, "Imported 1 users") {
		t.Fatalf("unexpected output %q", out)
	}
	if out := mustRun(t, db, "journal", "list", "u1"); !strings.Contains(out, "Day one") {
		t.Fatalf("journal not imported: %q", out)
	}
	if out := mustRun(t, db, "activity", "list", "u1"); strings.TrimSpace(out) != "2025-01-13" {
		t.Fatalf("streak not imported: %q", out)
	}
	if out := mustRun(t, db, "tx", "list", "u1"); !strings.Contains(out, "3.00") {
		t.Fatalf("transaction not imported: %q", out)
	}

	if _, err := run(t, db, "seed", "import", filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestMissingDatabasePath(t *testing.T) {
	if _, err := run(t, "", "goal", "list", "u1"); err == nil {
		t.Fatal("expected an error without --db")
	}
}
