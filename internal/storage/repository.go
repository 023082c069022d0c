package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/ports"
	"homeboard/internal/sources"
)

// ErrNotFound is returned when a row does not exist for the user.
var ErrNotFound = sources.ErrNotFound

// SQLiteRepository stores every dashboard domain in one SQLite file.
// Timestamps are stored as unix milliseconds, streak days as YYYY-MM-DD
// strings in the repository's location.
type SQLiteRepository struct {
	db     *sql.DB
	loc    *time.Location
	logger *log.Logger
}

var _ sources.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, loc *time.Location, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	logger = logger.WithComponent(log.ComponentStorage)
	logger.Info("sqlite repository ready", "db_path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, loc: loc, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// CreateJournal inserts a journal entry with a fresh id.
func (r *SQLiteRepository) CreateJournal(ctx context.Context, userID, title string, createdAt time.Time) (core.JournalSummary, error) {
	j := core.JournalSummary{ID: uuid.NewString(), Title: title}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO journals (id, user_id, title, created_at) VALUES (?, ?, ?, ?)`,
		j.ID, userID, title, toMillis(createdAt))
	if err != nil {
		return core.JournalSummary{}, fmt.Errorf("create journal: %w", err)
	}
	return j, nil
}

func (r *SQLiteRepository) ListJournals(ctx context.Context, userID string, q ports.JournalQuery) ([]core.JournalSummary, error) {
	newestFirst, err := sources.CheckJournalQuery(q)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, title FROM journals WHERE user_id = ? ORDER BY created_at ASC, id ASC`
	if newestFirst {
		query = `SELECT id, title FROM journals WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	}
	limit := -1
	if q.PageSize > 0 {
		limit = q.PageSize
	}

	rows, err := r.db.QueryContext(ctx, query+` LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()

	out := []core.JournalSummary{}
	for rows.Next() {
		var j core.JournalSummary
		if err := rows.Scan(&j.ID, &j.Title); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetJournal(ctx context.Context, userID, id string) (core.JournalSummary, error) {
	var j core.JournalSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title FROM journals WHERE user_id = ? AND id = ?`, userID, id).Scan(&j.ID, &j.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return core.JournalSummary{}, fmt.Errorf("journal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.JournalSummary{}, fmt.Errorf("get journal: %w", err)
	}
	return j, nil
}

// CreateGoal appends a goal after the user's existing ones.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, userID, title string) (core.GoalSummary, error) {
	g := core.GoalSummary{ID: uuid.NewString(), Title: title}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, title, position, created_at)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM goals WHERE user_id = ?), ?)`,
		g.ID, userID, title, userID, toMillis(time.Now()))
	if err != nil {
		return core.GoalSummary{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.GoalSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title FROM goals WHERE user_id = ? ORDER BY position ASC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	out := []core.GoalSummary{}
	for rows.Next() {
		var g core.GoalSummary
		if err := rows.Scan(&g.ID, &g.Title); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// RecordStreakDay is idempotent: recording the same day twice keeps one row.
func (r *SQLiteRepository) RecordStreakDay(ctx context.Context, userID string, day core.Date) error {
	if day.IsZero() {
		return fmt.Errorf("record streak day: %w", core.ErrInvalidDate)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO streak_days (user_id, day, recorded_at) VALUES (?, ?, ?)`,
		userID, day.String(), toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("record streak day: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.logger.DebugContext(ctx, "streak day recorded", log.FieldUserID, userID, "day", day.String())
	}
	return nil
}

func (r *SQLiteRepository) ListStreakDays(ctx context.Context, userID string) ([]core.Date, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT day FROM streak_days WHERE user_id = ? ORDER BY day ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list streak days: %w", err)
	}
	defer rows.Close()

	var out []core.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan streak day: %w", err)
		}
		d, err := core.ParseDate(raw, r.loc)
		if err != nil {
			return nil, fmt.Errorf("streak day %q: %w", raw, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AddTransaction validates and stores tx. An empty ID gets a fresh one.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, amount_cents, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		tx.ID, userID, string(tx.Type), tx.Amount.Cents, toMillis(tx.Timestamp))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, q ports.TransactionQuery) ([]core.Transaction, error) {
	query := `SELECT id, type, amount_cents, occurred_at FROM transactions
		WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?`
	args := []any{userID, toMillis(q.Range.Start), toMillis(q.Range.End)}
	if q.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(q.Type))
	}
	query += ` ORDER BY occurred_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			tx    core.Transaction
			typ   string
			cents int64
			ms    int64
		)
		if err := rows.Scan(&tx.ID, &typ, &cents, &ms); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TxType(typ)
		tx.Amount = core.Money{Cents: cents}
		tx.Timestamp = fromMillis(ms)
		out = append(out, tx)
	}
	return out, rows.Err()
}
