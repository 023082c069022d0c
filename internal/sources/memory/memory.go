package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"homeboard/internal/core"
	"homeboard/internal/ports"
	"homeboard/internal/sources"
)

type journalRow struct {
	summary   core.JournalSummary
	createdAt time.Time
}

type userData struct {
	journals []journalRow
	goals    []core.GoalSummary
	days     map[string]core.Date
	txs      []core.Transaction
}

// Store keeps every user's data in process. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	loc   *time.Location
	users map[string]*userData
}

var (
	_ sources.Store      = (*Store)(nil)
	_ sources.SeedWriter = seedWriter{}
)

func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{loc: loc, users: map[string]*userData{}}
}

// NewFromFile seeds a store from a JSON file. A missing file yields an
// empty store.
func NewFromFile(path string, loc *time.Location) (*Store, error) {
	s := New(loc)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	defer f.Close()
	seed, err := sources.DecodeSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Load(context.Background(), seed); err != nil {
		return nil, fmt.Errorf("load seed %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) user(id string) *userData {
	u, ok := s.users[id]
	if !ok {
		u = &userData{days: map[string]core.Date{}}
		s.users[id] = u
	}
	return u
}

// AddJournal stores a journal entry and returns its summary.
func (s *Store) AddJournal(userID, title string, createdAt time.Time) core.JournalSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := core.JournalSummary{ID: uuid.NewString(), Title: title}
	u := s.user(userID)
	u.journals = append(u.journals, journalRow{summary: j, createdAt: createdAt})
	return j
}

func (s *Store) AddGoal(userID, title string) core.GoalSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := core.GoalSummary{ID: uuid.NewString(), Title: title}
	u := s.user(userID)
	u.goals = append(u.goals, g)
	return g
}

// AddTransaction validates and stores tx. An empty ID gets a fresh one.
func (s *Store) AddTransaction(userID string, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	u.txs = append(u.txs, tx)
	return tx, nil
}

func (s *Store) ListJournals(_ context.Context, userID string, q ports.JournalQuery) ([]core.JournalSummary, error) {
	newestFirst, err := sources.CheckJournalQuery(q)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	rows := []journalRow(nil)
	if u, ok := s.users[userID]; ok {
		rows = append(rows, u.journals...)
	}
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if newestFirst {
			return rows[i].createdAt.After(rows[j].createdAt)
		}
		return rows[i].createdAt.Before(rows[j].createdAt)
	})
	if q.PageSize > 0 && len(rows) > q.PageSize {
		rows = rows[:q.PageSize]
	}

	out := make([]core.JournalSummary, len(rows))
	for i, r := range rows {
		out[i] = r.summary
	}
	return out, nil
}

// GetJournal returns a journal by id or ErrNotFound.
func (s *Store) GetJournal(_ context.Context, userID, id string) (core.JournalSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		for _, r := range u.journals {
			if r.summary.ID == id {
				return r.summary, nil
			}
		}
	}
	return core.JournalSummary{}, fmt.Errorf("journal %s: %w", id, sources.ErrNotFound)
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.GoalSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return []core.GoalSummary{}, nil
	}
	return append([]core.GoalSummary{}, u.goals...), nil
}

// ListStreakDays returns the recorded days in ascending order.
func (s *Store) ListStreakDays(_ context.Context, userID string) ([]core.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	days := make([]core.Date, 0, len(u.days))
	for _, d := range u.days {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// RecordStreakDay is idempotent per user and day.
func (s *Store) RecordStreakDay(_ context.Context, userID string, day core.Date) error {
	if day.IsZero() {
		return fmt.Errorf("record streak day: %w", core.ErrInvalidDate)
	}
	key := core.NewDate(day.Time().Year(), day.Time().Month(), day.Time().Day(), s.loc)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(userID).days[key.String()] = key
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, q ports.TransactionQuery) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return []core.Transaction{}, nil
	}
	return sources.FilterTransactions(u.txs, q), nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// CreateJournal and CreateGoal let the store take seed rows.
func (s *Store) CreateJournal(_ context.Context, userID, title string, createdAt time.Time) (core.JournalSummary, error) {
	return s.AddJournal(userID, title, createdAt), nil
}

func (s *Store) CreateGoal(_ context.Context, userID, title string) (core.GoalSummary, error) {
	return s.AddGoal(userID, title), nil
}

// Load adds the seed's rows to the store.
func (s *Store) Load(ctx context.Context, seed sources.Seed) error {
	return sources.ApplySeed(ctx, seed, seedWriter{s}, s.loc)
}

// seedWriter bridges the context-aware SeedWriter onto the store's own
// AddTransaction, which takes no context.
type seedWriter struct{ *Store }

func (w seedWriter) AddTransaction(_ context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	return w.Store.AddTransaction(userID, tx)
}
