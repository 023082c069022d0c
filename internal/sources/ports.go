// Package sources defines the per-user data stores behind the dashboard
// collaborators. Implementations live in the memory, google and storage
// packages; the adapters package scopes them to the request's user and
// wraps results into envelopes.
package sources

import (
	"context"
	"errors"
	"fmt"

	"homeboard/internal/core"
	"homeboard/internal/ports"
)

type (
	JournalReader interface {
		ListJournals(ctx context.Context, userID string, q ports.JournalQuery) ([]core.JournalSummary, error)
		GetJournal(ctx context.Context, userID, id string) (core.JournalSummary, error)
	}

	GoalReader interface {
		ListGoals(ctx context.Context, userID string) ([]core.GoalSummary, error)
	}

	// StreakStore keeps one row per user and calendar day.
	StreakStore interface {
		ListStreakDays(ctx context.Context, userID string) ([]core.Date, error)
		RecordStreakDay(ctx context.Context, userID string, day core.Date) error
	}

	TransactionReader interface {
		ListTransactions(ctx context.Context, userID string, q ports.TransactionQuery) ([]core.Transaction, error)
	}

	// Store is everything a full backend provides.
	Store interface {
		JournalReader
		GoalReader
		StreakStore
		TransactionReader
		Ping(ctx context.Context) error
	}
)

var ErrNotFound = errors.New("not found")

// ErrUnsupportedSort is returned for journal queries sorting on anything
// other than created_at.
var ErrUnsupportedSort = errors.New("unsupported sort field")

// SortField is the only journal sort field stores understand.
const SortField = "created_at"

// CheckJournalQuery validates q and reports whether results are newest first.
func CheckJournalQuery(q ports.JournalQuery) (newestFirst bool, err error) {
	if q.Sort.Field != "" && q.Sort.Field != SortField {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedSort, q.Sort.Field)
	}
	return q.Sort.Direction != ports.Asc, nil
}

// WithTransactions overlays a different transaction source on a store.
func WithTransactions(base Store, tx TransactionReader) Store {
	return overlay{Store: base, tx: tx}
}

type overlay struct {
	Store
	tx TransactionReader
}

func (o overlay) ListTransactions(ctx context.Context, userID string, q ports.TransactionQuery) ([]core.Transaction, error) {
	return o.tx.ListTransactions(ctx, userID, q)
}

// FilterTransactions keeps the transactions of type q.Type inside q.Range.
// An empty type keeps both kinds.
func FilterTransactions(txs []core.Transaction, q ports.TransactionQuery) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if q.Type != "" && tx.Type != q.Type {
			continue
		}
		if !q.Range.Contains(tx.Timestamp) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
