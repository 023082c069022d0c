package ports

import (
	"context"

	"homeboard/internal/core"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

type (
	Sort struct {
		Field     string
		Direction SortDirection
	}

	JournalQuery struct {
		Sort     Sort
		PageSize int
	}

	TransactionQuery struct {
		Range core.TimeRange
		Type  core.TxType
	}
)

// Collaborator contracts consumed by the dashboard. Data calls never return
// bare errors: every outcome travels inside the envelope.
type (
	// Authorizer fails when the caller may not see the given route.
	Authorizer interface {
		ProtectedPage(ctx context.Context, route string) error
	}

	JournalLister interface {
		ListJournals(ctx context.Context, q JournalQuery) core.Envelope[[]core.JournalSummary]
	}

	StreakReader interface {
		GetStreak(ctx context.Context) core.Envelope[core.StreakSnapshot]
	}

	TransactionLister interface {
		ListTransactions(ctx context.Context, q TransactionQuery) core.Envelope[[]core.Transaction]
	}

	GoalLister interface {
		GetGoals(ctx context.Context) core.Envelope[[]core.GoalSummary]
	}

	// ActivityRecorder stores one streak day for the user in ctx.
	ActivityRecorder interface {
		RecordActivity(ctx context.Context, day core.Date) error
	}
)
