package dashboard

import (
	"context"
	"fmt"

	"homeboard/internal/core"
	"homeboard/internal/log"
	"homeboard/internal/ports"
)

func authorize(ctx context.Context, a ports.Authorizer, route string) error {
	if err := a.ProtectedPage(ctx, route); err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return nil
}

// JournalsWidget lists the most recent journal entries.
type JournalsWidget struct {
	Auth     ports.Authorizer
	Journals ports.JournalLister
}

func (JournalsWidget) Name() string     { return NameJournals }
func (JournalsWidget) Fallback() string { return "" }

func (w JournalsWidget) Load(ctx context.Context) (View, error) {
	if err := authorize(ctx, w.Auth, RouteDashboard); err != nil {
		return View{}, err
	}

	env := w.Journals.ListJournals(ctx, ports.JournalQuery{
		Sort:     ports.Sort{Field: "created_at", Direction: ports.Desc},
		PageSize: MaxItems,
	})

	switch core.Classify(env, core.EmptySlice[core.JournalSummary]) {
	case core.StateError:
		return errorView(ctx, NameJournals, "Error fetching journals", env.Err), nil
	case core.StateEmpty:
		return View{Widget: NameJournals, State: core.StateEmpty, Message: "No journals found"}, nil
	}

	entries := capItems(env.Data, MaxItems)
	items := make([]Item, 0, len(entries))
	for _, j := range entries {
		title, untitled := j.DisplayTitle()
		items = append(items, Item{ID: j.ID, Title: title, Untitled: untitled, Href: "/journal/" + j.ID})
	}
	return View{Widget: NameJournals, State: core.StatePopulated, Items: items}, nil
}

// StreakWidget shows the streak count and this week's calendar strip.
type StreakWidget struct {
	Auth     ports.Authorizer
	Streaks  ports.StreakReader
	Resolver core.Resolver
}

func (StreakWidget) Name() string     { return NameStreak }
func (StreakWidget) Fallback() string { return "" }

func (w StreakWidget) Load(ctx context.Context) (View, error) {
	if err := authorize(ctx, w.Auth, RouteDashboard); err != nil {
		return View{}, err
	}

	env := w.Streaks.GetStreak(ctx)

	switch core.Classify(env, nil) {
	case core.StateError:
		return errorView(ctx, NameStreak, "Error fetching streaks", env.Err), nil
	case core.StateEmpty:
		return View{Widget: NameStreak, State: core.StateEmpty, Message: "No streak data yet"}, nil
	}

	return View{
		Widget: NameStreak,
		State:  core.StatePopulated,
		Streak: &StreakView{
			Count: env.Data.Count,
			Week:  core.BuildWeek(w.Resolver.Today(), env.Data.Items),
		},
	}, nil
}

// FinanceWidget shows the ceiled total of one transaction type for the
// current month.
type FinanceWidget struct {
	Auth         ports.Authorizer
	Transactions ports.TransactionLister
	Resolver     core.Resolver
	Type         core.TxType
}

// NewExpensesWidget and NewIncomesWidget build the two finance widgets.
func NewExpensesWidget(a ports.Authorizer, tl ports.TransactionLister, r core.Resolver) FinanceWidget {
	return FinanceWidget{Auth: a, Transactions: tl, Resolver: r, Type: core.Expense}
}

func NewIncomesWidget(a ports.Authorizer, tl ports.TransactionLister, r core.Resolver) FinanceWidget {
	return FinanceWidget{Auth: a, Transactions: tl, Resolver: r, Type: core.Income}
}

func (w FinanceWidget) Name() string {
	if w.Type == core.Income {
		return NameIncomes
	}
	return NameExpenses
}

func (FinanceWidget) Fallback() string { return "-" }

func (w FinanceWidget) Load(ctx context.Context) (View, error) {
	name := w.Name()
	if err := authorize(ctx, w.Auth, RouteDashboard); err != nil {
		return View{}, err
	}

	// resolved on every load, never shared between widgets
	tr, err := w.Resolver.Resolve(core.PeriodThisMonth)
	if err != nil {
		return errorView(ctx, name, "Error fetching "+name, err), nil
	}
	log.FromContext(ctx).DebugContext(ctx, "period resolved",
		log.FieldWidget, name,
		log.FieldPeriod, core.PeriodThisMonth,
		"range", tr.String())

	env := w.Transactions.ListTransactions(ctx, ports.TransactionQuery{Range: tr, Type: w.Type})

	state := core.Classify(env, core.EmptySlice[core.Transaction])
	if state == core.StateError {
		return errorView(ctx, name, "Error fetching "+name, env.Err), nil
	}

	total := core.Aggregate(env.Data, w.Type)
	return View{Widget: name, State: state, Value: core.FormatAmount(total)}, nil
}

// GoalsWidget lists the first goals in returned order.
type GoalsWidget struct {
	Auth  ports.Authorizer
	Goals ports.GoalLister
}

func (GoalsWidget) Name() string     { return NameGoals }
func (GoalsWidget) Fallback() string { return "" }

func (w GoalsWidget) Load(ctx context.Context) (View, error) {
	if err := authorize(ctx, w.Auth, RouteGoals); err != nil {
		return View{}, err
	}

	env := w.Goals.GetGoals(ctx)

	switch core.Classify(env, core.EmptySlice[core.GoalSummary]) {
	case core.StateError:
		return errorView(ctx, NameGoals, "Error fetching goals", env.Err), nil
	case core.StateEmpty:
		return View{Widget: NameGoals, State: core.StateEmpty, Message: "No goals found"}, nil
	}

	goals := capItems(env.Data, MaxItems)
	items := make([]Item, 0, len(goals))
	for _, g := range goals {
		title, untitled := g.DisplayTitle()
		items = append(items, Item{ID: g.ID, Title: title, Untitled: untitled})
	}
	return View{Widget: NameGoals, State: core.StatePopulated, Items: items}, nil
}

// Collaborators is everything the standard widgets read from.
type Collaborators interface {
	ports.JournalLister
	ports.StreakReader
	ports.TransactionLister
	ports.GoalLister
}

// StandardUnits returns the dashboard widgets in page order.
func StandardUnits(a ports.Authorizer, c Collaborators, r core.Resolver) []Unit {
	return []Unit{
		JournalsWidget{Auth: a, Journals: c},
		StreakWidget{Auth: a, Streaks: c, Resolver: r},
		NewExpensesWidget(a, c, r),
		NewIncomesWidget(a, c, r),
		GoalsWidget{Auth: a, Goals: c},
	}
}
