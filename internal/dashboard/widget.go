// Package dashboard turns collaborator results into per-widget views. Every
// widget authorizes, fetches, classifies and derives on its own; nothing a
// widget does can change the outcome of a sibling.
package dashboard

import (
	"context"
	"errors"

	"homeboard/internal/core"
	"homeboard/internal/log"
)

// ErrUnauthorized is returned by Load when the caller may not see a widget.
// It is not a render state: the widget produces no view at all.
var ErrUnauthorized = errors.New("unauthorized")

// Protected routes the widgets gate on.
const (
	RouteDashboard = "/dashboard"
	RouteGoals     = "/goals"
)

// MaxItems caps list widgets.
const MaxItems = 3

// Widget names, also used as partial paths by the HTTP layer.
const (
	NameJournals = "journals"
	NameStreak   = "streak"
	NameExpenses = "expenses"
	NameIncomes  = "incomes"
	NameGoals    = "goals"
)

type (
	Item struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Untitled bool   `json:"untitled,omitempty"`
		Href     string `json:"href,omitempty"`
	}

	StreakView struct {
		Count int                 `json:"count"`
		Week  [7]core.WeekDaySlot `json:"week"`
	}

	// View is the terminal render model of one widget.
	View struct {
		Widget  string      `json:"widget"`
		State   core.State  `json:"state"`
		Message string      `json:"message,omitempty"`
		Items   []Item      `json:"items,omitempty"`
		Value   string      `json:"value,omitempty"`
		Streak  *StreakView `json:"streak,omitempty"`
	}

	// Unit is one independently loading widget.
	Unit interface {
		Name() string
		// Fallback is what the region shows while Load is in flight.
		Fallback() string
		// Load returns a wrapped ErrUnauthorized when access is denied;
		// collaborator failures come back as a View in StateError.
		Load(ctx context.Context) (View, error)
	}
)

// Loading is the initial view of a unit, before Load completes.
func Loading(u Unit) View {
	return View{Widget: u.Name(), State: core.StateLoading, Value: u.Fallback()}
}

func errorView(ctx context.Context, name, message string, err error) View {
	log.FromContext(ctx).WithComponent(log.ComponentDashboard).ErrorContext(ctx, "widget fetch failed",
		log.FieldOperation, log.OpList,
		log.FieldWidget, name,
		log.FieldError, err.Error(),
	)
	return View{Widget: name, State: core.StateError, Message: message}
}

func capItems[E any](in []E, n int) []E {
	if len(in) > n {
		return in[:n]
	}
	return in
}
