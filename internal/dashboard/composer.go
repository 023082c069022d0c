package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"homeboard/internal/core"
	"homeboard/internal/log"
)

// DefaultTimeout bounds a single widget load.
const DefaultTimeout = 7 * time.Second

// Outcome is the terminal result of one unit inside a composed pass.
type Outcome struct {
	View         View  `json:"view"`
	Unauthorized bool  `json:"unauthorized,omitempty"`
	Err          error `json:"-"`
}

// Composer runs every unit concurrently and collects their outcomes in
// registration order.
type Composer struct {
	units   []Unit
	timeout time.Duration
	logger  *log.Logger
}

func NewComposer(logger *log.Logger, timeout time.Duration, units ...Unit) *Composer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Composer{
		units:   units,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentDashboard),
	}
}

func (c *Composer) Units() []Unit {
	return c.units
}

// Unit finds a registered unit by name.
func (c *Composer) Unit(name string) (Unit, bool) {
	for _, u := range c.units {
		if u.Name() == name {
			return u, true
		}
	}
	return nil, false
}

// Timeout is the per-unit load bound.
func (c *Composer) Timeout() time.Duration {
	return c.timeout
}

// Compose loads all units. A failing, panicking or slow unit only affects
// its own slot.
func (c *Composer) Compose(ctx context.Context) []Outcome {
	out := make([]Outcome, len(c.units))

	// Unit goroutines never return an error, so the group never cancels
	// siblings. Each goroutine writes only out[i].
	var g errgroup.Group
	for i, u := range c.units {
		g.Go(func() error {
			out[i] = c.Run(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Run loads a single unit under the per-unit timeout, converting a panic
// into the unit's error state.
func (c *Composer) Run(ctx context.Context, u Unit) (o Outcome) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("widget %s panicked: %v", u.Name(), r)
			c.logger.ErrorContext(ctx, "widget panic", log.NewFields().
				WithOperation(log.OpCompose).
				WithWidget(u.Name(), core.StateError.String()).
				WithError(err).
				ToSlice()...)
			o = Outcome{View: View{Widget: u.Name(), State: core.StateError, Message: "Error loading " + u.Name()}, Err: err}
		}
	}()

	v, err := u.Load(ctx)
	switch {
	case errors.Is(err, ErrUnauthorized):
		c.logger.DebugContext(ctx, "widget unauthorized", log.NewFields().
			WithOperation(log.OpCompose).
			WithWidget(u.Name(), "unauthorized").
			ToSlice()...)
		return Outcome{View: View{Widget: u.Name()}, Unauthorized: true, Err: err}
	case err != nil:
		c.logger.ErrorContext(ctx, "widget load failed", log.NewFields().
			WithOperation(log.OpCompose).
			WithWidget(u.Name(), core.StateError.String()).
			WithError(err).
			ToSlice()...)
		return Outcome{View: View{Widget: u.Name(), State: core.StateError, Message: "Error loading " + u.Name()}, Err: err}
	}

	fields := log.NewFields().WithOperation(log.OpCompose).WithWidget(u.Name(), v.State.String())
	fields[log.FieldDuration] = time.Since(start).Milliseconds()
	c.logger.DebugContext(ctx, "widget loaded", fields.ToSlice()...)
	return Outcome{View: v}
}
