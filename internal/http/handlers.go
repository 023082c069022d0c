package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/core"
	"homeboard/internal/dashboard"
	"homeboard/internal/log"
	"homeboard/internal/sources"
)

// anonymousName greets visitors without a session.
const anonymousName = "User"

// handleIndex renders the page shell. Every widget region starts in its
// loading state and fetches its own partial.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	name := anonymousName
	if u, ok := auth.UserFrom(r.Context()); ok && u.Name != "" {
		name = u.Name
	}

	loading := make(map[string]dashboard.View, len(s.composer.Units()))
	for _, u := range s.composer.Units() {
		loading[u.Name()] = dashboard.Loading(u)
	}

	s.render(w, r, http.StatusOK, "dashboard_page", struct {
		UserName string
		Loading  map[string]dashboard.View
	}{UserName: name, Loading: loading})
}

// handleWidget loads one widget and renders its partial.
func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	unit, ok := s.composer.Unit(name)
	if !ok {
		NotFoundError("Unknown widget").Write(w)
		return
	}

	out := s.composer.Run(r.Context(), unit)
	if out.Unauthorized {
		UnauthorizedError().Write(w)
		return
	}

	log.FromContext(r.Context()).DebugContext(r.Context(), "Widget rendered",
		log.FieldWidget, name,
		log.FieldState, out.View.State.String())
	s.render(w, r, http.StatusOK, "widget_"+name, out.View)
}

// apiWidget is one entry of the dashboard JSON. State shadows the view's
// own so a denied unit reads "unauthorized" instead of a render state.
type apiWidget struct {
	dashboard.View
	State        string `json:"state"`
	Unauthorized bool   `json:"unauthorized,omitempty"`
}

// handleDashboardAPI composes every widget in one pass and returns the
// outcomes as JSON, in registration order.
func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFrom(r.Context()); !ok {
		writeJSON(w, r, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	outcomes := s.composer.Compose(r.Context())
	widgets := make([]apiWidget, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Unauthorized {
			widgets = append(widgets, apiWidget{View: dashboard.View{Widget: o.View.Widget}, State: "unauthorized", Unauthorized: true})
			continue
		}
		widgets = append(widgets, apiWidget{View: o.View, State: o.View.State.String()})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"widgets": widgets})
}

// handleRecordActivity records one streak day, today unless "day" is given,
// and tells the page to refresh the streak widget.
func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	day, err := ParseActivityDay(NewRequestBodyParser(r), s.resolver)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid activity request",
			log.FieldOperation, log.OpRecord,
			log.FieldError, err.Error())
		BadRequestError("Invalid day, expected YYYY-MM-DD").Write(w)
		return
	}

	err = s.backend.RecordActivity(r.Context(), day)
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		UnauthorizedError().Write(w)
		return
	case errors.Is(err, core.ErrInvalidDate):
		BadRequestError(err.Error()).Write(w)
		return
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to record activity",
			log.FieldOperation, log.OpRecord,
			log.FieldError, err.Error())
		InternalServerError("Could not record activity").Write(w)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Activity recorded",
		log.FieldOperation, log.OpRecord,
		"day", day.String())
	NewHTMXResponse().
		Status(http.StatusNoContent).
		TriggerActivityRecorded(day.String()).
		Write(w)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFrom(r.Context()); !ok {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}

	j, err := s.backend.GetJournal(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, sources.ErrNotFound):
		NotFoundError("Journal not found").Write(w)
		return
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load journal",
			log.FieldOperation, log.OpRead,
			log.FieldError, err.Error())
		InternalServerError("Could not load journal").Write(w)
		return
	}

	title, untitled := j.DisplayTitle()
	s.render(w, r, http.StatusOK, "journal_page", struct {
		Title    string
		Untitled bool
	}{Title: title, Untitled: untitled})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login_page", struct{ Error string }{})
}

// handleLogin exchanges a known session token for the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login_page", struct{ Error string }{Error: "Malformed request"})
		return
	}

	token := p.Get("token")
	u, ok := s.sessions.Lookup(token)
	if token == "" || !ok {
		s.logger.WarnContext(r.Context(), "Login rejected", log.FieldComponent, log.ComponentAuth)
		s.render(w, r, http.StatusUnauthorized, "login_page", struct{ Error string }{Error: "Unknown session token"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.InfoContext(r.Context(), "Login accepted",
		log.FieldComponent, log.ComponentAuth,
		log.FieldUserID, u.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	if isHTMX(r) {
		NewHTMXResponse().Redirect(LoginPath).Write(w)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady checks templates and the backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.backend == nil {
		checks["backend"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if err := s.backend.Ping(ctx); err != nil {
		checks["backend"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["backend"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes request and rate limit counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_requests_failed_total Requests answered with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_requests_failed_total counter\n")
	fmt.Fprintf(w, "http_requests_failed_total %d\n\n", traceMetrics.FailedRequests)

	fmt.Fprintf(w, "# HELP http_response_time_avg_ms Average response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_ms gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_ms %d\n\n", traceMetrics.AverageResponseTime.Milliseconds())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", s.limiter.Hits())

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.limiter.ActiveClients())

	fmt.Fprintf(w, "# HELP widgets_registered Number of dashboard widgets\n")
	fmt.Fprintf(w, "# TYPE widgets_registered gauge\n")
	fmt.Fprintf(w, "widgets_registered %d\n\n", len(s.composer.Units()))

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.startedAt).Seconds())
}
