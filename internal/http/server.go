// Package http serves the dashboard page shell, one partial per widget,
// and a small JSON API over the same widgets.
package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/backend"
	"homeboard/internal/core"
	"homeboard/internal/dashboard"
	"homeboard/internal/log"
	"homeboard/internal/middleware/ratelimit"
	"homeboard/internal/middleware/security"
	"homeboard/internal/middleware/trace"
	"homeboard/internal/ports"
	appweb "homeboard/web"
)

// Deps are the collaborators a Server is built from.
type Deps struct {
	Backend       backend.Backend
	Authorizer    ports.Authorizer // nil means auth.Gate
	Sessions      *auth.Sessions
	Logger        *log.Logger
	Resolver      core.Resolver
	WidgetTimeout time.Duration
	// RateLimit bounds activity writes per client and minute.
	RateLimit int
}

type Server struct {
	http.Server
	templates *template.Template
	backend   backend.Backend
	composer  *dashboard.Composer
	resolver  core.Resolver
	sessions  *auth.Sessions
	logger    *log.Logger

	traceMiddleware *trace.Middleware
	limiter         *ratelimit.Limiter

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	sessions := d.Sessions
	if sessions == nil {
		sessions, _ = auth.ParseSessions("")
	}

	var authorizer ports.Authorizer = auth.Gate{}
	if d.Authorizer != nil {
		authorizer = d.Authorizer
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		backend:   d.Backend,
		composer:  dashboard.NewComposer(logger, d.WidgetTimeout, dashboard.StandardUnits(authorizer, d.Backend, d.Resolver)...),
		resolver:  d.Resolver,
		sessions:  sessions,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: d.RateLimit}),
		startedAt: time.Now(),
	}
	s.traceMiddleware = trace.NewMiddleware(logger, security.ClientIP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldComponent, log.ComponentTemplate, log.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /widgets/{name}", s.handleWidget)
	mux.HandleFunc("GET /journal/{id}", s.handleJournal)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboardAPI)
	mux.Handle("POST /api/activity", s.limiter.Middleware(security.ClientIP, nil)(http.HandlerFunc(s.handleRecordActivity)))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = sessions.Middleware(h)
	h = headers.Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestID)(h)
	h = log.Middleware(logger)(h)
	h = s.traceMiddleware.Middleware(h)
	s.Handler = h

	return s
}

// Composer exposes the widget composer, for the JSON API and tests.
func (s *Server) Composer() *dashboard.Composer {
	return s.composer
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			log.FieldOperation, log.OpRender,
			log.FieldError, err.Error())
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
