package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"homeboard/internal/backend"
	"homeboard/internal/cli"
	"homeboard/internal/core"
	apphttp "homeboard/internal/http"
	"homeboard/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	sessions, err := cfg.Sessions()
	if err != nil {
		logger.Error("Invalid session tokens", log.FieldError, err.Error())
		os.Exit(1)
	}
	if sessions.Len() == 0 {
		logger.Warn("No SESSION_TOKENS configured, every widget will answer 401")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Backend:       res.Backend,
		Sessions:      sessions,
		Logger:        logger,
		Resolver:      core.NewResolver(backendConfig.Location),
		WidgetTimeout: cfg.WidgetTimeout,
		RateLimit:     cfg.RateLimitPerMinute,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting homeboard server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", backendConfig.Location.String(),
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
