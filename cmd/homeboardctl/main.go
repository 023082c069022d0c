// Command homeboardctl manages the data behind DATA_BACKEND=sqlite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"homeboard/internal/admin"
	"homeboard/internal/cli"
	"homeboard/internal/config"
	"homeboard/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid TIMEZONE %q: %v\n", cfg.Timezone, err)
		os.Exit(1)
	}

	// Keep stderr quiet unless asked for more.
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(getenv("LOG_LEVEL", "warn"))
	lc.Format = cfg.LogFormat
	lc.Output = os.Stderr

	root := admin.NewRootCommand(admin.Options{
		DBPath:   cfg.SQLiteDBPath,
		Location: loc,
		Logger:   log.New(lc),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
