// Package admin implements homeboardctl, the command line for managing the
// rows the sqlite backend serves.
package admin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"homeboard/internal/log"
	"homeboard/internal/storage"
)

// Options are the defaults the commands start from, usually read from the
// environment by cmd/homeboardctl.
type Options struct {
	DBPath   string
	Location *time.Location
	Logger   *log.Logger
	Now      func() time.Time
}

var errNoDB = errors.New("no database path (set --db or SQLITE_DB_PATH)")

type app struct {
	opts   Options
	dbPath string
}

// NewRootCommand builds a fresh command tree. Tests build one per case.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "homeboardctl",
		Short: "Manage homeboard's sqlite data",
		Long: `homeboardctl writes and lists the journals, goals, transactions and
streak days the dashboard reads when DATA_BACKEND=sqlite.

Examples:
  homeboardctl journal add u1 "Morning pages"
  homeboardctl tx add u1 12,50 expense --at 2025-01-15T10:00:00Z
  homeboardctl activity record u1 --day 2025-01-14
  homeboardctl seed import data/seed.json`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", opts.DBPath, "SQLite database path")

	root.AddCommand(
		a.migrateCommand(),
		a.journalCommand(),
		a.goalCommand(),
		a.txCommand(),
		a.activityCommand(),
		a.seedCommand(),
	)
	return root
}

// open runs pending migrations and opens the repository at --db.
func (a *app) open() (*storage.SQLiteRepository, error) {
	if a.dbPath == "" {
		return nil, errNoDB
	}
	return storage.NewSQLiteRepository(a.dbPath, a.opts.Location, a.opts.Logger)
}

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.dbPath == "" {
				return errNoDB
			}
			if err := os.MkdirAll(filepath.Dir(a.dbPath), 0o755); err != nil {
				return fmt.Errorf("create db directory: %w", err)
			}
			version, err := storage.RunMigrations(a.dbPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
			return nil
		},
	}
}
