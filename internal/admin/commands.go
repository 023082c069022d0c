package admin

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"homeboard/internal/core"
	"homeboard/internal/ports"
	"homeboard/internal/sources"
	"homeboard/internal/storage"
)

// withRepo opens the repository for one command and closes it afterwards.
func (a *app) withRepo(fn func(ctx context.Context, repo *storage.SQLiteRepository) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		repo, err := a.open()
		if err != nil {
			return err
		}
		defer repo.Close()
		return fn(cmd.Context(), repo)
	}
}

func (a *app) parseAt(raw string) (time.Time, error) {
	if raw == "" {
		return a.opts.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q, expected RFC 3339", raw)
	}
	return t, nil
}

func (a *app) journalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Manage journal entries",
	}

	var at string
	add := &cobra.Command{
		Use:   "add <user> <title>",
		Short: "Add a journal entry",
		Long: `Add a journal entry. An empty title is allowed and shows as untitled.

Examples:
  homeboardctl journal add u1 "Morning pages"
  homeboardctl journal add u1 "" --at 2025-01-10T08:00:00Z`,
		Args: cobra.ExactArgs(2),
	}
	add.Flags().StringVar(&at, "at", "", "creation time, RFC 3339 (default now)")
	add.RunE = func(cmd *cobra.Command, args []string) error {
		createdAt, err := a.parseAt(at)
		if err != nil {
			return err
		}
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			j, err := repo.CreateJournal(ctx, args[0], args[1], createdAt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created journal %s\n", j.ID)
			return nil
		})(cmd, args)
	}

	var limit int
	list := &cobra.Command{
		Use:   "list <user>",
		Short: "List journal entries, newest first",
		Args:  cobra.ExactArgs(1),
	}
	list.Flags().IntVar(&limit, "limit", 0, "maximum entries (0 = all)")
	list.RunE = func(cmd *cobra.Command, args []string) error {
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			journals, err := repo.ListJournals(ctx, args[0], ports.JournalQuery{
				Sort:     ports.Sort{Field: sources.SortField, Direction: ports.Desc},
				PageSize: limit,
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE")
			for _, j := range journals {
				title, _ := j.DisplayTitle()
				fmt.Fprintf(w, "%s\t%s\n", j.ID, title)
			}
			return w.Flush()
		})(cmd, args)
	}

	cmd.AddCommand(add, list)
	return cmd
}

func (a *app) goalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}

	add := &cobra.Command{
		Use:   "add <user> <title>",
		Short: "Append a goal after the user's existing ones",
		Args:  cobra.ExactArgs(2),
	}
	add.RunE = func(cmd *cobra.Command, args []string) error {
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			g, err := repo.CreateGoal(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created goal %s\n", g.ID)
			return nil
		})(cmd, args)
	}

	list := &cobra.Command{
		Use:   "list <user>",
		Short: "List goals in order",
		Args:  cobra.ExactArgs(1),
	}
	list.RunE = func(cmd *cobra.Command, args []string) error {
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			goals, err := repo.ListGoals(ctx, args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE")
			for _, g := range goals {
				title, _ := g.DisplayTitle()
				fmt.Fprintf(w, "%s\t%s\n", g.ID, title)
			}
			return w.Flush()
		})(cmd, args)
	}

	cmd.AddCommand(add, list)
	return cmd
}

func (a *app) txCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Manage expenses and incomes",
	}

	var at string
	add := &cobra.Command{
		Use:   "add <user> <amount> <expense|income>",
		Short: "Record a transaction",
		Long: `Record a transaction. Amounts accept a dot or a comma as decimal separator.

Examples:
  homeboardctl tx add u1 12,50 expense
  homeboardctl tx add u1 1500 income --at 2025-01-01T09:00:00Z`,
		Args: cobra.ExactArgs(3),
	}
	add.Flags().StringVar(&at, "at", "", "timestamp, RFC 3339 (default now)")
	add.RunE = func(cmd *cobra.Command, args []string) error {
		ts, err := a.parseAt(at)
		if err != nil {
			return err
		}
		tx, err := sources.ParseTransaction(args[1], args[2], ts)
		if err != nil {
			return fmt.Errorf("invalid transaction: %w", err)
		}
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			saved, err := repo.AddTransaction(ctx, args[0], tx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s (%s)\n", saved.Type, core.FormatAmount(saved.Amount), saved.ID)
			return nil
		})(cmd, args)
	}

	var period, typ string
	list := &cobra.Command{
		Use:   "list <user>",
		Short: "List transactions in a period",
		Args:  cobra.ExactArgs(1),
	}
	list.Flags().StringVar(&period, "period", core.PeriodThisMonth, "today, this-week, this-month, last-month or this-year")
	list.Flags().StringVar(&typ, "type", "", "expense or income (default both)")
	list.RunE = func(cmd *cobra.Command, args []string) error {
		resolver := core.Resolver{Now: a.opts.Now, Location: a.opts.Location}
		tr, err := resolver.Resolve(period)
		if err != nil {
			return err
		}
		q := ports.TransactionQuery{Range: tr}
		if typ != "" {
			if q.Type, err = core.ParseTxType(typ); err != nil {
				return fmt.Errorf("invalid --type: %w", err)
			}
		}
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			txs, err := repo.ListTransactions(ctx, args[0], q)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tTYPE\tAMOUNT")
			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", tx.Timestamp.In(a.opts.Location).Format(time.RFC3339), tx.Type, core.FormatAmount(tx.Amount))
			}
			return w.Flush()
		})(cmd, args)
	}

	cmd.AddCommand(add, list)
	return cmd
}

func (a *app) activityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage streak days",
	}

	var day string
	record := &cobra.Command{
		Use:   "record <user>",
		Short: "Record a streak day, today unless --day is given",
		Args:  cobra.ExactArgs(1),
	}
	record.Flags().StringVar(&day, "day", "", "calendar day, YYYY-MM-DD")
	record.RunE = func(cmd *cobra.Command, args []string) error {
		d := core.DateIn(a.opts.Now(), a.opts.Location)
		if day != "" {
			var err error
			if d, err = core.ParseDate(day, a.opts.Location); err != nil {
				return fmt.Errorf("invalid --day %q: %w", day, err)
			}
		}
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			if err := repo.RecordStreakDay(ctx, args[0], d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s\n", d)
			return nil
		})(cmd, args)
	}

	list := &cobra.Command{
		Use:   "list <user>",
		Short: "List recorded streak days",
		Args:  cobra.ExactArgs(1),
	}
	list.RunE = func(cmd *cobra.Command, args []string) error {
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			days, err := repo.ListStreakDays(ctx, args[0])
			if err != nil {
				return err
			}
			for _, d := range days {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		})(cmd, args)
	}

	cmd.AddCommand(record, list)
	return cmd
}

func (a *app) seedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Bulk load data",
	}

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a seed document, the same format the memory backend reads",
		Args:  cobra.ExactArgs(1),
	}
	imp.RunE = func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open seed: %w", err)
		}
		defer f.Close()
		seed, err := sources.DecodeSeed(f)
		if err != nil {
			return err
		}
		return a.withRepo(func(ctx context.Context, repo *storage.SQLiteRepository) error {
			if err := sources.ApplySeed(ctx, seed, repo, a.opts.Location); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users\n", len(seed.Users))
			return nil
		})(cmd, args)
	}

	cmd.AddCommand(imp)
	return cmd
}
