package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/devconsole/internal/config"
	"github.com/zjrosen/devconsole/internal/flags"
	"github.com/zjrosen/devconsole/internal/history"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/presentation"
)

var (
	historyLimit int
	historyNames bool
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent command executions",
	Long: `Show recent console command executions from the history store as JSON,
newest first.

Examples:
  devconsole history
  devconsole history --limit 5
  devconsole history --names
  devconsole history --clear`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cleanup, err := log.Init("", cfg.LogBuffer)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()

		store, err := openHistoryStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		ctx := cmd.Context()
		switch {
		case historyClear:
			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		case historyNames:
			names, err := store.RecentNames(ctx, limitOrDefault(historyLimit, cfg))
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		default:
			execs, err := store.Recent(ctx, limitOrDefault(historyLimit, cfg))
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatExecutions(presentation.FromExecutions(execs))
		}
	},
}

// openHistoryStore opens the persistent store, failing when persistence is
// off since a fresh memory store has nothing to show.
func openHistoryStore(c config.Config) (history.Store, error) {
	if err := config.ValidateHistory(c.History); err != nil {
		return nil, fmt.Errorf("invalid history configuration: %w", err)
	}
	if !flags.New(c.Flags).Enabled(flags.FlagHistoryPersistence) {
		return nil, fmt.Errorf("history persistence is disabled (flags.%s)", flags.FlagHistoryPersistence)
	}
	store, err := history.Open(c.History.Driver, c.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}

func limitOrDefault(limit int, c config.Config) int {
	if limit > 0 {
		return limit
	}
	return c.History.Limit
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "max rows (default history.limit)")
	historyCmd.Flags().BoolVar(&historyNames, "names", false, "print distinct names only, most recent first")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded executions")
	rootCmd.AddCommand(historyCmd)
}
