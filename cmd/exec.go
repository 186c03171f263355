package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/zjrosen/devconsole/internal/dispatch"
	"github.com/zjrosen/devconsole/internal/presentation"
	"github.com/zjrosen/devconsole/internal/pubsub"
	"github.com/zjrosen/devconsole/internal/registry"
)

var execShowRebuilds bool

var execCmd = &cobra.Command{
	Use:   "exec NAME...",
	Short: "Run console commands without the UI",
	Long: `Run console commands by name, in order, and print one JSON result per name.

An unknown name triggers one rescan; if it is still unknown it is reported
and the remaining names still run. The exit status is non-zero when any name
was not found.

Examples:
  devconsole exec heal spawnEnemy
  devconsole exec loadExpansion openPortal --rebuilds`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		s, err := startSession(ctx, cfg, sessionOptions{ListenRebuilds: execShowRebuilds})
		if err != nil {
			return err
		}
		defer s.Close()

		var wg sync.WaitGroup
		if s.RebuildEvents != nil {
			rebuilds := s.RebuildEvents.Events()
			wg.Add(1)
			go func() {
				defer wg.Done()
				for event := range rebuilds {
					printRebuild(cmd, event)
				}
			}()
		}

		var missing int
		for _, name := range args {
			outcome, err := s.Manager.Execute(ctx, name)
			if err != nil {
				missing++
			}
			if err := presentation.NewFormatter(cmd.OutOrStdout()).FormatOutcome(presentation.FromOutcome(outcome)); err != nil {
				return err
			}
		}

		cancel()
		wg.Wait()
		if missing > 0 {
			return fmt.Errorf("%d of %d commands not found: %w", missing, len(args), dispatch.ErrCommandNotFound)
		}
		return nil
	},
}

func printRebuild(cmd *cobra.Command, event pubsub.Event[registry.Report]) {
	r := event.Payload
	fmt.Fprintf(cmd.ErrOrStderr(), "rebuild: registered=%d duplicates=%d missing=%d evicted=%d\n",
		len(r.Registered), len(r.Duplicates), len(r.MissingInstance), len(r.Evicted))
}

func init() {
	execCmd.Flags().BoolVar(&execShowRebuilds, "rebuilds", false, "print a summary line to stderr for each registry rebuild")
	rootCmd.AddCommand(execCmd)
}
