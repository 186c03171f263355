package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/devconsole/internal/config"
	"github.com/zjrosen/devconsole/internal/flags"
)

var autoexecCmd = &cobra.Command{
	Use:   "autoexec [NAME...]",
	Short: "Show or set the commands run at startup",
	Long: `With no arguments, print the autoexec list. With names, replace the list in
the config file; "--clear" empties it.

Examples:
  devconsole autoexec
  devconsole autoexec heal spawnEnemy
  devconsole autoexec --clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clearList, _ := cmd.Flags().GetBool("clear")
		if len(args) == 0 && !clearList {
			for _, name := range cfg.Autoexec {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}
		if clearList {
			args = nil
		}
		if err := config.SaveAutoexec(configPath(), args); err != nil {
			return fmt.Errorf("saving autoexec: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "autoexec saved to %s (%d commands)\n", configPath(), len(args))
		return nil
	},
}

var flagsCmd = &cobra.Command{
	Use:   "flags [NAME true|false]",
	Short: "Show or set feature flags",
	Long: `With no arguments, print every known feature flag and its value. With a
name and a boolean, save the flag to the config file.

Examples:
  devconsole flags
  devconsole flags evict-stale true`,
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or NAME and a boolean, got %d arguments", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			state := flags.New(cfg.Flags)
			for _, name := range flags.Known() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%t\n", name, state.Enabled(name))
			}
			return nil
		}
		name := args[0]
		if !slices.Contains(flags.Known(), name) {
			return fmt.Errorf("unknown flag %q (known: %v)", name, flags.Known())
		}
		enabled, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("flag %s: %w", name, err)
		}
		if err := config.SaveFlag(configPath(), name, enabled); err != nil {
			return fmt.Errorf("saving flag: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%t saved to %s\n", name, enabled, configPath())
		return nil
	},
}

func init() {
	autoexecCmd.Flags().Bool("clear", false, "empty the autoexec list")
	rootCmd.AddCommand(autoexecCmd, flagsCmd)
}
