package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/devconsole/internal/presentation"
)

var listNamesOnly bool

var commandsListCmd = &cobra.Command{
	Use:   "commands:list",
	Short: "List registered console commands",
	Long: `List every console command registered after the first scan as JSON.

Instance commands whose object is missing from the scene are not listed.

Examples:
  devconsole commands:list
  devconsole commands:list --names
  devconsole commands:list | jq '.[] | select(.static) | .name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := startSession(cmd.Context(), cfg, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		if listNamesOnly {
			for _, name := range s.Manager.ListCommandNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatCommands(presentation.FromEntries(s.Manager.Registry().Entries()))
	},
}

func init() {
	commandsListCmd.Flags().BoolVar(&listNamesOnly, "names", false, "print names only, one per line")
	rootCmd.AddCommand(commandsListCmd)
}
