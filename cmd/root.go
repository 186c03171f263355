// Package cmd wires the devconsole command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/devconsole/internal/cachemanager"
	"github.com/zjrosen/devconsole/internal/config"
	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/ui/consoleview"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot race the input loop.
	_ = lipgloss.HasDarkBackground()
}

const (
	localConfigPath = ".devconsole/config.yaml"
	envPrefix       = "DEVCONSOLE"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "devconsole",
	Short: "An in-process developer console",
	Long: `An in-process developer console for the bundled demo scene.

Commands are declared in code and addressed by name. Type a name at the
prompt and press enter to run it; tab completes names and ctrl+x shows the
log.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runConsole,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .devconsole/config.yaml, then ~/.config/devconsole/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write logs to a file (log_path, default debug.log)")
	rootCmd.PersistentFlags().String("log-level", "", "minimum log level: debug, info, warn, error")

	bindFlags()
}

func bindFlags() {
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	setDefaults(config.Defaults())

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .devconsole/config.yaml (current directory)
		// 2. ~/.config/devconsole/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "devconsole"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, continue with defaults.
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func setDefaults(d config.Config) {
	viper.SetDefault("log_path", d.LogPath)
	viper.SetDefault("log_buffer", d.LogBuffer)
	viper.SetDefault("log_level", d.LogLevel)
	viper.SetDefault("debug", d.Debug)
	viper.SetDefault("autoexec", d.Autoexec)
	viper.SetDefault("ui.prompt", d.UI.Prompt)
	viper.SetDefault("ui.output_lines", d.UI.OutputLines)
	viper.SetDefault("ui.show_logs", d.UI.ShowLogs)
	viper.SetDefault("ui.palette_limit", d.UI.PaletteLimit)
	viper.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	viper.SetDefault("tracing.enabled", d.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", d.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", d.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	viper.SetDefault("history.driver", d.History.Driver)
	viper.SetDefault("history.path", d.History.Path)
	viper.SetDefault("history.limit", d.History.Limit)
	viper.SetDefault("history.recent_ttl", d.History.RecentTTL)
}

// configPath is the file settings are saved to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return localConfigPath
}

func runConsole(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := startSession(ctx, cfg, sessionOptions{ListenOutcomes: true, ListenRebuilds: true})
	if err != nil {
		return err
	}
	defer s.Close()

	ttl, _ := cfg.History.TTL()
	model := consoleview.New(ctx, consoleview.Config{
		Execute:     s.Manager.Execute,
		Entries:     s.Manager.Registry().Entries,
		Recall:      s.Store.RecentNames,
		RecallLimit: cfg.History.Limit,
		RecallTTL:   ttl,
		Recent:      cachemanager.NewRecentCommands(ttl),
		Logs:        log.NewListener(ctx),
		Rebuilds:    s.RebuildEvents,
		Outcomes:    s.OutcomeEvents,
		UI:          cfg.UI,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
