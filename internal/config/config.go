// Package config provides configuration types and defaults for devconsole.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/devconsole/internal/log"
	"github.com/zjrosen/devconsole/internal/tracing"
)

// Config holds all configuration options for devconsole.
type Config struct {
	LogPath   string          `mapstructure:"log_path"`
	LogBuffer int             `mapstructure:"log_buffer"`
	LogLevel  string          `mapstructure:"log_level"`
	Debug     bool            `mapstructure:"debug"`
	Autoexec  []string        `mapstructure:"autoexec"`
	UI        UIConfig        `mapstructure:"ui"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	History   HistoryConfig   `mapstructure:"history"`
	Flags     map[string]bool `mapstructure:"flags"`
}

// UIConfig holds console overlay options.
type UIConfig struct {
	Prompt        string `mapstructure:"prompt"`
	OutputLines   int    `mapstructure:"output_lines"`   // lines kept in the output pane
	ShowLogs      bool   `mapstructure:"show_logs"`      // mirror log entries into the output pane
	PaletteLimit  int    `mapstructure:"palette_limit"`  // max rows in the command palette
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the backend: "none", "file", "stdout", "otlp".
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/devconsole/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"` // 0.0 to 1.0
}

// HistoryConfig holds execution history settings.
type HistoryConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `mapstructure:"driver"`

	// Path is the SQLite database file.
	// Default: ~/.config/devconsole/history.db
	Path string `mapstructure:"path"`

	// Limit caps rows returned by the history command and recall.
	Limit int `mapstructure:"limit"`

	// RecentTTL is how long a name stays boosted in the palette, e.g. "10m".
	RecentTTL string `mapstructure:"recent_ttl"`
}

// DefaultTracesFilePath returns ~/.config/devconsole/traces/traces.jsonl,
// or "" if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devconsole", "traces", "traces.jsonl")
}

// DefaultHistoryPath returns ~/.config/devconsole/history.db, or "" if the
// home directory is unavailable.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devconsole", "history.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		LogBuffer: 500,
		LogLevel:  "info",
		UI: UIConfig{
			Prompt:        "> ",
			OutputLines:   200,
			ShowLogs:      true,
			PaletteLimit:  8,
			ShowStatusBar: true,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		History: HistoryConfig{
			Driver:    "sqlite",
			Path:      "", // derived at runtime
			Limit:     50,
			RecentTTL: "10m",
		},
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if c.LogBuffer < 0 {
		return fmt.Errorf("log_buffer must be >= 0, got %d", c.LogBuffer)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	for i, name := range c.Autoexec {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("autoexec[%d]: command name is empty", i)
		}
	}
	if c.UI.OutputLines < 0 {
		return fmt.Errorf("ui.output_lines must be >= 0, got %d", c.UI.OutputLines)
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	return ValidateHistory(c.History)
}

// ValidateTracing checks tracing configuration for errors.
// Empty values use defaults.
func ValidateTracing(t TracingConfig) error {
	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be one of none, file, stdout, otlp, got %q", t.Exporter)
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	if t.Enabled && t.Exporter == "otlp" && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required for the otlp exporter")
	}
	return nil
}

// ValidateHistory checks history configuration for errors.
func ValidateHistory(h HistoryConfig) error {
	switch h.Driver {
	case "", "sqlite", "memory":
	default:
		return fmt.Errorf("history.driver must be sqlite or memory, got %q", h.Driver)
	}
	if h.Limit < 0 {
		return fmt.Errorf("history.limit must be >= 0, got %d", h.Limit)
	}
	if _, err := h.TTL(); err != nil {
		return err
	}
	return nil
}

// TTL parses RecentTTL; empty means ten minutes.
func (h HistoryConfig) TTL() (time.Duration, error) {
	if h.RecentTTL == "" {
		return 10 * time.Minute, nil
	}
	d, err := time.ParseDuration(h.RecentTTL)
	if err != nil {
		return 0, fmt.Errorf("history.recent_ttl: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("history.recent_ttl must be positive, got %s", h.RecentTTL)
	}
	return d, nil
}

// TracingProviderConfig converts the tracing section for tracing.NewProvider.
func (c Config) TracingProviderConfig() tracing.Config {
	cfg := tracing.DefaultConfig()
	cfg.Enabled = c.Tracing.Enabled
	if c.Tracing.Exporter != "" {
		cfg.Exporter = c.Tracing.Exporter
	}
	cfg.FilePath = c.Tracing.FilePath
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultTracesFilePath()
	}
	if c.Tracing.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = c.Tracing.OTLPEndpoint
	}
	if c.Tracing.SampleRate > 0 {
		cfg.SampleRate = c.Tracing.SampleRate
	}
	return cfg
}

// HistoryPath returns the configured history database, falling back to
// DefaultHistoryPath.
func (c Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return DefaultHistoryPath()
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# devconsole configuration

# Log file (empty keeps logs in memory only; --debug defaults it to debug.log)
# log_path: debug.log
log_buffer: 500      # entries kept for the console output pane
log_level: info      # debug, info, warn, error

# Commands executed once after the console starts, in order
# autoexec:
#   - commands
#   - heal

ui:
  prompt: "> "
  output_lines: 200      # lines kept in the output pane
  show_logs: true        # mirror log entries into the output pane
  palette_limit: 8       # max rows in the Tab completion palette
  show_status_bar: true

# Execution history
history:
  driver: sqlite         # sqlite or memory
  # path: ~/.config/devconsole/history.db
  limit: 50              # rows shown by 'devconsole history' and up/down recall
  recent_ttl: 10m        # how long a command stays boosted in the palette

# OpenTelemetry tracing of scans and dispatches
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.config/devconsole/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Feature flags
# flags:
#   evict-stale: false           # drop instance commands whose owner disappeared
#   history-persistence: true    # record executions to the history store
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
