package contract

import (
	"fmt"
	"strings"

	"github.com/huangsam/sprintboard/schema"
)

// Default values for configuration.
const (
	DefaultStateFile = "sprintboard_state.json"
	DefaultProject   = "default"
	DefaultPrecision = 1
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// validLogLevels lists the accepted --log-level values.
var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// validLogFormats lists the accepted --log-format values.
var validLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

// Config holds the runtime configuration of a command.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath    string
	SettingsPath string
	StatePath    string
	Project      string

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Precision  int
	UseColors  bool

	// IncludePR overrides the includePRinDone setting when set.
	IncludePR *bool

	LogLevel  string
	LogFormat string

	From    int
	To      int
	Filter  schema.FeatureFilter
	Confirm bool

	SettingsBackend   schema.DatabaseBackend
	SettingsDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Settings          string `mapstructure:"settings"`
	StateFile         string `mapstructure:"state-file"`
	Project           string `mapstructure:"project"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Precision         int    `mapstructure:"precision"`
	Color             string `mapstructure:"color"`
	IncludePR         string `mapstructure:"include-pr"`
	LogLevel          string `mapstructure:"log-level"`
	LogFormat         string `mapstructure:"log-format"`
	SettingsBackend   string `mapstructure:"settings-backend"`
	SettingsDBConnect string `mapstructure:"settings-db-connect"`
	HistoryBackend    string `mapstructure:"history-backend"`
	HistoryDBConnect  string `mapstructure:"history-db-connect"`

	// --- Fields from velocityCmd.Flags() ---
	From int `mapstructure:"from"`
	To   int `mapstructure:"to"`

	// --- Fields from featuresCmd.Flags() ---
	Search    string `mapstructure:"search"`
	Category  string `mapstructure:"category"`
	Status    string `mapstructure:"status"`
	Iteration string `mapstructure:"iteration"`
	Assignee  string `mapstructure:"assignee"`

	// --- Fields from importCmd.Flags() ---
	Confirm bool `mapstructure:"confirm"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.IncludePR != nil {
		v := *c.IncludePR
		clone.IncludePR = &v
	}
	return &clone
}

// ApplySettingsOverrides returns settings with command line overrides applied.
func (c *Config) ApplySettingsOverrides(s schema.Settings) schema.Settings {
	out := s.Clone()
	if c.IncludePR != nil {
		out.IncludePRInDone = *c.IncludePR
	}
	return out
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateReportInputs(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// parseBackend lowercases a backend name, treating empty as none.
func parseBackend(raw, kind string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if backend == "" {
		return schema.NoneBackend, nil
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid %s backend '%s'. must be sqlite, mysql, postgresql, none", kind, raw)
	}
	return backend, nil
}

// validateBackendConfigs validates settings and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Settings Backend Validation ---
	backend, err := parseBackend(input.SettingsBackend, "settings")
	if err != nil {
		return err
	}
	cfg.SettingsBackend = backend
	cfg.SettingsDBConnect = input.SettingsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SettingsBackend, cfg.SettingsDBConnect); err != nil {
		return fmt.Errorf("settings store: %w", err)
	}

	// --- History Backend Validation ---
	backend, err = parseBackend(input.HistoryBackend, "history")
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history store: %w", err)
	}

	// Validate that settings and history use different SQLite files
	if cfg.SettingsBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		settingsDBPath := cfg.SettingsDBConnect
		if settingsDBPath == "" {
			settingsDBPath = GetSettingsDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if settingsDBPath == historyDBPath {
			return fmt.Errorf("settings and history storage must use different SQLite database files. Both resolve to %q", settingsDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates file, output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputPath = input.InputPathStr
	cfg.SettingsPath = input.Settings
	cfg.OutputFile = input.OutputFile
	cfg.Confirm = input.Confirm

	cfg.StatePath = input.StateFile
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStateFile
	}
	cfg.Project = strings.TrimSpace(input.Project)
	if cfg.Project == "" {
		cfg.Project = DefaultProject
	}

	// --- 1. Width and Precision Validation ---
	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	if input.Precision == 0 {
		input.Precision = DefaultPrecision
	}
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	// --- 2. Output Validation ---
	if input.Output == "" {
		input.Output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 3. Boolean Flags ---
	if input.Color == "" {
		input.Color = "yes"
	}
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.IncludePR = nil
	if input.IncludePR != "" {
		includePR, err := ParseBoolString(input.IncludePR)
		if err != nil {
			return fmt.Errorf("invalid --include-pr value: %w", err)
		}
		cfg.IncludePR = &includePR
	}

	// --- 4. Logging ---
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, ok := validLogLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if _, ok := validLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}

	return nil
}

// validateReportInputs processes the iteration range and feature filter.
func validateReportInputs(cfg *Config, input *ConfigRawInput) error {
	if input.From < 0 || input.To < 0 {
		return fmt.Errorf("iteration range must not be negative (from %d, to %d)", input.From, input.To)
	}
	if input.From > 0 && input.To > 0 && input.To < input.From {
		return fmt.Errorf("--to (%d) cannot be before --from (%d)", input.To, input.From)
	}
	cfg.From = input.From
	cfg.To = input.To

	cfg.Filter = schema.FeatureFilter{
		Search:    strings.TrimSpace(input.Search),
		Category:  strings.TrimSpace(input.Category),
		Status:    strings.TrimSpace(input.Status),
		Iteration: strings.TrimSpace(input.Iteration),
		Assignee:  strings.TrimSpace(input.Assignee),
	}
	return nil
}
