package contract

import (
	"testing"

	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
	}{
		{
			name:        "valid minimal config",
			input:       &ConfigRawInput{},
			expectError: false,
		},
		{
			name:        "invalid output format",
			input:       &ConfigRawInput{Output: "xml"},
			expectError: true,
		},
		{
			name:        "invalid precision",
			input:       &ConfigRawInput{Precision: 3},
			expectError: true,
		},
		{
			name:        "negative width",
			input:       &ConfigRawInput{Width: -1},
			expectError: true,
		},
		{
			name:        "invalid color",
			input:       &ConfigRawInput{Color: "sometimes"},
			expectError: true,
		},
		{
			name:        "invalid include-pr",
			input:       &ConfigRawInput{IncludePR: "maybe"},
			expectError: true,
		},
		{
			name:        "invalid log level",
			input:       &ConfigRawInput{LogLevel: "trace"},
			expectError: true,
		},
		{
			name:        "invalid log format",
			input:       &ConfigRawInput{LogFormat: "xml"},
			expectError: true,
		},
		{
			name:        "reversed iteration range",
			input:       &ConfigRawInput{From: 3, To: 2},
			expectError: true,
		},
		{
			name:        "negative iteration range",
			input:       &ConfigRawInput{From: -1},
			expectError: true,
		},
		{
			name:        "invalid history backend",
			input:       &ConfigRawInput{HistoryBackend: "redis"},
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			input:       &ConfigRawInput{HistoryBackend: string(schema.MySQLBackend)},
			expectError: true,
		},
		{
			name:        "postgresql backend without connection string",
			input:       &ConfigRawInput{SettingsBackend: string(schema.PostgreSQLBackend)},
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			input: &ConfigRawInput{
				HistoryBackend:   string(schema.MySQLBackend),
				HistoryDBConnect: "user:pass@tcp(localhost:3306)/sprintboard",
			},
			expectError: false,
		},
		{
			name: "sqlite stores on the same file",
			input: &ConfigRawInput{
				SettingsBackend:   string(schema.SQLiteBackend),
				SettingsDBConnect: "/tmp/sb.db",
				HistoryBackend:    string(schema.SQLiteBackend),
				HistoryDBConnect:  "/tmp/sb.db",
			},
			expectError: true,
		},
		{
			name: "sqlite stores on default files",
			input: &ConfigRawInput{
				SettingsBackend: string(schema.SQLiteBackend),
				HistoryBackend:  string(schema.SQLiteBackend),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input)

			if tt.expectError {
				assert.Error(t, err, "contract.ProcessAndValidate should return an error for %s", tt.name)
			} else {
				assert.NoError(t, err, "contract.ProcessAndValidate should not return an error for %s", tt.name)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, &ConfigRawInput{InputPathStr: "board.tsv"}))

	assert.Equal(t, "board.tsv", cfg.InputPath)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultProject, cfg.Project)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.True(t, cfg.UseColors)
	assert.Nil(t, cfg.IncludePR)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, schema.NoneBackend, cfg.SettingsBackend)
	assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
}

func TestProcessAndValidateFilter(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{Search: " login ", Iteration: "2", Output: "JSON", IncludePR: "yes", From: 1, To: 3}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.FeatureFilter{Search: "login", Iteration: "2"}, cfg.Filter)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	require.NotNil(t, cfg.IncludePR)
	assert.True(t, *cfg.IncludePR)
	assert.Equal(t, 1, cfg.From)
	assert.Equal(t, 3, cfg.To)
}

func TestApplySettingsOverrides(t *testing.T) {
	settings := schema.Settings{IncludePRInDone: false}

	cfg := &Config{}
	assert.False(t, cfg.ApplySettingsOverrides(settings).IncludePRInDone)

	on := true
	cfg.IncludePR = &on
	assert.True(t, cfg.ApplySettingsOverrides(settings).IncludePRInDone)
	assert.False(t, settings.IncludePRInDone)

	clone := cfg.Clone()
	*clone.IncludePR = false
	assert.True(t, *cfg.IncludePR)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=sb"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}
