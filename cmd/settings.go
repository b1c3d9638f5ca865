package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/sprintboard/core"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/iostore"
	"github.com/huangsam/sprintboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settingsStoreSetup loads minimal configuration needed for settings store operations.
// This is used by commands that need store access without full shared setup.
func settingsStoreSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get settings-store config values
	backend := schema.DatabaseBackend(viper.GetString("settings-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("settings-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the settings store only
	if err := iostore.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize settings store: %w", err)
	}

	cfg.SettingsBackend = backend
	cfg.SettingsDBConnect = connStr

	return nil
}

// settingsStoreSetupWrapper wraps settingsStoreSetup to provide PreRunE for store commands.
func settingsStoreSetupWrapper(_ *cobra.Command, _ []string) error {
	return settingsStoreSetup()
}

// settingsCmd focused on the settings document.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage iterations, members, header and status mappings",
	Long: `Manage the settings document every report is computed with.

Settings are read from --settings when given, then from the settings store of
--project when a settings backend is configured, then from the state file.

Subcommands:
  export         - Write the current settings as JSON or YAML
  import         - Replace the settings with a JSON or YAML document
  validate       - Check a settings document without applying it
  iterations     - Replace the iterations with tab-separated lines
  status-mapping - Show or replace the status mappings
  status         - Show settings store statistics
  clear          - Remove every stored settings document

Examples:
  # Back up settings as YAML
  sprintboard settings export --output-file settings.yaml

  # Share settings between machines through MySQL
  SPRINTBOARD_SETTINGS_BACKEND=mysql SPRINTBOARD_SETTINGS_DB_CONNECT="..." sprintboard settings import settings.yaml`,
}

// settingsExportCmd writes the settings document.
var settingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current settings as JSON (or YAML for .yaml/.yml output files)",
	Long: `Write the resolved settings document to stdout or --output-file.

Examples:
  sprintboard settings export
  sprintboard settings export --output-file settings.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSettingsExport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to export settings", err)
		}
	},
}

// settingsImportCmd replaces the settings document.
var settingsImportCmd = &cobra.Command{
	Use:   "import <settings.json|settings.yaml>",
	Short: "Replace the settings with a JSON or YAML document",
	Long: `Replace the settings in the state file, and in the settings store when one is
configured. Every problem in the document is reported and nothing is applied
unless the whole document is valid.

Examples:
  sprintboard settings import settings.json
  sprintboard settings import team.yaml --project mobile`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSettingsImport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to import settings", err)
		}
	},
}

// settingsValidateCmd checks a settings document.
var settingsValidateCmd = &cobra.Command{
	Use:   "validate <settings.json|settings.yaml>",
	Short: "Check a settings document without applying it",
	Long: `List every problem in a settings document. Nothing is written.

Examples:
  sprintboard settings validate settings.json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSettingsValidate(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Invalid settings", err)
		}
	},
}

// settingsIterationsCmd replaces the iterations.
var settingsIterationsCmd = &cobra.Command{
	Use:   "iterations <file.tsv>",
	Short: "Replace the iterations with tab-separated lines",
	Long: `Replace the configured iterations. Each line holds start date, end date,
working days and an optional name, separated by tabs. Dates may be written as
2025-01-06, 2025/1/6 or 1月6日; dates without a year use the current year.

Use "-" to read from stdin.

Examples:
  sprintboard settings iterations iterations.tsv
  printf '1月6日\t1月17日\t10\n1月20日\t1月31日\t9\n' | sprintboard settings iterations -`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSettingsIterations(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to set iterations", err)
		}
	},
}

// settingsStatusMappingCmd shows or replaces the status mappings.
var settingsStatusMappingCmd = &cobra.Command{
	Use:   "status-mapping [file.tsv]",
	Short: "Show or replace how raw status values map onto internal statuses",
	Long: `Without a file, print the source value of every internal status followed by
the additional sources. With a file, replace the status mappings first. Each line
holds a raw status value and an internal status (未対応, 作業中, PR中, 完了, 破棄)
separated by a tab. The first value of a status is its default; the rest are
additional. Nothing is saved unless every internal status has a value.

Use "-" to read from stdin.

Examples:
  sprintboard settings status-mapping
  printf 'Todo\t未対応\nDoing\t作業中\nReview\tPR中\nDone\t完了\nClosed\t完了\nDropped\t破棄\n' | sprintboard settings status-mapping -`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSettingsStatusMapping(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Status mapping failed", err)
		}
	},
}

// settingsStatusCmd shows settings store status.
var settingsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display settings store statistics and connection details",
	Long: `Show the backend, the number of stored projects and the newest and oldest entries.

Examples:
  SPRINTBOARD_SETTINGS_BACKEND=sqlite sprintboard settings status`,
	PreRunE: settingsStoreSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iostore.Manager.GetSettingsStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get settings store status", err)
		}
		iostore.PrintSettingsStatus(os.Stdout, status)
	},
}

// settingsClearCmd clears the settings store.
var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored settings document",
	Long: `Delete all settings documents from the configured settings store.
The state file is not touched.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the settings table

Examples:
  SPRINTBOARD_SETTINGS_BACKEND=sqlite sprintboard settings clear`,
	PreRunE: settingsStoreSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearSettings(cfg.SettingsBackend, iostore.GetSettingsDBFilePath(), cfg.SettingsDBConnect); err != nil {
			contract.LogFatal("Failed to clear settings store", err)
		}
		fmt.Println("Settings store cleared successfully.")
	},
}
