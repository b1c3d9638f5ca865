// Package cmd defines the command-line interface for sprintboard.
package cmd

import (
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(mappingCmd)
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(velocityCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the settings subcommands to the parent settings command
	settingsCmd.AddCommand(settingsExportCmd)
	settingsCmd.AddCommand(settingsImportCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	settingsCmd.AddCommand(settingsIterationsCmd)
	settingsCmd.AddCommand(settingsStatusMappingCmd)
	settingsCmd.AddCommand(settingsStatusCmd)
	settingsCmd.AddCommand(settingsClearCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("settings", "", "Path to a settings document (JSON, or YAML for .yaml/.yml) used instead of the saved settings")
	rootCmd.PersistentFlags().String("state-file", contract.DefaultStateFile, "Path to the state file holding imported features and settings")
	rootCmd.PersistentFlags().String("project", contract.DefaultProject, "Project key used for the settings store and import history")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("include-pr", "", "Count features in review as done, overriding the includePRinDone setting (yes/no)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: text or json")
	rootCmd.PersistentFlags().String("settings-backend", string(schema.NoneBackend), "Settings store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("settings-db-connect", "", "Database connection string for the settings store (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Import history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for the import history (must differ from settings-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of importCmd to Viper
	importCmd.Flags().Bool("confirm", false, "Replace the imported features with the valid rows of this file")
	if err := viper.BindPFlags(importCmd.Flags()); err != nil {
		contract.LogFatal("Error binding import flags", err)
	}

	// Bind all flags of velocityCmd to Viper
	velocityCmd.Flags().Int("from", 0, "First iteration of the member velocity range (0 = first)")
	velocityCmd.Flags().Int("to", 0, "Last iteration of the member velocity range (0 = last)")
	if err := viper.BindPFlags(velocityCmd.Flags()); err != nil {
		contract.LogFatal("Error binding velocity flags", err)
	}

	// Bind all flags of featuresCmd to Viper
	featuresCmd.Flags().StringP("search", "s", "", "Case-insensitive text matched against title, category, status and assignee")
	featuresCmd.Flags().String("category", "", "Only show features of this category")
	featuresCmd.Flags().String("status", "", "Only show features with this status")
	featuresCmd.Flags().String("iteration", "", "Only show features of this iteration")
	featuresCmd.Flags().String("assignee", "", "Only show features of this assignee")
	if err := viper.BindPFlags(featuresCmd.Flags()); err != nil {
		contract.LogFatal("Error binding features flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
