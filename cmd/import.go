package cmd

import (
	"github.com/huangsam/sprintboard/core"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/spf13/cobra"
)

// importCmd parses and normalizes a TSV file.
var importCmd = &cobra.Command{
	Use:   "import <file.tsv>",
	Short: "Parse and validate a TSV feature list, optionally replacing the imported features.",
	Long: `Parse a tab-separated feature list and report accepted rows, row errors and warnings.

The header row is mapped onto the feature fields (title, status and iteration are required).
Saved header mappings win; anything missing is detected from the header names.

Without --confirm nothing is written. With --confirm the valid rows replace the
features in the state file, new assignees become members, and the run is recorded
in the import history when a history backend is configured. A file without a single
valid row is never confirmed.

Use "-" to read from stdin.

Examples:
  # Preview what would be imported
  sprintboard import features.tsv

  # Replace the imported features
  sprintboard import features.tsv --confirm

  # Paste from a spreadsheet
  pbpaste | sprintboard import - --confirm

  # Keep the row errors for later
  sprintboard import features.tsv --output csv --output-file errors.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteImport(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot import features", err)
		}
	},
}

// mappingCmd shows how the header row of a TSV file would be mapped.
var mappingCmd = &cobra.Command{
	Use:   "mapping <file.tsv>",
	Short: "Show how the header row of a TSV file maps onto feature fields.",
	Long: `Show the field each header maps to, which headers are ignored, and which
required fields are still missing.

Examples:
  # Check a new export before importing it
  sprintboard mapping features.tsv

  # Machine-readable report
  sprintboard mapping features.tsv --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMapping(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot map headers", err)
		}
	},
}
