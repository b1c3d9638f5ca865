package cmd

import (
	"github.com/huangsam/sprintboard/core"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/spf13/cobra"
)

// runReport executes a report and exits on failure.
func runReport(name string, fn core.ExecutorFunc) {
	if err := fn(rootCtx, cfg, storeManager); err != nil {
		contract.LogFatal("Cannot run "+name+" report", err)
	}
}

// aggregateCmd shows per-iteration story point totals.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Show story points per iteration and category.",
	Long: `Show total, done and planned story points for every configured iteration,
split into the FE, BE and テスト categories.

Discarded features never count. Features without an iteration, or with one past
the last configured iteration, are left out.

Examples:
  # Per-iteration table
  sprintboard aggregate

  # Count features in review as done
  sprintboard aggregate --include-pr yes

  # Export for a spreadsheet or DuckDB
  sprintboard aggregate --output csv --output-file aggregates.csv
  sprintboard aggregate --output parquet --output-file aggregates.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runReport("aggregate", core.ExecuteAggregate)
	},
}

// progressCmd shows cumulative progress against plan.
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show cumulative planned versus actual progress through each iteration.",
	Long: `Show, for each iteration, the story points done so far against the points
the team planned to consume, overall and per category.

A positive delta means the project is ahead of plan.

Examples:
  sprintboard progress
  sprintboard progress --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runReport("progress", core.ExecuteProgress)
	},
}

// velocityCmd shows team and member velocity.
var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Show team velocity per iteration and member velocity over a range.",
	Long: `Show target versus actual points per iteration for the team and each role,
then each member's target, actual points and velocity over an iteration range.

Features without story points in the range are listed at the end.

Examples:
  # Whole project
  sprintboard velocity

  # Iterations 2 through 4
  sprintboard velocity --from 2 --to 4`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runReport("velocity", core.ExecuteVelocity)
	},
}

// summaryCmd shows the project totals.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show project totals with discarded points reported separately.",
	Long: `Show total story points, feature counts and per-category points.
Discarded features are counted on their own and never add to the totals.

Examples:
  sprintboard summary
  sprintboard summary --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runReport("summary", core.ExecuteSummary)
	},
}

// featuresCmd lists imported features.
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List imported features, optionally filtered.",
	Long: `List the imported features. Every filter given must match.

--search is a case-insensitive substring match over title, category, status and
assignee. --category compares normalized categories, so "(fe)" matches FE;
the other filters match exactly.

Examples:
  # Everything assigned to Alice in iteration 3
  sprintboard features --assignee Alice --iteration 3

  # Search titles
  sprintboard features --search login

  # Export as Parquet
  sprintboard features --output parquet --output-file features.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runReport("features", core.ExecuteFeatures)
	},
}
