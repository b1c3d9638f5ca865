package iostore

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/parquet"
)

// ErrNoHistory is returned when an export finds nothing to write.
var ErrNoHistory = errors.New("no import history found to export")

// ExecuteHistoryExport writes every recorded run, feature and aggregate snapshot to Parquet files
// named after outputFile.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return ErrNoHistory
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total import runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total feature records: %d\n", status.TableSizes[featuresTable])

	runs, err := store.GetAllImportRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve import runs: %w", err)
	}
	features, err := store.GetAllFeatures()
	if err != nil {
		return fmt.Errorf("failed to retrieve features: %w", err)
	}
	snapshots, err := store.GetAllAggregateSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve aggregate snapshots: %w", err)
	}

	runsFile := outputFile + ".import_runs.parquet"
	if err := parquet.WriteImportRunsParquet(parquet.ConvertImportRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write import runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d import runs to: %s\n", len(runs), runsFile)

	featuresFile := outputFile + ".features.parquet"
	if err := parquet.WriteFeaturesParquet(parquet.ConvertFeatureRecords(features), featuresFile); err != nil {
		return fmt.Errorf("failed to write features: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d features to: %s\n", len(features), featuresFile)

	snapshotsFile := outputFile + ".aggregate_snapshots.parquet"
	if err := parquet.WriteAggregateSnapshotsParquet(parquet.ConvertAggregateSnapshotRecords(snapshots), snapshotsFile); err != nil {
		return fmt.Errorf("failed to write aggregate snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d aggregate snapshots to: %s\n", len(snapshots), snapshotsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Spark.")
	return nil
}
