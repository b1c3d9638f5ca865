// Package parquet provides data structures and functions for exporting sprintboard
// features, aggregates and import history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/sprintboard/schema"
	"github.com/parquet-go/parquet-go"
)

// ImportRun represents a single confirmed import.
// This struct maps to the sprintboard_import_runs database table.
type ImportRun struct {
	// RunID is the unique identifier for this import run
	RunID int64 `parquet:"run_id,snappy"`

	// SessionID is the import session that produced the run
	SessionID string `parquet:"session_id,snappy"`

	// Project is the settings project the import was merged into
	Project string `parquet:"project,snappy"`

	// StartTime is when the import began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the import completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	SourceName   string `parquet:"source_name,snappy"`
	AcceptedRows int32  `parquet:"accepted_rows,snappy"`
	RejectedRows int32  `parquet:"rejected_rows,snappy"`
	WarningCount int32  `parquet:"warning_count,snappy"`

	// SettingsJSON contains the exported settings at confirm time (nullable)
	SettingsJSON *string `parquet:"settings_json,optional,snappy"`
}

// Feature is one normalized feature. RunID is zero for features that were never recorded.
// This struct maps to the sprintboard_features database table.
type Feature struct {
	RunID     int64  `parquet:"run_id,snappy"`
	FeatureID string `parquet:"feature_id,snappy"`
	Title     string `parquet:"title,snappy"`
	Category  string `parquet:"category,snappy"`

	// Numeric fields stay null when the source row left them blank
	StoryPoints    *float64 `parquet:"story_points,optional,snappy"`
	EstimatedHours *float64 `parquet:"estimated_hours,optional,snappy"`
	ActualHours    *float64 `parquet:"actual_hours,optional,snappy"`
	Iteration      *float64 `parquet:"iteration,optional,snappy"`

	Status   string `parquet:"status,snappy"`
	Assignee string `parquet:"assignee,snappy"`
}

// AggregateSnapshot is one iteration aggregate with the category buckets flattened.
// This struct maps to the sprintboard_aggregate_snapshots database table.
type AggregateSnapshot struct {
	RunID          int64   `parquet:"run_id,snappy"`
	IterationIndex int32   `parquet:"iteration_index,snappy"`
	IterationName  string  `parquet:"iteration_name,snappy"`
	Start          string  `parquet:"start_date,snappy"`
	End            string  `parquet:"end_date,snappy"`
	WorkingDays    int32   `parquet:"working_days,snappy"`
	TotalPoints    float64 `parquet:"total_points,snappy"`
	DonePoints     float64 `parquet:"done_points,snappy"`
	PlannedPoints  float64 `parquet:"planned_points,snappy"`
	FETotal        float64 `parquet:"fe_total,snappy"`
	FEDone         float64 `parquet:"fe_done,snappy"`
	BETotal        float64 `parquet:"be_total,snappy"`
	BEDone         float64 `parquet:"be_done,snappy"`
	TestTotal      float64 `parquet:"test_total,snappy"`
	TestDone       float64 `parquet:"test_done,snappy"`
}

// Write encodes rows as a Parquet stream on w.
// The schema is derived from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Write(file, rows)
}

// WriteImportRunsParquet writes import runs to a Parquet file.
func WriteImportRunsParquet(data []ImportRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteFeaturesParquet writes features to a Parquet file.
func WriteFeaturesParquet(data []Feature, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteAggregateSnapshotsParquet writes aggregate snapshots to a Parquet file.
func WriteAggregateSnapshotsParquet(data []AggregateSnapshot, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertImportRunRecords converts schema.ImportRunRecord to ImportRun for Parquet export.
func ConvertImportRunRecords(records []schema.ImportRunRecord) []ImportRun {
	result := make([]ImportRun, len(records))
	for i, record := range records {
		result[i] = ImportRun{
			RunID:        record.RunID,
			SessionID:    record.SessionID,
			Project:      record.Project,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			SourceName:   record.SourceName,
			AcceptedRows: int32(record.AcceptedRows),
			RejectedRows: int32(record.RejectedRows),
			WarningCount: int32(record.WarningCount),
			SettingsJSON: record.SettingsJSON,
		}
	}
	return result
}

// ConvertFeatureRecords converts schema.FeatureRecord to Feature for Parquet export.
func ConvertFeatureRecords(records []schema.FeatureRecord) []Feature {
	result := make([]Feature, len(records))
	for i, r := range records {
		result[i] = Feature{
			RunID:          r.RunID,
			FeatureID:      r.FeatureID,
			Title:          r.Title,
			Category:       r.Category,
			StoryPoints:    r.StoryPoints,
			EstimatedHours: r.EstimatedHours,
			ActualHours:    r.ActualHours,
			Iteration:      r.Iteration,
			Status:         r.Status,
			Assignee:       r.Assignee,
		}
	}
	return result
}

// ConvertFeatures converts in-memory features to Feature rows.
func ConvertFeatures(features []schema.Feature) []Feature {
	result := make([]Feature, len(features))
	for i, f := range features {
		result[i] = Feature{
			FeatureID:      f.ID,
			Title:          f.Title,
			Category:       f.Category,
			StoryPoints:    f.StoryPoints,
			EstimatedHours: f.EstimatedHours,
			ActualHours:    f.ActualHours,
			Iteration:      f.Iteration,
			Status:         f.Status,
			Assignee:       f.Assignee,
		}
	}
	return result
}

// ConvertAggregateSnapshotRecords converts schema.AggregateSnapshotRecord to AggregateSnapshot for Parquet export.
func ConvertAggregateSnapshotRecords(records []schema.AggregateSnapshotRecord) []AggregateSnapshot {
	result := make([]AggregateSnapshot, len(records))
	for i, r := range records {
		result[i] = AggregateSnapshot{
			RunID:          r.RunID,
			IterationIndex: int32(r.IterationIndex),
			IterationName:  r.IterationName,
			Start:          r.Start,
			End:            r.End,
			WorkingDays:    int32(r.WorkingDays),
			TotalPoints:    r.TotalPoints,
			DonePoints:     r.DonePoints,
			PlannedPoints:  r.PlannedPoints,
			FETotal:        r.FETotal,
			FEDone:         r.FEDone,
			BETotal:        r.BETotal,
			BEDone:         r.BEDone,
			TestTotal:      r.TestTotal,
			TestDone:       r.TestDone,
		}
	}
	return result
}

// ConvertAggregates flattens computed aggregates into AggregateSnapshot rows.
func ConvertAggregates(aggs []schema.IterationAggregate) []AggregateSnapshot {
	result := make([]AggregateSnapshot, len(aggs))
	for i, a := range aggs {
		fe := a.CategoryPoints[schema.CategoryFE]
		be := a.CategoryPoints[schema.CategoryBE]
		test := a.CategoryPoints[schema.CategoryTest]
		result[i] = AggregateSnapshot{
			IterationIndex: int32(a.IterationIndex),
			IterationName:  a.IterationName,
			Start:          a.Start,
			End:            a.End,
			WorkingDays:    int32(a.WorkingDays),
			TotalPoints:    a.TotalPoints,
			DonePoints:     a.DonePoints,
			PlannedPoints:  a.PlannedPoints,
			FETotal:        fe.Total,
			FEDone:         fe.Done,
			BETotal:        be.Total,
			BEDone:         be.Done,
			TestTotal:      test.Total,
			TestDone:       test.Done,
		}
	}
	return result
}
