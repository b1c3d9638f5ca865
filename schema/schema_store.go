package schema

import "time"

// ImportRunRecord represents a row from the sprintboard_import_runs table.
type ImportRunRecord struct {
	RunID        int64
	SessionID    string
	Project      string
	StartTime    time.Time
	EndTime      *time.Time
	SourceName   string
	AcceptedRows int
	RejectedRows int
	WarningCount int
	SettingsJSON *string
}

// FeatureRecord represents a row from the sprintboard_features table.
type FeatureRecord struct {
	RunID          int64
	FeatureID      string
	Title          string
	Category       string
	StoryPoints    *float64
	EstimatedHours *float64
	ActualHours    *float64
	Iteration      *float64
	Status         string
	Assignee       string
}

// AggregateSnapshotRecord represents a row from the sprintboard_aggregate_snapshots table.
type AggregateSnapshotRecord struct {
	RunID          int64
	IterationIndex int
	IterationName  string
	Start          string
	End            string
	WorkingDays    int
	TotalPoints    float64
	DonePoints     float64
	PlannedPoints  float64
	FETotal        float64
	FEDone         float64
	BETotal        float64
	BEDone         float64
	TestTotal      float64
	TestDone       float64
}
