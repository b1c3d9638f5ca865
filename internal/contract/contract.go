// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/sprintboard/schema"
)

// StoreManager defines the interface for managing persistence stores.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetSettingsStore() SettingsStore
	GetHistoryStore() HistoryStore
}

// SettingsStore keeps one settings document per project.
type SettingsStore interface {
	// Get returns the settings document and its timestamp, or nil data when the project has none.
	Get(project string) ([]byte, int64, error)

	// Set upserts the settings document of a project.
	Set(project string, value []byte, timestamp int64) error

	// GetStatus returns status information about the settings store
	GetStatus() (schema.SettingsStoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// HistoryStore records confirmed imports together with the features and aggregates they produced.
type HistoryStore interface {
	// BeginImport creates a new import run and returns its unique ID
	BeginImport(run schema.ImportRunRecord) (int64, error)

	// EndImport updates the import run with completion data
	EndImport(runID int64, endTime time.Time, accepted, rejected, warnings int) error

	// RecordFeatures stores the confirmed features of a run
	RecordFeatures(runID int64, features []schema.Feature) error

	// RecordAggregates stores the iteration aggregates computed at confirm time
	RecordAggregates(runID int64, aggs []schema.IterationAggregate) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllImportRuns returns every import run ordered by run ID
	GetAllImportRuns() ([]schema.ImportRunRecord, error)

	// GetAllFeatures returns every recorded feature ordered by run ID
	GetAllFeatures() ([]schema.FeatureRecord, error)

	// GetAllAggregateSnapshots returns every recorded aggregate ordered by run and iteration
	GetAllAggregateSnapshots() ([]schema.AggregateSnapshotRecord, error)

	// Close closes the underlying connection
	Close() error
}
