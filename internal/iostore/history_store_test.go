package iostore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteHistoryStore(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

func sampleFeatures() []schema.Feature {
	return []schema.Feature{
		{ID: "1", Title: "Login", Category: "FE", StoryPoints: schema.Float(3), Iteration: schema.Float(1), Status: "完了", Assignee: "Alice"},
		{ID: "2", Title: "API", Category: "BE", Iteration: schema.Float(2), Status: "作業中"},
	}
}

func sampleAggregates() []schema.IterationAggregate {
	return []schema.IterationAggregate{
		{
			IterationIndex: 1,
			Start:          "2025-04-01",
			End:            "2025-04-14",
			WorkingDays:    10,
			TotalPoints:    3,
			DonePoints:     3,
			PlannedPoints:  10,
			CategoryPoints: map[schema.Category]schema.CategoryPoints{schema.CategoryFE: {Total: 3, Done: 3}},
		},
		{
			IterationIndex: 2,
			IterationName:  "Sprint 2",
			Start:          "2025-04-15",
			End:            "2025-04-28",
			WorkingDays:    9,
			PlannedPoints:  9,
			CategoryPoints: map[schema.Category]schema.CategoryPoints{},
		},
	}
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginImport(schema.ImportRunRecord{StartTime: time.Now()})
	assert.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.EndImport(runID, time.Now(), 1, 0, 0))
	assert.NoError(t, store.RecordFeatures(runID, sampleFeatures()))
	assert.NoError(t, store.RecordAggregates(runID, sampleAggregates()))

	runs, err := store.GetAllImportRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Empty(t, status.TableSizes)
}

func TestHistoryStore_SQLite(t *testing.T) {
	store := newSQLiteHistoryStore(t)

	start := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	settingsJSON := `{"includePRinDone":false}`
	runID, err := store.BeginImport(schema.ImportRunRecord{
		SessionID:    "session-1",
		Project:      "default",
		StartTime:    start,
		SourceName:   "board.tsv",
		SettingsJSON: &settingsJSON,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), runID)

	require.NoError(t, store.RecordFeatures(runID, sampleFeatures()))
	require.NoError(t, store.RecordAggregates(runID, sampleAggregates()))
	require.NoError(t, store.EndImport(runID, start.Add(time.Second), 2, 1, 3))

	t.Run("import runs", func(t *testing.T) {
		runs, err := store.GetAllImportRuns()
		require.NoError(t, err)
		require.Len(t, runs, 1)
		run := runs[0]
		assert.Equal(t, "session-1", run.SessionID)
		assert.Equal(t, "board.tsv", run.SourceName)
		assert.True(t, start.Equal(run.StartTime))
		require.NotNil(t, run.EndTime)
		assert.True(t, start.Add(time.Second).Equal(*run.EndTime))
		assert.Equal(t, 2, run.AcceptedRows)
		assert.Equal(t, 1, run.RejectedRows)
		assert.Equal(t, 3, run.WarningCount)
		require.NotNil(t, run.SettingsJSON)
		assert.Equal(t, settingsJSON, *run.SettingsJSON)
	})

	t.Run("features keep nulls", func(t *testing.T) {
		features, err := store.GetAllFeatures()
		require.NoError(t, err)
		require.Len(t, features, 2)
		assert.Equal(t, "Login", features[0].Title)
		require.NotNil(t, features[0].StoryPoints)
		assert.Equal(t, 3.0, *features[0].StoryPoints)
		assert.Nil(t, features[1].StoryPoints)
		assert.Nil(t, features[1].ActualHours)
		assert.Equal(t, "", features[1].Assignee)
	})

	t.Run("aggregate snapshots", func(t *testing.T) {
		snapshots, err := store.GetAllAggregateSnapshots()
		require.NoError(t, err)
		require.Len(t, snapshots, 2)
		assert.Equal(t, 3.0, snapshots[0].FEDone)
		assert.Equal(t, 10.0, snapshots[0].PlannedPoints)
		assert.Equal(t, "Sprint 2", snapshots[1].IterationName)
		assert.Equal(t, 9, snapshots[1].WorkingDays)
	})

	t.Run("status", func(t *testing.T) {
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 1, status.TotalRuns)
		assert.Equal(t, runID, status.LastRunID)
		assert.True(t, start.Equal(status.LastRunTime))
		assert.True(t, start.Equal(status.OldestRunTime))
		assert.Equal(t, 2, status.TotalFeatures)
		assert.Equal(t, int64(2), status.TableSizes[aggregateSnapshotsTable])
	})
}

func TestHistoryStore_MultipleRuns(t *testing.T) {
	store := newSQLiteHistoryStore(t)

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	for i := range 3 {
		runID, err := store.BeginImport(schema.ImportRunRecord{SessionID: "s", Project: "p", StartTime: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
		require.NoError(t, store.RecordFeatures(runID, sampleFeatures()))
	}

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, int64(3), status.LastRunID)
	assert.True(t, base.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.True(t, base.Equal(status.OldestRunTime))
	assert.Equal(t, 6, status.TotalFeatures)

	runs, err := store.GetAllImportRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Nil(t, runs[0].EndTime, "unfinished runs have no end time")
}

func TestHistoryStore_DuplicateFeatureRollsBack(t *testing.T) {
	store := newSQLiteHistoryStore(t)

	runID, err := store.BeginImport(schema.ImportRunRecord{SessionID: "s", Project: "p", StartTime: time.Now()})
	require.NoError(t, err)

	dup := []schema.Feature{{ID: "1", Title: "a"}, {ID: "1", Title: "b"}}
	assert.Error(t, store.RecordFeatures(runID, dup))

	features, err := store.GetAllFeatures()
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestHistoryStore_EndUnknownRun(t *testing.T) {
	store := newSQLiteHistoryStore(t)
	err := store.EndImport(42, time.Now(), 0, 0, 0)
	assert.ErrorContains(t, err, "import run 42 not found")
}

func TestGetCreateHistoryQueries(t *testing.T) {
	assert.Contains(t, getCreateImportRunsQuery(schema.PostgreSQLBackend), "BIGSERIAL")
	assert.Contains(t, getCreateImportRunsQuery(schema.MySQLBackend), "AUTO_INCREMENT")
	assert.Contains(t, getCreateImportRunsQuery(schema.SQLiteBackend), "AUTOINCREMENT")
	assert.Contains(t, getCreateFeaturesQuery(schema.PostgreSQLBackend), "DOUBLE PRECISION")
	assert.Contains(t, getCreateAggregateSnapshotsQuery(schema.MySQLBackend), "fe_total DOUBLE NOT NULL")
	assert.Contains(t, getCreateAggregateSnapshotsQuery(schema.SQLiteBackend), "fe_total REAL NOT NULL")
}
