package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/sprintboard/core/normalize"
	"github.com/huangsam/sprintboard/core/settings"
	"github.com/huangsam/sprintboard/internal/iostore"
	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const importInput = "タイトル\tステータス\tイテレーション\tポイント\t担当者\n" +
	"Login\t完了\t1\t3\tAlice, Bob\n" +
	"Logout\ttodo\t1\tabc\tBob\n"

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.tsv")
	require.NoError(t, os.WriteFile(path, []byte(importInput), 0o644))

	text, err := ReadInput(path)
	require.NoError(t, err)
	assert.Equal(t, importInput, text)

	_, err = ReadInput("")
	assert.ErrorContains(t, err, "an input file is required")

	_, err = ReadInput(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.ErrorContains(t, err, "failed to read input")
}

func TestRunImportPreview(t *testing.T) {
	cfg := testConfig(t)

	summary, err := RunImport(context.Background(), cfg, nil, importInput, "input.tsv")
	require.NoError(t, err)
	assert.Equal(t, schema.SessionParsed, summary.State)
	assert.Len(t, summary.Result.Features, 1)
	assert.Len(t, summary.Result.Errors, 1)
	assert.Len(t, summary.Result.Warnings, 1)
	assert.Equal(t, "ready: 1 valid, 1 invalid", summary.Message)
	assert.NoFileExists(t, cfg.StatePath)
}

func TestParseCorrections(t *testing.T) {
	corrections, err := ParseCorrections("3\tLogout\tBE\t2\r\n\n 5 \tSignup\t\t1\n")
	require.NoError(t, err)
	assert.Equal(t, []RowCorrection{
		{Line: 3, Text: "Logout\tBE\t2"},
		{Line: 5, Text: "Signup\t\t1"},
	}, corrections)

	corrections, err = ParseCorrections("")
	require.NoError(t, err)
	assert.Empty(t, corrections)

	_, err = ParseCorrections("3 Logout")
	assert.ErrorContains(t, err, "correction 1")
	_, err = ParseCorrections("\n1\tHeader")
	assert.ErrorContains(t, err, "correction 2: invalid line number")
}

func TestRunImportCorrections(t *testing.T) {
	cfg := testConfig(t)
	cfg.Confirm = true

	summary, err := RunImport(context.Background(), cfg, nil, importInput, "input.tsv",
		RowCorrection{Line: 3, Text: "Logout\t\t2\t\t\t1\ttodo\tBob"})
	require.NoError(t, err)
	assert.Equal(t, schema.SessionConfirmed, summary.State)
	assert.Empty(t, summary.Result.Errors)

	state, err := LoadState(cfg.StatePath)
	require.NoError(t, err)
	require.Len(t, state.Features, 2)
	assert.Equal(t, "Logout", state.Features[1].Title)
	require.NotNil(t, state.Features[1].StoryPoints)
	assert.Equal(t, 2.0, *state.Features[1].StoryPoints)

	_, err = RunImport(context.Background(), testConfig(t), nil, importInput, "input.tsv",
		RowCorrection{Line: 2, Text: "Login"})
	assert.ErrorIs(t, err, normalize.ErrUnknownBadRow)
}

func TestRunImportConfirm(t *testing.T) {
	cfg := testConfig(t)
	cfg.Confirm = true
	_, s := reportFixture()
	require.NoError(t, SaveState(cfg.StatePath, schema.State{
		Settings: s,
		Features: []schema.Feature{{ID: "old", Title: "Old"}},
	}))

	history := &iostore.MockHistoryStore{}
	history.On("BeginImport", mock.MatchedBy(func(run schema.ImportRunRecord) bool {
		return run.SourceName == "input.tsv" && run.Project == cfg.Project && run.SettingsJSON != nil
	})).Return(int64(7), nil)
	history.On("RecordFeatures", int64(7), mock.MatchedBy(func(features []schema.Feature) bool {
		return len(features) == 1 && features[0].Title == "Login"
	})).Return(nil)
	history.On("RecordAggregates", int64(7), mock.MatchedBy(func(aggs []schema.IterationAggregate) bool {
		return len(aggs) == 2 && aggs[0].DonePoints == 3
	})).Return(nil)
	history.On("EndImport", int64(7), mock.Anything, 1, 1, 1).Return(nil)

	mgr := &iostore.MockStoreManager{}
	mgr.On("GetSettingsStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	summary, err := RunImport(context.Background(), cfg, mgr, importInput, "input.tsv")
	require.NoError(t, err)
	assert.Equal(t, schema.SessionConfirmed, summary.State)
	assert.Equal(t, "imported 1 features", summary.Message)
	history.AssertExpectations(t)

	state, err := LoadState(cfg.StatePath)
	require.NoError(t, err)
	require.Len(t, state.Features, 1)
	assert.Equal(t, "Login", state.Features[0].Title)
	assert.Equal(t, "タイトル", state.Settings.HeaderMapping[schema.FieldTitle])
	assert.Equal(t, s.Iterations, state.Settings.Iterations)

	// Alice and Bob were already members; no one new is added
	require.Len(t, state.Settings.Members, 2)
}

func TestRunImportExtractsMembers(t *testing.T) {
	cfg := testConfig(t)
	cfg.Confirm = true

	_, err := RunImport(context.Background(), cfg, nil, importInput, "input.tsv")
	require.NoError(t, err)

	state, err := LoadState(cfg.StatePath)
	require.NoError(t, err)
	// Bob comes from the multi-assignee cell of the only valid row
	require.Len(t, state.Settings.Members, 2)
	assert.Equal(t, "Alice", state.Settings.Members[0].Name)
	assert.Equal(t, "Bob", state.Settings.Members[1].Name)
	assert.Zero(t, state.Settings.Members[0].PlannedVelocity)
}

func TestRunImportStoresSettings(t *testing.T) {
	fixed := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := WithNow(context.Background(), fixed)
	cfg := testConfig(t)
	cfg.Confirm = true

	store := &iostore.MockSettingsStore{}
	store.On("Get", cfg.Project).Return(nil, int64(0), nil)
	store.On("Set", cfg.Project, mock.MatchedBy(func(data []byte) bool {
		s, err := settings.Import(data)
		return err == nil && len(s.Members) == 2 && s.HeaderMapping[schema.FieldTitle] == "タイトル"
	}), fixed.Unix()).Return(nil)

	mgr := &iostore.MockStoreManager{}
	mgr.On("GetSettingsStore").Return(store)
	mgr.On("GetHistoryStore").Return(nil)

	_, err := RunImport(ctx, cfg, mgr, importInput, "input.tsv")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRunImportAllRowsInvalid(t *testing.T) {
	cfg := testConfig(t)
	cfg.Confirm = true
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetSettingsStore").Return(nil)

	summary, err := RunImport(context.Background(), cfg, mgr, "Title\tStatus\tIteration\n\tdone\t1\n", "bad.tsv")
	require.NoError(t, err)
	assert.Equal(t, normalize.AllRowsInvalid, summary.Message)
	assert.Equal(t, schema.SessionParsed, summary.State)
	assert.NoFileExists(t, cfg.StatePath)
	mgr.AssertNotCalled(t, "GetHistoryStore")
}

func TestRunImportHistoryFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Confirm = true

	history := &iostore.MockHistoryStore{}
	history.On("BeginImport", mock.Anything).Return(int64(0), errors.New("disk full"))
	mgr := &iostore.MockStoreManager{}
	mgr.On("GetSettingsStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	summary, err := RunImport(context.Background(), cfg, mgr, importInput, "input.tsv")
	require.NoError(t, err)
	assert.Equal(t, schema.SessionConfirmed, summary.State)
	assert.FileExists(t, cfg.StatePath)
	history.AssertNotCalled(t, "RecordFeatures", mock.Anything, mock.Anything)
}

func TestRunImportFailures(t *testing.T) {
	cfg := testConfig(t)

	_, err := RunImport(context.Background(), cfg, nil, "", "empty.tsv")
	assert.ErrorIs(t, err, normalize.ErrEmptyInput)

	_, err = RunImport(context.Background(), cfg, nil, "Name\tState\nA\tdone\n", "odd.tsv")
	assert.ErrorIs(t, err, normalize.ErrMappingIncomplete)
}

func TestRunImportIgnoresStaleMapping(t *testing.T) {
	cfg := testConfig(t)
	s := settings.Default()
	s.HeaderMapping = schema.HeaderMapping{schema.FieldTitle: "Name"}
	require.NoError(t, SaveState(cfg.StatePath, schema.State{Settings: s}))

	summary, err := RunImport(context.Background(), cfg, nil, "Title\tStatus\tIteration\nLogin\tdone\t1\n", "input.tsv")
	require.NoError(t, err)
	assert.Equal(t, "Title", summary.Mapping[schema.FieldTitle])
	assert.Len(t, summary.Result.Features, 1)
}

func TestPresentHeaders(t *testing.T) {
	saved := schema.HeaderMapping{
		schema.FieldTitle:  "Name",
		schema.FieldStatus: "State",
	}
	got := presentHeaders(saved, []string{"State", "Iteration"})
	assert.Equal(t, schema.HeaderMapping{schema.FieldStatus: "State"}, got)
	assert.Len(t, saved, 2)
}

func TestGetMappingResults(t *testing.T) {
	cfg := testConfig(t)

	report, err := GetMappingResults(context.Background(), cfg, nil, "Title\tStatus\tNotes\nLogin\tdone\tx\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Status", "Notes"}, report.Headers)
	assert.Equal(t, "Title", report.Mapping[schema.FieldTitle])
	assert.Equal(t, []string{"Notes"}, report.Unmapped)
	assert.Equal(t, []schema.Field{schema.FieldIteration}, report.MissingFields)
	assert.False(t, report.ProceedReady)
	assert.False(t, report.Complete)

	report, err = GetMappingResults(context.Background(), cfg, nil, importInput)
	require.NoError(t, err)
	assert.Empty(t, report.Unmapped)
	assert.Empty(t, report.MissingFields)
	assert.True(t, report.ProceedReady)

	_, err = GetMappingResults(context.Background(), cfg, nil, "")
	assert.ErrorIs(t, err, normalize.ErrEmptyInput)
}

func TestExecuteImportAndMapping(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.InputPath = filepath.Join(dir, "input.tsv")
	require.NoError(t, os.WriteFile(cfg.InputPath, []byte(importInput), 0o644))

	cfg.OutputFile = filepath.Join(dir, "import.json")
	require.NoError(t, ExecuteImport(context.Background(), cfg, nil))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Login")

	cfg.OutputFile = filepath.Join(dir, "mapping.json")
	require.NoError(t, ExecuteMapping(context.Background(), cfg, nil))
	data, err = os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "proceedReady")
}
