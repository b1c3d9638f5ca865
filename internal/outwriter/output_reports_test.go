package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textCfg() *contract.Config {
	return &contract.Config{Output: schema.TextOut, Precision: 1, Width: 120}
}

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	return records
}

func sampleAggregates() []schema.IterationAggregate {
	return []schema.IterationAggregate{
		{
			IterationIndex: 1,
			Start:          "2025-04-01",
			End:            "2025-04-14",
			WorkingDays:    10,
			TotalPoints:    8,
			DonePoints:     5,
			PlannedPoints:  12,
			CategoryPoints: map[schema.Category]schema.CategoryPoints{
				schema.CategoryFE:    {Total: 5, Done: 5},
				schema.CategoryBE:    {Total: 3},
				schema.CategoryOther: {},
			},
		},
		{
			IterationIndex: 2,
			IterationName:  "Sprint 2",
			Start:          "2025-04-15",
			End:            "2025-04-28",
			WorkingDays:    9,
			CategoryPoints: map[schema.Category]schema.CategoryPoints{},
		},
	}
}

func TestWriteAggregateResults(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteAggregateResults(&buf, sampleAggregates(), textCfg()))
		out := buf.String()
		assert.Contains(t, out, "I1")
		assert.Contains(t, out, "Sprint 2")
		assert.Contains(t, out, "4月1日〜4月14日")
		assert.Contains(t, out, "5.0/5.0")
		assert.Contains(t, out, "12.0")
		assert.Contains(t, out, "2 iterations aggregated")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.CSVOut
		var buf bytes.Buffer
		require.NoError(t, WriteAggregateResults(&buf, sampleAggregates(), cfg))
		records := readCSV(t, &buf)
		require.Len(t, records, 3)
		assert.Equal(t, []string{
			"iteration_index", "iteration_name", "start", "end", "working_days", "total_points", "done_points",
			"fe_total", "fe_done", "be_total", "be_done", "test_total", "test_done", "other_total", "other_done", "planned_points",
		}, records[0])
		assert.Equal(t, "1", records[1][0])
		assert.Equal(t, "5.0", records[1][8])
		assert.Equal(t, "Sprint 2", records[2][1])
	})

	t.Run("json", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.JSONOut
		var buf bytes.Buffer
		require.NoError(t, WriteAggregateResults(&buf, sampleAggregates(), cfg))
		var got []schema.IterationAggregate
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, sampleAggregates()[0].DonePoints, got[0].DonePoints)
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.ParquetOut
		var buf bytes.Buffer
		require.NoError(t, WriteAggregateResults(&buf, sampleAggregates(), cfg))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PAR1")))
	})
}

func sampleProgress() []schema.ProgressRow {
	return []schema.ProgressRow{
		{
			IterationIndex:  1,
			Label:           "I1",
			Start:           "2025-04-01",
			End:             "2025-04-14",
			Total:           20,
			CumulativeDone:  6,
			PlannedConsume:  5,
			PlannedProgress: 25,
			ActualProgress:  30,
			Delta:           1,
			Categories: map[schema.Category]schema.CategoryProgress{
				schema.CategoryFE: {Total: 10, CumulativeDone: 6, Planned: 4, Delta: 2},
				schema.CategoryBE: {Total: 10, Planned: 1, Delta: -1},
			},
		},
	}
}

func TestWriteProgressResults(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteProgressResults(&buf, sampleProgress(), textCfg()))
		out := buf.String()
		assert.Contains(t, out, "25.00%")
		assert.Contains(t, out, "30.00%")
		assert.Contains(t, out, "+2.00")
		assert.Contains(t, out, "-1.00")
		assert.Contains(t, out, contract.AheadValue)
		assert.Contains(t, out, "Total points: 20.0")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.CSVOut
		var buf bytes.Buffer
		require.NoError(t, WriteProgressResults(&buf, sampleProgress(), cfg))
		records := readCSV(t, &buf)
		require.Len(t, records, 2)
		assert.Equal(t, "25.00", records[1][7])
		assert.Equal(t, contract.AheadValue, records[1][10])
		assert.Equal(t, "fe_total", records[0][11])
	})

	t.Run("planned and delta truncate", func(t *testing.T) {
		rows := sampleProgress()
		rows[0].PlannedConsume = 2.999
		rows[0].Delta = -0.05
		rows[0].Categories[schema.CategoryBE] = schema.CategoryProgress{Total: 10, Planned: 1.006, Delta: -0.05}

		var buf bytes.Buffer
		require.NoError(t, WriteProgressResults(&buf, rows, textCfg()))
		out := buf.String()
		assert.Contains(t, out, "2.99")
		assert.Contains(t, out, "-0.05")
		assert.NotContains(t, out, "-0.1")
		assert.NotContains(t, out, "3.00")

		cfg := textCfg()
		cfg.Output = schema.CSVOut
		buf.Reset()
		require.NoError(t, WriteProgressResults(&buf, rows, cfg))
		records := readCSV(t, &buf)
		require.Len(t, records, 2)
		assert.Equal(t, "2.99", records[1][6])
		assert.Equal(t, "-0.05", records[1][9])
		assert.Equal(t, "-0.05", records[1][18])
		assert.Equal(t, "1.00", records[1][17])
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.ParquetOut
		assert.ErrorIs(t, WriteProgressResults(&bytes.Buffer{}, sampleProgress(), cfg), ErrParquetUnsupported)
	})
}

func sampleVelocity() schema.VelocityReport {
	return schema.VelocityReport{
		Team: []schema.VelocityRow{
			{
				IterationIndex: 1,
				Label:          "I1",
				WorkingDays:    10,
				Target:         20,
				Actual:         15,
				ByRole:         map[schema.Role]schema.RolePoints{schema.RoleFE: {Target: 20, Actual: 15}},
			},
		},
		Members: schema.MemberVelocityReport{
			From: 1,
			To:   1,
			Members: []schema.MemberVelocity{
				{Name: "Alice", Role: schema.RoleFE, PlannedVelocity: 2, WorkingDays: 10, TargetPT: 20, ActualPT: 15, ActualVelocity: 1.5},
			},
		},
		PointsIssues: []schema.PointsIssue{{ID: "7", Title: "No points", Iteration: schema.Float(1)}},
	}
}

func TestWriteVelocityResults(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteVelocityResults(&buf, sampleVelocity(), textCfg()))
		out := buf.String()
		assert.Contains(t, out, "20.0/15.0")
		assert.Contains(t, out, contract.BehindValue)
		assert.Contains(t, out, "Member velocity (I1-I1)")
		assert.Contains(t, out, "Alice")
		assert.Contains(t, out, "1.50")
		assert.Contains(t, out, "1 features have no story points")
		assert.Contains(t, out, "[7] No points (iteration 1)")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.CSVOut
		var buf bytes.Buffer
		require.NoError(t, WriteVelocityResults(&buf, sampleVelocity(), cfg))
		records := readCSV(t, &buf)
		require.Len(t, records, 2)
		assert.Equal(t, []string{"1", "1", "Alice", "FE", "2.00", "10", "20.0", "15.0", "1.50"}, records[1])
	})

	t.Run("json", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.JSONOut
		var buf bytes.Buffer
		require.NoError(t, WriteVelocityResults(&buf, sampleVelocity(), cfg))
		assert.Contains(t, buf.String(), `"pointsIssues"`)
	})
}

func TestWriteSummaryResults(t *testing.T) {
	summary := schema.ProjectSummary{
		TotalPoints:     13,
		ValidCount:      4,
		DiscardedCount:  1,
		DiscardedPoints: 2,
		Categories: map[schema.Category]schema.CategorySummary{
			schema.CategoryFE:   {Points: 8, DiscardedPoints: 2},
			schema.CategoryBE:   {Points: 5},
			schema.CategoryTest: {},
		},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummaryResults(&buf, summary, textCfg()))
		out := buf.String()
		assert.Contains(t, out, "13.0")
		assert.Contains(t, out, "1 (2.0 PT)")
		assert.Contains(t, out, "8.0 (discarded 2.0)")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.CSVOut
		var buf bytes.Buffer
		require.NoError(t, WriteSummaryResults(&buf, summary, cfg))
		records := readCSV(t, &buf)
		require.Len(t, records, 5)
		assert.Equal(t, []string{"all", "13.0", "2.0"}, records[1])
		assert.Equal(t, []string{"test", "0.0", "0.0"}, records[4])
	})
}

func TestWriteFeatureResults(t *testing.T) {
	features := []schema.Feature{
		{ID: "1", Title: strings.Repeat("Long title ", 10), Category: "FE", StoryPoints: schema.Float(3), Iteration: schema.Float(1), Status: "完了", Assignee: "Alice"},
		{ID: "2", Title: "API", Category: "BE", Iteration: schema.Float(2), Status: "作業中"},
	}

	t.Run("table truncates titles", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteFeatureResults(&buf, features, textCfg()))
		out := buf.String()
		assert.Contains(t, out, "...")
		assert.NotContains(t, out, strings.TrimSpace(features[0].Title))
		assert.Contains(t, out, "完了")
		assert.Contains(t, out, "2 features")
	})

	t.Run("csv keeps empty cells", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.CSVOut
		var buf bytes.Buffer
		require.NoError(t, WriteFeatureResults(&buf, features, cfg))
		records := readCSV(t, &buf)
		require.Len(t, records, 3)
		assert.Equal(t, "3.0", records[1][3])
		assert.Equal(t, "", records[2][3])
		assert.Equal(t, "2", records[2][6])
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.ParquetOut
		var buf bytes.Buffer
		require.NoError(t, WriteFeatureResults(&buf, features, cfg))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PAR1")))
	})
}

func TestWriteImportResults(t *testing.T) {
	summary := schema.ImportSummary{
		SessionID: "abc",
		State:     schema.SessionParsed,
		Message:   "ready: 1 valid, 1 invalid",
		Result: schema.NormalizeResult{
			Features: []schema.Feature{{ID: "1", Title: "Login"}},
			Errors:   []schema.RowError{{Row: 3, Message: "missing title"}},
			Warnings: []schema.RowWarning{{Row: 2, Message: "unknown category"}},
			BadRows:  []schema.BadRow{{Row: 3, Text: "\t未対応\t1"}},
		},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteImportResults(&buf, summary, textCfg()))
		out := buf.String()
		assert.Contains(t, out, "Import abc [parsed]: 1 accepted, 1 rejected, 1 warnings")
		assert.Contains(t, out, "ready: 1 valid, 1 invalid")
		assert.Contains(t, out, "missing title")
		assert.Contains(t, out, "unknown category")
		assert.Contains(t, out, "line 3:  | 未対応 | 1")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.CSVOut
		var buf bytes.Buffer
		require.NoError(t, WriteImportResults(&buf, summary, cfg))
		records := readCSV(t, &buf)
		assert.Equal(t, [][]string{
			{"kind", "row", "message"},
			{"error", "3", "missing title"},
			{"warning", "2", "unknown category"},
		}, records)
	})
}

func TestWriteMappingResults(t *testing.T) {
	report := schema.MappingReport{
		Headers:       []string{"件名", "状態", "メモ"},
		Mapping:       schema.HeaderMapping{schema.FieldTitle: "件名", schema.FieldStatus: "状態"},
		Unmapped:      []string{"メモ"},
		MissingFields: []schema.Field{schema.FieldIteration},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteMappingResults(&buf, report, textCfg()))
		out := buf.String()
		assert.Contains(t, out, "件名")
		assert.Contains(t, out, "(missing)")
		assert.Contains(t, out, "Unmapped headers: メモ")
		assert.Contains(t, out, "Ready to import: false, complete: false")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := textCfg()
		cfg.Output = schema.CSVOut
		var buf bytes.Buffer
		require.NoError(t, WriteMappingResults(&buf, report, cfg))
		records := readCSV(t, &buf)
		require.Len(t, records, len(schema.AllFields)+1)
		assert.Equal(t, []string{"title", "件名", "true"}, records[1])
		assert.Equal(t, []string{"iteration", "", "true"}, records[3])
	})
}
