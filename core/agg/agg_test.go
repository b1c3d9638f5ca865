package agg

import (
	"testing"

	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{12.399, 12.39},
		{12.346, 12.34},
		{33.3333, 33.33},
		{-0.001, -0.01},
		{100, 100},
		{0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Truncate2(tt.in), 1e-9, "Truncate2(%v)", tt.in)
	}
}

func twoIterationSettings() schema.Settings {
	return schema.Settings{
		Iterations: []schema.Iteration{
			{Start: "2024-01-01", End: "2024-01-15", WorkingDays: 10},
			{Start: "2024-01-16", End: "2024-01-31", WorkingDays: 8, Name: "Sprint 2"},
		},
		Members: []schema.Member{
			{Name: "A", Role: schema.RoleFE, PlannedVelocity: 1},
			{Name: "B", Role: schema.RoleBE, PlannedVelocity: 0.5},
		},
		MemberIterationWorkingDays: schema.WorkingDayOverrides{
			"B": {1: 4},
		},
	}
}

func TestMemberWorkingDays(t *testing.T) {
	settings := twoIterationSettings()
	assert.Equal(t, 10.0, MemberWorkingDays(settings, "A", 0))
	assert.Equal(t, 8.0, MemberWorkingDays(settings, "A", 1))
	assert.Equal(t, 10.0, MemberWorkingDays(settings, "B", 0))
	assert.Equal(t, 4.0, MemberWorkingDays(settings, "B", 1))
	assert.Equal(t, 0.0, MemberWorkingDays(settings, "A", 2))
	assert.Equal(t, 0.0, MemberWorkingDays(settings, "A", -1))
}

func TestComputeIterationAggregatesSingle(t *testing.T) {
	settings := schema.Settings{
		Iterations: []schema.Iteration{{Start: "2024-01-01", End: "2024-01-15", WorkingDays: 10}},
		Members:    []schema.Member{{Name: "A", Role: schema.RoleFE, PlannedVelocity: 1}},
	}
	features := []schema.Feature{
		{ID: "0-x", Title: "x", Iteration: schema.Float(1), Category: "FE", StoryPoints: schema.Float(10), Status: "完了"},
	}

	aggs := ComputeIterationAggregates(features, settings)

	require.Len(t, aggs, 1)
	assert.Equal(t, 1, aggs[0].IterationIndex)
	assert.Equal(t, 10.0, aggs[0].PlannedPoints)
	assert.Equal(t, 10.0, aggs[0].TotalPoints)
	assert.Equal(t, 10.0, aggs[0].DonePoints)
	assert.Equal(t, schema.CategoryPoints{Total: 10, Done: 10}, aggs[0].CategoryPoints[schema.CategoryFE])
	assert.Equal(t, schema.CategoryPoints{}, aggs[0].CategoryPoints[schema.CategoryBE])
}

func TestComputeIterationAggregates(t *testing.T) {
	settings := twoIterationSettings()
	features := []schema.Feature{
		{Title: "a", Iteration: schema.Float(1), Category: "(fe)", StoryPoints: schema.Float(3), Status: "完了"},
		{Title: "b", Iteration: schema.Float(1), Category: "BE", StoryPoints: schema.Float(5), Status: "作業中"},
		{Title: "c", Iteration: schema.Float(2), Category: "ﾃｽﾄ", StoryPoints: schema.Float(2), Status: "プルリク中"},
		{Title: "d", Iteration: schema.Float(2), Category: "BE", StoryPoints: schema.Float(5), Status: "破棄"},
		{Title: "e", Iteration: schema.Float(2), Category: "infra", StoryPoints: schema.Float(1), Status: "done"},
		{Title: "f", Iteration: schema.Float(2), Category: "BE"},
		{Title: "g", Iteration: schema.Float(0), StoryPoints: schema.Float(7), Status: "完了"},
		{Title: "h", Iteration: schema.Float(3), StoryPoints: schema.Float(7), Status: "完了"},
	}

	aggs := ComputeIterationAggregates(features, settings)
	require.Len(t, aggs, 2)

	assert.Equal(t, 8.0, aggs[0].TotalPoints)
	assert.Equal(t, 3.0, aggs[0].DonePoints)
	assert.Equal(t, 15.0, aggs[0].PlannedPoints)
	assert.Equal(t, schema.CategoryPoints{Total: 3, Done: 3}, aggs[0].CategoryPoints[schema.CategoryFE])
	assert.Equal(t, schema.CategoryPoints{Total: 5}, aggs[0].CategoryPoints[schema.CategoryBE])

	assert.Equal(t, 2, aggs[1].IterationIndex)
	assert.Equal(t, "Sprint 2", aggs[1].IterationName)
	assert.Equal(t, 3.0, aggs[1].TotalPoints)
	assert.Equal(t, 1.0, aggs[1].DonePoints)
	assert.Equal(t, 10.0, aggs[1].PlannedPoints)
	assert.Equal(t, schema.CategoryPoints{Total: 2}, aggs[1].CategoryPoints[schema.CategoryTest])
	assert.Equal(t, schema.CategoryPoints{}, aggs[1].CategoryPoints[schema.CategoryBE])
	_, hasOther := aggs[1].CategoryPoints[schema.CategoryOther]
	assert.False(t, hasOther)

	settings.IncludePRInDone = true
	aggs = ComputeIterationAggregates(features, settings)
	assert.Equal(t, 3.0, aggs[1].DonePoints)
	assert.Equal(t, schema.CategoryPoints{Total: 2, Done: 2}, aggs[1].CategoryPoints[schema.CategoryTest])
}

func TestDiscardedExclusion(t *testing.T) {
	settings := schema.Settings{
		Iterations:     []schema.Iteration{{WorkingDays: 5}},
		StatusMappings: schema.StatusMappings{"dropped": string(schema.StatusDiscarded)},
	}
	features := []schema.Feature{
		{Title: "x", Iteration: schema.Float(1), Category: "FE", StoryPoints: schema.Float(5), Status: "dropped"},
		{Title: "y", Iteration: schema.Float(1), Category: "FE", StoryPoints: schema.Float(5), Status: "破棄"},
	}

	aggs := ComputeIterationAggregates(features, settings)

	assert.Zero(t, aggs[0].TotalPoints)
	assert.Zero(t, aggs[0].DonePoints)
	assert.Equal(t, schema.CategoryPoints{}, aggs[0].CategoryPoints[schema.CategoryFE])
	assert.Empty(t, ValidFeatures(features, settings))
	assert.Len(t, features, 2)
}

func TestTotals(t *testing.T) {
	features := []schema.Feature{
		{Title: "a", Category: "FE", StoryPoints: schema.Float(3)},
		{Title: "b", Category: "be", StoryPoints: schema.Float(2), Iteration: schema.Float(1)},
		{Title: "c", Category: "BE", StoryPoints: schema.Float(4), Status: "破棄"},
		{Title: "d", Category: "ops", StoryPoints: schema.Float(1)},
	}
	assert.Equal(t, 6.0, TotalPoints(features, schema.Settings{}))
	totals := CategoryTotals(features, schema.Settings{})
	assert.Equal(t, 3.0, totals[schema.CategoryFE])
	assert.Equal(t, 2.0, totals[schema.CategoryBE])
	assert.Equal(t, 0.0, totals[schema.CategoryTest])
	assert.Len(t, totals, 3)
}

func TestComputeIterationAggregatesNoIterations(t *testing.T) {
	aggs := ComputeIterationAggregates([]schema.Feature{{Title: "a", Iteration: schema.Float(1)}}, schema.Settings{})
	assert.Empty(t, aggs)
}
