// Package agg computes per-iteration story point aggregates from features and settings.
package agg

import (
	"math"

	"github.com/huangsam/sprintboard/core/category"
	"github.com/huangsam/sprintboard/core/mapping"
	"github.com/huangsam/sprintboard/schema"
)

// Truncate2 cuts v to two decimals toward negative infinity.
// It never rounds: 12.399 becomes 12.39 and -0.001 becomes -0.01.
func Truncate2(v float64) float64 {
	return math.Floor(v*100) / 100
}

// MemberWorkingDays returns the working days of member name in the iteration at
// 0-based position idx. A per-member override wins over the iteration default.
// Out of range positions have no working days.
func MemberWorkingDays(settings schema.Settings, name string, idx int) float64 {
	if idx < 0 || idx >= len(settings.Iterations) {
		return 0
	}
	if byIter, ok := settings.MemberIterationWorkingDays[name]; ok {
		if v, ok := byIter[idx]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return float64(settings.Iterations[idx].WorkingDays)
}

// PlannedPoints sums planned velocity times working days over members for the
// iteration at 0-based position idx.
func PlannedPoints(settings schema.Settings, members []schema.Member, idx int) float64 {
	var planned float64
	for _, m := range members {
		planned += m.PlannedVelocity * MemberWorkingDays(settings, m.Name, idx)
	}
	return planned
}

// ValidFeatures drops discarded features. Every aggregate starts from this set.
func ValidFeatures(features []schema.Feature, settings schema.Settings) []schema.Feature {
	valid := make([]schema.Feature, 0, len(features))
	for _, f := range features {
		if mapping.IsDiscarded(f, settings) {
			continue
		}
		valid = append(valid, f)
	}
	return valid
}

// ComputeIterationAggregates returns one aggregate per configured iteration, in order.
// Features without a positive integer iteration, or pointing past the last
// iteration, contribute to no aggregate.
func ComputeIterationAggregates(features []schema.Feature, settings schema.Settings) []schema.IterationAggregate {
	aggs := make([]schema.IterationAggregate, len(settings.Iterations))

	// 1. Seed one entry per iteration with its planned points
	for i, it := range settings.Iterations {
		aggs[i] = schema.IterationAggregate{
			IterationIndex: i + 1,
			IterationName:  it.Name,
			Start:          it.Start,
			End:            it.End,
			WorkingDays:    it.WorkingDays,
			CategoryPoints: newCategoryPoints(),
			PlannedPoints:  PlannedPoints(settings, settings.Members, i),
		}
	}

	// 2. Accumulate story points of valid features into their iteration
	for _, f := range ValidFeatures(features, settings) {
		n, ok := f.IterationNumber()
		if !ok || n > len(aggs) {
			continue
		}
		agg := &aggs[n-1]
		points := f.Points()
		done := mapping.IsDone(f, settings)

		agg.TotalPoints += points
		if done {
			agg.DonePoints += points
		}

		bucket := category.Bucket(f.Category)
		cp, tracked := agg.CategoryPoints[bucket]
		if !tracked {
			continue
		}
		cp.Total += points
		if done {
			cp.Done += points
		}
		agg.CategoryPoints[bucket] = cp
	}

	return aggs
}

// CategoryTotals sums story points of valid features per category regardless of iteration.
func CategoryTotals(features []schema.Feature, settings schema.Settings) map[schema.Category]float64 {
	totals := make(map[schema.Category]float64, len(schema.AllCategories))
	for _, c := range schema.AllCategories {
		totals[c] = 0
	}
	for _, f := range ValidFeatures(features, settings) {
		bucket := category.Bucket(f.Category)
		if _, tracked := totals[bucket]; tracked {
			totals[bucket] += f.Points()
		}
	}
	return totals
}

// TotalPoints sums story points of valid features regardless of iteration.
func TotalPoints(features []schema.Feature, settings schema.Settings) float64 {
	var total float64
	for _, f := range ValidFeatures(features, settings) {
		total += f.Points()
	}
	return total
}

// newCategoryPoints returns zeroed buckets for FE, BE and テスト.
func newCategoryPoints() map[schema.Category]schema.CategoryPoints {
	cp := make(map[schema.Category]schema.CategoryPoints, len(schema.AllCategories))
	for _, c := range schema.AllCategories {
		cp[c] = schema.CategoryPoints{}
	}
	return cp
}
