// Package report derives the progress, velocity and summary views from features and settings.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/sprintboard/core/agg"
	"github.com/huangsam/sprintboard/core/category"
	"github.com/huangsam/sprintboard/core/mapping"
	"github.com/huangsam/sprintboard/schema"
)

// isoDate matches a YYYY-MM-DD date.
var isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// Progress returns the cumulative-to-date progress through every iteration.
// Totals are over all valid features regardless of iteration, so the actual
// progress only reaches 100 when every feature sits in an iteration.
func Progress(features []schema.Feature, settings schema.Settings, aggs []schema.IterationAggregate) []schema.ProgressRow {
	total := agg.TotalPoints(features, settings)
	categoryTotals := agg.CategoryTotals(features, settings)

	rows := make([]schema.ProgressRow, 0, len(aggs))
	var cumulativeDone, plannedConsume float64
	cumulativeCategoryDone := make(map[schema.Category]float64, len(schema.AllCategories))
	plannedByRole := make(map[schema.Role]float64, len(schema.AllRoles))

	for i, a := range aggs {
		cumulativeDone += a.DonePoints
		for _, c := range schema.AllCategories {
			cumulativeCategoryDone[c] += a.CategoryPoints[c].Done
		}
		for _, m := range settings.Members {
			planned := m.PlannedVelocity * agg.MemberWorkingDays(settings, m.Name, i)
			plannedConsume += planned
			if role, ok := memberRole(m); ok {
				plannedByRole[role] += planned
			}
		}

		row := schema.ProgressRow{
			IterationIndex:  a.IterationIndex,
			Label:           IterationLabel(iterationAt(settings, i), i),
			Start:           a.Start,
			End:             a.End,
			Total:           total,
			CumulativeDone:  cumulativeDone,
			PlannedConsume:  plannedConsume,
			PlannedProgress: Percent(plannedConsume, total),
			ActualProgress:  Percent(cumulativeDone, total),
			Delta:           cumulativeDone - plannedConsume,
			Categories:      make(map[schema.Category]schema.CategoryProgress, len(schema.AllCategories)),
		}
		for _, c := range schema.AllCategories {
			catTotal := categoryTotals[c]
			done := cumulativeCategoryDone[c]
			planned := plannedByRole[schema.Role(c)]
			row.Categories[c] = schema.CategoryProgress{
				Total:           catTotal,
				CumulativeDone:  done,
				Planned:         planned,
				PlannedProgress: Percent(planned, catTotal),
				ActualProgress:  Percent(done, catTotal),
				Delta:           done - planned,
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Percent returns part/total as a truncated percentage, or 0 when total is not positive.
func Percent(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return agg.Truncate2(part / total * 100)
}

// TeamVelocity returns target versus actual points for each iteration.
// Role actuals only count features assigned to a member of that role.
func TeamVelocity(features []schema.Feature, settings schema.Settings) []schema.VelocityRow {
	rows := make([]schema.VelocityRow, 0, len(settings.Iterations))
	for i, it := range settings.Iterations {
		row := schema.VelocityRow{
			IterationIndex: i + 1,
			Label:          IterationLabel(it, i),
			WorkingDays:    it.WorkingDays,
			ByRole:         make(map[schema.Role]schema.RolePoints, len(schema.AllRoles)),
		}
		for _, r := range schema.AllRoles {
			row.ByRole[r] = schema.RolePoints{}
		}

		inIteration := featuresInIteration(features, i+1)
		for _, f := range inIteration {
			if mapping.IsDone(f, settings) {
				row.Actual += f.Points()
			}
		}

		for _, m := range settings.Members {
			target := m.PlannedVelocity * agg.MemberWorkingDays(settings, m.Name, i)
			row.Target += target
			role, ok := memberRole(m)
			if !ok {
				continue
			}
			rp := row.ByRole[role]
			rp.Target += target
			rp.Actual += donePointsOf(inIteration, m.Name, settings)
			row.ByRole[role] = rp
		}
		rows = append(rows, row)
	}
	return rows
}

// MemberVelocity returns each member's cumulative numbers over the 1-based
// iteration range [from, to]. The range is clamped to the configured iterations
// and to is never before from. Zero values select the first or last iteration.
func MemberVelocity(features []schema.Feature, settings schema.Settings, from, to int) schema.MemberVelocityReport {
	n := len(settings.Iterations)
	if n == 0 {
		return schema.MemberVelocityReport{Members: []schema.MemberVelocity{}}
	}
	if from == 0 {
		from = 1
	}
	if to == 0 {
		to = n
	}
	from = max(1, min(from, n))
	to = max(from, min(to, n))

	report := schema.MemberVelocityReport{From: from, To: to, Members: make([]schema.MemberVelocity, 0, len(settings.Members))}
	for _, m := range settings.Members {
		mv := schema.MemberVelocity{
			Name:            m.Name,
			Role:            m.Role,
			PlannedVelocity: m.PlannedVelocity,
		}
		for idx := from - 1; idx < to; idx++ {
			wd := agg.MemberWorkingDays(settings, m.Name, idx)
			mv.WorkingDays += wd
			mv.TargetPT += m.PlannedVelocity * wd
			mv.ActualPT += donePointsOf(featuresInIteration(features, idx+1), m.Name, settings)
		}
		if mv.WorkingDays > 0 {
			mv.ActualVelocity = mv.ActualPT / mv.WorkingDays
		}
		report.Members = append(report.Members, mv)
	}
	return report
}

// Summary returns the project headline numbers. Discarded features are counted
// separately and never contribute to the valid totals.
func Summary(features []schema.Feature, settings schema.Settings) schema.ProjectSummary {
	summary := schema.ProjectSummary{
		Categories: make(map[schema.Category]schema.CategorySummary, len(schema.AllCategories)),
	}
	for _, c := range schema.AllCategories {
		summary.Categories[c] = schema.CategorySummary{}
	}
	for _, f := range features {
		discarded := mapping.IsDiscarded(f, settings)
		if discarded {
			summary.DiscardedCount++
			summary.DiscardedPoints += f.Points()
		} else {
			summary.ValidCount++
			summary.TotalPoints += f.Points()
		}

		bucket := category.Bucket(f.Category)
		cs, tracked := summary.Categories[bucket]
		if !tracked {
			continue
		}
		if discarded {
			cs.DiscardedPoints += f.Points()
		} else {
			cs.Points += f.Points()
		}
		summary.Categories[bucket] = cs
	}
	return summary
}

// FilterFeatures returns the features matching every non-empty field of filter.
// Search is a case-insensitive substring over title, category, status and assignee.
// Categories are compared after normalization; the other fields must match exactly.
func FilterFeatures(features []schema.Feature, filter schema.FeatureFilter) []schema.Feature {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	wantCategory := category.Normalize(filter.Category)
	out := make([]schema.Feature, 0, len(features))
	for _, f := range features {
		if search != "" && !matchesSearch(f, search) {
			continue
		}
		if wantCategory != "" && category.Normalize(f.Category) != wantCategory {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Assignee != "" && f.Assignee != filter.Assignee {
			continue
		}
		if filter.Iteration != "" && formatIteration(f.Iteration) != filter.Iteration {
			continue
		}
		out = append(out, f)
	}
	return out
}

// StoryPointErrors lists features in iterations 1..upTo that carry no story points.
// An upTo of 0 checks every iteration.
func StoryPointErrors(features []schema.Feature, upTo int) []schema.PointsIssue {
	issues := []schema.PointsIssue{}
	for _, f := range features {
		n, ok := f.IterationNumber()
		if !ok || (upTo > 0 && n > upTo) || f.StoryPoints != nil {
			continue
		}
		issues = append(issues, schema.PointsIssue{ID: f.ID, Title: f.Title, Iteration: f.Iteration})
	}
	return issues
}

// IterationLabel is the iteration name, or I{n} for the 0-based position idx.
func IterationLabel(it schema.Iteration, idx int) string {
	if it.Name != "" {
		return it.Name
	}
	return fmt.Sprintf("I%d", idx+1)
}

// FormatDateJP renders YYYY-MM-DD as M月D日. Empty dates become "-" and
// anything else is returned unchanged.
func FormatDateJP(date string) string {
	if date == "" {
		return "-"
	}
	m := isoDate.FindStringSubmatch(date)
	if m == nil {
		return date
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%d月%d日", month, day)
}

// memberRole returns the role a member plans for. An empty role counts as FE.
func memberRole(m schema.Member) (schema.Role, bool) {
	role := m.Role
	if role == "" {
		role = schema.RoleFE
	}
	_, ok := schema.ValidRoles[role]
	return role, ok
}

// iterationAt returns the iteration at idx or the zero value.
func iterationAt(settings schema.Settings, idx int) schema.Iteration {
	if idx < 0 || idx >= len(settings.Iterations) {
		return schema.Iteration{}
	}
	return settings.Iterations[idx]
}

// featuresInIteration keeps the features assigned to the 1-based iteration n.
func featuresInIteration(features []schema.Feature, n int) []schema.Feature {
	var out []schema.Feature
	for _, f := range features {
		if got, ok := f.IterationNumber(); ok && got == n {
			out = append(out, f)
		}
	}
	return out
}

// donePointsOf sums the done story points of features assigned to name.
func donePointsOf(features []schema.Feature, name string, settings schema.Settings) float64 {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	var sum float64
	for _, f := range features {
		if strings.TrimSpace(f.Assignee) == name && mapping.IsDone(f, settings) {
			sum += f.Points()
		}
	}
	return sum
}

// matchesSearch reports whether any searchable text field contains the lowercased term.
func matchesSearch(f schema.Feature, term string) bool {
	for _, field := range []string{f.Title, f.Category, f.Status, f.Assignee} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// formatIteration renders an iteration number the way users type it.
func formatIteration(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
