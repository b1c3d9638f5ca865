// Package mapping maps source columns and source status values onto the internal vocabulary.
package mapping

import (
	"strings"
	"unicode"

	"github.com/huangsam/sprintboard/schema"
)

// headerRule recognizes a header for one field.
type headerRule struct {
	field    schema.Field
	exact    []string
	contains []string
}

// headerRules is checked in order for every header. storyPoints appears twice:
// exact names first so they win over substring matches regardless of column order.
var headerRules = []headerRule{
	{field: schema.FieldTitle, exact: []string{"title"}, contains: []string{"タイトル"}},
	{field: schema.FieldStatus, exact: []string{"status"}, contains: []string{"ステータス", "状態"}},
	{field: schema.FieldIteration, contains: []string{"iteration", "イテレーション"}},
	{field: schema.FieldCategory, contains: []string{"category", "分類"}},
	{field: schema.FieldStoryPoints, exact: []string{"ポイント", "point"}},
	{field: schema.FieldStoryPoints, contains: []string{"storypoint", "予測ポイント"}},
	{field: schema.FieldEstimatedHours, contains: []string{"estimated", "予定時間", "見積"}},
	{field: schema.FieldActualHours, contains: []string{"actual", "実績時間", "実績"}},
	{field: schema.FieldAssignee, exact: []string{"assignees"}, contains: []string{"assignee", "担当"}},
}

// NormalizeHeader removes all whitespace and lowercases.
func NormalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range h {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// matches reports whether a normalized header satisfies the rule.
func (r headerRule) matches(normalized string) bool {
	for _, e := range r.exact {
		if normalized == e {
			return true
		}
	}
	for _, c := range r.contains {
		if strings.Contains(normalized, c) {
			return true
		}
	}
	return false
}

// AutoMap detects a partial mapping from source headers. The first matching
// header wins per field. The result only depends on headers.
func AutoMap(headers []string) schema.HeaderMapping {
	mapping := make(schema.HeaderMapping)
	for _, rule := range headerRules {
		if _, done := mapping[rule.field]; done {
			continue
		}
		for _, h := range headers {
			if rule.matches(NormalizeHeader(h)) {
				mapping[rule.field] = h
				break
			}
		}
	}
	return mapping
}

// MergeMapping fills the empty fields of existing from auto. Fields the user
// already set are never overwritten. Neither input is modified.
func MergeMapping(existing, auto schema.HeaderMapping) schema.HeaderMapping {
	merged := make(schema.HeaderMapping, len(schema.AllFields))
	for field, header := range auto {
		if header != "" {
			merged[field] = header
		}
	}
	for field, header := range existing {
		if header != "" {
			merged[field] = header
		}
	}
	return merged
}

// MissingFields returns the given fields that have no header mapped.
func MissingFields(mapping schema.HeaderMapping, fields []schema.Field) []schema.Field {
	var missing []schema.Field
	for _, f := range fields {
		if strings.TrimSpace(mapping[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsProceedReady reports whether title, status and iteration are mapped.
func IsProceedReady(mapping schema.HeaderMapping) bool {
	return len(MissingFields(mapping, schema.MandatoryFields)) == 0
}

// IsComplete reports whether all eight internal fields are mapped.
func IsComplete(mapping schema.HeaderMapping) bool {
	return len(MissingFields(mapping, schema.AllFields)) == 0
}
