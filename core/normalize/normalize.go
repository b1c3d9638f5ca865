// Package normalize turns mapped TSV rows into validated features.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/sprintboard/core/mapping"
	"github.com/huangsam/sprintboard/core/tsv"
	"github.com/huangsam/sprintboard/schema"
)

// assigneeSeparators splits a cell holding several assignees.
var assigneeSeparators = regexp.MustCompile(`[,、;/]`)

// numericFields are validated in this order; the first bad one rejects the row.
var numericFields = []schema.Field{
	schema.FieldStoryPoints,
	schema.FieldEstimatedHours,
	schema.FieldActualHours,
	schema.FieldIteration,
}

// LineNumber converts a 0-based data row index to its 1-based line in the source text.
func LineNumber(dataIndex int) int {
	return dataIndex + 2
}

// Rows normalizes every data row of table independently.
// A bad row never stops the batch; it lands in Errors and BadRows instead.
// A nil statusMappings keeps the raw status on each feature.
func Rows(table tsv.Table, headerMapping schema.HeaderMapping, statusMappings schema.StatusMappings) schema.NormalizeResult {
	result := schema.NormalizeResult{
		Features: []schema.Feature{},
		Errors:   []schema.RowError{},
		Warnings: []schema.RowWarning{},
		BadRows:  []schema.BadRow{},
	}
	for i, row := range table.Rows {
		f, warnings, rowErr := Row(table.Headers, row, i, headerMapping, statusMappings)
		result.Warnings = append(result.Warnings, warnings...)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			result.BadRows = append(result.BadRows, schema.BadRow{Row: rowErr.Row, Text: strings.Join(row, "\t")})
			continue
		}
		result.Features = append(result.Features, f)
	}
	return result
}

// Row normalizes one data row. dataIndex is the 0-based position among data rows.
func Row(headers, row []string, dataIndex int, headerMapping schema.HeaderMapping, statusMappings schema.StatusMappings) (schema.Feature, []schema.RowWarning, *schema.RowError) {
	cells := tsv.NormalizeRow(row, len(headers))
	values := make(map[schema.Field]string, len(schema.AllFields))
	for _, field := range schema.AllFields {
		values[field] = tsv.GetField(headers, cells, headerMapping, field)
	}
	return build(values, dataIndex, statusMappings)
}

// ParseEditedRow re-validates a hand-corrected bad row. Cells are positional:
// title, category, storyPoints, estimatedHours, actualHours, iteration, status, assignee.
func ParseEditedRow(text string, dataIndex int, statusMappings schema.StatusMappings) (schema.Feature, []schema.RowWarning, *schema.RowError) {
	text = strings.TrimRight(text, "\r\n")
	cells := strings.Split(text, "\t")
	values := make(map[schema.Field]string, len(schema.EditOrder))
	for i, field := range schema.EditOrder {
		if i < len(cells) {
			values[field] = strings.TrimSpace(cells[i])
		}
	}
	return build(values, dataIndex, statusMappings)
}

// build validates extracted field values and assembles the feature.
func build(values map[schema.Field]string, dataIndex int, statusMappings schema.StatusMappings) (schema.Feature, []schema.RowWarning, *schema.RowError) {
	line := LineNumber(dataIndex)
	var warnings []schema.RowWarning

	title := values[schema.FieldTitle]
	if title == "" {
		return schema.Feature{}, nil, &schema.RowError{Row: line, Message: fmt.Sprintf("row %d: missing title", line)}
	}

	numbers := make(map[schema.Field]*float64, len(numericFields))
	for _, field := range numericFields {
		raw := values[field]
		v, err := parseNumber(raw)
		if err != nil {
			return schema.Feature{}, nil, &schema.RowError{
				Row:     line,
				Message: fmt.Sprintf("row %d: %s is not a number (%q)", line, field, raw),
			}
		}
		numbers[field] = v
	}

	if it := numbers[schema.FieldIteration]; it != nil && (*it < 1 || *it != math.Trunc(*it)) {
		warnings = append(warnings, schema.RowWarning{
			Row:     line,
			Message: fmt.Sprintf("row %d: iteration %s is not a positive integer and will not appear in iteration reports", line, values[schema.FieldIteration]),
		})
	}

	assignee, dropped := splitAssignee(values[schema.FieldAssignee])
	if len(dropped) > 0 {
		warnings = append(warnings, schema.RowWarning{
			Row: line,
			Message: fmt.Sprintf("row %d: multiple assignees in %q; using %q, dropped %s",
				line, values[schema.FieldAssignee], assignee, quoteAll(dropped)),
		})
	}

	status := values[schema.FieldStatus]
	if statusMappings != nil {
		status = mapping.MapStatus(status, statusMappings)
	}

	return schema.Feature{
		ID:             fmt.Sprintf("%d-%s", dataIndex, title),
		Title:          title,
		Category:       values[schema.FieldCategory],
		StoryPoints:    numbers[schema.FieldStoryPoints],
		EstimatedHours: numbers[schema.FieldEstimatedHours],
		ActualHours:    numbers[schema.FieldActualHours],
		Iteration:      numbers[schema.FieldIteration],
		Status:         status,
		Assignee:       assignee,
		CoAssignees:    dropped,
	}, warnings, nil
}

// parseNumber returns nil for an empty value and an error for anything not a finite number.
func parseNumber(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("not finite: %s", raw)
	}
	return &v, nil
}

// splitAssignee keeps the first of several assignees and returns the rest.
func splitAssignee(raw string) (string, []string) {
	if !assigneeSeparators.MatchString(raw) {
		return raw, nil
	}
	var names []string
	for _, part := range assigneeSeparators.Split(raw, -1) {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], names[1:]
}

// quoteAll renders names as a comma separated list of quoted strings.
func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return strings.Join(quoted, ", ")
}
