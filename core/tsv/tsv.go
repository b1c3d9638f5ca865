// Package tsv splits tab-separated text into headers and rows.
package tsv

import (
	"regexp"
	"strings"

	"github.com/huangsam/sprintboard/schema"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// Table is parsed TSV text. Rows may be ragged.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Parse splits text into a header row and data rows.
// Lines that are blank after trimming are dropped. Lines are never trimmed
// as a whole, so a trailing tab still yields an empty last cell.
func Parse(text string) Table {
	var lines []string
	for _, line := range lineBreak.Split(text, -1) {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return Table{Headers: []string{}, Rows: [][]string{}}
	}

	table := Table{
		Headers: splitLine(lines[0]),
		Rows:    make([][]string, 0, len(lines)-1),
	}
	for _, line := range lines[1:] {
		table.Rows = append(table.Rows, splitLine(line))
	}
	return table
}

// splitLine splits on tab and trims each cell.
func splitLine(line string) []string {
	cells := strings.Split(line, "\t")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// NormalizeRow pads a short row with empty cells or truncates a long one to n cells.
func NormalizeRow(row []string, n int) []string {
	out := make([]string, n)
	copy(out, row)
	return out
}

// GetField returns the trimmed cell of row under the header mapped to field.
// A missing mapping or an out-of-range column yields "".
func GetField(headers, row []string, mapping schema.HeaderMapping, field schema.Field) string {
	header, ok := mapping[field]
	if !ok || header == "" {
		return ""
	}
	idx := indexOf(headers, header)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// indexOf returns the first index of s in list, or -1.
func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
