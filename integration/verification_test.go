//go:build integration

// Package integration contains integration tests for sprintboard.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verificationFeatures = "タイトル\tステータス\tイテレーション\tポイント\t担当者\t分類\n" +
	"ログイン画面\t完了\t1\t3\tAlice\tフロント\n" +
	"注文API\t作業中\t1\t5\tBob\tバックエンド\n" +
	"決済\tPR中\t2\t2\tBob\tBE\n" +
	"E2Eテスト\t未対応\t2\t1.5\tCarol\tテスト\n" +
	"旧フロー\t破棄\t2\t8\tAlice\tFE\n" +
	"調査\t未対応\t\t\tCarol\t\n"

// TestSummaryVerification imports a feature list and checks the summary against totals
// computed straight from the file.
func TestSummaryVerification(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	featuresPath := writeFixture(t, dir, "features.tsv", verificationFeatures)

	_, err := runSprintboard(t, dir, "import", featuresPath, "--confirm", "--state-file", statePath)
	require.NoError(t, err)

	out, err := runSprintboard(t, dir, "summary", "--output", "json", "--state-file", statePath)
	require.NoError(t, err)

	var summary schema.ProjectSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))

	total, valid, discarded, discardedPoints := expectedTotals(t, verificationFeatures)
	assert.InDelta(t, total, summary.TotalPoints, 1e-9)
	assert.Equal(t, valid, summary.ValidCount)
	assert.Equal(t, discarded, summary.DiscardedCount)
	assert.InDelta(t, discardedPoints, summary.DiscardedPoints, 1e-9)
}

// TestFeaturesVerification checks that every imported row can be found by assignee.
func TestFeaturesVerification(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	featuresPath := writeFixture(t, dir, "features.tsv", verificationFeatures)

	_, err := runSprintboard(t, dir, "import", featuresPath, "--confirm", "--state-file", statePath)
	require.NoError(t, err)

	counts := assigneeCounts(t, verificationFeatures)
	for assignee, want := range counts {
		t.Run(assignee, func(t *testing.T) {
			out, err := runSprintboard(t, dir, "features", "--assignee", assignee, "--output", "json", "--state-file", statePath)
			require.NoError(t, err)

			var features []schema.Feature
			require.NoError(t, json.Unmarshal([]byte(out), &features))
			assert.Len(t, features, want, "feature count mismatch for %s", assignee)
		})
	}
}

// readFixture parses tab-separated content into data rows, dropping the header.
func readFixture(t *testing.T, content string) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records[1:]
}

// expectedTotals sums story points the way the summary is defined: discarded rows on their own.
func expectedTotals(t *testing.T, content string) (total float64, valid, discarded int, discardedPoints float64) {
	t.Helper()
	for _, row := range readFixture(t, content) {
		var points float64
		if row[3] != "" {
			p, err := strconv.ParseFloat(row[3], 64)
			require.NoError(t, err)
			points = p
		}
		if row[1] == string(schema.StatusDiscarded) {
			discarded++
			discardedPoints += points
			continue
		}
		valid++
		total += points
	}
	return total, valid, discarded, discardedPoints
}

// assigneeCounts counts rows per assignee.
func assigneeCounts(t *testing.T, content string) map[string]int {
	t.Helper()
	counts := make(map[string]int)
	for _, row := range readFixture(t, content) {
		counts[row[4]]++
	}
	return counts
}
