package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/sprintboard/core/agg"
	"github.com/huangsam/sprintboard/core/mapping"
	"github.com/huangsam/sprintboard/core/normalize"
	"github.com/huangsam/sprintboard/core/settings"
	"github.com/huangsam/sprintboard/core/tsv"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/outwriter"
	"github.com/huangsam/sprintboard/schema"
)

// ReadInput returns the text of an input path, reading stdin for "-".
func ReadInput(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("an input file is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// RowCorrection is a hand-edited bad row, identified by its line in the source text.
// Cells are positional: title, category, storyPoints, estimatedHours, actualHours,
// iteration, status, assignee.
type RowCorrection struct {
	Line int
	Text string
}

// ParseCorrections reads one correction per line: the line number, a tab, then the
// edited row. Blank lines are skipped.
func ParseCorrections(text string) ([]RowCorrection, error) {
	var out []RowCorrection
	for i, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		num, row, ok := strings.Cut(raw, "\t")
		if !ok {
			return nil, fmt.Errorf("correction %d: expected a line number, a tab and the edited row", i+1)
		}
		line, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || line < 2 {
			return nil, fmt.Errorf("correction %d: invalid line number %q", i+1, num)
		}
		out = append(out, RowCorrection{Line: line, Text: row})
	}
	return out, nil
}

// RunImport parses and normalizes text in a new import session. Corrections are
// resubmitted before anything else; a rejected one leaves its bad row in place.
// Without cfg.Confirm the session stays parsed and nothing is written. With it the features replace those of the
// state file, assignees become members, and the run is recorded when a history store is set.
// A batch without a single valid row is never confirmed.
func RunImport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, text, sourceName string, corrections ...RowCorrection) (schema.ImportSummary, error) {
	log := loggerFromContext(ctx)
	start := nowFromContext(ctx)

	// 1. Resolve the settings the rows are read with
	state, err := LoadState(cfg.StatePath)
	if err != nil {
		return schema.ImportSummary{}, err
	}
	s, err := ResolveSettings(ctx, cfg, mgr, state)
	if err != nil {
		return schema.ImportSummary{}, err
	}

	// 2. Parse and normalize
	s.HeaderMapping = presentHeaders(s.HeaderMapping, tsv.Parse(text).Headers)
	session := normalize.NewSession(s)
	summary, err := session.Load(text)
	if err != nil {
		return schema.ImportSummary{}, err
	}
	for _, c := range corrections {
		rowErr, err := session.Resubmit(c.Line, c.Text)
		if err != nil {
			return schema.ImportSummary{}, err
		}
		if rowErr != nil {
			log.Warn("correction rejected", "session", session.ID(), "line", c.Line, "reason", rowErr.Message)
		}
	}
	if len(corrections) > 0 {
		summary = session.Summary()
	}
	log.Info("import parsed",
		"session", session.ID(),
		"source", sourceName,
		"valid", len(summary.Result.Features),
		"invalid", len(summary.Result.Errors),
		"warnings", len(summary.Result.Warnings))

	if !cfg.Confirm {
		return summary, nil
	}
	if len(summary.Result.Features) == 0 {
		log.Warn("import not confirmed", "session", session.ID(), "reason", normalize.AllRowsInvalid)
		return summary, nil
	}

	// 3. Confirm into the state and persist it
	next, err := session.Confirm(state.WithSettings(s))
	if err != nil {
		return schema.ImportSummary{}, err
	}
	withMembers := next.Settings.Clone()
	withMembers.Members = normalize.ExtractMembers(next.Features, withMembers.Members)
	next = next.WithSettings(withMembers)

	if err := SaveState(cfg.StatePath, next); err != nil {
		return schema.ImportSummary{}, err
	}
	if err := storeSettings(ctx, cfg, mgr, next.Settings); err != nil {
		return schema.ImportSummary{}, err
	}

	// 4. History is best effort
	confirmed := session.Summary()
	if err := recordImportHistory(cfg, mgr, confirmed, next, sourceName, start); err != nil {
		log.Warn("failed to record import history", "session", session.ID(), "error", err)
	}
	return confirmed, nil
}

// presentHeaders drops saved mappings whose header is not in headers, so a file
// with a different layout falls back to auto-detection for those fields.
func presentHeaders(saved schema.HeaderMapping, headers []string) schema.HeaderMapping {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	out := make(schema.HeaderMapping, len(saved))
	for field, h := range saved {
		if _, ok := present[h]; ok {
			out[field] = h
		}
	}
	return out
}

// recordImportHistory stores a confirmed run with its features and aggregates.
func recordImportHistory(cfg *contract.Config, mgr contract.StoreManager, summary schema.ImportSummary, state schema.State, sourceName string, start time.Time) error {
	store := historyStore(mgr)
	if store == nil {
		return nil
	}

	settingsJSON, err := settings.Export(state.Settings)
	if err != nil {
		return err
	}
	settingsStr := string(settingsJSON)

	runID, err := store.BeginImport(schema.ImportRunRecord{
		SessionID:    summary.SessionID,
		Project:      cfg.Project,
		StartTime:    start,
		SourceName:   sourceName,
		SettingsJSON: &settingsStr,
	})
	if err != nil {
		return fmt.Errorf("failed to begin import run: %w", err)
	}
	if err := store.RecordFeatures(runID, state.Features); err != nil {
		return fmt.Errorf("failed to record features: %w", err)
	}
	if err := store.RecordAggregates(runID, agg.ComputeIterationAggregates(state.Features, state.Settings)); err != nil {
		return fmt.Errorf("failed to record aggregates: %w", err)
	}
	result := summary.Result
	return store.EndImport(runID, time.Now(), len(result.Features), len(result.Errors), len(result.Warnings))
}

// ExecuteImport imports cfg.InputPath and prints the session summary.
func ExecuteImport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	text, err := ReadInput(cfg.InputPath)
	if err != nil {
		return err
	}
	summary, err := RunImport(ctx, cfg, mgr, text, filepath.Base(cfg.InputPath))
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteImport(summary, cfg)
}

// GetMappingResults reports how the headers of text would be mapped with the current settings.
func GetMappingResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, text string) (schema.MappingReport, error) {
	table := tsv.Parse(text)
	if len(table.Headers) == 0 {
		return schema.MappingReport{}, normalize.ErrEmptyInput
	}

	state, err := LoadState(cfg.StatePath)
	if err != nil {
		return schema.MappingReport{}, err
	}
	s, err := ResolveSettings(ctx, cfg, mgr, state)
	if err != nil {
		return schema.MappingReport{}, err
	}

	merged := mapping.MergeMapping(presentHeaders(s.HeaderMapping, table.Headers), mapping.AutoMap(table.Headers))
	used := make(map[string]struct{}, len(merged))
	for _, h := range merged {
		used[h] = struct{}{}
	}
	unmapped := []string{}
	for _, h := range table.Headers {
		if _, ok := used[h]; !ok {
			unmapped = append(unmapped, h)
		}
	}

	missing := mapping.MissingFields(merged, schema.MandatoryFields)
	if missing == nil {
		missing = []schema.Field{}
	}
	return schema.MappingReport{
		Headers:       table.Headers,
		Mapping:       merged,
		Unmapped:      unmapped,
		MissingFields: missing,
		ProceedReady:  mapping.IsProceedReady(merged),
		Complete:      mapping.IsComplete(merged),
	}, nil
}

// ExecuteMapping prints the header mapping report of cfg.InputPath.
func ExecuteMapping(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	text, err := ReadInput(cfg.InputPath)
	if err != nil {
		return err
	}
	report, err := GetMappingResults(ctx, cfg, mgr, text)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMapping(report, cfg)
}
