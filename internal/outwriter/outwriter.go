// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteImport prints the result of an import session.
func (ow *OutWriter) WriteImport(summary schema.ImportSummary, cfg *contract.Config) error {
	return PrintImportSummary(summary, cfg)
}

// WriteMapping prints how the headers of an input would be read.
func (ow *OutWriter) WriteMapping(report schema.MappingReport, cfg *contract.Config) error {
	return PrintMappingReport(report, cfg)
}

// WriteAggregates prints the per-iteration aggregates.
func (ow *OutWriter) WriteAggregates(aggs []schema.IterationAggregate, cfg *contract.Config) error {
	return PrintAggregates(aggs, cfg)
}

// WriteProgress prints the cumulative progress board.
func (ow *OutWriter) WriteProgress(rows []schema.ProgressRow, cfg *contract.Config) error {
	return PrintProgress(rows, cfg)
}

// WriteVelocity prints the team and member velocity views.
func (ow *OutWriter) WriteVelocity(report schema.VelocityReport, cfg *contract.Config) error {
	return PrintVelocity(report, cfg)
}

// WriteSummary prints the project summary.
func (ow *OutWriter) WriteSummary(summary schema.ProjectSummary, cfg *contract.Config) error {
	return PrintSummary(summary, cfg)
}

// WriteFeatures prints the feature table.
func (ow *OutWriter) WriteFeatures(features []schema.Feature, cfg *contract.Config) error {
	return PrintFeatures(features, cfg)
}

// GetMaxTableTitleWidth calculates the maximum width for feature titles in table output
// based on terminal width and table configuration.
func GetMaxTableTitleWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// ID + Category + SP + Est + Act + Iter + Status + Assignee with borders/padding
	baseWidth := 70

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
