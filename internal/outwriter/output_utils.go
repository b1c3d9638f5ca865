package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/sprintboard/core/agg"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ErrParquetUnsupported is returned when a report has no tabular parquet form.
var ErrParquetUnsupported = errors.New("parquet output is only supported for the features and aggregate reports")

// ErrParquetNeedsFile is returned when parquet output would go to the terminal.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// writeTable renders a right-aligned table with the given headers.
func writeTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// formatTruncated prints planned points and deltas truncated, not rounded, to two decimals.
func formatTruncated(v float64) string {
	return fmt.Sprintf("%.2f", agg.Truncate2(v))
}

// formatPercent prints an already truncated percentage with two decimals.
func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// formatOptional renders a nullable number, using "-" for missing values.
func formatOptional(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return "-"
	}
	return fmtFloat(*v)
}

// formatIteration renders an iteration number without trailing zeros.
func formatIteration(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// formatDelta renders a signed delta, colored by its sign when colors are on.
func formatDelta(delta float64, fmtFloat func(float64) string, useColors bool) string {
	text := fmtFloat(delta)
	if delta > 0 {
		text = "+" + text
	}
	if !useColors {
		return text
	}
	return contract.ColorDelta(delta, text)
}

// formatStatusLabel renders the Ahead/OnTrack/Behind label for a delta.
func formatStatusLabel(delta float64, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(delta)
	}
	return contract.GetPlainLabel(delta)
}
