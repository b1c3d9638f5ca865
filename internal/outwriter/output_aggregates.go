package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/sprintboard/core/report"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/parquet"
	"github.com/huangsam/sprintboard/schema"
)

// PrintAggregates outputs the per-iteration aggregates, dispatching based on the output format configured.
func PrintAggregates(aggs []schema.IterationAggregate, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return ErrParquetNeedsFile
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteAggregateResults(w, aggs, cfg)
	}, fmt.Sprintf("Wrote %s aggregates", cfg.Output))
}

// WriteAggregateResults writes the aggregates to w in the configured format.
func WriteAggregateResults(w io.Writer, aggs []schema.IterationAggregate, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, aggs)
	case schema.ParquetOut:
		if err := parquet.Write(w, parquet.ConvertAggregates(aggs)); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		return nil
	case schema.CSVOut:
		if err := writeCSVAggregates(w, aggs, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		return nil
	default:
		if err := writeAggregatesTable(w, aggs, fmtFloat); err != nil {
			return fmt.Errorf("error writing aggregates table output: %w", err)
		}
		return nil
	}
}

// aggregateCategories are the category buckets exported per iteration.
var aggregateCategories = []schema.Category{schema.CategoryFE, schema.CategoryBE, schema.CategoryTest, schema.CategoryOther}

// categoryColumn is the CSV column prefix for a category.
func categoryColumn(c schema.Category) string {
	switch c {
	case schema.CategoryFE:
		return "fe"
	case schema.CategoryBE:
		return "be"
	case schema.CategoryTest:
		return "test"
	default:
		return string(c)
	}
}

// aggregateLabel is the iteration name, or I{n} when unnamed.
func aggregateLabel(a schema.IterationAggregate) string {
	if a.IterationName != "" {
		return a.IterationName
	}
	return fmt.Sprintf("I%d", a.IterationIndex)
}

// formatPeriod renders an iteration's date range the way the board shows it.
func formatPeriod(start, end string) string {
	return report.FormatDateJP(start) + "〜" + report.FormatDateJP(end)
}

func writeCSVAggregates(w io.Writer, aggs []schema.IterationAggregate, fmtFloat func(float64) string) error {
	header := []string{"iteration_index", "iteration_name", "start", "end", "working_days", "total_points", "done_points"}
	for _, c := range aggregateCategories {
		header = append(header, categoryColumn(c)+"_total", categoryColumn(c)+"_done")
	}
	header = append(header, "planned_points")

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, a := range aggs {
			row := []string{
				strconv.Itoa(a.IterationIndex),
				a.IterationName,
				a.Start,
				a.End,
				strconv.Itoa(a.WorkingDays),
				fmtFloat(a.TotalPoints),
				fmtFloat(a.DonePoints),
			}
			for _, c := range aggregateCategories {
				cp := a.CategoryPoints[c]
				row = append(row, fmtFloat(cp.Total), fmtFloat(cp.Done))
			}
			row = append(row, fmtFloat(a.PlannedPoints))
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeAggregatesTable(w io.Writer, aggs []schema.IterationAggregate, fmtFloat func(float64) string) error {
	headers := []string{"Iteration", "Period", "Days", "Total", "Done"}
	for _, c := range schema.AllCategories {
		headers = append(headers, string(c))
	}
	headers = append(headers, "Planned")

	var data [][]string
	for _, a := range aggs {
		row := []string{
			aggregateLabel(a),
			formatPeriod(a.Start, a.End),
			strconv.Itoa(a.WorkingDays),
			fmtFloat(a.TotalPoints),
			fmtFloat(a.DonePoints),
		}
		for _, c := range schema.AllCategories {
			cp := a.CategoryPoints[c]
			row = append(row, fmtFloat(cp.Done)+"/"+fmtFloat(cp.Total))
		}
		row = append(row, fmtFloat(a.PlannedPoints))
		data = append(data, row)
	}

	if err := writeTable(w, headers, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d iterations aggregated\n", len(aggs))
	return err
}

// PrintProgress outputs the cumulative progress board, dispatching based on the output format configured.
func PrintProgress(rows []schema.ProgressRow, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		return ErrParquetUnsupported
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteProgressResults(w, rows, cfg)
	}, fmt.Sprintf("Wrote %s progress board", cfg.Output))
}

// WriteProgressResults writes the progress board to w in the configured format.
func WriteProgressResults(w io.Writer, rows []schema.ProgressRow, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, rows)
	case schema.ParquetOut:
		return ErrParquetUnsupported
	case schema.CSVOut:
		if err := writeCSVProgress(w, rows, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		return nil
	default:
		if err := writeProgressTable(w, rows, fmtFloat, cfg.UseColors); err != nil {
			return fmt.Errorf("error writing progress table output: %w", err)
		}
		return nil
	}
}

func writeCSVProgress(w io.Writer, rows []schema.ProgressRow, fmtFloat func(float64) string) error {
	header := []string{
		"iteration_index", "label", "start", "end", "total", "cumulative_done", "planned_consume",
		"planned_progress", "actual_progress", "delta", "status",
	}
	for _, c := range schema.AllCategories {
		col := categoryColumn(c)
		header = append(header, col+"_total", col+"_cumulative_done", col+"_planned", col+"_delta")
	}

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			row := []string{
				strconv.Itoa(r.IterationIndex),
				r.Label,
				r.Start,
				r.End,
				fmtFloat(r.Total),
				fmtFloat(r.CumulativeDone),
				formatTruncated(r.PlannedConsume),
				fmt.Sprintf("%.2f", r.PlannedProgress),
				fmt.Sprintf("%.2f", r.ActualProgress),
				formatTruncated(r.Delta),
				contract.GetPlainLabel(r.Delta),
			}
			for _, c := range schema.AllCategories {
				cp := r.Categories[c]
				row = append(row, fmtFloat(cp.Total), fmtFloat(cp.CumulativeDone), formatTruncated(cp.Planned), formatTruncated(cp.Delta))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeProgressTable(w io.Writer, rows []schema.ProgressRow, fmtFloat func(float64) string, useColors bool) error {
	headers := []string{"Iteration", "Period", "Done", "Planned", "Plan %", "Actual %", "Delta"}
	for _, c := range schema.AllCategories {
		headers = append(headers, string(c)+" Delta")
	}
	headers = append(headers, "Status")

	var data [][]string
	for _, r := range rows {
		row := []string{
			r.Label,
			formatPeriod(r.Start, r.End),
			fmtFloat(r.CumulativeDone),
			formatTruncated(r.PlannedConsume),
			formatPercent(r.PlannedProgress),
			formatPercent(r.ActualProgress),
			formatDelta(r.Delta, formatTruncated, useColors),
		}
		for _, c := range schema.AllCategories {
			row = append(row, formatDelta(r.Categories[c].Delta, formatTruncated, useColors))
		}
		row = append(row, formatStatusLabel(r.Delta, useColors))
		data = append(data, row)
	}

	if err := writeTable(w, headers, data); err != nil {
		return err
	}
	if len(rows) > 0 {
		_, err := fmt.Fprintf(w, "Total points: %s\n", fmtFloat(rows[0].Total))
		return err
	}
	return nil
}
