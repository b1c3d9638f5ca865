package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/parquet"
	"github.com/huangsam/sprintboard/schema"
)

// PrintSummary outputs the project summary, dispatching based on the output format configured.
func PrintSummary(summary schema.ProjectSummary, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		return ErrParquetUnsupported
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteSummaryResults(w, summary, cfg)
	}, fmt.Sprintf("Wrote %s summary", cfg.Output))
}

// WriteSummaryResults writes the project summary to w in the configured format.
func WriteSummaryResults(w io.Writer, summary schema.ProjectSummary, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, summary)
	case schema.ParquetOut:
		return ErrParquetUnsupported
	case schema.CSVOut:
		header := []string{"category", "points", "discarded_points"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			if err := cw.Write([]string{"all", fmtFloat(summary.TotalPoints), fmtFloat(summary.DiscardedPoints)}); err != nil {
				return err
			}
			for _, c := range schema.AllCategories {
				cs := summary.Categories[c]
				if err := cw.Write([]string{categoryColumn(c), fmtFloat(cs.Points), fmtFloat(cs.DiscardedPoints)}); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		data := [][]string{
			{"Total PT", fmtFloat(summary.TotalPoints)},
			{"Features", fmt.Sprintf(intFmt, summary.ValidCount)},
			{"Discarded", fmt.Sprintf(intFmt+" (%s PT)", summary.DiscardedCount, fmtFloat(summary.DiscardedPoints))},
		}
		for _, c := range schema.AllCategories {
			cs := summary.Categories[c]
			data = append(data, []string{string(c) + " PT", fmt.Sprintf("%s (discarded %s)", fmtFloat(cs.Points), fmtFloat(cs.DiscardedPoints))})
		}
		if err := writeTable(w, []string{"Metric", "Value"}, data); err != nil {
			return fmt.Errorf("error writing summary table output: %w", err)
		}
		return nil
	}
}

// PrintFeatures outputs the feature table, dispatching based on the output format configured.
func PrintFeatures(features []schema.Feature, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return ErrParquetNeedsFile
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteFeatureResults(w, features, cfg)
	}, fmt.Sprintf("Wrote %s features", cfg.Output))
}

// WriteFeatureResults writes the features to w in the configured format.
func WriteFeatureResults(w io.Writer, features []schema.Feature, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, features)
	case schema.ParquetOut:
		if err := parquet.Write(w, parquet.ConvertFeatures(features)); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		return nil
	case schema.CSVOut:
		if err := writeCSVFeatures(w, features, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		return nil
	default:
		if err := writeFeaturesTable(w, features, fmtFloat, GetMaxTableTitleWidth(cfg)); err != nil {
			return fmt.Errorf("error writing features table output: %w", err)
		}
		return nil
	}
}

func writeCSVFeatures(w io.Writer, features []schema.Feature, fmtFloat func(float64) string) error {
	header := []string{"id", "title", "category", "story_points", "estimated_hours", "actual_hours", "iteration", "status", "assignee"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range features {
			row := []string{
				f.ID,
				f.Title,
				f.Category,
				formatCSVOptional(f.StoryPoints, fmtFloat),
				formatCSVOptional(f.EstimatedHours, fmtFloat),
				formatCSVOptional(f.ActualHours, fmtFloat),
				formatCSVOptional(f.Iteration, func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }),
				f.Status,
				f.Assignee,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// formatCSVOptional leaves missing numbers as empty cells.
func formatCSVOptional(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

func writeFeaturesTable(w io.Writer, features []schema.Feature, fmtFloat func(float64) string, titleWidth int) error {
	headers := []string{"ID", "Title", "Category", "SP", "Est", "Act", "Iter", "Status", "Assignee"}

	var data [][]string
	for _, f := range features {
		data = append(data, []string{
			f.ID,
			contract.TruncateText(f.Title, titleWidth),
			f.Category,
			formatOptional(f.StoryPoints, fmtFloat),
			formatOptional(f.EstimatedHours, fmtFloat),
			formatOptional(f.ActualHours, fmtFloat),
			formatIteration(f.Iteration),
			f.Status,
			f.Assignee,
		})
	}

	if err := writeTable(w, headers, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d features\n", len(features))
	return err
}
