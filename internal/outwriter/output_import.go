package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
)

// PrintImportSummary outputs an import session result, dispatching based on the output format configured.
func PrintImportSummary(summary schema.ImportSummary, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		return ErrParquetUnsupported
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteImportResults(w, summary, cfg)
	}, fmt.Sprintf("Wrote %s import summary", cfg.Output))
}

// WriteImportResults writes an import session result to w in the configured format.
// CSV output lists the row diagnostics, one per line.
func WriteImportResults(w io.Writer, summary schema.ImportSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, summary)
	case schema.ParquetOut:
		return ErrParquetUnsupported
	case schema.CSVOut:
		header := []string{"kind", "row", "message"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, e := range summary.Result.Errors {
				if err := cw.Write([]string{"error", strconv.Itoa(e.Row), e.Message}); err != nil {
					return err
				}
			}
			for _, warn := range summary.Result.Warnings {
				if err := cw.Write([]string{"warning", strconv.Itoa(warn.Row), warn.Message}); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return writeImportText(w, summary, cfg.UseColors)
	}
}

func writeImportText(w io.Writer, summary schema.ImportSummary, useColors bool) error {
	result := summary.Result
	status := fmt.Sprintf("%d accepted, %d rejected, %d warnings", len(result.Features), len(result.Errors), len(result.Warnings))
	if useColors {
		if len(result.Errors) > 0 {
			status = contract.BehindColor.Sprint(status)
		} else {
			status = contract.AheadColor.Sprint(status)
		}
	}
	if _, err := fmt.Fprintf(w, "Import %s [%s]: %s\n", summary.SessionID, summary.State, status); err != nil {
		return err
	}
	if summary.Message != "" {
		if _, err := fmt.Fprintf(w, "%s\n", summary.Message); err != nil {
			return err
		}
	}

	if len(result.Errors) > 0 || len(result.Warnings) > 0 {
		var data [][]string
		for _, e := range result.Errors {
			data = append(data, []string{strconv.Itoa(e.Row), "error", e.Message})
		}
		for _, warn := range result.Warnings {
			data = append(data, []string{strconv.Itoa(warn.Row), "warning", warn.Message})
		}
		if err := writeTable(w, []string{"Row", "Kind", "Message"}, data); err != nil {
			return fmt.Errorf("error writing import table output: %w", err)
		}
	}

	for _, bad := range result.BadRows {
		if _, err := fmt.Fprintf(w, "line %d: %s\n", bad.Row, strings.ReplaceAll(bad.Text, "\t", " | ")); err != nil {
			return err
		}
	}
	return nil
}

// PrintMappingReport outputs the header mapping report, dispatching based on the output format configured.
func PrintMappingReport(report schema.MappingReport, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		return ErrParquetUnsupported
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteMappingResults(w, report, cfg)
	}, fmt.Sprintf("Wrote %s mapping report", cfg.Output))
}

// WriteMappingResults writes the header mapping report to w in the configured format.
func WriteMappingResults(w io.Writer, report schema.MappingReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.ParquetOut:
		return ErrParquetUnsupported
	case schema.CSVOut:
		header := []string{"field", "header", "mandatory"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, field := range schema.AllFields {
				row := []string{string(field), report.Mapping[field], strconv.FormatBool(isMandatory(field))}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return writeMappingText(w, report, cfg.UseColors)
	}
}

// isMandatory reports whether a field must be mapped before an import can proceed.
func isMandatory(field schema.Field) bool {
	for _, f := range schema.MandatoryFields {
		if f == field {
			return true
		}
	}
	return false
}

func writeMappingText(w io.Writer, report schema.MappingReport, useColors bool) error {
	missing := color.New(color.FgRed)
	if !useColors {
		missing.DisableColor()
	}

	var data [][]string
	for _, field := range schema.AllFields {
		header := report.Mapping[field]
		if header == "" {
			header = "-"
			if isMandatory(field) {
				header = missing.Sprint("(missing)")
			}
		}
		req := ""
		if isMandatory(field) {
			req = "*"
		}
		data = append(data, []string{string(field), header, req})
	}
	if err := writeTable(w, []string{"Field", "Header", "Required"}, data); err != nil {
		return fmt.Errorf("error writing mapping table output: %w", err)
	}

	if len(report.Unmapped) > 0 {
		if _, err := fmt.Fprintf(w, "Unmapped headers: %s\n", strings.Join(report.Unmapped, ", ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Ready to import: %t, complete: %t\n", report.ProceedReady, report.Complete)
	return err
}
