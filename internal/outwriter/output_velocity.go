package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
)

// PrintVelocity outputs the velocity report, dispatching based on the output format configured.
func PrintVelocity(report schema.VelocityReport, cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		return ErrParquetUnsupported
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteVelocityResults(w, report, cfg)
	}, fmt.Sprintf("Wrote %s velocity report", cfg.Output))
}

// WriteVelocityResults writes the velocity report to w in the configured format.
// CSV output carries the per-member rows only.
func WriteVelocityResults(w io.Writer, report schema.VelocityReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.ParquetOut:
		return ErrParquetUnsupported
	case schema.CSVOut:
		if err := writeCSVMemberVelocity(w, report.Members); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		return nil
	default:
		if err := writeVelocityTables(w, report, cfg.UseColors); err != nil {
			return fmt.Errorf("error writing velocity table output: %w", err)
		}
		return nil
	}
}

// formatTarget prints planned point targets with one decimal.
func formatTarget(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// formatVelocity prints velocities with two decimals.
func formatVelocity(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func writeCSVMemberVelocity(w io.Writer, report schema.MemberVelocityReport) error {
	header := []string{"from", "to", "name", "role", "planned_velocity", "working_days", "target_pt", "actual_pt", "actual_velocity"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range report.Members {
			row := []string{
				strconv.Itoa(report.From),
				strconv.Itoa(report.To),
				m.Name,
				string(m.Role),
				formatVelocity(m.PlannedVelocity),
				strconv.FormatFloat(m.WorkingDays, 'f', -1, 64),
				formatTarget(m.TargetPT),
				formatTarget(m.ActualPT),
				formatVelocity(m.ActualVelocity),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeVelocityTables(w io.Writer, report schema.VelocityReport, useColors bool) error {
	// 1. Team velocity per iteration
	headers := []string{"Iteration", "Days", "Target", "Actual"}
	for _, r := range schema.AllRoles {
		headers = append(headers, string(r)+" T/A")
	}
	headers = append(headers, "Status")

	var data [][]string
	for _, v := range report.Team {
		row := []string{
			v.Label,
			strconv.Itoa(v.WorkingDays),
			formatTarget(v.Target),
			formatTarget(v.Actual),
		}
		for _, r := range schema.AllRoles {
			rp := v.ByRole[r]
			row = append(row, formatTarget(rp.Target)+"/"+formatTarget(rp.Actual))
		}
		row = append(row, formatStatusLabel(v.Actual-v.Target, useColors))
		data = append(data, row)
	}
	if err := writeTable(w, headers, data); err != nil {
		return err
	}

	// 2. Member velocity over the selected range
	if _, err := fmt.Fprintf(w, "\nMember velocity (I%d-I%d)\n", report.Members.From, report.Members.To); err != nil {
		return err
	}
	data = nil
	for _, m := range report.Members.Members {
		data = append(data, []string{
			m.Name,
			string(m.Role),
			formatVelocity(m.PlannedVelocity),
			strconv.FormatFloat(m.WorkingDays, 'f', -1, 64),
			formatTarget(m.TargetPT),
			formatTarget(m.ActualPT),
			formatVelocity(m.ActualVelocity),
		})
	}
	if err := writeTable(w, []string{"Member", "Role", "Planned Vel", "Days", "Target PT", "Actual PT", "Actual Vel"}, data); err != nil {
		return err
	}

	// 3. Features whose points cannot be counted
	if len(report.PointsIssues) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%d features have no story points:\n", len(report.PointsIssues)); err != nil {
		return err
	}
	for _, issue := range report.PointsIssues {
		if _, err := fmt.Fprintf(w, "  - [%s] %s (iteration %s)\n", issue.ID, issue.Title, formatIteration(issue.Iteration)); err != nil {
			return err
		}
	}
	return nil
}
