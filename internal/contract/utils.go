package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Delta label constants.
const (
	AheadValue   = "Ahead"   // Actual is above plan
	OnTrackValue = "OnTrack" // Actual matches plan
	BehindValue  = "Behind"  // Actual is below plan
)

// Color variables for console output.
var (
	AheadColor   = color.New(color.FgGreen, color.Bold) // AheadColor highlights work done beyond plan.
	OnTrackColor = color.New(color.FgCyan)              // OnTrackColor is neutral.
	BehindColor  = color.New(color.FgRed, color.Bold)   // BehindColor flags work lagging the plan.
)

// GetPlainLabel returns a plain text label for the difference between done and planned points.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(delta float64) string {
	switch {
	case delta > 0:
		return AheadValue
	case delta < 0:
		return BehindValue
	default:
		return OnTrackValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(delta float64) string {
	text := GetPlainLabel(delta)

	switch text {
	case AheadValue:
		return AheadColor.Sprint(text)
	case BehindValue:
		return BehindColor.Sprint(text)
	default:
		return OnTrackColor.Sprint(text)
	}
}

// ColorDelta renders a delta value colored by its sign.
func ColorDelta(delta float64, text string) string {
	switch {
	case delta > 0:
		return AheadColor.Sprint(text)
	case delta < 0:
		return BehindColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetSettingsDBFilePath returns the path to the SQLite DB file for settings storage.
func GetSettingsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sprintboard_settings.db"
	}
	return filepath.Join(homeDir, ".sprintboard_settings.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for import history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sprintboard_history.db"
	}
	return filepath.Join(homeDir, ".sprintboard_history.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
