package settings

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/sprintboard/schema"
)

const isoLayout = "2006-01-02"

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	jpDatePattern  = regexp.MustCompile(`^(\d{1,2})月\s*(\d{1,2})日$`)
	lineSplit      = regexp.MustCompile(`\r?\n`)
)

// fallbackLayouts are tried in order when the value is neither ISO nor M月D日.
var fallbackLayouts = []string{
	"2006/01/02",
	"2006/1/2",
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"01/02/2006",
}

// ErrBadDate is returned when a date matches none of the accepted forms.
var ErrBadDate = errors.New("unrecognized date")

// ParseDate normalizes a date to YYYY-MM-DD. M月D日 takes its year from ref.
func ParseDate(s string, ref time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrBadDate)
	}
	if isoDatePattern.MatchString(s) {
		if _, err := time.Parse(isoLayout, s); err != nil {
			return "", fmt.Errorf("%w: %q", ErrBadDate, s)
		}
		return s, nil
	}
	if m := jpDatePattern.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		t := time.Date(ref.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if int(t.Month()) != month || t.Day() != day {
			return "", fmt.Errorf("%w: %q", ErrBadDate, s)
		}
		return t.Format(isoLayout), nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrBadDate, s)
}

// ParseIterations reads one iteration per non-blank line as
// start<TAB>end<TAB>workingDays[<TAB>name]. Every bad line is reported and
// nothing is returned unless all lines are valid.
func ParseIterations(text string, ref time.Time) ([]schema.Iteration, error) {
	ie := &ImportError{}
	var iterations []schema.Iteration
	for i, line := range lineSplit.Split(text, -1) {
		n := i + 1 // physical line, blank lines included
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		for len(parts) < 3 {
			parts = append(parts, "")
		}

		start, errStart := ParseDate(parts[0], ref)
		if errStart != nil {
			ie.add("line %d: start date %q could not be parsed", n, parts[0])
		}
		end, errEnd := ParseDate(parts[1], ref)
		if errEnd != nil {
			ie.add("line %d: end date %q could not be parsed", n, parts[1])
		}
		wd, errWD := parseWorkingDays(parts[2])
		if errWD != nil {
			ie.add("line %d: working days must be a positive integer (%q)", n, parts[2])
		}
		if errStart == nil && errEnd == nil && start >= end {
			ie.add("line %d: start date is not before end date", n)
		}

		it := schema.Iteration{Start: start, End: end, WorkingDays: wd}
		if len(parts) > 3 {
			it.Name = parts[3]
		}
		iterations = append(iterations, it)
	}
	if err := ie.errOrNil(); err != nil {
		return nil, err
	}
	if iterations == nil {
		iterations = []schema.Iteration{}
	}
	return iterations, nil
}

// FormatIterations is the inverse of ParseIterations.
func FormatIterations(iterations []schema.Iteration) string {
	lines := make([]string, 0, len(iterations))
	for _, it := range iterations {
		line := fmt.Sprintf("%s\t%s\t%d", it.Start, it.End, it.WorkingDays)
		if it.Name != "" {
			line += "\t" + it.Name
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// parseWorkingDays accepts positive whole numbers, including forms like "10.0".
func parseWorkingDays(raw string) (int, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 || v != float64(int(v)) {
		return 0, fmt.Errorf("not a positive integer: %s", raw)
	}
	return int(v), nil
}
