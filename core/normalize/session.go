package normalize

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/huangsam/sprintboard/core/mapping"
	"github.com/huangsam/sprintboard/core/tsv"
	"github.com/huangsam/sprintboard/schema"
)

// Session errors.
var (
	ErrInvalidTransition = errors.New("invalid import session transition")
	ErrEmptyInput        = errors.New("input has no header row")
	ErrMappingIncomplete = errors.New("header mapping is missing mandatory fields")
	ErrUnknownBadRow     = errors.New("no bad row at that line")
)

// AllRowsInvalid is the summary message when a batch produced no features.
const AllRowsInvalid = "all rows invalid"

// Session is one import: Idle -> Parsed -> Confirmed or Aborted.
// Parsed rows stay pending until Confirm; Abort drops them with no side effects.
type Session struct {
	id             string
	state          schema.SessionState
	headerMapping  schema.HeaderMapping
	statusMappings schema.StatusMappings
	headers        []string
	mapping        schema.HeaderMapping
	pending        schema.NormalizeResult
}

// NewSession starts an idle session reading with the given settings.
func NewSession(settings schema.Settings) *Session {
	return &Session{
		id:             uuid.NewString(),
		state:          schema.SessionIdle,
		headerMapping:  settings.Clone().HeaderMapping,
		statusMappings: settings.Clone().StatusMappings,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() schema.SessionState { return s.state }

// Load parses and normalizes text. The header mapping is the settings mapping
// with auto-detected headers filling any gaps. It fails without changing state
// when the input is empty or title, status and iteration cannot be mapped.
func (s *Session) Load(text string) (schema.ImportSummary, error) {
	if s.state != schema.SessionIdle {
		return schema.ImportSummary{}, fmt.Errorf("%w: load from %s", ErrInvalidTransition, s.state)
	}

	table := tsv.Parse(text)
	if len(table.Headers) == 0 {
		return schema.ImportSummary{}, ErrEmptyInput
	}

	merged := mapping.MergeMapping(s.headerMapping, mapping.AutoMap(table.Headers))
	if missing := mapping.MissingFields(merged, schema.MandatoryFields); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return schema.ImportSummary{}, fmt.Errorf("%w: %s", ErrMappingIncomplete, strings.Join(names, ", "))
	}

	s.headers = table.Headers
	s.mapping = merged
	s.pending = Rows(table, merged, s.statusMappings)
	s.state = schema.SessionParsed
	return s.Summary(), nil
}

// Resubmit re-validates a corrected bad row identified by its line number.
// On success the feature joins the pending set and the bad row is removed;
// on failure the row error is returned and the bad row stays.
func (s *Session) Resubmit(line int, text string) (*schema.RowError, error) {
	if s.state != schema.SessionParsed {
		return nil, fmt.Errorf("%w: resubmit from %s", ErrInvalidTransition, s.state)
	}
	pos := -1
	for i, b := range s.pending.BadRows {
		if b.Row == line {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBadRow, line)
	}

	f, warnings, rowErr := ParseEditedRow(text, line-2, s.statusMappings)
	if rowErr != nil {
		return rowErr, nil
	}

	// Summaries already handed out share the pending slices, so build new ones.
	next := schema.NormalizeResult{
		Features: append(slices.Clone(s.pending.Features), f),
		Warnings: append(slices.Clone(s.pending.Warnings), warnings...),
		BadRows:  make([]schema.BadRow, 0, len(s.pending.BadRows)-1),
		Errors:   make([]schema.RowError, 0, len(s.pending.Errors)),
	}
	next.BadRows = append(next.BadRows, s.pending.BadRows[:pos]...)
	next.BadRows = append(next.BadRows, s.pending.BadRows[pos+1:]...)
	for _, e := range s.pending.Errors {
		if e.Row != line {
			next.Errors = append(next.Errors, e)
		}
	}
	s.pending = next
	return nil, nil
}

// Summary reports the pending result without changing state.
func (s *Session) Summary() schema.ImportSummary {
	summary := schema.ImportSummary{
		SessionID: s.id,
		State:     s.state,
		Headers:   s.headers,
		Mapping:   s.mapping,
		Result:    s.pending,
	}
	switch {
	case s.state == schema.SessionParsed && len(s.pending.Features) == 0:
		summary.Message = AllRowsInvalid
	case s.state == schema.SessionParsed:
		summary.Message = fmt.Sprintf("ready: %d valid, %d invalid", len(s.pending.Features), len(s.pending.Errors))
	case s.state == schema.SessionConfirmed:
		summary.Message = fmt.Sprintf("imported %d features", len(s.pending.Features))
	case s.state == schema.SessionAborted:
		summary.Message = "import aborted"
	}
	return summary
}

// Confirm replaces the feature collection of state with the pending features.
// The header mapping used for the import is kept on the returned settings.
func (s *Session) Confirm(state schema.State) (schema.State, error) {
	if s.state != schema.SessionParsed {
		return state, fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, s.state)
	}
	settings := state.Settings.Clone()
	settings.HeaderMapping = s.mapping
	next := state.WithSettings(settings).WithFeatures(s.pending.Features)
	s.state = schema.SessionConfirmed
	return next, nil
}

// Abort discards everything parsed in this session.
func (s *Session) Abort() error {
	if s.state != schema.SessionParsed {
		return fmt.Errorf("%w: abort from %s", ErrInvalidTransition, s.state)
	}
	s.pending = schema.NormalizeResult{}
	s.headers = nil
	s.mapping = nil
	s.state = schema.SessionAborted
	return nil
}
