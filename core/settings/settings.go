// Package settings reads, validates and writes the settings document.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/huangsam/sprintboard/core/mapping"
	"github.com/huangsam/sprintboard/schema"
)

// now is swapped in tests.
var now = time.Now

// ImportError collects every reason a settings document was rejected.
type ImportError struct {
	Reasons []string
}

// Error joins the reasons.
func (e *ImportError) Error() string {
	return "invalid settings: " + strings.Join(e.Reasons, "; ")
}

// add records a reason.
func (e *ImportError) add(format string, args ...any) {
	e.Reasons = append(e.Reasons, fmt.Sprintf(format, args...))
}

// errOrNil returns e when it holds reasons.
func (e *ImportError) errOrNil() error {
	if len(e.Reasons) == 0 {
		return nil
	}
	return e
}

// Default returns empty settings whose status mappings map every internal status onto itself.
func Default() schema.Settings {
	return schema.Settings{
		HeaderMapping:              schema.HeaderMapping{},
		StatusMappings:             mapping.BuildStatusMappings(mapping.DefaultStatusSources(), nil),
		Iterations:                 []schema.Iteration{},
		Members:                    []schema.Member{},
		MemberIterationWorkingDays: schema.WorkingDayOverrides{},
	}
}

// Import parses a JSON settings document. Malformed JSON fails with a single
// wrapped error. Otherwise every shape and value problem is collected into an
// *ImportError and nothing is returned, so a partly valid file is never applied.
func Import(data []byte) (schema.Settings, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return schema.Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if raw == nil {
		return schema.Settings{}, &ImportError{Reasons: []string{"settings must be an object"}}
	}

	// 1. Shape checks over the raw document
	ie := &ImportError{}
	if kindOf(raw["members"]) != '[' {
		ie.add("members is not an array")
	}
	if kindOf(raw["iterations"]) != '[' {
		ie.add("iterations is not an array")
	}
	if kindOf(raw["headerMapping"]) != '{' {
		ie.add("headerMapping is not an object")
	}
	if v, ok := raw["statusMappings"]; ok && kindOf(v) != '{' {
		ie.add("statusMappings is not an object")
	}
	if v, ok := raw["memberIterationWorkingDays"]; ok && kindOf(v) != '{' {
		ie.add("memberIterationWorkingDays is not an object")
	}
	if v, ok := raw["includePRinDone"]; ok && kindOf(v) != 'b' {
		ie.add("includePRinDone is not a boolean")
	}
	if err := ie.errOrNil(); err != nil {
		return schema.Settings{}, err
	}

	// 2. Typed decode of the known keys only
	var s schema.Settings
	decode := func(key string, dst any) {
		v, ok := raw[key]
		if !ok {
			return
		}
		if err := json.Unmarshal(v, dst); err != nil {
			ie.add("%s: %v", key, err)
		}
	}
	decode("headerMapping", &s.HeaderMapping)
	decode("statusMappings", &s.StatusMappings)
	decode("iterations", &s.Iterations)
	decode("members", &s.Members)
	decode("memberIterationWorkingDays", &s.MemberIterationWorkingDays)
	decode("includePRinDone", &s.IncludePRInDone)
	if err := ie.errOrNil(); err != nil {
		return schema.Settings{}, err
	}

	// 3. Value checks
	return finish(s, ie)
}

// finish validates decoded settings and fills empty collections.
func finish(s schema.Settings, ie *ImportError) (schema.Settings, error) {
	for field := range s.HeaderMapping {
		if _, ok := schema.ValidFields[field]; !ok {
			delete(s.HeaderMapping, field)
		}
	}

	iterations, err := ValidateIterations(s.Iterations, now())
	if err != nil {
		ie.Reasons = append(ie.Reasons, err.(*ImportError).Reasons...)
	}
	members, err := ValidateMembers(s.Members)
	if err != nil {
		ie.Reasons = append(ie.Reasons, err.(*ImportError).Reasons...)
	}
	if err := ie.errOrNil(); err != nil {
		return schema.Settings{}, err
	}

	s.Iterations = iterations
	s.Members = members
	return withEmptyCollections(s), nil
}

// Export renders settings as indented JSON holding only the persisted keys.
func Export(s schema.Settings) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(withEmptyCollections(s.Clone())); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return buf.Bytes(), nil
}

// Apply replaces the settings of state wholesale.
func Apply(state schema.State, s schema.Settings) schema.State {
	return state.WithSettings(s)
}

// ValidateIterations checks every iteration and returns copies with ISO dates.
func ValidateIterations(iterations []schema.Iteration, ref time.Time) ([]schema.Iteration, error) {
	ie := &ImportError{}
	out := make([]schema.Iteration, 0, len(iterations))
	for i, it := range iterations {
		prefix := fmt.Sprintf("iteration %d", i+1)
		start, errStart := ParseDate(it.Start, ref)
		if errStart != nil {
			ie.add("%s: start date %q could not be parsed", prefix, it.Start)
		}
		end, errEnd := ParseDate(it.End, ref)
		if errEnd != nil {
			ie.add("%s: end date %q could not be parsed", prefix, it.End)
		}
		if it.WorkingDays <= 0 {
			ie.add("%s: working days must be a positive integer (%d)", prefix, it.WorkingDays)
		}
		if errStart == nil && errEnd == nil && start >= end {
			ie.add("%s: start date is not before end date", prefix)
		}
		it.Start, it.End = start, end
		out = append(out, it)
	}
	if err := ie.errOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateMembers checks every member. Names are trimmed and an empty role becomes FE.
func ValidateMembers(members []schema.Member) ([]schema.Member, error) {
	ie := &ImportError{}
	out := make([]schema.Member, 0, len(members))
	for i, m := range members {
		prefix := fmt.Sprintf("member %d", i+1)
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			ie.add("%s: name is required", prefix)
		}
		if m.Role == "" {
			m.Role = schema.RoleFE
		}
		if _, ok := schema.ValidRoles[m.Role]; !ok {
			ie.add("%s: unknown role %q", prefix, m.Role)
		}
		if m.PlannedVelocity < 0 || math.IsNaN(m.PlannedVelocity) || math.IsInf(m.PlannedVelocity, 0) {
			ie.add("%s: planned velocity must be a non-negative number", prefix)
		}
		out = append(out, m)
	}
	if err := ie.errOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// kindOf classifies a raw JSON value: '{' object, '[' array, 'b' boolean, 0 otherwise.
func kindOf(v json.RawMessage) byte {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0
	}
	switch v[0] {
	case '{', '[':
		return v[0]
	case 't', 'f':
		return 'b'
	}
	return 0
}

// withEmptyCollections replaces nil maps and slices so they encode as {} and [].
func withEmptyCollections(s schema.Settings) schema.Settings {
	if s.HeaderMapping == nil {
		s.HeaderMapping = schema.HeaderMapping{}
	}
	if s.StatusMappings == nil {
		s.StatusMappings = schema.StatusMappings{}
	}
	if s.Iterations == nil {
		s.Iterations = []schema.Iteration{}
	}
	if s.Members == nil {
		s.Members = []schema.Member{}
	}
	if s.MemberIterationWorkingDays == nil {
		s.MemberIterationWorkingDays = schema.WorkingDayOverrides{}
	}
	return s
}
