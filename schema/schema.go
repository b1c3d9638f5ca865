// Package schema holds the records shared by the core, the stores and the writers.
package schema

import (
	"encoding/json"
	"math"
	"strconv"
)

// Feature is one tracked unit of work.
// Nil numeric fields mean "not provided", which is distinct from zero.
type Feature struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Category       string   `json:"category,omitempty"`
	StoryPoints    *float64 `json:"storyPoints"`
	EstimatedHours *float64 `json:"estimatedHours"`
	ActualHours    *float64 `json:"actualHours"`
	Iteration      *float64 `json:"iteration"`
	Status         string   `json:"status,omitempty"`
	Assignee       string   `json:"assignee,omitempty"`
	// CoAssignees are the names dropped from a multi-assignee cell.
	// They become members but never own the feature.
	CoAssignees []string `json:"coAssignees,omitempty"`
}

// Points returns the story points, treating a missing value as zero.
func (f Feature) Points() float64 {
	if f.StoryPoints == nil {
		return 0
	}
	return *f.StoryPoints
}

// IterationNumber returns the 1-based iteration when it is a positive integer.
func (f Feature) IterationNumber() (int, bool) {
	if f.Iteration == nil {
		return 0, false
	}
	v := *f.Iteration
	if v < 1 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// Iteration is a time-boxed sprint. Dates are kept as YYYY-MM-DD.
type Iteration struct {
	Start       string `json:"start" yaml:"start"`
	End         string `json:"end" yaml:"end"`
	WorkingDays int    `json:"workingDays" yaml:"workingDays"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Member is a person whose planned velocity feeds the targets.
type Member struct {
	Name            string  `json:"name" yaml:"name"`
	Role            Role    `json:"role" yaml:"role"`
	PlannedVelocity float64 `json:"plannedVelocity" yaml:"plannedVelocity"`
}

// HeaderMapping maps internal fields onto source column headers.
type HeaderMapping map[Field]string

// StatusMappings maps source status values onto internal statuses.
type StatusMappings map[string]string

// WorkingDayOverrides maps member name to 0-based iteration position to working days.
type WorkingDayOverrides map[string]map[int]float64

// UnmarshalJSON keeps only numeric overrides; anything else falls back to the iteration default.
func (w *WorkingDayOverrides) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(WorkingDayOverrides, len(raw))
	for name, byIter := range raw {
		inner := make(map[int]float64)
		for k, v := range byIter {
			idx, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			if n, ok := v.(float64); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
				inner[idx] = n
			}
		}
		out[name] = inner
	}
	*w = out
	return nil
}

// Settings is the configuration bag the core reads.
type Settings struct {
	HeaderMapping              HeaderMapping       `json:"headerMapping" yaml:"headerMapping"`
	StatusMappings             StatusMappings      `json:"statusMappings" yaml:"statusMappings"`
	Iterations                 []Iteration         `json:"iterations" yaml:"iterations"`
	Members                    []Member            `json:"members" yaml:"members"`
	MemberIterationWorkingDays WorkingDayOverrides `json:"memberIterationWorkingDays" yaml:"memberIterationWorkingDays"`
	IncludePRInDone            bool                `json:"includePRinDone" yaml:"includePRinDone"`
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	clone := s
	if s.HeaderMapping != nil {
		clone.HeaderMapping = make(HeaderMapping, len(s.HeaderMapping))
		for k, v := range s.HeaderMapping {
			clone.HeaderMapping[k] = v
		}
	}
	if s.StatusMappings != nil {
		clone.StatusMappings = make(StatusMappings, len(s.StatusMappings))
		for k, v := range s.StatusMappings {
			clone.StatusMappings[k] = v
		}
	}
	clone.Iterations = append([]Iteration(nil), s.Iterations...)
	clone.Members = append([]Member(nil), s.Members...)
	if s.MemberIterationWorkingDays != nil {
		clone.MemberIterationWorkingDays = make(WorkingDayOverrides, len(s.MemberIterationWorkingDays))
		for name, inner := range s.MemberIterationWorkingDays {
			m := make(map[int]float64, len(inner))
			for k, v := range inner {
				m[k] = v
			}
			clone.MemberIterationWorkingDays[name] = m
		}
	}
	return clone
}

// Float returns a pointer to v. Handy for building features in code and tests.
func Float(v float64) *float64 {
	return &v
}
