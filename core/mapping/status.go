package mapping

import (
	"sort"
	"strings"

	"github.com/huangsam/sprintboard/schema"
)

// AdditionalMapping is a secondary source value pointing at an internal status.
type AdditionalMapping struct {
	Source string                `json:"source" yaml:"source"`
	Status schema.InternalStatus `json:"status" yaml:"status"`
}

// MapStatus maps a raw status through mappings. An empty raw value yields "".
// Lookup order: exact key, case-insensitive key, then the default normalization,
// which falls through to the trimmed raw value.
func MapStatus(raw string, mappings schema.StatusMappings) string {
	key := strings.TrimSpace(raw)
	if key == "" {
		return ""
	}
	if v := mappings[key]; v != "" {
		return v
	}
	lower := strings.ToLower(key)
	if len(mappings) > 0 {
		keys := make([]string, 0, len(mappings))
		for k := range mappings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := mappings[k]; v != "" && strings.ToLower(k) == lower {
				return v
			}
		}
	}
	switch lower {
	case "完了", "done", "完了済み":
		return string(schema.StatusDone)
	case "プルリク中", "in_pr", "in pr", "pr":
		return string(schema.StatusPullRequest)
	}
	return key
}

// IsInReview reports whether a mapped status means "waiting in a pull request".
func IsInReview(mapped string) bool {
	return mapped == string(schema.StatusPullRequest) || mapped == string(schema.StatusInReview)
}

// IsDone reports whether a feature counts as done under the given settings.
func IsDone(f schema.Feature, settings schema.Settings) bool {
	mapped := MapStatus(f.Status, settings.StatusMappings)
	if mapped == string(schema.StatusDone) {
		return true
	}
	return settings.IncludePRInDone && IsInReview(mapped)
}

// IsDiscarded reports whether a feature maps to the discarded status.
func IsDiscarded(f schema.Feature, settings schema.Settings) bool {
	return MapStatus(f.Status, settings.StatusMappings) == string(schema.StatusDiscarded)
}

// DefaultStatusSources seeds the editing form: every internal status maps from itself.
func DefaultStatusSources() map[schema.InternalStatus]string {
	defaults := make(map[schema.InternalStatus]string, len(schema.AllInternalStatuses))
	for _, s := range schema.AllInternalStatuses {
		defaults[s] = string(s)
	}
	return defaults
}

// BuildStatusMappings inverts the editing form into the persisted source -> internal table.
// Additional mappings are applied after the defaults; on a key collision the last write wins.
func BuildStatusMappings(defaults map[schema.InternalStatus]string, additional []AdditionalMapping) schema.StatusMappings {
	out := make(schema.StatusMappings)
	for _, status := range schema.AllInternalStatuses {
		if src := strings.TrimSpace(defaults[status]); src != "" {
			out[src] = string(status)
		}
	}
	for _, a := range additional {
		if src := strings.TrimSpace(a.Source); src != "" && a.Status != "" {
			out[src] = string(a.Status)
		}
	}
	return out
}

// SplitStatusMappings is the inverse of BuildStatusMappings. For each internal status the
// lexically first source value becomes the default; the rest become additional mappings.
func SplitStatusMappings(mappings schema.StatusMappings) (map[schema.InternalStatus]string, []AdditionalMapping) {
	sources := make([]string, 0, len(mappings))
	for src := range mappings {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	defaults := make(map[schema.InternalStatus]string)
	var additional []AdditionalMapping
	for _, src := range sources {
		status := schema.InternalStatus(mappings[src])
		if _, taken := defaults[status]; !taken {
			defaults[status] = src
			continue
		}
		additional = append(additional, AdditionalMapping{Source: src, Status: status})
	}
	return defaults, additional
}

// CanProceedStatus reports whether every internal status has a source value.
func CanProceedStatus(defaults map[schema.InternalStatus]string) bool {
	for _, s := range schema.AllInternalStatuses {
		if strings.TrimSpace(defaults[s]) == "" {
			return false
		}
	}
	return true
}
