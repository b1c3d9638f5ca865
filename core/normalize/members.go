package normalize

import (
	"strings"

	"github.com/huangsam/sprintboard/core/category"
	"github.com/huangsam/sprintboard/schema"
)

// ExtractMembers derives one member per distinct assignee or co-assignee, in first-seen order.
// Roles are inferred from the categories of every feature naming the person and planned velocity starts at 0.
// Members already in existing are kept as they are and win by name.
func ExtractMembers(features []schema.Feature, existing []schema.Member) []schema.Member {
	out := append([]schema.Member(nil), existing...)
	known := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		known[strings.TrimSpace(m.Name)] = struct{}{}
	}

	categories := make(map[string][]string)
	var order []string
	for _, f := range features {
		for _, raw := range append([]string{f.Assignee}, f.CoAssignees...) {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			if _, seen := categories[name]; !seen {
				order = append(order, name)
				categories[name] = []string{}
			}
			if f.Category != "" {
				categories[name] = append(categories[name], f.Category)
			}
		}
	}

	for _, name := range order {
		if _, ok := known[name]; ok {
			continue
		}
		out = append(out, schema.Member{
			Name:            name,
			Role:            category.InferRole(categories[name]),
			PlannedVelocity: 0,
		})
	}
	return out
}
