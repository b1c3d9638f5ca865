package mapping

import (
	"testing"

	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
)

func TestMapStatus(t *testing.T) {
	mappings := schema.StatusMappings{
		"Closed":  "完了",
		"WIP":     "作業中",
		"dropped": "破棄",
		"blank":   "",
	}

	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Closed", "完了"},
		{" closed ", "完了"},
		{"wip", "作業中"},
		{"DROPPED", "破棄"},
		{"Done", "完了"},
		{"完了済み", "完了"},
		{"in pr", "プルリク中"},
		{"IN_PR", "プルリク中"},
		{"PR", "プルリク中"},
		{"blank", "blank"},
		{" Review ", "Review"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStatus(tt.raw, mappings))
		})
	}

	assert.Equal(t, "完了", MapStatus("done", nil))
	assert.Equal(t, "Todo", MapStatus("Todo", nil))
}

func TestIsDone(t *testing.T) {
	pr := schema.Feature{Title: "x", Status: "プルリク中"}
	done := schema.Feature{Title: "x", Status: "完了"}
	review := schema.Feature{Title: "x", Status: "PR中"}
	todo := schema.Feature{Title: "x", Status: "未対応"}

	settings := schema.Settings{}
	assert.False(t, IsDone(pr, settings))
	assert.True(t, IsDone(done, settings))
	assert.False(t, IsDone(review, settings))
	assert.False(t, IsDone(todo, settings))

	settings.IncludePRInDone = true
	assert.True(t, IsDone(pr, settings))
	assert.True(t, IsDone(review, settings))
	assert.False(t, IsDone(todo, settings))

	mapped := schema.Feature{Title: "x", Status: "Shipped"}
	settings.StatusMappings = schema.StatusMappings{"Shipped": "完了"}
	assert.True(t, IsDone(mapped, settings))
}

func TestIsDiscarded(t *testing.T) {
	settings := schema.Settings{StatusMappings: schema.StatusMappings{"cancelled": "破棄"}}
	assert.True(t, IsDiscarded(schema.Feature{Status: "Cancelled"}, settings))
	assert.True(t, IsDiscarded(schema.Feature{Status: "破棄"}, settings))
	assert.False(t, IsDiscarded(schema.Feature{Status: "完了"}, settings))
}

func TestBuildStatusMappings(t *testing.T) {
	defaults := map[schema.InternalStatus]string{
		schema.StatusTodo:       "Open",
		schema.StatusInProgress: "Doing",
		schema.StatusInReview:   "Review",
		schema.StatusDone:       "Closed",
		schema.StatusDiscarded:  "Won't do",
	}
	additional := []AdditionalMapping{
		{Source: "Resolved", Status: schema.StatusDone},
		{Source: "Doing", Status: schema.StatusInReview},
		{Source: " ", Status: schema.StatusDone},
	}

	got := BuildStatusMappings(defaults, additional)
	assert.Equal(t, schema.StatusMappings{
		"Open":     "未対応",
		"Doing":    "PR中",
		"Review":   "PR中",
		"Closed":   "完了",
		"Won't do": "破棄",
		"Resolved": "完了",
	}, got)
	assert.True(t, CanProceedStatus(defaults))

	delete(defaults, schema.StatusDiscarded)
	assert.False(t, CanProceedStatus(defaults))
	assert.True(t, CanProceedStatus(DefaultStatusSources()))
}

func TestSplitStatusMappings(t *testing.T) {
	mappings := schema.StatusMappings{
		"Closed":   "完了",
		"Resolved": "完了",
		"Open":     "未対応",
	}
	defaults, additional := SplitStatusMappings(mappings)
	assert.Equal(t, "Closed", defaults[schema.StatusDone])
	assert.Equal(t, "Open", defaults[schema.StatusTodo])
	assert.Equal(t, []AdditionalMapping{{Source: "Resolved", Status: schema.StatusDone}}, additional)
	assert.Equal(t, mappings, BuildStatusMappings(defaults, additional))
}
