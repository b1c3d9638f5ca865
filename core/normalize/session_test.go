package normalize

import (
	"testing"

	"github.com/huangsam/sprintboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionInput = "タイトル\tステータス\tイテレーション\tポイント\t担当者\n" +
	"Login\t完了\t1\t3\tAlice, Bob\n" +
	"Logout\ttodo\t1\tabc\tBob\n"

func TestSessionLoadConfirm(t *testing.T) {
	s := NewSession(schema.Settings{})
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, schema.SessionIdle, s.State())

	summary, err := s.Load(sessionInput)
	require.NoError(t, err)
	assert.Equal(t, schema.SessionParsed, summary.State)
	assert.Equal(t, "タイトル", summary.Mapping[schema.FieldTitle])
	require.Len(t, summary.Result.Features, 1)
	assert.Equal(t, "Alice", summary.Result.Features[0].Assignee)
	assert.Len(t, summary.Result.Warnings, 1)
	require.Len(t, summary.Result.BadRows, 1)

	prior := schema.State{Features: []schema.Feature{{ID: "old", Title: "Old"}}}
	next, err := s.Confirm(prior)
	require.NoError(t, err)
	assert.Equal(t, schema.SessionConfirmed, s.State())
	require.Len(t, next.Features, 1)
	assert.Equal(t, "Login", next.Features[0].Title)
	assert.Equal(t, "タイトル", next.Settings.HeaderMapping[schema.FieldTitle])
	assert.Equal(t, "Old", prior.Features[0].Title)

	_, err = s.Confirm(prior)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSessionResubmit(t *testing.T) {
	s := NewSession(schema.Settings{})
	_, err := s.Load(sessionInput)
	require.NoError(t, err)

	rowErr, err := s.Resubmit(3, "Logout\tBE\tstill bad")
	require.NoError(t, err)
	require.NotNil(t, rowErr)
	assert.Len(t, s.Summary().Result.BadRows, 1)

	rowErr, err = s.Resubmit(3, "Logout\tBE\t2\t\t\t1\t完了\tBob")
	require.NoError(t, err)
	assert.Nil(t, rowErr)
	summary := s.Summary()
	assert.Len(t, summary.Result.Features, 2)
	assert.Empty(t, summary.Result.BadRows)
	assert.Empty(t, summary.Result.Errors)

	_, err = s.Resubmit(3, "x")
	assert.ErrorIs(t, err, ErrUnknownBadRow)
}

func TestSessionResubmitKeepsEarlierSummary(t *testing.T) {
	input := "Title\tStatus\tIteration\tポイント\n" +
		"\tdone\t1\t2\n" +
		"Logout\tdone\t1\tabc\n" +
		"Login\tdone\t1\t3\n"
	s := NewSession(schema.Settings{})
	loaded, err := s.Load(input)
	require.NoError(t, err)
	require.Len(t, loaded.Result.Errors, 2)
	require.Len(t, loaded.Result.BadRows, 2)

	rowErr, err := s.Resubmit(2, "Signup\t\t2\t\t\t1\tdone\t")
	require.NoError(t, err)
	require.Nil(t, rowErr)

	assert.Equal(t, 2, loaded.Result.Errors[0].Row)
	assert.Equal(t, 3, loaded.Result.Errors[1].Row)
	assert.Equal(t, 2, loaded.Result.BadRows[0].Row)
	assert.Equal(t, 3, loaded.Result.BadRows[1].Row)
	assert.Len(t, loaded.Result.Features, 1)

	current := s.Summary().Result
	require.Len(t, current.Errors, 1)
	assert.Equal(t, 3, current.Errors[0].Row)
	require.Len(t, current.BadRows, 1)
	assert.Equal(t, 3, current.BadRows[0].Row)
	assert.Len(t, current.Features, 2)
}

func TestSessionAllRowsInvalid(t *testing.T) {
	s := NewSession(schema.Settings{})
	summary, err := s.Load("Title\tStatus\tIteration\n\tdone\t1\n")
	require.NoError(t, err)
	assert.Equal(t, AllRowsInvalid, summary.Message)
	assert.Empty(t, summary.Result.Features)
}

func TestSessionLoadFailures(t *testing.T) {
	s := NewSession(schema.Settings{})
	_, err := s.Load("")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = s.Load("Name\tState\nA\tdone\n")
	assert.ErrorIs(t, err, ErrMappingIncomplete)
	assert.Equal(t, schema.SessionIdle, s.State())
}

func TestSessionSettingsMappingWins(t *testing.T) {
	settings := schema.Settings{HeaderMapping: schema.HeaderMapping{schema.FieldTitle: "Name"}}
	s := NewSession(settings)
	summary, err := s.Load("Name\tTitle\tStatus\tIteration\nA\tB\tdone\t1\n")
	require.NoError(t, err)
	require.Len(t, summary.Result.Features, 1)
	assert.Equal(t, "A", summary.Result.Features[0].Title)
}

func TestSessionAbort(t *testing.T) {
	s := NewSession(schema.Settings{})
	assert.ErrorIs(t, s.Abort(), ErrInvalidTransition)

	_, err := s.Load(sessionInput)
	require.NoError(t, err)
	require.NoError(t, s.Abort())
	assert.Equal(t, schema.SessionAborted, s.State())
	assert.Empty(t, s.Summary().Result.Features)

	_, err = s.Load(sessionInput)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExtractMembers(t *testing.T) {
	features := []schema.Feature{
		{Title: "a", Assignee: "Alice", Category: "BE"},
		{Title: "b", Assignee: "Bob", Category: "テスト"},
		{Title: "c", Assignee: "Alice", Category: "BE"},
		{Title: "d", Assignee: "Carol"},
		{Title: "e"},
	}
	existing := []schema.Member{{Name: "Carol", Role: schema.RoleBE, PlannedVelocity: 4}}

	members := ExtractMembers(features, existing)

	require.Len(t, members, 3)
	assert.Equal(t, schema.Member{Name: "Carol", Role: schema.RoleBE, PlannedVelocity: 4}, members[0])
	assert.Equal(t, schema.Member{Name: "Alice", Role: schema.RoleBE}, members[1])
	assert.Equal(t, schema.Member{Name: "Bob", Role: schema.RoleTest}, members[2])
}

func TestExtractMembersCoAssignees(t *testing.T) {
	features := []schema.Feature{
		{Title: "a", Assignee: "Alice", CoAssignees: []string{"Bob", " Dave "}, Category: "BE"},
		{Title: "b", Assignee: "Carol", CoAssignees: []string{"Alice"}, Category: "FE"},
	}

	members := ExtractMembers(features, nil)

	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"Alice", "Bob", "Dave", "Carol"}, names)
	assert.Equal(t, schema.RoleBE, members[1].Role)
	assert.Equal(t, schema.RoleFE, members[3].Role)
}
