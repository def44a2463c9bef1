package models

import (
	"encoding/json"
	"testing"
	"time"

	"leadbridge/pkg/manychat/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadStatusValid(t *testing.T) {
	valid := []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}

	assert.False(t, LeadStatus("proposal").Valid())
	assert.False(t, LeadStatus("").Valid())
	assert.False(t, LeadStatus("NEW").Valid())
}

func TestPipelineStatusValid(t *testing.T) {
	valid := []PipelineStatus{
		PipelineStatusNew, PipelineStatusContacted, PipelineStatusQualified,
		PipelineStatusProposal, PipelineStatusNegotiation, PipelineStatusClosed, PipelineStatusLost,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}

	// "converted" belongs to the CRM domain, not the pipeline domain
	assert.False(t, PipelineStatus("converted").Valid())
	assert.False(t, PipelineStatus("").Valid())
}

func TestNoteListUnmarshalArray(t *testing.T) {
	data := `[{"text":"called twice","createdAt":"2026-01-15T10:00:00Z","createdBy":{"id":"u1","name":"Ana"}}]`

	var nl NoteList
	err := json.Unmarshal([]byte(data), &nl)
	require.NoError(t, err)

	require.Len(t, nl, 1)
	assert.Equal(t, "called twice", nl[0].Text)
	assert.Equal(t, "u1", nl[0].CreatedBy.ID)
	assert.False(t, nl[0].CreatedAt.IsZero())
}

func TestNoteListUnmarshalLegacyString(t *testing.T) {
	var nl NoteList
	err := json.Unmarshal([]byte(`"prefers WhatsApp"`), &nl)
	require.NoError(t, err)

	require.Len(t, nl, 1)
	assert.Equal(t, "prefers WhatsApp", nl[0].Text)
	assert.Equal(t, SystemAuthor, nl[0].CreatedBy)
	assert.True(t, nl[0].CreatedAt.IsZero(), "legacy note timestamp is stamped on next append, not on read")
}

func TestNoteListUnmarshalEmptyLegacyString(t *testing.T) {
	var nl NoteList
	err := json.Unmarshal([]byte(`""`), &nl)
	require.NoError(t, err)
	assert.Empty(t, nl)
}

func TestNoteListUnmarshalInvalid(t *testing.T) {
	var nl NoteList
	err := json.Unmarshal([]byte(`{"text":"not a list"}`), &nl)
	assert.Error(t, err)
}

func TestParseNotes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected NoteList
	}{
		{
			name:     "empty column",
			raw:      "",
			expected: nil,
		},
		{
			name: "json array",
			raw:  `[{"text":"hello","createdBy":{"id":"u1","name":"Ana"}}]`,
			expected: NoteList{
				{Text: "hello", CreatedBy: NoteAuthor{ID: "u1", Name: "Ana"}},
			},
		},
		{
			name: "json string",
			raw:  `"legacy note"`,
			expected: NoteList{
				{Text: "legacy note", CreatedBy: SystemAuthor},
			},
		},
		{
			name: "bare legacy string",
			raw:  "wants a callback on Monday",
			expected: NoteList{
				{Text: "wants a callback on Monday", CreatedBy: SystemAuthor},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNotes(tt.raw))
		})
	}
}

func TestNoteListAppendStampsLegacyNote(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	nl := ParseNotes("old free text note")

	out := nl.Append(Note{Text: "new note", CreatedAt: now, CreatedBy: NoteAuthor{ID: "u2", Name: "Bo"}}, now)

	require.Len(t, out, 2)
	assert.Equal(t, "old free text note", out[0].Text)
	assert.Equal(t, now, out[0].CreatedAt, "legacy note gets stamped when the list is next written")
	assert.Equal(t, "new note", out[1].Text)
}

func TestNoteListAppendPreservesExistingTimestamps(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	nl := NoteList{{Text: "first", CreatedAt: earlier, CreatedBy: SystemAuthor}}
	out := nl.Append(Note{Text: "second", CreatedAt: now, CreatedBy: SystemAuthor}, now)

	require.Len(t, out, 2)
	assert.Equal(t, earlier, out[0].CreatedAt)
}

func TestApplyContactLeavesLifecycleFieldsAlone(t *testing.T) {
	converted := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	lead := &Lead{
		ID:     "lead-1",
		Name:   "Old Name",
		Status: LeadStatusQualified,
		StatusHistory: []StatusEntry{
			{Status: LeadStatusContacted, ChangedAt: converted},
		},
		Notes:               NoteList{{Text: "keep me", CreatedBy: SystemAuthor}},
		Hidden:              true,
		ConvertedToCustomer: true,
		ConvertedAt:         &converted,
	}

	lead.ApplyContact(&types.Contact{
		ID:    "mc-9",
		Name:  "New Name",
		Phone: "+15551234567",
		Email: "new@example.com",
		Tags:  []string{"vip"},
	})

	assert.Equal(t, "mc-9", lead.ManyChatID)
	assert.Equal(t, "New Name", lead.Name)
	assert.Equal(t, "+15551234567", lead.Number)
	assert.Equal(t, []string{"vip"}, lead.Tags)

	assert.Equal(t, LeadStatusQualified, lead.Status)
	assert.Len(t, lead.StatusHistory, 1)
	assert.Len(t, lead.Notes, 1)
	assert.True(t, lead.Hidden)
	assert.True(t, lead.ConvertedToCustomer)
}

func TestNewLeadFromContact(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lead := NewLeadFromContact(&types.Contact{ID: "mc-1", Name: "Fresh", Phone: "+15550001111"}, now)

	assert.Equal(t, LeadStatusNew, lead.Status)
	assert.Equal(t, LeadSourceManyChat, lead.Source)
	assert.Equal(t, "mc-1", lead.ManyChatID)
	assert.Equal(t, now, lead.LastSync)
	assert.NotNil(t, lead.StatusHistory)
	assert.Empty(t, lead.StatusHistory)
	assert.False(t, lead.Hidden)
	assert.False(t, lead.LocallyModified)
}
