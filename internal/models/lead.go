package models

import (
	"encoding/json"
	"fmt"
	"time"

	"leadbridge/pkg/manychat/types"
)

// LeadStatus is the status domain for CRM leads handled by the repository and
// the reconciliation job.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// Valid reports whether s is one of the CRM lead statuses
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

// PipelineStatus is the status domain used by the manual lead-creation form.
// It is deliberately distinct from LeadStatus: the two enumerations share
// names but not value sets, and downstream consumers branch on disjoint sets.
type PipelineStatus string

const (
	PipelineStatusNew         PipelineStatus = "new"
	PipelineStatusContacted   PipelineStatus = "contacted"
	PipelineStatusQualified   PipelineStatus = "qualified"
	PipelineStatusProposal    PipelineStatus = "proposal"
	PipelineStatusNegotiation PipelineStatus = "negotiation"
	PipelineStatusClosed      PipelineStatus = "closed"
	PipelineStatusLost        PipelineStatus = "lost"
)

// Valid reports whether s is one of the pipeline statuses
func (s PipelineStatus) Valid() bool {
	switch s {
	case PipelineStatusNew, PipelineStatusContacted, PipelineStatusQualified,
		PipelineStatusProposal, PipelineStatusNegotiation, PipelineStatusClosed, PipelineStatusLost:
		return true
	}
	return false
}

// LeadSource identifies how a lead entered the system
type LeadSource string

const (
	LeadSourceManual   LeadSource = "manual"
	LeadSourceManyChat LeadSource = "manychat"
)

// StatusEntry is one element of a lead's append-only status history.
// Insertion order is chronological order; entries are never removed.
type StatusEntry struct {
	Status    LeadStatus `json:"status"`
	ChangedAt time.Time  `json:"changedAt"`
}

// NoteAuthor identifies who wrote a note
type NoteAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SystemAuthor is used for notes synthesized from the legacy free-text field
var SystemAuthor = NoteAuthor{ID: "system", Name: "System"}

// Note is a single timestamped lead note
type Note struct {
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy NoteAuthor `json:"createdBy"`
}

// NoteList is the normalized form of a lead's notes. Older records stored the
// field as a single free-text string; UnmarshalJSON accepts both shapes so the
// ambiguity is resolved once at the boundary instead of at every call site.
type NoteList []Note

func (nl *NoteList) UnmarshalJSON(data []byte) error {
	var notes []Note
	if err := json.Unmarshal(data, &notes); err == nil {
		*nl = notes
		return nil
	}

	var legacy string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("notes must be a string or a list of notes")
	}
	if legacy == "" {
		*nl = nil
		return nil
	}

	// CreatedAt is stamped when the next note is appended
	*nl = NoteList{{Text: legacy, CreatedBy: SystemAuthor}}
	return nil
}

// ParseNotes decodes a raw notes column value into a NoteList. The raw value
// may be a JSON array, a JSON string, a bare legacy string, or empty.
func ParseNotes(raw string) NoteList {
	if raw == "" {
		return nil
	}

	var nl NoteList
	if err := json.Unmarshal([]byte(raw), &nl); err == nil {
		return nl
	}

	return NoteList{{Text: raw, CreatedBy: SystemAuthor}}
}

// Append adds a note, synthesizing a timestamp for a legacy first note that
// has not been stamped yet
func (nl NoteList) Append(note Note, now time.Time) NoteList {
	out := make(NoteList, 0, len(nl)+1)
	for _, n := range nl {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		out = append(out, n)
	}
	return append(out, note)
}

// Lead represents a prospective contact captured manually or imported from
// the ManyChat contact directory
type Lead struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Number              string                 `json:"number,omitempty"`
	Email               string                 `json:"email,omitempty"`
	Tags                []string               `json:"tags,omitempty"`
	CustomFields        map[string]interface{} `json:"customFields,omitempty"`
	Status              LeadStatus             `json:"status"`
	PipelineStatus      PipelineStatus         `json:"pipelineStatus,omitempty"`
	StatusHistory       []StatusEntry          `json:"statusHistory"`
	Notes               NoteList               `json:"notes,omitempty"`
	Hidden              bool                   `json:"hidden"`
	ConvertedToCustomer bool                   `json:"convertedToCustomer"`
	ConvertedAt         *time.Time             `json:"convertedAt,omitempty"`
	FirstContactedAt    *time.Time             `json:"firstContactedAt,omitempty"`
	ManyChatID          string                 `json:"manyChatId,omitempty"`
	LastSync            time.Time              `json:"lastSync"`
	LocallyModified     bool                   `json:"locallyModified"`
	Source              LeadSource             `json:"source"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// ApplyContact overwrites the lead's synchronized fields with the values of a
// fetched ManyChat contact. Lifecycle fields (status, history, notes, flags)
// are not touched.
func (l *Lead) ApplyContact(c *types.Contact) {
	l.ManyChatID = c.ID
	l.Name = c.Name
	l.Number = c.Phone
	l.Email = c.Email
	if len(c.Tags) > 0 {
		l.Tags = c.Tags
	}
	if len(c.CustomFields) > 0 {
		l.CustomFields = c.CustomFields
	}
}

// NewLeadFromContact builds a lead for a contact imported by the
// reconciliation job
func NewLeadFromContact(c *types.Contact, now time.Time) *Lead {
	lead := &Lead{
		Status:        LeadStatusNew,
		StatusHistory: []StatusEntry{},
		Hidden:        false,
		Source:        LeadSourceManyChat,
		LastSync:      now,
	}
	lead.ApplyContact(c)
	return lead
}
