package types

import "time"

// Contact represents a contact in the ManyChat directory
type Contact struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Phone        string                 `json:"phone"`
	Email        string                 `json:"email,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
	Subscribed   bool                   `json:"subscribed"`
	LastSeenAt   *time.Time             `json:"last_seen_at,omitempty"`
}

// Message is a single message in a contact's conversation history
type Message struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Type   string    `json:"type"` // "incoming" or "outgoing"
	SentAt time.Time `json:"sent_at"`
}

// ContactWithHistory is a contact with its embedded conversation history
type ContactWithHistory struct {
	Contact
	Messages []Message `json:"messages,omitempty"`
}

// ContactsResponse represents the response of the contact list endpoint
type ContactsResponse struct {
	Contacts []Contact `json:"contacts"`
	Page     int       `json:"page"`
	HasMore  bool      `json:"has_more"`
}

// CreateContactRequest is the body of POST /contact
type CreateContactRequest struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// UpdateContactRequest carries partial contact fields for PUT /contact/{id}.
// Nil pointers mean "leave unchanged".
type UpdateContactRequest struct {
	Name   *string  `json:"name,omitempty"`
	Number *string  `json:"number,omitempty"`
	Email  *string  `json:"email,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// SendMessageRequest is the body of POST /contact/{id}/messages
type SendMessageRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SendTextRequest is the body of POST /message/text, the alternate send path
// used when only a phone number is available
type SendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendMessageResponse represents the result of a message send
type SendMessageResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse represents error bodies returned by the ManyChat API
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}
