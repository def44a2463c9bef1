package types

import "context"

// ContactClient is the outbound interface to the ManyChat contact directory
type ContactClient interface {
	// GetContacts returns one page of the contact list, optionally filtered
	GetContacts(ctx context.Context, page int, filter string) ([]Contact, error)

	// GetContact fetches contact details, optionally with conversation history
	GetContact(ctx context.Context, contactID string, includeHistory bool) (*ContactWithHistory, error)

	// GetContactByPhone looks a contact up by phone number. A missing contact
	// is not an error: the result is (nil, nil).
	GetContactByPhone(ctx context.Context, number string) (*Contact, error)

	CreateContact(ctx context.Context, number, name string) (*Contact, error)
	UpdateContact(ctx context.Context, contactID string, update UpdateContactRequest) (*Contact, error)

	// SendMessage posts an outgoing message to a contact's thread. Transient
	// failures (503/504, network errors) are retried.
	SendMessage(ctx context.Context, contactID, message string) (*SendMessageResponse, error)

	// SendText sends to a bare phone number, without thread support
	SendText(ctx context.Context, number, text string) (*SendMessageResponse, error)
}
