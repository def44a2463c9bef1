package models

import "time"

// Customer is a minimal customer record. Converting a lead marks the lead
// only; creating the customer record is left to the caller (see
// service.CustomerCreator).
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number,omitempty"`
	Email     string    `json:"email,omitempty"`
	LeadID    string    `json:"leadId,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
