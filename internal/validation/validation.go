package validation

import (
	"fmt"
	"strings"
	"unicode"

	"leadbridge/internal/constants"
	"leadbridge/internal/errors"
	"leadbridge/internal/models"
)

// ValidatePhoneNumber validates phone number format and length
func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return errors.New(errors.ErrCodeInvalidInput, "phone number cannot be empty")
	}

	cleaned := strings.TrimPrefix(phone, "+")

	if len(cleaned) < constants.MinPhoneNumberLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("phone number must be at least %d digits", constants.MinPhoneNumberLength))
	}

	if len(cleaned) > constants.MaxPhoneNumberLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("phone number too long (max %d digits)", constants.MaxPhoneNumberLength))
	}

	for _, char := range cleaned {
		if !unicode.IsDigit(char) {
			return errors.New(errors.ErrCodeInvalidInput, "phone number must contain only digits")
		}
	}

	return nil
}

// ValidateEmail performs a shallow structural check on an email address
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New(errors.ErrCodeInvalidInput, "email cannot be empty")
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return errors.New(errors.ErrCodeInvalidInput, "email must contain a local part and a domain")
	}

	if strings.ContainsAny(email, " \t\n\r") {
		return errors.New(errors.ErrCodeInvalidInput, "email must not contain whitespace")
	}

	return nil
}

// ValidateLeadName validates the lead display name
func ValidateLeadName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "lead name cannot be empty")
	}

	if len(name) > constants.MaxLeadNameLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("lead name too long (max %d characters)", constants.MaxLeadNameLength))
	}

	return nil
}

// ValidateNoteText validates a note body
func ValidateNoteText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "note text cannot be empty")
	}

	if len(text) > constants.MaxNoteTextLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("note text too long (max %d characters)", constants.MaxNoteTextLength))
	}

	return nil
}

// ValidateMessageText validates an outbound message body
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "message text cannot be empty")
	}

	if len(text) > constants.MaxMessageLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("message too long (max %d characters)", constants.MaxMessageLength))
	}

	return nil
}

// ValidateLeadStatus validates a value in the CRM lead status domain
func ValidateLeadStatus(status models.LeadStatus) error {
	if !status.Valid() {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("invalid lead status: %q", string(status)))
	}
	return nil
}

// ValidatePipelineStatus validates a value in the manual-form pipeline domain
func ValidatePipelineStatus(status models.PipelineStatus) error {
	if !status.Valid() {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("invalid pipeline status: %q", string(status)))
	}
	return nil
}

// ValidateTags validates the optional tag list
func ValidateTags(tags []string) error {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "tags cannot be empty")
		}
		if len(tag) > constants.MaxTagLength {
			return errors.New(errors.ErrCodeInvalidInput,
				fmt.Sprintf("tag too long (max %d characters)", constants.MaxTagLength))
		}
	}
	return nil
}
