package entity

import (
	"errors"
	"strings"
)

var (
	// Event errors
	ErrEventNotFound          = errors.New("event not found")
	ErrSlugAlreadyTaken       = errors.New("slug already taken")
	ErrPreviousStepIncomplete = errors.New("previous step incomplete")

	// Banner errors
	ErrImageProcessing = errors.New("image processing failed")
	ErrStorage         = errors.New("storage operation failed")

	// Organizer errors
	ErrOrganizerNotFound      = errors.New("organizer not found")
	ErrOrganizerAlreadyExists = errors.New("organizer already exists")

	// Payment errors
	ErrBankVerification  = errors.New("failed to verify bank account")
	ErrPaystack          = errors.New("paystack operation failed")
	ErrRecipientCreation = errors.New("failed to create paystack recipient")

	// General errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabaseError = errors.New("database error")
	ErrUnauthorized  = errors.New("unauthorized access")
)

// ValidationError is a field-level input failure.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrInvalidInput
}

// ExternalError is a failure reported by a third-party service. Kind is one of
// the payment sentinels, Message is safe to show to the caller.
type ExternalError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *ExternalError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *ExternalError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
