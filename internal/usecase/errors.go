package usecase

import "errors"

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked indicates too many failed logins inside the lockout window.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrAccountDisabled indicates the account status bars access.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidToken indicates a missing, malformed, expired or wrong-class token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the request payload failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrCastingClosed indicates the casting no longer accepts applications.
	ErrCastingClosed = errors.New("casting is not open for applications")
	// ErrRecipientNotAllowed indicates the messaging policy rejected the recipient.
	ErrRecipientNotAllowed = errors.New("recipient not allowed")
)

// ValidationError wraps ErrValidation with a field-specific message.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
