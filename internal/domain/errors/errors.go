package errors

import (
	"errors"
	"fmt"
)

var (
	// General errors
	ErrInternal      = errors.New("internal server error")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrForbidden     = errors.New("access denied")
	ErrUnauthorized  = errors.New("not authorized")

	// Credential errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password is not strong enough")
	ErrEmailExists        = errors.New("email already registered")
	ErrHashingFailure     = errors.New("password hashing failed")

	// Token errors
	ErrMissingToken = errors.New("authentication required")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired or invalid")
	ErrTokenCollision  = errors.New("session token already exists")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")
)

// ValidationError carries a field -> message map for 400 responses.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (%d invalid fields)", e.Message, len(e.Fields))
}

// NewValidationError builds a ValidationError, dropping empty messages so the
// caller can assemble the map unconditionally.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	cleaned := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != "" {
			cleaned[k] = v
		}
	}
	return &ValidationError{Message: message, Fields: cleaned}
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsUnauthorized reports whether err should surface as a 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrSessionExpired)
}

// IsConflict reports whether err should surface as a duplicate-resource error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrTokenCollision)
}

// IsNotFound reports whether err is a missing-resource error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}
