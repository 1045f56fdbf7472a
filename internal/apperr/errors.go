// Package apperr holds the error taxonomy shared by the chat subsystem.
// Every failure is scoped to the request or connection that caused it.
package apperr

import (
	"errors"
	"fmt"
)

// AuthenticationError is returned when a credential is missing, malformed,
// expired, carries a bad signature, or names an unknown or inactive user.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication error: %s: %v", e.Reason, e.Err)
	}
	return "authentication error: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ValidationError is returned for input rejected before any persistence.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// PersistenceError wraps a failure of the durable store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Authentication(reason string, err error) error {
	return &AuthenticationError{Reason: reason, Err: err}
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
