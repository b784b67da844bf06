// Package domainerrors provides code-carrying errors shared across services.
//
// Services raise classified errors with a user-legible message; callers
// branch on the code with HasCode and serialize the message with MessageFor,
// so internals never leak to clients.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and branching.
type Code string

// CodeValidation marks caller input that failed request validation.
const CodeValidation Code = "validation"

// Error is a domain error with a classification code and a user-legible
// message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// MessageFor returns the user-legible message of a domain error, or a generic
// fallback for unclassified errors so internals never leak to clients.
func MessageFor(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "Internal server error"
}
