// Package service implements the job lifecycle operations behind the HTTP
// handlers and the outcome consumer.
package service

import "fmt"

// ValidationError marks a malformed request. Handlers translate it to a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
