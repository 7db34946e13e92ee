// Package storage defines the persistence contract for event records.
//
// A backend stores one flat list of events. Saving replaces the whole list;
// grouped operations are expressed with the helpers in this package on top of
// Load and Save.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyp0633/recurcal/recurrence"
)

// Storage connects the event manager with your backend storage. Please use the error types provided.
type Storage interface {
	// Load returns every stored event. An empty backend returns an empty list, not an error.
	Load(ctx context.Context) ([]recurrence.Event, error)
	// Save replaces the stored list with events.
	Save(ctx context.Context, events []recurrence.Event) error
}

// ErrorType classifies storage errors
type ErrorType string

const (
	ErrNotFound     ErrorType = "not_found"
	ErrInvalidInput ErrorType = "invalid_input"
	ErrUnavailable  ErrorType = "unavailable"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsType reports whether err is a storage *Error of type t anywhere in its chain
func IsType(err error, t ErrorType) bool {
	var serr *Error
	return errors.As(err, &serr) && serr.Type == t
}

// NotFound builds an ErrNotFound error
func NotFound(format string, args ...any) *Error {
	return &Error{Type: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}
