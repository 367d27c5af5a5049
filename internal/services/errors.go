// Package services defines the business logic for memories, the catalog
// import, and the poster sync. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMemoryNotFound indicates that the requested memory does not exist.
	ErrMemoryNotFound = errors.New("memory not found")

	// ErrMemoryForbidden is returned when a user attempts to read or mutate a
	// memory that belongs to a different user. It deliberately carries no
	// information about the actual owner.
	ErrMemoryForbidden = errors.New("memory belongs to another user")

	// ErrMovieNotFound indicates that the requested catalog entry does not
	// exist locally.
	ErrMovieNotFound = errors.New("movie not found")
)

// ValidationError reports one or more input fields that violate their
// declared constraints. It is returned before any mutation happens, so a
// failed call never leaves a partial write behind.
type ValidationError struct {
	// Fields maps a field name (wire form, e.g. "rating") to a
	// human-readable description of the violated constraint.
	Fields map[string]string
}

// Error implements the error interface with a stable, sorted field list.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
