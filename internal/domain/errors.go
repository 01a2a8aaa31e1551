package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for contact operations.
var (
	// ErrMalformedRecord is returned when a wire record lacks a usable id.
	ErrMalformedRecord = errors.New("malformed contact record")
	// ErrNotFound is returned when an id is absent from the collection or the API.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateTagName is returned when creating a tag that is already known.
	ErrDuplicateTagName = errors.New("tag name taken")
	// ErrRemoteFailure is returned for transport errors and non-success statuses from the contacts API.
	ErrRemoteFailure = errors.New("contacts api request failed")
	// ErrValidation is returned when a submitted form has missing or malformed fields.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidSortField is returned when sorting by a field a contact does not have.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// RemoteError describes a failed call to the contacts API.
// It matches ErrRemoteFailure with errors.Is, and also ErrNotFound when the API answered 404.
type RemoteError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("contacts api %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("contacts api %s: status %d", e.Op, e.StatusCode)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemoteFailure:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// FieldError is a validation message attached to a single form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects the field errors of a rejected form. It matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Message returns the first message recorded for field, or "".
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// ByField indexes the messages by field name for templates.
func (e *ValidationError) ByField() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}
