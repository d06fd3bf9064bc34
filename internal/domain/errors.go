package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFile is returned for inputs with an extension the inspector does not read
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrMalformedXML is returned when a log fragment is not well-formed XML
	ErrMalformedXML = errors.New("malformed log XML")

	// ErrContainerUnreadable is returned when an archive cannot be opened
	ErrContainerUnreadable = errors.New("container unreadable")

	// ErrPrimaryLogMissing is returned when an archive has no primary log entry
	ErrPrimaryLogMissing = errors.New("primary log entry not found in container")

	// ErrRead is returned when input bytes cannot be read
	ErrRead = errors.New("read failed")

	// ErrInvalidRange is returned for a date range outside the log bounds or reversed
	ErrInvalidRange = errors.New("invalid date range")
)

// ValidationError represents a rejected user input with instructions
type ValidationError struct {
	Field        string   `json:"field"`
	Message      string   `json:"message"`
	Instructions []string `json:"instructions,omitempty"`
	Err          error    `json:"-"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
