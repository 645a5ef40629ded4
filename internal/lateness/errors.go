package lateness

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTimestamp means the student folder holds no timestamp artifact.
	ErrNoTimestamp = errors.New("no timestamp.txt found")
	// ErrNoTimezone means lateness cannot be evaluated without zone data.
	ErrNoTimezone = errors.New("time zone data unavailable")
)

// TimestampError represents a timestamp artifact that could not be parsed
type TimestampError struct {
	Path  string
	Value string
	Cause error
}

func (e *TimestampError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid timestamp %q in %s: %v", e.Value, e.Path, e.Cause)
	}
	return fmt.Sprintf("invalid timestamp %q in %s", e.Value, e.Path)
}

func (e *TimestampError) Unwrap() error {
	return e.Cause
}
