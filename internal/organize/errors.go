package organize

import (
	"errors"
	"fmt"
)

// ErrDeclined means the operator refused to overwrite the destination.
var ErrDeclined = errors.New("overwrite declined; nothing was written")

// ConfigError represents a run that cannot proceed as configured
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// DestinationError represents a destination directory that could not be prepared
type DestinationError struct {
	Path    string
	Message string
	Cause   error
}

func (e *DestinationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("destination %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("destination %s: %s", e.Path, e.Message)
}

func (e *DestinationError) Unwrap() error {
	return e.Cause
}
