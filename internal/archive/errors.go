// Package archive reads zip and tar containers and writes their entries to disk.
package archive

import "fmt"

// FormatError reports a container that could not be decoded as the format its
// name implies. Nested archives failing this way are skipped, not fatal.
type FormatError struct {
	Path   string
	Format string
	Cause  error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot read %s as %s: %v", e.Path, e.Format, e.Cause)
	}
	return fmt.Sprintf("cannot read %s as %s", e.Path, e.Format)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// UnsafePathError reports an entry whose name would land outside the destination.
type UnsafePathError struct {
	Entry string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("unsafe archive entry path: %q", e.Entry)
}
