// Package lateness classifies submissions against a due date using the
// timestamp artifact the platform leaves in each student folder.
package lateness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/submission-fix/internal/roster"
)

const (
	// DefaultZone is the civil zone due dates and reported times are expressed in.
	DefaultZone = "America/New_York"
	// TimestampFile is the per-student artifact holding the submission instant.
	TimestampFile = "timestamp.txt"

	timestampLayout = "20060102150405"
	dueLayout       = "1/2/06 15:04"
	localLayout     = "01/02/06 15:04:05 MST"
)

// Record is a late submission.
type Record struct {
	Student     roster.Identity
	SubmittedAt time.Time // in the evaluator's zone
	Local       string
}

// LoadZone loads the reference zone. A nil location with an error means the
// runtime has no zone database and lateness checking must be disabled.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoTimezone, name, err)
	}
	return loc, nil
}

// ParseDue parses "mm/dd/yy hh:mm" as a civil time in loc. The date and the
// clock may also be separated by several spaces.
func ParseDue(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		return time.Time{}, ErrNoTimezone
	}
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return time.Time{}, fmt.Errorf("due date %q must look like mm/dd/yy hh:mm", value)
	}
	due, err := time.ParseInLocation(dueLayout, fields[0]+" "+fields[1], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: %w", value, err)
	}
	return due, nil
}

// Evaluator compares submission timestamps against one due date.
type Evaluator struct {
	due time.Time
	loc *time.Location
}

// New returns an Evaluator for due, expressed in loc. loc is the explicit
// time-zone capability: nil disables evaluation.
func New(due time.Time, loc *time.Location) (*Evaluator, error) {
	if loc == nil {
		return nil, ErrNoTimezone
	}
	return &Evaluator{due: due.In(loc), loc: loc}, nil
}

// Due returns the due date in the evaluator's zone.
func (e *Evaluator) Due() time.Time {
	return e.due
}

// ParseTimestamp reads the first 14 characters of value as a UTC
// YYYYMMDDHHMMSS instant; trailing digits are ignored.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) < len(timestampLayout) {
		return time.Time{}, fmt.Errorf("expected at least %d digits", len(timestampLayout))
	}
	return time.ParseInLocation(timestampLayout, value[:len(timestampLayout)], time.UTC)
}

// IsLate reports whether submitted is strictly after the due date.
func (e *Evaluator) IsLate(submitted time.Time) bool {
	return submitted.After(e.due)
}

// Evaluate reads timestamp.txt from strayDir. It returns the record and true
// when the submission is late, ErrNoTimestamp when the artifact is missing.
func (e *Evaluator) Evaluate(student roster.Identity, strayDir string) (Record, bool, error) {
	p := filepath.Join(strayDir, TimestampFile)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, ErrNoTimestamp
		}
		return Record{}, false, fmt.Errorf("failed to read %s: %w", p, err)
	}

	submitted, err := ParseTimestamp(string(data))
	if err != nil {
		return Record{}, false, &TimestampError{Path: p, Value: strings.TrimSpace(string(data)), Cause: err}
	}
	local := submitted.In(e.loc)

	if !e.IsLate(local) {
		return Record{}, false, nil
	}
	return Record{
		Student:     student,
		SubmittedAt: local,
		Local:       local.Format(localLayout),
	}, true, nil
}
