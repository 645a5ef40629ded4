package organize

import (
	"github.com/rs/zerolog"
)

// Warning kinds for recoverable problems. Each skips one file, folder or student.
const (
	WarnUnknownPattern = "unknown_pattern"
	WarnNotOnRoster    = "not_on_roster"
	WarnCorruptArchive = "corrupt_archive"
	WarnCollision      = "collision"
	WarnNoTimestamp    = "no_timestamp"
	WarnBadTimestamp   = "bad_timestamp"
	WarnLeftBehind     = "left_behind"
)

// Warning is one recoverable problem met during a run.
type Warning struct {
	Kind    string `json:"kind"`
	Student string `json:"student,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Journal records warnings and mirrors them to the logger.
type Journal struct {
	log      zerolog.Logger
	warnings []Warning
}

// NewJournal returns a Journal writing to log.
func NewJournal(log zerolog.Logger) *Journal {
	return &Journal{log: log}
}

// Warn records w and logs it at warn level.
func (j *Journal) Warn(w Warning) {
	j.warnings = append(j.warnings, w)
	ev := j.log.Warn().Str("kind", w.Kind)
	if w.Student != "" {
		ev = ev.Str("student", w.Student)
	}
	if w.Path != "" {
		ev = ev.Str("path", w.Path)
	}
	ev.Msg(w.Message)
}

// Warnings returns everything recorded so far.
func (j *Journal) Warnings() []Warning {
	return append([]Warning(nil), j.warnings...)
}

// Log returns the journal's logger for progress messages.
func (j *Journal) Log() *zerolog.Logger {
	return &j.log
}
