// Package organize turns a bulk submission archive into one folder per student.
package organize

import (
	"context"

	"github.com/jonathan/submission-fix/internal/archive"
	"github.com/jonathan/submission-fix/internal/roster"
)

// Resolution ties a bulk archive entry to the student who submitted it.
type Resolution struct {
	Entry   archive.Entry
	Student roster.Identity // zero when the entry belongs to no student
	// Folder is the raw slash-separated student folder the entry sits in
	// (path-based platforms only).
	Folder string
	// File is the canonical file name (roster-based platforms only).
	File string
	// MarkedLate is set when the platform itself flagged the file late.
	MarkedLate bool
}

// Folder is one finished student directory.
type Folder struct {
	Student    roster.Identity
	Path       string
	StrayDir   string // where timestamp.txt and other non-graded files live
	MarkedLate bool
}

// Platform is what a learning-management system has to supply: how to read
// its entry names and how to lay extracted entries out as student folders.
type Platform interface {
	Name() string
	// Resolve maps an entry to its student. Returning false drops the entry
	// from the run.
	Resolve(entry archive.Entry, j *Journal) (Resolution, bool)
	// Arrange reshapes the written entries under dest and returns the student
	// folders in directory-listing order.
	Arrange(ctx context.Context, dest string, resolved []Resolution, j *Journal) ([]Folder, error)
}
