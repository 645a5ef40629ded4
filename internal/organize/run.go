package organize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/submission-fix/internal/archive"
	"github.com/jonathan/submission-fix/internal/lateness"
	"github.com/jonathan/submission-fix/internal/roster"
)

// Options configures one run.
type Options struct {
	Bulk string
	// Destination is created if missing. When set and non-empty it is
	// destroyed and recreated after Confirm agrees. Empty means the working
	// directory, which is never cleared.
	Destination string
	Filter      *roster.Filter
	// Evaluator enables late-submission checks; nil skips them.
	Evaluator *lateness.Evaluator
	Confirm   Confirmer
}

// Result summarizes a finished run.
type Result struct {
	Platform    string
	Bulk        string
	Destination string
	StartedAt   time.Time
	Entries     int
	Selected    int
	Folders     []Folder
	Late        []lateness.Record
	Warnings    []Warning
}

// Students returns the canonical names of the finished folders.
func (r *Result) Students() []string {
	names := make([]string, 0, len(r.Folders))
	for _, f := range r.Folders {
		names = append(names, f.Student.Name)
	}
	return names
}

// Runner drives a Platform through a full run.
type Runner struct {
	platform Platform
	log      zerolog.Logger
}

// NewRunner returns a Runner for p.
func NewRunner(p Platform, log zerolog.Logger) *Runner {
	return &Runner{platform: p, log: log}
}

// Run reads the bulk archive, resolves and filters its entries, writes the
// selection under the destination, arranges student folders and evaluates
// lateness. Recoverable problems land in Result.Warnings; anything returned
// as an error aborts the run with whatever is already on disk left in place.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	j := NewJournal(r.log)
	res := &Result{
		Platform:  r.platform.Name(),
		Bulk:      opts.Bulk,
		StartedAt: time.Now(),
	}

	r.log.Info().Str("archive", opts.Bulk).Msg("Decompressing")
	bulk, err := archive.Read(opts.Bulk)
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk archive: %w", err)
	}
	res.Entries = len(bulk.Entries)

	var selected []Resolution
	for _, e := range bulk.Entries {
		resolved, keep := r.platform.Resolve(e, j)
		if !keep {
			continue
		}
		if opts.Filter != nil && (resolved.Student.Name == "" || !opts.Filter.Match(resolved.Student.Name)) {
			continue
		}
		selected = append(selected, resolved)
	}
	res.Selected = len(selected)

	if opts.Filter != nil && len(selected) == 0 {
		return nil, &ConfigError{Message: "no submissions in the archive match the requested students"}
	}

	dest := opts.Destination
	if dest == "" {
		dest = "."
	} else if err := PrepareDestination(dest, opts.Confirm); err != nil {
		return nil, err
	}
	res.Destination = dest

	entries := make([]archive.Entry, 0, len(selected))
	for _, s := range selected {
		entries = append(entries, s.Entry)
	}
	if err := bulk.Write(dest, entries); err != nil {
		return nil, fmt.Errorf("failed to extract bulk archive: %w", err)
	}

	folders, err := r.platform.Arrange(ctx, dest, selected, j)
	if err != nil {
		return nil, err
	}
	res.Folders = folders

	if opts.Evaluator != nil {
		res.Late = r.evaluate(opts.Evaluator, folders, j)
	}

	res.Warnings = j.Warnings()
	return res, nil
}

func (r *Runner) evaluate(ev *lateness.Evaluator, folders []Folder, j *Journal) []lateness.Record {
	var late []lateness.Record
	for _, f := range folders {
		rec, isLate, err := ev.Evaluate(f.Student, f.StrayDir)
		switch {
		case errors.Is(err, lateness.ErrNoTimestamp):
			j.Warn(Warning{Kind: WarnNoTimestamp, Student: f.Student.Name, Path: f.StrayDir,
				Message: "no timestamp.txt; lateness not checked"})
			continue
		case err != nil:
			j.Warn(Warning{Kind: WarnBadTimestamp, Student: f.Student.Name, Path: f.StrayDir,
				Message: err.Error()})
			continue
		}
		if isLate {
			late = append(late, rec)
		}
	}
	return late
}
