package organize

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/jonathan/submission-fix/internal/archive"
	"github.com/jonathan/submission-fix/internal/naming"
	"github.com/jonathan/submission-fix/internal/roster"
)

// Canvas is the roster-based platform: entries arrive flat and the student
// is encoded in the file name.
type Canvas struct {
	Roster  *roster.Roster
	Flatten FlattenDepth
}

// Name implements Platform.
func (Canvas) Name() string { return "canvas" }

// Resolve implements Platform.
func (c Canvas) Resolve(e archive.Entry, j *Journal) (Resolution, bool) {
	if e.IsDir {
		return Resolution{}, false
	}
	base := path.Base(e.Name)

	parsed, ok := naming.ParseCanvas(base)
	if !ok {
		j.Warn(Warning{Kind: WarnUnknownPattern, Path: e.Name,
			Message: "file name matches no known submission pattern; skipped"})
		return Resolution{}, false
	}
	student, ok := c.Roster.Lookup(parsed.Squished)
	if !ok {
		j.Warn(Warning{Kind: WarnNotOnRoster, Path: e.Name,
			Message: fmt.Sprintf("%s is not on the roster; skipped", parsed.Squished)})
		return Resolution{}, false
	}

	return Resolution{
		Entry:      e,
		Student:    student,
		File:       parsed.Canonical(),
		MarkedLate: parsed.Late,
	}, true
}

// Arrange implements Platform. Files are moved in archive order; a folder
// that existed before the run is cleared the first time it is used.
func (c Canvas) Arrange(ctx context.Context, dest string, resolved []Resolution, j *Journal) ([]Folder, error) {
	j.Log().Info().Msg("Renaming files")

	touched := make(map[string]*Folder)
	for _, r := range resolved {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := filepath.Join(dest, r.Student.Name)
		folder, ok := touched[dir]
		if !ok {
			if err := resetDir(dir); err != nil {
				return nil, err
			}
			folder = &Folder{Student: r.Student, Path: dir, StrayDir: dir}
			touched[dir] = folder
		}

		src, err := archive.Target(dest, r.Entry.Name)
		if err != nil {
			return nil, err
		}
		target := filepath.Join(dir, r.File)
		if exists(target) {
			j.Warn(Warning{Kind: WarnCollision, Student: r.Student.Name, Path: src,
				Message: fmt.Sprintf("%s already exists for %s; left in place", r.File, r.Student.Name)})
			continue
		}
		if err := os.Rename(src, target); err != nil {
			return nil, fmt.Errorf("failed to move %s: %w", r.Entry.Name, err)
		}
		if r.MarkedLate {
			folder.MarkedLate = true
		}
	}

	dirs := make([]string, 0, len(touched))
	for dir := range touched {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	folders := make([]Folder, 0, len(dirs))
	j.Log().Info().Msg("Looking for compressed files")
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		folder := touched[dir]
		if err := expand(folder.Student, dir, j); err != nil {
			return nil, err
		}
		if err := Flatten(dir, c.Flatten); err != nil {
			return nil, err
		}
		folders = append(folders, *folder)
	}
	return folders, nil
}
