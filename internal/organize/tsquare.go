package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/submission-fix/internal/archive"
	"github.com/jonathan/submission-fix/internal/lateness"
	"github.com/jonathan/submission-fix/internal/naming"
	"github.com/jonathan/submission-fix/internal/roster"
	"github.com/jonathan/submission-fix/internal/textdump"
)

// T-Square folder names inside each student folder.
const (
	TextDir       = "Text"
	FeedbackDir   = "Feedback Attachment(s)"
	SubmissionDir = "Submission attachment(s)"
)

// TSquare is the path-based platform: every entry already sits under a
// "Last, First(<hash>)" folder.
type TSquare struct {
	// Move lifts finished student folders, and anything else left in the
	// archive's assignment folder, up one level and removes that folder.
	Move bool
	// RenderText writes a .txt rendering next to each HTML dump in Text.
	RenderText bool
}

// Name implements Platform.
func (TSquare) Name() string { return "tsquare" }

// Resolve implements Platform. Entries outside any student folder are kept
// with no student so the assignment folder itself is still created.
func (TSquare) Resolve(e archive.Entry, j *Journal) (Resolution, bool) {
	segs := strings.Split(e.Name, "/")
	at := func(i int, name string) (Resolution, bool) {
		return Resolution{
			Entry:   e,
			Student: roster.NewIdentity(name),
			Folder:  strings.Join(segs[:i+1], "/"),
		}, true
	}

	for i, seg := range segs {
		if name, ok := naming.StripHash(seg); ok {
			return at(i, name)
		}
	}

	// No hash anywhere: fall back to the fixed layout and keep the name as is.
	for i := 1; i < len(segs); i++ {
		marker := segs[i] == SubmissionDir || segs[i] == FeedbackDir ||
			(i == len(segs)-1 && segs[i] == lateness.TimestampFile)
		if marker {
			j.Log().Debug().Str("folder", segs[i-1]).Msg("student folder has no hash suffix; keeping its name")
			return at(i-1, segs[i-1])
		}
	}
	return Resolution{Entry: e}, true
}

// Arrange implements Platform.
func (t TSquare) Arrange(ctx context.Context, dest string, resolved []Resolution, j *Journal) ([]Folder, error) {
	j.Log().Info().Msg("Renaming files")

	students := make(map[string]roster.Identity)
	var raw []string
	for _, r := range resolved {
		if r.Folder == "" {
			continue
		}
		if _, ok := students[r.Folder]; !ok {
			students[r.Folder] = r.Student
			raw = append(raw, r.Folder)
		}
	}
	sort.SliceStable(raw, func(a, b int) bool {
		return students[raw[a]].Name < students[raw[b]].Name
	})

	var (
		folders    []Folder
		roots      []string
		seenRoot   = make(map[string]bool)
		warnedMove bool
	)
	for _, rel := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		student := students[rel]

		src, err := archive.Target(dest, rel)
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(filepath.Dir(src), student.Name)
		if dir != src {
			if err := replace(src, dir); err != nil {
				return nil, err
			}
		}

		if err := t.organizeStudent(student, dir, j); err != nil {
			return nil, err
		}
		folder := Folder{Student: student, Path: dir, StrayDir: filepath.Join(dir, TextDir)}

		if t.Move {
			root := filepath.Dir(dir)
			if filepath.Clean(root) == filepath.Clean(dest) {
				if !warnedMove {
					j.Warn(Warning{Kind: WarnLeftBehind, Path: dest,
						Message: "archive has no assignment folder; student folders stay where they are"})
					warnedMove = true
				}
			} else {
				target := filepath.Join(filepath.Dir(root), student.Name)
				if err := replace(dir, target); err != nil {
					return nil, err
				}
				folder.Path = target
				folder.StrayDir = filepath.Join(target, TextDir)
				if !seenRoot[root] {
					seenRoot[root] = true
					roots = append(roots, root)
				}
			}
		}
		folders = append(folders, folder)
	}

	for _, root := range roots {
		if err := liftRemaining(root, j); err != nil {
			return nil, err
		}
		if err := os.Remove(root); err != nil {
			j.Warn(Warning{Kind: WarnLeftBehind, Path: root,
				Message: fmt.Sprintf("assignment folder not removed: %v", err)})
		}
	}
	return folders, nil
}

// liftRemaining moves what is left in an assignment folder, such as its
// grades.csv, up next to the student folders. Names already taken there stay.
func liftRemaining(root string, j *Journal) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", root, err)
	}
	parent := filepath.Dir(root)
	for _, e := range entries {
		src := filepath.Join(root, e.Name())
		dst := filepath.Join(parent, e.Name())
		if exists(dst) {
			j.Warn(Warning{Kind: WarnLeftBehind, Path: src,
				Message: fmt.Sprintf("%s already exists; left in the assignment folder", dst)})
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("failed to move %s: %w", src, err)
		}
	}
	return nil
}

// organizeStudent moves stray files into Text, lifts the submission
// attachments into dir and expands any archives found there.
func (t TSquare) organizeStudent(student roster.Identity, dir string, j *Journal) error {
	text := filepath.Join(dir, TextDir)
	if err := os.MkdirAll(text, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", text, err)
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, it := range items {
		if it.IsDir() && it.Name() != FeedbackDir {
			continue
		}
		if err := replace(filepath.Join(dir, it.Name()), filepath.Join(text, it.Name())); err != nil {
			return err
		}
	}

	sub := filepath.Join(dir, SubmissionDir)
	attachments, err := os.ReadDir(sub)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to list %s: %w", sub, err)
	default:
		for _, it := range attachments {
			target := filepath.Join(dir, it.Name())
			if exists(target) {
				j.Warn(Warning{Kind: WarnCollision, Student: student.Name, Path: filepath.Join(sub, it.Name()),
					Message: fmt.Sprintf("%s already exists; attachment left in place", it.Name())})
				continue
			}
			if err := os.Rename(filepath.Join(sub, it.Name()), target); err != nil {
				return fmt.Errorf("failed to move %s: %w", it.Name(), err)
			}
		}
		if err := os.Remove(sub); err != nil {
			j.Warn(Warning{Kind: WarnLeftBehind, Student: student.Name, Path: sub,
				Message: "submission attachments folder not empty; left in place"})
		}
	}

	j.Log().Info().Str("student", student.Name).Msg("Looking for compressed files")
	if err := expand(student, dir, j); err != nil {
		return err
	}

	if t.RenderText {
		if _, err := textdump.RenderDir(text); err != nil {
			j.Warn(Warning{Kind: WarnLeftBehind, Student: student.Name, Path: text,
				Message: fmt.Sprintf("submission text not rendered: %v", err)})
		}
	}
	return nil
}

// expand extracts the archives sitting in dir, warning about unreadable ones.
func expand(student roster.Identity, dir string, j *Journal) error {
	expanded, skipped, err := archive.ExpandAll(dir)
	if err != nil {
		return err
	}
	for _, p := range expanded {
		j.Log().Debug().Str("student", student.Name).Str("archive", filepath.Base(p)).Msg("expanded")
	}
	for _, fe := range skipped {
		j.Warn(Warning{Kind: WarnCorruptArchive, Student: student.Name, Path: fe.Path, Message: fe.Error()})
	}
	return nil
}
