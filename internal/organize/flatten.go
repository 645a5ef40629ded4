package organize

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FlattenDepth is how much subdirectory nesting to collapse inside a
// student folder.
type FlattenDepth int

const (
	FlattenNone FlattenDepth = iota
	FlattenOne
	FlattenAll
)

// ParseFlattenDepth accepts "", "none", "0", "1", "one" and "all".
func ParseFlattenDepth(s string) (FlattenDepth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return FlattenNone, nil
	case "1", "one":
		return FlattenOne, nil
	case "all":
		return FlattenAll, nil
	}
	return FlattenNone, &ConfigError{Message: fmt.Sprintf("unknown flatten depth %q (want 1 or all)", s)}
}

func (d FlattenDepth) String() string {
	switch d {
	case FlattenOne:
		return "one"
	case FlattenAll:
		return "all"
	default:
		return "none"
	}
}

// Flatten collapses the subdirectories of dir. FlattenOne lifts their
// children one level; FlattenAll moves every file straight into dir. Name
// clashes overwrite: the last file moved wins.
func Flatten(dir string, depth FlattenDepth) error {
	if depth == FlattenNone {
		return nil
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}

	// Park every subdirectory under a scratch name first so lifted children
	// can reuse the original names.
	var parked []string
	for i, it := range items {
		if !it.IsDir() {
			continue
		}
		tmp := filepath.Join(dir, fmt.Sprintf(".flatten-%d-%s", i, it.Name()))
		if err := os.Rename(filepath.Join(dir, it.Name()), tmp); err != nil {
			return fmt.Errorf("failed to move %s: %w", it.Name(), err)
		}
		parked = append(parked, tmp)
	}

	for _, tmp := range parked {
		var err error
		if depth == FlattenOne {
			err = liftChildren(tmp, dir)
		} else {
			err = liftFiles(tmp, dir)
		}
		if err != nil {
			return err
		}
		if err := os.RemoveAll(tmp); err != nil {
			return fmt.Errorf("failed to remove %s: %w", tmp, err)
		}
	}
	return nil
}

func liftChildren(from, to string) error {
	children, err := os.ReadDir(from)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", from, err)
	}
	for _, c := range children {
		if err := replace(filepath.Join(from, c.Name()), filepath.Join(to, c.Name())); err != nil {
			return err
		}
	}
	return nil
}

func liftFiles(from, to string) error {
	return filepath.WalkDir(from, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return replace(p, filepath.Join(to, d.Name()))
	})
}
