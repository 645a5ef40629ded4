package organize

import (
	"errors"
	"fmt"
	"os"
)

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

// resetDir empties p, creating it when missing.
func resetDir(p string) error {
	if err := os.RemoveAll(p); err != nil {
		return fmt.Errorf("failed to clear %s: %w", p, err)
	}
	if err := os.MkdirAll(p, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", p, err)
	}
	return nil
}

// replace moves src to dst, removing whatever dst held first.
func replace(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move %s: %w", src, err)
	}
	return nil
}
