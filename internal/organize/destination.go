package organize

import (
	"errors"
	"fmt"
	"os"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

var (
	// AlwaysConfirm answers yes without asking.
	AlwaysConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return true, nil })
	// NeverConfirm answers no without asking.
	NeverConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return false, nil })
)

// PrepareDestination makes path ready to receive a run. A missing path is
// created. An existing non-empty path is destroyed and recreated only after
// confirm agrees; a refusal returns ErrDeclined with nothing touched.
func PrepareDestination(path string, confirm Confirmer) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return &DestinationError{Path: path, Message: "failed to create", Cause: err}
		}
		return nil
	}
	if err != nil {
		return &DestinationError{Path: path, Message: "failed to inspect", Cause: err}
	}
	if !info.IsDir() {
		return &DestinationError{Path: path, Message: "exists and is not a directory"}
	}

	items, err := os.ReadDir(path)
	if err != nil {
		return &DestinationError{Path: path, Message: "failed to list", Cause: err}
	}
	if len(items) == 0 {
		return nil
	}

	if confirm == nil {
		confirm = NeverConfirm
	}
	ok, err := confirm.Confirm(fmt.Sprintf("%s already exists and is not empty. Overwrite it?", path))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeclined, err)
	}
	if !ok {
		return ErrDeclined
	}

	if err := os.RemoveAll(path); err != nil {
		return &DestinationError{Path: path, Message: "failed to remove", Cause: err}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &DestinationError{Path: path, Message: "failed to recreate", Cause: err}
	}
	return nil
}
