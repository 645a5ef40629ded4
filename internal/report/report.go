// Package report turns a finished run into the console summary and the
// optional CSV or JSON report file.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/jonathan/submission-fix/internal/organize"
	"github.com/jonathan/submission-fix/internal/schemas"
)

// Summary is the serializable outcome of one run.
type Summary struct {
	RunID       string             `json:"run_id"`
	Platform    string             `json:"platform"`
	Bulk        string             `json:"bulk"`
	Destination string             `json:"destination"`
	StartedAt   time.Time          `json:"started_at"`
	Due         string             `json:"due,omitempty"`
	Entries     int                `json:"entries"`
	Selected    int                `json:"selected"`
	Students    []string           `json:"students"`
	MarkedLate  []string           `json:"marked_late,omitempty"`
	Late        []LateRow          `json:"late"`
	Warnings    []organize.Warning `json:"warnings"`
}

// LateRow is one late submission, also the CSV row layout.
type LateRow struct {
	Student     string `json:"student" csv:"Student"`
	SubmittedAt string `json:"submitted_at" csv:"Submitted At"` // RFC3339
	Local       string `json:"local" csv:"Submitted (local)"`
}

// New builds a Summary for res. A zero due means lateness was not checked.
func New(res *organize.Result, due time.Time) *Summary {
	s := &Summary{
		RunID:       uuid.New().String(),
		Platform:    res.Platform,
		Bulk:        res.Bulk,
		Destination: res.Destination,
		StartedAt:   res.StartedAt,
		Entries:     res.Entries,
		Selected:    res.Selected,
		Students:    res.Students(),
		Late:        make([]LateRow, 0, len(res.Late)),
		Warnings:    res.Warnings,
	}
	if !due.IsZero() {
		s.Due = due.Format(time.RFC3339)
	}
	for _, f := range res.Folders {
		if f.MarkedLate {
			s.MarkedLate = append(s.MarkedLate, f.Student.Name)
		}
	}
	for _, rec := range res.Late {
		s.Late = append(s.Late, LateRow{
			Student:     rec.Student.Name,
			SubmittedAt: rec.SubmittedAt.Format(time.RFC3339),
			Local:       rec.Local,
		})
	}
	if s.Warnings == nil {
		s.Warnings = []organize.Warning{}
	}
	return s
}

// Write saves s to path as CSV or JSON, chosen by extension.
func Write(path string, s *Summary) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return WriteCSV(path, s)
	case ".json":
		return WriteJSON(path, s)
	}
	return fmt.Errorf("unsupported report format %q (want .csv or .json)", filepath.Ext(path))
}

// WriteCSV writes the late submissions, one row each, in processing order.
func WriteCSV(path string, s *Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&s.Late, f); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes the whole summary after checking it against the run
// report schema.
func WriteJSON(path string, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := schemas.ValidateRunReport(string(data)); err != nil {
		return fmt.Errorf("report failed schema validation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
