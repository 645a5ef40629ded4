package db

import (
	"time"

	"github.com/google/uuid"
)

// Run is a stored run summary.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Platform    string     `json:"platform"`
	Bulk        string     `json:"bulk"`
	Destination string     `json:"destination"`
	Due         *time.Time `json:"due,omitempty"`
	Entries     int        `json:"entries"`
	Selected    int        `json:"selected"`
	Students    int        `json:"students"`
	StartedAt   time.Time  `json:"started_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LateSubmission is one stored late record; Position keeps processing order.
type LateSubmission struct {
	RunID       uuid.UUID `json:"run_id"`
	Position    int       `json:"position"`
	Student     string    `json:"student"`
	SubmittedAt time.Time `json:"submitted_at"`
	LocalTime   string    `json:"local_time"`
}
