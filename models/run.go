package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ScrapeRun is one developer's extraction run as recorded in the
// operational ledger.
type ScrapeRun struct {
	ID          string     `json:"id" db:"id"`
	Developer   string     `json:"developer" db:"developer"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	FinishedAt  *time.Time `json:"finished_at" db:"finished_at"`
	Status      RunStatus  `json:"status" db:"status"`
	Projects    int        `json:"projects" db:"projects"`
	HouseTypes  int        `json:"house_types" db:"house_types"`
	Units       int        `json:"units" db:"units"`
	RowsSkipped int        `json:"rows_skipped" db:"rows_skipped"`
	ErrorsCount int        `json:"errors_count" db:"errors_count"`
	Verified    bool       `json:"verified" db:"verified"`
}
