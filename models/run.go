package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ResolutionRun records one pass through the engine for a single address:
// which listing strategy won (if any) and what came out the other end.
type ResolutionRun struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Address      string     `json:"address" db:"address"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	FinishedAt   *time.Time `json:"finished_at" db:"finished_at"`
	Status       RunStatus  `json:"status" db:"status"`
	ListingID    string     `json:"listing_id" db:"listing_id"`
	ListingURL   string     `json:"listing_url" db:"listing_url"`
	Strategy     string     `json:"strategy" db:"strategy"`
	Neighborhood string     `json:"neighborhood" db:"neighborhood"`
	NeighborsHit int        `json:"neighbors_hit" db:"neighbors_hit"`
	ErrorMessage string     `json:"error_message" db:"error_message"`
}
