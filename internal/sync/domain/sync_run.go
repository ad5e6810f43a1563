package domain

import "time"

// SyncType records what triggered a run.
type SyncType string

const (
	SyncTypeManual    SyncType = "manual"
	SyncTypeScheduled SyncType = "scheduled"
)

// RunStatus is the terminal status of a sync run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// SyncRun is one execution record of the fetch-and-process pipeline for one
// user. It is created at run start and finalized exactly once with a terminal
// status, then never mutated.
type SyncRun struct {
	ID                  string     `json:"id" gorm:"primaryKey"`
	UserID              string     `json:"user_id" gorm:"index;not null"`
	ConnectionID        string     `json:"connection_id" gorm:"index"`
	SyncType            SyncType   `json:"sync_type"`
	HoursBack           int        `json:"hours_back"`
	StartedAt           time.Time  `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at"`
	Status              RunStatus  `json:"status" gorm:"index;default:running"`
	MessagesFetched     int        `json:"messages_fetched"`
	TransactionsCreated int        `json:"transactions_created"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
