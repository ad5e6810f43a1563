package domain

import (
	"errors"
	"time"
)

// SyncStatus tracks the state of the most recent sync attempt for a connection.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusSyncing   SyncStatus = "syncing"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusError     SyncStatus = "error"
)

// ErrReconnectRequired signals a permanent auth failure (revoked consent,
// missing refresh token). Callers must not retry; the user has to
// re-authorize the mailbox.
var ErrReconnectRequired = errors.New("gmail connection requires re-authorization")

// Connection links one Gmail mailbox to one user.
// At most one active connection exists per (user_id, email) pair; disconnect
// clears IsActive instead of deleting the row.
type Connection struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_mailbox"`
	Email        string     `json:"email" gorm:"not null;uniqueIndex:idx_user_mailbox"`
	AccessToken  string     `json:"-" gorm:"type:text"`
	RefreshToken string     `json:"-" gorm:"type:text"`
	TokenExpiry  time.Time  `json:"token_expiry"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastSyncAt   *time.Time `json:"last_sync_at"`
	SyncStatus   SyncStatus `json:"sync_status" gorm:"default:pending"`
	ErrorCount   int        `json:"error_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Credential is the result of a token-lifecycle check.
type Credential struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	WasRefreshed bool
}
