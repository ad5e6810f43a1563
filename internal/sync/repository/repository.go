package repository

import syncdomain "github.com/DSaraf-Work/budget-manager-backend/internal/sync/domain"

// SyncRunRepository defines the interface for sync run persistence
type SyncRunRepository interface {
	Create(run *syncdomain.SyncRun) error
	// Finalize writes the terminal status and counts exactly once; a second
	// call for the same run is a no-op
	Finalize(run *syncdomain.SyncRun) error
	ListByUser(userID string, limit int) ([]*syncdomain.SyncRun, error)
}
