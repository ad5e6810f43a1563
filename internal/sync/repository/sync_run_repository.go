package repository

import (
	"time"

	syncdomain "github.com/DSaraf-Work/budget-manager-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncRunRepository implements SyncRunRepository interface
type syncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository creates a new instance of syncRunRepository
func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{
		db: db,
	}
}

func (r *syncRunRepository) Create(run *syncdomain.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Status = syncdomain.RunStatusRunning
	run.CreatedAt = time.Now()
	run.UpdatedAt = time.Now()
	return r.db.Create(run).Error
}

// Finalize only touches runs still marked running, so the terminal status is
// written at most once even if two code paths race to finish the same run.
func (r *syncRunRepository) Finalize(run *syncdomain.SyncRun) error {
	now := time.Now()
	run.CompletedAt = &now
	return r.db.Model(&syncdomain.SyncRun{}).
		Where("id = ? AND status = ?", run.ID, syncdomain.RunStatusRunning).
		Updates(map[string]interface{}{
			"status":               run.Status,
			"completed_at":         now,
			"messages_fetched":     run.MessagesFetched,
			"transactions_created": run.TransactionsCreated,
			"error_message":        run.ErrorMessage,
			"updated_at":           now,
		}).Error
}

func (r *syncRunRepository) ListByUser(userID string, limit int) ([]*syncdomain.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*syncdomain.SyncRun
	err := r.db.Where("user_id = ?", userID).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
