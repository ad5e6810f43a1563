package repository

import (
	"errors"
	"time"

	msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rawMessageRepository implements RawMessageRepository interface
type rawMessageRepository struct {
	db *gorm.DB
}

// NewRawMessageRepository creates a new instance of rawMessageRepository
func NewRawMessageRepository(db *gorm.DB) RawMessageRepository {
	return &rawMessageRepository{
		db: db,
	}
}

// Create inserts the message, relying on the (user_id, message_id) unique
// index so a concurrent duplicate insert converges instead of failing.
func (r *rawMessageRepository) Create(msg *msgdomain.RawMessage) (bool, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Status == "" {
		msg.Status = msgdomain.StatusPending
	}
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = time.Now()

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "message_id"}},
		DoNothing: true,
	}).Create(msg)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *rawMessageRepository) Exists(userID, messageID string) (bool, error) {
	var msg msgdomain.RawMessage
	err := r.db.Select("id").Where("user_id = ? AND message_id = ?", userID, messageID).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *rawMessageRepository) ListPendingByUser(userID string) ([]*msgdomain.RawMessage, error) {
	var msgs []*msgdomain.RawMessage
	err := r.db.Where("user_id = ? AND status = ?", userID, msgdomain.StatusPending).
		Order("received_at ASC").Find(&msgs).Error
	return msgs, err
}

func (r *rawMessageRepository) ListByUser(userID string, status msgdomain.MessageStatus, limit int) ([]*msgdomain.RawMessage, error) {
	query := r.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var msgs []*msgdomain.RawMessage
	err := query.Order("received_at DESC").Find(&msgs).Error
	return msgs, err
}

func (r *rawMessageRepository) UpdateStatus(id string, status msgdomain.MessageStatus, errorMessage string) error {
	return r.db.Model(&msgdomain.RawMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
		"updated_at":    time.Now(),
	}).Error
}
