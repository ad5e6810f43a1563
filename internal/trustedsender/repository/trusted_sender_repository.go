package repository

import (
	"errors"
	"time"

	tsdomain "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// trustedSenderRepository implements TrustedSenderRepository interface
type trustedSenderRepository struct {
	db *gorm.DB
}

// NewTrustedSenderRepository creates a new instance of trustedSenderRepository
func NewTrustedSenderRepository(db *gorm.DB) TrustedSenderRepository {
	return &trustedSenderRepository{
		db: db,
	}
}

func (r *trustedSenderRepository) Create(sender *tsdomain.TrustedSender) error {
	if sender.ID == "" {
		sender.ID = uuid.New().String()
	}
	sender.CreatedAt = time.Now()
	sender.UpdatedAt = time.Now()
	return r.db.Create(sender).Error
}

func (r *trustedSenderRepository) Update(sender *tsdomain.TrustedSender) error {
	sender.UpdatedAt = time.Now()
	return r.db.Save(sender).Error
}

func (r *trustedSenderRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&tsdomain.TrustedSender{}).Error
}

func (r *trustedSenderRepository) FindByID(userID, id string) (*tsdomain.TrustedSender, error) {
	var sender tsdomain.TrustedSender
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&sender).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sender, nil
}

func (r *trustedSenderRepository) ListByUser(userID string) ([]*tsdomain.TrustedSender, error) {
	var senders []*tsdomain.TrustedSender
	err := r.db.Where("user_id = ?", userID).Order("pattern ASC").Find(&senders).Error
	return senders, err
}

func (r *trustedSenderRepository) ListActiveByUser(userID string) ([]*tsdomain.TrustedSender, error) {
	var senders []*tsdomain.TrustedSender
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&senders).Error
	return senders, err
}
