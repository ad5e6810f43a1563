package repository

import (
	"errors"
	"time"

	txndomain "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new instance of transactionRepository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

func (r *transactionRepository) Create(txn *txndomain.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.Status == "" {
		txn.Status = txndomain.StatusReview
	}
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = time.Now()
	return r.db.Create(txn).Error
}

func (r *transactionRepository) Update(txn *txndomain.Transaction) error {
	txn.UpdatedAt = time.Now()
	return r.db.Save(txn).Error
}

func (r *transactionRepository) FindByID(userID, id string) (*txndomain.Transaction, error) {
	var txn txndomain.Transaction
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) ListByUser(userID string, status txndomain.ReviewStatus, limit int) ([]*txndomain.Transaction, error) {
	query := r.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var txns []*txndomain.Transaction
	err := query.Order("txn_time DESC, confidence DESC").Find(&txns).Error
	return txns, err
}
