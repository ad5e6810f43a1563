package repository

import txndomain "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/domain"

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	Create(txn *txndomain.Transaction) error
	Update(txn *txndomain.Transaction) error
	FindByID(userID, id string) (*txndomain.Transaction, error)
	// ListByUser returns transactions newest first, optionally filtered by
	// review status, ordered by confidence within the same day for UI ranking
	ListByUser(userID string, status txndomain.ReviewStatus, limit int) ([]*txndomain.Transaction, error)
}
