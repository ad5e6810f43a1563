package repository

import tsdomain "github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/domain"

// TrustedSenderRepository defines the interface for trusted sender persistence
type TrustedSenderRepository interface {
	Create(sender *tsdomain.TrustedSender) error
	Update(sender *tsdomain.TrustedSender) error
	Delete(userID, id string) error
	FindByID(userID, id string) (*tsdomain.TrustedSender, error)
	ListByUser(userID string) ([]*tsdomain.TrustedSender, error)
	ListActiveByUser(userID string) ([]*tsdomain.TrustedSender, error)
}
