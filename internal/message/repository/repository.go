package repository

import msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"

// RawMessageRepository defines the interface for raw message persistence
type RawMessageRepository interface {
	// Create inserts the message; returns (false, nil) without inserting when
	// the (user, provider message id) pair already exists
	Create(msg *msgdomain.RawMessage) (created bool, err error)
	Exists(userID, messageID string) (bool, error)
	// ListPendingByUser returns pending messages oldest received first
	ListPendingByUser(userID string) ([]*msgdomain.RawMessage, error)
	ListByUser(userID string, status msgdomain.MessageStatus, limit int) ([]*msgdomain.RawMessage, error)
	UpdateStatus(id string, status msgdomain.MessageStatus, errorMessage string) error
}
