package repository

import conndomain "github.com/DSaraf-Work/budget-manager-backend/internal/connection/domain"

// ConnectionRepository defines the interface for connection persistence
type ConnectionRepository interface {
	Create(conn *conndomain.Connection) error
	Update(conn *conndomain.Connection) error
	FindByID(id string) (*conndomain.Connection, error)
	FindByUserAndEmail(userID, email string) (*conndomain.Connection, error)
	FindActiveByUser(userID string) (*conndomain.Connection, error)
	ListByUser(userID string) ([]*conndomain.Connection, error)
	// ListActiveWithTokens returns every active connection holding a refresh
	// token, across all users (batch sync enumeration)
	ListActiveWithTokens() ([]*conndomain.Connection, error)
}
