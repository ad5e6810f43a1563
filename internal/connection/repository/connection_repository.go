package repository

import (
	"errors"
	"time"

	conndomain "github.com/DSaraf-Work/budget-manager-backend/internal/connection/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// connectionRepository implements ConnectionRepository interface
type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new instance of connectionRepository
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{
		db: db,
	}
}

func (r *connectionRepository) Create(conn *conndomain.Connection) error {
	if conn.ID == "" {
		conn.ID = uuid.New().String()
	}
	conn.CreatedAt = time.Now()
	conn.UpdatedAt = time.Now()
	return r.db.Create(conn).Error
}

func (r *connectionRepository) Update(conn *conndomain.Connection) error {
	conn.UpdatedAt = time.Now()
	return r.db.Save(conn).Error
}

func (r *connectionRepository) FindByID(id string) (*conndomain.Connection, error) {
	var conn conndomain.Connection
	err := r.db.Where("id = ?", id).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) FindByUserAndEmail(userID, email string) (*conndomain.Connection, error) {
	var conn conndomain.Connection
	err := r.db.Where("user_id = ? AND email = ?", userID, email).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) FindActiveByUser(userID string) (*conndomain.Connection, error) {
	var conn conndomain.Connection
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) ListByUser(userID string) ([]*conndomain.Connection, error) {
	var conns []*conndomain.Connection
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&conns).Error
	return conns, err
}

func (r *connectionRepository) ListActiveWithTokens() ([]*conndomain.Connection, error) {
	var conns []*conndomain.Connection
	err := r.db.Where("is_active = ? AND refresh_token <> ''", true).Find(&conns).Error
	return conns, err
}
