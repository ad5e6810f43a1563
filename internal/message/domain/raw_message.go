package domain

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// MessageStatus is the terminal processing state of a fetched message.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusProcessed MessageStatus = "processed"
	StatusFailed    MessageStatus = "failed"
	StatusSkipped   MessageStatus = "skipped"
)

// RawMessage is one fetched mail item, persisted before transaction extraction.
// A message is created with status=pending and moves to exactly one terminal
// status (processed/failed/skipped) during processing.
type RawMessage struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	UserID       string        `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_message"`
	ConnectionID string        `json:"connection_id" gorm:"index"`
	MessageID    string        `json:"message_id" gorm:"not null;uniqueIndex:idx_user_message"`
	ThreadID     string        `json:"thread_id"`
	Subject      string        `json:"subject"`
	FromAddress  string        `json:"from_address"`
	FromName     string        `json:"from_name"`
	ReceivedAt   time.Time     `json:"received_at" gorm:"index"`
	Snippet      string        `json:"snippet"`
	Body         string        `json:"body" gorm:"type:text"`
	Labels       string        `json:"labels"`
	Status       MessageStatus `json:"status" gorm:"index;default:pending"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// TokenUpdateFunc handles persisting a refreshed OAuth token
type TokenUpdateFunc func(token *oauth2.Token) error

// MailProvider abstracts the mail API used by the fetcher
type MailProvider interface {
	// SearchMessageIDs returns message ids matching the provider query
	SearchMessageIDs(ctx context.Context, accessToken, refreshToken, query string, maxResults int64, onTokenRefresh TokenUpdateFunc) ([]string, error)
	// GetMessage fetches the full message content for one id
	GetMessage(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh TokenUpdateFunc) (*RawMessage, error)
}
