package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	conndomain "github.com/DSaraf-Work/budget-manager-backend/internal/connection/domain"
	"github.com/DSaraf-Work/budget-manager-backend/internal/connection/repository"
	msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"
	"github.com/DSaraf-Work/budget-manager-backend/pkg/gmail"
	"github.com/DSaraf-Work/budget-manager-backend/pkg/retry"

	"golang.org/x/oauth2"
)

// tokenRefreshBuffer is the safety window before expiry inside which the
// access token is refreshed rather than returned as-is. Keeping it well above
// realistic clock skew guarantees callers never hold an expired token.
const tokenRefreshBuffer = 5 * time.Minute

// OAuthClient abstracts the provider's OAuth endpoints
type OAuthClient interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, string, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	Revoke(ctx context.Context, token string) error
}

// ConnectionUsecase owns the Gmail connection lifecycle: OAuth linking,
// credential validity and disconnects.
type ConnectionUsecase interface {
	AuthURL(state string) string
	// Connect exchanges an authorization code and creates (or reactivates)
	// the user's connection for the authorized mailbox
	Connect(ctx context.Context, userID, code string) (*conndomain.Connection, error)
	// EnsureValidToken returns a credential guaranteed to outlive the refresh
	// buffer, refreshing and persisting it when needed
	EnsureValidToken(ctx context.Context, conn *conndomain.Connection) (*conndomain.Credential, error)
	List(userID string) ([]*conndomain.Connection, error)
	Disconnect(ctx context.Context, userID, connectionID string) error
	// TokenUpdateCallback persists tokens refreshed implicitly by the
	// provider client mid-request
	TokenUpdateCallback(connectionID string) msgdomain.TokenUpdateFunc
}

type connectionUsecase struct {
	connRepo    repository.ConnectionRepository
	oauthClient OAuthClient
}

// NewConnectionUsecase creates a new instance of connectionUsecase
func NewConnectionUsecase(connRepo repository.ConnectionRepository, oauthClient OAuthClient) ConnectionUsecase {
	return &connectionUsecase{
		connRepo:    connRepo,
		oauthClient: oauthClient,
	}
}

func (u *connectionUsecase) AuthURL(state string) string {
	return u.oauthClient.AuthURL(state)
}

func (u *connectionUsecase) Connect(ctx context.Context, userID, code string) (*conndomain.Connection, error) {
	token, email, err := u.oauthClient.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		return nil, errors.New("provider did not issue a refresh token; re-run authorization with consent")
	}

	// One connection row per (user, mailbox); reconnecting reactivates the
	// existing row instead of inserting a duplicate.
	conn, err := u.connRepo.FindByUserAndEmail(userID, email)
	if err != nil {
		return nil, err
	}

	if conn == nil {
		conn = &conndomain.Connection{
			UserID:       userID,
			Email:        email,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenExpiry:  token.Expiry,
			IsActive:     true,
			SyncStatus:   conndomain.SyncStatusPending,
		}
		if err := u.connRepo.Create(conn); err != nil {
			return nil, err
		}
		log.Printf("[Connection] Linked mailbox %s for user %s", email, userID)
		return conn, nil
	}

	conn.AccessToken = token.AccessToken
	conn.RefreshToken = token.RefreshToken
	conn.TokenExpiry = token.Expiry
	conn.IsActive = true
	conn.SyncStatus = conndomain.SyncStatusPending
	conn.ErrorCount = 0
	if err := u.connRepo.Update(conn); err != nil {
		return nil, err
	}
	log.Printf("[Connection] Reconnected mailbox %s for user %s", email, userID)
	return conn, nil
}

func (u *connectionUsecase) EnsureValidToken(ctx context.Context, conn *conndomain.Connection) (*conndomain.Credential, error) {
	if conn.RefreshToken == "" {
		return nil, fmt.Errorf("%w: connection %s has no refresh token", conndomain.ErrReconnectRequired, conn.ID)
	}

	if time.Until(conn.TokenExpiry) > tokenRefreshBuffer {
		return &conndomain.Credential{
			AccessToken:  conn.AccessToken,
			RefreshToken: conn.RefreshToken,
			Expiry:       conn.TokenExpiry,
			WasRefreshed: false,
		}, nil
	}

	var token *oauth2.Token
	err := retry.Do(ctx, 3, 500*time.Millisecond, func() error {
		var refreshErr error
		token, refreshErr = u.oauthClient.Refresh(ctx, conn.RefreshToken)
		if refreshErr != nil && gmail.IsAuthError(refreshErr) {
			return retry.Permanent(refreshErr)
		}
		return refreshErr
	})
	if err != nil {
		if gmail.IsAuthError(err) {
			return nil, fmt.Errorf("%w: %v", conndomain.ErrReconnectRequired, err)
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	conn.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		conn.RefreshToken = token.RefreshToken
	}
	conn.TokenExpiry = token.Expiry
	if err := u.connRepo.Update(conn); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	log.Printf("[Connection] Refreshed access token for connection %s (expires %s)", conn.ID, token.Expiry.Format(time.RFC3339))
	return &conndomain.Credential{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
		WasRefreshed: true,
	}, nil
}

func (u *connectionUsecase) List(userID string) ([]*conndomain.Connection, error) {
	return u.connRepo.ListByUser(userID)
}

func (u *connectionUsecase) Disconnect(ctx context.Context, userID, connectionID string) error {
	conn, err := u.connRepo.FindByID(connectionID)
	if err != nil {
		return err
	}
	if conn == nil || conn.UserID != userID {
		return errors.New("connection not found")
	}

	// Best-effort revocation; the connection is deactivated either way
	if conn.RefreshToken != "" {
		if err := u.oauthClient.Revoke(ctx, conn.RefreshToken); err != nil {
			log.Printf("[Connection] Failed to revoke token for connection %s: %v", conn.ID, err)
		}
	}

	conn.IsActive = false
	conn.SyncStatus = conndomain.SyncStatusPending
	return u.connRepo.Update(conn)
}

func (u *connectionUsecase) TokenUpdateCallback(connectionID string) msgdomain.TokenUpdateFunc {
	return func(token *oauth2.Token) error {
		conn, err := u.connRepo.FindByID(connectionID)
		if err != nil {
			return err
		}
		if conn == nil {
			return fmt.Errorf("connection %s not found", connectionID)
		}

		conn.AccessToken = token.AccessToken
		if token.RefreshToken != "" {
			conn.RefreshToken = token.RefreshToken
		}
		conn.TokenExpiry = token.Expiry
		return u.connRepo.Update(conn)
	}
}
