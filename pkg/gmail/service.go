package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const revokeEndpoint = "https://oauth2.googleapis.com/revoke"

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = msgdomain.TokenUpdateFunc

type Service struct {
	clientID     string
	clientSecret string
	redirectURI  string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

func (s *Service) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		RedirectURL:  s.redirectURI,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// AuthURL builds the consent URL. Offline access plus a forced consent prompt
// guarantees Google issues a refresh token on every authorization.
func (s *Service) AuthURL(state string) string {
	return s.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange swaps an authorization code for tokens and resolves the mailbox
// address via the Gmail profile endpoint.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, string, error) {
	token, err := s.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("unable to exchange authorization code: %w", err)
	}

	srv, err := s.getGmailService(ctx, token.AccessToken, token.RefreshToken, nil)
	if err != nil {
		return nil, "", err
	}

	profile, err := srv.Users.GetProfile("me").Do()
	if err != nil {
		return nil, "", fmt.Errorf("unable to resolve mailbox profile: %w", err)
	}

	return token, profile.EmailAddress, nil
}

// Refresh exchanges a refresh token for a fresh access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now(), // force the token source to refresh
	}

	newToken, err := s.oauthConfig().TokenSource(ctx, token).Token()
	if err != nil {
		return nil, err
	}
	if newToken.RefreshToken == "" {
		newToken.RefreshToken = refreshToken
	}
	return newToken, nil
}

// Revoke invalidates the token at Google's revocation endpoint
func (s *Service) Revoke(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeEndpoint,
		strings.NewReader(url.Values{"token": {token}}.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token revocation failed with status %d", resp.StatusCode)
	}
	return nil
}

// IsAuthError reports whether err is a permanent authorization failure
// (revoked consent, invalid_grant) as opposed to a transient network/API error.
func IsAuthError(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return true
		}
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
	}

	return false
}

// getGmailService creates a Gmail API client with the user's tokens
func (s *Service) getGmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	tokenSource := s.oauthConfig().TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// SearchMessageIDs lists message ids matching the query, newest first
func (s *Service) SearchMessageIDs(ctx context.Context, accessToken, refreshToken, query string, maxResults int64, onTokenRefresh TokenUpdateFunc) ([]string, error) {
	srv, err := s.getGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	if maxResults <= 0 {
		maxResults = 50
	}
	if maxResults > 500 {
		maxResults = 500 // Gmail API maximum
	}

	listQuery := srv.Users.Messages.List("me").MaxResults(maxResults)
	if query != "" {
		listQuery = listQuery.Q(query)
	}

	resp, err := listQuery.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

// GetMessage fetches the full message content for one id
func (s *Service) GetMessage(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh TokenUpdateFunc) (*msgdomain.RawMessage, error) {
	srv, err := s.getGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message %s: %w", messageID, err)
	}

	if msg.Payload == nil {
		return nil, fmt.Errorf("malformed provider response for message %s: missing payload", messageID)
	}

	return convertGmailMessage(msg), nil
}

// Helper functions

func convertGmailMessage(msg *gmail.Message) *msgdomain.RawMessage {
	from := getHeader(msg.Payload.Headers, "From")
	fromName, fromAddress := parseFromHeader(from)

	return &msgdomain.RawMessage{
		MessageID:   msg.Id,
		ThreadID:    msg.ThreadId,
		Subject:     getHeader(msg.Payload.Headers, "Subject"),
		FromAddress: fromAddress,
		FromName:    fromName,
		ReceivedAt:  time.Unix(msg.InternalDate/1000, 0),
		Snippet:     msg.Snippet,
		Body:        extractPlainBody(msg.Payload),
		Labels:      strings.Join(msg.LabelIds, ","),
		Status:      msgdomain.StatusPending,
	}
}

// parseFromHeader splits a "Name <addr@host>" header into its parts
func parseFromHeader(from string) (name, address string) {
	if idx := strings.Index(from, "<"); idx >= 0 {
		name = strings.Trim(strings.TrimSpace(from[:idx]), `"`)
		address = strings.TrimSpace(strings.TrimSuffix(from[idx+1:], ">"))
	} else {
		address = strings.TrimSpace(from)
	}
	return name, strings.ToLower(address)
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

// extractPlainBody prefers a text/plain part, falls back to stripped
// text/html, otherwise returns empty.
func extractPlainBody(payload *gmail.MessagePart) string {
	// If the payload itself is the body
	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			if payload.MimeType == "text/html" {
				return stripHTML(string(data))
			}
			return string(data)
		}
	}

	var htmlBody string
	var plainBody string

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.MimeType == "text/plain" && plainBody == "" {
				if part.Body != nil && part.Body.Data != "" {
					if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
						plainBody = string(data)
					}
				}
			} else if part.MimeType == "text/html" && htmlBody == "" {
				if part.Body != nil && part.Body.Data != "" {
					if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
						htmlBody = string(data)
					}
				}
			}

			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}

	findBody(payload.Parts)

	if plainBody != "" {
		return plainBody
	}
	if htmlBody != "" {
		return stripHTML(htmlBody)
	}
	return ""
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTML(body string) string {
	text := htmlTagRe.ReplaceAllString(body, " ")
	// Unescape HTML entities (basic ones)
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&quot;", "\"")

	// Collapse multiple spaces into one
	return strings.Join(strings.Fields(text), " ")
}
