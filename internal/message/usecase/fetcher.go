package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	conndomain "github.com/DSaraf-Work/budget-manager-backend/internal/connection/domain"
	msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"
	"github.com/DSaraf-Work/budget-manager-backend/internal/message/repository"
	"github.com/DSaraf-Work/budget-manager-backend/pkg/gmail"
	"github.com/DSaraf-Work/budget-manager-backend/pkg/retry"
)

// senderKeywordQuery narrows the provider search to senders that look like
// banking/payment sources before any per-message work happens. The trust
// filter still makes the final call per message.
const senderKeywordQuery = "(from:bank OR from:alert OR from:alerts OR from:noreply OR from:no-reply OR from:payment OR from:payments OR from:transaction OR from:card OR from:upi)"

// Transient provider failures (timeouts, 5xx, rate limits) are retried in-run;
// auth failures bypass retry and surface immediately.
const (
	fetchRetryAttempts = 3
	fetchRetryBase     = 500 * time.Millisecond
)

// FetchOptions controls one fetch pass
type FetchOptions struct {
	MaxResults int
	Since      time.Time
}

// TrustFilter decides whether a sender is eligible for extraction
type TrustFilter interface {
	IsTrusted(userID, senderAddress string) (bool, error)
}

// TokenCallbackProvider persists tokens refreshed mid-request
type TokenCallbackProvider interface {
	TokenUpdateCallback(connectionID string) msgdomain.TokenUpdateFunc
}

// FetcherUsecase retrieves new messages from the provider and persists them
// for later processing.
type FetcherUsecase interface {
	// FetchNewMessages returns the messages newly stored in this pass plus a
	// count of per-message failures. Repeated invocations for the same user
	// never store duplicate provider message ids.
	FetchNewMessages(ctx context.Context, conn *conndomain.Connection, cred *conndomain.Credential, opts FetchOptions) ([]*msgdomain.RawMessage, int, error)
	ListMessages(userID string, status msgdomain.MessageStatus, limit int) ([]*msgdomain.RawMessage, error)
}

type fetcherUsecase struct {
	msgRepo       repository.RawMessageRepository
	mailProvider  msgdomain.MailProvider
	trustFilter   TrustFilter
	tokenCallback TokenCallbackProvider
}

// NewFetcherUsecase creates a new instance of fetcherUsecase
func NewFetcherUsecase(msgRepo repository.RawMessageRepository, mailProvider msgdomain.MailProvider, trustFilter TrustFilter, tokenCallback TokenCallbackProvider) FetcherUsecase {
	return &fetcherUsecase{
		msgRepo:       msgRepo,
		mailProvider:  mailProvider,
		trustFilter:   trustFilter,
		tokenCallback: tokenCallback,
	}
}

func (u *fetcherUsecase) FetchNewMessages(ctx context.Context, conn *conndomain.Connection, cred *conndomain.Credential, opts FetchOptions) ([]*msgdomain.RawMessage, int, error) {
	query := fmt.Sprintf("after:%d %s", opts.Since.Unix(), senderKeywordQuery)
	onRefresh := u.tokenCallback.TokenUpdateCallback(conn.ID)

	var ids []string
	err := retry.Do(ctx, fetchRetryAttempts, fetchRetryBase, func() error {
		var searchErr error
		ids, searchErr = u.mailProvider.SearchMessageIDs(ctx, cred.AccessToken, cred.RefreshToken, query, int64(opts.MaxResults), onRefresh)
		if searchErr != nil && gmail.IsAuthError(searchErr) {
			return retry.Permanent(searchErr)
		}
		return searchErr
	})
	if err != nil {
		return nil, 0, fmt.Errorf("message search failed: %w", err)
	}

	// Drop ids we already stored before paying for a full fetch
	newIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		exists, err := u.msgRepo.Exists(conn.UserID, id)
		if err != nil {
			return nil, 0, err
		}
		if !exists {
			newIDs = append(newIDs, id)
		}
	}

	if len(newIDs) == 0 {
		return nil, 0, nil
	}

	type fetchResult struct {
		msg *msgdomain.RawMessage
		err error
	}

	resultChan := make(chan fetchResult, len(newIDs))

	// Fetch message details in parallel (with reasonable concurrency limit)
	semaphore := make(chan struct{}, 10) // Max 10 concurrent requests

	for _, id := range newIDs {
		go func(msgID string) {
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			var msg *msgdomain.RawMessage
			err := retry.Do(ctx, fetchRetryAttempts, fetchRetryBase, func() error {
				var getErr error
				msg, getErr = u.mailProvider.GetMessage(ctx, cred.AccessToken, cred.RefreshToken, msgID, onRefresh)
				if getErr != nil && gmail.IsAuthError(getErr) {
					return retry.Permanent(getErr)
				}
				return getErr
			})
			resultChan <- fetchResult{msg, err}
		}(id)
	}

	stored := make([]*msgdomain.RawMessage, 0, len(newIDs))
	failed := 0

	for i := 0; i < len(newIDs); i++ {
		result := <-resultChan
		if result.err != nil {
			// A single message failure must not abort the pass
			log.Printf("[Fetcher] Failed to fetch message for user %s: %v", conn.UserID, result.err)
			failed++
			continue
		}

		trusted, err := u.trustFilter.IsTrusted(conn.UserID, result.msg.FromAddress)
		if err != nil {
			log.Printf("[Fetcher] Trust check failed for %s: %v", result.msg.FromAddress, err)
			failed++
			continue
		}
		if !trusted {
			// Untrusted senders are discarded without storage
			continue
		}

		msg := result.msg
		msg.UserID = conn.UserID
		msg.ConnectionID = conn.ID

		created, err := u.msgRepo.Create(msg)
		if err != nil {
			log.Printf("[Fetcher] Failed to store message %s: %v", msg.MessageID, err)
			failed++
			continue
		}
		if created {
			stored = append(stored, msg)
		}
	}

	if failed > 0 {
		log.Printf("[Fetcher] Fetched %d messages for user %s (%d failures)", len(stored), conn.UserID, failed)
	}
	return stored, failed, nil
}

func (u *fetcherUsecase) ListMessages(userID string, status msgdomain.MessageStatus, limit int) ([]*msgdomain.RawMessage, error) {
	return u.msgRepo.ListByUser(userID, status, limit)
}
