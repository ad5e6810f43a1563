package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	conndomain "github.com/DSaraf-Work/budget-manager-backend/internal/connection/domain"
	connrepo "github.com/DSaraf-Work/budget-manager-backend/internal/connection/repository"
	connusecase "github.com/DSaraf-Work/budget-manager-backend/internal/connection/usecase"
	msgusecase "github.com/DSaraf-Work/budget-manager-backend/internal/message/usecase"
	syncdomain "github.com/DSaraf-Work/budget-manager-backend/internal/sync/domain"
	"github.com/DSaraf-Work/budget-manager-backend/internal/sync/repository"
	txnusecase "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/usecase"
)

// ErrSyncInProgress is returned when a sync is requested for a connection
// whose previous run has not finished. The caller treats it as a skip.
var ErrSyncInProgress = errors.New("sync already in progress for this connection")

// SyncRequest describes one requested pipeline run
type SyncRequest struct {
	UserID     string
	SyncType   syncdomain.SyncType
	MaxResults int
	HoursBack  int
}

// SyncResult reports the outcome of one pipeline run
type SyncResult struct {
	Success             bool   `json:"success"`
	MessagesFetched     int    `json:"messages_fetched"`
	FetchFailures       int    `json:"fetch_failures"`
	TransactionsCreated int    `json:"transactions_created"`
	Error               string `json:"error,omitempty"`
}

// BatchResult aggregates one scheduled pass over all eligible users
type BatchResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// SyncUsecase drives the full fetch-and-process pipeline
type SyncUsecase interface {
	// SyncUserData runs the pipeline once for one user. The SyncRun record is
	// always finalized with a terminal status, success or failure.
	SyncUserData(ctx context.Context, req *SyncRequest) (*SyncResult, error)
	// RunScheduledSync attempts a sync for every active token-bearing
	// connection; one user's failure never prevents the others from running.
	RunScheduledSync(ctx context.Context) *BatchResult
	ListRuns(userID string, limit int) ([]*syncdomain.SyncRun, error)
}

type syncUsecase struct {
	runRepo     repository.SyncRunRepository
	connRepo    connrepo.ConnectionRepository
	connUsecase connusecase.ConnectionUsecase
	fetcher     msgusecase.FetcherUsecase
	txnUsecase  txnusecase.TransactionUsecase

	defaultMaxResults int
	defaultHoursBack  int
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	runRepo repository.SyncRunRepository,
	connRepo connrepo.ConnectionRepository,
	connUsecase connusecase.ConnectionUsecase,
	fetcher msgusecase.FetcherUsecase,
	txnUsecase txnusecase.TransactionUsecase,
	defaultMaxResults int,
	defaultHoursBack int,
) SyncUsecase {
	return &syncUsecase{
		runRepo:           runRepo,
		connRepo:          connRepo,
		connUsecase:       connUsecase,
		fetcher:           fetcher,
		txnUsecase:        txnUsecase,
		defaultMaxResults: defaultMaxResults,
		defaultHoursBack:  defaultHoursBack,
	}
}

func (u *syncUsecase) SyncUserData(ctx context.Context, req *SyncRequest) (*SyncResult, error) {
	conn, err := u.connRepo.FindActiveByUser(req.UserID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, errors.New("no active gmail connection for user")
	}

	// Overlap hardening: a tick must not pile onto a still-running sync
	if conn.SyncStatus == conndomain.SyncStatusSyncing {
		return &SyncResult{Success: false, Error: ErrSyncInProgress.Error()}, ErrSyncInProgress
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = u.defaultMaxResults
	}
	hoursBack := req.HoursBack
	if hoursBack <= 0 {
		hoursBack = u.defaultHoursBack
	}

	run := &syncdomain.SyncRun{
		UserID:       req.UserID,
		ConnectionID: conn.ID,
		SyncType:     req.SyncType,
		HoursBack:    hoursBack,
		StartedAt:    time.Now(),
	}
	if err := u.runRepo.Create(run); err != nil {
		return nil, fmt.Errorf("failed to create sync run: %w", err)
	}

	conn.SyncStatus = conndomain.SyncStatusSyncing
	if err := u.connRepo.Update(conn); err != nil {
		run.Status = syncdomain.RunStatusFailed
		run.ErrorMessage = err.Error()
		u.finalize(run)
		return nil, err
	}

	result, runErr := u.runPipeline(ctx, conn, maxResults, hoursBack, run)

	// The run record is finalized exactly once, on both paths, before any
	// error escapes to the caller.
	if runErr != nil {
		run.Status = syncdomain.RunStatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = syncdomain.RunStatusCompleted
	}
	u.finalize(run)

	now := time.Now()
	if runErr != nil {
		conn.SyncStatus = conndomain.SyncStatusError
		conn.ErrorCount++
	} else {
		conn.SyncStatus = conndomain.SyncStatusCompleted
		conn.LastSyncAt = &now
		conn.ErrorCount = 0
	}
	if err := u.connRepo.Update(conn); err != nil {
		log.Printf("[Sync] Failed to update connection %s after run: %v", conn.ID, err)
	}

	if runErr != nil {
		return &SyncResult{Success: false, Error: runErr.Error()}, runErr
	}
	return result, nil
}

func (u *syncUsecase) runPipeline(ctx context.Context, conn *conndomain.Connection, maxResults, hoursBack int, run *syncdomain.SyncRun) (*SyncResult, error) {
	cred, err := u.connUsecase.EnsureValidToken(ctx, conn)
	if err != nil {
		return nil, err
	}

	since := time.Now().Add(-time.Duration(hoursBack) * time.Hour)
	msgs, fetchFailures, err := u.fetcher.FetchNewMessages(ctx, conn, cred, msgusecase.FetchOptions{
		MaxResults: maxResults,
		Since:      since,
	})
	if err != nil {
		return nil, err
	}
	run.MessagesFetched = len(msgs)

	procResult, err := u.txnUsecase.ProcessPendingMessages(conn.UserID)
	if err != nil {
		return nil, err
	}
	run.TransactionsCreated = procResult.Created

	return &SyncResult{
		Success:             true,
		MessagesFetched:     len(msgs),
		FetchFailures:       fetchFailures,
		TransactionsCreated: procResult.Created,
	}, nil
}

func (u *syncUsecase) finalize(run *syncdomain.SyncRun) {
	if err := u.runRepo.Finalize(run); err != nil {
		log.Printf("[Sync] Failed to finalize run %s: %v", run.ID, err)
	}
}

func (u *syncUsecase) RunScheduledSync(ctx context.Context) *BatchResult {
	conns, err := u.connRepo.ListActiveWithTokens()
	if err != nil {
		log.Printf("[Sync] Failed to enumerate connections for scheduled sync: %v", err)
		return &BatchResult{}
	}

	result := &BatchResult{Attempted: len(conns)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, conn := range conns {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()

			_, err := u.SyncUserData(ctx, &SyncRequest{
				UserID:   userID,
				SyncType: syncdomain.SyncTypeScheduled,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Succeeded++
			case errors.Is(err, ErrSyncInProgress):
				result.Skipped++
			default:
				result.Failed++
				log.Printf("[Sync] Scheduled sync failed for user %s: %v", userID, err)
			}
		}(conn.UserID)
	}

	wg.Wait()
	log.Printf("[Sync] Scheduled batch complete: %d attempted, %d succeeded, %d failed, %d skipped",
		result.Attempted, result.Succeeded, result.Failed, result.Skipped)
	return result
}

func (u *syncUsecase) ListRuns(userID string, limit int) ([]*syncdomain.SyncRun, error) {
	return u.runRepo.ListByUser(userID, limit)
}
