package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	conndomain "github.com/DSaraf-Work/budget-manager-backend/internal/connection/domain"
	msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"
	msgusecase "github.com/DSaraf-Work/budget-manager-backend/internal/message/usecase"
	syncdomain "github.com/DSaraf-Work/budget-manager-backend/internal/sync/domain"
	txndomain "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/domain"
	txnusecase "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/usecase"
)

// The batch orchestrator hits the stubs from one goroutine per connection,
// so the stubs lock like real repositories would.
type stubRunRepo struct {
	mu            sync.Mutex
	runs          map[string]*syncdomain.SyncRun
	finalizeCalls int
}

func newStubRunRepo() *stubRunRepo {
	return &stubRunRepo{runs: make(map[string]*syncdomain.SyncRun)}
}

func (r *stubRunRepo) Create(run *syncdomain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run.ID == "" {
		run.ID = fmt.Sprintf("run-%d", len(r.runs)+1)
	}
	run.Status = syncdomain.RunStatusRunning
	r.runs[run.ID] = run
	return nil
}

func (r *stubRunRepo) Finalize(run *syncdomain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalizeCalls++
	r.runs[run.ID] = run
	return nil
}

func (r *stubRunRepo) ListByUser(userID string, limit int) ([]*syncdomain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*syncdomain.SyncRun
	for _, run := range r.runs {
		if run.UserID == userID {
			out = append(out, run)
		}
	}
	return out, nil
}

type stubConnRepo struct {
	mu    sync.Mutex
	conns map[string]*conndomain.Connection
}

func newStubConnRepo(conns ...*conndomain.Connection) *stubConnRepo {
	r := &stubConnRepo{conns: make(map[string]*conndomain.Connection)}
	for _, c := range conns {
		r.conns[c.ID] = c
	}
	return r
}

func (r *stubConnRepo) get(id string) *conndomain.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns[id]
}

func (r *stubConnRepo) Create(conn *conndomain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID] = conn
	return nil
}

func (r *stubConnRepo) Update(conn *conndomain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID] = conn
	return nil
}

func (r *stubConnRepo) FindByID(id string) (*conndomain.Connection, error) {
	return r.get(id), nil
}

func (r *stubConnRepo) FindByUserAndEmail(userID, email string) (*conndomain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.UserID == userID && c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *stubConnRepo) FindActiveByUser(userID string) (*conndomain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.UserID == userID && c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (r *stubConnRepo) ListByUser(userID string) ([]*conndomain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*conndomain.Connection
	for _, c := range r.conns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubConnRepo) ListActiveWithTokens() ([]*conndomain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*conndomain.Connection
	for _, c := range r.conns {
		if c.IsActive && c.RefreshToken != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubConnUsecase struct {
	cred     *conndomain.Credential
	tokenErr map[string]error // keyed by user id
}

func (u *stubConnUsecase) AuthURL(state string) string { return "" }

func (u *stubConnUsecase) Connect(ctx context.Context, userID, code string) (*conndomain.Connection, error) {
	return nil, nil
}

func (u *stubConnUsecase) EnsureValidToken(ctx context.Context, conn *conndomain.Connection) (*conndomain.Credential, error) {
	if err := u.tokenErr[conn.UserID]; err != nil {
		return nil, err
	}
	if u.cred != nil {
		return u.cred, nil
	}
	return &conndomain.Credential{AccessToken: "at", RefreshToken: "rt"}, nil
}

func (u *stubConnUsecase) List(userID string) ([]*conndomain.Connection, error) { return nil, nil }

func (u *stubConnUsecase) Disconnect(ctx context.Context, userID, connectionID string) error {
	return nil
}

func (u *stubConnUsecase) TokenUpdateCallback(connectionID string) msgdomain.TokenUpdateFunc {
	return nil
}

type stubFetcher struct {
	messages []*msgdomain.RawMessage
	failures int
	err      error
}

func (f *stubFetcher) FetchNewMessages(ctx context.Context, conn *conndomain.Connection, cred *conndomain.Credential, opts msgusecase.FetchOptions) ([]*msgdomain.RawMessage, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.messages, f.failures, nil
}

func (f *stubFetcher) ListMessages(userID string, status msgdomain.MessageStatus, limit int) ([]*msgdomain.RawMessage, error) {
	return nil, nil
}

type stubTxnUsecase struct {
	result *txnusecase.ProcessResult
	err    error
}

func (u *stubTxnUsecase) ProcessPendingMessages(userID string) (*txnusecase.ProcessResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	if u.result != nil {
		return u.result, nil
	}
	return &txnusecase.ProcessResult{}, nil
}

func (u *stubTxnUsecase) Create(userID string, req *txnusecase.CreateRequest) (*txndomain.Transaction, error) {
	return nil, nil
}

func (u *stubTxnUsecase) List(userID string, status txndomain.ReviewStatus, limit int) ([]*txndomain.Transaction, error) {
	return nil, nil
}

func (u *stubTxnUsecase) Approve(userID, id string) (*txndomain.Transaction, error) { return nil, nil }

func (u *stubTxnUsecase) Reject(userID, id string) (*txndomain.Transaction, error) { return nil, nil }

func (u *stubTxnUsecase) Edit(userID, id string, req *txnusecase.EditRequest) (*txndomain.Transaction, error) {
	return nil, nil
}

func activeConn(id, userID string) *conndomain.Connection {
	return &conndomain.Connection{
		ID:           id,
		UserID:       userID,
		Email:        userID + "@gmail.com",
		RefreshToken: "rt-" + id,
		IsActive:     true,
		SyncStatus:   conndomain.SyncStatusPending,
		TokenExpiry:  time.Now().Add(time.Hour),
	}
}

func TestSyncUserDataCompletesRun(t *testing.T) {
	runRepo := newStubRunRepo()
	connRepo := newStubConnRepo(activeConn("c1", "u1"))
	fetcher := &stubFetcher{
		messages: []*msgdomain.RawMessage{{ID: "m1"}, {ID: "m2"}},
		failures: 1,
	}
	txns := &stubTxnUsecase{result: &txnusecase.ProcessResult{Processed: 2, Created: 2}}

	u := NewSyncUsecase(runRepo, connRepo, &stubConnUsecase{}, fetcher, txns, 50, 2)

	result, err := u.SyncUserData(context.Background(), &SyncRequest{
		UserID:   "u1",
		SyncType: syncdomain.SyncTypeManual,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("result marked unsuccessful")
	}
	if result.MessagesFetched != 2 || result.TransactionsCreated != 2 || result.FetchFailures != 1 {
		t.Errorf("result = %+v", result)
	}

	if len(runRepo.runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runRepo.runs))
	}
	for _, run := range runRepo.runs {
		if run.Status != syncdomain.RunStatusCompleted {
			t.Errorf("run status = %q, want completed", run.Status)
		}
		if run.MessagesFetched != 2 || run.TransactionsCreated != 2 {
			t.Errorf("run counters = %+v", run)
		}
	}
	if runRepo.finalizeCalls != 1 {
		t.Errorf("finalize calls = %d, want exactly 1", runRepo.finalizeCalls)
	}

	conn := connRepo.conns["c1"]
	if conn.SyncStatus != conndomain.SyncStatusCompleted {
		t.Errorf("connection sync status = %q, want completed", conn.SyncStatus)
	}
	if conn.LastSyncAt == nil {
		t.Error("last sync time not recorded")
	}
}

func TestSyncUserDataFinalizesFailedRun(t *testing.T) {
	runRepo := newStubRunRepo()
	connRepo := newStubConnRepo(activeConn("c1", "u1"))
	connUC := &stubConnUsecase{
		tokenErr: map[string]error{"u1": conndomain.ErrReconnectRequired},
	}

	u := NewSyncUsecase(runRepo, connRepo, connUC, &stubFetcher{}, &stubTxnUsecase{}, 50, 2)

	_, err := u.SyncUserData(context.Background(), &SyncRequest{UserID: "u1", SyncType: syncdomain.SyncTypeManual})
	if !errors.Is(err, conndomain.ErrReconnectRequired) {
		t.Fatalf("err = %v, want ErrReconnectRequired", err)
	}

	// The run record still gets a terminal status
	if runRepo.finalizeCalls != 1 {
		t.Fatalf("finalize calls = %d, want exactly 1", runRepo.finalizeCalls)
	}
	for _, run := range runRepo.runs {
		if run.Status != syncdomain.RunStatusFailed {
			t.Errorf("run status = %q, want failed", run.Status)
		}
		if run.ErrorMessage == "" {
			t.Error("failed run missing error message")
		}
	}

	conn := connRepo.conns["c1"]
	if conn.SyncStatus != conndomain.SyncStatusError {
		t.Errorf("connection sync status = %q, want error", conn.SyncStatus)
	}
	if conn.ErrorCount != 1 {
		t.Errorf("error count = %d, want 1", conn.ErrorCount)
	}
}

func TestSyncUserDataSkipsWhenAlreadySyncing(t *testing.T) {
	conn := activeConn("c1", "u1")
	conn.SyncStatus = conndomain.SyncStatusSyncing
	runRepo := newStubRunRepo()

	u := NewSyncUsecase(runRepo, newStubConnRepo(conn), &stubConnUsecase{}, &stubFetcher{}, &stubTxnUsecase{}, 50, 2)

	_, err := u.SyncUserData(context.Background(), &SyncRequest{UserID: "u1", SyncType: syncdomain.SyncTypeScheduled})
	if !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("err = %v, want ErrSyncInProgress", err)
	}
	if len(runRepo.runs) != 0 {
		t.Errorf("overlapping request must not create a run, got %d", len(runRepo.runs))
	}
}

func TestSyncUserDataNoActiveConnection(t *testing.T) {
	u := NewSyncUsecase(newStubRunRepo(), newStubConnRepo(), &stubConnUsecase{}, &stubFetcher{}, &stubTxnUsecase{}, 50, 2)

	if _, err := u.SyncUserData(context.Background(), &SyncRequest{UserID: "u1"}); err == nil {
		t.Fatal("expected an error without an active connection")
	}
}

func TestRunScheduledSyncIsolatesFailures(t *testing.T) {
	runRepo := newStubRunRepo()
	connRepo := newStubConnRepo(
		activeConn("c1", "u1"),
		activeConn("c2", "u2"),
		activeConn("c3", "u3"),
	)
	connUC := &stubConnUsecase{
		tokenErr: map[string]error{"u2": errors.New("token refresh failed")},
	}

	u := NewSyncUsecase(runRepo, connRepo, connUC, &stubFetcher{}, &stubTxnUsecase{}, 50, 2)

	result := u.RunScheduledSync(context.Background())
	if result.Attempted != 3 {
		t.Errorf("attempted = %d, want 3", result.Attempted)
	}
	if result.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", result.Succeeded)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if result.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", result.Skipped)
	}
}

func TestRunScheduledSyncCountsOverlapAsSkip(t *testing.T) {
	busy := activeConn("c1", "u1")
	busy.SyncStatus = conndomain.SyncStatusSyncing
	connRepo := newStubConnRepo(busy, activeConn("c2", "u2"))

	u := NewSyncUsecase(newStubRunRepo(), connRepo, &stubConnUsecase{}, &stubFetcher{}, &stubTxnUsecase{}, 50, 2)

	result := u.RunScheduledSync(context.Background())
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Succeeded != 1 {
		t.Errorf("succeeded = %d, want 1", result.Succeeded)
	}
}
