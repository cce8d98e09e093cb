package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	require.NoError(t, err)
	return v
}

// ---- fake client ----

type statusCall struct {
	DocumentID string
	VersionID  string
	Status     models.VersionStatus
}

// fakeClient implements client.Client for the service tests. Every call is
// appended to calls; "*Gate" channels, when set, hold the call until closed
// or until the context is done.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	LoginUser *models.User
	LoginErr  error
	LoginAt   string
	LoginRt   string
	LastEmail string
	LastPass  []byte

	PingErr  error
	CloseErr error
	closed   bool

	access, refresh string

	ListRet    models.DocumentPage
	ListErr    error
	LastFilter models.DocumentFilter

	DocumentRet models.Document
	DocumentErr error

	ValidateRet  models.ValidationResult
	ValidateErr  error
	ValidateGate chan struct{}

	StatusErr   error
	StatusCalls []statusCall

	DeleteErr  error
	LastDelete statusCall

	DownloadRet client.Download
	DownloadErr error

	UploadRet  models.DocumentVersion
	UploadErr  error
	LastUpload models.UploadRequest

	SignaturesRet  []models.SignatureStamp
	SignaturesErr  error
	SignaturesGate chan struct{}

	ApplyErr   error
	ApplyGate  chan struct{}
	ApplyCalls []models.ApplySignatureRequest

	DepartmentsRet []models.Department
	TagsRet        []models.Tag
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// Calls returns the call log.
func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeClient) Close() error {
	f.record("close")
	f.closed = true
	return f.CloseErr
}

func (f *fakeClient) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	f.record("login")
	f.LastEmail = email
	f.LastPass = append([]byte(nil), password...)
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.SetTokens(f.LoginAt, f.LoginRt)
	return f.LoginUser, nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.record("ping")
	return f.PingErr
}

func (f *fakeClient) SetTokens(access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh = access, refresh
}

func (f *fakeClient) Tokens() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh
}

func (f *fakeClient) ListDocuments(ctx context.Context, filter models.DocumentFilter) (models.DocumentPage, error) {
	f.record("list")
	f.LastFilter = filter
	return f.ListRet, f.ListErr
}

func (f *fakeClient) GetDocument(ctx context.Context, documentID string) (models.Document, error) {
	f.record("get:" + documentID)
	return f.DocumentRet, f.DocumentErr
}

func (f *fakeClient) ValidateVersion(ctx context.Context, documentID, versionID string) (models.ValidationResult, error) {
	f.record("validate:" + documentID + "/" + versionID)
	if err := wait(ctx, f.ValidateGate); err != nil {
		return models.ValidationResult{}, err
	}
	return f.ValidateRet, f.ValidateErr
}

func (f *fakeClient) UpdateVersionStatus(ctx context.Context, documentID, versionID string, status models.VersionStatus) error {
	f.record("status:" + string(status))
	f.mu.Lock()
	f.StatusCalls = append(f.StatusCalls, statusCall{documentID, versionID, status})
	f.mu.Unlock()
	return f.StatusErr
}

func (f *fakeClient) DeleteVersion(ctx context.Context, documentID, versionID string) error {
	f.record("delete")
	f.LastDelete = statusCall{DocumentID: documentID, VersionID: versionID}
	return f.DeleteErr
}

func (f *fakeClient) DownloadVersion(ctx context.Context, documentID, versionID string) (client.Download, error) {
	f.record("download")
	return f.DownloadRet, f.DownloadErr
}

func (f *fakeClient) UploadVersion(ctx context.Context, req models.UploadRequest) (models.DocumentVersion, error) {
	f.record("upload")
	f.LastUpload = req
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) ListActiveSignatures(ctx context.Context) ([]models.SignatureStamp, error) {
	f.record("signatures")
	if err := wait(ctx, f.SignaturesGate); err != nil {
		return nil, err
	}
	return f.SignaturesRet, f.SignaturesErr
}

func (f *fakeClient) ApplySignature(ctx context.Context, req models.ApplySignatureRequest) (models.AppliedSignature, error) {
	f.record("apply:start")
	f.mu.Lock()
	f.ApplyCalls = append(f.ApplyCalls, req)
	f.mu.Unlock()
	if err := wait(ctx, f.ApplyGate); err != nil {
		return models.AppliedSignature{}, err
	}
	defer f.record("apply:done")
	if f.ApplyErr != nil {
		return models.AppliedSignature{}, f.ApplyErr
	}
	return models.AppliedSignature{ID: "as-1", DocumentID: req.DocumentID, SignatureStampID: req.SignatureStampID, Reason: req.Reason}, nil
}

func (f *fakeClient) ListDepartments(ctx context.Context) ([]models.Department, error) {
	f.record("departments")
	return f.DepartmentsRet, nil
}

func (f *fakeClient) ListTags(ctx context.Context) ([]models.Tag, error) {
	f.record("tags")
	return f.TagsRet, nil
}

func indexOf(calls []string, call string) int {
	for i, c := range calls {
		if c == call {
			return i
		}
	}
	return -1
}
