package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/config"
	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements client.Client with canned responses and a call log.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	access, refresh string

	LoginUser *models.User
	LoginErr  error

	Docs       models.DocumentPage
	LastFilter models.DocumentFilter
	Doc        models.Document

	Validation  models.ValidationResult
	ValidateErr error

	StatusErr   error
	StatusCalls []models.VersionStatus

	Download client.Download

	LastUpload        models.UploadRequest
	LastUploadContent string
	UploadChecksum    string

	Stamps     []models.SignatureStamp
	ApplyCalls []models.ApplySignatureRequest
}

var _ client.Client = (*fakeAPI)(nil)

func (f *fakeAPI) record(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) count(c string) int {
	n := 0
	for _, call := range f.Calls() {
		if call == c {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Close() error { return nil }

func (f *fakeAPI) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	f.record("login")
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.SetTokens("at", "rt")
	return f.LoginUser, nil
}

func (f *fakeAPI) Ping(ctx context.Context) error { return nil }

func (f *fakeAPI) SetTokens(access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh = access, refresh
}

func (f *fakeAPI) Tokens() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh
}

func (f *fakeAPI) ListDocuments(ctx context.Context, filter models.DocumentFilter) (models.DocumentPage, error) {
	f.record("list")
	f.LastFilter = filter
	return f.Docs, nil
}

func (f *fakeAPI) GetDocument(ctx context.Context, documentID string) (models.Document, error) {
	f.record("get")
	return f.Doc, nil
}

func (f *fakeAPI) ValidateVersion(ctx context.Context, documentID, versionID string) (models.ValidationResult, error) {
	f.record("validate")
	return f.Validation, f.ValidateErr
}

func (f *fakeAPI) UpdateVersionStatus(ctx context.Context, documentID, versionID string, status models.VersionStatus) error {
	f.record("status")
	f.mu.Lock()
	f.StatusCalls = append(f.StatusCalls, status)
	f.mu.Unlock()
	return f.StatusErr
}

func (f *fakeAPI) DeleteVersion(ctx context.Context, documentID, versionID string) error {
	f.record("delete:" + versionID)
	return nil
}

func (f *fakeAPI) DownloadVersion(ctx context.Context, documentID, versionID string) (client.Download, error) {
	f.record("download")
	return f.Download, nil
}

func (f *fakeAPI) UploadVersion(ctx context.Context, req models.UploadRequest) (models.DocumentVersion, error) {
	f.record("upload")
	f.LastUpload = req
	b, err := io.ReadAll(req.Content)
	if err != nil {
		return models.DocumentVersion{}, err
	}
	f.LastUploadContent = string(b)
	return models.DocumentVersion{ID: "V9", VersionNumber: 9, Checksum: f.UploadChecksum}, nil
}

func (f *fakeAPI) ListActiveSignatures(ctx context.Context) ([]models.SignatureStamp, error) {
	f.record("signatures")
	return f.Stamps, nil
}

func (f *fakeAPI) ApplySignature(ctx context.Context, req models.ApplySignatureRequest) (models.AppliedSignature, error) {
	f.record("apply")
	f.mu.Lock()
	f.ApplyCalls = append(f.ApplyCalls, req)
	f.mu.Unlock()
	return models.AppliedSignature{ID: "as"}, nil
}

func (f *fakeAPI) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return []models.Department{{ID: "dep-1", Name: "Legal"}}, nil
}

func (f *fakeAPI) ListTags(ctx context.Context) ([]models.Tag, error) {
	return []models.Tag{{ID: "tag-1", Name: "contract"}}, nil
}

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabasePath = filepath.Join(t.TempDir(), "client.db")
	c.DownloadDir = t.TempDir()
	return c
}

// newTestApp builds an App around api whose stdin is input.
func newTestApp(t *testing.T, api *fakeAPI, input *bufio.Reader, opts ...func(*config.Config)) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := testConfig(t)
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := client.InitDatabase(context.Background(), cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var out bytes.Buffer
	app := newApp(cfg, logging.Discard(), db, api, input, &out)
	app.setUser("ann@example.com")
	return app, &out
}

func policyDoc() models.Document {
	return models.Document{
		ID:    "D",
		Title: "Policy",
		Versions: []models.DocumentVersion{
			{ID: "V1", VersionNumber: 1, Status: models.StatusApproved, FileSize: 2048},
			{ID: "V2", VersionNumber: 2, Status: models.StatusDraft, IsLatest: true, FileSize: 4096, FileName: "policy.txt"},
		},
	}
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}
