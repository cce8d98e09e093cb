package client

import (
	"context"

	"github.com/dmitrijs2005/gophdocs/internal/client/models"
)

// Client is the backend contract consumed by the services.
type Client interface {
	Close() error
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Ping(ctx context.Context) error
	SetTokens(access, refresh string)
	Tokens() (access, refresh string)

	ListDocuments(ctx context.Context, filter models.DocumentFilter) (models.DocumentPage, error)
	GetDocument(ctx context.Context, documentID string) (models.Document, error)
	ValidateVersion(ctx context.Context, documentID, versionID string) (models.ValidationResult, error)
	UpdateVersionStatus(ctx context.Context, documentID, versionID string, status models.VersionStatus) error
	DeleteVersion(ctx context.Context, documentID, versionID string) error
	DownloadVersion(ctx context.Context, documentID, versionID string) (Download, error)
	UploadVersion(ctx context.Context, req models.UploadRequest) (models.DocumentVersion, error)

	ListActiveSignatures(ctx context.Context) ([]models.SignatureStamp, error)
	ApplySignature(ctx context.Context, req models.ApplySignatureRequest) (models.AppliedSignature, error)

	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// Download is the raw content of one version.
type Download struct {
	FileName string
	MimeType string
	Data     []byte
}
