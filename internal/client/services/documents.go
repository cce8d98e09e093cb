package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/cryptox"
	"github.com/dmitrijs2005/gophdocs/internal/filex"
)

// DocumentService covers the read and housekeeping operations around
// documents and their versions.
//
// All methods honor context cancellation.
type DocumentService interface {
	List(ctx context.Context, filter models.DocumentFilter) (models.DocumentPage, error)
	Get(ctx context.Context, documentID string) (models.Document, error)
	// Timeline returns the versions newest first.
	Timeline(ctx context.Context, documentID string) ([]models.DocumentVersion, error)
	DeleteVersion(ctx context.Context, documentID, versionID string) error
	Download(ctx context.Context, documentID, versionID, dir string) (DownloadResult, error)
	Upload(ctx context.Context, req models.UploadRequest) (models.DocumentVersion, error)
	Departments(ctx context.Context) ([]models.Department, error)
	Tags(ctx context.Context) ([]models.Tag, error)
}

// DownloadResult describes a saved version. Verified is false when the
// content did not match the recorded checksum or no usable checksum was
// recorded; VerifyErr says which.
type DownloadResult struct {
	Path      string
	Size      int
	Verified  bool
	VerifyErr error
}

type documentService struct {
	client client.Client
}

func NewDocumentService(c client.Client) DocumentService {
	return &documentService{client: c}
}

func (d *documentService) List(ctx context.Context, filter models.DocumentFilter) (models.DocumentPage, error) {
	return d.client.ListDocuments(ctx, filter)
}

func (d *documentService) Get(ctx context.Context, documentID string) (models.Document, error) {
	if err := common.RequireIDs(documentID); err != nil {
		return models.Document{}, err
	}
	return d.client.GetDocument(ctx, documentID)
}

func (d *documentService) Timeline(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	doc, err := d.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return doc.SortedVersions(), nil
}

// DeleteVersion refuses to remove the last remaining version.
func (d *documentService) DeleteVersion(ctx context.Context, documentID, versionID string) error {
	if err := common.RequireIDs(documentID, versionID); err != nil {
		return err
	}
	doc, err := d.client.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if _, ok := doc.FindVersion(versionID); !ok {
		return fmt.Errorf("version %s: %w", versionID, client.ErrNotFound)
	}
	if !doc.CanDeleteVersion() {
		return ErrLastVersion
	}
	return d.client.DeleteVersion(ctx, documentID, versionID)
}

// Download fetches the version, checks it against the checksum recorded on
// the version and saves it under dir. A mismatch does not prevent saving.
func (d *documentService) Download(ctx context.Context, documentID, versionID, dir string) (DownloadResult, error) {
	doc, err := d.Get(ctx, documentID)
	if err != nil {
		return DownloadResult{}, err
	}
	version, ok := doc.FindVersion(versionID)
	if !ok {
		return DownloadResult{}, fmt.Errorf("version %s: %w", versionID, client.ErrNotFound)
	}

	dl, err := d.client.DownloadVersion(ctx, documentID, versionID)
	if err != nil {
		return DownloadResult{}, err
	}

	res := DownloadResult{Size: len(dl.Data)}
	if strings.TrimSpace(version.Checksum) == "" {
		res.VerifyErr = cryptox.ErrMalformedChecksum
	} else if err := cryptox.Verify(dl.Data, version.Checksum); err != nil {
		res.VerifyErr = err
	} else {
		res.Verified = true
	}

	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return res, err
	}
	name := dl.FileName
	if name == "" {
		name = version.FileName
	}
	if name == "" {
		name = fmt.Sprintf("%s-%s", doc.Title, version.Label())
	}
	res.Path, err = filex.WriteFile(abs, name, dl.Data)
	return res, err
}

func (d *documentService) Upload(ctx context.Context, req models.UploadRequest) (models.DocumentVersion, error) {
	if err := common.RequireIDs(req.DocumentID); err != nil {
		return models.DocumentVersion{}, err
	}
	if req.Content == nil || strings.TrimSpace(req.FileName) == "" {
		return models.DocumentVersion{}, ErrEmptyUpload
	}
	return d.client.UploadVersion(ctx, req)
}

func (d *documentService) Departments(ctx context.Context) ([]models.Department, error) {
	return d.client.ListDepartments(ctx)
}

func (d *documentService) Tags(ctx context.Context) ([]models.Tag, error) {
	return d.client.ListTags(ctx)
}

// ComparePair picks the two versions to diff, older first. The diff itself
// is rendered elsewhere.
func ComparePair(versions []models.DocumentVersion, firstID, secondID string) (older, newer models.DocumentVersion, err error) {
	if firstID == "" || secondID == "" || firstID == secondID {
		return older, newer, ErrCompareSelection
	}
	var found []models.DocumentVersion
	for _, v := range versions {
		if v.ID == firstID || v.ID == secondID {
			found = append(found, v)
		}
	}
	if len(found) != 2 {
		return older, newer, errors.Join(ErrCompareSelection, client.ErrNotFound)
	}
	if found[0].VersionNumber > found[1].VersionNumber {
		found[0], found[1] = found[1], found[0]
	}
	return found[0], found[1], nil
}
