package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/client/services"
	"github.com/dmitrijs2005/gophdocs/internal/cryptox"
	"github.com/docker/go-units"
)

var errTooLarge = errors.New("file exceeds the upload limit")

// docVersion resolves the usual "<doc> <ver>" argument pair.
func (a *App) docVersion(ctx context.Context, args []string) (models.Document, models.DocumentVersion, error) {
	if len(args) != 2 {
		return models.Document{}, models.DocumentVersion{}, errUsage
	}
	a.setCurrentDoc(args[0])
	return a.resolveVersion(ctx, args[0], args[1])
}

// Validate runs the standalone integrity check and shows the result.
func (a *App) Validate(ctx context.Context, args []string) error {
	doc, v, err := a.docVersion(ctx, args)
	if err != nil {
		return err
	}
	if _, err := a.validation.ValidateVersionWithModal(ctx, doc.ID, v.ID); err != nil {
		return err
	}
	defer a.validation.Cancel()
	return a.validation.State().Render(a.out)
}

// Download validates the version first and saves it only after the user
// has seen the result and chosen to proceed. When the check itself fails
// and bypassing is allowed, a confirmed save is a warning, not an error.
func (a *App) Download(ctx context.Context, args []string) error {
	doc, v, err := a.docVersion(ctx, args)
	if err != nil {
		return err
	}

	save := func(ctx context.Context) error {
		res, err := a.documentService.Download(ctx, doc.ID, v.ID, a.config.DownloadDir)
		if err != nil {
			return err
		}
		if !res.Verified {
			fmt.Fprintf(a.out, "Warning: content not verified against the recorded checksum (%v)\n", res.VerifyErr)
		}
		fmt.Fprintf(a.out, "Saved %s (%s)\n", res.Path, units.HumanSize(float64(res.Size)))
		return nil
	}

	valid, err := a.validation.ValidateVersion(ctx, doc.ID, v.ID, save)
	if errors.Is(err, services.ErrValidationBypassed) {
		fmt.Fprintln(a.out, "Warning: saved without validation")
		return nil
	}
	if err != nil {
		return err
	}
	if err := a.validation.State().Render(a.out); err != nil {
		a.validation.Cancel()
		return err
	}

	prompt := "Proceed with download?"
	if !valid {
		prompt = "Proceed anyway?"
	}
	ok, err := a.confirmer.Confirm(ctx, prompt)
	if err != nil || !ok {
		a.validation.Cancel()
		return err
	}
	return a.validation.Proceed(ctx)
}

// Toggle: "on" submits the version for approval, "off" returns it to draft.
func (a *App) Toggle(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	checked, err := parseSwitch(args[2])
	if err != nil {
		return err
	}
	doc, v, err := a.docVersion(ctx, args[:2])
	if err != nil {
		return err
	}
	return a.status.Toggle(ctx, doc.ID, v, checked)
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "submit":
		return true, nil
	case "off", "draft":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return b, nil
}

func (a *App) Reject(ctx context.Context, args []string) error {
	doc, v, err := a.docVersion(ctx, args)
	if err != nil {
		return err
	}
	return a.status.Reject(ctx, doc.ID, v)
}

func (a *App) Archive(ctx context.Context, args []string) error {
	doc, v, err := a.docVersion(ctx, args)
	if err != nil {
		return err
	}
	return a.status.Archive(ctx, doc.ID, v)
}

func (a *App) DeleteVersion(ctx context.Context, args []string) error {
	doc, v, err := a.docVersion(ctx, args)
	if err != nil {
		return err
	}
	if !doc.CanDeleteVersion() {
		return services.ErrLastVersion
	}
	ok, err := a.confirmer.Confirm(ctx, fmt.Sprintf("Delete %s of %q?", v.Label(), doc.Title))
	if err != nil || !ok {
		return err
	}
	if err := a.documentService.DeleteVersion(ctx, doc.ID, v.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", v.Label())
	a.showTimeline(ctx, doc.ID)
	return nil
}

// Compare checks the pair and prints what the diff view would receive.
func (a *App) Compare(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	a.setCurrentDoc(args[0])
	doc, err := a.documentService.Get(ctx, args[0])
	if err != nil {
		return err
	}
	first, err := findVersion(doc, args[1])
	if err != nil {
		return err
	}
	second, err := findVersion(doc, args[2])
	if err != nil {
		return err
	}

	older, newer, err := services.ComparePair(doc.Versions, first.ID, second.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Comparing %s (%s, %s) with %s (%s, %s)\n",
		older.Label(), older.Status, units.HumanSize(float64(older.FileSize)),
		newer.Label(), newer.Status, units.HumanSize(float64(newer.FileSize)))
	if older.Checksum != "" && older.Checksum == newer.Checksum {
		fmt.Fprintln(a.out, "Content is identical")
	}
	return nil
}

// Upload adds a new version from a local file.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	documentID, path := args[0], args[1]
	a.setCurrentDoc(documentID)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if limit := a.config.MaxUploadSize; limit > 0 && info.Size() > limit {
		return fmt.Errorf("%w: %s > %s", errTooLarge,
			units.BytesSize(float64(info.Size())), units.BytesSize(float64(limit)))
	}

	comment, err := GetMultiline(a.reader, "Version comment", a.out)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(path)
	v, err := a.documentService.Upload(ctx, models.UploadRequest{
		DocumentID: documentID,
		FileName:   name,
		MimeType:   mime.TypeByExtension(filepath.Ext(name)),
		Comment:    comment,
		Content:    f,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s as %s\n", name, v.Label())
	if v.Checksum != "" {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if err := cryptox.VerifyReader(f, v.Checksum); err != nil {
			fmt.Fprintf(a.out, "Warning: stored content does not match %s (%v)\n", name, err)
		}
	}
	a.showTimeline(ctx, documentID)
	return nil
}
