package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/docker/go-units"
)

var errUsage = errors.New("wrong number of arguments, type 'help'")

// parseFilter reads "key=value" tokens; everything else is search text.
func parseFilter(args []string) (models.DocumentFilter, error) {
	var f models.DocumentFilter
	var words []string

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			words = append(words, arg)
			continue
		}
		switch key {
		case "status":
			s, err := models.ParseStatus(value)
			if err != nil {
				return f, err
			}
			f.Status = s
		case "dept", "department":
			f.DepartmentID = value
		case "tag":
			f.TagID = value
		case "page", "limit":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return f, fmt.Errorf("%s must be a positive number", key)
			}
			if key == "page" {
				f.Page = n
			} else {
				f.Limit = n
			}
		default:
			words = append(words, arg)
		}
	}
	f.Search = strings.Join(words, " ")
	return f, nil
}

func (a *App) Docs(ctx context.Context, args []string) error {
	filter, err := parseFilter(args)
	if err != nil {
		return err
	}
	page, err := a.documentService.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(page.Documents) == 0 {
		fmt.Fprintln(a.out, "No documents found")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLATEST\tSTATUS\tDEPARTMENT")
	for _, d := range page.Documents {
		latest, status := "-", "-"
		if v, err := d.LatestVersion(); err == nil {
			latest, status = v.Label(), v.Status.String()
		}
		dept := "-"
		if d.Department != nil {
			dept = d.Department.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Title, latest, status, dept)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if page.Total > len(page.Documents) {
		fmt.Fprintf(a.out, "Showing %d of %d (page %d)\n", len(page.Documents), page.Total, page.Page)
	}
	return nil
}

func (a *App) Versions(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	a.setCurrentDoc(args[0])
	return a.printTimeline(ctx, args[0])
}

// showTimeline is the refetch path used by the coordinators' callbacks.
func (a *App) showTimeline(ctx context.Context, documentID string) {
	if err := a.printTimeline(ctx, documentID); err != nil {
		a.log.Warn(ctx, "failed to refresh timeline", "document_id", documentID, "error", err)
	}
}

func (a *App) printTimeline(ctx context.Context, documentID string) error {
	doc, err := a.documentService.Get(ctx, documentID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", doc.Title, doc.ID)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATUS\tSIZE\tCREATED\tBY\tID\tCOMMENT")
	for _, v := range doc.SortedVersions() {
		label := v.Label()
		if v.IsLatest {
			label += "*"
		}
		by := v.Creator.DisplayName()
		if by == "" {
			by = v.CreatedBy
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			label, v.Status, units.HumanSize(float64(v.FileSize)),
			v.CreatedAt.Local().Format("2006-01-02 15:04"), by, v.ID, v.Comment)
	}
	return tw.Flush()
}

// resolveVersion finds a version by id, number ("3" or "v3") or "latest".
func (a *App) resolveVersion(ctx context.Context, documentID, ref string) (models.Document, models.DocumentVersion, error) {
	doc, err := a.documentService.Get(ctx, documentID)
	if err != nil {
		return doc, models.DocumentVersion{}, err
	}
	v, err := findVersion(doc, ref)
	return doc, v, err
}

func findVersion(doc models.Document, ref string) (models.DocumentVersion, error) {
	if strings.EqualFold(ref, "latest") {
		return doc.LatestVersion()
	}
	if v, ok := doc.FindVersion(ref); ok {
		return v, nil
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(ref), "v")); err == nil {
		for _, v := range doc.Versions {
			if v.VersionNumber == n {
				return v, nil
			}
		}
	}
	return models.DocumentVersion{}, fmt.Errorf("document %s has no version %q", doc.ID, ref)
}

func (a *App) Departments(ctx context.Context) error {
	deps, err := a.documentService.Departments(ctx)
	if err != nil {
		return err
	}
	for _, d := range deps {
		fmt.Fprintf(a.out, "%s\t%s\n", d.ID, d.Name)
	}
	return nil
}

func (a *App) Tags(ctx context.Context) error {
	tags, err := a.documentService.Tags(ctx)
	if err != nil {
		return err
	}
	for _, t := range tags {
		fmt.Fprintf(a.out, "%s\t%s\n", t.ID, t.Name)
	}
	return nil
}
