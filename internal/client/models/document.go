package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrNoVersions       = errors.New("document has no versions")
	ErrBadVersionNumber = errors.New("version number must be positive")
	ErrDuplicateVersion = errors.New("duplicate version number")
	ErrLatestVersion    = errors.New("document must have exactly one latest version")
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// DisplayName prefers the full name and falls back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DocumentVersion is one immutable snapshot of a document. Only Status and
// IsLatest change after creation.
type DocumentVersion struct {
	ID            string        `json:"id"`
	VersionNumber int           `json:"versionNumber"`
	Status        VersionStatus `json:"status"`
	IsLatest      bool          `json:"isLatest"`
	FileName      string        `json:"fileName,omitempty"`
	FileSize      int64         `json:"fileSize"`
	MimeType      string        `json:"mimeType"`
	Checksum      string        `json:"checksum"`
	CreatedAt     time.Time     `json:"createdAt"`
	CreatedBy     string        `json:"createdBy,omitempty"`
	Creator       *User         `json:"creator,omitempty"`
	Comment       string        `json:"comment,omitempty"`
}

func (v DocumentVersion) Label() string {
	return fmt.Sprintf("v%d", v.VersionNumber)
}

type Document struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	SecurityLevel string            `json:"securityLevel,omitempty"`
	Tags          []Tag             `json:"tags,omitempty"`
	Department    *Department       `json:"department,omitempty"`
	Creator       *User             `json:"creator,omitempty"`
	Versions      []DocumentVersion `json:"versions,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// SortedVersions returns a copy of the versions, newest first.
func (d *Document) SortedVersions() []DocumentVersion {
	out := make([]DocumentVersion, len(d.Versions))
	copy(out, d.Versions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VersionNumber > out[j].VersionNumber
	})
	return out
}

// LatestVersion returns the version flagged as latest. When the backend
// omitted the flag the highest version number is used.
func (d *Document) LatestVersion() (DocumentVersion, error) {
	if len(d.Versions) == 0 {
		return DocumentVersion{}, ErrNoVersions
	}
	for _, v := range d.Versions {
		if v.IsLatest {
			return v, nil
		}
	}
	return d.SortedVersions()[0], nil
}

// FindVersion looks a version up by id.
func (d *Document) FindVersion(versionID string) (DocumentVersion, bool) {
	for _, v := range d.Versions {
		if v.ID == versionID {
			return v, true
		}
	}
	return DocumentVersion{}, false
}

// CanDeleteVersion reports whether removing a version would still leave the
// document with at least one.
func (d *Document) CanDeleteVersion() bool {
	return len(d.Versions) > 1
}

// Validate checks the version invariants: positive unique version numbers
// and exactly one latest version.
func (d *Document) Validate() error {
	if len(d.Versions) == 0 {
		return ErrNoVersions
	}
	seen := make(map[int]struct{}, len(d.Versions))
	latest := 0
	for _, v := range d.Versions {
		if v.VersionNumber <= 0 {
			return fmt.Errorf("%w: %s has %d", ErrBadVersionNumber, v.ID, v.VersionNumber)
		}
		if _, dup := seen[v.VersionNumber]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateVersion, v.VersionNumber)
		}
		seen[v.VersionNumber] = struct{}{}
		if v.IsLatest {
			latest++
		}
	}
	if latest != 1 {
		return fmt.Errorf("%w: found %d", ErrLatestVersion, latest)
	}
	return nil
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Search       string
	Status       VersionStatus
	DepartmentID string
	TagID        string
	Page         int
	Limit        int
}

// DocumentPage is one page of a document listing.
type DocumentPage struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
}
