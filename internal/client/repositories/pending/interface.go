// Package pending keeps approvals whose signature was applied but whose
// status transition to APPROVED did not go through, so the transition can
// be retried on its own later.
package pending

import (
	"context"
	"time"
)

// Approval is one outstanding status transition.
type Approval struct {
	DocumentID  string
	VersionID   string
	SignatureID string
	LastError   string
	Attempts    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	// Save inserts a record or, when the document already has one, bumps its
	// attempt counter and replaces the version, signature and error.
	Save(ctx context.Context, a Approval) error
	Get(ctx context.Context, documentID string) (*Approval, error)
	List(ctx context.Context) ([]Approval, error)
	Delete(ctx context.Context, documentID string) error
}
