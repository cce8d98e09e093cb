// Package models defines the client-side shapes of documents, versions,
// signature stamps and validation results as the backend returns them.
package models

import (
	"fmt"
	"strings"
)

// VersionStatus is the approval status of one document version.
type VersionStatus string

const (
	StatusDraft           VersionStatus = "DRAFT"
	StatusPendingApproval VersionStatus = "PENDING_APPROVAL"
	StatusApproved        VersionStatus = "APPROVED"
	StatusRejected        VersionStatus = "REJECTED"
	StatusArchived        VersionStatus = "ARCHIVED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []VersionStatus{
	StatusDraft,
	StatusPendingApproval,
	StatusApproved,
	StatusRejected,
	StatusArchived,
}

func (s VersionStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Toggleable reports whether the draft/pending switch applies to s.
func (s VersionStatus) Toggleable() bool {
	return s == StatusDraft || s == StatusPendingApproval
}

func (s VersionStatus) String() string { return string(s) }

// ParseStatus accepts the wire names case-insensitively.
func ParseStatus(s string) (VersionStatus, error) {
	for _, v := range AllStatuses {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown version status %q", s)
}

var transitions = map[VersionStatus][]VersionStatus{
	StatusDraft:           {StatusPendingApproval, StatusApproved},
	StatusPendingApproval: {StatusDraft, StatusApproved, StatusRejected},
	StatusApproved:        {StatusArchived},
	StatusRejected:        {StatusArchived},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another.
func CanTransition(from, to VersionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ToggleTarget maps the draft/pending switch position to a status.
func ToggleTarget(checked bool) VersionStatus {
	if checked {
		return StatusPendingApproval
	}
	return StatusDraft
}
