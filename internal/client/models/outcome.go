package models

import "fmt"

// OutcomeKind tags an ApprovalOutcome.
type OutcomeKind int

const (
	// OutcomeFailed: nothing was recorded on the backend.
	OutcomeFailed OutcomeKind = iota
	// OutcomeSignatureAppliedOnly: the stamp was applied but the version
	// status was not moved to APPROVED.
	OutcomeSignatureAppliedOnly
	// OutcomeComplete: stamp applied and version approved.
	OutcomeComplete
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeComplete:
		return "complete"
	case OutcomeSignatureAppliedOnly:
		return "signature_applied_only"
	default:
		return "failed"
	}
}

// ApprovalOutcome reports how far an approval got. VersionID is set once
// the latest version has been resolved.
type ApprovalOutcome struct {
	Kind        OutcomeKind
	DocumentID  string
	VersionID   string
	SignatureID string
	Err         error
}

func (o ApprovalOutcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s (document %s): %v", o.Kind, o.DocumentID, o.Err)
	}
	return fmt.Sprintf("%s (document %s)", o.Kind, o.DocumentID)
}

// NeedsStatusRetry is true when only the status transition is outstanding.
func (o ApprovalOutcome) NeedsStatusRetry() bool {
	return o.Kind == OutcomeSignatureAppliedOnly
}
