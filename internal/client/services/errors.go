package services

import "errors"

var (
	ErrNoSignatureSelected = errors.New("no signature stamp selected")
	ErrApprovalInFlight    = errors.New("approval already in progress")
	ErrNoApprovalSession   = errors.New("approval flow is not open")
	ErrNothingToRetry      = errors.New("no pending status transition")

	ErrValidationNotOpen = errors.New("no validation result to proceed from")
	// ErrValidationBypassed wraps a failed remote check after the user chose
	// to proceed and the continuation succeeded.
	ErrValidationBypassed = errors.New("proceeded without validation")

	// ErrSuperseded is returned when the session a response belonged to was
	// cancelled or replaced before the response arrived. The response is
	// discarded.
	ErrSuperseded = errors.New("session closed before response arrived")

	ErrStatusNotToggleable = errors.New("version status cannot be toggled")
	ErrInvalidTransition   = errors.New("invalid status transition")

	ErrLastVersion      = errors.New("cannot delete the only version of a document")
	ErrCompareSelection = errors.New("select exactly two different versions to compare")
	ErrEmptyUpload      = errors.New("upload has no file")
)
