package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/client/notify"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
)

// Continuation is the follow-up action (view, download) gated by a
// validation result.
type Continuation func(ctx context.Context) error

// ValidationState is what the validation surface shows.
type ValidationState struct {
	Open       bool
	Loading    bool
	DocumentID string
	VersionID  string
	Result     *models.ValidationResult
	// CanProceed is true when a continuation is waiting for the user.
	CanProceed bool
}

// Render writes the result the way the CLI shows it: a success line with
// the signature count, or the issues in server order.
func (s ValidationState) Render(w io.Writer) error {
	if s.Result == nil {
		_, err := fmt.Fprintln(w, "No validation result.")
		return err
	}
	r := s.Result
	if r.IsValid {
		if _, err := fmt.Fprintln(w, "Version is valid."); err != nil {
			return err
		}
		if r.Validation.HasSignatures {
			if _, err := fmt.Fprintf(w, "Signatures: %d\n", r.Validation.SignatureCount); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := fmt.Fprintf(w, "Validation found %d issue(s):\n", len(r.Issues)); err != nil {
		return err
	}
	for i, issue := range r.Issues {
		if _, err := fmt.Fprintf(w, "  %d. %s\n", i+1, issue); err != nil {
			return err
		}
	}
	return nil
}

// ValidationCoordinator runs the remote integrity check for a version and
// holds the result until the user proceeds or cancels. It never runs a
// continuation on its own.
type ValidationCoordinator struct {
	client              client.Client
	notifier            notify.Notifier
	confirmer           notify.Confirmer
	log                 logging.Logger
	allowProceedOnError bool

	mu      sync.Mutex
	session uint64
	cancel  context.CancelFunc
	state   ValidationState
	next    Continuation
}

// NewValidationCoordinator builds a coordinator. With allowProceedOnError
// set, a failed remote check asks confirmer whether to run the continuation
// anyway.
func NewValidationCoordinator(c client.Client, n notify.Notifier, confirmer notify.Confirmer, log logging.Logger, allowProceedOnError bool) *ValidationCoordinator {
	return &ValidationCoordinator{
		client:              c,
		notifier:            n,
		confirmer:           confirmer,
		log:                 log.With("component", "validation"),
		allowProceedOnError: allowProceedOnError,
	}
}

// ValidateVersion checks the version and opens the result surface whatever
// the outcome. onProceed is stored and only runs from Proceed. The returned
// bool is the server's isValid.
//
// When the remote check fails and the user proceeds anyway, onProceed runs
// at once and a successful run is reported as ErrValidationBypassed.
func (v *ValidationCoordinator) ValidateVersion(ctx context.Context, documentID, versionID string, onProceed Continuation) (bool, error) {
	return v.validate(ctx, documentID, versionID, onProceed)
}

// ValidateVersionWithModal is the standalone "Validate" action: the result
// is shown, nothing runs afterwards.
func (v *ValidationCoordinator) ValidateVersionWithModal(ctx context.Context, documentID, versionID string) (bool, error) {
	return v.validate(ctx, documentID, versionID, nil)
}

func (v *ValidationCoordinator) validate(ctx context.Context, documentID, versionID string, onProceed Continuation) (bool, error) {
	if err := common.RequireIDs(documentID, versionID); err != nil {
		return false, err
	}

	sctx, id := v.begin(ctx, documentID, versionID)
	result, err := v.client.ValidateVersion(sctx, documentID, versionID)

	v.mu.Lock()
	if id != v.session {
		v.mu.Unlock()
		v.log.Debug(ctx, "dropping stale validation response", "document_id", documentID, "version_id", versionID)
		return false, ErrSuperseded
	}
	v.release()

	if err != nil {
		v.state = ValidationState{}
		v.next = nil
		v.mu.Unlock()
		return false, v.fail(ctx, documentID, versionID, onProceed, err)
	}

	v.state = ValidationState{
		Open:       true,
		DocumentID: documentID,
		VersionID:  versionID,
		Result:     &result,
		CanProceed: onProceed != nil,
	}
	v.next = onProceed
	v.mu.Unlock()

	v.log.Debug(ctx, "version validated", "document_id", documentID, "version_id", versionID, "valid", result.IsValid, "issues", len(result.Issues))
	return result.IsValid, nil
}

// begin replaces whatever session was in flight.
func (v *ValidationCoordinator) begin(ctx context.Context, documentID, versionID string) (context.Context, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
	}
	sctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.session++
	v.next = nil
	v.state = ValidationState{Loading: true, DocumentID: documentID, VersionID: versionID}
	return sctx, v.session
}

// release frees the session context. Caller holds mu.
func (v *ValidationCoordinator) release() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *ValidationCoordinator) fail(ctx context.Context, documentID, versionID string, onProceed Continuation, err error) error {
	v.log.Error(ctx, "version validation failed", "document_id", documentID, "version_id", versionID, "error", err)
	v.notifier.Error(client.Message(err, "Failed to validate document version"))
	err = fmt.Errorf("validate version %s: %w", versionID, err)

	if onProceed == nil || !v.allowProceedOnError {
		return err
	}

	ok, cerr := v.confirmer.Confirm(ctx, "Validation could not be completed. Proceed anyway?")
	if cerr != nil {
		return errors.Join(err, cerr)
	}
	if !ok {
		return err
	}
	v.log.Warn(ctx, "proceeding without validation", "document_id", documentID, "version_id", versionID)
	if perr := onProceed(ctx); perr != nil {
		return errors.Join(err, perr)
	}
	return fmt.Errorf("%w: %w", ErrValidationBypassed, err)
}

// Proceed closes the surface and runs the stored continuation, if any. A
// continuation runs at most once.
func (v *ValidationCoordinator) Proceed(ctx context.Context) error {
	v.mu.Lock()
	if !v.state.Open {
		v.mu.Unlock()
		return ErrValidationNotOpen
	}
	next := v.next
	v.next = nil
	v.state = ValidationState{}
	v.mu.Unlock()

	if next == nil {
		return nil
	}
	return next(ctx)
}

// Cancel closes the surface, drops the continuation and aborts a request
// still in flight.
func (v *ValidationCoordinator) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.release()
	v.session++
	v.next = nil
	v.state = ValidationState{}
}

// State returns a snapshot of the surface.
func (v *ValidationCoordinator) State() ValidationState {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := v.state
	if st.Result != nil {
		r := *st.Result
		r.Issues = append([]string(nil), r.Issues...)
		st.Result = &r
	}
	return st
}
