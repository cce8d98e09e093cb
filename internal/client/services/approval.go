package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/client/notify"
	"github.com/dmitrijs2005/gophdocs/internal/client/repositories/pending"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
)

// Phase of an approval session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingSignatures
	PhaseAwaitingSelection
	PhaseSelected
	PhaseApproving
)

func (p Phase) String() string {
	switch p {
	case PhaseLoadingSignatures:
		return "loading_signatures"
	case PhaseAwaitingSelection:
		return "awaiting_selection"
	case PhaseSelected:
		return "selected"
	case PhaseApproving:
		return "approving"
	default:
		return "idle"
	}
}

// ApprovalState is what the signature selection surface shows.
type ApprovalState struct {
	Phase               Phase
	Open                bool
	DocumentID          string
	SelectedSignatureID string
	Signatures          []models.SignatureStamp
	LoadingSignatures   bool
	Approving           bool
}

// ApprovedFunc is called once per document that reaches APPROVED, so the
// owner of the document list can refetch it.
type ApprovedFunc func(ctx context.Context, documentID string)

// ApprovalCoordinator drives the select-stamp-then-approve flow:
// apply the stamp, fetch the document, move its latest version to APPROVED.
// The two remote halves are not atomic; a stamp applied without the status
// change is reported as models.OutcomeSignatureAppliedOnly and recorded so
// only the status half is retried.
type ApprovalCoordinator struct {
	client     client.Client
	notifier   notify.Notifier
	store      pending.Repository
	log        logging.Logger
	onApproved ApprovedFunc

	mu      sync.Mutex
	session uint64
	cancel  context.CancelFunc
	state   ApprovalState
	// inFlight is the document whose approval is running. It outlives the
	// session so a cancelled surface cannot start a second approval.
	inFlight string
}

// NewApprovalCoordinator builds a coordinator. store and onApproved may be
// nil.
func NewApprovalCoordinator(c client.Client, n notify.Notifier, store pending.Repository, log logging.Logger, onApproved ApprovedFunc) *ApprovalCoordinator {
	return &ApprovalCoordinator{
		client:     c,
		notifier:   n,
		store:      store,
		log:        log.With("component", "approval"),
		onApproved: onApproved,
	}
}

// ShowApprovalFlow opens the selection surface for documentID and starts
// loading the active signature stamps. The surface is open, in the loading
// phase, when this returns. The channel receives the load result once and
// is then closed.
func (a *ApprovalCoordinator) ShowApprovalFlow(ctx context.Context, documentID string) <-chan error {
	done := make(chan error, 1)

	if err := common.RequireIDs(documentID); err != nil {
		done <- err
		close(done)
		return done
	}

	a.mu.Lock()
	if a.state.Approving || a.inFlight != "" {
		a.mu.Unlock()
		done <- ErrApprovalInFlight
		close(done)
		return done
	}
	a.release()
	sctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.session++
	id := a.session
	a.state = ApprovalState{
		Phase:             PhaseLoadingSignatures,
		Open:              true,
		DocumentID:        documentID,
		LoadingSignatures: true,
	}
	a.mu.Unlock()

	go func() {
		defer close(done)
		done <- a.loadSignatures(sctx, id, documentID)
	}()
	return done
}

func (a *ApprovalCoordinator) loadSignatures(ctx context.Context, id uint64, documentID string) error {
	stamps, err := a.client.ListActiveSignatures(ctx)

	a.mu.Lock()
	if id != a.session {
		a.mu.Unlock()
		a.log.Debug(ctx, "dropping stale signature list", "document_id", documentID)
		return ErrSuperseded
	}
	a.release()
	a.state.LoadingSignatures = false
	switch {
	case a.state.Approving:
	case a.state.SelectedSignatureID != "":
		a.state.Phase = PhaseSelected
	default:
		a.state.Phase = PhaseAwaitingSelection
	}
	if err != nil {
		a.state.Signatures = nil
		a.mu.Unlock()
		a.log.Error(ctx, "failed to load signature stamps", "document_id", documentID, "error", err)
		a.notifier.Error(client.Message(err, "Failed to load signature stamps"))
		return fmt.Errorf("list signatures: %w", err)
	}
	a.state.Signatures = models.ActiveOnly(stamps)
	a.mu.Unlock()
	return nil
}

// SelectSignature records the chosen stamp. The last call wins.
func (a *ApprovalCoordinator) SelectSignature(signatureID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.state.Open {
		return ErrNoApprovalSession
	}
	if a.state.Approving {
		return ErrApprovalInFlight
	}
	a.state.SelectedSignatureID = signatureID
	if !a.state.LoadingSignatures {
		if signatureID == "" {
			a.state.Phase = PhaseAwaitingSelection
		} else {
			a.state.Phase = PhaseSelected
		}
	}
	return nil
}

// ApproveWithSignature applies the selected stamp and approves the
// document's latest version. Without a document or a selected stamp it
// warns and issues no remote call. A second call while one is running is
// refused.
func (a *ApprovalCoordinator) ApproveWithSignature(ctx context.Context) (models.ApprovalOutcome, error) {
	a.mu.Lock()
	if a.state.Approving || a.inFlight != "" {
		a.mu.Unlock()
		return models.ApprovalOutcome{Kind: models.OutcomeFailed, Err: ErrApprovalInFlight}, ErrApprovalInFlight
	}
	documentID, signatureID := a.state.DocumentID, a.state.SelectedSignatureID
	if documentID == "" || signatureID == "" {
		a.mu.Unlock()
		a.notifier.Warning("Please select a signature stamp")
		return models.ApprovalOutcome{Kind: models.OutcomeFailed, DocumentID: documentID, Err: ErrNoSignatureSelected}, ErrNoSignatureSelected
	}
	a.state.Approving = true
	a.state.Phase = PhaseApproving
	a.inFlight = documentID
	id := a.session
	a.mu.Unlock()

	outcome := a.approve(ctx, documentID, signatureID)
	a.finish(ctx, id, outcome)
	return outcome, outcome.Err
}

func (a *ApprovalCoordinator) approve(ctx context.Context, documentID, signatureID string) models.ApprovalOutcome {
	outcome := models.ApprovalOutcome{DocumentID: documentID, SignatureID: signatureID}

	_, err := a.client.ApplySignature(ctx, models.ApplySignatureRequest{
		DocumentID:       documentID,
		SignatureStampID: signatureID,
		Reason:           common.ApprovalReason,
	})
	if err != nil {
		outcome.Kind = models.OutcomeFailed
		outcome.Err = fmt.Errorf("apply signature: %w", err)
		return outcome
	}
	a.log.Info(ctx, "signature applied", "document_id", documentID, "signature_id", signatureID)

	versionID, err := a.approveLatest(ctx, documentID)
	outcome.VersionID = versionID
	if err != nil {
		outcome.Kind = models.OutcomeSignatureAppliedOnly
		outcome.Err = err
		return outcome
	}
	outcome.Kind = models.OutcomeComplete
	return outcome
}

// approveLatest moves the document's current latest version to APPROVED
// and returns its id.
func (a *ApprovalCoordinator) approveLatest(ctx context.Context, documentID string) (string, error) {
	doc, err := a.client.GetDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("document %s: %w", documentID, err)
	}
	latest, err := doc.LatestVersion()
	if err != nil {
		return "", fmt.Errorf("latest version: %w", err)
	}
	if err := a.client.UpdateVersionStatus(ctx, documentID, latest.ID, models.StatusApproved); err != nil {
		return latest.ID, fmt.Errorf("update status of %s: %w", latest.Label(), err)
	}
	return latest.ID, nil
}

func (a *ApprovalCoordinator) finish(ctx context.Context, id uint64, outcome models.ApprovalOutcome) {
	a.mu.Lock()
	a.inFlight = ""
	if id == a.session {
		if outcome.Kind == models.OutcomeComplete {
			a.release()
			a.state = ApprovalState{}
		} else {
			a.state.Approving = false
			a.state.SelectedSignatureID = ""
			a.state.Phase = PhaseAwaitingSelection
		}
	}
	a.mu.Unlock()

	switch outcome.Kind {
	case models.OutcomeComplete:
		a.log.Info(ctx, "document approved", "document_id", outcome.DocumentID, "version_id", outcome.VersionID)
		a.forget(ctx, outcome.DocumentID)
		a.notifier.Success("Document approved successfully")
		if a.onApproved != nil {
			a.onApproved(ctx, outcome.DocumentID)
		}
	case models.OutcomeSignatureAppliedOnly:
		a.log.Error(ctx, "signature applied but status not updated", "document_id", outcome.DocumentID, "version_id", outcome.VersionID, "error", outcome.Err)
		a.remember(ctx, outcome)
		a.notifier.Error("Signature applied, but the version could not be approved: " +
			client.Message(outcome.Err, "status update failed") + ". Retry the approval to finish.")
	default:
		a.log.Error(ctx, "approval failed", "document_id", outcome.DocumentID, "error", outcome.Err)
		a.notifier.Error(client.Message(outcome.Err, "Failed to approve document"))
	}
}

func (a *ApprovalCoordinator) remember(ctx context.Context, outcome models.ApprovalOutcome) {
	if a.store == nil {
		return
	}
	err := a.store.Save(ctx, pending.Approval{
		DocumentID:  outcome.DocumentID,
		VersionID:   outcome.VersionID,
		SignatureID: outcome.SignatureID,
		LastError:   outcome.Err.Error(),
	})
	if err != nil {
		a.log.Error(ctx, "failed to record pending approval", "document_id", outcome.DocumentID, "error", err)
	}
}

func (a *ApprovalCoordinator) forget(ctx context.Context, documentID string) {
	if a.store == nil {
		return
	}
	if err := a.store.Delete(ctx, documentID); err != nil {
		a.log.Warn(ctx, "failed to clear pending approval", "document_id", documentID, "error", err)
	}
}

// CancelSignatureSelection closes the surface without calling the backend.
// A stamp list still loading is aborted. An approval already submitted runs
// to completion but no longer touches the surface, and no new flow can be
// opened until it finishes.
func (a *ApprovalCoordinator) CancelSignatureSelection() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.release()
	a.session++
	a.state = ApprovalState{}
}

// release frees the session context. Caller holds mu.
func (a *ApprovalCoordinator) release() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// State returns a snapshot of the surface.
func (a *ApprovalCoordinator) State() ApprovalState {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.state
	st.Signatures = append([]models.SignatureStamp(nil), st.Signatures...)
	return st
}

// PendingRetries lists approvals whose status half is still outstanding.
func (a *ApprovalCoordinator) PendingRetries(ctx context.Context) ([]models.ApprovalOutcome, error) {
	if a.store == nil {
		return nil, nil
	}
	list, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ApprovalOutcome, 0, len(list))
	for _, p := range list {
		out = append(out, pendingOutcome(p))
	}
	return out, nil
}

// PendingRetry returns the outstanding approval of one document, or
// common.ErrNotFound when it has none.
func (a *ApprovalCoordinator) PendingRetry(ctx context.Context, documentID string) (models.ApprovalOutcome, error) {
	if err := common.RequireIDs(documentID); err != nil {
		return models.ApprovalOutcome{}, err
	}
	if a.store == nil {
		return models.ApprovalOutcome{}, common.ErrNotFound
	}
	p, err := a.store.Get(ctx, documentID)
	if err != nil {
		return models.ApprovalOutcome{}, err
	}
	return pendingOutcome(*p), nil
}

func pendingOutcome(p pending.Approval) models.ApprovalOutcome {
	return models.ApprovalOutcome{
		Kind:        models.OutcomeSignatureAppliedOnly,
		DocumentID:  p.DocumentID,
		VersionID:   p.VersionID,
		SignatureID: p.SignatureID,
		Err:         errors.New(p.LastError),
	}
}

// RetryStatusTransition finishes an approval whose stamp is already applied:
// only the status change is attempted again.
func (a *ApprovalCoordinator) RetryStatusTransition(ctx context.Context, prev models.ApprovalOutcome) (models.ApprovalOutcome, error) {
	if !prev.NeedsStatusRetry() {
		return prev, ErrNothingToRetry
	}
	a.mu.Lock()
	busy := a.inFlight != "" && a.inFlight == prev.DocumentID
	a.mu.Unlock()
	if busy {
		return prev, ErrApprovalInFlight
	}

	outcome := prev
	versionID, err := a.approveLatest(ctx, prev.DocumentID)
	if versionID != "" {
		outcome.VersionID = versionID
	}
	if err != nil {
		outcome.Err = err
		a.log.Error(ctx, "status retry failed", "document_id", prev.DocumentID, "error", err)
		a.remember(ctx, outcome)
		a.notifier.Error(client.Message(err, "Failed to approve document"))
		return outcome, err
	}

	outcome.Kind = models.OutcomeComplete
	outcome.Err = nil
	a.log.Info(ctx, "document approved on retry", "document_id", outcome.DocumentID, "version_id", outcome.VersionID)
	a.forget(ctx, outcome.DocumentID)
	a.notifier.Success("Document approved successfully")
	if a.onApproved != nil {
		a.onApproved(ctx, outcome.DocumentID)
	}
	return outcome, nil
}
