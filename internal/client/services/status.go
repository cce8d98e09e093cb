package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/client/client"
	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/client/notify"
	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
)

// RefetchFunc asks the owner of the version list to reload it.
type RefetchFunc func(ctx context.Context)

// StatusToggle changes a version's status directly, without the signature
// flow. Toggle moves between DRAFT and PENDING_APPROVAL only and can never
// reach APPROVED.
type StatusToggle struct {
	client    client.Client
	notifier  notify.Notifier
	log       logging.Logger
	onRefetch RefetchFunc
}

func NewStatusToggle(c client.Client, n notify.Notifier, log logging.Logger, onRefetch RefetchFunc) *StatusToggle {
	return &StatusToggle{
		client:    c,
		notifier:  n,
		log:       log.With("component", "status"),
		onRefetch: onRefetch,
	}
}

// Toggle requests PENDING_APPROVAL when checked and DRAFT otherwise. Versions
// outside those two statuses are refused without a remote call.
func (s *StatusToggle) Toggle(ctx context.Context, documentID string, version models.DocumentVersion, checked bool) error {
	if err := common.RequireIDs(documentID, version.ID); err != nil {
		return err
	}
	if !version.Status.Toggleable() {
		s.notifier.Warning(fmt.Sprintf("Status %s cannot be toggled", version.Status))
		return fmt.Errorf("%w: %s", ErrStatusNotToggleable, version.Status)
	}
	return s.apply(ctx, documentID, version, models.ToggleTarget(checked))
}

// Reject moves a version awaiting approval to REJECTED.
func (s *StatusToggle) Reject(ctx context.Context, documentID string, version models.DocumentVersion) error {
	return s.transition(ctx, documentID, version, models.StatusRejected)
}

// Archive retires an APPROVED or REJECTED version.
func (s *StatusToggle) Archive(ctx context.Context, documentID string, version models.DocumentVersion) error {
	return s.transition(ctx, documentID, version, models.StatusArchived)
}

func (s *StatusToggle) transition(ctx context.Context, documentID string, version models.DocumentVersion, target models.VersionStatus) error {
	if err := common.RequireIDs(documentID, version.ID); err != nil {
		return err
	}
	if !models.CanTransition(version.Status, target) {
		s.notifier.Warning(fmt.Sprintf("Cannot move %s from %s to %s", version.Label(), version.Status, target))
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, version.Status, target)
	}
	return s.apply(ctx, documentID, version, target)
}

func (s *StatusToggle) apply(ctx context.Context, documentID string, version models.DocumentVersion, target models.VersionStatus) error {
	if err := s.client.UpdateVersionStatus(ctx, documentID, version.ID, target); err != nil {
		s.log.Error(ctx, "status update failed", "document_id", documentID, "version_id", version.ID, "target", target, "error", err)
		s.notifier.Error(client.Message(err, "Failed to update version status"))
		return fmt.Errorf("update status of %s: %w", version.Label(), err)
	}

	s.log.Info(ctx, "status updated", "document_id", documentID, "version_id", version.ID, "from", version.Status, "to", target)
	s.notifier.Success(fmt.Sprintf("Version %s status updated to %s", version.Label(), target))
	if s.onRefetch != nil {
		s.onRefetch(ctx)
	}
	return nil
}
