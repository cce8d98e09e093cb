package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophdocs/internal/client/models"
	"github.com/dmitrijs2005/gophdocs/internal/common"
)

// Approve walks the signature flow: load stamps, pick one, confirm, approve.
// Leaving the prompt empty cancels without touching the backend.
func (a *App) Approve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	documentID := args[0]
	a.setCurrentDoc(documentID)

	done := a.approval.ShowApprovalFlow(ctx, documentID)
	fmt.Fprintln(a.out, "Loading signature stamps...")
	if err := <-done; err != nil {
		a.approval.CancelSignatureSelection()
		return err
	}

	stamps := a.approval.State().Signatures
	if len(stamps) == 0 {
		a.approval.CancelSignatureSelection()
		fmt.Fprintln(a.out, "No active signature stamps available")
		return nil
	}

	for {
		for i, s := range stamps {
			fmt.Fprintf(a.out, "%d) %s", i+1, s.Name)
			if s.Description != "" {
				fmt.Fprintf(a.out, " - %s", s.Description)
			}
			fmt.Fprintln(a.out)
		}

		choice, err := getSimpleText(a.reader, "Select a stamp (empty to cancel)", a.out)
		if err != nil || choice == "" {
			a.approval.CancelSignatureSelection()
			return err
		}
		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(stamps) {
			fmt.Fprintln(a.out, "Invalid choice")
			continue
		}
		if err := a.approval.SelectSignature(stamps[n-1].ID); err != nil {
			a.approval.CancelSignatureSelection()
			return err
		}

		ok, err := a.confirmer.Confirm(ctx, fmt.Sprintf("Approve with %q?", stamps[n-1].Name))
		if err != nil || !ok {
			a.approval.CancelSignatureSelection()
			return err
		}

		outcome, err := a.approval.ApproveWithSignature(ctx)
		if outcome.NeedsStatusRetry() {
			fmt.Fprintln(a.out, "Run 'retry "+documentID+"' to finish the approval.")
		}
		a.approval.CancelSignatureSelection()
		return err
	}
}

// Retry finishes approvals whose signature was applied but whose status was
// not updated. With a document id only that one is retried.
func (a *App) Retry(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	var todo []models.ApprovalOutcome
	if len(args) == 1 {
		o, err := a.approval.PendingRetry(ctx, args[0])
		switch {
		case errors.Is(err, common.ErrNotFound):
		case err != nil:
			return err
		default:
			todo = append(todo, o)
		}
	} else {
		list, err := a.approval.PendingRetries(ctx)
		if err != nil {
			return err
		}
		todo = list
	}
	if len(todo) == 0 {
		fmt.Fprintln(a.out, "Nothing to retry")
		return nil
	}

	var lastErr error
	for _, o := range todo {
		fmt.Fprintf(a.out, "Retrying approval of %s (last error: %v)\n", o.DocumentID, o.Err)
		if _, err := a.approval.RetryStatusTransition(ctx, o); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
