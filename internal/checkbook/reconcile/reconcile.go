// Package reconcile derives per-leaf printed state from the local print log.
// The bank's own status flag is not consulted: it may lag or be reset.
package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/requestcontext"
)

// LogReader is the read side of the print log.
type LogReader interface {
	FindByAccount(ctx context.Context, accountNumber string) ([]*models.PrintLogEntry, error)
}

// Authorizer grants the reprint capability. It is checked, never assumed.
type Authorizer interface {
	CanReprint(ctx context.Context) bool
}

// PermissionAuthorizer grants reprints to operators holding cheque:reprint.
type PermissionAuthorizer struct{}

func (PermissionAuthorizer) CanReprint(ctx context.Context) bool {
	return requestcontext.HasPermission(ctx, requestcontext.PermissionReprint)
}

type Reconciler struct {
	logs       LogReader
	authorizer Authorizer
}

type Option func(*Reconciler)

func WithAuthorizer(a Authorizer) Option {
	return func(r *Reconciler) {
		r.authorizer = a
	}
}

func New(logs LogReader, opts ...Option) *Reconciler {
	r := &Reconciler{logs: logs, authorizer: PermissionAuthorizer{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckStatus reports, for each requested leaf in order, whether a PRINT log
// already covers it and whether the caller may reprint it. Reprinting needs
// both the capability and a non-empty reason.
func (r *Reconciler) CheckStatus(ctx context.Context, accountNumber string, leaves []int64, reprintReason string) ([]models.LeafStatusReport, error) {
	printed, err := r.Printed(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	canReprint := strings.TrimSpace(reprintReason) != "" && r.authorizer.CanReprint(ctx)

	out := make([]models.LeafStatusReport, len(leaves))
	for i, leaf := range leaves {
		out[i] = models.LeafStatusReport{
			LeafNumber: leaf,
			IsPrinted:  printed[leaf],
			CanReprint: canReprint,
		}
	}
	return out, nil
}

// Printed returns the set of leaves covered by a PRINT entry for the account.
// REPRINT entries never change a leaf's printed state.
func (r *Reconciler) Printed(ctx context.Context, accountNumber string) (map[int64]bool, error) {
	entries, err := r.logs.FindByAccount(ctx, accountNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read print log")
	}
	printed := make(map[int64]bool)
	for _, e := range entries {
		if e.OperationType != models.OperationPrint {
			continue
		}
		for _, n := range e.LeafNumbers {
			printed[n] = true
		}
	}
	return printed, nil
}

// Blocked returns the leaves that must not be printed.
func Blocked(reports []models.LeafStatusReport) []int64 {
	var out []int64
	for _, r := range reports {
		if r.Blocked() {
			out = append(out, r.LeafNumber)
		}
	}
	return out
}

// Guard refuses the whole batch when any leaf is blocked. Partial prints would
// fragment the physical book sequence.
func Guard(reports []models.LeafStatusReport) error {
	blocked := Blocked(reports)
	if len(blocked) == 0 {
		return nil
	}
	return dErrors.New(dErrors.CodePrintBlocked, fmt.Sprintf(
		"leaves %s were already printed; reprint requires authorization and a reason", joinLeaves(blocked)))
}

func joinLeaves(leaves []int64) string {
	const maxListed = 10
	parts := make([]string, 0, min(len(leaves), maxListed)+1)
	for i, n := range leaves {
		if i == maxListed {
			parts = append(parts, fmt.Sprintf("and %d more", len(leaves)-maxListed))
			break
		}
		parts = append(parts, strconv.FormatInt(n, 10))
	}
	return strings.Join(parts, ", ")
}
