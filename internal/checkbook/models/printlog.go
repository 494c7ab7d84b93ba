package models

import (
	"slices"
	"time"

	"github.com/google/uuid"

	dErrors "chequeprint/pkg/domain-errors"
)

// PrintLogEntry is the append-only audit record of one print or reprint batch.
type PrintLogEntry struct {
	ID              uuid.UUID     `json:"id"`
	AccountNumber   string        `json:"account_number"`
	AccountBranch   string        `json:"account_branch"`
	FirstLeafNumber int64         `json:"first_leaf_number"`
	LastLeafNumber  int64         `json:"last_leaf_number"`
	TotalLeaves     int           `json:"total_leaves"`
	DocumentType    DocumentType  `json:"document_type"`
	OperationType   OperationType `json:"operation_type"`
	ReprintReason   string        `json:"reprint_reason,omitempty"`
	PrintedBy       string        `json:"printed_by"`
	PrintDate       time.Time     `json:"print_date"`
	LeafNumbers     []int64       `json:"leaf_numbers"`
}

// NewPrintLogEntry builds an entry for the given leaves, deriving the range
// fields from the leaf numbers themselves.
func NewPrintLogEntry(
	account, branch string,
	docType DocumentType,
	op OperationType,
	reason, printedBy string,
	leaves []int64,
	now time.Time,
) (*PrintLogEntry, error) {
	if account == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "print log requires an account number")
	}
	if printedBy == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "print log requires an operator")
	}
	if len(leaves) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "print log requires at least one leaf")
	}
	if op == OperationReprint && reason == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reprint log requires a reason")
	}
	sorted := slices.Clone(leaves)
	slices.Sort(sorted)
	return &PrintLogEntry{
		ID:              uuid.New(),
		AccountNumber:   account,
		AccountBranch:   branch,
		FirstLeafNumber: sorted[0],
		LastLeafNumber:  sorted[len(sorted)-1],
		TotalLeaves:     len(sorted),
		DocumentType:    docType,
		OperationType:   op,
		ReprintReason:   reason,
		PrintedBy:       printedBy,
		PrintDate:       now,
		LeafNumbers:     sorted,
	}, nil
}

// LeafStatusReport is the reconciliation outcome for one leaf.
type LeafStatusReport struct {
	LeafNumber int64 `json:"leaf_number"`
	IsPrinted  bool  `json:"is_printed"`
	CanReprint bool  `json:"can_reprint"`
}

// Blocked reports whether printing this leaf must be refused.
func (r LeafStatusReport) Blocked() bool {
	return r.IsPrinted && !r.CanReprint
}
