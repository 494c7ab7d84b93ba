package handler

import (
	"strings"

	"chequeprint/internal/checkbook/models"
	"chequeprint/internal/checkbook/service"
	dErrors "chequeprint/pkg/domain-errors"
)

// PrintRequest is the body of the preview and print endpoints. Every field is
// optional.
type PrintRequest struct {
	DocumentType  string `json:"document_type,omitempty"`
	OperationType string `json:"operation_type,omitempty"`
	ReprintReason string `json:"reprint_reason,omitempty"`
	LeafFrom      int64  `json:"leaf_from,omitempty"`
	LeafTo        int64  `json:"leaf_to,omitempty"`

	documentType models.DocumentType
}

func (r *PrintRequest) Validate() error {
	r.DocumentType = strings.TrimSpace(strings.ToLower(r.DocumentType))
	r.OperationType = strings.TrimSpace(strings.ToUpper(r.OperationType))
	r.ReprintReason = strings.TrimSpace(r.ReprintReason)
	if r.DocumentType != "" {
		dt, err := models.ParseDocumentType(r.DocumentType)
		if err != nil {
			return err
		}
		r.documentType = dt
	}
	op, err := models.ParseOperationType(r.OperationType)
	if err != nil {
		return err
	}
	r.OperationType = string(op)
	if r.LeafFrom < 0 || r.LeafTo < 0 {
		return dErrors.New(dErrors.CodeValidation, "leaf bounds must be positive")
	}
	return nil
}

func (r *PrintRequest) toService(account string) service.PrintRequest {
	return service.PrintRequest{
		AccountNumber: account,
		DocumentType:  r.documentType,
		Operation:     models.OperationType(r.OperationType),
		ReprintReason: r.ReprintReason,
		LeafFrom:      r.LeafFrom,
		LeafTo:        r.LeafTo,
	}
}

type QueryResponse struct {
	AccountNumber      string             `json:"account_number"`
	BranchCode         string             `json:"branch_code"`
	CustomerName       string             `json:"customer_name,omitempty"`
	DocumentType       string             `json:"document_type"`
	DocumentTypeSource models.TypeSource  `json:"document_type_source"`
	DocumentTypeGuess  bool               `json:"document_type_heuristic"`
	LeafCount          int                `json:"leaf_count"`
	LeafCountMismatch  bool               `json:"leaf_count_mismatch"`
	DiscardedLeaves    int                `json:"discarded_leaves"`
	Branch             *models.Branch     `json:"branch,omitempty"`
	ReprintPermitted   bool               `json:"reprint_permitted"`
	Leaves             []service.LeafView `json:"leaves"`
}

func toQueryResponse(v *service.QueryView) QueryResponse {
	cb := v.Checkbook
	return QueryResponse{
		AccountNumber:      cb.AccountNumber,
		BranchCode:         cb.BranchCode,
		CustomerName:       cb.CustomerName,
		DocumentType:       cb.DocumentType.Type.String(),
		DocumentTypeSource: cb.DocumentType.Source,
		DocumentTypeGuess:  cb.DocumentType.IsHeuristic(),
		LeafCount:          cb.LeafCount,
		LeafCountMismatch:  cb.LeafCountMismatch(),
		DiscardedLeaves:    cb.DiscardedLeaves,
		Branch:             v.Branch,
		ReprintPermitted:   v.ReprintPermitted,
		Leaves:             v.Leaves,
	}
}

type HistoryResponse struct {
	Entries []*models.PrintLogEntry `json:"entries"`
}
