package handler

import (
	"strings"

	"chequeprint/internal/certified/models"
	cbmodels "chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
)

type PreviewRequest struct {
	CustomStartSerial int64 `json:"custom_start_serial,omitempty"`
	NumberOfBooks     int   `json:"number_of_books"`
}

func (r *PreviewRequest) Validate() error {
	if r.CustomStartSerial < 0 {
		return dErrors.New(dErrors.CodeValidation, "custom_start_serial must be positive")
	}
	if r.NumberOfBooks < models.MinBooks || r.NumberOfBooks > models.MaxBooks {
		return dErrors.New(dErrors.CodeValidation, "number_of_books must be between 1 and 100")
	}
	return nil
}

// PreviewResponse flattens the preview for the operator form.
type PreviewResponse struct {
	FirstSerial    int64               `json:"first_serial"`
	LastSerial     int64               `json:"last_serial"`
	NumberOfBooks  int                 `json:"number_of_books"`
	TotalChecks    int64               `json:"total_checks"`
	Overridden     bool                `json:"overridden"`
	LastCommitted  *models.SerialRange `json:"last_committed,omitempty"`
	OverlapsLast   bool                `json:"overlaps_last"`
	StockAvailable int64               `json:"stock_available"`
	Warnings       []string            `json:"warnings,omitempty"`
}

func toPreviewResponse(p *models.Preview) PreviewResponse {
	return PreviewResponse{
		FirstSerial:    p.Range.FirstSerial,
		LastSerial:     p.Range.LastSerial,
		NumberOfBooks:  p.Range.NumberOfBooks,
		TotalChecks:    p.Range.TotalChecks(),
		Overridden:     p.Overridden,
		LastCommitted:  p.LastCommitted,
		OverlapsLast:   p.OverlapsLast,
		StockAvailable: p.StockAvailable,
		Warnings:       p.Warnings,
	}
}

type CommitRequest struct {
	FirstSerial   int64  `json:"first_serial"`
	NumberOfBooks int    `json:"number_of_books"`
	Override      bool   `json:"override,omitempty"`
	OperationType string `json:"operation_type,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (r *CommitRequest) Validate() error {
	r.OperationType = strings.ToUpper(strings.TrimSpace(r.OperationType))
	r.Notes = strings.TrimSpace(r.Notes)
	if r.FirstSerial <= 0 {
		return dErrors.New(dErrors.CodeValidation, "first_serial must be positive")
	}
	if r.NumberOfBooks < models.MinBooks || r.NumberOfBooks > models.MaxBooks {
		return dErrors.New(dErrors.CodeValidation, "number_of_books must be between 1 and 100")
	}
	op, err := cbmodels.ParseOperationType(r.OperationType)
	if err != nil {
		return err
	}
	r.OperationType = string(op)
	return nil
}

func (r *CommitRequest) toModel(branchID string) models.CommitRequest {
	return models.CommitRequest{
		BranchID:      branchID,
		FirstSerial:   r.FirstSerial,
		NumberOfBooks: r.NumberOfBooks,
		Override:      r.Override,
		OperationType: cbmodels.OperationType(r.OperationType),
		Notes:         r.Notes,
	}
}

type AddStockRequest struct {
	Quantity int64 `json:"quantity"`
}

func (r *AddStockRequest) Validate() error {
	if r.Quantity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	return nil
}

type HistoryResponse struct {
	Logs []*models.CheckLog `json:"logs"`
}

type StockResponse struct {
	Available int64 `json:"available"`
}
