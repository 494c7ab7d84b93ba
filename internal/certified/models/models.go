package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	cbmodels "chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
)

const (
	// LeavesPerBook is fixed for every certified book.
	LeavesPerBook = 50
	MinBooks      = 1
	MaxBooks      = 100
)

// SerialRange is a contiguous block of certified serials for one branch.
//
// Invariant: LastSerial - FirstSerial + 1 == NumberOfBooks * LeavesPerBook.
type SerialRange struct {
	BranchID      string `json:"branch_id"`
	FirstSerial   int64  `json:"first_serial"`
	LastSerial    int64  `json:"last_serial"`
	NumberOfBooks int    `json:"number_of_books"`
	LeavesPerBook int    `json:"leaves_per_book"`
}

// NewSerialRange builds the range of numberOfBooks books starting at first.
func NewSerialRange(branchID string, first int64, numberOfBooks int) (SerialRange, error) {
	if branchID == "" {
		return SerialRange{}, dErrors.New(dErrors.CodeValidation, "branch is required")
	}
	if numberOfBooks < MinBooks || numberOfBooks > MaxBooks {
		return SerialRange{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("number of books must be between %d and %d", MinBooks, MaxBooks))
	}
	if first < 1 {
		return SerialRange{}, dErrors.New(dErrors.CodeValidation, "first serial must be at least 1")
	}
	return SerialRange{
		BranchID:      branchID,
		FirstSerial:   first,
		LastSerial:    first + int64(numberOfBooks*LeavesPerBook) - 1,
		NumberOfBooks: numberOfBooks,
		LeavesPerBook: LeavesPerBook,
	}, nil
}

// TotalChecks is the number of leaves in the range.
func (r SerialRange) TotalChecks() int64 {
	return r.LastSerial - r.FirstSerial + 1
}

// Overlaps reports whether the two ranges share a serial.
func (r SerialRange) Overlaps(o SerialRange) bool {
	return r.FirstSerial <= o.LastSerial && o.FirstSerial <= r.LastSerial
}

// CheckLog is the append-only record of one committed certified batch.
type CheckLog struct {
	ID                uuid.UUID              `json:"id"`
	BranchID          string                 `json:"branch_id"`
	FirstSerial       int64                  `json:"first_serial"`
	LastSerial        int64                  `json:"last_serial"`
	TotalChecks       int64                  `json:"total_checks"`
	NumberOfBooks     int                    `json:"number_of_books"`
	CustomStartSerial *int64                 `json:"custom_start_serial,omitempty"`
	OperationType     cbmodels.OperationType `json:"operation_type"`
	PrintedBy         string                 `json:"printed_by"`
	PrintDate         time.Time              `json:"print_date"`
	Notes             string                 `json:"notes,omitempty"`
	// ServedAt is set when the batch document is handed out. A served batch
	// is printed again only through a REPRINT commit.
	ServedAt *time.Time `json:"served_at,omitempty"`
	ServedBy string     `json:"served_by,omitempty"`
}

// Served reports whether the batch document was already handed out.
func (l *CheckLog) Served() bool {
	return l.ServedAt != nil
}

// Range returns the serial range the log covers.
func (l *CheckLog) Range() SerialRange {
	return SerialRange{
		BranchID:      l.BranchID,
		FirstSerial:   l.FirstSerial,
		LastSerial:    l.LastSerial,
		NumberOfBooks: l.NumberOfBooks,
		LeavesPerBook: LeavesPerBook,
	}
}

// Preview is a side-effect-free allocation proposal. LastCommitted is shown
// so an operator can see overlap before committing an override.
type Preview struct {
	Range          SerialRange  `json:"range"`
	LastCommitted  *SerialRange `json:"last_committed,omitempty"`
	Overridden     bool         `json:"overridden"`
	OverlapsLast   bool         `json:"overlaps_last_committed"`
	StockAvailable int64        `json:"stock_available"`
	Warnings       []string     `json:"warnings,omitempty"`
}

// CommitRequest is what an operator confirms after previewing.
type CommitRequest struct {
	BranchID      string
	FirstSerial   int64
	NumberOfBooks int
	// Override marks FirstSerial as an explicit administrative start rather
	// than the branch's next serial.
	Override      bool
	OperationType cbmodels.OperationType
	Notes         string
}
