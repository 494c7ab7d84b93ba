package models

import (
	"fmt"

	dErrors "chequeprint/pkg/domain-errors"
)

// DocumentType classifies a cheque product. It drives leaf count, paper
// geometry, the MICR type code and which layout set applies. The numeric
// values are the layout keys used by persisted layout configuration.
type DocumentType int

const (
	DocumentTypeUnknown    DocumentType = 0
	DocumentTypeIndividual DocumentType = 1
	DocumentTypeCorporate  DocumentType = 2
	DocumentTypeEmployee   DocumentType = 3
	DocumentTypeCertified  DocumentType = 4
)

func (d DocumentType) String() string {
	switch d {
	case DocumentTypeIndividual:
		return "individual"
	case DocumentTypeCorporate:
		return "corporate"
	case DocumentTypeEmployee:
		return "employee"
	case DocumentTypeCertified:
		return "certified"
	default:
		return "unknown"
	}
}

func (d DocumentType) IsValid() bool {
	return d >= DocumentTypeIndividual && d <= DocumentTypeCertified
}

// MICRTypeCode is the two-character instrument class printed at the end of the
// MICR line. Employee books are individual-class instruments.
func (d DocumentType) MICRTypeCode() string {
	switch d {
	case DocumentTypeCorporate:
		return "02"
	case DocumentTypeCertified:
		return "03"
	default:
		return "01"
	}
}

// ParseDocumentType accepts either the layout key ("1".."4") or the name.
func ParseDocumentType(s string) (DocumentType, error) {
	switch s {
	case "1", "individual":
		return DocumentTypeIndividual, nil
	case "2", "corporate":
		return DocumentTypeCorporate, nil
	case "3", "employee":
		return DocumentTypeEmployee, nil
	case "4", "certified":
		return DocumentTypeCertified, nil
	}
	return DocumentTypeUnknown, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown document type %q", s))
}

// TypeSource records how a document type was determined.
type TypeSource string

const (
	// TypeSourceLeafCount means the upstream leaf count matched a known book size.
	TypeSourceLeafCount TypeSource = "leaf_count"
	// TypeSourceAccountPrefix means the type was guessed from the account
	// number's leading digit. Callers must warn the operator.
	TypeSourceAccountPrefix TypeSource = "account_prefix"
	// TypeSourceUnknown means neither rule applied.
	TypeSourceUnknown TypeSource = "unknown"
	// TypeSourceOperator means the operator chose the type explicitly.
	TypeSourceOperator TypeSource = "operator"
)

// DocumentTypeResolution is the tagged result of document type derivation.
type DocumentTypeResolution struct {
	Type   DocumentType `json:"type"`
	Source TypeSource   `json:"source"`
}

// IsHeuristic reports whether the type was guessed rather than derived from
// a known leaf count or chosen by the operator.
func (r DocumentTypeResolution) IsHeuristic() bool {
	return r.Source != TypeSourceLeafCount && r.Source != TypeSourceOperator
}

// OperationType distinguishes first prints from reprints in audit logs.
type OperationType string

const (
	OperationPrint   OperationType = "PRINT"
	OperationReprint OperationType = "REPRINT"
)

func ParseOperationType(s string) (OperationType, error) {
	switch OperationType(s) {
	case "", OperationPrint:
		return OperationPrint, nil
	case OperationReprint:
		return OperationReprint, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("operation_type must be PRINT or REPRINT, got %q", s))
}
