package models

import (
	"fmt"
	"strings"

	dErrors "chequeprint/pkg/domain-errors"
)

// Field names a printable element of a cheque leaf.
type Field string

const (
	FieldBranchName    Field = "branch_name"
	FieldAccountNumber Field = "account_number"
	FieldSerial        Field = "serial"
	FieldSequence      Field = "sequence"
	FieldHolderName    Field = "holder_name"
	FieldMICR          Field = "micr"
)

// Fields lists every printable field in paint order.
var Fields = []Field{
	FieldBranchName,
	FieldAccountNumber,
	FieldSerial,
	FieldSequence,
	FieldHolderName,
	FieldMICR,
}

// Align is horizontal text alignment relative to X.
type Align string

const (
	AlignLeft   Align = "LEFT"
	AlignCenter Align = "CENTER"
	AlignRight  Align = "RIGHT"
)

func ParseAlign(s string) (Align, error) {
	switch a := Align(strings.ToUpper(strings.TrimSpace(s))); a {
	case AlignLeft, AlignCenter, AlignRight:
		return a, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown alignment %q", s))
}

// Position places a field on the leaf. X and Y are millimetres from the
// leaf's top-left corner; FontSize is in points.
type Position struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	FontSize float64 `json:"font_size" yaml:"font_size"`
	Align    Align   `json:"align" yaml:"align"`
}

// PositionOverride is a partially specified position as stored in layout
// configuration. Nil fields fall back to the default.
type PositionOverride struct {
	X        *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y        *float64 `json:"y,omitempty" yaml:"y,omitempty"`
	FontSize *float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	Align    *Align   `json:"align,omitempty" yaml:"align,omitempty"`
}

// Apply returns base with the override's set fields replacing it.
func (o PositionOverride) Apply(base Position) Position {
	if o.X != nil {
		base.X = *o.X
	}
	if o.Y != nil {
		base.Y = *o.Y
	}
	if o.FontSize != nil && *o.FontSize > 0 {
		base.FontSize = *o.FontSize
	}
	if o.Align != nil && *o.Align != "" {
		base.Align = *o.Align
	}
	return base
}

// LayoutOverrides are the stored per-field overrides for one document type.
type LayoutOverrides map[Field]PositionOverride

// Layout is a complete field placement for one document type. Every field in
// Fields has a position.
type Layout struct {
	DocumentType DocumentType       `json:"document_type"`
	Positions    map[Field]Position `json:"positions"`
}

// Position returns the placement for f.
func (l Layout) Position(f Field) Position {
	return l.Positions[f]
}

// PaperGeometry is the physical leaf size in millimetres.
type PaperGeometry struct {
	WidthMM  float64 `json:"width_mm" yaml:"width_mm"`
	HeightMM float64 `json:"height_mm" yaml:"height_mm"`
}

func (g PaperGeometry) Validate() error {
	if g.WidthMM <= 0 || g.HeightMM <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "paper geometry must have positive width and height")
	}
	return nil
}
