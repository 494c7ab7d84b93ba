// Package micr builds the E-13B MICR encoding line printed along the bottom
// edge of every cheque leaf.
//
// The line is consumed by a MICR font that maps the ASCII characters 'C'
// (on-us), 'A' (transit) and digits to the magnetic glyphs, so the output must
// be byte-exact:
//
//	C<serial:9>C A<routing:8>A <accounting:10>C <type:2>
package micr

import (
	"strconv"
	"strings"
)

const (
	SerialWidth     = 9
	RoutingWidth    = 8
	AccountingWidth = 10
	TypeCodeWidth   = 2

	onUs    = "C"
	transit = "A"

	// LineLength is the encoded length for inputs that fit their widths.
	LineLength = 1 + SerialWidth + 1 + 1 + 1 + RoutingWidth + 1 + 1 + AccountingWidth + 1 + 1 + TypeCodeWidth
)

// Encode returns the MICR line. Identical inputs always produce identical
// output. Inputs are trimmed and left-padded with zeros; negative serials are
// clamped to zero. Values wider than their field are kept intact, so only
// in-range inputs have LineLength characters.
func Encode(serial int64, accountingNumber, routingNumber, typeCode string) string {
	var b strings.Builder
	b.Grow(LineLength)
	b.WriteString(onUs)
	b.WriteString(PadSerial(serial))
	b.WriteString(onUs)
	b.WriteByte(' ')
	b.WriteString(transit)
	b.WriteString(pad(routingNumber, RoutingWidth))
	b.WriteString(transit)
	b.WriteByte(' ')
	b.WriteString(pad(accountingNumber, AccountingWidth))
	b.WriteString(onUs)
	b.WriteByte(' ')
	b.WriteString(pad(typeCode, TypeCodeWidth))
	return b.String()
}

// PadSerial formats a serial at the MICR serial width.
func PadSerial(serial int64) string {
	if serial < 0 {
		serial = 0
	}
	return pad(strconv.FormatInt(serial, 10), SerialWidth)
}

func pad(s string, width int) string {
	s = strings.TrimSpace(s)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
