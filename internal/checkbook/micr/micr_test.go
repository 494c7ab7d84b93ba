package micr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Run("byte-exact layout", func(t *testing.T) {
		got := Encode(1001, "1234567", "4521", "03")
		assert.Equal(t, "C000001001C A00004521A 0001234567C 03", got)
	})

	t.Run("identical inputs give identical output", func(t *testing.T) {
		a := Encode(77, "99", "12", "01")
		b := Encode(77, "99", "12", "01")
		assert.Equal(t, a, b)
	})

	t.Run("missing identifiers pad to zeros", func(t *testing.T) {
		got := Encode(5, "", "", "01")
		assert.Equal(t, "C000000005C A00000000A 0000000000C 01", got)
	})

	t.Run("single character type code is padded", func(t *testing.T) {
		got := Encode(1, "1", "1", "2")
		assert.Equal(t, "C000000001C A00000001A 0000000001C 02", got)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		got := Encode(1, " 42 ", "\t7", "03 ")
		assert.Equal(t, "C000000001C A00000007A 0000000042C 03", got)
	})

	t.Run("negative serial clamps to zero", func(t *testing.T) {
		assert.Equal(t, "000000000", PadSerial(-4))
	})
}

// TestEncodeLengthInvariant checks that leading zeros absorb magnitude
// variation for every in-range input.
func TestEncodeLengthInvariant(t *testing.T) {
	serials := []int64{0, 1, 9, 10, 999, 1000, 123456, 99999999, 999999999}
	accounts := []string{"", "1", "12345", "9999999999"}
	routings := []string{"", "7", "1234", "99999999"}
	codes := []string{"01", "02", "03"}

	for _, s := range serials {
		for _, a := range accounts {
			for _, r := range routings {
				for _, c := range codes {
					line := Encode(s, a, r, c)
					require.Len(t, line, LineLength, "serial=%d accounting=%q routing=%q", s, a, r)
					assert.Equal(t, byte('C'), line[0])
					assert.Equal(t, byte('C'), line[10])
					assert.Equal(t, byte('A'), line[12])
					assert.Equal(t, byte('A'), line[21])
					assert.Equal(t, byte('C'), line[33])
					assert.Equal(t, c, line[35:])
				}
			}
		}
	}
}
