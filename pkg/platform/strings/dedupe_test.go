package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "only blanks", input: []string{"", "  "}, expected: []string{}},
		{
			name:     "case and whitespace variants collapse",
			input:    []string{" Cheque:Reprint", "cheque:reprint ", "CHEQUE:CERTIFIED"},
			expected: []string{"cheque:reprint", "cheque:certified"},
		},
		{
			name:     "order of first appearance",
			input:    []string{"b", "a", "b", "c"},
			expected: []string{"b", "a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeList(tt.input))
		})
	}
}
