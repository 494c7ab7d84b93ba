// Package strings normalizes string lists taken from tokens and flags.
package strings

import (
	"strings"
)

// NormalizeList trims and lowercases each value, dropping blanks and
// repeats. First-seen order is kept, so "Cheque:Reprint" and
// " cheque:reprint" collapse into one entry.
func NormalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
