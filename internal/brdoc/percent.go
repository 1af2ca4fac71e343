package brdoc

import (
	"strconv"
	"strings"
)

// FormatPercentage keeps digits and the first decimal point, truncates
// the fraction to two digits and appends a trailing percent sign.
// A second decimal point ends the scan. Empty input yields the empty
// string.
func FormatPercentage(raw string) string {
	var b strings.Builder
	seenDot := false
	fraction := 0
scan:
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if seenDot {
				if fraction >= 2 {
					continue
				}
				fraction++
			}
			b.WriteRune(r)
		case r == '.':
			if seenDot {
				break scan
			}
			seenDot = true
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String() + "%"
}

// ParsePercentage converts a formatted percentage back to its numeric
// value. The trailing percent sign is optional.
func ParsePercentage(formatted string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(formatted), "%")
	if trimmed == "" {
		return 0, nil
	}
	return strconv.ParseFloat(trimmed, 64)
}
