// Package brdoc normalizes Brazilian business documents and locale
// specific number formats used on order forms.
package brdoc

import "strings"

const cnpjDigits = 14

// CleanCNPJ strips everything but digits from a CNPJ string.
func CleanCNPJ(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCNPJ masks a CNPJ progressively as NN.NNN.NNN/NNNN-NN. Partial
// input gets a partial mask so the function can run on every keystroke.
func FormatCNPJ(raw string) string {
	digits := CleanCNPJ(raw)
	if len(digits) > cnpjDigits {
		digits = digits[:cnpjDigits]
	}
	if digits == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range digits {
		switch i {
		case 2, 5:
			b.WriteByte('.')
		case 8:
			b.WriteByte('/')
		case 12:
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsValidCNPJ reports whether the input carries exactly 14 digits once
// unmasked.
func IsValidCNPJ(raw string) bool {
	return len(CleanCNPJ(raw)) == cnpjDigits
}
