package brdoc

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a monetary amount in Brazilian real notation,
// e.g. 1327.5 becomes "R$ 1.327,50".
func FormatBRL(amount float64) string {
	return brl.Sprintf("R$ %v", number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
