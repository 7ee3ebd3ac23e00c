package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// priceRe matches Brazilian-formatted currency amounts such as
// "R$ 12,50" and "R$ 1.234,56": "." as thousands separator, "," as
// decimal separator, always two decimal digits. Case-insensitive because
// tier-1 extraction runs it over lowercased page text.
var priceRe = regexp.MustCompile(`(?i)R\$\s?(\d{1,3}(?:\.\d{3})*,\d{2})`)

// ParseBRL normalizes a Brazilian-formatted amount ("1.234,56") to a float.
// Returns false for unparseable or non-positive values.
func ParseBRL(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// extractAmounts finds every currency amount in the document and returns
// the parsed positive values.
func extractAmounts(text string) []decimal.Decimal {
	var amounts []decimal.Decimal
	for _, m := range priceRe.FindAllStringSubmatch(text, -1) {
		if v, ok := ParseBRL(m[1]); ok {
			amounts = append(amounts, decimal.NewFromFloat(v))
		}
	}
	return amounts
}

// minAmount returns the smallest of the given amounts.
func minAmount(amounts []decimal.Decimal) decimal.Decimal {
	min := amounts[0]
	for _, a := range amounts[1:] {
		if a.LessThan(min) {
			min = a
		}
	}
	return min
}
