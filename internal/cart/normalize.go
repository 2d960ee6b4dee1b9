package cart

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonPriceChars = regexp.MustCompile(`[^\d.,]`)
	nonDigitChars = regexp.MustCompile(`\D`)
)

// ParsePrice turns raw price text into a currency-unit-less amount. Every
// character that is not a digit, comma or period is stripped and commas are
// treated as thousand separators. Unparsable input yields nil, not an error.
func ParsePrice(text string) *float64 {
	cleaned := nonPriceChars.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseQuantity strips every non-digit character and parses the rest.
// It never fails: empty, unparsable or zero input falls back to 1.
func ParseQuantity(text string) int {
	digits := nonDigitChars.ReplaceAllString(text, "")
	n, err := strconv.Atoi(digits)
	if err != nil || n == 0 {
		return 1
	}
	return n
}
