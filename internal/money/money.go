// Package money renders tenge amounts with locale-grouped digits.
//
// The formatter is deliberately forgiving: a raw value that does not parse
// as a number is rendered verbatim instead of failing, because price fields
// come straight from an untrusted feed.
package money

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Suffix is the fixed currency marker appended to every formatted amount.
const Suffix = " ₸"

var printer = message.NewPrinter(language.MustParse("ru-KZ"))

// Format renders a raw price string as a grouped tenge amount.
// Internal whitespace (including non-breaking spaces) is stripped before
// parsing; unparsable input is returned unchanged.
func Format(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return raw
	}
	return FormatAmount(n)
}

// FormatAmount renders a numeric amount as a grouped tenge string.
func FormatAmount(n float64) string {
	return printer.Sprintf("%v", number.Decimal(n)) + Suffix
}
