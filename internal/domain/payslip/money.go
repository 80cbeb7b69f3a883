package payslip

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyPrefix is written as text because the core PDF fonts carry no rupee glyph.
const CurrencyPrefix = "Rs."

var (
	numberPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)
	displayTag   = language.MustParse("en-IN")
)

// ParseAmount reads the leading decimal number of s and ignores whatever
// follows it, so "1500abc" is 1500. Empty or non-numeric input is zero.
func ParseAmount(s string) decimal.Decimal {
	amount, ok := parseLeadingNumber(s)
	if !ok {
		return decimal.Zero
	}
	return amount
}

// HasNonZeroAmount reports whether s starts with a number other than zero.
func HasNonZeroAmount(s string) bool {
	amount, ok := parseLeadingNumber(s)
	return ok && !amount.IsZero()
}

func parseLeadingNumber(s string) (decimal.Decimal, bool) {
	match := numberPrefix.FindString(strings.TrimSpace(s))
	if match == "" {
		return decimal.Zero, false
	}
	negative := strings.HasPrefix(match, "-")
	match = strings.TrimLeft(match, "+-")
	if strings.HasPrefix(match, ".") {
		match = "0" + match
	}
	amount, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, true
}

// FormatCurrency renders a raw amount string as "Rs. 1,234.50".
func FormatCurrency(amount string) string {
	return FormatAmount(ParseAmount(amount))
}

// FormatAmount groups digits the en-IN way and always prints two decimals.
func FormatAmount(amount decimal.Decimal) string {
	p := message.NewPrinter(displayTag)
	return CurrencyPrefix + " " + p.Sprintf("%.2f", amount.Round(2).InexactFloat64())
}
