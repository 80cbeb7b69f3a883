package payslip

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// NumberToWords spells a rupee amount in English, e.g. 1234.56 becomes
// "One Thousand Two Hundred and Thirty-Four Rupees and 56 Paise".
//
// Thousand is the largest group. Amounts of a million or more keep the
// thousands count in digits ("1500 Thousand Rupees"); there is no Lakh, Crore
// or Million breakdown. Negative amounts are prefixed with "Minus".
func NumberToWords(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return "Minus " + NumberToWords(rounded.Neg())
	}

	totalPaise := rounded.Shift(2).IntPart()
	rupees := totalPaise / 100
	paise := totalPaise % 100
	if totalPaise == 0 {
		return "Zero Rupees"
	}

	var parts []string
	if thousands := rupees / 1000; thousands > 0 {
		if thousands < 1000 {
			parts = append(parts, groupWords(thousands)+" Thousand")
		} else {
			parts = append(parts, strconv.FormatInt(thousands, 10)+" Thousand")
		}
		rupees %= 1000
	}
	if hundreds := rupees / 100; hundreds > 0 {
		parts = append(parts, ones[hundreds]+" Hundred")
		rupees %= 100
	}
	if rupees > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and")
		}
		parts = append(parts, tensWords(rupees))
	}
	if len(parts) == 0 {
		parts = append(parts, "Zero")
	}

	words := strings.Join(parts, " ") + " Rupees"
	if paise > 0 {
		words += " and " + strconv.FormatInt(paise, 10) + " Paise"
	}
	return words
}

// groupWords spells 1..999 without the "and" joiner.
func groupWords(n int64) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, ones[n/100]+" Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, tensWords(n))
	}
	return strings.Join(parts, " ")
}

func tensWords(n int64) string {
	if n < 20 {
		return ones[n]
	}
	word := tens[n/10]
	if one := n % 10; one > 0 {
		word += "-" + ones[one]
	}
	return word
}
