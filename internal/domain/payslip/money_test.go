package payslip

import (
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "empty", amount: "", want: "Rs. 0.00"},
		{name: "not a number", amount: "abc", want: "Rs. 0.00"},
		{name: "below a thousand", amount: "999", want: "Rs. 999.00"},
		{name: "one decimal", amount: "1234.5", want: "Rs. 1,234.50"},
		{name: "five digits", amount: "12345", want: "Rs. 12,345.00"},
		{name: "rounds to paise", amount: "10.005", want: "Rs. 10.01"},
		{name: "numeric prefix", amount: "1500abc", want: "Rs. 1,500.00"},
		{name: "surrounding spaces", amount: "  42 ", want: "Rs. 42.00"},
		{name: "leading dot", amount: ".5", want: "Rs. 0.50"},
		{name: "negative", amount: "-250.25", want: "Rs. -250.25"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCurrency(tc.amount))
		})
	}
}

func TestFormatCurrencyShape(t *testing.T) {
	shape := regexp.MustCompile(`^Rs\. -?[0-9,]+\.[0-9]{2}$`)
	inputs := []string{"0", "1", "10.1", "999.999", "1000", "25000.75", "99999.99", "123456.78", "7654321", "-1000.5"}

	for _, input := range inputs {
		got := FormatCurrency(input)
		assert.Regexp(t, shape, got, "input %q", input)
		if ParseAmount(input).Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
			assert.True(t, strings.Contains(got, ","), "expected grouping separator in %q", got)
		}
	}
}

func TestParseAmount(t *testing.T) {
	assert.True(t, ParseAmount("").IsZero())
	assert.True(t, ParseAmount("n/a").IsZero())
	assert.True(t, ParseAmount("50000").Equal(decimal.NewFromInt(50000)))
	assert.True(t, ParseAmount("1e3").Equal(decimal.NewFromInt(1000)))
	assert.True(t, ParseAmount("+12.5").Equal(decimal.RequireFromString("12.5")))
	assert.True(t, ParseAmount("-3").Equal(decimal.NewFromInt(-3)))
}

func TestHasNonZeroAmount(t *testing.T) {
	assert.False(t, HasNonZeroAmount(""))
	assert.False(t, HasNonZeroAmount("0"))
	assert.False(t, HasNonZeroAmount("0.00"))
	assert.False(t, HasNonZeroAmount("abc"))
	assert.True(t, HasNonZeroAmount("0.01"))
	assert.True(t, HasNonZeroAmount("-5"))
}
