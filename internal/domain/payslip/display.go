package payslip

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName follows Payslip_<employee>_<period>.pdf with whitespace runs
// replaced by underscores.
func FileName(emp EmployeeInfo) string {
	name := emp.EmployeeName
	if name == "" {
		name = "Employee"
	}
	period := emp.PayPeriod
	if period == "" {
		period = "Period"
	}
	return whitespaceRun.ReplaceAllString(fmt.Sprintf("Payslip_%s_%s.pdf", name, period), "_")
}

// ParsePayDate accepts RFC3339 or YYYY-MM-DD.
func ParsePayDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.DateOnly, value)
}

// LongDate renders a pay date as "02 January 2026". Values that are not
// dates are returned unchanged.
func LongDate(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	parsed, err := ParsePayDate(value)
	if err != nil {
		return value
	}
	return parsed.Format("02 January 2006")
}

// ShortDate is the dd/mm/yyyy stamp used in the footer.
func ShortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func PaidDaysText(emp EmployeeInfo) string {
	paid := emp.PaidDays
	if paid == "" {
		paid = "0"
	}
	lop := emp.LossOfPayDays
	if lop == "" {
		lop = "0"
	}
	return fmt.Sprintf("%s days (LoP: %s days)", paid, lop)
}

// Locality joins city, pincode and country, skipping blanks.
func Locality(c CompanyInfo) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{c.City, c.Pincode, c.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

type SummaryLine struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Summary is the on-screen result panel: formatted lines and totals.
type Summary struct {
	EmployeeName string        `json:"employeeName"`
	PayPeriod    string        `json:"payPeriod"`
	Earnings     []SummaryLine `json:"earnings"`
	Deductions   []SummaryLine `json:"deductions"`
	Gross        string        `json:"grossEarnings"`
	Deducted     string        `json:"totalDeductions"`
	Net          string        `json:"netPayable"`
	NetInWords   string        `json:"netInWords"`
	Totals       Totals        `json:"totals"`
	Complete     bool          `json:"complete"`
	FileName     string        `json:"fileName"`
}

// Summarize lists only rows that have both a name and an amount, which is
// stricter than the document filter.
func Summarize(doc Document) Summary {
	totals := doc.Totals()
	return Summary{
		EmployeeName: doc.Employee.EmployeeName,
		PayPeriod:    doc.Employee.PayPeriod,
		Earnings:     summaryLines(doc.Earnings),
		Deductions:   summaryLines(doc.Deductions),
		Gross:        FormatAmount(totals.Gross),
		Deducted:     FormatAmount(totals.Deductions),
		Net:          FormatAmount(totals.Net),
		NetInWords:   NumberToWords(totals.Net),
		Totals:       totals,
		Complete:     IsComplete(doc),
		FileName:     FileName(doc.Employee),
	}
}

func summaryLines(items []LineItem) []SummaryLine {
	out := make([]SummaryLine, 0, len(items))
	for _, item := range items {
		if item.Name == "" || item.Amount == "" {
			continue
		}
		out = append(out, SummaryLine{Name: item.Name, Amount: FormatCurrency(item.Amount)})
	}
	return out
}

// WordsFor is NumberToWords over an unparsed amount string.
func WordsFor(amount string) string {
	return NumberToWords(ParseAmount(amount))
}
