package payslip

import "github.com/shopspring/decimal"

type Totals struct {
	Gross      decimal.Decimal `json:"gross"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
}

// ComputeTotals sums every line item, named or not. Amounts that do not
// parse count as zero. Net may be negative.
func ComputeTotals(earnings, deductions []LineItem) Totals {
	gross := sumItems(earnings)
	ded := sumItems(deductions)
	return Totals{
		Gross:      gross,
		Deductions: ded,
		Net:        gross.Sub(ded),
	}
}

func (d Document) Totals() Totals {
	return ComputeTotals(d.Earnings, d.Deductions)
}

func sumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(ParseAmount(item.Amount))
	}
	return total
}

// IsComplete gates export: a company name, an employee name and at least one
// named earning with a non-zero amount.
func IsComplete(doc Document) bool {
	if doc.Company.CompanyName == "" || doc.Employee.EmployeeName == "" {
		return false
	}
	for _, item := range doc.Earnings {
		if item.Name != "" && HasNonZeroAmount(item.Amount) {
			return true
		}
	}
	return false
}
