package payslip

const DefaultCountry = "India"

type CompanyInfo struct {
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	City           string `json:"city"`
	Pincode        string `json:"pincode"`
	Country        string `json:"country"`
}

// EmployeeInfo keeps day counts and the pay date as entered. PayDate is an
// ISO date; keeping it on or before today is the caller's job.
type EmployeeInfo struct {
	EmployeeName  string `json:"employeeName"`
	EmployeeID    string `json:"employeeId"`
	PayPeriod     string `json:"payPeriod"`
	PaidDays      string `json:"paidDays"`
	LossOfPayDays string `json:"lossOfPayDays"`
	PayDate       string `json:"payDate"`
}

// LineItem is one earning or deduction. Amount may be empty or invalid while
// the row is still being edited.
type LineItem struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type Document struct {
	Company    CompanyInfo  `json:"companyInfo"`
	Employee   EmployeeInfo `json:"employeeInfo"`
	Earnings   []LineItem   `json:"earnings"`
	Deductions []LineItem   `json:"deductions"`
}

type ItemKind string

const (
	KindEarnings   ItemKind = "earnings"
	KindDeductions ItemKind = "deductions"
)

func ParseItemKind(raw string) (ItemKind, error) {
	switch ItemKind(raw) {
	case KindEarnings, KindDeductions:
		return ItemKind(raw), nil
	}
	return "", ErrUnknownKind
}

func DefaultCompanyInfo() CompanyInfo {
	return CompanyInfo{Country: DefaultCountry}
}

func DefaultEarnings() []LineItem {
	return []LineItem{
		{Name: "Basic Salary"},
		{Name: "House Rent Allowance"},
	}
}

func DefaultDeductions() []LineItem {
	return []LineItem{
		{Name: "Tax"},
		{Name: "Insurance"},
	}
}

// Reset returns the seeded document a new form starts from.
func Reset() Document {
	return Document{
		Company:    DefaultCompanyInfo(),
		Earnings:   DefaultEarnings(),
		Deductions: DefaultDeductions(),
	}
}

func (d Document) Items(kind ItemKind) []LineItem {
	if kind == KindDeductions {
		return d.Deductions
	}
	return d.Earnings
}

func (d *Document) SetItems(kind ItemKind, items []LineItem) {
	if kind == KindDeductions {
		d.Deductions = items
		return
	}
	d.Earnings = items
}

// Clone copies the line-item slices so the result can be mutated freely.
func (d Document) Clone() Document {
	out := d
	out.Earnings = append([]LineItem(nil), d.Earnings...)
	out.Deductions = append([]LineItem(nil), d.Deductions...)
	return out
}
