package workbook

import (
	"fmt"

	"flexipayslip/internal/domain/payslip"
)

// CompanyPatch holds the company fields found in a workbook. Nil fields were
// absent and leave the current value alone.
type CompanyPatch struct {
	CompanyName    *string `json:"companyName,omitempty"`
	CompanyAddress *string `json:"companyAddress,omitempty"`
	City           *string `json:"city,omitempty"`
	Pincode        *string `json:"pincode,omitempty"`
	Country        *string `json:"country,omitempty"`
}

func (p CompanyPatch) IsEmpty() bool {
	return p.CompanyName == nil && p.CompanyAddress == nil && p.City == nil &&
		p.Pincode == nil && p.Country == nil
}

func (p CompanyPatch) Merge(into payslip.CompanyInfo) payslip.CompanyInfo {
	setIf(&into.CompanyName, p.CompanyName)
	setIf(&into.CompanyAddress, p.CompanyAddress)
	setIf(&into.City, p.City)
	setIf(&into.Pincode, p.Pincode)
	setIf(&into.Country, p.Country)
	return into
}

type EmployeePatch struct {
	EmployeeName  *string `json:"employeeName,omitempty"`
	EmployeeID    *string `json:"employeeId,omitempty"`
	PayPeriod     *string `json:"payPeriod,omitempty"`
	PaidDays      *string `json:"paidDays,omitempty"`
	LossOfPayDays *string `json:"lossOfPayDays,omitempty"`
	PayDate       *string `json:"payDate,omitempty"`
}

func (p EmployeePatch) IsEmpty() bool {
	return p.EmployeeName == nil && p.EmployeeID == nil && p.PayPeriod == nil &&
		p.PaidDays == nil && p.LossOfPayDays == nil && p.PayDate == nil
}

func (p EmployeePatch) Merge(into payslip.EmployeeInfo) payslip.EmployeeInfo {
	setIf(&into.EmployeeName, p.EmployeeName)
	setIf(&into.EmployeeID, p.EmployeeID)
	setIf(&into.PayPeriod, p.PayPeriod)
	setIf(&into.PaidDays, p.PaidDays)
	setIf(&into.LossOfPayDays, p.LossOfPayDays)
	setIf(&into.PayDate, p.PayDate)
	return into
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Report is the partial document read from a workbook plus what was
// recognised and what was skipped along the way.
type Report struct {
	Company    CompanyPatch       `json:"company"`
	Employee   EmployeePatch      `json:"employee"`
	Earnings   []payslip.LineItem `json:"earnings,omitempty"`
	Deductions []payslip.LineItem `json:"deductions,omitempty"`
	Sheets     []string           `json:"sheets"`
	Skipped    []SheetFieldError  `json:"skipped,omitempty"`
}

// ApplyTo merges company and employee fields into doc and replaces the
// earnings or deductions only when the workbook supplied at least one row.
func (r Report) ApplyTo(doc payslip.Document) payslip.Document {
	out := doc.Clone()
	out.Company = r.Company.Merge(out.Company)
	out.Employee = r.Employee.Merge(out.Employee)
	if len(r.Earnings) > 0 {
		out.Earnings = append([]payslip.LineItem(nil), r.Earnings...)
	}
	if len(r.Deductions) > 0 {
		out.Deductions = append([]payslip.LineItem(nil), r.Deductions...)
	}
	return out
}

// Import reads a .xlsx or .xls upload. Only an unreadable container fails
// the import; missing sheets and malformed rows end up in Report.Skipped or
// are ignored.
func Import(name string, data []byte) (*Report, error) {
	if err := checkExtension(name); err != nil {
		return nil, err
	}
	src, err := openSource(data)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	return read(src), nil
}

func read(src source) *Report {
	report := &Report{Sheets: []string{}}
	present := make(map[string]bool)
	for _, name := range src.SheetNames() {
		present[name] = true
	}

	sections := []struct {
		sheet string
		read  func(rows [][]string, report *Report)
	}{
		{SheetCompany, readCompany},
		{SheetEmployee, readEmployee},
		{SheetEarnings, func(rows [][]string, report *Report) {
			report.Earnings = readItems(SheetEarnings, rows, report)
		}},
		{SheetDeductions, func(rows [][]string, report *Report) {
			report.Deductions = readItems(SheetDeductions, rows, report)
		}},
	}

	for _, section := range sections {
		if !present[section.sheet] {
			continue
		}
		if err := readSheet(src, section.sheet, section.read, report); err != nil {
			report.Skipped = append(report.Skipped, SheetFieldError{Sheet: section.sheet, Reason: err.Error()})
			continue
		}
		report.Sheets = append(report.Sheets, section.sheet)
	}
	return report
}

// readSheet isolates one sheet: a read error or panic drops that sheet only.
func readSheet(src source, sheet string, fn func([][]string, *Report), report *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unreadable sheet: %v", r)
		}
	}()

	rows, err := src.Rows(sheet)
	if err != nil {
		return err
	}
	fn(rows, report)
	return nil
}

func readCompany(rows [][]string, report *Report) {
	var patch CompanyPatch
	forEachPair(SheetCompany, rows, report, func(key, value string) bool {
		set, ok := companyFields[key]
		if ok {
			set(&patch, value)
		}
		return ok
	})
	report.Company = patch
}

func readEmployee(rows [][]string, report *Report) {
	var patch EmployeePatch
	forEachPair(SheetEmployee, rows, report, func(key, value string) bool {
		set, ok := employeeFields[key]
		if ok {
			set(&patch, value)
		}
		return ok
	})
	report.Employee = patch
}

// forEachPair walks a headerless key/value sheet. A row whose value cell is
// blank sets the field to "". Unknown keys are ignored, except on key-only
// rows where they are reported.
func forEachPair(sheet string, rows [][]string, report *Report, fn func(key, value string) bool) {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if len(row) >= 2 {
			fn(fieldKey(row[0]), row[1])
			continue
		}
		if !fn(fieldKey(row[0]), "") {
			report.Skipped = append(report.Skipped, SheetFieldError{
				Sheet:  sheet,
				Row:    i + 1,
				Reason: fmt.Sprintf("no value for %q", row[0]),
			})
		}
	}
}

// readItems treats the first row as the header and keeps every later row
// whose name resolves to something non-empty. A blank amount stays "".
func readItems(sheet string, rows [][]string, report *Report) []payslip.LineItem {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]

	var items []payslip.LineItem
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		record := make(map[string]string, len(header))
		for col, title := range header {
			if col < len(row) && title != "" {
				if _, dup := record[title]; !dup {
					record[title] = row[col]
				}
			}
		}
		name := lookupAlias(record, itemNameAliases)
		if name == "" {
			report.Skipped = append(report.Skipped, SheetFieldError{
				Sheet:  sheet,
				Row:    i + 2,
				Reason: "missing name",
			})
			continue
		}
		items = append(items, payslip.LineItem{
			Name:   name,
			Amount: lookupAlias(record, itemAmountAliases),
		})
	}
	return items
}
