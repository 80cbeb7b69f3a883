package workbook

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"flexipayslip/internal/domain/payslip"
)

// Recognised sheet names. Lookup is exact and case-sensitive.
const (
	SheetCompany    = "Company"
	SheetEmployee   = "Employee"
	SheetEarnings   = "Earnings"
	SheetDeductions = "Deductions"
)

// Header aliases for the line-item sheets, tried in order. The first alias
// with a non-empty value wins.
var (
	itemNameAliases   = []string{"Name", "name"}
	itemAmountAliases = []string{"Amount", "amount"}
)

// Largest serial Excel accepts as a date (31 December 9999).
const maxExcelSerial = 2958465

type companySetter func(p *CompanyPatch, value string)

type employeeSetter func(p *EmployeePatch, value string)

var companyFields = map[string]companySetter{
	"company name": func(p *CompanyPatch, v string) { p.CompanyName = &v },
	"address":      func(p *CompanyPatch, v string) { p.CompanyAddress = &v },
	"city":         func(p *CompanyPatch, v string) { p.City = &v },
	"pincode":      func(p *CompanyPatch, v string) { p.Pincode = &v },
	"country": func(p *CompanyPatch, v string) {
		if v == "" {
			v = payslip.DefaultCountry
		}
		p.Country = &v
	},
}

var employeeFields = map[string]employeeSetter{
	"employee name":    func(p *EmployeePatch, v string) { p.EmployeeName = &v },
	"employee id":      func(p *EmployeePatch, v string) { p.EmployeeID = &v },
	"pay period":       func(p *EmployeePatch, v string) { p.PayPeriod = &v },
	"paid days":        func(p *EmployeePatch, v string) { p.PaidDays = &v },
	"loss of pay days": func(p *EmployeePatch, v string) { p.LossOfPayDays = &v },
	"pay date": func(p *EmployeePatch, v string) {
		v = payDateValue(v)
		p.PayDate = &v
	},
}

func fieldKey(cell string) string {
	return strings.ToLower(strings.TrimSpace(cell))
}

// lookupAlias resolves the first alias present in record with a non-empty value.
func lookupAlias(record map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if value := record[alias]; value != "" {
			return value
		}
	}
	return ""
}

// payDateValue turns an Excel date serial into YYYY-MM-DD. Anything else is
// kept as typed.
func payDateValue(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial < 1 || serial > maxExcelSerial {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format(time.DateOnly)
}
