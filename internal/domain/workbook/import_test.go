package workbook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"flexipayslip/internal/domain/payslip"
)

func buildWorkbook(t *testing.T, sheets ...templateSheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet.name))
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			row := row
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportTemplateRoundTrip(t *testing.T) {
	data, err := ExportTemplate()
	require.NoError(t, err)

	report, err := Import(TemplateFileName, data)
	require.NoError(t, err)
	assert.Equal(t, []string{SheetCompany, SheetEmployee, SheetEarnings, SheetDeductions}, report.Sheets)
	assert.Empty(t, report.Skipped)

	doc := report.ApplyTo(payslip.Reset())
	assert.Equal(t, "India", doc.Company.Country)
	assert.Empty(t, doc.Company.CompanyName)
	assert.Empty(t, doc.Employee)
	assert.Equal(t, []payslip.LineItem{
		{Name: "Basic Salary"},
		{Name: "House Rent Allowance"},
		{Name: "Transport Allowance"},
		{Name: "Medical Allowance"},
		{Name: "Special Allowance"},
	}, doc.Earnings)
	assert.Equal(t, []payslip.LineItem{
		{Name: "Tax"},
		{Name: "Insurance"},
		{Name: "Provident Fund"},
		{Name: "Professional Tax"},
	}, doc.Deductions)
	assert.False(t, payslip.IsComplete(doc))
}

func TestImportReplacesEarnings(t *testing.T) {
	data := buildWorkbook(t, templateSheet{SheetEarnings, [][]interface{}{
		{"Name", "Amount"},
		{"Bonus", 5000},
	}})

	report, err := Import("march.xlsx", data)
	require.NoError(t, err)

	doc := report.ApplyTo(payslip.Reset())
	assert.Equal(t, []payslip.LineItem{{Name: "Bonus", Amount: "5000"}}, doc.Earnings)
	assert.Equal(t, payslip.DefaultDeductions(), doc.Deductions, "deductions untouched")
}

func TestImportIgnoresUnknownSheets(t *testing.T) {
	data := buildWorkbook(t, templateSheet{"Notes", [][]interface{}{
		{"Company Name", "Should not load"},
		{"Name", "Amount"},
	}})

	report, err := Import("notes.xlsx", data)
	require.NoError(t, err)
	assert.Empty(t, report.Sheets)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, payslip.Reset(), report.ApplyTo(payslip.Reset()))
}

func TestImportMergesCompanyAndEmployee(t *testing.T) {
	data := buildWorkbook(t,
		templateSheet{SheetCompany, [][]interface{}{
			{"  COMPANY NAME ", "Acme Pvt Ltd"},
			{"City", "Pune"},
			{"Country", "", "ignored"},
			{"Website", "acme.example"},
		}},
		templateSheet{SheetEmployee, [][]interface{}{
			{"Employee Name", "Asha Rao"},
			{"Paid Days", 30},
			{"Pay Date", 46112},
			{"Pay Period"},
			{"Grade"},
		}},
	)

	report, err := Import("data.XLSX", data)
	require.NoError(t, err)

	start := payslip.Reset()
	start.Company.CompanyAddress = "12 MG Road"
	start.Employee.PayPeriod = "March 2026"

	doc := report.ApplyTo(start)
	assert.Equal(t, payslip.CompanyInfo{
		CompanyName:    "Acme Pvt Ltd",
		CompanyAddress: "12 MG Road",
		City:           "Pune",
		Country:        "India",
	}, doc.Company)
	assert.Equal(t, "Asha Rao", doc.Employee.EmployeeName)
	assert.Equal(t, "30", doc.Employee.PaidDays)
	assert.Equal(t, "2026-03-31", doc.Employee.PayDate)
	assert.Empty(t, doc.Employee.PayPeriod, "blank value clears the field")

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, SheetEmployee, report.Skipped[0].Sheet)
	assert.Equal(t, 5, report.Skipped[0].Row)
	assert.Equal(t, `no value for "Grade"`, report.Skipped[0].Reason)
}

func TestImportBlankCompanyCells(t *testing.T) {
	data := buildWorkbook(t, templateSheet{SheetCompany, [][]interface{}{
		{"Company Name", "Acme Pvt Ltd"},
		{"Country", ""},
		{"City"},
	}})

	report, err := Import("company.xlsx", data)
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)

	start := payslip.Reset()
	start.Company.Country = "USA"
	start.Company.City = "Pune"

	doc := report.ApplyTo(start)
	assert.Equal(t, "Acme Pvt Ltd", doc.Company.CompanyName)
	assert.Equal(t, payslip.DefaultCountry, doc.Company.Country)
	assert.Empty(t, doc.Company.City)
}

func TestImportLowercaseHeaders(t *testing.T) {
	data := buildWorkbook(t, templateSheet{SheetDeductions, [][]interface{}{
		{"Name", "name", "amount"},
		{"", "Provident Fund", 1800},
		{"Tax", "", "250.50"},
		{"", "", 10},
		{},
	}})

	report, err := Import("d.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, []payslip.LineItem{
		{Name: "Provident Fund", Amount: "1800"},
		{Name: "Tax", Amount: "250.50"},
	}, report.Deductions)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "missing name", report.Skipped[0].Reason)
}

func TestImportEmptyItemSheetKeepsDefaults(t *testing.T) {
	data := buildWorkbook(t, templateSheet{SheetEarnings, [][]interface{}{
		{"Name", "Amount"},
		{"", 100},
	}})

	report, err := Import("e.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, payslip.DefaultEarnings(), report.ApplyTo(payslip.Reset()).Earnings)
}

func TestImportLegacyXLS(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "payslip.xls"))
	require.NoError(t, err)

	report, err := Import("payslip.xls", data)
	require.NoError(t, err)
	assert.Equal(t, []string{SheetCompany, SheetEmployee, SheetEarnings, SheetDeductions}, report.Sheets)

	start := payslip.Reset()
	start.Company.Country = "USA"

	doc := report.ApplyTo(start)
	assert.Equal(t, payslip.CompanyInfo{
		CompanyName: "Initech",
		City:        "Austin",
		Pincode:     "73301",
		Country:     payslip.DefaultCountry,
	}, doc.Company)
	assert.Equal(t, "Peter Gibbons", doc.Employee.EmployeeName)
	assert.Equal(t, "2026-03-31", doc.Employee.PayDate)
	assert.Equal(t, "22", doc.Employee.PaidDays)
	assert.Equal(t, []payslip.LineItem{
		{Name: "Basic Salary", Amount: "42000"},
		{Name: "Bonus", Amount: "1500.5"},
	}, doc.Earnings)
	assert.Equal(t, []payslip.LineItem{{Name: "Tax", Amount: "4200"}}, doc.Deductions)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, SheetFieldError{Sheet: SheetEmployee, Row: 4, Reason: `no value for "Grade"`}, report.Skipped[0])
}

func TestImportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr error
	}{
		{name: "extension", file: "data.csv", data: []byte("a,b"), wantErr: ErrUnsupportedFile},
		{name: "no extension", file: "data", data: []byte("a,b"), wantErr: ErrUnsupportedFile},
		{name: "garbage", file: "data.xlsx", data: []byte("definitely not a workbook"), wantErr: ErrParse},
		{name: "broken zip", file: "data.xlsx", data: append([]byte("PK\x03\x04"), make([]byte, 64)...), wantErr: ErrParse},
		{name: "broken ole2", file: "data.xls", data: append(append([]byte(nil), ole2Magic...), make([]byte, 64)...), wantErr: ErrParse},
		{name: "empty", file: "data.xls", data: nil, wantErr: ErrParse},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			report, err := Import(tc.file, tc.data)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

type stubSource struct {
	sheets map[string][][]string
	fail   map[string]bool
	panics map[string]bool
}

func (s stubSource) SheetNames() []string {
	return []string{SheetCompany, SheetEmployee, SheetEarnings, SheetDeductions}
}

func (s stubSource) Rows(sheet string) ([][]string, error) {
	if s.panics[sheet] {
		panic("corrupt record")
	}
	if s.fail[sheet] {
		return nil, errors.New("bad stream")
	}
	return s.sheets[sheet], nil
}

func (s stubSource) Close() error { return nil }

func TestReadIsolatesSheetFailures(t *testing.T) {
	src := stubSource{
		sheets: map[string][][]string{
			SheetCompany:    {{"Company Name", "Acme"}},
			SheetDeductions: {{"Name", "Amount"}, {"Tax", "100"}},
		},
		fail:   map[string]bool{SheetEmployee: true},
		panics: map[string]bool{SheetEarnings: true},
	}

	report := read(src)
	assert.Equal(t, []string{SheetCompany, SheetDeductions}, report.Sheets)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, SheetEmployee, report.Skipped[0].Sheet)
	assert.Equal(t, SheetEarnings, report.Skipped[1].Sheet)
	assert.Contains(t, report.Skipped[1].Reason, "corrupt record")

	doc := report.ApplyTo(payslip.Reset())
	assert.Equal(t, "Acme", doc.Company.CompanyName)
	assert.Equal(t, []payslip.LineItem{{Name: "Tax", Amount: "100"}}, doc.Deductions)
	assert.Equal(t, payslip.DefaultEarnings(), doc.Earnings)
}

func TestLookupAlias(t *testing.T) {
	assert.Equal(t, "A", lookupAlias(map[string]string{"Name": "A", "name": "B"}, itemNameAliases))
	assert.Equal(t, "B", lookupAlias(map[string]string{"Name": "", "name": "B"}, itemNameAliases))
	assert.Equal(t, "", lookupAlias(map[string]string{"Title": "C"}, itemNameAliases))
}

func TestPayDateValue(t *testing.T) {
	assert.Equal(t, "2026-03-31", payDateValue("46112"))
	assert.Equal(t, "2026-03-31", payDateValue("2026-03-31"))
	assert.Equal(t, "0", payDateValue("0"))
	assert.Equal(t, "soon", payDateValue("soon"))
}
