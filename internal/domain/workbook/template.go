package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	TemplateFileName    = "payslip_template.xlsx"
	TemplateContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type templateSheet struct {
	name string
	rows [][]interface{}
}

var templateSheets = []templateSheet{
	{SheetCompany, [][]interface{}{
		{"Company Name"},
		{"Address"},
		{"City"},
		{"Pincode"},
		{"Country", "India"},
	}},
	{SheetEmployee, [][]interface{}{
		{"Employee Name"},
		{"Employee ID"},
		{"Pay Period"},
		{"Paid Days"},
		{"Loss of Pay Days"},
		{"Pay Date"},
	}},
	{SheetEarnings, [][]interface{}{
		{"Name", "Amount"},
		{"Basic Salary"},
		{"House Rent Allowance"},
		{"Transport Allowance"},
		{"Medical Allowance"},
		{"Special Allowance"},
	}},
	{SheetDeductions, [][]interface{}{
		{"Name", "Amount"},
		{"Tax"},
		{"Insurance"},
		{"Provident Fund"},
		{"Professional Tax"},
	}},
}

// ExportTemplate builds the blank workbook users fill in and import back.
func ExportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sheet := range templateSheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", sheet.name, err)
		}
		for r, row := range sheet.rows {
			row := row
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				return nil, fmt.Errorf("write %s row %d: %w", sheet.name, r+1, err)
			}
		}
		if err := f.SetColWidth(sheet.name, "A", "A", 24); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}
