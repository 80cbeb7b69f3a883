package paysliphandler

import (
	"flexipayslip/internal/domain/draft"
	"flexipayslip/internal/domain/payslip"
	"flexipayslip/internal/domain/workbook"
)

type companyRequest struct {
	CompanyName    string `json:"companyName" validate:"max=200"`
	CompanyAddress string `json:"companyAddress" validate:"max=500"`
	City           string `json:"city" validate:"max=100"`
	Pincode        string `json:"pincode" validate:"max=20"`
	Country        string `json:"country" validate:"max=100"`
}

func (c companyRequest) info() payslip.CompanyInfo {
	return payslip.CompanyInfo{
		CompanyName:    c.CompanyName,
		CompanyAddress: c.CompanyAddress,
		City:           c.City,
		Pincode:        c.Pincode,
		Country:        c.Country,
	}
}

// employeeRequest enforces the input-time rules the core leaves to its
// callers: numeric day counts and a pay date that is not in the future.
type employeeRequest struct {
	EmployeeName  string `json:"employeeName" validate:"max=200"`
	EmployeeID    string `json:"employeeId" validate:"max=50"`
	PayPeriod     string `json:"payPeriod" validate:"max=100"`
	PaidDays      string `json:"paidDays" validate:"omitempty,numeric"`
	LossOfPayDays string `json:"lossOfPayDays" validate:"omitempty,numeric"`
	PayDate       string `json:"payDate" validate:"omitempty,datetime=2006-01-02,notfuture"`
}

func (e employeeRequest) info() payslip.EmployeeInfo {
	return payslip.EmployeeInfo{
		EmployeeName:  e.EmployeeName,
		EmployeeID:    e.EmployeeID,
		PayPeriod:     e.PayPeriod,
		PaidDays:      e.PaidDays,
		LossOfPayDays: e.LossOfPayDays,
		PayDate:       e.PayDate,
	}
}

type lineItemRequest struct {
	Name   string `json:"name" validate:"max=200"`
	Amount string `json:"amount" validate:"omitempty,numeric"`
}

func (l lineItemRequest) item() payslip.LineItem {
	return payslip.LineItem{Name: l.Name, Amount: l.Amount}
}

type itemsRequest struct {
	Items []lineItemRequest `json:"items" validate:"max=100,dive"`
}

func (r itemsRequest) items() []payslip.LineItem {
	out := make([]payslip.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, item.item())
	}
	return out
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,theme"`
}

type draftResponse struct {
	draft.Draft
	HasLogo bool `json:"hasLogo"`
}

func newDraftResponse(d draft.Draft) draftResponse {
	return draftResponse{Draft: d, HasLogo: d.HasLogo()}
}

type importResponse struct {
	Draft  draftResponse    `json:"draft"`
	Report *workbook.Report `json:"report"`
}
