package payslip

import "errors"

var (
	ErrIncomplete      = errors.New("payslip needs a company name, an employee name and at least one earning amount")
	ErrIndexOutOfRange = errors.New("line item index out of range")
	ErrUnknownKind     = errors.New("line item kind must be earnings or deductions")
)
