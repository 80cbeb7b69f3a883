package workbook

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks a buffer that is not a readable spreadsheet container.
	ErrParse           = errors.New("workbook could not be read")
	ErrUnsupportedFile = errors.New("please upload an Excel file (.xlsx or .xls)")
)

// SheetFieldError describes a row or sheet that was skipped during import.
// It is reported, never returned.
type SheetFieldError struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row,omitempty"`
	Reason string `json:"reason"`
}

func (e SheetFieldError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("sheet %q row %d: %s", e.Sheet, e.Row, e.Reason)
	}
	return fmt.Sprintf("sheet %q: %s", e.Sheet, e.Reason)
}
