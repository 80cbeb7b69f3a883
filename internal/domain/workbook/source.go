package workbook

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// source is the part of a spreadsheet reader the mapper needs. Rows are
// returned with trailing empty cells removed.
type source interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
	Close() error
}

func checkExtension(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return nil
	}
	return ErrUnsupportedFile
}

// openSource picks a reader by content rather than by extension, so a
// renamed .xls still opens.
func openSource(data []byte) (source, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return &xlsxSource{file: f}, nil
	case bytes.HasPrefix(data, ole2Magic):
		return openXLS(data)
	}
	return nil, fmt.Errorf("%w: unrecognised file content", ErrParse)
}

type xlsxSource struct {
	file *excelize.File
}

func (s *xlsxSource) SheetNames() []string {
	return s.file.GetSheetList()
}

func (s *xlsxSource) Rows(sheet string) ([][]string, error) {
	rows, err := s.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = trimRow(rows[i])
	}
	return rows, nil
}

func (s *xlsxSource) Close() error {
	return s.file.Close()
}

type xlsSource struct {
	book   *xls.WorkBook
	names  []string
	sheets map[string]int
}

func openXLS(data []byte) (src source, err error) {
	// The BIFF reader panics on some truncated streams.
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if book == nil {
		return nil, fmt.Errorf("%w: no workbook stream", ErrParse)
	}
	s := &xlsSource{book: book, sheets: make(map[string]int)}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		if _, seen := s.sheets[sheet.Name]; seen {
			continue
		}
		s.sheets[sheet.Name] = i
		s.names = append(s.names, sheet.Name)
	}
	return s, nil
}

func (s *xlsSource) SheetNames() []string {
	return s.names
}

func (s *xlsSource) Rows(name string) ([][]string, error) {
	idx, ok := s.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", name)
	}
	sheet := s.book.GetSheet(idx)
	if sheet == nil {
		return nil, fmt.Errorf("sheet %q could not be read", name)
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for r := 0; r <= int(sheet.MaxRow); r++ {
		row := sheetRow(sheet, r)
		if row == nil {
			// keep numbering aligned with the sheet, as excelize does
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, trimRow(cells))
	}
	return rows, nil
}

func (s *xlsSource) Close() error { return nil }

// sheetRow returns nil for rows with no records. WorkSheet.Row dereferences
// the missing entry instead.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func trimRow(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}
