package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexipayslip/internal/domain/payslip"
)

func testEngine() *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(logger).WithClock(func() time.Time {
		return time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)
	})
}

func sampleDocument() payslip.Document {
	doc := payslip.Reset()
	doc.Company = payslip.CompanyInfo{
		CompanyName:    "Acme Pvt Ltd",
		CompanyAddress: "4th Floor, Orchid Tech Park, Outer Ring Road, Marathahalli",
		City:           "Bengaluru",
		Pincode:        "560037",
		Country:        "India",
	}
	doc.Employee = payslip.EmployeeInfo{
		EmployeeName:  "Asha Rao",
		EmployeeID:    "EMP-042",
		PayPeriod:     "March 2026",
		PaidDays:      "30",
		LossOfPayDays: "1",
		PayDate:       "2026-03-31",
	}
	doc.Earnings = []payslip.LineItem{
		{Name: "Basic Salary", Amount: "50000"},
		{Name: "House Rent Allowance", Amount: "20000"},
		{Name: "", Amount: "999"},
	}
	doc.Deductions = []payslip.LineItem{
		{Name: "Tax", Amount: "5000"},
		{Name: "Insurance", Amount: "1200.50"},
	}
	return doc
}

func pngLogo(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 42, G: 93, B: 134, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRenderProducesPDF(t *testing.T) {
	out, err := testEngine().Render(sampleDocument(), "modern", pngLogo(t))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "modern", out.Theme)
	assert.Equal(t, "Payslip_Asha_Rao_March_2026.pdf", out.FileName())
	assert.Empty(t, out.Degradations)
	assert.Equal(t, []Section{
		{Name: "employee", State: SectionDrawn},
		{Name: "earnings", State: SectionDrawn},
		{Name: "deductions", State: SectionDrawn},
	}, out.Sections)
}

func TestRenderNegativeNet(t *testing.T) {
	doc := sampleDocument()
	doc.Earnings = []payslip.LineItem{{Name: "Basic Salary", Amount: "100"}}
	doc.Deductions = []payslip.LineItem{{Name: "Advance Recovery", Amount: "200"}}

	out, err := testEngine().Render(doc, "classic", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Bytes())
	assert.False(t, out.Degraded())
}

func TestRenderEmptyDocument(t *testing.T) {
	out, err := testEngine().Render(payslip.Reset(), "", nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "Payslip_Employee_Period.pdf", out.FileName())
}

func TestRenderUnknownThemeFallsBack(t *testing.T) {
	out, err := testEngine().Render(sampleDocument(), "neon", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, out.Theme)
}

func TestRenderTableFailureDegrades(t *testing.T) {
	tests := []struct {
		name string
		draw func(pdf *gofpdf.Fpdf, tbl table) (float64, error)
	}{
		{
			name: "error",
			draw: func(pdf *gofpdf.Fpdf, tbl table) (float64, error) {
				if tbl.head[0] == "Earnings" {
					return 0, errors.New("row height exceeded")
				}
				return drawTable(pdf, tbl)
			},
		},
		{
			name: "pdf error state",
			draw: func(pdf *gofpdf.Fpdf, tbl table) (float64, error) {
				if tbl.head[0] == "Earnings" {
					pdf.SetErrorf("font not loaded")
					return tbl.y, nil
				}
				return drawTable(pdf, tbl)
			},
		},
		{
			name: "panic",
			draw: func(pdf *gofpdf.Fpdf, tbl table) (float64, error) {
				if tbl.head[0] == "Earnings" {
					panic("index out of range")
				}
				return drawTable(pdf, tbl)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e := testEngine()
			e.drawTable = tc.draw

			out, err := e.Render(sampleDocument(), "classic", nil)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
			require.Len(t, out.Degradations, 1)
			assert.Equal(t, "earnings", out.Degradations[0].Section)
			assert.Equal(t, SectionEstimated, out.Sections[1].State)
			assert.Equal(t, SectionDrawn, out.Sections[2].State)
		})
	}
}

func TestRenderEstimateAdvancesCursor(t *testing.T) {
	var starts []float64
	e := testEngine()
	e.drawTable = func(pdf *gofpdf.Fpdf, tbl table) (float64, error) {
		starts = append(starts, tbl.y)
		if tbl.head[0] == "Detail" {
			return 0, errors.New("broken")
		}
		return drawTable(pdf, tbl)
	}

	_, err := e.Render(sampleDocument(), "classic", nil)
	require.NoError(t, err)
	require.Len(t, starts, 3)
	// earnings start = employee start + estimate + gap + heading gap
	assert.InDelta(t, starts[0]+employeeEstimate+tableGap+headingGap, starts[1], 0.001)
}

func TestNetPayBoxesHaveRoundedCorners(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.AddPage()
	p := newPage(testEngine(), pdf, ThemeOrDefault(DefaultTheme), &RenderedDocument{})

	net := decimal.RequireFromString("65000")
	y := p.netPay(net, 150)
	p.amountInWords(net, y+wordsGap)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	content := buf.String()
	// four Bezier corners per box
	assert.Equal(t, 8, strings.Count(content, " c \n"))
	assert.NotContains(t, content, " re f\n")
	assert.NotContains(t, content, " re S\n")
}

func TestRenderBadLogoDegrades(t *testing.T) {
	out, err := testEngine().Render(sampleDocument(), "elegant", []byte("not an image at all"))
	require.NoError(t, err)
	require.Len(t, out.Degradations, 1)
	assert.Equal(t, "logo", out.Degradations[0].Section)

	truncated := pngLogo(t)[:40]
	out, err = testEngine().Render(sampleDocument(), "elegant", truncated)
	require.NoError(t, err)
	require.Len(t, out.Degradations, 1)
	assert.Equal(t, "logo", out.Degradations[0].Section)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestRenderReportsOverflow(t *testing.T) {
	doc := sampleDocument()
	for i := 0; i < 12; i++ {
		doc.Earnings = append(doc.Earnings, payslip.LineItem{Name: "Allowance", Amount: "100"})
	}

	out, err := testEngine().Render(doc, "corporate", nil)
	require.NoError(t, err)
	require.NotEmpty(t, out.Degradations)
	last := out.Degradations[len(out.Degradations)-1]
	assert.Equal(t, "layout", last.Section)
	assert.Contains(t, last.Reason, "overflows footer")
}

func TestRenderedDocumentHandles(t *testing.T) {
	out, err := testEngine().Render(sampleDocument(), "classic", nil)
	require.NoError(t, err)

	handle := out.Open()
	data, err := io.ReadAll(handle)
	require.NoError(t, err)
	assert.Equal(t, out.Bytes(), data)
	require.NoError(t, handle.Close())
	_, err = handle.Read(make([]byte, 1))
	assert.ErrorIs(t, err, os.ErrClosed)

	var buf bytes.Buffer
	n, err := out.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Size()), n)

	dir := t.TempDir()
	path, err := out.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Payslip_Asha_Rao_March_2026.pdf"), path)

	path, err = out.Save(filepath.Join(dir, "custom.pdf"))
	require.NoError(t, err)
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out.Bytes(), saved)
}

func TestThemes(t *testing.T) {
	list := Themes()
	require.Len(t, list, 4)
	keys := []string{list[0].Key, list[1].Key, list[2].Key, list[3].Key}
	assert.Equal(t, []string{"classic", "modern", "elegant", "corporate"}, keys)
	assert.Equal(t, RGB{42, 93, 134}, list[0].Primary)
	assert.Equal(t, RGB{240, 235, 249}, list[2].Accent)

	list[0].Key = "mutated"
	assert.Equal(t, "classic", Themes()[0].Key)

	_, ok := LookupTheme("neon")
	assert.False(t, ok)
	assert.Equal(t, "classic", ThemeOrDefault("neon").Key)
}
