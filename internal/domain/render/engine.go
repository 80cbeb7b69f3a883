package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"

	"flexipayslip/internal/domain/payslip"
)

// Engine lays out a single A4 payslip. It holds no per-render state and is
// safe for concurrent use.
type Engine struct {
	now       func() time.Time
	logger    *slog.Logger
	drawTable func(pdf *gofpdf.Fpdf, t table) (float64, error)
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{now: time.Now, logger: logger, drawTable: drawTable}
}

// WithClock returns a copy of the engine that stamps documents with now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	out := *e
	out.now = now
	return &out
}

// Render draws doc with the named theme and an optional logo. Failed tables
// and a bad logo degrade the output instead of failing it; only a PDF that
// cannot be serialised is an error.
func (e *Engine) Render(doc payslip.Document, themeKey string, logo []byte) (*RenderedDocument, error) {
	theme, ok := LookupTheme(themeKey)
	if !ok {
		e.logger.Debug("unknown theme, using default", "theme", themeKey, "default", DefaultTheme)
		theme = ThemeOrDefault(DefaultTheme)
	}
	now := e.now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(marginX, 0, marginX)
	pdf.SetCreationDate(now)
	pdf.SetTitle(payslip.FileName(doc.Employee), true)
	pdf.SetCreator("flexipayslip", true)
	pdf.AddPage()

	out := &RenderedDocument{
		fileName: payslip.FileName(doc.Employee),
		Theme:    theme.Key,
	}
	p := newPage(e, pdf, theme, out)
	totals := doc.Totals()

	y := p.header()
	y = p.company(doc.Company, logo, y)
	y = p.employee(doc.Employee, y)
	y = p.items("earnings", "Earnings", payslip.Visible(doc.Earnings), "Gross Earnings", totals.Gross, y+tableGap, 30)
	y = p.items("deductions", "Deductions", payslip.Visible(doc.Deductions), "Total Deductions", totals.Deductions, y+tableGap, 35)
	y = p.netPay(totals.Net, y+netPayGap)
	y = p.amountInWords(totals.Net, y+wordsGap)
	p.checkOverflow(y)
	p.footer(now)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	out.data = buf.Bytes()
	return out, nil
}

func (e *Engine) degrade(out *RenderedDocument, section string, err error) {
	d := Degradation{Section: section, Reason: err.Error()}
	out.Degradations = append(out.Degradations, d)
	e.logger.Warn("payslip render degraded", "section", section, "error", err)
}

// logoType maps sniffed image content to a gofpdf image type.
func logoType(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	}
	return "", ErrLogo
}
