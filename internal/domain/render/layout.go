package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"flexipayslip/internal/domain/payslip"
)

// Page geometry in millimetres.
const (
	marginX       = 14.0
	topRuleY      = 8.0
	titleY        = 20.0
	titleInset    = 30.0
	lineHeight    = 4.0
	addressWrap   = 80.0
	logoSize      = 25.0
	headingGap    = 10.0
	tableGap      = 12.0
	netPayGap     = 15.0
	wordsGap      = 24.0
	bannerHeight  = 18.0
	cornerRadius  = 2.0
	rowHeight     = 7.0
	cellPadding   = 3.0
	keyColWidth   = 60.0
	amountWidth   = 60.0
	footerReserve = 22.0

	employeeEstimate = 40.0
	itemsEstimate    = 15.0
	itemRowEstimate  = 8.0
)

var (
	gridColor   = RGB{220, 220, 220}
	footRowFill = RGB{245, 245, 245}
	labelColor  = RGB{80, 80, 80}
	boxColor    = RGB{150, 150, 150}
	footerRule  = RGB{100, 100, 100}
	white       = RGB{255, 255, 255}
	black       = RGB{0, 0, 0}
)

const disclaimer = "This is a computer-generated document and does not require a signature."

// table is a two column grid: a header row, body rows and an optional
// totals row.
type table struct {
	x, y       float64
	widths     [2]float64
	head       [2]string
	body       [][2]string
	foot       *[2]string
	valueAlign string
	keyText    *RGB
	headFill   RGB
	tr         func(string) string
}

type page struct {
	engine *Engine
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	theme  Theme
	out    *RenderedDocument

	width, height float64
	right         float64
	content       float64
}

func newPage(e *Engine, pdf *gofpdf.Fpdf, theme Theme, out *RenderedDocument) *page {
	w, h := pdf.GetPageSize()
	return &page{
		engine:  e,
		pdf:     pdf,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		theme:   theme,
		out:     out,
		width:   w,
		height:  h,
		right:   w - marginX,
		content: w - 2*marginX,
	}
}

func (p *page) setText(c RGB) { p.pdf.SetTextColor(c.R, c.G, c.B) }
func (p *page) setDraw(c RGB) { p.pdf.SetDrawColor(c.R, c.G, c.B) }
func (p *page) setFill(c RGB) { p.pdf.SetFillColor(c.R, c.G, c.B) }

func (p *page) text(x, y float64, s string) {
	p.pdf.Text(x, y, p.tr(s))
}

func (p *page) textCentered(y float64, s string) {
	s = p.tr(s)
	p.pdf.Text((p.width-p.pdf.GetStringWidth(s))/2, y, s)
}

func (p *page) textRight(right, y float64, s string) {
	s = p.tr(s)
	p.pdf.Text(right-p.pdf.GetStringWidth(s), y, s)
}

func (p *page) wrap(s string, width float64) []string {
	var lines []string
	for _, line := range p.pdf.SplitLines([]byte(p.tr(s)), width) {
		lines = append(lines, string(line))
	}
	return lines
}

func (p *page) header() float64 {
	p.setDraw(p.theme.Primary)
	p.pdf.SetLineWidth(0.5)
	p.pdf.Line(marginX, topRuleY, p.right, topRuleY)

	y := titleY
	p.pdf.SetFont("Helvetica", "B", 18)
	p.setText(p.theme.Primary)
	p.textCentered(y, "PAYSLIP")

	y += 4
	p.pdf.Line(marginX+titleInset, y, p.right-titleInset, y)
	return y + 8
}

func (p *page) company(c payslip.CompanyInfo, logo []byte, startY float64) float64 {
	name := c.CompanyName
	if name == "" {
		name = "Company Name"
	}
	p.pdf.SetFont("Helvetica", "B", 12)
	p.setText(black)
	p.text(marginX, startY, name)

	p.pdf.SetFont("Helvetica", "", 9)
	y := startY + 5
	if c.CompanyAddress != "" {
		for _, line := range p.wrap(c.CompanyAddress, addressWrap) {
			p.pdf.Text(marginX, y, line)
			y += lineHeight
		}
	}
	if locality := payslip.Locality(c); locality != "" {
		p.text(marginX, y, locality)
		y += lineHeight
	}

	if len(logo) > 0 {
		p.logo(logo, startY)
	}

	y += 5
	p.setDraw(p.theme.Primary)
	p.pdf.SetLineWidth(0.5)
	p.pdf.Line(marginX, y, p.right, y)
	return y + 6
}

func (p *page) logo(data []byte, companyY float64) {
	typ, err := logoType(data)
	if err != nil {
		p.engine.degrade(p.out, "logo", err)
		return
	}
	opts := gofpdf.ImageOptions{ImageType: typ}
	defer func() {
		if r := recover(); r != nil {
			p.pdf.ClearError()
			p.engine.degrade(p.out, "logo", fmt.Errorf("%w: %v", ErrLogo, r))
		}
	}()
	p.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(data))
	if p.pdf.Err() {
		err := p.pdf.Error()
		p.pdf.ClearError()
		p.engine.degrade(p.out, "logo", fmt.Errorf("%w: %v", ErrLogo, err))
		return
	}
	p.pdf.ImageOptions("logo", p.right-logoSize-5, companyY-10, logoSize, logoSize, false, opts, 0, "")
}

func (p *page) heading(title string, y, underline float64) float64 {
	p.pdf.SetFont("Helvetica", "B", 11)
	p.setText(p.theme.Primary)
	if title != "" {
		p.text(marginX, y, title)
	}
	y += headingGap
	p.setDraw(gridColor)
	p.pdf.SetLineWidth(0.2)
	p.pdf.Line(marginX, y-4, marginX+underline, y-4)
	return y
}

func (p *page) employee(emp payslip.EmployeeInfo, y float64) float64 {
	y = p.heading("Employee Information", y, 60)
	t := table{
		x:          marginX,
		y:          y,
		widths:     [2]float64{keyColWidth, p.content - keyColWidth},
		head:       [2]string{"Detail", "Value"},
		valueAlign: "L",
		keyText:    &labelColor,
		headFill:   p.theme.Primary,
		tr:         p.tr,
		body: [][2]string{
			{"Name", emp.EmployeeName},
			{"Employee ID", emp.EmployeeID},
			{"Pay Period", emp.PayPeriod},
			{"Pay Date", payslip.LongDate(emp.PayDate)},
			{"Paid Days", payslip.PaidDaysText(emp)},
		},
	}
	return p.place("employee", t, employeeEstimate)
}

// items draws the earnings or deductions table; the heading underline length
// differs per section.
func (p *page) items(section, title string, items []payslip.LineItem, footLabel string, total decimal.Decimal, y, underline float64) float64 {
	y = p.heading("", y, underline)
	body := make([][2]string, 0, len(items))
	for _, item := range items {
		body = append(body, [2]string{item.Name, payslip.FormatCurrency(item.Amount)})
	}
	foot := [2]string{footLabel, payslip.FormatAmount(total)}
	t := table{
		x:          marginX,
		y:          y,
		widths:     [2]float64{p.content - amountWidth, amountWidth},
		head:       [2]string{title, "Amount"},
		body:       body,
		foot:       &foot,
		valueAlign: "R",
		headFill:   p.theme.Primary,
		tr:         p.tr,
	}
	return p.place(section, t, itemsEstimate+itemRowEstimate*float64(len(body)))
}

// place runs one table through pending -> drawn, or pending -> estimated
// when drawing fails, and returns the cursor below it.
func (p *page) place(name string, t table, estimate float64) float64 {
	idx := len(p.out.Sections)
	p.out.Sections = append(p.out.Sections, Section{Name: name, State: SectionPending})

	end, err := p.drawSafely(t)
	if err == nil {
		p.out.Sections[idx].State = SectionDrawn
		return end
	}
	p.pdf.ClearError()
	p.out.Sections[idx].State = SectionEstimated
	p.engine.degrade(p.out, name, err)
	return t.y + estimate
}

func (p *page) drawSafely(t table) (end float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("table panicked: %v", r)
		}
	}()
	end, err = p.engine.drawTable(p.pdf, t)
	if err == nil && p.pdf.Err() {
		err = p.pdf.Error()
	}
	return end, err
}

func drawTable(pdf *gofpdf.Fpdf, t table) (float64, error) {
	pdf.SetLineWidth(0.1)
	pdf.SetDrawColor(gridColor.R, gridColor.G, gridColor.B)
	pdf.SetCellMargin(cellPadding)
	y := t.y

	row := func(cells [2]string, style string, fill *RGB, text RGB, key RGB, keyStyle string) {
		filled := fill != nil
		if filled {
			pdf.SetFillColor(fill.R, fill.G, fill.B)
		}
		pdf.SetXY(t.x, y)
		pdf.SetFont("Helvetica", keyStyle, 9)
		pdf.SetTextColor(key.R, key.G, key.B)
		pdf.CellFormat(t.widths[0], rowHeight, t.tr(cells[0]), "1", 0, "L", filled, 0, "")
		pdf.SetFont("Helvetica", style, 9)
		pdf.SetTextColor(text.R, text.G, text.B)
		pdf.CellFormat(t.widths[1], rowHeight, t.tr(cells[1]), "1", 0, t.valueAlign, filled, 0, "")
		y += rowHeight
	}

	head := t.headFill
	row(t.head, "B", &head, white, white, "B")

	key, keyStyle := black, ""
	if t.keyText != nil {
		key, keyStyle = *t.keyText, "B"
	}
	for _, cells := range t.body {
		row(cells, "", nil, black, key, keyStyle)
	}
	if t.foot != nil {
		fill := footRowFill
		row(*t.foot, "B", &fill, black, black, "B")
	}
	if pdf.Err() {
		return 0, pdf.Error()
	}
	return y, nil
}

func (p *page) netPay(net decimal.Decimal, y float64) float64 {
	p.setFill(p.theme.Primary)
	p.pdf.RoundedRect(marginX, y, p.content, bannerHeight, cornerRadius, "1234", "F")

	p.pdf.SetFont("Helvetica", "B", 11)
	p.setText(white)
	p.text(marginX+10, y+12, "NET PAY:")
	p.pdf.SetFont("Helvetica", "B", 12)
	p.textRight(p.right-10, y+12, payslip.FormatAmount(net))
	return y
}

func (p *page) amountInWords(net decimal.Decimal, y float64) float64 {
	p.setDraw(boxColor)
	p.pdf.SetLineWidth(0.2)
	p.pdf.RoundedRect(marginX, y, p.content, bannerHeight, cornerRadius, "1234", "D")

	p.pdf.SetFont("Helvetica", "B", 9)
	p.setText(labelColor)
	p.text(marginX+5, y+6, "Amount in Words:")

	p.pdf.SetFont("Helvetica", "I", 9)
	p.setText(black)
	lineY := y + 6
	for _, line := range p.wrap(payslip.NumberToWords(net), p.content-80) {
		p.pdf.Text(marginX+60, lineY, line)
		lineY += lineHeight
	}
	return y + bannerHeight
}

// checkOverflow reports content that runs into the footer band. The layout
// is single page, so nothing is moved.
func (p *page) checkOverflow(bottom float64) {
	if limit := p.height - footerReserve; bottom > limit {
		p.engine.degrade(p.out, "layout", fmt.Errorf("content overflows footer (%.1fmm > %.1fmm)", bottom, limit))
	}
}

func (p *page) footer(now time.Time) {
	footerY := p.height - 10
	p.setDraw(footerRule)
	p.pdf.SetLineWidth(0.3)
	p.pdf.Line(marginX, footerY-8, p.right, footerY-8)

	p.pdf.SetFont("Helvetica", "", 7)
	p.setText(labelColor)
	p.textCentered(footerY, disclaimer)
	p.textRight(p.right-5, footerY-10, "Generated on: "+payslip.ShortDate(now))
}
