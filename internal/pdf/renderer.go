package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"invoiceBack/internal/models"
	"invoiceBack/utils"
)

const (
	leftMargin   = 40.0
	bottomMargin = 150.0
	lineHeight   = 12.0
	termsHeight  = 11.0
	rowPadding   = 6.0
	minRowHeight = 24.0
	descWidth    = 270.0

	headerHeight = 220.0
	rowsTop      = headerHeight + 32

	defaultBank  = "COOPERATIVE BANK"
	defaultTerms = "Grand Total is inclusive of VAT"
)

type rgb struct{ r, g, b int }

var (
	navy      = rgb{30, 58, 138}
	lightGrey = rgb{230, 230, 230}
	paleBlue  = rgb{241, 246, 251}
	black     = rgb{0, 0, 0}
	white     = rgb{255, 255, 255}
	muted     = rgb{85, 85, 85}
)

// Options carries the company branding printed on every invoice.
type Options struct {
	CompanyName string
	Tagline     string
	Currency    string
	LogoPath    string
}

// Renderer lays invoices out on A4 pages, breaking the service table across
// as many pages as it needs.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) Render(ctx context.Context, inv models.Invoice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := r.layout(inv)
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

type page struct {
	*fpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
}

func (p *page) color(c rgb) {
	p.SetTextColor(c.r, c.g, c.b)
}

func (p *page) text(x, y, w float64, align, s string) {
	p.SetXY(x, y)
	p.CellFormat(w, lineHeight, p.tr(s), "", 0, align, false, 0, "")
}

// wrap breaks s into lines no wider than width in the current font. Words
// wider than a whole line are cut.
func (p *page) wrap(s string, width float64) []string {
	width -= 2 * p.GetCellMargin()
	var lines []string
	for _, para := range strings.Split(p.tr(normalise(s)), "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for p.GetStringWidth(word) > width && len(word) > 1 {
				cut := len(word) - 1
				for cut > 1 && p.GetStringWidth(word[:cut]) > width {
					cut--
				}
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			switch {
			case line == "":
				line = word
			case p.GetStringWidth(line+" "+word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// fit wraps s like wrap but keeps at most maxLines lines, marking a cut with "...".
func (p *page) fit(s string, width float64, maxLines int) []string {
	lines := p.wrap(s, width)
	if len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := lines[maxLines-1]
	for last != "" && p.GetStringWidth(last+"...") > width-2*p.GetCellMargin() {
		last = last[:len(last)-1]
	}
	lines[maxLines-1] = last + "..."
	return lines
}

func newPage() *page {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(leftMargin, leftMargin, leftMargin)
	doc.SetAutoPageBreak(false, 0)

	w, h := doc.GetPageSize()
	return &page{Fpdf: doc, tr: doc.UnicodeTranslatorFromDescriptor(""), width: w, height: h}
}

func (r *Renderer) layout(inv models.Invoice) *fpdf.Fpdf {
	p := newPage()
	p.AddPage()
	r.drawHeader(p, inv)
	r.drawTableHeader(p)

	y := r.drawRows(p, inv)
	r.drawTotals(p, inv, y)
	return p.Fpdf
}

func (r *Renderer) drawHeader(p *page, inv models.Invoice) {
	if logoSupported(r.opts.LogoPath) {
		if _, err := os.Stat(r.opts.LogoPath); err == nil {
			p.ImageOptions(r.opts.LogoPath, leftMargin, 40, 65, 0, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		}
	}

	p.color(navy)
	p.SetFont("Helvetica", "B", 16)
	p.text(leftMargin+80, 50, 250, "L", r.opts.CompanyName)
	p.SetFont("Helvetica", "", 10)
	p.text(leftMargin+80, 72, 250, "L", r.opts.Tagline)

	badgeW, badgeH := 120.0, 34.0
	badgeX := p.width - badgeW - leftMargin
	p.SetFillColor(navy.r, navy.g, navy.b)
	p.Rect(badgeX, 55, badgeW, badgeH, "F")
	p.color(white)
	p.SetFont("Helvetica", "B", 16)
	p.SetXY(badgeX, 55)
	p.CellFormat(badgeW, badgeH, "INVOICE", "", 0, "CM", false, 0, "")

	p.SetDrawColor(lightGrey.r, lightGrey.g, lightGrey.b)
	p.SetLineWidth(1)
	p.Line(leftMargin, 120, p.width-leftMargin, 120)

	const sectionTop = 135.0
	client := inv.ClientName
	if client == "" {
		client = "Unnamed Client"
	}
	p.color(navy)
	p.SetFont("Helvetica", "", 11)
	p.text(leftMargin, sectionTop, 200, "L", "Invoice To :")
	p.color(black)
	p.SetFont("Helvetica", "B", 13)
	for i, line := range p.fit(client, 250, 4) {
		p.SetXY(leftMargin, sectionTop+18+float64(i)*14)
		p.CellFormat(250, 14, line, "", 0, "L", false, 0, "")
	}

	number := inv.InvoiceNumber
	if number == "" {
		number = "N/A"
	}
	metaX := p.width/2 + 40
	p.SetFont("Helvetica", "", 10)
	p.text(metaX, sectionTop+5, 200, "L", "Invoice No: "+number)
	p.text(metaX, sectionTop+20, 200, "L", "Date: "+inv.Date.Format("02 Jan 2006"))
}

func (r *Renderer) drawTableHeader(p *page) {
	top := headerHeight
	p.SetFillColor(navy.r, navy.g, navy.b)
	p.Rect(leftMargin, top, p.width-2*leftMargin, 24, "F")

	p.color(white)
	p.SetFont("Helvetica", "B", 10)
	p.text(leftMargin+10, top+6, 30, "L", "NO")
	p.text(leftMargin+50, top+6, descWidth, "L", "DESCRIPTION")
	p.text(leftMargin+330, top+6, 80, "R", "PRICE")
	p.text(leftMargin+420, top+6, 95, "R", "TOTAL")

	p.SetDrawColor(204, 204, 204)
	p.SetLineWidth(0.5)
	p.Line(leftMargin, top+24, p.width-leftMargin, top+24)
}

// breakPage closes the current page with a continuation note and starts a
// new one below the invoice header.
func (r *Renderer) breakPage(p *page, inv models.Invoice) {
	p.color(muted)
	p.SetFont("Helvetica", "I", 9)
	p.text(leftMargin, p.height-60, 300, "L", "Continued on next page...")

	p.AddPage()
	r.drawHeader(p, inv)
}

func (r *Renderer) nextPage(p *page, inv models.Invoice) {
	r.breakPage(p, inv)
	r.drawTableHeader(p)
}

// drawRows writes one row per service and returns the y below the last row.
// A row that does not fit moves to the next page; a row taller than a whole
// page is split line by line.
func (r *Renderer) drawRows(p *page, inv models.Invoice) float64 {
	limit := p.height - bottomMargin
	y := rowsTop

	for i, s := range inv.Services {
		p.SetFont("Helvetica", "", 10)
		lines := p.wrap(s.Description, descWidth)
		price := utils.FormatMoney(r.opts.Currency, float64(s.Price))

		first := true
		for len(lines) > 0 {
			fit := int((limit - y - rowPadding) / lineHeight)
			if fit < len(lines) && y > rowsTop {
				r.nextPage(p, inv)
				y = rowsTop
				continue
			}
			n := len(lines)
			if fit < n {
				n = fit
			}
			if n < 1 {
				n = 1
			}

			p.color(black)
			p.SetFont("Helvetica", "", 10)
			if first {
				p.text(leftMargin+10, y, 30, "L", fmt.Sprint(i+1))
				p.text(leftMargin+330, y, 80, "R", price)
				p.text(leftMargin+420, y, 95, "R", price)
			}
			for j, line := range lines[:n] {
				p.SetXY(leftMargin+50, y+float64(j)*lineHeight)
				p.CellFormat(descWidth, lineHeight, line, "", 0, "L", false, 0, "")
			}

			rowH := float64(n)*lineHeight + rowPadding
			if rowH < minRowHeight {
				rowH = minRowHeight
			}
			y += rowH
			p.SetDrawColor(240, 240, 240)
			p.SetLineWidth(0.5)
			p.Line(leftMargin, y-rowPadding/2, p.width-leftMargin, y-rowPadding/2)

			lines = lines[n:]
			first = false
		}
	}
	return y
}

// drawTotals writes the payment and total boxes, then flows the terms onto
// further pages as needed. It returns the y below the last terms line.
func (r *Renderer) drawTotals(p *page, inv models.Invoice, y float64) float64 {
	limit := p.height - bottomMargin
	terms := inv.Terms
	if terms == "" {
		terms = defaultTerms
	}
	p.SetFont("Helvetica", "", 9)
	termLines := p.wrap(terms, p.width-2*leftMargin)

	// boxes, thanks line, terms heading and the first terms line stay together
	if y+20+100+48+termsHeight > limit {
		r.nextPage(p, inv)
		y = rowsTop
	}

	top := y + 20
	boxW := 280.0
	totalX := leftMargin + 300
	totalW := p.width - leftMargin - totalX

	p.SetFillColor(paleBlue.r, paleBlue.g, paleBlue.b)
	p.SetDrawColor(230, 238, 248)
	p.Rect(leftMargin, top, boxW, 70, "FD")
	p.color(navy)
	p.SetFont("Helvetica", "B", 11)
	p.text(leftMargin+10, top+6, boxW-20, "L", "PAYMENT METHOD :")
	p.color(black)
	p.SetFont("Helvetica", "", 10)
	p.text(leftMargin+10, top+24, boxW-20, "L", orDefault(inv.BankName, defaultBank))
	p.text(leftMargin+10, top+38, boxW-20, "L", "Account Name: "+orDefault(inv.AccountName, "Account Name"))
	p.text(leftMargin+10, top+52, boxW-20, "L", "Account Number: "+inv.AccountNumber)

	p.SetFillColor(navy.r, navy.g, navy.b)
	p.Rect(totalX, top, totalW, 54, "F")
	p.color(white)
	p.SetFont("Helvetica", "B", 11)
	p.text(totalX+10, top+6, totalW-20, "L", "GRAND TOTAL :")
	p.SetFont("Helvetica", "B", 13)
	p.text(totalX+10, top+28, totalW-20, "L", utils.FormatMoney(r.opts.Currency, inv.Total))

	lineY := top + 100
	p.SetDrawColor(lightGrey.r, lightGrey.g, lightGrey.b)
	p.SetLineWidth(1)
	p.Line(leftMargin, lineY, p.width-leftMargin, lineY)

	p.color(black)
	p.SetFont("Helvetica", "", 10)
	p.text(leftMargin, lineY+14, 300, "L", "Thank you for doing business with us!")
	p.SetFont("Helvetica", "B", 10)
	p.text(leftMargin, lineY+34, 300, "L", "Terms and Conditions :")

	ty := lineY + 48
	for _, line := range termLines {
		if ty+termsHeight > limit {
			r.breakPage(p, inv)
			ty = headerHeight
		}
		p.color(black)
		p.SetFont("Helvetica", "", 9)
		p.SetXY(leftMargin, ty)
		p.CellFormat(p.width-2*leftMargin, termsHeight, line, "", 0, "L", false, 0, "")
		ty += termsHeight
	}

	r.drawSignature(p, inv)
	r.drawContacts(p, inv)
	return ty
}

// drawSignature and drawContacts sit in the bottom margin, below anything
// the table or the terms may use.
func (r *Renderer) drawSignature(p *page, inv models.Invoice) {
	sigY := p.height - 140
	p.color(black)
	p.SetFont("Helvetica", "B", 11)
	p.text(p.width-200, sigY, 160, "R", orDefault(inv.Administrator, "Administrator"))
	p.SetFont("Helvetica", "", 10)
	p.text(p.width-200, sigY+16, 160, "R", "Administrator")
}

func (r *Renderer) drawContacts(p *page, inv models.Invoice) {
	const maxLines = 5
	p.color(black)
	p.SetFont("Helvetica", "", 9)

	addressX := leftMargin + 340
	columns := []struct {
		x, w float64
		text string
	}{
		{leftMargin, 170, "Phone: " + inv.Phone},
		{leftMargin + 180, 150, "Email: " + inv.Email},
		{addressX, p.width - leftMargin - addressX, "Address: " + inv.Address},
	}

	wrapped := make([][]string, len(columns))
	rows := 1
	for i, c := range columns {
		wrapped[i] = p.fit(c.text, c.w, maxLines)
		if len(wrapped[i]) > rows {
			rows = len(wrapped[i])
		}
	}

	top := p.height - 48 - float64(rows)*termsHeight
	for i, c := range columns {
		for j, line := range wrapped[i] {
			p.SetXY(c.x, top+float64(j)*termsHeight)
			p.CellFormat(c.w, termsHeight, line, "", 0, "L", false, 0, "")
		}
	}
}

func logoSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

func normalise(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
