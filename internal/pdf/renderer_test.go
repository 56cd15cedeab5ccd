package pdf

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceBack/internal/models"
)

func testInvoice(lines int) models.Invoice {
	inv := models.Invoice{
		InvoiceNumber: "INV-00042",
		Date:          time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		ClientName:    "Jane Doe",
	}
	for i := 0; i < lines; i++ {
		inv.Services = append(inv.Services, models.Service{Description: "Deep clean • kitchen\tand lounge", Price: 1500})
		inv.Total += 1500
	}
	return inv
}

func testRenderer() *Renderer {
	return NewRenderer(Options{CompanyName: "Elevate Cleaning Co.", Currency: "KSH", LogoPath: filepath.Join("missing", "logo.png")})
}

func TestRenderProducesPDF(t *testing.T) {
	out, err := testRenderer().Render(context.Background(), testInvoice(3))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestLayoutSinglePage(t *testing.T) {
	doc := testRenderer().layout(testInvoice(2))
	require.False(t, doc.Err(), "%v", doc.Error())
	assert.Equal(t, 1, doc.PageCount())
}

func TestLayoutPaginatesLongTables(t *testing.T) {
	doc := testRenderer().layout(testInvoice(60))
	require.False(t, doc.Err(), "%v", doc.Error())
	assert.Greater(t, doc.PageCount(), 1)
}

func TestLayoutSplitsOversizedRow(t *testing.T) {
	inv := testInvoice(0)
	inv.Services = []models.Service{{Description: strings.Repeat("line of text\n", 120), Price: 10}}

	doc := testRenderer().layout(inv)
	require.False(t, doc.Err(), "%v", doc.Error())
	assert.Greater(t, doc.PageCount(), 1)
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testRenderer().Render(ctx, testInvoice(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrap(t *testing.T) {
	doc := testRenderer().layout(testInvoice(0))
	p := &page{Fpdf: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
	p.SetFont("Helvetica", "", 10)

	lines := p.wrap("first\r\nsecond paragraph", 200)
	assert.Equal(t, []string{"first", "second paragraph"}, lines)

	long := p.wrap(strings.Repeat("x", 400), 100)
	assert.Greater(t, len(long), 1)
	assert.Equal(t, 400, len(strings.Join(long, "")))
}

func TestLongTermsFlowOntoFurtherPages(t *testing.T) {
	inv := testInvoice(2)
	inv.Terms = strings.Repeat("No refunds after service is completed unless agreed in writing. ", 120)

	r := testRenderer()
	p := newPage()
	p.AddPage()
	r.drawHeader(p, inv)
	r.drawTableHeader(p)
	y := r.drawRows(p, inv)

	p.SetFont("Helvetica", "", 9)
	termLines := p.wrap(inv.Terms, p.width-2*leftMargin)
	require.Greater(t, len(termLines), 50)

	end := r.drawTotals(p, inv, y)
	require.False(t, p.Err(), "%v", p.Error())
	assert.GreaterOrEqual(t, p.PageCount(), 2)
	assert.LessOrEqual(t, end, p.height-bottomMargin)
}

func TestLongTermsStillRender(t *testing.T) {
	inv := testInvoice(40)
	inv.Terms = strings.Repeat("Payment is due within thirty days. ", 400)

	out, err := testRenderer().Render(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFitKeepsHeaderCellsInsideTheirColumn(t *testing.T) {
	p := newPage()
	p.AddPage()
	p.SetFont("Helvetica", "B", 13)

	short := p.fit("Jane Doe", 250, 4)
	assert.Equal(t, []string{"Jane Doe"}, short)

	long := p.fit(strings.Repeat("Nairobi Westlands Business Park ", 30), 250, 4)
	require.Len(t, long, 4)
	for _, line := range long {
		assert.LessOrEqual(t, p.GetStringWidth(line), 250.0)
	}
	assert.True(t, strings.HasSuffix(long[3], "..."))
}

func TestLayoutWithLongContactDetails(t *testing.T) {
	inv := testInvoice(1)
	inv.ClientName = strings.Repeat("Very Long Client Name Holdings ", 10)
	inv.Address = strings.Repeat("Plot 42, Riverside Drive, ", 10)
	inv.Email = strings.Repeat("accounts", 8) + "@example.com"

	doc := testRenderer().layout(inv)
	require.False(t, doc.Err(), "%v", doc.Error())
	assert.Equal(t, 1, doc.PageCount())
}
