package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceBack/internal/models"
)

type stubRenderer struct {
	calls int
	err   error
}

func (r *stubRenderer) Render(_ context.Context, inv models.Invoice) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-" + inv.InvoiceNumber), nil
}

type recordingMailer struct {
	sent []models.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, email models.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

type stubArchiver struct {
	keys []string
	err  error
}

func (a *stubArchiver) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	a.keys = append(a.keys, key)
	return "https://cdn.example.com/" + key, a.err
}

func sampleInvoice() models.Invoice {
	return models.Invoice{
		ID:            "abc123",
		InvoiceNumber: "INV-00007",
		ClientName:    "Jane Doe",
		Services:      []models.Service{{Description: "Clean", Price: 1500}},
		Total:         1500,
	}
}

func newTestDelivery(r *stubRenderer, m *recordingMailer) *DeliveryService {
	return NewDeliveryService(r, m, CompanyProfile{
		Name:         "Elevate Cleaning Co.",
		Currency:     "KSH",
		ContactEmail: "info@example.com",
		Location:     "Nairobi, Kenya",
	}, zerolog.New(io.Discard))
}

func TestDeliverInline(t *testing.T) {
	d := newTestDelivery(&stubRenderer{}, &recordingMailer{})

	art, err := d.DeliverInline(context.Background(), sampleInvoice())
	require.NoError(t, err)
	assert.Equal(t, models.DispositionInline, art.Disposition)
	assert.Equal(t, "invoice.pdf", art.Filename)
	assert.Equal(t, "application/pdf", art.ContentType)
	assert.Equal(t, []byte("%PDF-INV-00007"), art.Content)
}

func TestDeliverAsAttachmentArchives(t *testing.T) {
	d := newTestDelivery(&stubRenderer{}, &recordingMailer{})
	archive := &stubArchiver{}
	d.Archiver = archive

	art, err := d.DeliverAsAttachment(context.Background(), sampleInvoice())
	require.NoError(t, err)
	assert.Equal(t, models.DispositionAttachment, art.Disposition)
	assert.Equal(t, "invoice-INV-00007.pdf", art.Filename)
	assert.Equal(t, []string{"invoices/INV-00007.pdf"}, archive.keys)
}

func TestDeliverAsAttachmentSurvivesArchiveFailure(t *testing.T) {
	var logs bytes.Buffer
	d := newTestDelivery(&stubRenderer{}, &recordingMailer{})
	d.Logger = zerolog.New(&logs)
	d.Archiver = &stubArchiver{err: errors.New("bucket missing")}

	_, err := d.DeliverAsAttachment(context.Background(), sampleInvoice())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "archive upload failed")
}

func TestRenderFailureIsRenderStage(t *testing.T) {
	mailer := &recordingMailer{}
	d := newTestDelivery(&stubRenderer{err: errors.New("font missing")}, mailer)

	_, err := d.DeliverInline(context.Background(), sampleInvoice())
	var derr *models.DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, models.StageRender, derr.Stage)

	err = d.DeliverByEmail(context.Background(), sampleInvoice(), "client@example.com")
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, models.StageRender, derr.Stage)
	assert.Empty(t, mailer.sent)
}

func TestDeliverByEmail(t *testing.T) {
	mailer := &recordingMailer{}
	d := newTestDelivery(&stubRenderer{}, mailer)

	err := d.DeliverByEmail(context.Background(), sampleInvoice(), " Jane <client@example.com> ")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	assert.Equal(t, "client@example.com", msg.To)
	assert.Equal(t, "Invoice #INV-00007 - Elevate Cleaning Co.", msg.Subject)
	assert.Equal(t, "Elevate Cleaning Co.", msg.SenderName)
	assert.Contains(t, msg.HTML, "#INV-00007")
	assert.Contains(t, msg.HTML, "mailto:info@example.com")
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, "invoice-INV-00007.pdf", msg.Attachment.Name)
	assert.Equal(t, []byte("%PDF-INV-00007"), msg.Attachment.Content)
}

func TestDeliverByEmailEscapesClientName(t *testing.T) {
	mailer := &recordingMailer{}
	d := newTestDelivery(&stubRenderer{}, mailer)
	inv := sampleInvoice()
	inv.ClientName = "<script>alert(1)</script>"

	require.NoError(t, d.DeliverByEmail(context.Background(), inv, "client@example.com"))
	assert.NotContains(t, mailer.sent[0].HTML, "<script>")
}

func TestDeliverByEmailRejectsBadRecipient(t *testing.T) {
	for _, recipient := range []string{"", "   ", "not-an-email", "a@b"} {
		renderer := &stubRenderer{}
		mailer := &recordingMailer{}
		d := newTestDelivery(renderer, mailer)

		err := d.DeliverByEmail(context.Background(), sampleInvoice(), recipient)
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr, "recipient %q", recipient)
		assert.Equal(t, "email", verr.Field)
		assert.Zero(t, renderer.calls)
		assert.Empty(t, mailer.sent)
	}
}

func TestDeliverByEmailTransportFailure(t *testing.T) {
	d := newTestDelivery(&stubRenderer{}, &recordingMailer{err: errors.New("smtp down")})

	err := d.DeliverByEmail(context.Background(), sampleInvoice(), "client@example.com")
	var derr *models.DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, models.StageSend, derr.Stage)
	assert.EqualError(t, errors.Unwrap(err), "smtp down")
}

func TestBuildShareLinkWithPhone(t *testing.T) {
	d := newTestDelivery(&stubRenderer{}, &recordingMailer{})

	link := d.BuildShareLink(sampleInvoice(), "https://billing.example.com/", "+254 700-000-000")

	assert.Equal(t, "https://billing.example.com/api/invoices/abc123/print", link.DownloadURL)
	assert.Equal(t, "Hello Jane Doe, here is your invoice of total KSH 1,500.00. Download it here: https://billing.example.com/api/invoices/abc123/print", link.Message)
	assert.True(t, strings.HasPrefix(link.WhatsAppLink, "https://wa.me/254700000000?text="))
	assert.Contains(t, link.WhatsAppLink, "254700000000")
	assert.Contains(t, link.WhatsAppLink, "1%2C500.00")
	assert.NotContains(t, link.WhatsAppLink, "+")

	u, err := url.Parse(link.WhatsAppLink)
	require.NoError(t, err)
	assert.Equal(t, link.Message, u.Query().Get("text"))
	assert.Contains(t, u.Query().Get("text"), "1,500.00")
}

func TestBuildShareLinkWithoutPhone(t *testing.T) {
	d := newTestDelivery(&stubRenderer{}, &recordingMailer{})

	link := d.BuildShareLink(sampleInvoice(), "http://localhost:4001", "")
	assert.True(t, strings.HasPrefix(link.WhatsAppLink, "https://wa.me/?text=Hello%20Jane%20Doe"))
}
