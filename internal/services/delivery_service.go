package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"invoiceBack/internal/models"
	"invoiceBack/utils"
)

const pdfContentType = "application/pdf"

// Renderer turns an invoice into a PDF document.
type Renderer interface {
	Render(ctx context.Context, inv models.Invoice) ([]byte, error)
}

// Mailer hands a message to an email transport.
type Mailer interface {
	Send(ctx context.Context, email models.Email) error
}

// Archiver keeps a copy of printed invoices. It is optional.
type Archiver interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

type CompanyProfile struct {
	Name         string
	Tagline      string
	Currency     string
	ContactEmail string
	Location     string
}

type DeliveryService struct {
	Renderer Renderer
	Mailer   Mailer
	Archiver Archiver
	Company  CompanyProfile
	Logger   zerolog.Logger
	Now      func() time.Time
}

func NewDeliveryService(renderer Renderer, mailer Mailer, company CompanyProfile, logger zerolog.Logger) *DeliveryService {
	return &DeliveryService{
		Renderer: renderer,
		Mailer:   mailer,
		Company:  company,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (s *DeliveryService) RenderArtifact(ctx context.Context, inv models.Invoice) ([]byte, error) {
	content, err := s.Renderer.Render(ctx, inv)
	if err != nil {
		return nil, &models.DeliveryError{Stage: models.StageRender, Err: err}
	}
	return content, nil
}

// DeliverInline renders the invoice for display in the browser.
func (s *DeliveryService) DeliverInline(ctx context.Context, inv models.Invoice) (models.Artifact, error) {
	content, err := s.RenderArtifact(ctx, inv)
	if err != nil {
		return models.Artifact{}, err
	}
	return models.Artifact{
		Content:     content,
		ContentType: pdfContentType,
		Disposition: models.DispositionInline,
		Filename:    "invoice.pdf",
	}, nil
}

// DeliverAsAttachment renders the invoice as a download. When an archiver is
// configured the PDF is also uploaded; an upload failure is only logged.
func (s *DeliveryService) DeliverAsAttachment(ctx context.Context, inv models.Invoice) (models.Artifact, error) {
	content, err := s.RenderArtifact(ctx, inv)
	if err != nil {
		return models.Artifact{}, err
	}

	if s.Archiver != nil {
		key := "invoices/" + inv.InvoiceNumber + ".pdf"
		if location, err := s.Archiver.Upload(ctx, key, content, pdfContentType); err != nil {
			s.Logger.Warn().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("archive upload failed")
		} else {
			s.Logger.Debug().Str("invoice_number", inv.InvoiceNumber).Str("url", location).Msg("invoice archived")
		}
	}

	return models.Artifact{
		Content:     content,
		ContentType: pdfContentType,
		Disposition: models.DispositionAttachment,
		Filename:    "invoice-" + inv.InvoiceNumber + ".pdf",
	}, nil
}

// DeliverByEmail renders the invoice and mails it to recipient. The recipient
// is checked before anything is rendered or sent.
func (s *DeliveryService) DeliverByEmail(ctx context.Context, inv models.Invoice, recipient string) error {
	to, err := ParseRecipient(recipient)
	if err != nil {
		return err
	}

	content, err := s.RenderArtifact(ctx, inv)
	if err != nil {
		return err
	}

	html, err := s.invoiceEmailHTML(inv)
	if err != nil {
		return &models.DeliveryError{Stage: models.StageRender, Err: err}
	}

	email := models.Email{
		To:         to,
		Subject:    fmt.Sprintf("Invoice #%s - %s", inv.InvoiceNumber, s.Company.Name),
		HTML:       html,
		SenderName: s.Company.Name,
		Attachment: &models.Attachment{
			Name:    "invoice-" + inv.InvoiceNumber + ".pdf",
			Content: content,
		},
	}
	if err := s.Mailer.Send(ctx, email); err != nil {
		return &models.DeliveryError{Stage: models.StageSend, Err: err}
	}
	return nil
}

// BuildShareLink builds a WhatsApp deep link whose message carries the client
// name, the formatted total and the download URL.
func (s *DeliveryService) BuildShareLink(inv models.Invoice, baseURL, phone string) models.ShareLink {
	currency := s.Company.Currency
	if currency == "" {
		currency = "KSH"
	}
	downloadURL := strings.TrimRight(baseURL, "/") + "/api/invoices/" + inv.ID + "/print"
	message := fmt.Sprintf("Hello %s, here is your invoice of total %s. Download it here: %s",
		inv.ClientName, utils.FormatMoney(currency, inv.Total), downloadURL)

	escaped := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	link := "https://wa.me/?text=" + escaped
	if digits := digitsOnly(phone); digits != "" {
		link = "https://wa.me/" + digits + "?text=" + escaped
	}

	return models.ShareLink{WhatsAppLink: link, Message: message, DownloadURL: downloadURL}
}

// ParseRecipient returns the bare address of a single recipient or a
// ValidationError on the "email" field.
func ParseRecipient(recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", &models.ValidationError{Field: "email", Message: "recipient email is required"}
	}
	addr, err := mail.ParseAddress(recipient)
	if err != nil || !strings.Contains(addr.Address, ".") {
		return "", &models.ValidationError{Field: "email", Message: "recipient email is invalid"}
	}
	return addr.Address, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var invoiceEmailTemplate = template.Must(template.New("invoice").Parse(`<div style="font-family: 'Segoe UI', Roboto, sans-serif; background-color: #f4f7fb; padding: 30px;">
  <div style="max-width: 650px; background: #ffffff; border-radius: 12px; margin: 0 auto; overflow: hidden;">
    <div style="background: linear-gradient(135deg, #007bff, #00bcd4); padding: 25px 30px; text-align: center;">
      <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.Company}}</h1>
      {{if .Tagline}}<p style="color: #e0f7fa; margin-top: 5px; font-size: 15px;">{{.Tagline}}</p>{{end}}
    </div>
    <div style="padding: 30px;">
      <h2 style="color: #333;">Hello {{.ClientName}},</h2>
      <p style="color: #555; font-size: 16px; line-height: 1.6;">
        Thank you for choosing <strong>{{.Company}}</strong>!<br/>
        Please find attached your invoice <strong>#{{.InvoiceNumber}}</strong> for the recent service provided.
      </p>
      <p style="color: #555; font-size: 15px; line-height: 1.6; margin-top: 25px;">
        Kindly review the attached invoice and contact us if you have any questions or clarifications.
      </p>
      {{if .ContactEmail}}<div style="text-align: center; margin-top: 30px;">
        <a href="mailto:{{.ContactEmail}}" style="background: #007bff; color: #fff; text-decoration: none; padding: 12px 25px; border-radius: 8px; font-size: 16px;">Contact Our Team</a>
      </div>{{end}}
    </div>
    <div style="background: #f8fafc; padding: 15px; text-align: center; color: #777; font-size: 13px;">
      <p style="margin: 0;">&copy; {{.Year}} {{.Company}}<br/>{{.ContactEmail}}{{if and .ContactEmail .Location}} | {{end}}{{.Location}}</p>
    </div>
  </div>
</div>`))

func (s *DeliveryService) invoiceEmailHTML(inv models.Invoice) (string, error) {
	var buf bytes.Buffer
	err := invoiceEmailTemplate.Execute(&buf, struct {
		Company       string
		Tagline       string
		ClientName    string
		InvoiceNumber string
		ContactEmail  string
		Location      string
		Year          int
	}{
		Company:       s.Company.Name,
		Tagline:       s.Company.Tagline,
		ClientName:    inv.ClientName,
		InvoiceNumber: inv.InvoiceNumber,
		ContactEmail:  s.Company.ContactEmail,
		Location:      s.Company.Location,
		Year:          s.Now().Year(),
	})
	return buf.String(), err
}
