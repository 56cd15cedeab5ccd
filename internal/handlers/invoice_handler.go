package handlers

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"invoiceBack/internal/models"
	"invoiceBack/internal/services"
)

type InvoiceHandler struct {
	Service   *services.InvoiceService
	Delivery  *services.DeliveryService
	PublicURL string
	Log       zerolog.Logger
}

func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	in, err := readInvoiceInput(r)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	inv, err := h.Service.CreateInvoice(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) GetInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Service.ListInvoices(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoiceByID(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.GetInvoiceByID(r.Context(), getParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	in, err := readInvoiceInput(r)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	inv, err := h.Service.UpdateInvoice(r.Context(), getParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) CopyInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.CopyInvoice(r.Context(), getParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteInvoice(r.Context(), getParam(r, "id")); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invoice deleted"})
}

func (h *InvoiceHandler) PreviewInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.GetInvoiceByID(r.Context(), getParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	art, err := h.Delivery.DeliverInline(r.Context(), inv)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeArtifact(w, art)
}

func (h *InvoiceHandler) PrintInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.GetInvoiceByID(r.Context(), getParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	art, err := h.Delivery.DeliverAsAttachment(r.Context(), inv)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	writeArtifact(w, art)
}

func (h *InvoiceHandler) EmailInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.GetInvoiceByID(r.Context(), getParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	if err := h.Delivery.DeliverByEmail(r.Context(), inv, req.Email); err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	h.Log.Info().Str("invoice_number", inv.InvoiceNumber).Msg("invoice emailed")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Invoice emailed successfully to %s", strings.TrimSpace(req.Email)),
	})
}

func (h *InvoiceHandler) ShareInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Service.GetInvoiceByID(r.Context(), getParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}

	base, err := h.baseURL(r)
	if err != nil {
		writeServiceError(w, h.Log, err)
		return
	}
	link := h.Delivery.BuildShareLink(inv, base, r.URL.Query().Get("phone"))
	writeJSON(w, http.StatusOK, link)
}

// baseURL prefers the configured public URL and falls back to the request
// host. Only http and https are taken from X-Forwarded-Proto.
func (h *InvoiceHandler) baseURL(r *http.Request) (string, error) {
	if h.PublicURL != "" {
		return h.PublicURL, nil
	}
	if !validHost(r.Host) {
		return "", &models.ValidationError{Field: "host", Message: "invalid Host header"}
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	fwd, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	switch fwd = strings.ToLower(strings.TrimSpace(fwd)); fwd {
	case "http", "https":
		scheme = fwd
	}
	return scheme + "://" + r.Host, nil
}

// validHost accepts a DNS name or IP literal with an optional numeric port.
func validHost(host string) bool {
	if host == "" || len(host) > 255 {
		return false
	}
	name := host
	if h, port, err := net.SplitHostPort(host); err == nil {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return false
		}
		name = h
	}
	if net.ParseIP(strings.Trim(name, "[]")) != nil {
		return true
	}
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
		default:
			return false
		}
	}
	return true
}

func readInvoiceInput(r *http.Request) (models.InvoiceInput, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return models.InvoiceInput{}, &models.ValidationError{Field: "body", Message: "could not read request body"}
	}
	return models.DecodeInvoiceInput(body)
}

func writeArtifact(w http.ResponseWriter, art models.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", art.Disposition, art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Content)
}
