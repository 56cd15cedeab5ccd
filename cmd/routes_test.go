package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"invoiceBack/internal/config"
)

func newTestApp(t *testing.T) *application {
	t.Helper()
	var cfg config.Config
	cfg.Database.Driver = config.DriverMemory
	cfg.Sequence.Backend = config.SequenceSQL
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "json"
	cfg.Company.Name = "Acme"
	cfg.Company.Currency = "KSH"
	cfg.Auth.JWTSecret = "secret"
	cfg.Auth.AccessTTLMinutes = 60
	cfg.Auth.OTPTTLMinutes = 10
	cfg.Auth.OTPMaxAttempts = 5

	app, err := initializeApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("initializeApp: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestRoutesCreateInvoice(t *testing.T) {
	app := newTestApp(t)
	router := app.routes()

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(`{"clientName":"Jane","services":[{"description":"Clean","price":"50"}]}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
	if rr.Header().Get("X-Frame-Options") != "deny" {
		t.Fatal("expected secure headers")
	}

	var body struct {
		ID            string  `json:"id"`
		InvoiceNumber string  `json:"invoiceNumber"`
		Total         float64 `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.InvoiceNumber != "INV-00001" || body.Total != 50 {
		t.Fatalf("unexpected invoice %+v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/invoices/"+body.ID+"/preview", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf preview, got %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rr.Body.String(), "%PDF") {
		t.Fatal("preview body is not a pdf")
	}
}

func TestRoutesRequestIDIsEchoed(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestMeRequiresToken(t *testing.T) {
	app := newTestApp(t)

	for _, header := range []string{"", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		app.routes().ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rr.Code)
		}
	}
}

func TestMeWithToken(t *testing.T) {
	app := newTestApp(t)
	token, err := app.tokenManager.NewJWT("missing-user", "admin", 60e9)
	if err != nil {
		t.Fatalf("NewJWT: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rr.Code)
	}
}

func TestRecoverPanic(t *testing.T) {
	app := newTestApp(t)
	h := app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if rr.Header().Get("Connection") != "close" {
		t.Fatal("expected connection close header")
	}
}
