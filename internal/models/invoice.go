package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Invoice is a persisted invoice document.
type Invoice struct {
	ID            string    `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	Date          time.Time `json:"date"`
	ClientName    string    `json:"clientName"`
	Services      []Service `json:"services"`
	Total         float64   `json:"total"`

	BankName      string `json:"bankName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	Administrator string `json:"administrator,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	Terms         string `json:"terms,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service is a single invoice line.
type Service struct {
	Description string `json:"description"`
	Price       Price  `json:"price"`
}

// Price accepts numbers and numeric strings. Anything else decodes to 0.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price(coerceNumber(data))
	return nil
}

func coerceNumber(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	raw := string(data)
	if data[0] == '"' {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return 0
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" || raw == "null" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ServiceList decodes to an empty list when the payload is not a JSON array.
type ServiceList []Service

func (l *ServiceList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = ServiceList{}
		return nil
	}
	out := make(ServiceList, 0, len(items))
	for _, item := range items {
		var s Service
		// a malformed line keeps its zero value and fails description validation
		_ = json.Unmarshal(item, &s)
		out = append(out, s)
	}
	*l = out
	return nil
}

// InvoiceInput carries caller-editable invoice fields. Nil means "not supplied".
// There is deliberately no way to pass an invoice number or total through it.
type InvoiceInput struct {
	Date          *string      `json:"date"`
	ClientName    *string      `json:"clientName"`
	Services      *ServiceList `json:"services"`
	BankName      *string      `json:"bankName"`
	AccountNumber *string      `json:"accountNumber"`
	AccountName   *string      `json:"accountName"`
	Administrator *string      `json:"administrator"`
	Phone         *string      `json:"phone"`
	Email         *string      `json:"email"`
	Address       *string      `json:"address"`
	Terms         *string      `json:"terms"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseInvoiceDate accepts RFC 3339 timestamps and plain calendar dates.
func ParseInvoiceDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD or RFC 3339"}
}
