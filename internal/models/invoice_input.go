package models

import (
	"encoding/json"
	"strings"

	"golang.org/x/exp/slices"
)

// invoiceFields lists every key a client may send for an invoice. Server-owned
// keys are accepted so a round-tripped document can be PUT back, but their
// values never reach storage.
var invoiceFields = map[string]bool{
	"date":          true,
	"clientName":    true,
	"services":      true,
	"bankName":      true,
	"accountNumber": true,
	"accountName":   true,
	"administrator": true,
	"phone":         true,
	"email":         true,
	"address":       true,
	"terms":         true,

	"id":            false,
	"_id":           false,
	"invoiceNumber": false,
	"total":         false,
	"createdAt":     false,
	"updatedAt":     false,
}

// DecodeInvoiceInput parses a JSON object into InvoiceInput, rejecting keys
// that are not invoice fields.
func DecodeInvoiceInput(data []byte) (InvoiceInput, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return InvoiceInput{}, &ValidationError{Field: "body", Message: "request body must be a JSON object"}
	}

	var unknown []string
	for key := range raw {
		if _, ok := invoiceFields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return InvoiceInput{}, &ValidationError{
			Field:   unknown[0],
			Message: "unknown invoice fields: " + strings.Join(unknown, ", "),
		}
	}

	var in InvoiceInput
	if err := json.Unmarshal(data, &in); err != nil {
		field := "body"
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
			field = typeErr.Field
		}
		return InvoiceInput{}, &ValidationError{Field: field, Message: "invalid value for " + field}
	}
	return in, nil
}
