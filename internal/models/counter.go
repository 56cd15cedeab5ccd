package models

import "time"

// InvoiceSequence is the numbering domain for invoice numbers.
const InvoiceSequence = "invoice"

// SequenceCounter stores the last value handed out for a named domain.
type SequenceCounter struct {
	Name      string    `json:"name"`
	Seq       int64     `json:"seq"`
	UpdatedAt time.Time `json:"updated_at"`
}
