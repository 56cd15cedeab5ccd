package services

import (
	"context"
	"fmt"

	"invoiceBack/internal/models"
)

// SequenceCounter atomically increments and returns the counter for a domain.
type SequenceCounter interface {
	Next(ctx context.Context, name string) (int64, error)
}

type SequenceService struct {
	Counter SequenceCounter
}

func NewSequenceService(counter SequenceCounter) *SequenceService {
	return &SequenceService{Counter: counter}
}

// Allocate returns the next value for domain. The first call for a fresh domain returns 1.
func (s *SequenceService) Allocate(ctx context.Context, domain string) (int64, error) {
	n, err := s.Counter.Next(ctx, domain)
	if err != nil {
		return 0, &models.StorageError{Op: "allocate " + domain, Err: err}
	}
	return n, nil
}

func (s *SequenceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	n, err := s.Allocate(ctx, models.InvoiceSequence)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(n), nil
}

// FormatInvoiceNumber pads to five digits; larger values widen the number.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("INV-%05d", n)
}
