package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoiceBack/internal/models"
)

// InvoiceStore is the record store behind the invoice lifecycle.
type InvoiceStore interface {
	Create(ctx context.Context, inv models.Invoice) (models.Invoice, error)
	GetByID(ctx context.Context, id string) (models.Invoice, error)
	List(ctx context.Context) ([]models.Invoice, error)
	Update(ctx context.Context, inv models.Invoice) (models.Invoice, error)
	Delete(ctx context.Context, id string) error
}

type InvoiceService struct {
	Repo     InvoiceStore
	Sequence *SequenceService
	Now      func() time.Time
}

func NewInvoiceService(repo InvoiceStore, sequence *SequenceService) *InvoiceService {
	return &InvoiceService{Repo: repo, Sequence: sequence, Now: time.Now}
}

// CreateInvoice validates the input, allocates the next invoice number and
// stores the record. Number and total are always derived here.
func (s *InvoiceService) CreateInvoice(ctx context.Context, in models.InvoiceInput) (models.Invoice, error) {
	inv := models.Invoice{Services: []models.Service{}}
	if err := applyInput(&inv, in); err != nil {
		return models.Invoice{}, err
	}
	if inv.Date.IsZero() {
		inv.Date = s.Now()
	}
	if err := validateInvoice(inv); err != nil {
		return models.Invoice{}, err
	}

	number, err := s.Sequence.NextInvoiceNumber(ctx)
	if err != nil {
		return models.Invoice{}, err
	}
	inv.InvoiceNumber = number
	inv.Total = ComputeTotal(inv.Services)

	created, err := s.Repo.Create(ctx, inv)
	if err != nil {
		return models.Invoice{}, storageErr("create invoice", err)
	}
	return created, nil
}

func (s *InvoiceService) GetInvoiceByID(ctx context.Context, id string) (models.Invoice, error) {
	inv, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return models.Invoice{}, storageErr("get invoice", err)
	}
	return inv, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.Repo.List(ctx)
	if err != nil {
		return nil, storageErr("list invoices", err)
	}
	return invoices, nil
}

// UpdateInvoice merges the supplied fields over the stored record. The total is
// recomputed from the resulting services; the invoice number never changes.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id string, in models.InvoiceInput) (models.Invoice, error) {
	current, err := s.GetInvoiceByID(ctx, id)
	if err != nil {
		return models.Invoice{}, err
	}
	number := current.InvoiceNumber

	if err := applyInput(&current, in); err != nil {
		return models.Invoice{}, err
	}
	if err := validateInvoice(current); err != nil {
		return models.Invoice{}, err
	}
	current.InvoiceNumber = number
	current.Total = ComputeTotal(current.Services)

	updated, err := s.Repo.Update(ctx, current)
	if err != nil {
		return models.Invoice{}, storageErr("update invoice", err)
	}
	return updated, nil
}

// CopyInvoice stores a duplicate of id under a fresh number dated now.
func (s *InvoiceService) CopyInvoice(ctx context.Context, id string) (models.Invoice, error) {
	src, err := s.GetInvoiceByID(ctx, id)
	if err != nil {
		return models.Invoice{}, err
	}

	number, err := s.Sequence.NextInvoiceNumber(ctx)
	if err != nil {
		return models.Invoice{}, err
	}

	dup := src
	dup.ID = ""
	dup.InvoiceNumber = number
	dup.Date = s.Now()
	dup.Services = append([]models.Service{}, src.Services...)
	dup.Total = ComputeTotal(dup.Services)
	dup.CreatedAt, dup.UpdatedAt = time.Time{}, time.Time{}

	created, err := s.Repo.Create(ctx, dup)
	if err != nil {
		return models.Invoice{}, storageErr("copy invoice", err)
	}
	return created, nil
}

// DeleteInvoice succeeds whether or not the record exists.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil && !errors.Is(err, models.ErrNoRecord) {
		return storageErr("delete invoice", err)
	}
	return nil
}

func applyInput(inv *models.Invoice, in models.InvoiceInput) error {
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		date, err := models.ParseInvoiceDate(*in.Date)
		if err != nil {
			return err
		}
		inv.Date = date
	}
	if in.ClientName != nil {
		inv.ClientName = strings.TrimSpace(*in.ClientName)
	}
	if in.Services != nil {
		inv.Services = append([]models.Service{}, (*in.Services)...)
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&inv.BankName, in.BankName)
	assign(&inv.AccountNumber, in.AccountNumber)
	assign(&inv.AccountName, in.AccountName)
	assign(&inv.Administrator, in.Administrator)
	assign(&inv.Phone, in.Phone)
	assign(&inv.Email, in.Email)
	assign(&inv.Address, in.Address)
	assign(&inv.Terms, in.Terms)
	return nil
}

func validateInvoice(inv models.Invoice) error {
	if inv.ClientName == "" {
		return &models.ValidationError{Field: "clientName", Message: "client name is required"}
	}
	for i, s := range inv.Services {
		if strings.TrimSpace(s.Description) == "" {
			return &models.ValidationError{
				Field:   fmt.Sprintf("services[%d].description", i),
				Message: "description is required",
			}
		}
	}
	return nil
}

// storageErr leaves lookup misses and typed errors alone and marks everything
// else as a storage failure of op.
func storageErr(op string, err error) error {
	var (
		verr *models.ValidationError
		serr *models.StorageError
	)
	if errors.Is(err, models.ErrNoRecord) || errors.As(err, &verr) || errors.As(err, &serr) {
		return err
	}
	return &models.StorageError{Op: op, Err: err}
}
