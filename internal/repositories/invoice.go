package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"invoiceBack/internal/models"
)

const invoiceColumns = `id, invoice_number, invoice_date, client_name, services, total,
	bank_name, account_number, account_name, administrator, phone, email, address, terms,
	created_at, updated_at`

// InvoiceRepo stores invoices in a SQL table with the line items kept as a JSON document.
type InvoiceRepo struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewInvoiceRepo(db *sql.DB, dialect Dialect) *InvoiceRepo {
	return &InvoiceRepo{DB: db, Dialect: dialect}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	services, err := marshalServices(inv.Services)
	if err != nil {
		return models.Invoice{}, err
	}

	now := time.Now().UTC()
	inv.ID = uuid.NewString()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	q := r.Dialect.Rebind(`INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.DB.ExecContext(ctx, q,
		inv.ID, inv.InvoiceNumber, inv.Date.UTC(), inv.ClientName, services, inv.Total,
		inv.BankName, inv.AccountNumber, inv.AccountName, inv.Administrator,
		inv.Phone, inv.Email, inv.Address, inv.Terms,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (models.Invoice, error) {
	if !validID(id) {
		return models.Invoice{}, models.ErrNoRecord
	}
	q := r.Dialect.Rebind(`SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`)
	inv, err := scanInvoice(r.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invoice{}, models.ErrNoRecord
	}
	return inv, err
}

func (r *InvoiceRepo) List(ctx context.Context) ([]models.Invoice, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// Update writes every editable column. invoice_number and created_at are
// never part of the statement.
func (r *InvoiceRepo) Update(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	services, err := marshalServices(inv.Services)
	if err != nil {
		return models.Invoice{}, err
	}
	if !validID(inv.ID) {
		return models.Invoice{}, models.ErrNoRecord
	}

	q := r.Dialect.Rebind(`UPDATE invoices SET
		invoice_date = ?, client_name = ?, services = ?, total = ?,
		bank_name = ?, account_number = ?, account_name = ?, administrator = ?,
		phone = ?, email = ?, address = ?, terms = ?, updated_at = ?
		WHERE id = ?`)
	_, err = r.DB.ExecContext(ctx, q,
		inv.Date.UTC(), inv.ClientName, services, inv.Total,
		inv.BankName, inv.AccountNumber, inv.AccountName, inv.Administrator,
		inv.Phone, inv.Email, inv.Address, inv.Terms, time.Now().UTC(),
		inv.ID,
	)
	if err != nil {
		return models.Invoice{}, err
	}
	return r.GetByID(ctx, inv.ID)
}

// Delete removes the invoice; a missing id is not an error.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM invoices WHERE id = ?`), id)
	return err
}

// validID reports whether id can be a stored key. Postgres keeps ids in a
// UUID column and rejects anything else with 22P02 instead of no rows.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (models.Invoice, error) {
	var (
		inv      models.Invoice
		services []byte
	)
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.Date, &inv.ClientName, &services, &inv.Total,
		&inv.BankName, &inv.AccountNumber, &inv.AccountName, &inv.Administrator,
		&inv.Phone, &inv.Email, &inv.Address, &inv.Terms,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return models.Invoice{}, err
	}
	inv.Services = []models.Service{}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &inv.Services); err != nil {
			return models.Invoice{}, err
		}
	}
	return inv, nil
}

func marshalServices(services []models.Service) ([]byte, error) {
	if services == nil {
		services = []models.Service{}
	}
	return json.Marshal(services)
}
