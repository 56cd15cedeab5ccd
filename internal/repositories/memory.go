package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoiceBack/internal/models"
)

// MemoryInvoiceRepo is the in-process invoice store used with the "memory"
// database driver.
type MemoryInvoiceRepo struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Invoice
}

func NewMemoryInvoiceRepo() *MemoryInvoiceRepo {
	return &MemoryInvoiceRepo{byID: make(map[string]models.Invoice)}
}

func (r *MemoryInvoiceRepo) Create(_ context.Context, inv models.Invoice) (models.Invoice, error) {
	now := time.Now().UTC()
	inv.ID = uuid.NewString()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	inv.Services = cloneServices(inv.Services)

	r.mu.Lock()
	r.byID[inv.ID] = inv
	r.order = append(r.order, inv.ID)
	r.mu.Unlock()

	inv.Services = cloneServices(inv.Services)
	return inv, nil
}

func (r *MemoryInvoiceRepo) GetByID(_ context.Context, id string) (models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.byID[id]
	if !ok {
		return models.Invoice{}, models.ErrNoRecord
	}
	inv.Services = cloneServices(inv.Services)
	return inv, nil
}

func (r *MemoryInvoiceRepo) List(_ context.Context) ([]models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Invoice, 0, len(r.order))
	for _, id := range r.order {
		inv := r.byID[id]
		inv.Services = cloneServices(inv.Services)
		out = append(out, inv)
	}
	return out, nil
}

func (r *MemoryInvoiceRepo) Update(_ context.Context, inv models.Invoice) (models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.byID[inv.ID]
	if !ok {
		return models.Invoice{}, models.ErrNoRecord
	}
	inv.InvoiceNumber = prev.InvoiceNumber
	inv.CreatedAt = prev.CreatedAt
	inv.UpdatedAt = time.Now().UTC()
	inv.Services = cloneServices(inv.Services)
	r.byID[inv.ID] = inv

	inv.Services = cloneServices(inv.Services)
	return inv, nil
}

func (r *MemoryInvoiceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return nil
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneServices(in []models.Service) []models.Service {
	out := make([]models.Service, len(in))
	copy(out, in)
	return out
}

// MemoryCounter hands out sequence values under a mutex.
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{values: make(map[string]int64)}
}

func (c *MemoryCounter) Next(_ context.Context, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name]++
	return c.values[name], nil
}

type MemoryUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byID: make(map[string]models.User), byEmail: make(map[string]string)}
}

func (r *MemoryUserRepo) CreateUser(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := r.byEmail[user.Email]; exists {
		return models.User{}, models.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *MemoryUserRepo) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepo) GetUserByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepo) UpdateUser(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.byID[user.ID]
	if !ok {
		return models.ErrUserNotFound
	}
	user.Email = prev.Email
	user.CreatedAt = prev.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.byID[user.ID] = user
	return nil
}

// MemoryOTPRepo stores one-time codes in process; expired codes read as missing.
type MemoryOTPRepo struct {
	mu    sync.Mutex
	codes map[string]models.OTP
	now   func() time.Time
}

func NewMemoryOTPRepo() *MemoryOTPRepo {
	return &MemoryOTPRepo{codes: make(map[string]models.OTP), now: time.Now}
}

func (r *MemoryOTPRepo) Save(_ context.Context, otp models.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp.Attempts = 0
	r.codes[otpKey(otp.Email, otp.Purpose)] = otp
	return nil
}

func (r *MemoryOTPRepo) Get(_ context.Context, email string, purpose models.OTPPurpose) (models.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := otpKey(email, purpose)
	otp, ok := r.codes[key]
	if !ok {
		return models.OTP{}, models.ErrNoRecord
	}
	if !r.now().Before(otp.ExpiresAt) {
		delete(r.codes, key)
		return models.OTP{}, models.ErrNoRecord
	}
	return otp, nil
}

func (r *MemoryOTPRepo) IncrementAttempts(_ context.Context, email string, purpose models.OTPPurpose) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := otpKey(email, purpose)
	otp, ok := r.codes[key]
	if !ok {
		return 0, models.ErrNoRecord
	}
	otp.Attempts++
	r.codes[key] = otp
	return otp.Attempts, nil
}

func (r *MemoryOTPRepo) Delete(_ context.Context, email string, purpose models.OTPPurpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, otpKey(email, purpose))
	return nil
}
