package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoiceBack/internal/models"
)

const userColumns = `id, name, email, password, google_id, auth_provider, is_verified, role, last_login, created_at, updated_at`

type UserRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{DB: db, Dialect: dialect}
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	q := r.Dialect.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.DB.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, nullString(user.Password), nullString(user.GoogleID),
		user.AuthProvider, user.IsVerified, user.Role, user.LastLogin, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	q := r.Dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.scanOne(r.DB.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email))))
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	if !validID(id) {
		return models.User{}, models.ErrUserNotFound
	}
	q := r.Dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.scanOne(r.DB.QueryRowContext(ctx, q, id))
}

func (r *UserRepository) UpdateUser(ctx context.Context, user models.User) error {
	q := r.Dialect.Rebind(`UPDATE users SET name = ?, password = ?, google_id = ?, auth_provider = ?,
		is_verified = ?, role = ?, last_login = ?, updated_at = ? WHERE id = ?`)
	_, err := r.DB.ExecContext(ctx, q,
		user.Name, nullString(user.Password), nullString(user.GoogleID), user.AuthProvider,
		user.IsVerified, user.Role, user.LastLogin, time.Now().UTC(), user.ID)
	return err
}

func (r *UserRepository) scanOne(row *sql.Row) (models.User, error) {
	var (
		u         models.User
		password  sql.NullString
		googleID  sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &password, &googleID, &u.AuthProvider,
		&u.IsVerified, &u.Role, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	u.Password = password.String
	u.GoogleID = googleID.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
