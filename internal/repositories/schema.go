package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS sequence_counters (
		name VARCHAR(64) NOT NULL PRIMARY KEY,
		seq BIGINT NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id CHAR(36) NOT NULL PRIMARY KEY,
		invoice_number VARCHAR(32) NOT NULL UNIQUE,
		invoice_date DATETIME NOT NULL,
		client_name VARCHAR(255) NOT NULL,
		services JSON NOT NULL,
		total DOUBLE NOT NULL DEFAULT 0,
		bank_name VARCHAR(255) NOT NULL DEFAULT '',
		account_number VARCHAR(64) NOT NULL DEFAULT '',
		account_name VARCHAR(255) NOT NULL DEFAULT '',
		administrator VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(64) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		address VARCHAR(512) NOT NULL DEFAULT '',
		terms TEXT NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		INDEX idx_invoices_created_at (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NULL,
		google_id VARCHAR(255) NULL,
		auth_provider VARCHAR(16) NOT NULL DEFAULT 'local',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		role VARCHAR(16) NOT NULL DEFAULT 'admin',
		last_login DATETIME NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sequence_counters (
		name VARCHAR(64) PRIMARY KEY,
		seq BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		invoice_number VARCHAR(32) NOT NULL UNIQUE,
		invoice_date TIMESTAMPTZ NOT NULL,
		client_name TEXT NOT NULL,
		services JSONB NOT NULL DEFAULT '[]',
		total DOUBLE PRECISION NOT NULL DEFAULT 0,
		bank_name TEXT NOT NULL DEFAULT '',
		account_number TEXT NOT NULL DEFAULT '',
		account_name TEXT NOT NULL DEFAULT '',
		administrator TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		terms TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices (created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NULL,
		google_id TEXT NULL,
		auth_provider VARCHAR(16) NOT NULL DEFAULT 'local',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		role VARCHAR(16) NOT NULL DEFAULT 'admin',
		last_login TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the tables used by the SQL repositories.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	statements := mysqlSchema
	if dialect == Postgres {
		statements = postgresSchema
	}
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
