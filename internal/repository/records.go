// Package repository provides the PostgreSQL-backed application record
// store for the foundation-side tracking service.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beaconfund/granttrack/internal/models"
)

// PostgresRecordRepository implements record-store operations against a
// PostgreSQL database.
type PostgresRecordRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresRecordRepository creates a repository with the given database
// connection. db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresRecordRepository(db *sql.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{DB: db}
}

const recordColumns = `id, email, password, grant_category, COALESCE(passkey, ''), status, submitted_at`

func scanRecord(row *sql.Row) (*models.ApplicationRecord, error) {
	var rec models.ApplicationRecord
	err := row.Scan(&rec.ID, &rec.Email, &rec.Password, &rec.GrantCategory,
		&rec.Passkey, &rec.Status, &rec.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	return &rec, nil
}

// CreateRecord inserts a newly submitted application.
func (r *PostgresRecordRepository) CreateRecord(ctx context.Context, rec models.ApplicationRecord) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO applications (id, email, password, grant_category, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.Email, rec.Password, rec.GrantCategory, rec.Status, rec.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// ListCategories returns the distinct grant categories across all records.
func (r *PostgresRecordRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT grant_category FROM applications ORDER BY grant_category
	`)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FindRecord matches the exact (email, password, category) triple.
// Duplicate triples resolve to the earliest submission. Returns (nil, nil)
// when nothing matches.
func (r *PostgresRecordRepository) FindRecord(ctx context.Context, email, password, category string) (*models.ApplicationRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM applications
		WHERE email = $1 AND password = $2 AND grant_category = $3
		ORDER BY submitted_at LIMIT 1
	`, email, password, category)
	return scanRecord(row)
}

// FindRecordByPasskey matches a passkey within the given category only.
// Returns (nil, nil) when nothing matches.
func (r *PostgresRecordRepository) FindRecordByPasskey(ctx context.Context, pk, category string) (*models.ApplicationRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM applications
		WHERE passkey = $1 AND grant_category = $2
	`, pk, category)
	return scanRecord(row)
}

// HasPasskey reports whether any record already carries the given passkey.
func (r *PostgresRecordRepository) HasPasskey(ctx context.Context, pk string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE passkey = $1)`,
		pk,
	).Scan(&exists)
	return exists, err
}

// AssignPasskey sets the passkey on a record that does not have one yet,
// then reads back the value now on the record. A record that was already
// assigned keeps its existing passkey, so issuance stays idempotent even
// across concurrent requests.
func (r *PostgresRecordRepository) AssignPasskey(ctx context.Context, id, pk string) (string, error) {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE applications SET passkey = $1 WHERE id = $2 AND passkey IS NULL
	`, pk, id)
	if err != nil {
		return "", fmt.Errorf("assign passkey: %w", err)
	}

	var assigned string
	err = r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(passkey, '') FROM applications WHERE id = $1`,
		id,
	).Scan(&assigned)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("assign passkey: record %s not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("read back passkey: %w", err)
	}
	return assigned, nil
}
