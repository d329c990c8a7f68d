// Package sqlite provides a tenant.Store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jonwraymond/enrichment/tenant"
)

const createSettingsTable = `
CREATE TABLE IF NOT EXISTS tenant_settings (
	tenant_id TEXT PRIMARY KEY,
	model TEXT NOT NULL,
	tone TEXT NOT NULL DEFAULT '',
	max_input_length INTEGER NOT NULL,
	retry_attempts INTEGER NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store reads tenant settings from a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open tenant db: %w", err)
	}

	if _, err := db.Exec(createSettingsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tenant db: %w", err)
	}

	return &Store{db: db}, nil
}

// FindByTenantID returns the settings row for tenantID. A row that fails
// tenant.Settings.Validate, for example after a manual edit, is an error.
func (s *Store) FindByTenantID(ctx context.Context, tenantID string) (tenant.Settings, bool, error) {
	var settings tenant.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT model, tone, max_input_length, retry_attempts FROM tenant_settings WHERE tenant_id = ?`,
		tenantID,
	).Scan(&settings.Model, &settings.Tone, &settings.MaxInputLength, &settings.RetryAttempts)

	if errors.Is(err, sql.ErrNoRows) {
		return tenant.Settings{}, false, nil
	}
	if err != nil {
		return tenant.Settings{}, false, fmt.Errorf("query tenant %q: %w", tenantID, err)
	}
	if err := settings.Validate(); err != nil {
		return tenant.Settings{}, false, fmt.Errorf("tenant %q: stored %w", tenantID, err)
	}
	return settings, true, nil
}

// Upsert validates and stores settings for tenantID.
func (s *Store) Upsert(ctx context.Context, tenantID string, settings tenant.Settings) error {
	if strings.TrimSpace(tenantID) == "" {
		return tenant.ErrInvalidTenantID
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("tenant %q: %w", tenantID, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenant_settings (tenant_id, model, tone, max_input_length, retry_attempts, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(tenant_id) DO UPDATE SET
			model = excluded.model,
			tone = excluded.tone,
			max_input_length = excluded.max_input_length,
			retry_attempts = excluded.retry_attempts,
			updated_at = excluded.updated_at`,
		tenantID, settings.Model, settings.Tone, settings.MaxInputLength, settings.RetryAttempts,
	)
	if err != nil {
		return fmt.Errorf("upsert tenant %q: %w", tenantID, err)
	}
	return nil
}

// Seed upserts every entry of settings.
func (s *Store) Seed(ctx context.Context, settings map[string]tenant.Settings) error {
	for id, st := range settings {
		if err := s.Upsert(ctx, id, st); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes tenantID. Idempotent.
func (s *Store) Delete(ctx context.Context, tenantID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tenant_settings WHERE tenant_id = ?`, tenantID); err != nil {
		return fmt.Errorf("delete tenant %q: %w", tenantID, err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ tenant.Store = (*Store)(nil)
