package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/allisson/secretbroker/internal/errors"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// MySQLRevocationRegistry implements RevocationRegistry for MySQL databases.
type MySQLRevocationRegistry struct {
	db *sql.DB
}

// Block inserts the entry. INSERT IGNORE keeps blocking idempotent.
func (m *MySQLRevocationRegistry) Block(ctx context.Context, entry tokenDomain.RevocationEntry) error {
	query := `INSERT IGNORE INTO revoked_tokens (token_id, expires_at, revoked_at) VALUES (?, ?, ?)`

	_, err := m.db.ExecContext(ctx, query, entry.TokenID, nullTime(entry.ExpiresAt), entry.RevokedAt.UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to block token")
	}
	return nil
}

// IsBlocked reports whether tokenID has a row in revoked_tokens.
func (m *MySQLRevocationRegistry) IsBlocked(ctx context.Context, tokenID string) (bool, error) {
	query := `SELECT token_id FROM revoked_tokens WHERE token_id = ?`

	var found string
	err := m.db.QueryRowContext(ctx, query, tokenID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check token revocation")
	}
	return true, nil
}

// Clear deletes every row.
func (m *MySQLRevocationRegistry) Clear(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM revoked_tokens`); err != nil {
		return apperrors.Wrap(err, "failed to clear revoked tokens")
	}
	return nil
}

// Purge deletes rows whose token expired at or before now.
func (m *MySQLRevocationRegistry) Purge(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at IS NOT NULL AND expires_at <= ?`

	result, err := m.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to purge revoked tokens")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}

// NewMySQLRevocationRegistry creates a new MySQL revocation registry.
func NewMySQLRevocationRegistry(db *sql.DB) *MySQLRevocationRegistry {
	return &MySQLRevocationRegistry{db: db}
}
