// Package repository implements the shared revocation registry on PostgreSQL and
// MySQL so every broker instance pointed at the same database sees the same
// block-list.
package repository

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/allisson/secretbroker/internal/errors"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// PostgreSQLRevocationRegistry implements RevocationRegistry for PostgreSQL databases.
type PostgreSQLRevocationRegistry struct {
	db *sql.DB
}

// Block inserts the entry. An id that is already blocked is left untouched.
func (p *PostgreSQLRevocationRegistry) Block(ctx context.Context, entry tokenDomain.RevocationEntry) error {
	query := `INSERT INTO revoked_tokens (token_id, expires_at, revoked_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (token_id) DO NOTHING`

	_, err := p.db.ExecContext(ctx, query, entry.TokenID, nullTime(entry.ExpiresAt), entry.RevokedAt.UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to block token")
	}
	return nil
}

// IsBlocked reports whether tokenID has a row in revoked_tokens.
func (p *PostgreSQLRevocationRegistry) IsBlocked(ctx context.Context, tokenID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = $1)`

	var blocked bool
	if err := p.db.QueryRowContext(ctx, query, tokenID).Scan(&blocked); err != nil {
		return false, apperrors.Wrap(err, "failed to check token revocation")
	}
	return blocked, nil
}

// Clear deletes every row.
func (p *PostgreSQLRevocationRegistry) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM revoked_tokens`); err != nil {
		return apperrors.Wrap(err, "failed to clear revoked tokens")
	}
	return nil
}

// Purge deletes rows whose token expired at or before now.
func (p *PostgreSQLRevocationRegistry) Purge(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at IS NOT NULL AND expires_at <= $1`

	result, err := p.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to purge revoked tokens")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows")
	}
	return count, nil
}

// NewPostgreSQLRevocationRegistry creates a new PostgreSQL revocation registry.
func NewPostgreSQLRevocationRegistry(db *sql.DB) *PostgreSQLRevocationRegistry {
	return &PostgreSQLRevocationRegistry{db: db}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
