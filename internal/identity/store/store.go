package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/spendly/internal/database"
)

// Store keeps revoked token ids until they expire.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", database.Unavailable(err))
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < NOW()`); err != nil {
		return fmt.Errorf("purging expired revocations: %w", database.Unavailable(err))
	}

	query := `
		INSERT INTO revoked_tokens (token_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_id) DO NOTHING
	`
	if _, err := dbTx.ExecContext(ctx, query, tokenID, expiresAt); err != nil {
		return fmt.Errorf("revoking token: %w", database.Unavailable(err))
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", database.Unavailable(err))
	}

	return nil
}

func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool

	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1 AND expires_at > NOW())`
	if err := s.db.QueryRowContext(ctx, query, tokenID).Scan(&revoked); err != nil {
		return false, fmt.Errorf("checking revoked token: %w", database.Unavailable(err))
	}

	return revoked, nil
}
