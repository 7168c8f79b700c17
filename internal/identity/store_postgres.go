package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"custodia/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists external identifiers in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE external_identifiers (
//	    id_type      TEXT        NOT NULL,
//	    hashed_value TEXT        NOT NULL,
//	    identity     TEXT        NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    UNIQUE (hashed_value, id_type)
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, idType, hashedValue string) (ExternalIdentifier, error) {
	var ident ExternalIdentifier
	err := s.db.QueryRowContext(ctx, `
		SELECT id_type, hashed_value, identity, created_at
		FROM external_identifiers
		WHERE id_type = $1 AND hashed_value = $2
	`, idType, hashedValue).Scan(&ident.IDType, &ident.HashedValue, &ident.Identity, &ident.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ExternalIdentifier{}, sentinel.ErrNotFound
	}
	if err != nil {
		return ExternalIdentifier{}, fmt.Errorf("find external identifier: %w", err)
	}
	return ident, nil
}

func (s *PostgresStore) Create(ctx context.Context, ident ExternalIdentifier) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO external_identifiers (id_type, hashed_value, identity)
		VALUES ($1, $2, $3)
	`, ident.IDType, ident.HashedValue, ident.Identity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create external identifier: %w", err)
	}
	return nil
}

// GetOrCreate relies on the unique constraint: the insert either wins or hits
// the existing row, and the follow-up select observes whichever mapping won.
// Two concurrent callers can never both insert.
func (s *PostgresStore) GetOrCreate(ctx context.Context, ident ExternalIdentifier) (ExternalIdentifier, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO external_identifiers (id_type, hashed_value, identity)
		VALUES ($1, $2, $3)
		ON CONFLICT (hashed_value, id_type) DO NOTHING
	`, ident.IDType, ident.HashedValue, ident.Identity)
	if err != nil {
		return ExternalIdentifier{}, fmt.Errorf("upsert external identifier: %w", err)
	}
	return s.Find(ctx, ident.IDType, ident.HashedValue)
}
