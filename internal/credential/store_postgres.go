package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"custodia/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists credentials in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE credentials (
//	    identity    TEXT        PRIMARY KEY,
//	    wallet_id   TEXT        NOT NULL,
//	    wallet_key  TEXT        NOT NULL,
//	    wallet_seed TEXT        NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Fetch(ctx context.Context, agentID string) (Credential, error) {
	var cred Credential
	err := s.db.QueryRowContext(ctx, `
		SELECT identity, wallet_id, wallet_key, wallet_seed, created_at
		FROM credentials WHERE identity = $1
	`, agentID).Scan(&cred.Identity, &cred.WalletID, &cred.WalletKey, &cred.WalletSeed, &cred.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("fetch credential: %w", err)
	}
	return cred, nil
}

func (s *PostgresStore) Create(ctx context.Context, cred Credential) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (identity, wallet_id, wallet_key, wallet_seed)
		VALUES ($1, $2, $3, $4)
	`, cred.Identity, cred.WalletID, cred.WalletKey, cred.WalletSeed)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, agentID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM credentials WHERE identity = $1`, agentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check credential: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) Delete(ctx context.Context, agentID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE identity = $1`, agentID)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
