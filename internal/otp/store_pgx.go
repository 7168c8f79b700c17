package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"custodia/pkg/platform/sentinel"
)

// PgxStore persists OTP records in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE otp_records (
//	    identity   TEXT PRIMARY KEY,
//	    phone_hash TEXT NOT NULL,
//	    otp        TEXT,
//	    expires_at TIMESTAMPTZ
//	);
type PgxStore struct {
	pool *pgxpool.Pool
}

func NewPgxStore(pool *pgxpool.Pool) *PgxStore {
	return &PgxStore{pool: pool}
}

func (s *PgxStore) Fetch(ctx context.Context, agentID string) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, `
		SELECT identity, phone_hash, otp, expires_at
		FROM otp_records WHERE identity = $1
	`, agentID).Scan(&rec.Identity, &rec.PhoneHash, &rec.Otp, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("fetch otp record: %w", err)
	}
	return rec, nil
}

func (s *PgxStore) SavePhoneNumber(ctx context.Context, agentID, phoneHash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO otp_records (identity, phone_hash)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO UPDATE SET phone_hash = EXCLUDED.phone_hash
	`, agentID, phoneHash)
	if err != nil {
		return fmt.Errorf("save phone number: %w", err)
	}
	return nil
}

// SaveOtp locks the row for (agentID, phoneHash), then writes the OTP. The
// row lock keeps a concurrent SavePhoneNumber from swapping the phone out
// between the check and the write.
func (s *PgxStore) SaveOtp(ctx context.Context, agentID, phoneHash, code string, expiresAt time.Time) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	defer tx.Rollback(ctx)

	var one int
	err = tx.QueryRow(ctx, `
		SELECT 1 FROM otp_records
		WHERE identity = $1 AND phone_hash = $2
		FOR UPDATE
	`, agentID, phoneHash).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE otp_records SET otp = $2, expires_at = $3 WHERE identity = $1
	`, agentID, code, expiresAt)
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PgxStore) Expire(ctx context.Context, agentID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE otp_records SET otp = NULL, expires_at = NULL WHERE identity = $1
	`, agentID)
	if err != nil {
		return fmt.Errorf("expire otp: %w", err)
	}
	return nil
}
