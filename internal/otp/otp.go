// Package otp persists per-identity one-time passcode records and generates
// the codes themselves. A record holds the hashed phone number plus the
// current OTP and its expiry; both are nulled when the OTP is consumed, so
// "no pending OTP" and "consumed" look identical. There is no separate used
// flag.
package otp

import (
	"context"
	"time"
)

// Window is how long a sent OTP stays valid.
const Window = 15 * time.Minute

// Record is one identity's OTP state. Otp and ExpiresAt are nil together:
// nil means no pending OTP.
type Record struct {
	Identity  string
	PhoneHash string
	Otp       *string
	ExpiresAt *time.Time
}

// Pending reports whether the record holds an OTP that has not expired at t.
// An expired OTP is treated exactly like a missing one.
func (r Record) Pending(t time.Time) bool {
	return r.Otp != nil && r.ExpiresAt != nil && r.ExpiresAt.After(t)
}

// Store persists OTP records. Implementations return sentinel errors.
type Store interface {
	// Fetch returns the record for agentID.
	Fetch(ctx context.Context, agentID string) (Record, error)
	// SavePhoneNumber upserts the record for agentID, setting or replacing
	// the hashed phone number. OTP and expiry are untouched.
	SavePhoneNumber(ctx context.Context, agentID, phoneHash string) error
	// SaveOtp sets the OTP and expiry on the record matching (agentID,
	// phoneHash). The precondition check and the write happen in one
	// transaction so an OTP is never saved against a phone number the
	// identity no longer owns. Missing record: sentinel.ErrNotFound.
	SaveOtp(ctx context.Context, agentID, phoneHash, otp string, expiresAt time.Time) error
	// Expire nulls the OTP and expiry. Idempotent.
	Expire(ctx context.Context, agentID string) error
}
