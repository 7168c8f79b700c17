// Package credential escrows minimal wallet credential records keyed by an
// opaque agent identity: wallet id, wallet key and seed. Creation mints fresh
// random material; the service never derives keys from identity data.
package credential

import (
	"context"
	"time"
)

// Credential is one escrowed wallet record.
type Credential struct {
	Identity   string
	WalletID   string
	WalletKey  string
	WalletSeed string
	CreatedAt  time.Time
}

// ConnectionData is the subset of a credential handed back to the caller
// after wallet creation. The seed never leaves the service.
type ConnectionData struct {
	WalletID  string `json:"walletId"`
	WalletKey string `json:"walletKey"`
}

// Store persists credentials. Implementations return sentinel errors.
type Store interface {
	Fetch(ctx context.Context, agentID string) (Credential, error)
	Create(ctx context.Context, cred Credential) error
	Exists(ctx context.Context, agentID string) (bool, error)
	Delete(ctx context.Context, agentID string) error
}
