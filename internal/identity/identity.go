// Package identity maps hashed external identifiers (national id, voter id,
// ...) onto opaque agent identities. An identity is an immutable string token
// owned by the credential store; this package only resolves and records the
// mapping.
package identity

import "time"

// ExternalIdentifier binds a hashed external id value of one type to exactly
// one agent identity. The (HashedValue, IDType) pair is globally unique.
type ExternalIdentifier struct {
	IDType      string
	HashedValue string
	Identity    string
	CreatedAt   time.Time
}
