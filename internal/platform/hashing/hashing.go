// Package hashing produces the peppered, fixed-length hashes used for
// external identifier values, phone numbers and rate limit cache keys. Raw
// identifiers never reach a store or cache key.
package hashing

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Hasher hashes values with a secret pepper. The same pepper must be used for
// writes and lookups, so it is loaded once from configuration.
type Hasher struct {
	pepper string
}

func New(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

// Hash returns a hex-encoded SHA3-256 of the parts joined with the pepper.
// Deterministic: identifier lookups hash the probe value and match on
// equality.
func (h *Hasher) Hash(parts ...string) string {
	sum := sha3.Sum256([]byte(strings.Join(parts, ":") + ":" + h.pepper))
	return hex.EncodeToString(sum[:])
}
