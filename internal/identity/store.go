package identity

import "context"

// Store persists external identifier mappings. Implementations return
// sentinel.ErrNotFound / sentinel.ErrConflict; services translate those into
// domain errors.
type Store interface {
	// Find returns the identifier for (idType, hashedValue).
	Find(ctx context.Context, idType, hashedValue string) (ExternalIdentifier, error)
	// Create inserts a new mapping. A (hashedValue, idType) collision is a
	// conflict.
	Create(ctx context.Context, ident ExternalIdentifier) error
	// GetOrCreate returns the existing mapping or atomically inserts ident.
	// Two concurrent callers must never both insert; the store owns the
	// upsert-with-unique-constraint semantics.
	GetOrCreate(ctx context.Context, ident ExternalIdentifier) (ExternalIdentifier, error)
}
