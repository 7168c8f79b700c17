package identity

import (
	"context"
	"errors"

	"custodia/internal/platform/hashing"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/sentinel"
)

// Resolver turns caller-supplied external identifier filters into candidate
// agent identities. Matches across different id types are unioned; the
// verification flows then require all candidates to agree before accepting.
type Resolver struct {
	store  Store
	hasher *hashing.Hasher
}

func NewResolver(store Store, hasher *hashing.Hasher) *Resolver {
	return &Resolver{store: store, hasher: hasher}
}

// Resolve looks up every (idType, idValue) pair and unions the identities
// found. Pairs with no mapping are skipped. When throwIfEmpty is set and
// nothing resolved, a NOT_FOUND domain error is returned.
func (r *Resolver) Resolve(ctx context.Context, externalIDs map[string]string, throwIfEmpty bool) ([]string, error) {
	seen := make(map[string]struct{}, len(externalIDs))
	var candidates []string

	for idType, idValue := range externalIDs {
		ident, err := r.store.Find(ctx, idType, r.hasher.Hash(idValue))
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "resolve external identifiers")
		}
		if _, dup := seen[ident.Identity]; !dup {
			seen[ident.Identity] = struct{}{}
			candidates = append(candidates, ident.Identity)
		}
	}

	if len(candidates) == 0 && throwIfEmpty {
		return nil, dErrors.New(dErrors.CodeNotFound, "no identity found for supplied identifiers")
	}
	return candidates, nil
}

// Register records an external identifier for an identity. Idempotent for the
// same identity; a (value, type) pair already owned by somebody else surfaces
// as DUPLICATE_ENTRY. The store's GetOrCreate keeps two concurrent callers
// from both inserting.
func (r *Resolver) Register(ctx context.Context, idType, idValue, agentID string) error {
	got, err := r.store.GetOrCreate(ctx, ExternalIdentifier{
		IDType:      idType,
		HashedValue: r.hasher.Hash(idValue),
		Identity:    agentID,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "register external identifier")
	}
	if got.Identity != agentID {
		return dErrors.Newf(dErrors.CodeDuplicateEntry, "identifier of type %s already registered", idType)
	}
	return nil
}

// RequireSingle collapses a candidate set that must agree on one identity.
// Conflicting candidates are an ambiguity error, an empty set a not-found.
func RequireSingle(candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", dErrors.New(dErrors.CodeNotFound, "no candidate identity resolved")
	}
	first := candidates[0]
	for _, c := range candidates[1:] {
		if c != first {
			return "", dErrors.New(dErrors.CodeDuplicateEntry, "supplied identifiers resolve to conflicting identities")
		}
	}
	return first, nil
}
