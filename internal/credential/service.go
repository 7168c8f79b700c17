package credential

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"

	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/sentinel"
)

// Service owns the wallet credential lifecycle.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create mints a wallet for agentID: a UUID wallet id and random key and
// seed. Creating twice for the same identity is a duplicate entry.
func (s *Service) Create(ctx context.Context, agentID string) (Credential, error) {
	key, err := randomSecret()
	if err != nil {
		return Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "generate wallet key")
	}
	seed, err := randomSecret()
	if err != nil {
		return Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "generate wallet seed")
	}

	cred := Credential{
		Identity:   agentID,
		WalletID:   uuid.NewString(),
		WalletKey:  key,
		WalletSeed: seed,
	}
	if err := s.store.Create(ctx, cred); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Credential{}, dErrors.New(dErrors.CodeDuplicateEntry, "credential already exists for identity")
		}
		return Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "create credential")
	}
	return cred, nil
}

// Fetch returns the escrowed credential for agentID.
func (s *Service) Fetch(ctx context.Context, agentID string) (Credential, error) {
	cred, err := s.store.Fetch(ctx, agentID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Credential{}, dErrors.New(dErrors.CodeNotFound, "no credential for identity")
	}
	if err != nil {
		return Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "fetch credential")
	}
	return cred, nil
}

// Exists reports whether agentID has an escrowed credential.
func (s *Service) Exists(ctx context.Context, agentID string) (bool, error) {
	ok, err := s.store.Exists(ctx, agentID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check credential")
	}
	return ok, nil
}

// Delete removes the credential for agentID. Deleting a missing credential is
// a not-found.
func (s *Service) Delete(ctx context.Context, agentID string) error {
	err := s.store.Delete(ctx, agentID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "no credential for identity")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete credential")
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
