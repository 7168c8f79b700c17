// Package token implements the signed-token verification flow. An external
// issuer signs a short-lived token naming the identity; the flow fetches the
// issuer's public key by the key id in the token header and verifies the
// signature, expiry and algorithm before trusting the claim.
package token

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"custodia/internal/verification"
	dErrors "custodia/pkg/domain-errors"
)

// KeyProvider fetches public key material by key id.
type KeyProvider interface {
	GetSigningKey(ctx context.Context, keyID string) (string, error)
}

// Flow is the TOKEN verification plugin. Exactly one signature algorithm is
// accepted, configured at startup; a token declaring any other algorithm is
// invalid regardless of its signature.
type Flow struct {
	keys      KeyProvider
	algorithm string
}

func New(keys KeyProvider, algorithm string) (*Flow, error) {
	if keys == nil {
		return nil, errors.New("token flow: key provider is required")
	}
	if algorithm == "" {
		return nil, errors.New("token flow: signature algorithm is required")
	}
	return &Flow{keys: keys, algorithm: algorithm}, nil
}

// Verify validates the supplied token and checks its claimed identity against
// the candidates.
func (f *Flow) Verify(ctx context.Context, candidates []string, params verification.Params, _ verification.Filters) (verification.Result, error) {
	if params.Token == "" {
		return verification.Result{}, dErrors.New(dErrors.CodeValidation, "token is required")
	}

	keyID, err := f.keyID(params.Token)
	if err != nil {
		return verification.Result{}, err
	}

	material, err := f.keys.GetSigningKey(ctx, keyID)
	if err != nil {
		return verification.Result{}, err
	}
	key, err := f.parseKey(material)
	if err != nil {
		return verification.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "parse signing key")
	}

	parsed, err := jwt.Parse(params.Token,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{f.algorithm}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return verification.Result{}, dErrors.Wrap(err, dErrors.CodeInvalidToken, err.Error())
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return verification.Result{}, dErrors.New(dErrors.CodeMissingIdentityInToken, "token carries no identity claim")
	}

	for _, candidate := range candidates {
		if candidate == subject {
			return verification.Result{Status: verification.StatusMatched, ID: subject}, nil
		}
	}
	return verification.Result{}, dErrors.New(dErrors.CodeInvalidToken, "token identity is not among the candidates")
}

// Save is unsupported: there is no way to inject an identity into the
// external issuer's token metadata.
func (f *Flow) Save(context.Context, string, verification.Params) error {
	return dErrors.New(dErrors.CodeNotImplemented, "the token plugin has no registration path")
}

// keyID reads the kid from the unverified header. The token is not trusted
// yet at this point; the header only tells us which key to fetch.
func (f *Flow) keyID(token string) (string, error) {
	parser := jwt.NewParser()
	unverified, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidToken, "token is not decodable")
	}
	keyID, ok := unverified.Header["kid"].(string)
	if !ok || keyID == "" {
		return "", dErrors.New(dErrors.CodeInvalidToken, "token names no signing key")
	}
	return keyID, nil
}

func (f *Flow) parseKey(material string) (any, error) {
	switch {
	case strings.HasPrefix(f.algorithm, "RS"), strings.HasPrefix(f.algorithm, "PS"):
		return jwt.ParseRSAPublicKeyFromPEM([]byte(material))
	case strings.HasPrefix(f.algorithm, "ES"):
		return jwt.ParseECPublicKeyFromPEM([]byte(material))
	case strings.HasPrefix(f.algorithm, "Ed"):
		return jwt.ParseEdPublicKeyFromPEM([]byte(material))
	default:
		return []byte(material), nil
	}
}
