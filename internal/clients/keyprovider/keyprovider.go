// Package keyprovider fetches token signing keys from the issuer's key
// server, keyed by the kid named in a token header. Keys rotate rarely, so
// fetched material is cached in process for a short period.
package keyprovider

import (
	"context"
	"sync"
	"time"

	"custodia/internal/platform/httpclient"
)

const defaultCacheTTL = 10 * time.Minute

type cachedKey struct {
	material  string
	fetchedAt time.Time
}

// Client fetches public key material by key id.
type Client struct {
	http    *httpclient.Client
	baseURL string

	mu       sync.RWMutex
	cache    map[string]cachedKey
	cacheTTL time.Duration
	now      func() time.Time
}

type Option func(*Client)

// WithCacheTTL overrides how long a fetched key is reused before refetching.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = d
	}
}

func New(http *httpclient.Client, baseURL string, opts ...Option) *Client {
	c := &Client{
		http:     http,
		baseURL:  baseURL,
		cache:    make(map[string]cachedKey),
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSigningKey returns the PEM public key for keyID, from cache when fresh.
func (c *Client) GetSigningKey(ctx context.Context, keyID string) (string, error) {
	c.mu.RLock()
	cached, ok := c.cache[keyID]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.fetchedAt) < c.cacheTTL {
		return cached.material, nil
	}

	var res struct {
		Kid       string `json:"kid"`
		PublicKey string `json:"publicKey"`
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/v1/keys/"+keyID, &res); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[keyID] = cachedKey{material: res.PublicKey, fetchedAt: c.now()}
	c.mu.Unlock()
	return res.PublicKey, nil
}
