package ratelimit

import (
	"context"
	"errors"
	"log/slog"

	"custodia/internal/platform/hashing"
	"custodia/internal/platform/metrics"
	dErrors "custodia/pkg/domain-errors"
)

// Limiter is the sliding-window attempt counter with a block-state cache.
// Cache keys are a salted fixed-length hash of bucket + key + pepper, so raw
// identities and authorization tokens never appear as cache keys.
type Limiter struct {
	store   AttemptStore
	config  Config
	hasher  *hashing.Hasher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// New validates the configuration for every enumerated bucket and fails at
// construction on any gap, so a missing bucket surfaces at boot rather than
// on the first request that needs it.
func New(store AttemptStore, config Config, hasher *hashing.Hasher, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("attempt store is required")
	}
	if hasher == nil {
		return nil, errors.New("hasher is required")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	l := &Limiter{
		store:  store,
		config: config,
		hasher: hasher,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// RecordAttempt appends an attempt for (bucket, key) and blocks the key when
// the pruned count reaches the bucket's limit.
func (l *Limiter) RecordAttempt(ctx context.Context, bucket Bucket, key string) error {
	limit, err := l.limitFor(bucket)
	if err != nil {
		return err
	}
	cacheKey := l.cacheKey(bucket, key)

	count, err := l.store.RecordAttempt(ctx, cacheKey, limit.Window)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "record rate limit attempt")
	}

	if count >= limit.MaxAttempts {
		if err := l.store.Block(ctx, cacheKey, limit.BlockFor); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "set rate limit block")
		}
		l.metrics.ObserveRateLimitDenial(string(bucket))
		l.logger.InfoContext(ctx, "rate limit tripped",
			"bucket", bucket, "attempts", count, "block_for", limit.BlockFor)
	}
	return nil
}

// IsLimited reports whether (bucket, key) is currently blocked. A cache miss
// means not blocked.
func (l *Limiter) IsLimited(ctx context.Context, bucket Bucket, key string) (bool, error) {
	if _, err := l.limitFor(bucket); err != nil {
		return false, err
	}

	blocked, err := l.store.IsBlocked(ctx, l.cacheKey(bucket, key))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check rate limit block")
	}
	return blocked, nil
}

// limitFor resolves the limit for a bucket. Construction already validated
// the enumerated buckets; an unknown bucket here is a caller bug surfaced as
// a validation error.
func (l *Limiter) limitFor(bucket Bucket) (Limit, error) {
	limit, ok := l.config[bucket]
	if !ok {
		return Limit{}, dErrors.Newf(dErrors.CodeValidation, "unknown rate limit bucket %q", bucket)
	}
	return limit, nil
}

func (l *Limiter) cacheKey(bucket Bucket, key string) string {
	return l.hasher.Hash(string(bucket), key)
}
