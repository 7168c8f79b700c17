// Package ratelimit implements the sliding-window attempt limiter guarding
// the OTP send and verify operations. Attempts are counted per (bucket, key);
// once a key exceeds its bucket's limit inside the window it is blocked for a
// separate, longer TTL.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Bucket names a rate limit category.
type Bucket string

const (
	BucketSendOTP   Bucket = "SEND_OTP"
	BucketVerifyOTP Bucket = "VERIFY_OTP"
)

// Buckets enumerates every bucket the service uses. New must find a limit
// configured for each of these or fail at construction.
func Buckets() []Bucket {
	return []Bucket{BucketSendOTP, BucketVerifyOTP}
}

// Limit configures one bucket.
type Limit struct {
	// Window is the sliding window attempts are counted in.
	Window time.Duration
	// MaxAttempts inside Window before the key is blocked.
	MaxAttempts int
	// BlockFor is how long a tripped key stays blocked. Independent of
	// Window: the block outlives the attempt list.
	BlockFor time.Duration
}

// Config maps buckets to limits. Static, loaded once at startup.
type Config map[Bucket]Limit

func (c Config) validate() error {
	for _, bucket := range Buckets() {
		limit, ok := c[bucket]
		if !ok {
			return fmt.Errorf("rate limit bucket %s has no configuration", bucket)
		}
		if limit.Window <= 0 || limit.MaxAttempts <= 0 || limit.BlockFor <= 0 {
			return fmt.Errorf("rate limit bucket %s: window, max attempts and block duration must be positive", bucket)
		}
	}
	return nil
}

// AttemptStore persists attempt timestamps and block flags. Implementations
// are ephemeral caches; losing them resets all limits, which is accepted.
type AttemptStore interface {
	// RecordAttempt prunes entries older than window, appends the current
	// timestamp, re-persists with TTL = window, and returns the resulting
	// attempt count.
	RecordAttempt(ctx context.Context, key string, window time.Duration) (int, error)
	// Block marks key blocked for the given duration.
	Block(ctx context.Context, key string, d time.Duration) error
	// IsBlocked reports whether key is currently blocked. A missing entry
	// means not blocked.
	IsBlocked(ctx context.Context, key string) (bool, error)
}
