package attempt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "rl:att:"
	blockKeyPrefix   = "rl:blk:"
)

// RedisStore implements ratelimit.AttemptStore on Redis sorted sets. Attempt
// timestamps are sorted-set members scored by nanosecond time; pruning is a
// ZREMRANGEBYSCORE against the window cutoff. Entries are ephemeral: losing
// Redis silently resets all limits, which the design accepts.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) RecordAttempt(ctx context.Context, key string, window time.Duration) (int, error) {
	now := time.Now()
	zkey := attemptKeyPrefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, zkey, "0", cutoff)
	pipe.ZAdd(ctx, zkey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	card := pipe.ZCard(ctx, zkey)
	pipe.Expire(ctx, zkey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record attempt: %w", err)
	}
	return int(card.Val()), nil
}

func (s *RedisStore) Block(ctx context.Context, key string, d time.Duration) error {
	// Key existence is the flag; the value is a plain marker.
	if err := s.client.Set(ctx, blockKeyPrefix+key, "1", d).Err(); err != nil {
		return fmt.Errorf("set block flag: %w", err)
	}
	return nil
}

func (s *RedisStore) IsBlocked(ctx context.Context, key string) (bool, error) {
	_, err := s.client.Get(ctx, blockKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check block flag: %w", err)
	}
	return true, nil
}
