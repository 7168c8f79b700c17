//go:build integration

package attempt_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"custodia/internal/ratelimit/store/attempt"
	"custodia/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *attempt.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = attempt.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRecordAttemptCounts() {
	ctx := context.Background()

	var count int
	var err error
	for range 4 {
		count, err = s.store.RecordAttempt(ctx, "hash-a", time.Minute)
		s.Require().NoError(err)
	}
	s.Equal(4, count)
}

func (s *RedisStoreSuite) TestRecordAttemptPrunesOldEntries() {
	ctx := context.Background()

	_, err := s.store.RecordAttempt(ctx, "hash-b", 100*time.Millisecond)
	s.Require().NoError(err)

	time.Sleep(150 * time.Millisecond)

	count, err := s.store.RecordAttempt(ctx, "hash-b", 100*time.Millisecond)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *RedisStoreSuite) TestBlockFlagExpires() {
	ctx := context.Background()

	s.Require().NoError(s.store.Block(ctx, "hash-c", 200*time.Millisecond))

	blocked, err := s.store.IsBlocked(ctx, "hash-c")
	s.Require().NoError(err)
	s.True(blocked)

	time.Sleep(300 * time.Millisecond)

	blocked, err = s.store.IsBlocked(ctx, "hash-c")
	s.Require().NoError(err)
	s.False(blocked)
}

func (s *RedisStoreSuite) TestMissingKeyNotBlocked() {
	blocked, err := s.store.IsBlocked(context.Background(), "never-seen")
	s.Require().NoError(err)
	s.False(blocked)
}
