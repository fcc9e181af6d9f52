//go:build integration

package sequence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"didweb-anoncreds/internal/anoncreds/registry/sequence"
	"didweb-anoncreds/pkg/testutil/containers"
)

type RedisSequencerSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	seq   *sequence.Redis
}

func TestRedisSequencerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSequencerSuite))
}

func (s *RedisSequencerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.seq = sequence.NewRedis(s.redis.Client)
}

func (s *RedisSequencerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSequencerSuite) TestClaimChainsVersions() {
	ctx := context.Background()

	first, err := s.seq.Claim(ctx, "rev-1", 100)
	s.Require().NoError(err)
	s.Equal(sequence.Claim{Timestamp: 100}, first)

	second, err := s.seq.Claim(ctx, "rev-1", 90)
	s.Require().NoError(err)
	s.Equal(sequence.Claim{Previous: 100, HasPrevious: true, Timestamp: 101}, second)

	same, err := s.seq.Claim(ctx, "rev-1", 101)
	s.Require().NoError(err)
	s.Equal(sequence.Claim{Previous: 101, HasPrevious: true, Timestamp: 102}, same)
}

func (s *RedisSequencerSuite) TestConcurrentClaimsHaveOneRoot() {
	ctx := context.Background()
	const claims = 20

	var mu sync.Mutex
	var roots int
	var wg sync.WaitGroup
	for i := range claims {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.seq.Claim(ctx, "rev-2", int64(500+i))
			s.NoError(err)
			if !c.HasPrevious {
				mu.Lock()
				roots++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, roots)
}
