//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"didweb-anoncreds/internal/hosting/models"
	"didweb-anoncreds/internal/hosting/store"
	"didweb-anoncreds/pkg/platform/sentinel"
	"didweb-anoncreds/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(store.Migrate(context.Background(), s.postgres.DB))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) truncate() {
	err := s.postgres.TruncateTables(context.Background(), "anoncreds_resources", "revocation_status_lists")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.truncate()
}

func (s *PostgresStoreSuite) TestContract() {
	runStoreContract(s.T(), func(t *testing.T) Store {
		s.truncate()
		return s.store
	})
}

func (s *PostgresStoreSuite) TestMigrateIsIdempotent() {
	s.Require().NoError(store.Migrate(context.Background(), s.postgres.DB))
}

// TestConcurrentStatusListVersion verifies that concurrent writes of the same
// version result in exactly one success.
func (s *PostgresStoreSuite) TestConcurrentStatusListVersion() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateStatusList(ctx, testStatusList("rev-race", 1000))
			switch {
			case err == nil:
				successCount.Add(1)
			case err == sentinel.ErrConflict:
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *PostgresStoreSuite) TestResourceBytesPreserved() {
	ctx := context.Background()
	res := testResource(models.KindSchema, "verbatim")
	res.Envelope.Resource = []byte(`{"name":"x",  "issuerId":"did:web:issuer.example.com","n":1.50}`)
	s.Require().NoError(s.store.CreateResource(ctx, res))

	got, err := s.store.FindResource(ctx, models.KindSchema, "verbatim")
	s.Require().NoError(err)
	s.Equal(string(res.Envelope.Resource), string(got.Envelope.Resource))
}
