package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"didweb-anoncreds/internal/hosting/models"
	"didweb-anoncreds/pkg/platform/sentinel"
)

// Store is the behavior shared by the memory and Postgres stores.
type Store interface {
	CreateResource(ctx context.Context, resource *models.Resource) error
	FindResource(ctx context.Context, kind models.Kind, resourceID string) (*models.Resource, error)
	CreateStatusList(ctx context.Context, list *models.StatusList) error
	FindLatestStatusList(ctx context.Context, revRegDefResourceID string, atOrBefore int64) (*models.StatusList, error)
	ListStatusListTimestamps(ctx context.Context, revRegDefResourceID string) ([]int64, error)
}

const issuerDID = "did:web:issuer.example.com"

func testResource(kind models.Kind, id string) *models.Resource {
	return &models.Resource{
		Kind:       kind,
		ResourceID: id,
		IssuerID:   issuerDID,
		Envelope: models.Envelope{
			Resource:         json.RawMessage(`{"issuerId":"did:web:issuer.example.com","name":"passport","version":"1.0","attrNames":["name"]}`),
			ResourceMetadata: map[string]any{"statusListEndpoint": "https://host/revStatus/" + id},
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func testStatusList(revRegDefID string, ts int64) *models.StatusList {
	return &models.StatusList{
		RevRegDefResourceID: revRegDefID,
		Timestamp:           ts,
		IssuerID:            issuerDID,
		Envelope: models.Envelope{
			Resource:         json.RawMessage(`{"revRegDefId":"x","timestamp":` + itoa(ts) + `}`),
			ResourceMetadata: map[string]any{},
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func itoa(v int64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("resource round trip", func(t *testing.T) {
		s := newStore(t)
		res := testResource(models.KindRevocationRegistryDefinition, "res-1")
		require.NoError(t, s.CreateResource(ctx, res))

		got, err := s.FindResource(ctx, models.KindRevocationRegistryDefinition, "res-1")
		require.NoError(t, err)
		assert.Equal(t, issuerDID, got.IssuerID)
		assert.Equal(t, string(res.Envelope.Resource), string(got.Envelope.Resource), "stored bytes must be served verbatim")
		assert.Equal(t, "https://host/revStatus/res-1", got.Envelope.ResourceMetadata["statusListEndpoint"])
		assert.True(t, res.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("resources are scoped by kind", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateResource(ctx, testResource(models.KindSchema, "res-2")))

		_, err := s.FindResource(ctx, models.KindCredentialDefinition, "res-2")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("duplicate resource conflicts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateResource(ctx, testResource(models.KindSchema, "res-3")))
		err := s.CreateResource(ctx, testResource(models.KindSchema, "res-3"))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("missing resource", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindResource(ctx, models.KindSchema, "absent")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("status list versions", func(t *testing.T) {
		s := newStore(t)
		for _, ts := range []int64{300, 100, 200} {
			require.NoError(t, s.CreateStatusList(ctx, testStatusList("rev-1", ts)))
		}
		require.NoError(t, s.CreateStatusList(ctx, testStatusList("rev-other", 150)))

		stamps, err := s.ListStatusListTimestamps(ctx, "rev-1")
		require.NoError(t, err)
		assert.Equal(t, []int64{100, 200, 300}, stamps)

		latest, err := s.FindLatestStatusList(ctx, "rev-1", 250)
		require.NoError(t, err)
		assert.Equal(t, int64(200), latest.Timestamp)

		exact, err := s.FindLatestStatusList(ctx, "rev-1", 300)
		require.NoError(t, err)
		assert.Equal(t, int64(300), exact.Timestamp)

		_, err = s.FindLatestStatusList(ctx, "rev-1", 99)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		err = s.CreateStatusList(ctx, testStatusList("rev-1", 200))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("no status list versions", func(t *testing.T) {
		s := newStore(t)
		stamps, err := s.ListStatusListTimestamps(ctx, "rev-none")
		require.NoError(t, err)
		assert.Empty(t, stamps)
	})
}
