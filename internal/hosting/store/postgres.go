package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"didweb-anoncreds/internal/hosting/models"
	"didweb-anoncreds/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists resources in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateResource(ctx context.Context, resource *models.Resource) error {
	meta, err := encodeMetadata(resource.Envelope.ResourceMetadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO anoncreds_resources (kind, resource_id, issuer_id, resource, resource_metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(resource.Kind), resource.ResourceID, resource.IssuerID,
		string(resource.Envelope.Resource), meta, resource.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindResource(ctx context.Context, kind models.Kind, resourceID string) (*models.Resource, error) {
	var (
		resource    = models.Resource{Kind: kind, ResourceID: resourceID}
		rawResource string
		rawMeta     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT issuer_id, resource::text, resource_metadata::text, created_at
		FROM anoncreds_resources
		WHERE kind = $1 AND resource_id = $2
	`, string(kind), resourceID).Scan(&resource.IssuerID, &rawResource, &rawMeta, &resource.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find resource: %w", err)
	}
	envelope, err := decodeEnvelope(rawResource, rawMeta)
	if err != nil {
		return nil, err
	}
	resource.Envelope = envelope
	return &resource, nil
}

func (s *PostgresStore) CreateStatusList(ctx context.Context, list *models.StatusList) error {
	meta, err := encodeMetadata(list.Envelope.ResourceMetadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO revocation_status_lists (rev_reg_def_resource_id, version_timestamp, issuer_id, resource, resource_metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, list.RevRegDefResourceID, list.Timestamp, list.IssuerID,
		string(list.Envelope.Resource), meta, list.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create status list: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindLatestStatusList(ctx context.Context, revRegDefResourceID string, atOrBefore int64) (*models.StatusList, error) {
	var (
		list        = models.StatusList{RevRegDefResourceID: revRegDefResourceID}
		rawResource string
		rawMeta     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT version_timestamp, issuer_id, resource::text, resource_metadata::text, created_at
		FROM revocation_status_lists
		WHERE rev_reg_def_resource_id = $1 AND version_timestamp <= $2
		ORDER BY version_timestamp DESC
		LIMIT 1
	`, revRegDefResourceID, atOrBefore).Scan(&list.Timestamp, &list.IssuerID, &rawResource, &rawMeta, &list.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find status list: %w", err)
	}
	envelope, err := decodeEnvelope(rawResource, rawMeta)
	if err != nil {
		return nil, err
	}
	list.Envelope = envelope
	return &list, nil
}

// ListStatusListTimestamps aggregates the versions in one round trip.
func (s *PostgresStore) ListStatusListTimestamps(ctx context.Context, revRegDefResourceID string) ([]int64, error) {
	var stamps pq.Int64Array
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(array_agg(version_timestamp ORDER BY version_timestamp), '{}')::text
		FROM revocation_status_lists
		WHERE rev_reg_def_resource_id = $1
	`, revRegDefResourceID).Scan(&stamps)
	if err != nil {
		return nil, fmt.Errorf("list status list timestamps: %w", err)
	}
	return []int64(stamps), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func encodeMetadata(meta map[string]any) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal resource metadata: %w", err)
	}
	return string(raw), nil
}

func decodeEnvelope(rawResource, rawMeta string) (models.Envelope, error) {
	envelope := models.Envelope{Resource: json.RawMessage(rawResource)}
	if err := json.Unmarshal([]byte(rawMeta), &envelope.ResourceMetadata); err != nil {
		return models.Envelope{}, fmt.Errorf("unmarshal resource metadata: %w", err)
	}
	if envelope.ResourceMetadata == nil {
		envelope.ResourceMetadata = map[string]any{}
	}
	return envelope, nil
}
