// Package service publishes and serves content-addressed AnonCreds resources
// and timestamped revocation status lists.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"didweb-anoncreds/internal/anoncreds/identifier"
	"didweb-anoncreds/internal/hosting/metrics"
	"didweb-anoncreds/internal/hosting/models"
	dErrors "didweb-anoncreds/pkg/domain-errors"
	"didweb-anoncreds/pkg/platform/sentinel"
	"didweb-anoncreds/pkg/requestcontext"
)

// StatusListKind labels status list metrics and events.
const StatusListKind = "revStatus"

type Store interface {
	CreateResource(ctx context.Context, resource *models.Resource) error
	FindResource(ctx context.Context, kind models.Kind, resourceID string) (*models.Resource, error)
	CreateStatusList(ctx context.Context, list *models.StatusList) error
	FindLatestStatusList(ctx context.Context, revRegDefResourceID string, atOrBefore int64) (*models.StatusList, error)
	ListStatusListTimestamps(ctx context.Context, revRegDefResourceID string) ([]int64, error)
}

type EventPublisher interface {
	Emit(ctx context.Context, event models.ResourcePublished) error
}

// Service validates publish requests against the authenticated issuer and
// stores them.
type Service struct {
	store         Store
	publicBaseURL string
	logger        *slog.Logger
	publisher     EventPublisher
	metrics       *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithEventPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. publicBaseURL is the externally visible URL the
// host is mounted at, without a trailing slash.
func New(store Store, publicBaseURL string, opts ...Option) *Service {
	s := &Service{
		store:         store,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// issuerFields are the parts of a published object the host checks.
type issuerFields struct {
	IssuerID    string `json:"issuerId"`
	RevRegDefID string `json:"revRegDefId"`
	Timestamp   *int64 `json:"timestamp"`
}

// PublishResource stores a schema, credential definition or revocation
// registry definition under its content-derived id.
func (s *Service) PublishResource(ctx context.Context, kind models.Kind, resourceID string, req *models.PublishRequest) (*models.Resource, error) {
	resource, err := s.publishResource(ctx, kind, resourceID, req)
	if err != nil {
		s.incrementRejected(string(kind), err)
		return nil, err
	}
	s.incrementPublished(string(kind))
	s.emit(ctx, models.ResourcePublished{
		Type:       models.EventResourcePublished,
		Kind:       string(kind),
		ResourceID: resourceID,
		IssuerID:   resource.IssuerID,
		URL:        s.resourceURL(kind, resourceID),
	})
	return resource, nil
}

func (s *Service) publishResource(ctx context.Context, kind models.Kind, resourceID string, req *models.PublishRequest) (*models.Resource, error) {
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("unsupported resource kind %q", kind))
	}
	fields, err := decodeObject(req)
	if err != nil {
		return nil, err
	}
	computed, err := identifier.ComputeResourceID(req.Resource)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "resource cannot be canonicalized")
	}
	if computed != resourceID {
		return nil, dErrors.New(dErrors.CodeValidation, "Wrong resource Id")
	}
	if err := requireIssuer(ctx, fields.IssuerID); err != nil {
		return nil, err
	}

	metadata := copyMetadata(req.ResourceMetadata)
	if kind == models.KindRevocationRegistryDefinition {
		if _, ok := metadata["statusListEndpoint"]; !ok {
			metadata["statusListEndpoint"] = s.publicBaseURL + "/" + StatusListKind + "/" + resourceID
		}
	}

	resource := &models.Resource{
		Kind:       kind,
		ResourceID: resourceID,
		IssuerID:   fields.IssuerID,
		Envelope:   models.Envelope{Resource: req.Resource, ResourceMetadata: metadata},
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.CreateResource(ctx, resource); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "resource already published")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store resource")
	}
	return resource, nil
}

// GetResource returns a stored resource.
func (s *Service) GetResource(ctx context.Context, kind models.Kind, resourceID string) (*models.Resource, error) {
	start := time.Now()
	defer s.observeLookup(string(kind), start)

	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("unsupported resource kind %q", kind))
	}
	resource, err := s.store.FindResource(ctx, kind, resourceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resource not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resource")
	}
	return resource, nil
}

// PublishStatusList stores one version of the status list of a revocation
// registry definition published on this host.
func (s *Service) PublishStatusList(ctx context.Context, revRegDefResourceID string, timestamp int64, req *models.PublishRequest) (*models.StatusList, error) {
	list, err := s.publishStatusList(ctx, revRegDefResourceID, timestamp, req)
	if err != nil {
		s.incrementRejected(StatusListKind, err)
		return nil, err
	}
	s.incrementPublished(StatusListKind)
	s.emit(ctx, models.ResourcePublished{
		Type:       models.EventStatusListPublished,
		Kind:       StatusListKind,
		ResourceID: revRegDefResourceID,
		IssuerID:   list.IssuerID,
		Timestamp:  timestamp,
		URL:        fmt.Sprintf("%s/%s/%s/%d", s.publicBaseURL, StatusListKind, revRegDefResourceID, timestamp),
	})
	return list, nil
}

func (s *Service) publishStatusList(ctx context.Context, revRegDefResourceID string, timestamp int64, req *models.PublishRequest) (*models.StatusList, error) {
	if timestamp <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "timestamp must be a positive unix time")
	}
	fields, err := decodeObject(req)
	if err != nil {
		return nil, err
	}
	if fields.Timestamp != nil && *fields.Timestamp != timestamp {
		return nil, dErrors.New(dErrors.CodeValidation, "timestamp does not match the status list")
	}
	if fields.RevRegDefID != "" {
		parsed, err := identifier.Parse(fields.RevRegDefID)
		if err != nil || parsed.ResourceID() != revRegDefResourceID {
			return nil, dErrors.New(dErrors.CodeValidation, "revRegDefId does not reference this revocation registry definition")
		}
	}
	if err := requireIssuer(ctx, fields.IssuerID); err != nil {
		return nil, err
	}

	definition, err := s.store.FindResource(ctx, models.KindRevocationRegistryDefinition, revRegDefResourceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "revocation registry definition not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load revocation registry definition")
	}
	if definition.IssuerID != fields.IssuerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "revocation registry definition belongs to another issuer")
	}

	list := &models.StatusList{
		RevRegDefResourceID: revRegDefResourceID,
		Timestamp:           timestamp,
		IssuerID:            fields.IssuerID,
		Envelope:            models.Envelope{Resource: req.Resource, ResourceMetadata: copyMetadata(req.ResourceMetadata)},
		CreatedAt:           requestcontext.Now(ctx),
	}
	if err := s.store.CreateStatusList(ctx, list); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "status list version already published")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store status list")
	}
	return list, nil
}

// GetStatusList returns the newest version with a timestamp at or before
// atOrBefore.
func (s *Service) GetStatusList(ctx context.Context, revRegDefResourceID string, atOrBefore int64) (*models.StatusList, error) {
	start := time.Now()
	defer s.observeLookup(StatusListKind, start)

	list, err := s.store.FindLatestStatusList(ctx, revRegDefResourceID, atOrBefore)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no status list published at or before %d", atOrBefore))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load status list")
	}
	return list, nil
}

// ListStatusListTimestamps returns the published version timestamps in
// ascending order.
func (s *Service) ListStatusListTimestamps(ctx context.Context, revRegDefResourceID string) (*models.StatusListTimestamps, error) {
	if _, err := s.store.FindResource(ctx, models.KindRevocationRegistryDefinition, revRegDefResourceID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "revocation registry definition not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load revocation registry definition")
	}
	timestamps, err := s.store.ListStatusListTimestamps(ctx, revRegDefResourceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list status list versions")
	}
	if timestamps == nil {
		timestamps = []int64{}
	}
	return &models.StatusListTimestamps{RevRegDefResourceID: revRegDefResourceID, Timestamps: timestamps}, nil
}

func decodeObject(req *models.PublishRequest) (*issuerFields, error) {
	if req == nil || len(req.Resource) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "resource is required")
	}
	trimmed := strings.TrimSpace(string(req.Resource))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, dErrors.New(dErrors.CodeValidation, "resource must be a JSON object")
	}
	var fields issuerFields
	if err := json.Unmarshal(req.Resource, &fields); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "resource is not valid JSON")
	}
	if fields.IssuerID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "issuerId is required")
	}
	return &fields, nil
}

func requireIssuer(ctx context.Context, issuerID string) error {
	if subject := requestcontext.Subject(ctx); subject != issuerID {
		return dErrors.New(dErrors.CodeForbidden, "issuerId does not match the authenticated issuer")
	}
	return nil
}

func copyMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *Service) resourceURL(kind models.Kind, resourceID string) string {
	return s.publicBaseURL + "/" + string(kind) + "/" + resourceID
}

func (s *Service) emit(ctx context.Context, event models.ResourcePublished) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit publish event",
			"request_id", requestcontext.RequestID(ctx),
			"resource_id", event.ResourceID,
			"error", err,
		)
	}
}

func (s *Service) incrementPublished(kind string) {
	if s.metrics != nil {
		s.metrics.IncrementPublished(kind)
	}
}

func (s *Service) incrementRejected(kind string, err error) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(kind, string(dErrors.CodeOf(err)))
	}
}

func (s *Service) observeLookup(kind string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveLookup(kind, start)
	}
}
