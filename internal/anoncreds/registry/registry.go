// Package registry is the did:web AnonCreds registry. Objects are published by
// their issuers as JSON envelopes under a service endpoint of the issuer's DID
// document and addressed by the hash of their canonical JSON. Resolution
// fetches and verifies; registration only computes identifiers.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"didweb-anoncreds/internal/anoncreds/failure"
	"didweb-anoncreds/internal/anoncreds/fetcher"
	"didweb-anoncreds/internal/anoncreds/models"
	"didweb-anoncreds/internal/anoncreds/registry/metrics"
	"didweb-anoncreds/internal/anoncreds/registry/sequence"
	"didweb-anoncreds/pkg/requestcontext"
)

const (
	// DefaultServiceName is the DID document service that hosts AnonCreds objects.
	DefaultServiceName = "anoncreds"

	methodName = "web"
)

var supportedIdentifier = regexp.MustCompile(`^did:web:[_a-z0-9.%A-]*`)

// ResourceFetcher retrieves resource envelopes.
type ResourceFetcher interface {
	FetchAndVerify(ctx context.Context, id string, policy fetcher.Policy) (*fetcher.Envelope, error)
	FetchURL(ctx context.Context, url string, policy fetcher.Policy) (*fetcher.Envelope, error)
}

// VersionSequencer serializes status list versions per revocation registry definition.
type VersionSequencer interface {
	Claim(ctx context.Context, revRegDefID string, timestamp int64) (sequence.Claim, error)
}

type Registry struct {
	fetcher     ResourceFetcher
	serviceName string
	sequencer   VersionSequencer
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Registry)

func WithServiceName(name string) Option {
	return func(r *Registry) {
		if name != "" {
			r.serviceName = name
		}
	}
}

func WithSequencer(seq VersionSequencer) Option {
	return func(r *Registry) {
		r.sequencer = seq
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func New(f ResourceFetcher, opts ...Option) *Registry {
	r := &Registry{
		fetcher:     f,
		serviceName: DefaultServiceName,
		sequencer:   sequence.NewMemory(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MethodName is the DID method this registry serves.
func (r *Registry) MethodName() string {
	return methodName
}

// SupportedIdentifier matches identifiers this registry can resolve.
func (r *Registry) SupportedIdentifier() *regexp.Regexp {
	return supportedIdentifier
}

// Supports reports whether id is routed to this registry.
func (r *Registry) Supports(id string) bool {
	return supportedIdentifier.MatchString(id)
}

func (r *Registry) ServiceName() string {
	return r.serviceName
}

// resolve fetches id under policy and decodes the resource into T. Every
// failure is mapped onto resolution metadata here and nowhere else.
func resolve[T any](ctx context.Context, r *Registry, id string, policy fetcher.Policy) (*T, models.Metadata, models.ResolutionMetadata) {
	start := time.Now()
	env, err := r.fetcher.FetchAndVerify(ctx, id, policy)
	var obj *T
	if err == nil {
		var decoded T
		if err = env.Decode(&decoded); err == nil {
			obj = &decoded
		}
	}
	meta := r.observe(ctx, policy.KindPath, id, err, start)
	if err != nil {
		return nil, models.Metadata{}, meta
	}
	return obj, env.ResourceMetadata, meta
}

func (r *Registry) observe(ctx context.Context, kind, id string, err error, start time.Time) models.ResolutionMetadata {
	meta := resolutionMetadata(err)
	outcome := "ok"
	if meta.Failed() {
		outcome = meta.Error
		r.logger.DebugContext(ctx, "anoncreds resolution failed",
			"request_id", requestcontext.RequestID(ctx),
			"kind", kind,
			"id", id,
			"error", err,
		)
	}
	if r.metrics != nil {
		r.metrics.ObserveResolution(kind, outcome, start)
	}
	return meta
}

// resolutionMetadata maps internal failures onto the public error codes:
// NotFound becomes notFound, every other failure becomes invalid.
func resolutionMetadata(err error) models.ResolutionMetadata {
	if err == nil {
		return models.ResolutionMetadata{}
	}
	if failure.Is(err, failure.NotFound) {
		return models.ResolutionMetadata{Error: models.ErrorNotFound, Message: describe(err)}
	}
	return models.ResolutionMetadata{Error: models.ErrorInvalid, Message: describe(err)}
}

func describe(err error) string {
	msg := failure.MessageOf(err)
	if failure.Is(err, failure.ResourceIDMismatch) {
		return msg
	}
	if cause := unwrapCause(err); cause != nil {
		return msg + ": " + cause.Error()
	}
	return msg
}

func unwrapCause(err error) error {
	var fe *failure.Error
	if !errors.As(err, &fe) {
		return nil
	}
	return fe.Underlying
}

func (r *Registry) countRegistration(kind, state string) {
	if r.metrics != nil {
		r.metrics.IncrementRegistration(kind, state)
	}
}
