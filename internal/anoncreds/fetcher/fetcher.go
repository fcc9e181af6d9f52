// Package fetcher retrieves AnonCreds resource envelopes and checks that the
// content hashes to the resource id embedded in the identifier.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"didweb-anoncreds/internal/anoncreds/failure"
	"didweb-anoncreds/internal/anoncreds/identifier"
	"didweb-anoncreds/internal/anoncreds/models"
	"didweb-anoncreds/internal/platform/httpclient"
)

const maxEnvelopeBytes = 10 << 20

// Policy describes how one object kind is fetched.
type Policy struct {
	// KindPath is the relativeRef kind segment ("schema", "credDef", ...).
	KindPath string
	// VerifyContent recomputes the resource id from the fetched content.
	VerifyContent bool
}

var (
	SchemaPolicy                       = Policy{KindPath: "schema", VerifyContent: true}
	CredentialDefinitionPolicy         = Policy{KindPath: "credDef", VerifyContent: true}
	RevocationRegistryDefinitionPolicy = Policy{KindPath: "revRegDef", VerifyContent: true}
	// Status lists are addressed by timestamp, not content.
	RevocationStatusListPolicy = Policy{KindPath: "revStatus", VerifyContent: false}
)

// Envelope is the body served for every resource.
type Envelope struct {
	Resource         json.RawMessage `json:"resource"`
	ResourceMetadata models.Metadata `json:"resourceMetadata"`
}

// Decode unmarshals the resource into v.
func (e *Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Resource, v); err != nil {
		return failure.New(failure.Transport, "resource does not match the expected object shape", err)
	}
	return nil
}

// EndpointResolver finds the base URL for a DID service.
type EndpointResolver interface {
	ResolveEndpoint(ctx context.Context, did, serviceName string) (string, error)
}

type Fetcher struct {
	endpoints EndpointResolver
	client    httpclient.Doer
	logger    *slog.Logger
}

type Option func(*Fetcher)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func New(endpoints EndpointResolver, client httpclient.Doer, opts ...Option) *Fetcher {
	f := &Fetcher{
		endpoints: endpoints,
		client:    client,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAndVerify resolves id to a URL, fetches the envelope and, when the
// policy asks for it, verifies the content hash. The URL is the service
// endpoint concatenated with relativeRef exactly as written.
func (f *Fetcher) FetchAndVerify(ctx context.Context, id string, policy Policy) (*Envelope, error) {
	parsed, err := identifier.Parse(id)
	if err != nil {
		return nil, err
	}

	base, err := f.endpoints.ResolveEndpoint(ctx, parsed.DID, parsed.ServiceName)
	if err != nil {
		return nil, err
	}

	env, err := f.FetchURL(ctx, base+parsed.RelativeRef, policy)
	if err != nil {
		return nil, err
	}

	if policy.VerifyContent && !identifier.VerifyResourceID(env.Resource, parsed.ResourceID()) {
		f.logger.WarnContext(ctx, "resource id mismatch",
			"kind", policy.KindPath,
			"resource_id", parsed.ResourceID(),
		)
		return nil, failure.New(failure.ResourceIDMismatch, failure.MessageWrongResourceID, nil)
	}
	return env, nil
}

// FetchURL fetches and decodes an envelope from url without content verification.
func (f *Fetcher) FetchURL(ctx context.Context, url string, policy Policy) (*Envelope, error) {
	f.logger.DebugContext(ctx, "getting AnonCreds resource", "kind", policy.KindPath, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, failure.New(failure.Transport, "invalid resource URL "+url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, failure.New(failure.Transport, "unable to fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.DebugContext(ctx, "resource fetch returned non-200", "url", url, "status", resp.StatusCode)
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxEnvelopeBytes))
		return nil, failure.NewNotFound(url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes+1))
	if err != nil {
		return nil, failure.New(failure.Transport, "unable to read "+url, err)
	}
	if len(body) > maxEnvelopeBytes {
		return nil, failure.Newf(failure.Transport, "resource at %s exceeds %d bytes", url, maxEnvelopeBytes)
	}
	return decodeEnvelope(body)
}

func decodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, failure.New(failure.Transport, "malformed resource envelope", err)
	}
	trimmed := bytes.TrimSpace(env.Resource)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, failure.New(failure.Transport, "resource envelope has no resource object", nil)
	}
	if env.ResourceMetadata == nil {
		env.ResourceMetadata = models.Metadata{}
	}
	return &env, nil
}

