package dids

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"didweb-anoncreds/internal/platform/httpclient"
	"didweb-anoncreds/pkg/platform/sentinel"
)

const (
	webPrefix       = "did:web:"
	wellKnownSuffix = "/.well-known/did.json"
	documentName    = "/did.json"

	maxDocumentBytes = 1 << 20
)

var (
	ErrInvalidDID  = errors.New("invalid did:web identifier")
	ErrDocumentID  = errors.New("did document id does not match did")
	ErrBadDocument = errors.New("malformed did document")
)

// DocumentResolver resolves a DID to its document.
type DocumentResolver interface {
	ResolveDocument(ctx context.Context, did string) (*Document, error)
}

// DocumentURL maps a did:web DID to the HTTPS location of its document.
// Colons separate path segments; a percent-encoded colon in the host keeps a port.
func DocumentURL(did string) (string, error) {
	return documentURL(did, "https")
}

func documentURL(did, scheme string) (string, error) {
	if !strings.HasPrefix(did, webPrefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDID, did)
	}
	msi := strings.TrimPrefix(did, webPrefix)
	if msi == "" || strings.ContainsAny(msi, "/?#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDID, did)
	}

	segments := strings.Split(msi, ":")
	decoded := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			return "", fmt.Errorf("%w: empty segment in %q", ErrInvalidDID, did)
		}
		s, err := url.PathUnescape(seg)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDID, err)
		}
		decoded = append(decoded, s)
	}

	host := decoded[0]
	if len(decoded) == 1 {
		return scheme + "://" + host + wellKnownSuffix, nil
	}
	return scheme + "://" + host + "/" + strings.Join(decoded[1:], "/") + documentName, nil
}

// WebResolver fetches did:web documents.
type WebResolver struct {
	client httpclient.Doer
	scheme string
	logger *slog.Logger
}

type WebOption func(*WebResolver)

// WithInsecureHTTP resolves over plain http. Only for local hosts and tests.
func WithInsecureHTTP() WebOption {
	return func(r *WebResolver) {
		r.scheme = "http"
	}
}

func WithWebLogger(logger *slog.Logger) WebOption {
	return func(r *WebResolver) {
		r.logger = logger
	}
}

func NewWebResolver(client httpclient.Doer, opts ...WebOption) *WebResolver {
	r := &WebResolver{
		client: client,
		scheme: "https",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *WebResolver) ResolveDocument(ctx context.Context, did string) (*Document, error) {
	target, err := documentURL(did, r.scheme)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build did document request: %w", err)
	}
	req.Header.Set("Accept", "application/did+json, application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch did document %s: %w", target, err)
	}
	defer resp.Body.Close()

	r.logger.DebugContext(ctx, "did document fetched", "did", did, "url", target, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("did document %s: %w", target, sentinel.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("did document %s: unexpected status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read did document %s: %w", target, err)
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if doc.ID != did {
		return nil, fmt.Errorf("%w: got %q want %q", ErrDocumentID, doc.ID, did)
	}
	return &doc, nil
}
