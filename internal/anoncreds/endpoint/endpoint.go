// Package endpoint finds the base URL a DID publishes for a named service.
package endpoint

import (
	"context"

	"didweb-anoncreds/internal/anoncreds/failure"
	"didweb-anoncreds/internal/dids"
)

// Resolver looks up service endpoints in DID documents.
type Resolver struct {
	documents dids.DocumentResolver
}

func NewResolver(documents dids.DocumentResolver) *Resolver {
	return &Resolver{documents: documents}
}

// ResolveEndpoint returns the serviceEndpoint of the entry whose id is
// "<did>#<serviceName>". The endpoint is returned as published, with no
// trailing slash normalization.
func (r *Resolver) ResolveEndpoint(ctx context.Context, did, serviceName string) (string, error) {
	doc, err := r.documents.ResolveDocument(ctx, did)
	if err != nil {
		return "", failure.New(failure.DidResolutionFailed, "unable to resolve DID document for "+did, err)
	}

	svc, ok := doc.FindService(did + "#" + serviceName)
	if !ok {
		return "", failure.Newf(failure.ServiceNotFound, "No valid endpoint has been found for the service %s", serviceName)
	}
	uri, ok := svc.EndpointURI()
	if !ok || uri == "" {
		return "", failure.Newf(failure.ServiceNotFound, "No valid endpoint has been found for the service %s", serviceName)
	}
	return uri, nil
}
