// Package hosting serves AnonCreds resources and revocation status lists at
// the URLs their did:web identifiers resolve to.
package hosting

import (
	"log/slog"

	"didweb-anoncreds/internal/hosting/handler"
	"didweb-anoncreds/internal/hosting/service"
	"didweb-anoncreds/internal/platform/middleware"
)

// Service publishes and looks up resources.
type Service = service.Service

// Handler wires HTTP endpoints to the hosting service.
type Handler = handler.Handler

// NewService constructs the hosting service with required dependencies.
func NewService(store service.Store, publicBaseURL string, opts ...service.Option) *Service {
	return service.New(store, publicBaseURL, opts...)
}

// NewHandler constructs the HTTP handler for resource routes.
func NewHandler(s *Service, validator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return handler.New(s, validator, logger)
}
