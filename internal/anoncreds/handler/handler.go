// Package handler exposes the registry over HTTP so holders and verifiers
// without a Go integration can resolve and prepare AnonCreds objects.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"didweb-anoncreds/internal/anoncreds/failure"
	"didweb-anoncreds/internal/anoncreds/models"
	"didweb-anoncreds/internal/platform/middleware"
	dErrors "didweb-anoncreds/pkg/domain-errors"
	"didweb-anoncreds/pkg/platform/httputil"
	"didweb-anoncreds/pkg/requestcontext"
)

// Registry is the subset of the registry façade served over HTTP.
type Registry interface {
	GetSchema(ctx context.Context, schemaID string) models.GetSchemaResult
	GetCredentialDefinition(ctx context.Context, credentialDefinitionID string) models.GetCredentialDefinitionResult
	GetRevocationRegistryDefinition(ctx context.Context, revRegDefID string) models.GetRevocationRegistryDefinitionResult
	GetRevocationStatusList(ctx context.Context, revRegDefID string, timestamp int64) models.GetRevocationStatusListResult
	RegisterSchema(ctx context.Context, opts models.RegisterSchemaOptions) (models.RegisterSchemaResult, error)
	RegisterCredentialDefinition(ctx context.Context, opts models.RegisterCredentialDefinitionOptions) (models.RegisterCredentialDefinitionResult, error)
	RegisterRevocationRegistryDefinition(ctx context.Context, opts models.RegisterRevocationRegistryDefinitionOptions) (models.RegisterRevocationRegistryDefinitionResult, error)
	RegisterRevocationStatusList(ctx context.Context, opts models.RegisterRevocationStatusListOptions) (models.RegisterRevocationStatusListResult, error)
	Supports(id string) bool
}

type Handler struct {
	logger   *slog.Logger
	registry Registry
}

func New(registry Registry, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, registry: registry}
}

// Register mounts the resolve and register routes on r.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime(nil))
	router.Use(middleware.Logger(h.logger))

	router.Get("/resolve/schema", h.handleGetSchema)
	router.Get("/resolve/credDef", h.handleGetCredentialDefinition)
	router.Get("/resolve/revRegDef", h.handleGetRevocationRegistryDefinition)
	router.Get("/resolve/revStatus", h.handleGetRevocationStatusList)

	router.Post("/register/schema", h.handleRegisterSchema)
	router.Post("/register/credDef", h.handleRegisterCredentialDefinition)
	router.Post("/register/revRegDef", h.handleRegisterRevocationRegistryDefinition)
	router.Post("/register/revStatus", h.handleRegisterRevocationStatusList)

	r.Mount("/registry", router)
}

func (h *Handler) requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "id query parameter is required"))
		return "", false
	}
	if !h.registry.Supports(id) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "identifier is not a did:web identifier"))
		return "", false
	}
	return id, true
}

func (h *Handler) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	result := h.registry.GetSchema(r.Context(), id)
	h.writeResolution(w, r, result.ResolutionMetadata, result)
}

func (h *Handler) handleGetCredentialDefinition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	result := h.registry.GetCredentialDefinition(r.Context(), id)
	h.writeResolution(w, r, result.ResolutionMetadata, result)
}

func (h *Handler) handleGetRevocationRegistryDefinition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	result := h.registry.GetRevocationRegistryDefinition(r.Context(), id)
	h.writeResolution(w, r, result.ResolutionMetadata, result)
}

func (h *Handler) handleGetRevocationStatusList(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	timestamp := requestcontext.Now(r.Context()).Unix()
	if raw := r.URL.Query().Get("timestamp"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "timestamp must be an integer unix time"))
			return
		}
		timestamp = parsed
	}
	result := h.registry.GetRevocationStatusList(r.Context(), id, timestamp)
	h.writeResolution(w, r, result.ResolutionMetadata, result)
}

// writeResolution maps notFound to 404 and invalid to 400. The body is the
// full result either way.
func (h *Handler) writeResolution(w http.ResponseWriter, r *http.Request, meta models.ResolutionMetadata, result any) {
	status := http.StatusOK
	switch meta.Error {
	case models.ErrorNotFound:
		status = http.StatusNotFound
	case models.ErrorInvalid:
		status = http.StatusBadRequest
	}
	if meta.Failed() {
		h.logger.InfoContext(r.Context(), "resolution failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", meta.Error,
			"message", meta.Message,
		)
	}
	httputil.WriteJSON(w, status, result)
}

// Register bodies are decoded strictly: identifiers are computed over the
// modelled object, so a field the model drops would make the returned id
// disagree with the object the issuer publishes. Issuers publish the object
// echoed back in the registration state.
func (h *Handler) handleRegisterSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := httputil.DecodeStrictJSON[models.Schema](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.registry.RegisterSchema(r.Context(), models.RegisterSchemaOptions{Schema: *schema})
	h.writeRegistration(w, r, result, err)
}

func (h *Handler) handleRegisterCredentialDefinition(w http.ResponseWriter, r *http.Request) {
	credDef, err := httputil.DecodeStrictJSON[models.CredentialDefinition](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.registry.RegisterCredentialDefinition(r.Context(), models.RegisterCredentialDefinitionOptions{CredentialDefinition: *credDef})
	h.writeRegistration(w, r, result, err)
}

func (h *Handler) handleRegisterRevocationRegistryDefinition(w http.ResponseWriter, r *http.Request) {
	revRegDef, err := httputil.DecodeStrictJSON[models.RevocationRegistryDefinition](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.registry.RegisterRevocationRegistryDefinition(r.Context(), models.RegisterRevocationRegistryDefinitionOptions{RevocationRegistryDefinition: *revRegDef})
	h.writeRegistration(w, r, result, err)
}

func (h *Handler) handleRegisterRevocationStatusList(w http.ResponseWriter, r *http.Request) {
	list, err := httputil.DecodeStrictJSON[models.RevocationStatusList](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.registry.RegisterRevocationStatusList(r.Context(), models.RegisterRevocationStatusListOptions{RevocationStatusList: *list})
	h.writeRegistration(w, r, result, err)
}

func (h *Handler) writeRegistration(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err != nil {
		h.logger.WarnContext(r.Context(), "registration failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		code := dErrors.CodeUnavailable
		if failure.CategoryOf(err) == failure.Canonicalization {
			code = dErrors.CodeValidation
		}
		httputil.WriteError(w, dErrors.Wrap(err, code, err.Error()))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
