package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"didweb-anoncreds/internal/hosting/models"
	"didweb-anoncreds/internal/platform/middleware"
	dErrors "didweb-anoncreds/pkg/domain-errors"
	"didweb-anoncreds/pkg/platform/httputil"
	"didweb-anoncreds/pkg/requestcontext"
)

// Service defines the publishing operations the handler serves.
type Service interface {
	PublishResource(ctx context.Context, kind models.Kind, resourceID string, req *models.PublishRequest) (*models.Resource, error)
	GetResource(ctx context.Context, kind models.Kind, resourceID string) (*models.Resource, error)
	PublishStatusList(ctx context.Context, revRegDefResourceID string, timestamp int64, req *models.PublishRequest) (*models.StatusList, error)
	GetStatusList(ctx context.Context, revRegDefResourceID string, atOrBefore int64) (*models.StatusList, error)
	ListStatusListTimestamps(ctx context.Context, revRegDefResourceID string) (*models.StatusListTimestamps, error)
}

// Handler serves resource envelopes and accepts authenticated publishes.
type Handler struct {
	logger       *slog.Logger
	service      Service
	jwtValidator middleware.JWTValidator
	now          func() time.Time
}

func New(service Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		jwtValidator: jwtValidator,
		now:          time.Now,
	}
}

// Register mounts the resource routes on r.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime(h.now))
	router.Use(middleware.Logger(h.logger))

	router.Get("/revStatus/{revRegDefResourceId}", h.handleListStatusLists)
	router.Get("/revStatus/{revRegDefResourceId}/{timestamp}", h.handleGetStatusList)
	router.Get("/{kind}/{resourceId}", h.handleGetResource)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		protected.Put("/revStatus/{revRegDefResourceId}/{timestamp}", h.handlePublishStatusList)
		protected.Put("/{kind}/{resourceId}", h.handlePublishResource)
	})

	r.Mount("/", router)
}

func (h *Handler) handleGetResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := models.Kind(chi.URLParam(r, "kind"))
	resourceID := chi.URLParam(r, "resourceId")

	resource, err := h.service.GetResource(ctx, kind, resourceID)
	if err != nil {
		h.writeError(ctx, w, "failed to get resource", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resource.Envelope)
}

func (h *Handler) handlePublishResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := models.Kind(chi.URLParam(r, "kind"))
	resourceID := chi.URLParam(r, "resourceId")

	req, err := httputil.DecodeJSON[models.PublishRequest](r)
	if err != nil {
		h.writeError(ctx, w, "invalid publish request", err)
		return
	}
	resource, err := h.service.PublishResource(ctx, kind, resourceID, req)
	if err != nil {
		h.writeError(ctx, w, "failed to publish resource", err)
		return
	}
	h.logger.InfoContext(ctx, "resource published",
		"request_id", requestcontext.RequestID(ctx),
		"kind", string(kind),
		"resource_id", resourceID,
		"issuer_id", resource.IssuerID,
	)
	httputil.WriteJSON(w, http.StatusCreated, resource.Envelope)
}

func (h *Handler) handleGetStatusList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	revRegDefID := chi.URLParam(r, "revRegDefResourceId")
	timestamp, err := parseTimestamp(chi.URLParam(r, "timestamp"))
	if err != nil {
		h.writeError(ctx, w, "invalid status list request", err)
		return
	}

	list, err := h.service.GetStatusList(ctx, revRegDefID, timestamp)
	if err != nil {
		h.writeError(ctx, w, "failed to get status list", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list.Envelope)
}

func (h *Handler) handlePublishStatusList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	revRegDefID := chi.URLParam(r, "revRegDefResourceId")
	timestamp, err := parseTimestamp(chi.URLParam(r, "timestamp"))
	if err != nil {
		h.writeError(ctx, w, "invalid status list request", err)
		return
	}

	req, err := httputil.DecodeJSON[models.PublishRequest](r)
	if err != nil {
		h.writeError(ctx, w, "invalid status list request", err)
		return
	}
	list, err := h.service.PublishStatusList(ctx, revRegDefID, timestamp, req)
	if err != nil {
		h.writeError(ctx, w, "failed to publish status list", err)
		return
	}
	h.logger.InfoContext(ctx, "status list published",
		"request_id", requestcontext.RequestID(ctx),
		"rev_reg_def_id", revRegDefID,
		"timestamp", timestamp,
	)
	httputil.WriteJSON(w, http.StatusCreated, list.Envelope)
}

func (h *Handler) handleListStatusLists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versions, err := h.service.ListStatusListTimestamps(ctx, chi.URLParam(r, "revRegDefResourceId"))
	if err != nil {
		h.writeError(ctx, w, "failed to list status lists", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, versions)
}

func parseTimestamp(raw string) (int64, error) {
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "timestamp must be an integer unix time")
	}
	return ts, nil
}

// writeError logs at warn for client errors and at error for the rest.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code := dErrors.CodeOf(err)
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"code", string(code),
		"error", err.Error(),
	}
	if dErrors.ToHTTPStatus(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
