package examples

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/pkg/handlers"
	"github.com/JaimeStill/loadextract/pkg/routes"
)

const defaultListLimit = 50

// Handler provides HTTP endpoints for submitting and listing learning examples.
type Handler struct {
	sys         System
	logger      *slog.Logger
	maxBodySize int64
}

// NewHandler creates a Handler with the given system, logger, and body size limit.
func NewHandler(sys System, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "examples"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for example endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/examples",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
		},
	}
}

// List returns the most recent examples for the tenant_id query parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingTenant)
		return
	}

	limit := defaultListLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	result, err := h.sys.Recent(r.Context(), tenantID, limit)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if result == nil {
		result = []Example{}
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create accepts a corrected draft and stores it as a learning example.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[CreateCommand](w, r, h.maxBodySize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	ex, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, ex)
}
