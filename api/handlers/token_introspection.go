package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/apperrors"
	"github.com/lee-tech/workforce-admin/internal/httputil"
	"github.com/lee-tech/workforce-admin/internal/models"
)

// Introspector reports whether a session token is active.
type Introspector interface {
	Introspect(ctx context.Context, token string) *models.IntrospectionResponse
}

// TokenIntrospectionHandler handles token introspection requests
type TokenIntrospectionHandler struct {
	introspector Introspector
	logger       *zap.Logger
}

func NewTokenIntrospectionHandler(introspector Introspector, logger *zap.Logger) *TokenIntrospectionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenIntrospectionHandler{introspector: introspector, logger: logger}
}

// RegisterRoutes registers token introspection routes
func (h *TokenIntrospectionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/session/introspect", h.Introspect).
		Methods(http.MethodPost).Name("session.introspect")
}

// Introspect validates a token and returns its metadata. Unusable tokens are
// reported as inactive with a 200, never as an error.
func (h *TokenIntrospectionHandler) Introspect(w http.ResponseWriter, r *http.Request) {
	var req models.IntrospectionRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		apperrors.ValidationError("Token is required").
			WithFields(map[string]string{"token": "is required"}).
			WriteHTTP(w)
		return
	}

	h.writeResponse(w, h.introspector.Introspect(r.Context(), req.Token))
}

// writeResponse writes the bare introspection document. The status line is
// already on the wire when encoding fails, so the failure is only logged.
func (h *TokenIntrospectionHandler) writeResponse(w http.ResponseWriter, resp *models.IntrospectionResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("failed to write introspection response", zap.Error(err))
	}
}
