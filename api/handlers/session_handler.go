package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/apperrors"
	"github.com/lee-tech/workforce-admin/internal/httputil"
	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/service"
)

// SessionAPI is the session behaviour the handler needs.
type SessionAPI interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Current(ctx context.Context, principal *service.Principal) (*models.SessionInfo, error)
	Menu(perms models.PermissionMap) []models.MenuNode
}

// SessionHandler handles dashboard login, logout and the session views.
type SessionHandler struct {
	sessions SessionAPI
	guard    *Guard
	logger   *zap.Logger
}

func NewSessionHandler(sessions SessionAPI, guard *Guard, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{sessions: sessions, guard: guard, logger: logger}
}

// RegisterRoutes registers the session routes.
func (h *SessionHandler) RegisterRoutes(router *mux.Router) {
	// Public
	router.HandleFunc("/v1/session/login", h.Login).
		Methods(http.MethodPost).Name("session.login")

	// Authenticated
	router.Handle("/v1/session/logout", h.guard.Protect(h.Logout)).
		Methods(http.MethodPost).Name("session.logout")
	router.Handle("/v1/session/me", h.guard.Protect(h.Me)).
		Methods(http.MethodGet).Name("session.me")
	router.Handle("/v1/session/menu", h.guard.Protect(h.Menu)).
		Methods(http.MethodGet).Name("session.menu")
}

// Login authenticates against the platform and opens a session.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}

	response, err := h.sessions.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, response)
}

// Logout discards the caller's session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := service.PrincipalFrom(r.Context())
	if !ok {
		apperrors.Unauthorized("Authentication required").WriteHTTP(w)
		return
	}

	if err := h.sessions.Logout(r.Context(), principal.SessionID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, nil, "Logged out")
}

// Me returns the caller's session.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := service.PrincipalFrom(r.Context())
	if !ok {
		apperrors.Unauthorized("Authentication required").WriteHTTP(w)
		return
	}

	info, err := h.sessions.Current(r.Context(), principal)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, info)
}

// Menu returns the navigation menu filtered by the caller's permissions.
func (h *SessionHandler) Menu(w http.ResponseWriter, r *http.Request) {
	principal, ok := service.PrincipalFrom(r.Context())
	if !ok {
		apperrors.Unauthorized("Authentication required").WriteHTTP(w)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, h.sessions.Menu(principal.Permissions))
}
