package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/apperrors"
	"github.com/lee-tech/workforce-admin/internal/httputil"
	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/structure"
)

type StructureAPI interface {
	Tree(ctx context.Context, licenseID string) (*models.StructureTree, error)
	AvailableTypes(ctx context.Context, licenseID string) ([]models.Level, error)
	Options(ctx context.Context, licenseID, level string) ([]structure.Option, error)
	Selector(ctx context.Context, licenseID string, req *models.SelectorRequest) (*structure.SelectorState, error)
}

// StructureHandler serves a license's organizational structure and the
// state of the structure selector.
type StructureHandler struct {
	structures StructureAPI
	guard      *Guard
	logger     *zap.Logger
}

func NewStructureHandler(structures StructureAPI, guard *Guard, logger *zap.Logger) *StructureHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructureHandler{structures: structures, guard: guard, logger: logger}
}

func (h *StructureHandler) RegisterRoutes(router *mux.Router) {
	router.Handle("/v1/licenses/{license_id}/structure", h.guard.Protect(h.Tree)).
		Methods(http.MethodGet).Name("structure.tree")
	router.Handle("/v1/licenses/{license_id}/structure/types", h.guard.Protect(h.Types)).
		Methods(http.MethodGet).Name("structure.types")
	router.Handle("/v1/licenses/{license_id}/structure/options", h.guard.Protect(h.Options)).
		Methods(http.MethodGet).Name("structure.options")
	router.Handle("/v1/licenses/{license_id}/structure/selector", h.guard.Protect(h.Selector)).
		Methods(http.MethodPost).Name("structure.selector")
}

// Tree returns the license's tree; a license without one yields null.
func (h *StructureHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.structures.Tree(r.Context(), mux.Vars(r)["license_id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

func (h *StructureHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.structures.AvailableTypes(r.Context(), mux.Vars(r)["license_id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, types)
}

// Options lists the nodes selectable at the level given by ?type=.
func (h *StructureHandler) Options(w http.ResponseWriter, r *http.Request) {
	options, err := h.structures.Options(r.Context(), mux.Vars(r)["license_id"], r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, options)
}

// Selector reconciles the selector state the dashboard holds with the
// current tree.
func (h *StructureHandler) Selector(w http.ResponseWriter, r *http.Request) {
	var req models.SelectorRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}

	state, err := h.structures.Selector(r.Context(), mux.Vars(r)["license_id"], &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}
