package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/apperrors"
	"github.com/lee-tech/workforce-admin/internal/httputil"
	"github.com/lee-tech/workforce-admin/internal/models"
)

type CatalogAPI interface {
	Modules(ctx context.Context) ([]models.Module, error)
	Roles(ctx context.Context) ([]models.Role, error)
	Role(ctx context.Context, id string) (*models.Role, error)
	CreateRole(ctx context.Context, input *models.RoleInput) (*models.Role, error)
	UpdateRole(ctx context.Context, id string, input *models.RoleInput) (*models.Role, error)
	DeleteRole(ctx context.Context, id string) error
	ClearCache(ctx context.Context) error
}

// CatalogHandler exposes the module and role catalogs.
type CatalogHandler struct {
	catalog CatalogAPI
	guard   *Guard
	logger  *zap.Logger
}

func NewCatalogHandler(catalog CatalogAPI, guard *Guard, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{catalog: catalog, guard: guard, logger: logger}
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.Handle("/v1/catalog/modules", h.guard.Protect(h.ListModules)).
		Methods(http.MethodGet).Name("catalog.modules")
	router.Handle("/v1/catalog/roles", h.guard.Protect(h.ListRoles)).
		Methods(http.MethodGet).Name("catalog.roles.list")
	router.Handle("/v1/catalog/roles", h.guard.Protect(h.CreateRole)).
		Methods(http.MethodPost).Name("catalog.roles.create")
	router.Handle("/v1/catalog/roles/{role_id}", h.guard.Protect(h.GetRole)).
		Methods(http.MethodGet).Name("catalog.roles.get")
	router.Handle("/v1/catalog/roles/{role_id}", h.guard.Protect(h.UpdateRole)).
		Methods(http.MethodPut).Name("catalog.roles.update")
	router.Handle("/v1/catalog/roles/{role_id}", h.guard.Protect(h.DeleteRole)).
		Methods(http.MethodDelete).Name("catalog.roles.delete")
	router.Handle("/v1/catalog/cache", h.guard.Protect(h.ClearCache)).
		Methods(http.MethodDelete).Name("catalog.cache.clear")
}

func (h *CatalogHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.catalog.Modules(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, modules)
}

func (h *CatalogHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.catalog.Roles(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, roles)
}

func (h *CatalogHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.catalog.Role(r.Context(), mux.Vars(r)["role_id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, role)
}

func (h *CatalogHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var input models.RoleInput
	if err := httputil.DecodeJSON(r.Body, &input); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}

	role, err := h.catalog.CreateRole(r.Context(), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusCreated, role, "Role created")
}

func (h *CatalogHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var input models.RoleInput
	if err := httputil.DecodeJSON(r.Body, &input); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}

	role, err := h.catalog.UpdateRole(r.Context(), mux.Vars(r)["role_id"], &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, role, "Role updated")
}

func (h *CatalogHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteRole(r.Context(), mux.Vars(r)["role_id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, nil, "Role deleted")
}

// ClearCache drops the cached module and role catalogs.
func (h *CatalogHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.ClearCache(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, nil, "Catalog cache cleared")
}
