package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/apperrors"
	"github.com/lee-tech/workforce-admin/internal/httputil"
	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/structure"
)

type UserAPI interface {
	List(ctx context.Context, licenseID string, q models.ListQuery) (*models.Page[models.User], error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, licenseID string, input *models.UserInput) (*models.User, error)
	Update(ctx context.Context, id string, input *models.UserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
	StructureSelector(ctx context.Context, id string) (*structure.SelectorState, error)
}

// UserHandler exposes the users of a license. Users are listed and created
// under their license and addressed directly afterwards.
type UserHandler struct {
	users  UserAPI
	guard  *Guard
	logger *zap.Logger
}

func NewUserHandler(users UserAPI, guard *Guard, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{users: users, guard: guard, logger: logger}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.Handle("/v1/licenses/{license_id}/users", h.guard.Protect(h.List)).
		Methods(http.MethodGet).Name("users.list")
	router.Handle("/v1/licenses/{license_id}/users", h.guard.Protect(h.Create)).
		Methods(http.MethodPost).Name("users.create")
	router.Handle("/v1/users/{user_id}", h.guard.Protect(h.Get)).
		Methods(http.MethodGet).Name("users.get")
	router.Handle("/v1/users/{user_id}", h.guard.Protect(h.Update)).
		Methods(http.MethodPut).Name("users.update")
	router.Handle("/v1/users/{user_id}", h.guard.Protect(h.Delete)).
		Methods(http.MethodDelete).Name("users.delete")
	router.Handle("/v1/users/{user_id}/structure", h.guard.Protect(h.StructureSelector)).
		Methods(http.MethodGet).Name("users.structure")
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.Pagination(r)
	q := models.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}

	result, err := h.users.List(r.Context(), mux.Vars(r)["license_id"], q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.UserInput
	if err := httputil.DecodeJSON(r.Body, &input); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}

	user, err := h.users.Create(r.Context(), mux.Vars(r)["license_id"], &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusCreated, user, "User created")
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.UserInput
	if err := httputil.DecodeJSON(r.Body, &input); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}

	user, err := h.users.Update(r.Context(), mux.Vars(r)["user_id"], &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, user, "User updated")
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), mux.Vars(r)["user_id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, nil, "User deleted")
}

// StructureSelector returns the edit form's selector, seeded from the user's
// current placement.
func (h *UserHandler) StructureSelector(w http.ResponseWriter, r *http.Request) {
	state, err := h.users.StructureSelector(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}
