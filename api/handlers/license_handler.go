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
)

type LicenseAPI interface {
	List(ctx context.Context, q models.ListQuery) (*models.Page[models.License], error)
	Get(ctx context.Context, id string) (*models.License, error)
	Create(ctx context.Context, input *models.LicenseInput) (*models.License, error)
	Update(ctx context.Context, id string, input *models.LicenseInput) (*models.License, error)
	Delete(ctx context.Context, id string) error
}

// LicenseHandler exposes license administration.
type LicenseHandler struct {
	licenses LicenseAPI
	guard    *Guard
	logger   *zap.Logger
}

func NewLicenseHandler(licenses LicenseAPI, guard *Guard, logger *zap.Logger) *LicenseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LicenseHandler{licenses: licenses, guard: guard, logger: logger}
}

// RegisterRoutes wires the license routes.
func (h *LicenseHandler) RegisterRoutes(router *mux.Router) {
	router.Handle("/v1/licenses", h.guard.Protect(h.List)).
		Methods(http.MethodGet).Name("licenses.list")
	router.Handle("/v1/licenses", h.guard.Protect(h.Create)).
		Methods(http.MethodPost).Name("licenses.create")
	router.Handle("/v1/licenses/{license_id}", h.guard.Protect(h.Get)).
		Methods(http.MethodGet).Name("licenses.get")
	router.Handle("/v1/licenses/{license_id}", h.guard.Protect(h.Update)).
		Methods(http.MethodPut).Name("licenses.update")
	router.Handle("/v1/licenses/{license_id}", h.guard.Protect(h.Delete)).
		Methods(http.MethodDelete).Name("licenses.delete")
}

func (h *LicenseHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.Pagination(r)
	q := models.ListQuery{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}

	result, err := h.licenses.List(r.Context(), q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func (h *LicenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	license, err := h.licenses.Get(r.Context(), mux.Vars(r)["license_id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, license)
}

func (h *LicenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.LicenseInput
	if err := httputil.DecodeJSON(r.Body, &input); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}

	license, err := h.licenses.Create(r.Context(), &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusCreated, license, "License created")
}

func (h *LicenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.LicenseInput
	if err := httputil.DecodeJSON(r.Body, &input); err != nil {
		apperrors.BadRequest("Invalid request body").WriteHTTP(w)
		return
	}

	license, err := h.licenses.Update(r.Context(), mux.Vars(r)["license_id"], &input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, license, "License updated")
}

func (h *LicenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.licenses.Delete(r.Context(), mux.Vars(r)["license_id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, nil, "License deleted")
}
