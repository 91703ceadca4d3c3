package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/service"
	"github.com/lee-tech/workforce-admin/internal/structure"
	"github.com/lee-tech/workforce-admin/internal/upstream"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

type stubResolver map[string]*service.Principal

func (s stubResolver) Resolve(_ context.Context, token string) (*service.Principal, error) {
	if principal, ok := s[token]; ok {
		return principal, nil
	}
	if token == "expired" {
		return nil, service.ErrSessionExpired
	}
	return nil, service.ErrInvalidToken
}

type stubLicenses struct {
	list   func(models.ListQuery) (*models.Page[models.License], error)
	create func(*models.LicenseInput) (*models.License, error)
	err    error
}

func (s *stubLicenses) List(_ context.Context, q models.ListQuery) (*models.Page[models.License], error) {
	if s.list != nil {
		return s.list(q)
	}
	return &models.Page[models.License]{Items: []models.License{}}, s.err
}

func (s *stubLicenses) Get(_ context.Context, id string) (*models.License, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.License{ID: id}, nil
}

func (s *stubLicenses) Create(_ context.Context, input *models.LicenseInput) (*models.License, error) {
	if s.create != nil {
		return s.create(input)
	}
	return nil, s.err
}

func (s *stubLicenses) Update(_ context.Context, id string, _ *models.LicenseInput) (*models.License, error) {
	return &models.License{ID: id}, s.err
}

func (s *stubLicenses) Delete(context.Context, string) error { return s.err }

type stubUsers struct {
	licenseID string
	err       error
}

func (s *stubUsers) List(_ context.Context, licenseID string, _ models.ListQuery) (*models.Page[models.User], error) {
	s.licenseID = licenseID
	return &models.Page[models.User]{Items: []models.User{}}, s.err
}

func (s *stubUsers) Get(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Structure: models.Deferred{}}, s.err
}

func (s *stubUsers) Create(_ context.Context, licenseID string, _ *models.UserInput) (*models.User, error) {
	s.licenseID = licenseID
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: "U1", LicenseID: licenseID, Structure: models.Assigned{Type: models.LevelSede, ID: "B1"}}, nil
}

func (s *stubUsers) Update(_ context.Context, id string, _ *models.UserInput) (*models.User, error) {
	return &models.User{ID: id, Structure: models.Deferred{}}, s.err
}

func (s *stubUsers) Delete(context.Context, string) error { return s.err }

func (s *stubUsers) StructureSelector(_ context.Context, id string) (*structure.SelectorState, error) {
	if s.err != nil {
		return nil, s.err
	}
	selected := structure.Option{ID: "B1", Name: "Lima", Type: models.LevelSede}
	return &structure.SelectorState{
		AvailableTypes: []models.Level{models.LevelCompany, models.LevelSede},
		Selection:      models.SelectionDraft{Type: models.LevelSede, ID: "B1"},
		Options:        []structure.Option{selected},
		Selected:       &selected,
	}, nil
}

type stubCatalog struct {
	cleared bool
}

func (s *stubCatalog) Modules(context.Context) ([]models.Module, error) {
	return []models.Module{{ID: "1", Key: "licencias"}}, nil
}

func (s *stubCatalog) Roles(context.Context) ([]models.Role, error) {
	return []models.Role{{ID: "R1", Name: "Admin", Modules: []string{}}}, nil
}

func (s *stubCatalog) Role(_ context.Context, id string) (*models.Role, error) {
	if id != "R1" {
		return nil, service.ErrRoleNotFound
	}
	return &models.Role{ID: "R1", Name: "Admin", Modules: []string{}}, nil
}

func (s *stubCatalog) CreateRole(context.Context, *models.RoleInput) (*models.Role, error) {
	return &models.Role{ID: "R2"}, nil
}

func (s *stubCatalog) UpdateRole(_ context.Context, id string, _ *models.RoleInput) (*models.Role, error) {
	return &models.Role{ID: id}, nil
}

func (s *stubCatalog) DeleteRole(context.Context, string) error { return nil }

func (s *stubCatalog) ClearCache(context.Context) error {
	s.cleared = true
	return nil
}

type stubStructures struct{}

func (stubStructures) Tree(_ context.Context, licenseID string) (*models.StructureTree, error) {
	if licenseID == "L0" {
		return nil, nil
	}
	return &models.StructureTree{LicenseID: licenseID, Name: "Acme", Companies: []models.OrganizationalNode{}}, nil
}

func (stubStructures) AvailableTypes(context.Context, string) ([]models.Level, error) {
	return []models.Level{models.LevelCompany, models.LevelSede}, nil
}

func (stubStructures) Options(_ context.Context, _ string, level string) ([]structure.Option, error) {
	if level != "sede" {
		return nil, validation.FieldErrors{"type": "unknown structure level"}
	}
	return []structure.Option{{ID: "B1", Name: "Lima", Type: models.LevelSede}}, nil
}

func (stubStructures) Selector(_ context.Context, _ string, req *models.SelectorRequest) (*structure.SelectorState, error) {
	return &structure.SelectorState{
		AvailableTypes: []models.Level{models.LevelCompany},
		Selection:      models.SelectionDraft{},
		Options:        []structure.Option{},
		Cleared:        req.ID != "",
	}, nil
}

type stubSessions struct {
	loggedOut string
}

func (s *stubSessions) Login(_ context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "pw" {
		return nil, service.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "token", TokenType: "Bearer", ExpiresIn: 60}, nil
}

func (s *stubSessions) Logout(_ context.Context, sessionID string) error {
	s.loggedOut = sessionID
	return nil
}

func (s *stubSessions) Current(_ context.Context, principal *service.Principal) (*models.SessionInfo, error) {
	return &models.SessionInfo{UserID: principal.UserID, Permissions: principal.Permissions.Granted()}, nil
}

func (s *stubSessions) Menu(perms models.PermissionMap) []models.MenuNode {
	nodes := []models.MenuNode{{ID: "dashboard", ModulePermission: "always_visible"}}
	if perms.Allows("licencias") {
		nodes = append(nodes, models.MenuNode{ID: "licenses", ModulePermission: "licencias"})
	}
	return nodes
}

func (s *stubSessions) Introspect(_ context.Context, token string) *models.IntrospectionResponse {
	if token == "reader" {
		return &models.IntrospectionResponse{Active: true, Sub: "7"}
	}
	return &models.IntrospectionResponse{Active: false}
}

type fixture struct {
	router   *mux.Router
	licenses *stubLicenses
	users    *stubUsers
	catalog  *stubCatalog
	sessions *stubSessions
}

func newFixture(checks map[string]HealthCheck) *fixture {
	resolver := stubResolver{
		"reader": {SessionID: "s-1", UserID: "7", Permissions: models.PermissionMap{"licencias": true, "usuarios": true}},
		"admin":  {SessionID: "s-2", UserID: "1", IsSuperAdmin: true, Permissions: models.PermissionMap{}},
		"nobody": {SessionID: "s-3", UserID: "9", Permissions: models.PermissionMap{}},
	}
	guard := NewGuard(resolver, nil, nil)

	f := &fixture{
		router:   mux.NewRouter(),
		licenses: &stubLicenses{},
		users:    &stubUsers{},
		catalog:  &stubCatalog{},
		sessions: &stubSessions{},
	}
	NewHealthHandler("workforce-admin", "test", checks).RegisterRoutes(f.router)
	NewSessionHandler(f.sessions, guard, nil).RegisterRoutes(f.router)
	NewTokenIntrospectionHandler(f.sessions, nil).RegisterRoutes(f.router)
	NewLicenseHandler(f.licenses, guard, nil).RegisterRoutes(f.router)
	NewUserHandler(f.users, guard, nil).RegisterRoutes(f.router)
	NewCatalogHandler(f.catalog, guard, nil).RegisterRoutes(f.router)
	NewStructureHandler(stubStructures{}, guard, nil).RegisterRoutes(f.router)
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type responseBody struct {
	StatusCode int               `json:"statusCode"`
	Data       json.RawMessage   `json:"data"`
	Message    string            `json:"message"`
	Error      string            `json:"error"`
	Fields     map[string]string `json:"fields"`
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) responseBody {
	t.Helper()
	var body responseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestGuard_Authentication(t *testing.T) {
	f := newFixture(nil)

	rec := f.do(t, http.MethodGet, "/v1/licenses", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Missing bearer token", decodeBody(t, rec).Message)

	rec = f.do(t, http.MethodGet, "/v1/licenses", "forged", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/licenses", "expired", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Session expired", decodeBody(t, rec).Message)
}

func TestGuard_RoutePermissions(t *testing.T) {
	f := newFixture(nil)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"read grant lists licenses", http.MethodGet, "/v1/licenses", "reader", nil, http.StatusOK},
		{"read grant cannot delete licenses", http.MethodDelete, "/v1/licenses/L1", "reader", nil, http.StatusForbidden},
		{"users under a license", http.MethodGet, "/v1/licenses/L1/users", "reader", nil, http.StatusOK},
		{"structure readable with users grant", http.MethodGet, "/v1/licenses/L1/structure", "reader", nil, http.StatusOK},
		{"no grant cannot list", http.MethodGet, "/v1/licenses", "nobody", nil, http.StatusForbidden},
		{"session routes need only a session", http.MethodGet, "/v1/session/me", "nobody", nil, http.StatusOK},
		{"cache clearing needs system config", http.MethodDelete, "/v1/catalog/cache", "reader", nil, http.StatusForbidden},
		{"super admin passes everything", http.MethodDelete, "/v1/catalog/cache", "admin", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.token, tt.body)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
	require.True(t, f.catalog.cleared)
}

func TestRoutePermissionResolver_Overrides(t *testing.T) {
	resolver := NewRoutePermissionResolver(WithPermissionOverrides(map[string][]string{
		"licenses.list": {"reportes"},
	}))

	var got []string
	router := mux.NewRouter()
	router.HandleFunc("/v1/licenses", func(w http.ResponseWriter, r *http.Request) {
		keys, err := resolver(r)
		require.NoError(t, err)
		got = keys
	}).Name("licenses.list")
	router.HandleFunc("/v1/licenses/{license_id}/structure/types", func(w http.ResponseWriter, r *http.Request) {
		keys, err := resolver(r)
		require.NoError(t, err)
		got = keys
	})
	router.HandleFunc("/v1/payroll", func(w http.ResponseWriter, r *http.Request) {
		_, err := resolver(r)
		require.Error(t, err)
		got = nil
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/licenses", nil))
	require.Equal(t, []string{"reportes"}, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/licenses/L1/structure/types", nil))
	require.Equal(t, []string{"estructura", "usuarios", "gestion_usuarios"}, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/payroll", nil))
	require.Nil(t, got)
}

func TestTokeniseSegments(t *testing.T) {
	require.Equal(t, []string{"licenses", "users"}, tokeniseSegments(trimBasePath("/v1/licenses/{license_id}/users", "/v1")))
	require.Equal(t, []string{"system_config"}, tokeniseSegments(trimBasePath("/v1/system-config/", "/v1")))
	require.Equal(t, []string{"v10", "x"}, tokeniseSegments(trimBasePath("/v10/x", "/v1")))
	require.Empty(t, tokeniseSegments(trimBasePath("/v1", "/v1")))
}

func TestLicenseHandler_ValidationErrorsAreInline(t *testing.T) {
	f := newFixture(nil)
	f.licenses.create = func(*models.LicenseInput) (*models.License, error) {
		return nil, validation.FieldErrors{"companyName": "is required"}
	}

	rec := f.do(t, http.MethodPost, "/v1/licenses", "admin", map[string]any{"companyName": ""})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "validation_error", body.Error)
	require.Equal(t, map[string]string{"companyName": "is required"}, body.Fields)
}

func TestLicenseHandler_CreateRespondsCreated(t *testing.T) {
	f := newFixture(nil)
	f.licenses.create = func(input *models.LicenseInput) (*models.License, error) {
		return &models.License{ID: "L9", CompanyName: input.CompanyName}, nil
	}

	rec := f.do(t, http.MethodPost, "/v1/licenses", "admin", map[string]any{"companyName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "License created", body.Message)
	require.JSONEq(t, `{"id":"L9","companyName":"Acme","taxId":"","plan":"","maxUsers":0,"status":"","startsAt":"","expiresAt":"","contactEmail":""}`, string(body.Data))
}

func TestLicenseHandler_RejectsMalformedBody(t *testing.T) {
	f := newFixture(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/licenses", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer admin")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLicenseHandler_PaginationIsForwarded(t *testing.T) {
	f := newFixture(nil)
	var seen models.ListQuery
	f.licenses.list = func(q models.ListQuery) (*models.Page[models.License], error) {
		seen = q
		return &models.Page[models.License]{Items: []models.License{}, Page: q.Page, Limit: q.Limit}, nil
	}

	rec := f.do(t, http.MethodGet, "/v1/licenses?page=3&page_size=500&search=%20acme%20", "reader", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.ListQuery{Page: 3, Limit: 100, Search: "acme"}, seen)
}

func TestErrors_PlatformFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unreachable", &upstream.APIError{Status: 0, Message: "request failed", Err: errors.New("dial tcp")}, http.StatusBadGateway, "The platform API could not be reached"},
		{"server error", &upstream.APIError{Status: 500, Message: "database down"}, http.StatusBadGateway, "database down"},
		{"rejected", &upstream.APIError{Status: 422, Message: "email taken"}, http.StatusUnprocessableEntity, "email taken"},
		{"conflict", &upstream.APIError{Status: 409, Message: "duplicate tax id"}, http.StatusConflict, "duplicate tax id"},
		{"missing", &upstream.APIError{Status: 404, Message: "no such license"}, http.StatusNotFound, "no such license"},
		{"license not found", service.ErrLicenseNotFound, http.StatusNotFound, "license not found"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			f.licenses.err = tt.err

			rec := f.do(t, http.MethodGet, "/v1/licenses/L1", "reader", nil)
			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.message, decodeBody(t, rec).Message)
		})
	}
}

func TestUserHandler_CreateUnderLicense(t *testing.T) {
	f := newFixture(nil)

	rec := f.do(t, http.MethodPost, "/v1/licenses/L7/users", "admin", map[string]any{"firstName": "Ana"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "L7", f.users.licenseID)
	require.Contains(t, string(decodeBody(t, rec).Data), `"structure":{"kind":"assigned","type":"sede","id":"B1"}`)
}

func TestUserHandler_NotFound(t *testing.T) {
	f := newFixture(nil)
	f.users.err = service.ErrUserNotFound

	rec := f.do(t, http.MethodDelete, "/v1/users/U9", "admin", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decodeBody(t, rec).Error)
}

func TestUserHandler_StructureSelector(t *testing.T) {
	f := newFixture(nil)

	rec := f.do(t, http.MethodGet, "/v1/users/U1/structure", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(decodeBody(t, rec).Data), `"selected":{"id":"B1","name":"Lima","type":"sede"}`)

	f.users.err = service.ErrUserNotFound
	rec = f.do(t, http.MethodGet, "/v1/users/U9/structure", "admin", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogHandler_RoleNotFound(t *testing.T) {
	f := newFixture(nil)

	rec := f.do(t, http.MethodGet, "/v1/catalog/roles/R9", "admin", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "role not found", decodeBody(t, rec).Message)
}

func TestStructureHandler(t *testing.T) {
	f := newFixture(nil)

	rec := f.do(t, http.MethodGet, "/v1/licenses/L0/structure", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "null", string(decodeBody(t, rec).Data))

	rec = f.do(t, http.MethodGet, "/v1/licenses/L1/structure/options?type=sede", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"id":"B1","name":"Lima","type":"sede"}]`, string(decodeBody(t, rec).Data))

	rec = f.do(t, http.MethodGet, "/v1/licenses/L1/structure/options?type=galaxy", "admin", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/licenses/L1/structure/selector", "admin", map[string]string{"type": "unit", "id": "U1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(decodeBody(t, rec).Data), `"cleared":true`)
}

func TestSessionHandler_Login(t *testing.T) {
	f := newFixture(nil)

	rec := f.do(t, http.MethodPost, "/v1/session/login", "", map[string]string{"username": "ana", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(decodeBody(t, rec).Data), `"accessToken":"token"`)

	rec = f.do(t, http.MethodPost, "/v1/session/login", "", map[string]string{"username": "ana", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid username or password", decodeBody(t, rec).Message)
}

func TestSessionHandler_MenuAndLogout(t *testing.T) {
	f := newFixture(nil)

	rec := f.do(t, http.MethodGet, "/v1/session/menu", "reader", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var menu []models.MenuNode
	require.NoError(t, json.Unmarshal(decodeBody(t, rec).Data, &menu))
	require.Len(t, menu, 2)

	rec = f.do(t, http.MethodPost, "/v1/session/logout", "reader", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "s-1", f.sessions.loggedOut)
}

func TestTokenIntrospection(t *testing.T) {
	f := newFixture(nil)

	rec := f.do(t, http.MethodPost, "/v1/session/introspect", "", map[string]string{"token": "reader"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"active":true,"sub":"7"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/v1/session/introspect", "", map[string]string{"token": "stale"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"active":false}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/v1/session/introspect", "", map[string]string{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// brokenWriter accepts the status line but fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
	headerWrites int
}

func (w *brokenWriter) WriteHeader(status int) {
	w.headerWrites++
	w.ResponseRecorder.WriteHeader(status)
}

func (w *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestTokenIntrospection_WriteFailureIsLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewTokenIntrospectionHandler(&stubSessions{}, zap.New(core))

	w := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodPost, "/v1/session/introspect", bytes.NewBufferString(`{"token":"reader"}`))
	h.Introspect(w, req)

	require.Equal(t, 1, w.headerWrites)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, logs.FilterMessage("failed to write introspection response").Len())
}

func TestHealthHandler(t *testing.T) {
	f := newFixture(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	rec := f.do(t, http.MethodGet, "/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(decodeBody(t, rec).Data), `"status":"healthy"`)

	f = newFixture(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	rec = f.do(t, http.MethodGet, "/v1/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, string(decodeBody(t, rec).Data), `"redis":"connection refused"`)
}
