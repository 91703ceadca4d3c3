package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lee-tech/workforce-admin/internal/events"
	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/repository"
)

type fakeLicenseRepo struct {
	items  map[string]*models.LicenseDTO
	nextID int
}

func newFakeLicenseRepo() *fakeLicenseRepo {
	return &fakeLicenseRepo{items: map[string]*models.LicenseDTO{}}
}

func (r *fakeLicenseRepo) List(_ context.Context, q models.ListQuery) (*models.Page[models.LicenseDTO], error) {
	page := &models.Page[models.LicenseDTO]{Page: q.Page, Limit: q.Limit}
	for _, item := range r.items {
		page.Items = append(page.Items, *item)
	}
	page.Total = int64(len(page.Items))
	return page, nil
}

func (r *fakeLicenseRepo) GetByID(_ context.Context, id string) (*models.LicenseDTO, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeLicenseRepo) Create(_ context.Context, license *models.LicenseDTO) (*models.LicenseDTO, error) {
	r.nextID++
	created := *license
	created.ID = models.FlexibleID(fmt.Sprintf("L%d", r.nextID))
	r.items[string(created.ID)] = &created
	return &created, nil
}

func (r *fakeLicenseRepo) Update(_ context.Context, id string, license *models.LicenseDTO) (*models.LicenseDTO, error) {
	if _, ok := r.items[id]; !ok {
		return nil, fmt.Errorf("license %s: %w", id, repository.ErrNotFound)
	}
	updated := *license
	r.items[id] = &updated
	return &updated, nil
}

func (r *fakeLicenseRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("license %s: %w", id, repository.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

type fakeUserRepo struct {
	items  map[string]*models.UserDTO
	nextID int
	lastQ  models.ListQuery
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: map[string]*models.UserDTO{}}
}

func (r *fakeUserRepo) List(_ context.Context, q models.ListQuery) (*models.Page[models.UserDTO], error) {
	r.lastQ = q
	page := &models.Page[models.UserDTO]{Page: q.Page, Limit: q.Limit}
	for _, item := range r.items {
		if q.LicenseID == "" || string(item.LicenseID) == q.LicenseID {
			page.Items = append(page.Items, *item)
		}
	}
	page.Total = int64(len(page.Items))
	return page, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.UserDTO, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.UserDTO) (*models.UserDTO, error) {
	r.nextID++
	created := *user
	created.ID = models.FlexibleID(fmt.Sprintf("U%d", r.nextID))
	created.Password = ""
	r.items[string(created.ID)] = &created
	return &created, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id string, user *models.UserDTO) (*models.UserDTO, error) {
	if _, ok := r.items[id]; !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	updated := *user
	updated.Password = ""
	r.items[id] = &updated
	return &updated, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

type fakeCatalogRepo struct {
	modules     []models.ModuleDTO
	roles       []models.RoleDTO
	moduleCalls int
	roleCalls   int
	nextID      int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		modules: []models.ModuleDTO{
			{ID: "1", Key: "licencias", Name: "Licencias", IsActive: true},
			{ID: "2", Key: "usuarios", Name: "Usuarios", IsActive: true},
			{ID: "3", Key: "roles", Name: "Roles", IsActive: true},
		},
		roles: []models.RoleDTO{
			{ID: "R1", Name: "Admin", Modules: []string{"licencias", "usuarios"}},
		},
	}
}

func (r *fakeCatalogRepo) ListModules(context.Context) ([]models.ModuleDTO, error) {
	r.moduleCalls++
	return append([]models.ModuleDTO(nil), r.modules...), nil
}

func (r *fakeCatalogRepo) ListRoles(context.Context) ([]models.RoleDTO, error) {
	r.roleCalls++
	return append([]models.RoleDTO(nil), r.roles...), nil
}

func (r *fakeCatalogRepo) CreateRole(_ context.Context, role *models.RoleDTO) (*models.RoleDTO, error) {
	r.nextID++
	created := *role
	created.ID = models.FlexibleID(fmt.Sprintf("R%d", 100+r.nextID))
	r.roles = append(r.roles, created)
	return &created, nil
}

func (r *fakeCatalogRepo) UpdateRole(_ context.Context, id string, role *models.RoleDTO) (*models.RoleDTO, error) {
	for i := range r.roles {
		if string(r.roles[i].ID) == id {
			r.roles[i] = *role
			updated := *role
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("role %s: %w", id, repository.ErrNotFound)
}

func (r *fakeCatalogRepo) DeleteRole(_ context.Context, id string) error {
	for i := range r.roles {
		if string(r.roles[i].ID) == id {
			r.roles = append(r.roles[:i], r.roles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("role %s: %w", id, repository.ErrNotFound)
}

type fakeStructureSource struct {
	trees map[string]*models.StructureTree
	calls int
	err   error
}

func (s *fakeStructureSource) GetTree(_ context.Context, licenseID string) (*models.StructureTree, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.trees[licenseID], nil
}

type fakeAuthenticator struct {
	payload *models.UpstreamLoginDTO
	err     error
}

func (a *fakeAuthenticator) Login(context.Context, *models.LoginRequest) (*models.UpstreamLoginDTO, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.payload, nil
}

type fakeSessionRepo struct {
	mu    sync.Mutex
	items map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{items: map[string]*models.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.items[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeSessionRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, item := range r.items {
		if item.Expired(now) {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type recordingRevoker struct {
	revoked []string
	err     error
}

func (r *recordingRevoker) RevokeUser(_ context.Context, userID string) (int64, error) {
	r.revoked = append(r.revoked, userID)
	return 1, r.err
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) names() []string {
	names := make([]string, 0, len(p.events))
	for _, event := range p.events {
		names = append(names, event.Name())
	}
	return names
}

// acmeTree is a license with one company, one branch and one department.
const acmeTree = `{
	"license_id": "L1",
	"name": "Acme",
	"companies": [
		{"comp_iden": "C1", "name": "Acme SA", "status": true, "branches": [
			{"branch_id": "B1", "name": "Lima", "status": true, "departments": [
				{"dept_id": "D1", "name": "Ops", "status": true, "sections": []}
			]}
		]}
	]
}`

func decodeTree(t *testing.T, raw string) *models.StructureTree {
	t.Helper()
	var dto models.StructureTreeDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))
	return dto.ToTree()
}
