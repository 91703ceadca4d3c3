package repository

import (
	"context"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/upstream"
)

// CatalogRepository reads platform modules and manages roles.
type CatalogRepository struct {
	client *upstream.Client
}

func NewCatalogRepository(client *upstream.Client) *CatalogRepository {
	return &CatalogRepository{client: client}
}

func (r *CatalogRepository) ListModules(ctx context.Context) ([]models.ModuleDTO, error) {
	var page pageDTO[models.ModuleDTO]
	if err := r.client.Get(ctx, "/modules", nil, &page); err != nil {
		return nil, err
	}
	return page.toPage(models.ListQuery{}).Items, nil
}

func (r *CatalogRepository) ListRoles(ctx context.Context) ([]models.RoleDTO, error) {
	var page pageDTO[models.RoleDTO]
	if err := r.client.Get(ctx, "/roles", nil, &page); err != nil {
		return nil, err
	}
	return page.toPage(models.ListQuery{}).Items, nil
}

func (r *CatalogRepository) CreateRole(ctx context.Context, role *models.RoleDTO) (*models.RoleDTO, error) {
	var created models.RoleDTO
	if err := r.client.Post(ctx, "/roles", role, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *CatalogRepository) UpdateRole(ctx context.Context, id string, role *models.RoleDTO) (*models.RoleDTO, error) {
	var updated models.RoleDTO
	if err := r.client.Put(ctx, resourcePath("roles", id), role, &updated); err != nil {
		return nil, notFound(err)
	}
	return &updated, nil
}

func (r *CatalogRepository) DeleteRole(ctx context.Context, id string) error {
	return notFound(r.client.Delete(ctx, resourcePath("roles", id)))
}
