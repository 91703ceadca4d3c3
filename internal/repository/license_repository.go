package repository

import (
	"context"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/upstream"
)

// LicenseRepository handles platform API calls for licenses.
type LicenseRepository struct {
	client *upstream.Client
}

func NewLicenseRepository(client *upstream.Client) *LicenseRepository {
	return &LicenseRepository{client: client}
}

func (r *LicenseRepository) List(ctx context.Context, q models.ListQuery) (*models.Page[models.LicenseDTO], error) {
	var page pageDTO[models.LicenseDTO]
	if err := r.client.Get(ctx, "/licenses", listValues(q), &page); err != nil {
		return nil, err
	}
	return page.toPage(q), nil
}

// GetByID returns nil when the license does not exist.
func (r *LicenseRepository) GetByID(ctx context.Context, id string) (*models.LicenseDTO, error) {
	var license models.LicenseDTO
	if err := r.client.Get(ctx, resourcePath("licenses", id), nil, &license); err != nil {
		if upstream.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &license, nil
}

func (r *LicenseRepository) Create(ctx context.Context, license *models.LicenseDTO) (*models.LicenseDTO, error) {
	var created models.LicenseDTO
	if err := r.client.Post(ctx, "/licenses", license, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *LicenseRepository) Update(ctx context.Context, id string, license *models.LicenseDTO) (*models.LicenseDTO, error) {
	var updated models.LicenseDTO
	if err := r.client.Put(ctx, resourcePath("licenses", id), license, &updated); err != nil {
		return nil, notFound(err)
	}
	return &updated, nil
}

func (r *LicenseRepository) Delete(ctx context.Context, id string) error {
	return notFound(r.client.Delete(ctx, resourcePath("licenses", id)))
}
