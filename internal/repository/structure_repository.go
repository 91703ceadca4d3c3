package repository

import (
	"context"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/upstream"
)

// StructureRepository loads license-rooted organizational trees.
type StructureRepository struct {
	client *upstream.Client
}

func NewStructureRepository(client *upstream.Client) *StructureRepository {
	return &StructureRepository{client: client}
}

// GetTree returns the structure tree of a license, or nil when the license
// has no structure yet.
func (r *StructureRepository) GetTree(ctx context.Context, licenseID string) (*models.StructureTree, error) {
	var dto *models.StructureTreeDTO
	if err := r.client.Get(ctx, resourcePath("licenses", licenseID, "structure"), nil, &dto); err != nil {
		if upstream.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return dto.ToTree(), nil
}
