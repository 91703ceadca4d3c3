package repository

import (
	"context"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/upstream"
)

// AuthRepository exchanges dashboard credentials for a platform token.
type AuthRepository struct {
	client *upstream.Client
}

func NewAuthRepository(client *upstream.Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Login authenticates against the platform. Rejected credentials surface as
// an *upstream.APIError with status 401.
func (r *AuthRepository) Login(ctx context.Context, req *models.LoginRequest) (*models.UpstreamLoginDTO, error) {
	var payload models.UpstreamLoginDTO
	if err := r.client.Post(ctx, "/auth/login", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
