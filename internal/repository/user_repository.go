package repository

import (
	"context"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/upstream"
)

// UserRepository handles platform API calls for users.
type UserRepository struct {
	client *upstream.Client
}

// NewUserRepository creates a new user repository
func NewUserRepository(client *upstream.Client) *UserRepository {
	return &UserRepository{client: client}
}

// List retrieves the users of a license with pagination
func (r *UserRepository) List(ctx context.Context, q models.ListQuery) (*models.Page[models.UserDTO], error) {
	var page pageDTO[models.UserDTO]
	if err := r.client.Get(ctx, "/users", listValues(q), &page); err != nil {
		return nil, err
	}
	return page.toPage(q), nil
}

// GetByID retrieves a user by ID, or nil when it does not exist
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.UserDTO, error) {
	var user models.UserDTO
	if err := r.client.Get(ctx, resourcePath("users", id), nil, &user); err != nil {
		if upstream.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.UserDTO) (*models.UserDTO, error) {
	var created models.UserDTO
	if err := r.client.Post(ctx, "/users", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.UserDTO) (*models.UserDTO, error) {
	var updated models.UserDTO
	if err := r.client.Put(ctx, resourcePath("users", id), user, &updated); err != nil {
		return nil, notFound(err)
	}
	return &updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return notFound(r.client.Delete(ctx, resourcePath("users", id)))
}
