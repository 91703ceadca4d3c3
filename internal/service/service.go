// Package service holds the dashboard's business logic: license, user and
// catalog administration, structure selection and sessions.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/events"
	"github.com/lee-tech/workforce-admin/internal/models"
)

var (
	ErrLicenseNotFound    = errors.New("license not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
)

// LicenseRepository is the license storage the service depends on.
type LicenseRepository interface {
	List(ctx context.Context, q models.ListQuery) (*models.Page[models.LicenseDTO], error)
	GetByID(ctx context.Context, id string) (*models.LicenseDTO, error)
	Create(ctx context.Context, license *models.LicenseDTO) (*models.LicenseDTO, error)
	Update(ctx context.Context, id string, license *models.LicenseDTO) (*models.LicenseDTO, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	List(ctx context.Context, q models.ListQuery) (*models.Page[models.UserDTO], error)
	GetByID(ctx context.Context, id string) (*models.UserDTO, error)
	Create(ctx context.Context, user *models.UserDTO) (*models.UserDTO, error)
	Update(ctx context.Context, id string, user *models.UserDTO) (*models.UserDTO, error)
	Delete(ctx context.Context, id string) error
}

type CatalogRepository interface {
	ListModules(ctx context.Context) ([]models.ModuleDTO, error)
	ListRoles(ctx context.Context) ([]models.RoleDTO, error)
	CreateRole(ctx context.Context, role *models.RoleDTO) (*models.RoleDTO, error)
	UpdateRole(ctx context.Context, id string, role *models.RoleDTO) (*models.RoleDTO, error)
	DeleteRole(ctx context.Context, id string) error
}

// StructureSource loads a license's structure tree; nil means none exists.
type StructureSource interface {
	GetTree(ctx context.Context, licenseID string) (*models.StructureTree, error)
}

type Authenticator interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.UpstreamLoginDTO, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionRevoker ends every open session of a user.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) (int64, error)
}

// auditor publishes audit events. Publishing failures are logged and never
// fail the mutation that triggered them.
type auditor struct {
	publisher events.Publisher
	logger    *zap.Logger
}

func newAuditor(publisher events.Publisher, logger *zap.Logger) auditor {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return auditor{publisher: publisher, logger: logger}
}

func (a auditor) record(ctx context.Context, resource, action, resourceID, licenseID string) {
	event := events.New(resource, action, resourceID)
	event.LicenseID = licenseID
	if principal, ok := PrincipalFrom(ctx); ok {
		event.ActorID = principal.UserID
	}

	a.logger.Info("administrative change",
		zap.String("event", event.Name()),
		zap.String("resource_id", resourceID),
		zap.String("actor_id", event.ActorID),
	)
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.Warn("failed to publish audit event", zap.String("event", event.Name()), zap.Error(err))
	}
}
