package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/constants"
	"github.com/lee-tech/workforce-admin/internal/events"
	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/repository"
	"github.com/lee-tech/workforce-admin/internal/structure"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

const resourceUser = "user"

// UserService manages the users of a license. Structure assignments are
// finalized against the license's current tree before they are sent.
type UserService struct {
	users      UserRepository
	structures StructureSource
	catalog    *CatalogService
	sessions   SessionRevoker
	validator  *validation.Validator
	audit      auditor
	logger     *zap.Logger
}

func NewUserService(users UserRepository, structures StructureSource, catalog *CatalogService, sessions SessionRevoker, validator *validation.Validator, publisher events.Publisher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      users,
		structures: structures,
		catalog:    catalog,
		sessions:   sessions,
		validator:  validator,
		audit:      newAuditor(publisher, logger),
		logger:     logger,
	}
}

func (s *UserService) List(ctx context.Context, licenseID string, q models.ListQuery) (*models.Page[models.User], error) {
	q.LicenseID = strings.TrimSpace(licenseID)
	page, err := s.users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return models.MapPage(page, func(d *models.UserDTO) models.User {
		return *d.ToUser()
	}), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	dto, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToUser(), nil
}

func (s *UserService) Create(ctx context.Context, licenseID string, input *models.UserInput) (*models.User, error) {
	licenseID = strings.TrimSpace(licenseID)
	if licenseID == "" {
		return nil, ErrLicenseNotFound
	}

	sel, err := s.prepare(ctx, licenseID, input, true)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, input.ToDTO("", licenseID, sel))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user := created.ToUser()
	s.audit.record(ctx, resourceUser, constants.AuditAction.Created, user.ID, licenseID)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, input *models.UserInput) (*models.User, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	licenseID := string(existing.LicenseID)

	sel, err := s.prepare(ctx, licenseID, input, false)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, id, input.ToDTO(id, licenseID, sel))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	user := updated.ToUser()
	if user.ID == "" {
		user.ID = id
	}
	// The role and active flag feed the permission map of open sessions.
	if !user.IsActive || user.RoleID != string(existing.RoleID) {
		s.revokeSessions(ctx, id)
	}
	s.audit.record(ctx, resourceUser, constants.AuditAction.Updated, id, licenseID)
	return user, nil
}

// StructureSelector returns the selector state of the edit form for a user,
// seeded from the user's stored placement.
func (s *UserService) StructureSelector(ctx context.Context, id string) (*structure.SelectorState, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	tree, err := s.structures.GetTree(ctx, string(existing.LicenseID))
	if err != nil {
		return nil, fmt.Errorf("load structure: %w", err)
	}
	state := structure.Selector(tree, models.DraftOf(existing.Selection()), structure.ModeEdit)
	return &state, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrUserNotFound
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.revokeSessions(ctx, id)
	s.audit.record(ctx, resourceUser, constants.AuditAction.Deleted, id, "")
	return nil
}

// revokeSessions ends the user's sessions. The upstream change already
// happened, so a failure is logged rather than returned.
func (s *UserService) revokeSessions(ctx context.Context, id string) {
	if s.sessions == nil {
		return
	}
	if _, err := s.sessions.RevokeUser(ctx, id); err != nil {
		s.logger.Warn("failed to revoke user sessions", zap.String("user_id", id), zap.Error(err))
	}
}

func (s *UserService) find(ctx context.Context, id string) (*models.UserDTO, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrUserNotFound
	}
	dto, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if dto == nil {
		return nil, ErrUserNotFound
	}
	return dto, nil
}

// prepare validates the form, checks the role and finalizes the structure
// assignment. All field problems are reported together.
func (s *UserService) prepare(ctx context.Context, licenseID string, input *models.UserInput, creating bool) (models.StructureSelection, error) {
	if input == nil {
		return nil, validation.FieldErrors{"firstName": "is required"}
	}

	fields := validation.FieldErrors{}
	if err := s.validator.Struct(input); err != nil {
		structErrs, ok := validation.AsFieldErrors(err)
		if !ok {
			return nil, err
		}
		fields = structErrs
	}
	if creating && input.Password == "" {
		fields.Add("password", "is required")
	}

	if roleID := strings.TrimSpace(input.RoleID); roleID != "" {
		if _, err := s.catalog.Role(ctx, roleID); err != nil {
			if !errors.Is(err, ErrRoleNotFound) {
				return nil, err
			}
			fields.Add("roleId", "does not exist")
		}
	}

	sel, err := s.finalizeStructure(ctx, licenseID, input)
	if err != nil {
		var selErr *structure.SelectionError
		if !errors.As(err, &selErr) {
			return nil, err
		}
		fields.Add(selErr.Field, selErr.Message)
	}

	if len(fields) > 0 {
		return nil, fields
	}
	return sel, nil
}

func (s *UserService) finalizeStructure(ctx context.Context, licenseID string, input *models.UserInput) (models.StructureSelection, error) {
	if input.AssignStructureLater {
		return models.Deferred{}, nil
	}

	draft, err := input.Draft()
	if err != nil {
		return nil, &structure.SelectionError{Field: structure.FieldStructureType, Message: err.Error()}
	}

	tree, err := s.structures.GetTree(ctx, licenseID)
	if err != nil {
		return nil, fmt.Errorf("load structure: %w", err)
	}
	return structure.Finalize(tree, draft, false)
}
