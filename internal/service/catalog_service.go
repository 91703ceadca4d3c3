package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/cache"
	"github.com/lee-tech/workforce-admin/internal/constants"
	"github.com/lee-tech/workforce-admin/internal/events"
	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/repository"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

const resourceRole = "role"

// CatalogService serves the module and role catalogs through the caches it
// is given. Role mutations invalidate the role cache.
type CatalogService struct {
	repo      CatalogRepository
	cache     *cache.Catalog
	validator *validation.Validator
	audit     auditor
	logger    *zap.Logger
}

func NewCatalogService(repo CatalogRepository, catalog *cache.Catalog, validator *validation.Validator, publisher events.Publisher, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		repo:      repo,
		cache:     catalog,
		validator: validator,
		audit:     newAuditor(publisher, logger),
		logger:    logger,
	}
}

// Modules returns the platform modules, from cache when possible.
func (s *CatalogService) Modules(ctx context.Context) ([]models.Module, error) {
	if cached, ok := s.cachedModules(ctx); ok {
		return cached, nil
	}

	dtos, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	modules := make([]models.Module, 0, len(dtos))
	for i := range dtos {
		modules = append(modules, dtos[i].ToModule())
	}

	if err := s.cache.Modules.Set(ctx, modules); err != nil {
		s.logger.Warn("failed to cache modules", zap.Error(err))
	}
	return modules, nil
}

// Roles returns the roles, from cache when possible.
func (s *CatalogService) Roles(ctx context.Context) ([]models.Role, error) {
	if cached, ok := s.cachedRoles(ctx); ok {
		return cached, nil
	}

	dtos, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	roles := make([]models.Role, 0, len(dtos))
	for i := range dtos {
		roles = append(roles, dtos[i].ToRole())
	}

	if err := s.cache.Roles.Set(ctx, roles); err != nil {
		s.logger.Warn("failed to cache roles", zap.Error(err))
	}
	return roles, nil
}

func (s *CatalogService) Role(ctx context.Context, id string) (*models.Role, error) {
	roles, err := s.Roles(ctx)
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	for i := range roles {
		if roles[i].ID == id {
			role := roles[i]
			return &role, nil
		}
	}
	return nil, ErrRoleNotFound
}

func (s *CatalogService) CreateRole(ctx context.Context, input *models.RoleInput) (*models.Role, error) {
	if err := s.validateRole(ctx, input); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateRole(ctx, input.ToDTO(""))
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	s.invalidateRoles(ctx)

	role := created.ToRole()
	s.audit.record(ctx, resourceRole, constants.AuditAction.Created, role.ID, "")
	return &role, nil
}

func (s *CatalogService) UpdateRole(ctx context.Context, id string, input *models.RoleInput) (*models.Role, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRoleNotFound
	}
	if err := s.validateRole(ctx, input); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateRole(ctx, id, input.ToDTO(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.invalidateRoles(ctx)

	role := updated.ToRole()
	if role.ID == "" {
		role.ID = id
	}
	s.audit.record(ctx, resourceRole, constants.AuditAction.Updated, id, "")
	return &role, nil
}

func (s *CatalogService) DeleteRole(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrRoleNotFound
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("delete role: %w", err)
	}
	s.invalidateRoles(ctx)
	s.audit.record(ctx, resourceRole, constants.AuditAction.Deleted, id, "")
	return nil
}

// ClearCache drops both cached catalogs.
func (s *CatalogService) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear catalog cache: %w", err)
	}
	s.logger.Info("catalog cache cleared")
	return nil
}

// validateRole checks the form and that every module key is a known module.
func (s *CatalogService) validateRole(ctx context.Context, input *models.RoleInput) error {
	if input == nil {
		return validation.FieldErrors{"name": "is required"}
	}
	if err := s.validator.Struct(input); err != nil {
		return err
	}

	modules, err := s.Modules(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(modules))
	for _, module := range modules {
		known[module.Key] = struct{}{}
	}

	var unknown []string
	for _, key := range input.Modules {
		key = strings.TrimSpace(key)
		if _, ok := known[key]; !ok && key != "" {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return validation.FieldErrors{"modules": "unknown modules: " + strings.Join(unknown, ", ")}
	}
	return nil
}

func (s *CatalogService) cachedModules(ctx context.Context) ([]models.Module, bool) {
	modules, ok, err := s.cache.Modules.Get(ctx)
	if err != nil {
		s.logger.Warn("module cache unavailable", zap.Error(err))
		return nil, false
	}
	return modules, ok
}

func (s *CatalogService) cachedRoles(ctx context.Context) ([]models.Role, bool) {
	roles, ok, err := s.cache.Roles.Get(ctx)
	if err != nil {
		s.logger.Warn("role cache unavailable", zap.Error(err))
		return nil, false
	}
	return roles, ok
}

func (s *CatalogService) invalidateRoles(ctx context.Context) {
	if err := s.cache.Roles.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate role cache", zap.Error(err))
	}
}
