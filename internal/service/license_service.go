package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/constants"
	"github.com/lee-tech/workforce-admin/internal/events"
	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/repository"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

const resourceLicense = "license"

// LicenseService manages tenant licenses.
type LicenseService struct {
	repo      LicenseRepository
	validator *validation.Validator
	audit     auditor
	logger    *zap.Logger
}

func NewLicenseService(repo LicenseRepository, validator *validation.Validator, publisher events.Publisher, logger *zap.Logger) *LicenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LicenseService{
		repo:      repo,
		validator: validator,
		audit:     newAuditor(publisher, logger),
		logger:    logger,
	}
}

func (s *LicenseService) List(ctx context.Context, q models.ListQuery) (*models.Page[models.License], error) {
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return models.MapPage(page, func(d *models.LicenseDTO) models.License {
		return *d.ToLicense()
	}), nil
}

func (s *LicenseService) Get(ctx context.Context, id string) (*models.License, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrLicenseNotFound
	}
	dto, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	if dto == nil {
		return nil, ErrLicenseNotFound
	}
	return dto.ToLicense(), nil
}

func (s *LicenseService) Create(ctx context.Context, input *models.LicenseInput) (*models.License, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, input.ToDTO(""))
	if err != nil {
		return nil, fmt.Errorf("create license: %w", err)
	}

	license := created.ToLicense()
	s.audit.record(ctx, resourceLicense, constants.AuditAction.Created, license.ID, license.ID)
	return license, nil
}

func (s *LicenseService) Update(ctx context.Context, id string, input *models.LicenseInput) (*models.License, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrLicenseNotFound
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, input.ToDTO(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("update license: %w", err)
	}

	license := updated.ToLicense()
	if license.ID == "" {
		license.ID = id
	}
	s.audit.record(ctx, resourceLicense, constants.AuditAction.Updated, id, id)
	return license, nil
}

func (s *LicenseService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrLicenseNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLicenseNotFound
		}
		return fmt.Errorf("delete license: %w", err)
	}
	s.audit.record(ctx, resourceLicense, constants.AuditAction.Deleted, id, id)
	return nil
}

// validate applies the form rules plus the cross-field date check.
func (s *LicenseService) validate(input *models.LicenseInput) error {
	if input == nil {
		return validation.FieldErrors{"companyName": "is required"}
	}

	fields := validation.FieldErrors{}
	if err := s.validator.Struct(input); err != nil {
		structErrs, ok := validation.AsFieldErrors(err)
		if !ok {
			return err
		}
		fields = structErrs
	}

	if strings.TrimSpace(input.CompanyName) == "" {
		fields.Add("companyName", "is required")
	}

	starts, startErr := time.Parse(models.DateLayout, strings.TrimSpace(input.StartsAt))
	expires, expiresErr := time.Parse(models.DateLayout, strings.TrimSpace(input.ExpiresAt))
	if startErr == nil && expiresErr == nil && !expires.After(starts) {
		fields.Add("expiresAt", "must be after the start date")
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}
