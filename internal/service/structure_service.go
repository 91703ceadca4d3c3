package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/structure"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

// StructureService answers the structure selector's questions for a
// license. Each call loads the tree fresh; nothing is cached.
type StructureService struct {
	source StructureSource
}

func NewStructureService(source StructureSource) *StructureService {
	return &StructureService{source: source}
}

// Tree returns the license's tree, or nil when it has none.
func (s *StructureService) Tree(ctx context.Context, licenseID string) (*models.StructureTree, error) {
	licenseID = strings.TrimSpace(licenseID)
	if licenseID == "" {
		return nil, ErrLicenseNotFound
	}
	tree, err := s.source.GetTree(ctx, licenseID)
	if err != nil {
		return nil, fmt.Errorf("load structure: %w", err)
	}
	return tree, nil
}

func (s *StructureService) AvailableTypes(ctx context.Context, licenseID string) ([]models.Level, error) {
	tree, err := s.Tree(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	return structure.AvailableTypes(tree), nil
}

// Options lists the selectable nodes at level.
func (s *StructureService) Options(ctx context.Context, licenseID, level string) ([]structure.Option, error) {
	parsed, err := models.ParseLevel(level)
	if err != nil {
		return nil, validation.FieldErrors{"type": err.Error()}
	}
	tree, err := s.Tree(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	return structure.Flatten(tree, parsed), nil
}

// Selector reconciles the dashboard's selector state with the current tree.
func (s *StructureService) Selector(ctx context.Context, licenseID string, req *models.SelectorRequest) (*structure.SelectorState, error) {
	if req == nil {
		req = &models.SelectorRequest{}
	}
	level, err := models.ParseLevel(req.Type)
	if err != nil {
		return nil, validation.FieldErrors{"type": err.Error()}
	}

	tree, err := s.Tree(ctx, licenseID)
	if err != nil {
		return nil, err
	}

	draft := models.SelectionDraft{Type: level, ID: strings.TrimSpace(req.ID)}
	state := structure.Selector(tree, draft, structure.ParseMode(req.Mode))
	return &state, nil
}
