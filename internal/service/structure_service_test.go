package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/structure"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

func newStructureFixture(t *testing.T) (*StructureService, *fakeStructureSource) {
	t.Helper()
	source := &fakeStructureSource{trees: map[string]*models.StructureTree{"L1": decodeTree(t, acmeTree)}}
	return NewStructureService(source), source
}

func TestStructureService_AvailableTypes(t *testing.T) {
	svc, _ := newStructureFixture(t)
	ctx := context.Background()

	types, err := svc.AvailableTypes(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, []models.Level{models.LevelCompany, models.LevelSede, models.LevelDepartment}, types)

	types, err = svc.AvailableTypes(ctx, "L2")
	require.NoError(t, err)
	require.Empty(t, types)

	_, err = svc.AvailableTypes(ctx, "")
	require.ErrorIs(t, err, ErrLicenseNotFound)
}

func TestStructureService_Options(t *testing.T) {
	svc, _ := newStructureFixture(t)
	ctx := context.Background()

	options, err := svc.Options(ctx, "L1", "branch")
	require.NoError(t, err)
	require.Equal(t, []structure.Option{{ID: "B1", Name: "Lima", Type: models.LevelSede}}, options)

	_, err = svc.Options(ctx, "L1", "galaxy")
	fields, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	require.Contains(t, fields, "type")
}

func TestStructureService_SelectorReloadsTree(t *testing.T) {
	svc, source := newStructureFixture(t)
	ctx := context.Background()

	state, err := svc.Selector(ctx, "L1", &models.SelectorRequest{Type: "department", ID: "D1", Mode: "edit"})
	require.NoError(t, err)
	require.Equal(t, models.SelectionDraft{Type: models.LevelDepartment, ID: "D1"}, state.Selection)
	require.False(t, state.Cleared)

	source.trees["L1"] = decodeTree(t, `{"license_id": "L1", "name": "Acme", "companies": [
		{"comp_iden": "C1", "branches": [{"branch_id": "B1", "name": "Lima", "departments": []}]}
	]}`)

	state, err = svc.Selector(ctx, "L1", &models.SelectorRequest{Type: "department", ID: "D1", Mode: "edit"})
	require.NoError(t, err)
	require.Equal(t, models.SelectionDraft{}, state.Selection)
	require.True(t, state.Cleared)
	require.Equal(t, 2, source.calls)
}
