package navigation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lee-tech/workforce-admin/internal/constants"
	"github.com/lee-tech/workforce-admin/internal/models"
)

func ids(nodes []models.MenuNode) []string {
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.ID)
	}
	return out
}

func sampleMenu() []models.MenuNode {
	return []models.MenuNode{
		{ID: "dashboard", ModulePermission: constants.AlwaysVisible},
		{ID: "employees", ModulePermission: "empleados", Children: []models.MenuNode{
			{ID: "emp-mgmt", ModulePermission: "gestion_empleados"},
			{ID: "attendance", ModulePermission: "asistencia"},
		}},
		{ID: "reports", ModulePermission: "reportes"},
		{ID: "settings", ModulePermission: "configuracion_sistema", Children: []models.MenuNode{
			{ID: "advanced", ModulePermission: "avanzado", Children: []models.MenuNode{
				{ID: "help", ModulePermission: constants.AlwaysVisible},
			}},
		}},
	}
}

func TestFilterTree_SurvivesViaChild(t *testing.T) {
	menu := []models.MenuNode{
		{ID: "dashboard", ModulePermission: constants.AlwaysVisible},
		{ID: "employees", ModulePermission: "empleados", Children: []models.MenuNode{
			{ID: "emp-mgmt", ModulePermission: "gestion_empleados"},
		}},
	}
	perms := models.PermissionMap{"empleados": false, "gestion_empleados": true}

	got := FilterTree(menu, perms)
	require.Equal(t, []string{"dashboard", "employees"}, ids(got))
	require.Equal(t, []string{"emp-mgmt"}, ids(got[1].Children))
}

func TestFilterTree_ReplacesChildrenWithFilteredList(t *testing.T) {
	perms := models.PermissionMap{"empleados": true, "asistencia": true}

	got := FilterTree(sampleMenu(), perms)
	require.Equal(t, []string{"dashboard", "employees", "settings"}, ids(got))
	require.Equal(t, []string{"attendance"}, ids(got[1].Children))
	// settings survives only because a deep descendant is always visible.
	require.Equal(t, []string{"advanced"}, ids(got[2].Children))
	require.Equal(t, []string{"help"}, ids(got[2].Children[0].Children))
}

func TestFilterTree_EmptyMapKeepsOnlyAlwaysVisibleAndAncestors(t *testing.T) {
	got := FilterTree(sampleMenu(), models.PermissionMap{})
	require.Equal(t, []string{"dashboard", "settings"}, ids(got))

	require.Equal(t, ids(got), ids(FilterTree(sampleMenu(), nil)))
}

func TestFilterTree_MissingKeyIsDenied(t *testing.T) {
	got := FilterTree(sampleMenu(), models.PermissionMap{"unrelated": true})
	require.Equal(t, []string{"dashboard", "settings"}, ids(got))
}

func TestFilterTree_DoesNotMutateInput(t *testing.T) {
	menu := sampleMenu()
	before := cloneNodes(menu)

	_ = FilterTree(menu, models.PermissionMap{"asistencia": true})
	require.Equal(t, before, menu)
}

func TestFilterTree_Closure(t *testing.T) {
	permSets := []models.PermissionMap{
		{},
		{"empleados": true},
		{"gestion_empleados": true, "reportes": true},
		{"configuracion_sistema": true, "avanzado": false},
		{"empleados": true, "gestion_empleados": true, "asistencia": true, "reportes": true, "configuracion_sistema": true, "avanzado": true},
	}

	var check func(t *testing.T, nodes []models.MenuNode, perms models.PermissionMap)
	check = func(t *testing.T, nodes []models.MenuNode, perms models.PermissionMap) {
		for _, node := range nodes {
			ok := node.ModulePermission == constants.AlwaysVisible || perms[node.ModulePermission] || len(node.Children) > 0
			require.True(t, ok, "node %s should not survive", node.ID)
			check(t, node.Children, perms)
		}
	}

	for _, perms := range permSets {
		check(t, FilterTree(sampleMenu(), perms), perms)
	}
}

func TestReorder_StablePartition(t *testing.T) {
	nodes := []models.MenuNode{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}}
	admin := map[string]struct{}{"A": {}, "C": {}}

	require.Equal(t, []string{"B", "D", "A", "C"}, ids(Reorder(nodes, admin)))
	require.Equal(t, []string{"A", "B", "C", "D"}, ids(nodes))
}

func TestReorder_NoAdminSections(t *testing.T) {
	nodes := []models.MenuNode{{ID: "x"}, {ID: "y"}}

	require.Equal(t, []string{"x", "y"}, ids(Reorder(nodes, nil)))
	require.Empty(t, Reorder(nil, nil))
}
