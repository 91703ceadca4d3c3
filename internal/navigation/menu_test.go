package navigation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lee-tech/workforce-admin/internal/models"
)

func TestDefaultMenu_IsValid(t *testing.T) {
	menu, err := DefaultMenu()
	require.NoError(t, err)
	require.True(t, menu.IsAdminSection("administration"))
	require.True(t, menu.IsAdminSection("system-config"))
	require.False(t, menu.IsAdminSection("dashboard"))
	require.Contains(t, menu.PermissionKeys(), "gestion_empleados")
	require.NotContains(t, menu.PermissionKeys(), "always_visible")
}

func TestMenuFor_AdministrativeSectionsLast(t *testing.T) {
	menu, err := DefaultMenu()
	require.NoError(t, err)

	perms := models.PermissionMap{
		"usuarios":   true,
		"licencias":  true,
		"modulos":    true,
		"reportes":   true,
		"asistencia": false,
	}
	got := menu.For(perms)
	require.Equal(t, []string{"dashboard", "licenses", "reports", "profile", "administration", "system-config"}, ids(got))
	require.Equal(t, []string{"license-list"}, ids(got[1].Children))
	require.Equal(t, []string{"user-list"}, ids(got[4].Children))
}

func TestMenuFor_EmptyPermissions(t *testing.T) {
	menu, err := DefaultMenu()
	require.NoError(t, err)

	require.Equal(t, []string{"dashboard", "profile"}, ids(menu.For(models.PermissionMap{})))
}

func TestMenuItems_ReturnsCopies(t *testing.T) {
	menu, err := DefaultMenu()
	require.NoError(t, err)

	items := menu.Items()
	items[0].Label = "changed"
	items[1].Children[0].ID = "changed"

	fresh := menu.Items()
	require.NotEqual(t, "changed", fresh[0].Label)
	require.NotEqual(t, "changed", fresh[1].Children[0].ID)
}

func TestParseMenu_RejectsInvalidDefinitions(t *testing.T) {
	tests := map[string]string{
		"empty":              "items: []\n",
		"duplicate ids":      "items:\n  - id: a\n    module_permission: x\n  - id: a\n    module_permission: y\n",
		"nested duplicate":   "items:\n  - id: a\n    module_permission: x\n    children:\n      - id: a\n        module_permission: y\n",
		"missing id":         "items:\n  - label: nameless\n    module_permission: x\n",
		"missing permission": "items:\n  - id: a\n",
		"not yaml":           "items: [",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMenu([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestLoadMenu_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	raw := "admin_sections: [admin]\nitems:\n  - id: admin\n    module_permission: always_visible\n  - id: home\n    module_permission: always_visible\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	menu, err := LoadMenu(path)
	require.NoError(t, err)
	require.Equal(t, []string{"home", "admin"}, ids(menu.For(nil)))

	_, err = LoadMenu(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	fallback, err := LoadMenu("")
	require.NoError(t, err)
	require.NotEmpty(t, fallback.Items())
}
