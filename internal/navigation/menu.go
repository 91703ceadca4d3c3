package navigation

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lee-tech/workforce-admin/internal/constants"
	"github.com/lee-tech/workforce-admin/internal/models"
)

//go:embed menu.yaml
var defaultMenuYAML []byte

// menuFile is the on-disk layout of a menu definition.
type menuFile struct {
	AdminSections []string          `yaml:"admin_sections"`
	Items         []models.MenuNode `yaml:"items"`
}

// Menu is the canonical navigation definition. It is loaded once at startup
// and never modified afterwards; every accessor hands out copies.
type Menu struct {
	items    []models.MenuNode
	adminIDs map[string]struct{}
}

// NewMenu builds a Menu from items and the ids of the administrative
// sections that are rendered last.
func NewMenu(items []models.MenuNode, adminSections []string) *Menu {
	adminIDs := make(map[string]struct{}, len(adminSections))
	for _, id := range adminSections {
		if id = strings.TrimSpace(id); id != "" {
			adminIDs[id] = struct{}{}
		}
	}
	return &Menu{items: cloneNodes(items), adminIDs: adminIDs}
}

// DefaultMenu returns the menu compiled into the binary.
func DefaultMenu() (*Menu, error) {
	return ParseMenu(defaultMenuYAML)
}

// LoadMenu reads a menu definition from path, or returns the default menu
// when path is empty.
func LoadMenu(path string) (*Menu, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultMenu()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu %s: %w", path, err)
	}
	return ParseMenu(data)
}

// ParseMenu decodes and validates a YAML menu definition.
func ParseMenu(data []byte) (*Menu, error) {
	var file menuFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	menu := NewMenu(file.Items, file.AdminSections)
	if err := menu.Validate(); err != nil {
		return nil, err
	}
	return menu, nil
}

// Validate checks that every node has an id and a permission key and that
// ids are unique across the whole tree.
func (m *Menu) Validate() error {
	if len(m.items) == 0 {
		return errors.New("menu has no items")
	}

	var problems []string
	seen := map[string]struct{}{}
	var walk func(nodes []models.MenuNode, path string)
	walk = func(nodes []models.MenuNode, path string) {
		for i, node := range nodes {
			where := fmt.Sprintf("%s[%d]", path, i)
			id := strings.TrimSpace(node.ID)
			switch {
			case id == "":
				problems = append(problems, where+": empty id")
			default:
				if _, dup := seen[id]; dup {
					problems = append(problems, fmt.Sprintf("%s: duplicate id %q", where, id))
				}
				seen[id] = struct{}{}
				where = id
			}
			if strings.TrimSpace(node.ModulePermission) == "" {
				problems = append(problems, where+": empty module permission")
			}
			walk(node.Children, where)
		}
	}
	walk(m.items, "items")

	if len(problems) > 0 {
		return fmt.Errorf("invalid menu: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Items returns a copy of the full, unfiltered menu.
func (m *Menu) Items() []models.MenuNode {
	return cloneNodes(m.items)
}

// IsAdminSection reports whether id is rendered after the other sections.
func (m *Menu) IsAdminSection(id string) bool {
	_, ok := m.adminIDs[id]
	return ok
}

// For returns the menu visible with perms, administrative sections last.
func (m *Menu) For(perms models.PermissionMap) []models.MenuNode {
	return Reorder(FilterTree(m.items, perms), m.adminIDs)
}

// PermissionKeys returns the sorted, distinct permission keys the menu
// references, excluding the always-visible sentinel.
func (m *Menu) PermissionKeys() []string {
	set := map[string]struct{}{}
	var walk func(nodes []models.MenuNode)
	walk = func(nodes []models.MenuNode) {
		for _, node := range nodes {
			if node.ModulePermission != constants.AlwaysVisible {
				set[node.ModulePermission] = struct{}{}
			}
			walk(node.Children)
		}
	}
	walk(m.items)

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
