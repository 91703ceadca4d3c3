// Package navigation builds the dashboard menu a user is allowed to see.
package navigation

import (
	"github.com/lee-tech/workforce-admin/internal/constants"
	"github.com/lee-tech/workforce-admin/internal/models"
)

// FilterTree returns the nodes the permission map lets a user see. Children
// are filtered first; a node survives when its own key is always visible or
// granted, or when any of its children survive. Surviving nodes only carry
// their surviving children. The input is never modified.
func FilterTree(nodes []models.MenuNode, perms models.PermissionMap) []models.MenuNode {
	filtered := make([]models.MenuNode, 0, len(nodes))
	for i := range nodes {
		node := nodes[i]
		children := FilterTree(node.Children, perms)

		if !permitted(node.ModulePermission, perms) && len(children) == 0 {
			continue
		}

		node.Children = nil
		if len(children) > 0 {
			node.Children = children
		}
		filtered = append(filtered, node)
	}
	return filtered
}

func permitted(key string, perms models.PermissionMap) bool {
	if key == constants.AlwaysVisible {
		return true
	}
	return perms.Allows(key)
}

// Reorder moves the nodes whose id is in adminIDs to the end. Both groups
// keep their relative order.
func Reorder(nodes []models.MenuNode, adminIDs map[string]struct{}) []models.MenuNode {
	ordered := make([]models.MenuNode, 0, len(nodes))
	var trailing []models.MenuNode
	for _, node := range nodes {
		if _, admin := adminIDs[node.ID]; admin {
			trailing = append(trailing, node)
			continue
		}
		ordered = append(ordered, node)
	}
	return append(ordered, trailing...)
}

// cloneNodes deep-copies a menu tree.
func cloneNodes(nodes []models.MenuNode) []models.MenuNode {
	if nodes == nil {
		return nil
	}
	out := make([]models.MenuNode, len(nodes))
	for i, node := range nodes {
		node.Children = cloneNodes(node.Children)
		out[i] = node
	}
	return out
}
