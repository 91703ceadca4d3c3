// Package structure resolves a license's organizational tree into the flat,
// typed option lists the structure selector offers, and keeps a selector's
// state consistent with the tree currently loaded.
package structure

import (
	"github.com/lee-tech/workforce-admin/internal/models"
)

// Option is one selectable node of the structure tree.
type Option struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Type models.Level `json:"type"`
}

// AvailableTypes returns, in canonical order, the levels that have at least
// one node in tree. The company level is available whenever the tree has a
// root identifier; a deeper level is available when any node one level up,
// anywhere in the tree, has children.
func AvailableTypes(tree *models.StructureTree) []models.Level {
	if !tree.HasRoot() {
		return []models.Level{}
	}

	available := []models.Level{models.LevelCompany}
	frontier := tree.Companies
	for _, level := range models.Levels[1:] {
		var next []models.OrganizationalNode
		for i := range frontier {
			next = append(next, frontier[i].Children...)
		}
		if len(next) == 0 {
			break
		}
		available = append(available, level)
		frontier = next
	}
	return available
}

// IsAvailable reports whether level appears in AvailableTypes(tree).
func IsAvailable(tree *models.StructureTree, level models.Level) bool {
	for _, candidate := range AvailableTypes(tree) {
		if candidate == level {
			return true
		}
	}
	return false
}

// Flatten returns every node of tree at level, in depth-first traversal
// order. The company level yields a single entry built from the tree root,
// since a license owns exactly one company.
func Flatten(tree *models.StructureTree, level models.Level) []Option {
	options := []Option{}
	if !tree.HasRoot() || !level.Valid() {
		return options
	}

	if level == models.LevelCompany {
		return append(options, Option{ID: tree.LicenseID, Name: tree.Name, Type: models.LevelCompany})
	}

	for i := range tree.Companies {
		options = collect(&tree.Companies[i], level, options)
	}
	return options
}

func collect(node *models.OrganizationalNode, level models.Level, acc []Option) []Option {
	if node.Level == level {
		return append(acc, Option{ID: node.ID, Name: node.Name, Type: level})
	}
	// Children sit strictly deeper, so nothing below a node at or past the
	// requested level can match.
	if node.Level.Depth() >= level.Depth() {
		return acc
	}
	for i := range node.Children {
		acc = collect(&node.Children[i], level, acc)
	}
	return acc
}

// Contains reports whether id names a node of tree at level.
func Contains(tree *models.StructureTree, level models.Level, id string) bool {
	if id == "" {
		return false
	}
	for _, option := range Flatten(tree, level) {
		if option.ID == id {
			return true
		}
	}
	return false
}

// Find returns the option for id at level.
func Find(tree *models.StructureTree, level models.Level, id string) (Option, bool) {
	for _, option := range Flatten(tree, level) {
		if option.ID == id {
			return option, true
		}
	}
	return Option{}, false
}
