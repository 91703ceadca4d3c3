package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// MenuNode is one entry of the dashboard navigation tree.
type MenuNode struct {
	ID               string     `json:"id" yaml:"id"`
	Label            string     `json:"label" yaml:"label"`
	Icon             string     `json:"icon,omitempty" yaml:"icon"`
	Path             string     `json:"path,omitempty" yaml:"path"`
	ModulePermission string     `json:"modulePermission" yaml:"module_permission"`
	Children         []MenuNode `json:"children,omitempty" yaml:"children"`
}

// PermissionMap maps module-permission keys to grants. A missing key is a
// denial.
type PermissionMap map[string]bool

// Allows reports whether key is granted.
func (p PermissionMap) Allows(key string) bool {
	return p[key]
}

// Granted returns the granted keys in sorted order.
func (p PermissionMap) Granted() []string {
	keys := make([]string, 0, len(p))
	for key, ok := range p {
		if ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// ParsePermissionMap decodes a permission map coming from the upstream login
// payload. Values that are not booleans are dropped; a payload that is not a
// JSON object yields an empty map.
func ParsePermissionMap(raw json.RawMessage) PermissionMap {
	perms := PermissionMap{}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return perms
	}

	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return perms
	}
	for key, value := range values {
		if granted, ok := value.(bool); ok && key != "" {
			perms[key] = granted
		}
	}
	return perms
}
