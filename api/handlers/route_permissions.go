package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lee-tech/workforce-admin/internal/constants"
)

// PermissionRule lists the module-permission keys that open a route family.
// Holding any one key is enough. Write falls back to Read when empty.
type PermissionRule struct {
	Read  []string
	Write []string
}

// PermissionResolver returns the keys a request needs, any one of which
// grants access.
type PermissionResolver func(r *http.Request) ([]string, error)

type permissionConfig struct {
	BasePath  string
	Rules     map[string]PermissionRule
	Overrides map[string][]string
}

// PermissionOption customises the route permission resolver.
type PermissionOption func(*permissionConfig)

// WithPermissionBasePath overrides the path prefix stripped before deriving
// the route slug.
func WithPermissionBasePath(basePath string) PermissionOption {
	return func(cfg *permissionConfig) {
		cfg.BasePath = strings.TrimSpace(basePath)
	}
}

// WithPermissionRules adds or replaces rules keyed by dotted slug, e.g.
// "licenses.users".
func WithPermissionRules(rules map[string]PermissionRule) PermissionOption {
	return func(cfg *permissionConfig) {
		for slug, rule := range rules {
			slug = strings.TrimSpace(slug)
			if slug == "" {
				continue
			}
			cfg.Rules[slug] = rule
		}
	}
}

// WithPermissionOverrides pins the keys of single routes, keyed by route name
// or template, regardless of method.
func WithPermissionOverrides(overrides map[string][]string) PermissionOption {
	return func(cfg *permissionConfig) {
		for key, keys := range overrides {
			trimmed := strings.TrimSpace(key)
			if trimmed == "" || len(keys) == 0 {
				continue
			}
			cfg.Overrides[trimmed] = keys
		}
	}
}

// DefaultPermissionRules maps the dashboard's route families to the module
// permissions that show the matching menu entries.
func DefaultPermissionRules() map[string]PermissionRule {
	p := constants.Permission
	return map[string]PermissionRule{
		"session": {Read: []string{constants.AlwaysVisible}},
		"licenses": {
			Read:  []string{p.Licenses, p.ManageLicenses},
			Write: []string{p.ManageLicenses},
		},
		"licenses.structure": {
			Read: []string{p.Structure, p.Users, p.ManageUsers},
		},
		"licenses.users": {
			Read:  []string{p.Users, p.ManageUsers},
			Write: []string{p.ManageUsers},
		},
		"users": {
			Read:  []string{p.Users, p.ManageUsers},
			Write: []string{p.ManageUsers},
		},
		"catalog.modules": {
			Read: []string{p.Modules, p.Roles},
		},
		"catalog.roles": {
			Read:  []string{p.Roles, p.Users, p.ManageUsers},
			Write: []string{p.Roles},
		},
		"catalog.cache": {
			Read: []string{p.SystemConfig},
		},
	}
}

// NewRoutePermissionResolver returns a resolver that derives a dotted slug
// from the matched route template and looks up the longest matching rule.
func NewRoutePermissionResolver(opts ...PermissionOption) PermissionResolver {
	cfg := permissionConfig{
		BasePath:  "/v1",
		Rules:     DefaultPermissionRules(),
		Overrides: map[string][]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.BasePath != "" && !strings.HasPrefix(cfg.BasePath, "/") {
		cfg.BasePath = "/" + cfg.BasePath
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")

	return func(r *http.Request) ([]string, error) {
		if r == nil {
			return nil, fmt.Errorf("http request is required")
		}

		if keys := resolveOverride(r, cfg.Overrides); keys != nil {
			return keys, nil
		}

		path := deriveRoutePath(r)
		path = trimBasePath(path, cfg.BasePath)
		segments := tokeniseSegments(path)

		for n := len(segments); n > 0; n-- {
			slug := strings.Join(segments[:n], ".")
			rule, ok := cfg.Rules[slug]
			if !ok {
				continue
			}
			if isReadMethod(r.Method) || len(rule.Write) == 0 {
				return rule.Read, nil
			}
			return rule.Write, nil
		}

		return nil, fmt.Errorf("no permission rule for %s %s", r.Method, path)
	}
}

func isReadMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

func resolveOverride(r *http.Request, overrides map[string][]string) []string {
	if len(overrides) == 0 || r == nil {
		return nil
	}

	current := mux.CurrentRoute(r)
	if current == nil {
		return nil
	}

	if name := current.GetName(); name != "" {
		if keys, ok := overrides[name]; ok {
			return keys
		}
	}

	if template, err := current.GetPathTemplate(); err == nil && template != "" {
		if keys, ok := overrides[template]; ok {
			return keys
		}
	}

	return nil
}

func deriveRoutePath(r *http.Request) string {
	if r == nil {
		return ""
	}

	path := r.URL.Path
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil && template != "" {
			path = template
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func trimBasePath(path, base string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	base = strings.TrimSpace(base)
	if base == "" {
		return strings.Trim(path, "/")
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	base = strings.TrimRight(base, "/")

	if path == base || strings.HasPrefix(path, base+"/") {
		path = strings.TrimPrefix(path, base)
	}

	return strings.Trim(path, "/")
}

// tokeniseSegments splits a route path into slug segments, dropping path
// variables and normalising dashes.
func tokeniseSegments(path string) []string {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))

	for _, segment := range parts {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			continue
		}
		segment = strings.ReplaceAll(segment, "-", "_")
		segments = append(segments, segment)
	}

	return segments
}
