package service

import (
	"context"

	"github.com/lee-tech/workforce-admin/internal/models"
)

// Principal is the authenticated caller of a request, resolved from its
// session.
type Principal struct {
	SessionID     string
	UserID        string
	LicenseID     string
	RoleID        string
	Email         string
	IsSuperAdmin  bool
	Permissions   models.PermissionMap
	UpstreamToken string
}

// Allows reports whether the principal holds any of keys. Super admins hold
// every key.
func (p *Principal) Allows(keys ...string) bool {
	if p == nil {
		return false
	}
	if p.IsSuperAdmin {
		return true
	}
	for _, key := range keys {
		if p.Permissions.Allows(key) {
			return true
		}
	}
	return false
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*Principal)
	return principal, ok && principal != nil
}
