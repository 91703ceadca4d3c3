package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/apperrors"
	"github.com/lee-tech/workforce-admin/internal/constants"
	"github.com/lee-tech/workforce-admin/internal/logging"
	"github.com/lee-tech/workforce-admin/internal/service"
	"github.com/lee-tech/workforce-admin/internal/upstream"
)

// SessionResolver turns a bearer token into the caller's principal.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*service.Principal, error)
}

// Guard authenticates requests and checks route permissions.
type Guard struct {
	sessions    SessionResolver
	permissions PermissionResolver
	logger      *zap.Logger
}

func NewGuard(sessions SessionResolver, permissions PermissionResolver, logger *zap.Logger) *Guard {
	if permissions == nil {
		permissions = NewRoutePermissionResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{sessions: sessions, permissions: permissions, logger: logger}
}

// Protect wraps next with authentication and the route permission check.
func (g *Guard) Protect(next http.HandlerFunc) http.Handler {
	return g.Authenticate(g.Authorize(next))
}

// Authenticate resolves the session behind the bearer token and stores the
// principal and its platform token in the request context.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			apperrors.Unauthorized("Missing bearer token").WriteHTTP(w)
			return
		}

		principal, err := g.sessions.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, r, g.logger, err)
			return
		}

		ctx := service.WithPrincipal(r.Context(), principal)
		ctx = upstream.WithToken(ctx, principal.UpstreamToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authorize lets the request through when the principal holds any key the
// route requires. Routes without a rule are denied.
func (g *Guard) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := service.PrincipalFrom(r.Context())
		if !ok {
			apperrors.Unauthorized("Authentication required").WriteHTTP(w)
			return
		}

		keys, err := g.permissions(r)
		if err != nil {
			g.logger.Warn("route has no permission rule",
				zap.String("request_id", logging.RequestID(r.Context())),
				zap.String("route", logging.RouteTemplate(r)),
				zap.Error(err),
			)
			apperrors.Forbidden("Insufficient permissions").WriteHTTP(w)
			return
		}

		if !grants(principal, keys) {
			apperrors.Forbidden("Insufficient permissions").WriteHTTP(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func grants(principal *service.Principal, keys []string) bool {
	for _, key := range keys {
		if key == constants.AlwaysVisible {
			return true
		}
	}
	return principal.Allows(keys...)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
