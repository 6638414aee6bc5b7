package rbac

import (
	"log/slog"
	"net/http"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Matrix *Matrix
	Logger *slog.Logger
}

// RequireAny ensures the session role has at least one of the required
// permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			role, ok := m.currentRole(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			if m.Matrix.HasAnyPermission(role, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, role)
		})
	}
}

// RequireAll ensures the session role has every required permission.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			role, ok := m.currentRole(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			if m.Matrix.HasAllPermissions(role, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, role)
		})
	}
}

// RequireRoute gates a request on the navigation tree instead of an
// explicit permission list.
func (m Middleware) RequireRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := m.currentRole(r)
		if m.Matrix.CanAccessRoute(role, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if role == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		m.deny(w, r, role)
	})
}

func (m Middleware) currentRole(r *http.Request) (Role, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.UserID() == "" {
		return "", false
	}
	return Role(sess.Role()), true
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, role Role) {
	if m.Logger != nil {
		m.Logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("path", r.URL.Path))
	}
	httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission")
}
