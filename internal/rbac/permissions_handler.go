package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// PermissionsHandler exposes the effective grants for the current session.
type PermissionsHandler struct {
	Matrix *Matrix
}

// MountRoutes registers permission introspection routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
}

func (h *PermissionsHandler) me(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.UserID() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	role := Role(sess.Role())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":        role,
		"permissions": h.Matrix.Permissions(role),
		"navigation":  h.Matrix.NavigationFor(role),
	})
}
