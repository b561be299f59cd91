// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under "/audit". Admin roles only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(authz.AdminRoles...))
		pr.Get("/", h.ServeList)
	})

	return r
}
