// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/learnportal/internal/app/system/auth"
	"github.com/dalemusser/learnportal/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the role redirect at "/dashboard". Visitors are sent
// home rather than to sign in.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDashboard)
	return r
}

// AdminRoutes mounts at "/admin".
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(authz.AdminRoles...))
	r.Get("/", h.ServeAdmin)
	r.Get("/users", h.ServeAdmin)
	return r
}

// TeacherRoutes mounts at "/teacher".
func TeacherRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(authz.TeacherRoles...))
	r.Get("/", h.ServeTeacher)
	return r
}

// StudentRoutes mounts at "/student".
func StudentRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(authz.StudentRoles...))
	r.Get("/", h.ServeStudent)
	return r
}
