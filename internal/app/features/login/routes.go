// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/learnportal/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.With(limits.Body(limits.MaxLoginFormSize)).Post("/", h.HandleLoginPost)
	return r
}
