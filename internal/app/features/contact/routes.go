// internal/app/features/contact/routes.go
package contact

import (
	"github.com/dalemusser/learnportal/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeContact)
	r.With(limits.Body(limits.MaxContactFormSize)).Post("/", h.HandleContact)
	return r
}
