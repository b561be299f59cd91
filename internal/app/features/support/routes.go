// internal/app/features/support/routes.go
package support

import (
	"github.com/dalemusser/learnportal/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSupport)
	r.With(limits.Body(limits.MaxContactFormSize)).Post("/", h.HandleSupport)
	return r
}
