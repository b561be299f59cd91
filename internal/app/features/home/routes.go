package home

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	r.Get("/privacy", h.ServePrivacy)
	r.Get("/terms", h.ServeTerms)
	return r
}
