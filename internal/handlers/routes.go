package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/RBoekdrukker/imc-frontend/internal/middleware"
)

// Register mounts the site routes on r.
func (s *Site) Register(r chi.Router) {
	r.With(middleware.VaryLocale).Get("/", s.RootRedirect)
	r.Get("/language", s.SwitchLanguage)
	r.Get("/api/navigation", s.NavigationJSON)
	r.Route("/{lang}", func(r chi.Router) {
		r.Use(middleware.LanguageFromURL(s.tables.Aliases, s.supported, s.def))
		r.Get("/", s.Home)
		r.Get("/{slug}", s.Page)
		r.Get("/"+articleSection+"/{slug}", s.Article)
	})
}
