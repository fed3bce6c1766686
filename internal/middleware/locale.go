package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RBoekdrukker/imc-frontend/internal/lang"
	"github.com/RBoekdrukker/imc-frontend/internal/requestctx"
)

// VaryLocale sets Vary header for Accept-Language on dynamic responses
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

// LanguageFromURL resolves the {lang} route parameter through the alias table and stores the
// canonical code on the request context. Codes outside supported render in def.
func LanguageFromURL(aliases lang.Aliases, supported lang.Set, def string) func(http.Handler) http.Handler {
	def = aliases.Canonical(def)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := aliases.Canonical(chi.URLParam(r, "lang"))
			if !supported.Contains(code) {
				code = def
			}
			ctx := requestctx.WithLanguage(r.Context(), code)
			ctx = requestctx.WithLogger(ctx, requestctx.Logger(ctx).With(zap.String("lang", code)))
			w.Header().Set("Content-Language", code)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Lang returns the language resolved for r, or "" outside a language route.
func Lang(r *http.Request) string {
	code, _ := requestctx.Language(r.Context())
	return code
}
