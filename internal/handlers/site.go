// Package handlers serves the language-prefixed site pages, the language switch and the
// navigation JSON endpoint.
package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/RBoekdrukker/imc-frontend/internal/cms"
	"github.com/RBoekdrukker/imc-frontend/internal/format"
	"github.com/RBoekdrukker/imc-frontend/internal/i18n"
	"github.com/RBoekdrukker/imc-frontend/internal/lang"
	"github.com/RBoekdrukker/imc-frontend/internal/menu"
	"github.com/RBoekdrukker/imc-frontend/internal/render"
	"github.com/RBoekdrukker/imc-frontend/internal/requestctx"
	"github.com/RBoekdrukker/imc-frontend/internal/seo"
)

// Content is the content API as seen by the handlers.
type Content interface {
	menu.Source
	ContentBlocks(ctx context.Context, slug, lang string) ([]cms.ContentBlock, error)
	Hero(ctx context.Context) (cms.Hero, error)
	HomeSections(ctx context.Context) ([]cms.HomeSection, error)
	Article(ctx context.Context, slug, lang string) (cms.Article, error)
	AssetURL(id string) string
}

// Options configures a Site.
type Options struct {
	Content   Content
	Tables    lang.Tables
	Supported lang.Set
	Default   string
	Bundle    *i18n.Bundle
	SEO       seo.Site
	Pages     *render.Renderer
	Format    *format.Renderer
}

// Site holds the collaborators shared by every handler.
type Site struct {
	content   Content
	tables    lang.Tables
	supported lang.Set
	def       string
	bundle    *i18n.Bundle
	seo       seo.Site
	pages     *render.Renderer
	format    *format.Renderer
}

// NewSite builds the handler set.
func NewSite(opts Options) *Site {
	def := opts.Tables.Aliases.Canonical(opts.Default)
	if def == "" {
		def = opts.Supported.First()
	}
	f := opts.Format
	if f == nil {
		f = format.NewRenderer()
	}
	return &Site{
		content:   opts.Content,
		tables:    opts.Tables,
		supported: opts.Supported,
		def:       def,
		bundle:    opts.Bundle,
		seo:       opts.SEO,
		pages:     opts.Pages,
		format:    f,
	}
}

// newController builds the menu of one request. The request logger is handed down so menu
// failures carry the request fields.
func (s *Site) newController(ctx context.Context, router menu.Router, code string) *menu.Controller {
	return menu.NewController(s.content, router, menu.Options{
		Tables:     s.tables,
		Default:    s.def,
		Language:   code,
		Fallback:   s.supported,
		Translator: s.bundle,
		Logger:     requestctx.Logger(ctx),
	})
}

// language returns the language resolved by the URL middleware, or the default.
func (s *Site) language(r *http.Request) string {
	if code, ok := requestctx.Language(r.Context()); ok {
		return code
	}
	return s.def
}

// currentPath is the request path and raw query with the dropdown toggle parameter removed.
// Every other query pair is kept byte for byte, in its original order.
func currentPath(r *http.Request) string {
	p := r.URL.EscapedPath()
	if p == "" {
		p = "/"
	}
	if q := stripParam(r.URL.RawQuery, menuParam); q != "" {
		p += "?" + q
	}
	return p
}

// stripParam drops the pairs named key from a raw query string.
func stripParam(raw, key string) string {
	if raw == "" {
		return ""
	}
	pairs := strings.Split(raw, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		name, _, _ := strings.Cut(pair, "=")
		if name == key {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// toggleHref flips the dropdown parameter on path.
func toggleHref(path string, open bool) string {
	if open {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + menuParam + "=open"
}

// switchHref links to the language switch endpoint.
func switchHref(code, returnPath string) string {
	q := url.Values{}
	q.Set("to", code)
	q.Set("return", returnPath)
	return "/language?" + q.Encode()
}

// safeReturn accepts site-relative paths only.
func safeReturn(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, `/\`) {
		return ""
	}
	return p
}
