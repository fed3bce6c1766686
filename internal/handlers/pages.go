package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RBoekdrukker/imc-frontend/internal/cms"
	"github.com/RBoekdrukker/imc-frontend/internal/events"
	"github.com/RBoekdrukker/imc-frontend/internal/format"
	"github.com/RBoekdrukker/imc-frontend/internal/menu"
	"github.com/RBoekdrukker/imc-frontend/internal/nav"
	"github.com/RBoekdrukker/imc-frontend/internal/requestctx"
	"github.com/RBoekdrukker/imc-frontend/internal/seo"
)

const (
	menuParam         = "menu"
	articleSection    = "services"
	descriptionLength = 160
)

// LanguageLink is a dropdown entry with its switch endpoint.
type LanguageLink struct {
	menu.Option
	Href string
}

// Block is a rendered content block.
type Block struct {
	ID         int
	Title      string
	Subtitle   string
	Type       string
	Image      string
	Body       template.HTML
	DetailHref string
}

// Card is a home page section. Href is empty when the section links nowhere.
type Card struct {
	ID       int
	Title    string
	Subtitle string
	Image    string
	Href     string
}

// ArticleView is a rendered service detail article.
type ArticleView struct {
	Intro string
	Image string
	Body  template.HTML
}

// PageData is the view model of every page using the shared layout.
type PageData struct {
	Lang  string
	Title string
	Lead  string
	// Path is the current location without the dropdown parameter.
	Path        string
	SEO         seo.Meta
	Menu        menu.View
	MenuToggle  string
	Languages   []LanguageLink
	Breadcrumbs []nav.Crumb
	Home        bool
	HeroImage   string
	Sections    []Card
	Blocks      []Block
	Article     *ArticleView
	// Notice replaces the page body when its content could not be shown.
	Notice string

	t func(key string) string
}

// T translates key into the page language.
func (d PageData) T(key string) string {
	if d.t == nil {
		return key
	}
	return d.t(key)
}

// Home renders /{lang}: the hero banner and the section cards. Either one failing leaves
// the locale defaults in place.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)
	code := s.language(r)

	data, done := s.begin(w, r, code, pagePath(r, code))
	defer done()
	data.Home = true
	data.Title = data.T("home.title")
	data.Lead = data.T("home.lead")

	hero, err := s.content.Hero(ctx)
	switch {
	case err == nil:
		if t := strings.TrimSpace(hero.Title); t != "" {
			data.Title = t
		}
		if sub := strings.TrimSpace(hero.Subtitle); sub != "" {
			data.Lead = sub
		}
		data.HeroImage = s.content.AssetURL(string(hero.BackgroundImage))
	case !errors.Is(err, cms.ErrNotFound):
		logger.Warn("hero section unavailable", zap.Error(err))
	}

	sections, err := s.content.HomeSections(ctx)
	if err != nil {
		logger.Warn("home sections unavailable", zap.Error(err))
	}
	for _, sec := range sections {
		data.Sections = append(data.Sections, Card{
			ID:       sec.ID,
			Title:    sec.Title,
			Subtitle: sec.Subtitle,
			Image:    s.content.AssetURL(string(sec.BackgroundImage)),
			Href:     articleHref(code, sec.DetailSlug),
		})
	}

	s.finish(w, r, http.StatusOK, "page", data, data.Lead)
}

// Page renders /{lang}/{slug}. A failing menu renders inline; failing content blocks
// degrade to an empty page.
func (s *Site) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)
	code := s.language(r)
	slug := urlParam(r, "slug")

	data, done := s.begin(w, r, code, pagePath(r, code, slug))
	defer done()

	status := http.StatusOK
	blocks, err := s.content.ContentBlocks(ctx, slug, code)
	switch {
	case errors.Is(err, cms.ErrNotFound):
		status = http.StatusNotFound
	case err != nil:
		logger.Warn("content blocks unavailable", zap.String("slug", slug), zap.Error(err))
	}
	for _, b := range blocks {
		data.Blocks = append(data.Blocks, s.block(b, code))
	}
	data.Title = data.Breadcrumbs[len(data.Breadcrumbs)-1].Label

	var description string
	if len(data.Blocks) > 0 {
		description = format.Excerpt(string(data.Blocks[0].Body), descriptionLength)
	}
	s.finish(w, r, status, "page", data, description)
}

// Article renders /{lang}/services/{slug}, the detail page content cards link to.
func (s *Site) Article(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)
	code := s.language(r)
	slug := urlParam(r, "slug")

	data, done := s.begin(w, r, code, pagePath(r, code, articleSection, slug))
	defer done()
	last := &data.Breadcrumbs[len(data.Breadcrumbs)-1]
	data.Title = last.Label

	status := http.StatusOK
	var description string
	article, err := s.content.Article(ctx, slug, code)
	switch {
	case err == nil:
		if t := strings.TrimSpace(article.Title); t != "" {
			data.Title = t
			last.Label = t
		}
		data.Article = &ArticleView{
			Intro: article.Intro,
			Image: s.content.AssetURL(string(article.HeroImage)),
			Body:  s.format.Block(article.Body, ""),
		}
		description = article.Intro
		if description == "" {
			description = format.Excerpt(string(data.Article.Body), descriptionLength)
		}
	case errors.Is(err, cms.ErrNotFound):
		status = http.StatusNotFound
		data.Notice = data.T("article.missing")
	default:
		logger.Warn("article unavailable", zap.String("slug", slug), zap.Error(err))
		status = http.StatusBadGateway
		data.Notice = data.T("article.error")
	}
	s.finish(w, r, status, "article", data, description)
}

// begin builds the menu and the shared view model of a page at current. The returned func
// detaches the menu listeners.
func (s *Site) begin(w http.ResponseWriter, r *http.Request, code, current string) (PageData, func()) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)

	bus := events.NewBus()
	ctrl := s.newController(ctx, &redirectRouter{w: w, r: r, bus: bus, current: current}, code)
	if _, err := ctrl.Mount(bus); err != nil {
		logger.Error("mount menu listeners", zap.Error(err))
	}

	// a failed load leaves the controller in its error state, which the layout renders
	_ = ctrl.Load(ctx, code)
	if r.URL.Query().Get(menuParam) == "open" {
		ctrl.Toggle()
	}

	view := ctrl.View(current)
	data := PageData{
		Lang:        code,
		Path:        current,
		Menu:        view,
		MenuToggle:  toggleHref(current, view.Open),
		Breadcrumbs: nav.Breadcrumbs(current, code, ctrl.Titles()),
		t:           func(key string) string { return s.bundle.T(code, key) },
	}
	for _, o := range view.Languages {
		data.Languages = append(data.Languages, LanguageLink{Option: o, Href: switchHref(o.Code, current)})
	}
	return data, ctrl.Unmount
}

// finish fills the head metadata and renders the page template name.
func (s *Site) finish(w http.ResponseWriter, r *http.Request, status int, name string, data PageData, description string) {
	if description == "" {
		description = data.T("site.description")
	}
	if data.Home {
		data.Breadcrumbs = nil
	}
	data.SEO = s.seo.Page(data.Title, description, data.Path, data.Lang)
	if status >= http.StatusBadRequest {
		data.SEO.Robots = "noindex"
	}
	data.SEO.JSONLD = s.jsonLD(data)

	if err := s.pages.Render(w, status, name, data); err != nil {
		requestctx.Logger(r.Context()).Error("render page", zap.String("page", name), zap.String("path", data.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// pagePath is the location of the page in its resolved language, keeping the query. Alias
// and unsupported prefixes in the request URL are normalized away.
func pagePath(r *http.Request, code string, segments ...string) string {
	p := "/" + code
	for _, seg := range segments {
		p += "/" + seg
	}
	full := currentPath(r)
	if i := strings.IndexByte(full, '?'); i >= 0 {
		p += full[i:]
	}
	return p
}

// articleHref links a detail slug to its article page, or returns "" without a slug.
func articleHref(code, slug string) string {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" {
		return ""
	}
	return "/" + code + "/" + articleSection + "/" + slug
}

func (s *Site) block(b cms.ContentBlock, code string) Block {
	return Block{
		ID:         b.ID,
		Title:      b.Title,
		Subtitle:   b.Subtitle,
		Type:       b.Type,
		Image:      s.content.AssetURL(string(b.ImageFile)),
		Body:       s.format.Block(b.Details, b.Format),
		DetailHref: articleHref(code, b.DetailSlug),
	}
}

func (s *Site) jsonLD(data PageData) []string {
	name := data.T("site.name")
	out := []string{seo.JSON(seo.Organization(name, s.seo.Absolute("/"+data.Lang), s.seo.Absolute("/assets/logo.svg")))}
	if data.Home {
		out = append(out, seo.JSON(seo.WebSite(name, s.seo.Absolute("/"+data.Lang), s.supported.Codes())))
		return out
	}
	items := make([]seo.BreadcrumbItem, 0, len(data.Breadcrumbs))
	for _, c := range data.Breadcrumbs {
		label := c.Label
		if c.LabelKey != "" {
			label = data.T(c.LabelKey)
		}
		items = append(items, seo.BreadcrumbItem{Name: label, Item: s.seo.Absolute(c.Href)})
	}
	return append(out, seo.JSON(seo.BreadcrumbList(items)))
}
