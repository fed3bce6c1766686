// Package render executes the html/template page sets under the templates directory.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

// ErrUnknownPage is returned when no page template has the requested name.
var ErrUnknownPage = errors.New("render: unknown page")

const (
	layoutFile = "layout/base.tmpl"
	partialDir = "partials"
	pageDir    = "pages"
)

// Config configures a Renderer.
type Config struct {
	FS fs.FS
	// Dev reparses the templates on every render.
	Dev bool
}

// Renderer holds one template set per page, each made of the base layout, every partial and
// the page file.
type Renderer struct {
	fsys fs.FS
	dev  bool

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// New parses the templates found in cfg.FS.
func New(cfg Config) (*Renderer, error) {
	if cfg.FS == nil {
		return nil, errors.New("render: no template filesystem")
	}
	r := &Renderer{fsys: cfg.FS, dev: cfg.Dev}
	pages, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"now":   time.Now,
		"upper": strings.ToUpper,
		// safeJSON marks pre-encoded JSON-LD for embedding in a script element.
		"safeJSON": func(s string) template.JS { return template.JS(s) }, //nolint:gosec // produced by encoding/json
	}
}

func (r *Renderer) parse() (map[string]*template.Template, error) {
	partials, err := fs.Glob(r.fsys, partialDir+"/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: list partials: %w", err)
	}
	shared, err := template.New("_root").Funcs(funcMap()).ParseFS(r.fsys, append([]string{layoutFile}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("render: parse layout: %w", err)
	}

	files, err := fs.Glob(r.fsys, pageDir+"/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("render: list pages: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("render: no page templates under %s", pageDir)
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		set, err := shared.Clone()
		if err != nil {
			return nil, fmt.Errorf("render: clone layout: %w", err)
		}
		if _, err := set.ParseFS(r.fsys, file); err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = set
	}
	return pages, nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.dev {
		pages, err := r.parse()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.pages = pages
		r.mu.Unlock()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	return t, nil
}

// Render executes the base layout of page name with data and writes it with status.
// Nothing is written when execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, err := r.lookup(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render: execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
