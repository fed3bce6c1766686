// Package menu drives the site navigation: it loads navigation records and languages for the
// active language, keeps the language dropdown state and performs language switches.
package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RBoekdrukker/imc-frontend/internal/events"
	"github.com/RBoekdrukker/imc-frontend/internal/lang"
	"github.com/RBoekdrukker/imc-frontend/internal/nav"
)

var (
	// ErrAlreadyMounted is returned by Mount when the controller already holds listeners.
	ErrAlreadyMounted = errors.New("menu: controller already mounted")
	// ErrNoRouter is returned by SelectLanguage when no router was configured.
	ErrNoRouter = errors.New("menu: no router configured")
)

const (
	// DropdownID is the element id of the language dropdown region.
	DropdownID = "lang-menu"

	errorKey            = "menu.error"
	defaultErrorMessage = "Navigation could not be loaded."
)

// State is the load state of the controller.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Dropdown is the open/closed state of the language dropdown.
type Dropdown int

const (
	Closed Dropdown = iota
	Open
)

// Source fetches the records the menu is built from.
type Source interface {
	NavigationItems(ctx context.Context, lang string) ([]nav.Item, error)
	Languages(ctx context.Context) ([]nav.Language, error)
}

// Router exposes the current location and client-side navigation.
type Router interface {
	// CurrentPath returns path, query and fragment of the current location.
	CurrentPath() string
	Push(path string) error
}

// Translator provides user-facing strings.
type Translator interface {
	T(lang, key string) string
}

// Options configures a Controller.
type Options struct {
	Tables lang.Tables
	// Default is the language used when nothing else is known.
	Default string
	// Language is the active language before the first Load. Empty means Default.
	Language string
	// Fallback is the supported set used for language switches while no languages are loaded.
	// Empty means {Default}.
	Fallback   lang.Set
	Translator Translator
	Logger     *zap.Logger
}

// Controller is the stateful navigation menu of one rendered page.
type Controller struct {
	src    Source
	router Router
	tables lang.Tables
	def    string
	fb     lang.Set
	tr     Translator
	log    *zap.Logger

	mu        sync.Mutex
	state     State
	dropdown  Dropdown
	active    string
	gen       uint64
	roots     []*nav.Item
	languages []nav.Language
	errMsg    string
	sub       *events.Subscription
}

// NewController builds an idle controller.
func NewController(src Source, router Router, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	def := opts.Tables.Aliases.Canonical(opts.Default)
	if def == "" {
		def = "en"
	}
	fb := opts.Fallback
	if fb.Len() == 0 {
		fb = opts.Tables.Aliases.Set(def)
	}
	active := opts.Tables.Aliases.Canonical(opts.Language)
	if active == "" {
		active = def
	}
	return &Controller{
		src:    src,
		router: router,
		tables: opts.Tables,
		def:    def,
		fb:     fb,
		tr:     opts.Translator,
		log:    logger.Named("menu"),
		active: active,
	}
}

// State returns the current load state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dropdown returns the current dropdown state.
func (c *Controller) Dropdown() Dropdown {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropdown
}

// Language returns the active canonical language.
func (c *Controller) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Load makes code the active language and fetches its navigation and the language list
// concurrently. Both must succeed for the controller to become Ready; a failure of either
// moves it to Error and is returned. A result that arrives after another Load has changed the
// active language is discarded and Load returns nil.
func (c *Controller) Load(ctx context.Context, code string) error {
	code = c.tables.Aliases.Canonical(code)
	if code == "" {
		code = c.def
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.active = code
	c.state = Loading
	c.mu.Unlock()

	var (
		items []nav.Item
		langs []nav.Language
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = c.src.NavigationItems(gctx, code)
		if err != nil {
			return fmt.Errorf("load navigation %s: %w", code, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		langs, err = c.src.Languages(gctx)
		if err != nil {
			return fmt.Errorf("load languages: %w", err)
		}
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || code != c.active {
		c.log.Debug("discarding stale menu response", zap.String("lang", code), zap.String("active", c.active))
		return nil
	}
	if err != nil {
		c.state = Error
		c.roots = nil
		c.languages = nil
		c.errMsg = c.translate(code, errorKey, defaultErrorMessage)
		c.log.Error("failed loading navigation or languages", zap.String("lang", code), zap.Error(err))
		return err
	}

	roots, detached := nav.BuildTree(items)
	if len(detached) > 0 {
		c.log.Debug("navigation items placed at root", zap.String("lang", code), zap.Ints("ids", detached))
	}
	c.roots = roots
	c.languages = langs
	c.errMsg = ""
	c.state = Ready
	return nil
}

// Toggle opens a closed dropdown and closes an open one.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dropdown == Open {
		c.dropdown = Closed
	} else {
		c.dropdown = Open
	}
}

// Close closes the dropdown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropdown = Closed
}

// SelectLanguage switches the site to code. Choosing the active language only closes the
// dropdown. Otherwise the current location is rewritten to the target language, keeping
// path, query and fragment, and pushed to the router before the dropdown closes.
func (c *Controller) SelectLanguage(ctx context.Context, code string) error {
	target := c.tables.Aliases.Canonical(code)

	c.mu.Lock()
	current := c.active
	if target == current {
		c.dropdown = Closed
		c.mu.Unlock()
		return nil
	}
	supported := c.supportedLocked()
	c.mu.Unlock()

	if c.router == nil {
		c.Close()
		return ErrNoRouter
	}

	from := c.router.CurrentPath()
	if from == "" {
		from = "/" + current
	}
	next := c.tables.Aliases.RewritePath(from, target, supported)
	c.log.Debug("switching language", zap.String("from", from), zap.String("to", next))
	err := c.router.Push(next)
	c.Close()
	if err != nil {
		return fmt.Errorf("menu: navigate to %s: %w", next, err)
	}
	return nil
}

// Supported returns the canonical codes of the loaded languages, or the fallback set when
// none are loaded.
func (c *Controller) Supported() lang.Set {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supportedLocked()
}

func (c *Controller) supportedLocked() lang.Set {
	if len(c.languages) == 0 {
		return c.fb
	}
	codes := make([]string, 0, len(c.languages))
	for _, l := range c.languages {
		codes = append(codes, l.Code)
	}
	return c.tables.Aliases.Set(codes...)
}

func (c *Controller) translate(code, key, def string) string {
	if c.tr == nil {
		return def
	}
	if v := c.tr.T(code, key); v != "" && v != key {
		return v
	}
	return def
}
