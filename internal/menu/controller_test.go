package menu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/RBoekdrukker/imc-frontend/internal/events"
	"github.com/RBoekdrukker/imc-frontend/internal/lang"
	"github.com/RBoekdrukker/imc-frontend/internal/nav"
)

func intp(v int) *int { return &v }

var siteLanguages = []nav.Language{
	{ID: 1, Code: "en", Label: "English", Sort: 1, Published: true},
	{ID: 2, Code: "de", Label: "Deutsch", Sort: 2, Published: true},
	{ID: 3, Code: "uk", Label: "Українська", FlagEmoji: "🇺🇦", Sort: 3, Published: true},
}

type fakeSource struct {
	items    map[string][]nav.Item
	langs    []nav.Language
	navErr   error
	langsErr error

	// gate blocks NavigationItems for a language until closed; started is signalled first.
	gate    map[string]chan struct{}
	started map[string]chan struct{}
}

func (f *fakeSource) NavigationItems(ctx context.Context, code string) ([]nav.Item, error) {
	if ch, ok := f.started[code]; ok {
		ch <- struct{}{}
	}
	if ch, ok := f.gate[code]; ok {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.navErr != nil {
		return nil, f.navErr
	}
	return f.items[code], nil
}

func (f *fakeSource) Languages(context.Context) ([]nav.Language, error) {
	if f.langsErr != nil {
		return nil, f.langsErr
	}
	return f.langs, nil
}

type fakeRouter struct {
	mu      sync.Mutex
	current string
	pushed  []string
	err     error
	bus     *events.Bus
}

func (r *fakeRouter) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *fakeRouter) Push(path string) error {
	if r.bus != nil {
		r.bus.Publish(events.Event{Kind: events.RouteChangeStart, URL: path})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushed = append(r.pushed, path)
	return r.err
}

func (r *fakeRouter) Pushed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.pushed...)
}

type staticTranslator map[string]string

func (s staticTranslator) T(code, key string) string {
	if v, ok := s[code+":"+key]; ok {
		return v
	}
	return key
}

func newSource() *fakeSource {
	return &fakeSource{
		items: map[string][]nav.Item{
			"en": {
				{ID: 1, Title: "Home", LanguageCode: "en"},
				{ID: 2, Title: "Services", Slug: "services", LanguageCode: "en"},
				{ID: 3, Title: "Audit", URL: "/de/services/audit", ParentID: intp(2), LanguageCode: "en"},
				{ID: 4, Title: "Blog", URL: "https://blog.example.com", LanguageCode: "en"},
			},
			"de": {
				{ID: 11, Title: "Start", LanguageCode: "de"},
				{ID: 12, Title: "Leistungen", Slug: "leistungen", LanguageCode: "de"},
			},
			"ua": {
				{ID: 21, Title: "Головна", LanguageCode: "ua"},
			},
		},
		langs: siteLanguages,
	}
}

func newController(src Source, router Router) *Controller {
	return NewController(src, router, Options{
		Tables:  lang.DefaultTables(),
		Default: "en",
	})
}

func TestLoadBuildsTreeAndLanguages(t *testing.T) {
	t.Parallel()

	c := newController(newSource(), nil)
	require.Equal(t, Idle, c.State())

	require.NoError(t, c.Load(context.Background(), "GB"))
	require.Equal(t, Ready, c.State())
	require.Equal(t, "en", c.Language())
	require.Equal(t, []string{"en", "de", "ua"}, c.Supported().Codes())

	v := c.View("/en/services/audit")
	require.Len(t, v.Items, 3)
	require.Equal(t, "/en", v.Items[0].Href)
	require.Equal(t, "/en/services", v.Items[1].Href)
	require.True(t, v.Items[1].Active)
	require.Len(t, v.Items[1].Children, 1)
	require.Equal(t, "/en/services/audit", v.Items[1].Children[0].Href)
	require.True(t, v.Items[1].Children[0].Active)
	require.True(t, v.Items[2].External)
	require.Equal(t, "https://blog.example.com", v.Items[2].Href)
	require.False(t, v.Items[0].Active, "language root only matches itself")
}

func TestLoadEmptyResultIsReady(t *testing.T) {
	t.Parallel()

	src := newSource()
	src.items = nil
	c := newController(src, nil)

	require.NoError(t, c.Load(context.Background(), "de"))
	require.Equal(t, Ready, c.State())
	v := c.View("/de")
	require.Empty(t, v.Items)
	require.Empty(t, v.Error)
}

func TestLoadFailureMovesToErrorAndLogs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	src := newSource()
	c := NewController(src, nil, Options{
		Tables:     lang.DefaultTables(),
		Default:    "en",
		Translator: staticTranslator{"de:menu.error": "Navigation konnte nicht geladen werden."},
		Logger:     zap.New(core),
	})
	require.NoError(t, c.Load(context.Background(), "de"))

	src.langsErr = errors.New("cms: fetch items/languages failed: 503")
	err := c.Load(context.Background(), "de")
	require.Error(t, err)
	require.ErrorIs(t, err, src.langsErr)

	require.Equal(t, Error, c.State())
	v := c.View("/de")
	require.Equal(t, "Navigation konnte nicht geladen werden.", v.Error)
	require.Empty(t, v.Items, "no partial tree after a failure")
	require.Empty(t, v.Languages)

	entries := logs.FilterMessage("failed loading navigation or languages").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestLoadFailureDefaultMessage(t *testing.T) {
	t.Parallel()

	src := newSource()
	src.navErr = errors.New("connection refused")
	c := newController(src, nil)

	require.Error(t, c.Load(context.Background(), "en"))
	require.Equal(t, "Navigation could not be loaded.", c.View("").Error)
}

func TestStaleResponseDoesNotOverwriteNewerLanguage(t *testing.T) {
	t.Parallel()

	src := newSource()
	src.gate = map[string]chan struct{}{"de": make(chan struct{})}
	src.started = map[string]chan struct{}{"de": make(chan struct{}, 1)}
	c := newController(src, nil)

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background(), "de") }()

	select {
	case <-src.started["de"]:
	case <-time.After(5 * time.Second):
		t.Fatal("german fetch never started")
	}

	require.NoError(t, c.Load(context.Background(), "en"))
	require.Equal(t, Ready, c.State())

	close(src.gate["de"])
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("german load never finished")
	}

	require.Equal(t, Ready, c.State())
	require.Equal(t, "en", c.Language())
	v := c.View("/en")
	require.Len(t, v.Items, 3)
	require.Equal(t, "Home", v.Items[0].Title)
}

func TestSelectSameLanguageOnlyCloses(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{current: "/ua/about"}
	c := newController(newSource(), router)
	require.NoError(t, c.Load(context.Background(), "ua"))

	c.Toggle()
	require.Equal(t, Open, c.Dropdown())

	require.NoError(t, c.SelectLanguage(context.Background(), "uk"))
	require.Equal(t, Closed, c.Dropdown())
	require.Empty(t, router.Pushed())
}

func TestSelectLanguageRewritesCurrentPath(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{current: "/de/about?x=1#y"}
	c := newController(newSource(), router)
	require.NoError(t, c.Load(context.Background(), "de"))
	c.Toggle()

	require.NoError(t, c.SelectLanguage(context.Background(), "gb"))
	require.Equal(t, []string{"/en/about?x=1#y"}, router.Pushed())
	require.Equal(t, Closed, c.Dropdown())
}

func TestSelectLanguageWithoutPathUsesLanguageRoot(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{}
	c := newController(newSource(), router)
	require.NoError(t, c.Load(context.Background(), "de"))

	require.NoError(t, c.SelectLanguage(context.Background(), "ua"))
	require.Equal(t, []string{"/ua"}, router.Pushed())
}

func TestSelectLanguageFallsBackWhenNoLanguagesLoaded(t *testing.T) {
	t.Parallel()

	src := newSource()
	src.langsErr = errors.New("down")
	router := &fakeRouter{current: "/en/contact"}
	c := newController(src, router)
	require.Error(t, c.Load(context.Background(), "en"))

	require.NoError(t, c.SelectLanguage(context.Background(), "de"))
	require.Equal(t, []string{"/de/contact"}, router.Pushed(), "default language is still recognised as a prefix")

	withSite := NewController(src, router, Options{
		Tables:   lang.DefaultTables(),
		Default:  "en",
		Fallback: lang.DefaultAliases().Set("en", "de", "ua"),
	})
	router.current = "/de/kontakt"
	require.Error(t, withSite.Load(context.Background(), "de"))
	require.NoError(t, withSite.SelectLanguage(context.Background(), "ua"))
	require.Equal(t, "/ua/kontakt", router.Pushed()[1])
}

func TestSelectLanguageReportsRouterFailure(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{current: "/en", err: errors.New("blocked")}
	c := newController(newSource(), router)
	require.NoError(t, c.Load(context.Background(), "en"))
	c.Toggle()

	err := c.SelectLanguage(context.Background(), "de")
	require.ErrorIs(t, err, router.err)
	require.Equal(t, Closed, c.Dropdown())

	noRouter := newController(newSource(), nil)
	require.ErrorIs(t, noRouter.SelectLanguage(context.Background(), "de"), ErrNoRouter)
}

func TestListenersCloseDropdown(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	c := newController(newSource(), nil)
	_, err := c.Mount(bus)
	require.NoError(t, err)
	t.Cleanup(c.Unmount)

	_, err = c.Mount(bus)
	require.ErrorIs(t, err, ErrAlreadyMounted)
	require.Equal(t, 3, bus.Len(), "one registration per listener kind")

	c.Toggle()
	bus.Publish(events.Event{Kind: events.PointerDown, Path: []string{"lang-option-de", DropdownID}})
	require.Equal(t, Open, c.Dropdown(), "clicks inside the dropdown keep it open")
	bus.Publish(events.Event{Kind: events.PointerDown, Path: []string{"hero"}})
	require.Equal(t, Closed, c.Dropdown())

	c.Toggle()
	bus.Publish(events.Event{Kind: events.KeyDown, Key: "Enter"})
	require.Equal(t, Open, c.Dropdown())
	bus.Publish(events.Event{Kind: events.KeyDown, Key: "Escape"})
	require.Equal(t, Closed, c.Dropdown())

	c.Toggle()
	bus.Publish(events.Event{Kind: events.RouteChangeStart, URL: "/en/x"})
	require.Equal(t, Closed, c.Dropdown())
}

func TestUnmountDetachesAllListeners(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	c := newController(newSource(), nil)
	_, err := c.Mount(bus)
	require.NoError(t, err)

	c.Unmount()
	c.Unmount()
	require.Zero(t, bus.Len())

	c.Toggle()
	bus.Publish(events.Event{Kind: events.KeyDown, Key: "Escape"})
	require.Equal(t, Open, c.Dropdown(), "detached controller no longer reacts")

	sub, err := c.Mount(bus)
	require.NoError(t, err, "remount after unmount")
	sub.Unsubscribe()
	require.Zero(t, bus.Len())

	_, err = c.Mount(bus)
	require.NoError(t, err, "releasing the returned subscription also frees the slot")
	c.Unmount()
}

func TestRouteChangeDuringPushDoesNotDeadlock(t *testing.T) {
	t.Parallel()

	bus := events.NewBus()
	router := &fakeRouter{current: "/en/about", bus: bus}
	c := newController(newSource(), router)
	require.NoError(t, c.Load(context.Background(), "en"))
	_, err := c.Mount(bus)
	require.NoError(t, err)
	defer c.Unmount()

	c.Toggle()
	require.NoError(t, c.SelectLanguage(context.Background(), "de"))
	require.Equal(t, []string{"/de/about"}, router.Pushed())
	require.Equal(t, Closed, c.Dropdown())
}

func TestViewLanguages(t *testing.T) {
	t.Parallel()

	c := newController(newSource(), nil)
	require.NoError(t, c.Load(context.Background(), "uk"))

	v := c.View("/ua/about?x=1")
	require.Len(t, v.Languages, 3)
	require.Equal(t, Option{
		Code: "ua", Label: "Українська", FlagSrc: "/assets/flags/ua.svg", FlagEmoji: "🇺🇦",
		Active: true, Path: "/ua/about?x=1",
	}, v.Current)
	require.Equal(t, "/en/about?x=1", v.Languages[0].Path)
	require.Equal(t, "/assets/flags/de.svg", v.Languages[1].FlagSrc)
	require.False(t, v.Languages[1].Active)
	require.False(t, v.Open)
}

func TestViewCurrentLanguageFallbacks(t *testing.T) {
	t.Parallel()

	src := newSource()
	src.langs = []nav.Language{{ID: 2, Code: "de", Label: "Deutsch"}}
	c := newController(src, nil)
	require.NoError(t, c.Load(context.Background(), "en"))
	require.Equal(t, "de", c.View("/en").Current.Code, "first language when the active one is not listed")

	src.langs = nil
	require.NoError(t, c.Load(context.Background(), "en"))
	cur := c.View("/en").Current
	require.Equal(t, "en", cur.Code)
	require.Equal(t, "EN", cur.Label)
}

func TestStateStrings(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ready", Ready.String())
	require.Equal(t, "error", Error.String())
	require.Equal(t, "loading", Loading.String())
	require.Equal(t, "idle", Idle.String())
}

func TestViewStopsAtTwoLevels(t *testing.T) {
	t.Parallel()

	src := newSource()
	src.items["en"] = append(src.items["en"],
		nav.Item{ID: 5, Title: "Checklist", Slug: "checklist", ParentID: intp(3), LanguageCode: "en"})
	c := newController(src, nil)
	require.NoError(t, c.Load(context.Background(), "en"))

	v := c.View("/en/checklist")
	require.Len(t, v.Items[1].Children, 1)
	require.Empty(t, v.Items[1].Children[0].Children)
	require.Equal(t, "Checklist", c.Titles()["/en/checklist"], "deeper items still name their breadcrumbs")
}

func TestTitlesIndexesResolvedTree(t *testing.T) {
	t.Parallel()

	c := newController(newSource(), nil)
	require.Empty(t, c.Titles())

	require.NoError(t, c.Load(context.Background(), "en"))
	titles := c.Titles()
	require.Equal(t, "Services", titles["/en/services"])
	require.Equal(t, "Audit", titles["/en/services/audit"])
	require.NotContains(t, titles, "https://blog.example.com")
}

func TestInitialLanguageWithoutLoad(t *testing.T) {
	t.Parallel()

	router := &fakeRouter{current: "/ua/kontakt#form"}
	c := NewController(newSource(), router, Options{
		Tables:   lang.DefaultTables(),
		Default:  "en",
		Language: "uk",
		Fallback: lang.DefaultAliases().Set("en", "de", "ua"),
	})
	require.Equal(t, "ua", c.Language())
	require.Equal(t, Idle, c.State())

	require.NoError(t, c.SelectLanguage(context.Background(), "ua"))
	require.Empty(t, router.Pushed())

	require.NoError(t, c.SelectLanguage(context.Background(), "de"))
	require.Equal(t, []string{"/de/kontakt#form"}, router.Pushed())
}
