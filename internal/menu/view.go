package menu

import (
	"strings"

	"github.com/RBoekdrukker/imc-frontend/internal/nav"
)

// Link is a resolved navigation entry.
type Link struct {
	ID       int
	Title    string
	Href     string
	External bool
	Active   bool
	// Children holds the second menu level; their own Children is always empty.
	Children []Link
}

// Option is an entry of the language dropdown.
type Option struct {
	Code      string
	Label     string
	FlagSrc   string
	FlagEmoji string
	Active    bool
	// Path is the current location rewritten to this language.
	Path string
}

// View is an immutable snapshot of the menu for rendering.
type View struct {
	State     State
	Open      bool
	Error     string
	Current   Option
	Items     []Link
	Languages []Option
}

// View resolves the current tree and language list against currentPath, the location of the
// page being rendered (path, query and fragment).
func (c *Controller) View(currentPath string) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	aliases := c.tables.Aliases
	supported := c.supportedLocked()
	if currentPath == "" {
		currentPath = "/" + c.active
	}

	v := View{
		State: c.state,
		Open:  c.dropdown == Open,
		Error: c.errMsg,
	}

	resolver := nav.Resolver{Aliases: aliases}
	link := func(it *nav.Item) Link {
		href := resolver.Href(*it, c.active, supported)
		return Link{
			ID:       it.ID,
			Title:    it.Title,
			Href:     href,
			External: it.URL != "" && nav.IsExternal(it.URL),
			Active:   nav.IsActive(href, currentPath, supported, aliases),
		}
	}
	// The menu shows two levels. Deeper items stay in the tree for breadcrumbs only.
	if c.state == Ready {
		for _, root := range c.roots {
			l := link(root)
			for _, child := range root.Children {
				l.Children = append(l.Children, link(child))
			}
			v.Items = append(v.Items, l)
		}
	}

	for _, l := range c.languages {
		code := aliases.Canonical(l.Code)
		v.Languages = append(v.Languages, Option{
			Code:      code,
			Label:     l.Label,
			FlagSrc:   c.tables.Flags.Src(code),
			FlagEmoji: l.FlagEmoji,
			Active:    code == c.active,
			Path:      aliases.RewritePath(currentPath, code, supported),
		})
	}

	v.Current = Option{
		Code:    c.active,
		Label:   strings.ToUpper(c.active),
		FlagSrc: c.tables.Flags.Src(c.active),
		Active:  true,
		Path:    aliases.RewritePath(currentPath, c.active, supported),
	}
	for _, o := range v.Languages {
		if o.Active {
			v.Current = o
			return v
		}
	}
	if len(v.Languages) > 0 {
		v.Current = v.Languages[0]
	}
	return v
}

// Titles maps the internal hrefs of the loaded tree to their titles, for breadcrumb labels.
func (c *Controller) Titles() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return map[string]string{}
	}
	resolver := nav.Resolver{Aliases: c.tables.Aliases}
	supported := c.supportedLocked()
	return nav.Titles(nil, c.roots, func(it nav.Item) string {
		return resolver.Href(it, c.active, supported)
	})
}
