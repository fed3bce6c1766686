package nav

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/RBoekdrukker/imc-frontend/internal/lang"
)

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Breadcrumbs builds breadcrumb entries for a language-prefixed path.
// Rules:
// - Always start with the language home
// - Segments whose href matches a navigation entry use that entry's title
// - Other segments use a prettified label
func Breadcrumbs(currentPath, code string, titles map[string]string) []Crumb {
	if i := strings.IndexAny(currentPath, "?#"); i >= 0 {
		currentPath = currentPath[:i]
	}
	home := "/" + code
	parts := lang.Segments(currentPath)
	if len(parts) > 0 && parts[0] == code {
		parts = parts[1:]
	}

	crumbs := []Crumb{{Href: home, LabelKey: "breadcrumbs.home", Active: len(parts) == 0}}
	href := home
	for i, seg := range parts {
		href += "/" + seg
		c := Crumb{Href: href, Label: titleFromSegment(seg), Active: i == len(parts)-1}
		if t, ok := titles[href]; ok && t != "" {
			c.Label = t
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

// Titles indexes the titles of a resolved tree by href, parents before children.
func Titles(links map[string]string, roots []*Item, href func(Item) string) map[string]string {
	if links == nil {
		links = map[string]string{}
	}
	for _, it := range roots {
		h := href(*it)
		if _, ok := links[h]; !ok && !IsExternal(h) {
			links[h] = it.Title
		}
		Titles(links, it.Children, href)
	}
	return links
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
