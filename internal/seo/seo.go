// Package seo builds the head metadata of rendered pages: canonical link, hreflang
// alternates, Open Graph fields and JSON-LD payloads.
package seo

import (
	"strings"

	"github.com/RBoekdrukker/imc-frontend/internal/lang"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

// Alternate is one hreflang link.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Alternates  []Alternate
	JSONLD      []string
}

// Site carries what the builders need to know about the site.
type Site struct {
	Name    string
	BaseURL string
	Aliases lang.Aliases
	// Supported lists the canonical languages pages exist in, in display order.
	Supported lang.Set
	// Default is the language advertised as x-default.
	Default string
	// Hreflang maps canonical codes whose BCP 47 tag differs, e.g. "ua" to "uk".
	Hreflang map[string]string
}

// Absolute prefixes a site-relative path with the base URL. Without a base URL the path is
// returned unchanged.
func (s Site) Absolute(path string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		return path
	}
	return base + path
}

// Tag returns the BCP 47 tag for a canonical code.
func (s Site) Tag(code string) string {
	if tag, ok := s.Hreflang[code]; ok {
		return tag
	}
	return code
}

// Alternates lists currentPath in every supported language, followed by x-default.
// Query and fragment are dropped.
func (s Site) Alternates(currentPath string) []Alternate {
	path := stripQuery(currentPath)
	out := make([]Alternate, 0, s.Supported.Len()+1)
	for _, code := range s.Supported.Codes() {
		out = append(out, Alternate{
			Href:     s.Absolute(s.Aliases.RewritePath(path, code, s.Supported)),
			Hreflang: s.Tag(code),
		})
	}
	if s.Default != "" {
		out = append(out, Alternate{
			Href:     s.Absolute(s.Aliases.RewritePath(path, s.Default, s.Supported)),
			Hreflang: "x-default",
		})
	}
	return out
}

// Canonical returns the absolute canonical URL of currentPath in code.
func (s Site) Canonical(currentPath, code string) string {
	return s.Absolute(s.Aliases.RewritePath(stripQuery(currentPath), code, s.Supported))
}

// Page assembles the metadata of one page.
func (s Site) Page(title, description, currentPath, code string) Meta {
	full := title
	if s.Name != "" && title != "" && title != s.Name {
		full = title + " | " + s.Name
	} else if title == "" {
		full = s.Name
	}
	canonical := s.Canonical(currentPath, code)
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		Robots:      "index, follow",
		OG: OpenGraph{
			Title:       full,
			Description: description,
			Type:        "website",
			URL:         canonical,
			SiteName:    s.Name,
			Locale:      s.Tag(code),
		},
		Alternates: s.Alternates(currentPath),
	}
}

func stripQuery(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}
