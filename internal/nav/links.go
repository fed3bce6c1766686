package nav

import (
	"regexp"
	"strings"

	"github.com/RBoekdrukker/imc-frontend/internal/lang"
)

var absoluteURL = regexp.MustCompile(`(?i)^(https?:)?//`)

// IsExternal reports whether url leaves the site: absolute http(s), protocol-relative,
// mailto: or tel: links.
func IsExternal(url string) bool {
	return absoluteURL.MatchString(url) ||
		strings.HasPrefix(url, "mailto:") ||
		strings.HasPrefix(url, "tel:")
}

// Resolver turns navigation records into hrefs for one target language.
type Resolver struct {
	Aliases lang.Aliases
}

// Href resolves the link of item for target. External links are returned untouched, every
// internal link carries the target language exactly once.
func (r Resolver) Href(item Item, target string, supported lang.Set) string {
	target = r.Aliases.Canonical(target)

	if item.URL != "" {
		if IsExternal(item.URL) {
			return item.URL
		}
		u := item.URL
		if !strings.HasPrefix(u, "/") {
			u = "/" + u
		}
		return r.Aliases.RewritePath(u, target, supported)
	}

	if slug := strings.TrimSpace(item.Slug); slug != "" {
		return "/" + target + "/" + slug
	}
	return "/" + target
}

// IsActive reports whether href points at currentPath or one of its ancestors.
// The language root only matches itself.
func IsActive(href, currentPath string, supported lang.Set, aliases lang.Aliases) bool {
	if href == "" || IsExternal(href) {
		return false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if i := strings.IndexAny(currentPath, "?#"); i >= 0 {
		currentPath = currentPath[:i]
	}
	hrefSegs := lang.Segments(href)
	curSegs := lang.Segments(currentPath)
	if len(hrefSegs) > len(curSegs) || len(hrefSegs) == 0 {
		return false
	}
	for i, seg := range hrefSegs {
		if seg != curSegs[i] {
			return false
		}
	}
	if len(hrefSegs) == 1 && supported.Contains(aliases.Canonical(hrefSegs[0])) {
		return len(curSegs) == 1
	}
	return true
}
