package lang

import "strings"

// RewritePath swaps or inserts the language segment of fullPath.
//
// Everything from the first '?' or '#' onward is kept verbatim. When the first path segment
// canonicalizes to a code in supported it is replaced by the canonical target, otherwise the
// target is inserted in front. The root path yields "/{target}".
// An empty target removes a leading language segment instead.
func (a Aliases) RewritePath(fullPath, target string, supported Set) string {
	target = a.Canonical(target)

	pathOnly, suffix := fullPath, ""
	if i := strings.IndexAny(fullPath, "?#"); i >= 0 {
		pathOnly, suffix = fullPath[:i], fullPath[i:]
	}

	segments := Segments(pathOnly)
	hasLang := len(segments) > 0 && supported.Contains(a.Canonical(segments[0]))

	switch {
	case target == "" && hasLang:
		segments = segments[1:]
	case target == "":
	case hasLang:
		segments[0] = target
	default:
		segments = append([]string{target}, segments...)
	}
	return "/" + strings.Join(segments, "/") + suffix
}

// Segments splits a path into its non-empty segments.
func Segments(p string) []string {
	raw := strings.Split(p, "/")
	out := raw[:0]
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FromPath returns the canonical language named by the first segment of fullPath when it is
// supported. The second result is false when the path carries no supported language.
func (a Aliases) FromPath(fullPath string, supported Set) (string, bool) {
	if i := strings.IndexAny(fullPath, "?#"); i >= 0 {
		fullPath = fullPath[:i]
	}
	segments := Segments(fullPath)
	if len(segments) == 0 {
		return "", false
	}
	code := a.Canonical(segments[0])
	if !supported.Contains(code) {
		return "", false
	}
	return code, true
}
