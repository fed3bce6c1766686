// Package lang canonicalizes language codes and rewrites the language segment of site paths.
//
// The alias and flag tables are built once at startup and passed by value into the
// functions that need them. Nothing in this package holds mutable package state.
package lang

import (
	"sort"
	"strings"
)

// Aliases maps historical or regionally ambiguous codes to canonical ones.
// The zero value maps nothing and only lowercases.
type Aliases struct {
	m map[string]string
}

// DefaultAliases returns the table the site ships with: "gb" is English and "uk" is Ukrainian.
func DefaultAliases() Aliases {
	return NewAliases(map[string]string{
		"gb": "en",
		"uk": "ua",
	})
}

// NewAliases copies src into an immutable table. Keys and values are lowercased.
func NewAliases(src map[string]string) Aliases {
	m := make(map[string]string, len(src))
	for k, v := range src {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		if k == "" || v == "" {
			continue
		}
		m[k] = v
	}
	return Aliases{m: m}
}

// Canonical returns the canonical code for code. Unknown codes come back lowercased.
func (a Aliases) Canonical(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if v, ok := a.m[code]; ok {
		return v
	}
	return code
}

// IsAlias reports whether code is a key of the table.
func (a Aliases) IsAlias(code string) bool {
	_, ok := a.m[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// Keys returns the alias codes in sorted order.
func (a Aliases) Keys() []string {
	out := make([]string, 0, len(a.m))
	for k := range a.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set builds a supported-language set, canonicalizing each code through the table.
func (a Aliases) Set(codes ...string) Set {
	s := Set{index: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		c = a.Canonical(c)
		if c == "" {
			continue
		}
		if _, dup := s.index[c]; dup {
			continue
		}
		s.index[c] = struct{}{}
		s.codes = append(s.codes, c)
	}
	return s
}
