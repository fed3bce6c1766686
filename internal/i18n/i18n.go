package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/RBoekdrukker/imc-frontend/internal/lang"
)

// Bundle holds UI strings per canonical language.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported lang.Set
	aliases   lang.Aliases

	// matcher picks among tagCodes; index 0 is the fallback.
	matcher  language.Matcher
	tagCodes []string
}

// Load reads {dir}/{code}.json for every supported language. Only the fallback file is
// mandatory.
func Load(dir string, fallback string, supported lang.Set, aliases lang.Aliases) (*Bundle, error) {
	fallback = aliases.Canonical(fallback)
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: supported,
		aliases:   aliases,
	}
	for _, code := range supported.Codes() {
		raw, err := os.ReadFile(filepath.Join(dir, code+".json"))
		if err != nil {
			// allow missing file for non-default locales
			if code == fallback {
				return nil, fmt.Errorf("load locale %s: %w", code, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", code, err)
		}
		b.dict[code] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	b.buildMatcher()
	return b, nil
}

// buildMatcher gives every supported code a BCP 47 tag. A code that is not a language subtag
// itself ("ua") borrows the tag of an alias pointing at it ("uk"). Codes without any tag can
// be reached through the URL only.
func (b *Bundle) buildMatcher() {
	codes := append([]string{b.fallback}, b.supported.Codes()...)
	seen := map[string]struct{}{}
	var tags []language.Tag
	for _, code := range codes {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		tag, ok := b.tagFor(code)
		if !ok {
			continue
		}
		tags = append(tags, tag)
		b.tagCodes = append(b.tagCodes, code)
	}
	b.matcher = language.NewMatcher(tags)
}

func (b *Bundle) tagFor(code string) (language.Tag, bool) {
	candidates := []string{code}
	for _, alias := range b.aliases.Keys() {
		if b.aliases.Canonical(alias) == code {
			candidates = append(candidates, alias)
		}
	}
	for _, c := range candidates {
		if base, err := language.ParseBase(c); err == nil {
			return language.Make(base.String()), true
		}
	}
	return language.Tag{}, false
}

// Supported returns the supported canonical codes in configuration order.
func (b *Bundle) Supported() []string { return b.supported.Codes() }

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(code, key string) string {
	if m, ok := b.dict[b.aliases.Canonical(code)]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := b.dict[b.fallback][key]; ok {
		return v
	}
	return key
}

// Resolve chooses the best supported language from an Accept-Language header with the
// x/text matcher, so "uk-UA" selects the site's Ukrainian and "de-CH" German.
func (b *Bundle) Resolve(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 || b.matcher == nil {
		return b.fallback
	}
	_, index, confidence := b.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(b.tagCodes) {
		return b.fallback
	}
	return b.tagCodes[index]
}
