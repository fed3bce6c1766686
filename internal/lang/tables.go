package lang

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flags maps canonical language codes to flag image paths.
type Flags struct {
	m map[string]string
}

// DefaultFlags mirrors the flag images shipped under public/assets/flags.
func DefaultFlags() Flags {
	return NewFlags(map[string]string{
		"en": "/assets/flags/en.svg",
		"gb": "/assets/flags/en.svg",
		"de": "/assets/flags/de.svg",
		"ua": "/assets/flags/ua.svg",
		"uk": "/assets/flags/ua.svg",
	})
}

// NewFlags copies src into an immutable table with lowercased keys.
func NewFlags(src map[string]string) Flags {
	m := make(map[string]string, len(src))
	for k, v := range src {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		m[k] = v
	}
	return Flags{m: m}
}

// Src returns the flag image for a canonical code, or "".
func (f Flags) Src(code string) string {
	return f.m[strings.ToLower(code)]
}

// Tables bundles the process-wide language tables.
type Tables struct {
	Aliases Aliases
	Flags   Flags
}

// DefaultTables returns the built-in alias and flag tables.
func DefaultTables() Tables {
	return Tables{Aliases: DefaultAliases(), Flags: DefaultFlags()}
}

type tablesFile struct {
	Aliases map[string]string `yaml:"aliases"`
	Flags   map[string]string `yaml:"flags"`
}

// LoadTables reads a YAML site file of the form
//
//	aliases:
//	  gb: en
//	flags:
//	  en: /assets/flags/en.svg
//
// Sections missing from the file keep their defaults. An empty path returns the defaults.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if strings.TrimSpace(path) == "" {
		return tables, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("lang: read site file: %w", err)
	}
	var file tablesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Tables{}, fmt.Errorf("lang: parse site file %s: %w", path, err)
	}
	if file.Aliases != nil {
		tables.Aliases = NewAliases(file.Aliases)
	}
	if file.Flags != nil {
		tables.Flags = NewFlags(file.Flags)
	}
	return tables, nil
}
