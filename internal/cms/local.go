package cms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RBoekdrukker/imc-frontend/internal/nav"
)

// Local content mirrors the API envelope:
//
//	data:
//	  - id: 1
//	    title: Home
//	    language_code: en
//	    published: true

func (c *Client) localNavigation(lang string) ([]nav.Item, error) {
	var env struct {
		Data []nav.Item `yaml:"data"`
	}
	if err := readLocal(filepath.Join(c.ContentDir(), "navigation.yaml"), &env); err != nil {
		return nil, err
	}
	out := make([]nav.Item, 0, len(env.Data))
	for _, it := range env.Data {
		if it.Published && strings.EqualFold(it.LanguageCode, lang) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out, nil
}

func (c *Client) localLanguages() ([]nav.Language, error) {
	var env struct {
		Data []nav.Language `yaml:"data"`
	}
	if err := readLocal(filepath.Join(c.ContentDir(), "languages.yaml"), &env); err != nil {
		return nil, err
	}
	out := make([]nav.Language, 0, len(env.Data))
	for _, l := range env.Data {
		if l.Published {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out, nil
}

func (c *Client) localBlocks(slug, lang string) ([]ContentBlock, error) {
	var env struct {
		Data []ContentBlock `yaml:"data"`
	}
	if err := readLocal(filepath.Join(c.ContentDir(), "blocks.yaml"), &env); err != nil {
		return nil, err
	}
	out := make([]ContentBlock, 0, blockLimit)
	for _, b := range env.Data {
		if b.Published && b.Slug == slug && strings.EqualFold(b.LanguageCode, lang) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > blockLimit {
		out = out[:blockLimit]
	}
	return out, nil
}

func (c *Client) localHero() (Hero, error) {
	var env struct {
		Data *Hero `yaml:"data"`
	}
	if err := readLocal(filepath.Join(c.ContentDir(), "hero.yaml"), &env); err != nil {
		return Hero{}, err
	}
	if env.Data == nil {
		return Hero{}, ErrNotFound
	}
	return *env.Data, nil
}

func (c *Client) localHomeSections() ([]HomeSection, error) {
	var env struct {
		Data []HomeSection `yaml:"data"`
	}
	if err := readLocal(filepath.Join(c.ContentDir(), "home_sections.yaml"), &env); err != nil {
		return nil, err
	}
	out := make([]HomeSection, 0, len(env.Data))
	for _, s := range env.Data {
		if s.Published {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *Client) localArticle(slug, lang string) (Article, error) {
	var env struct {
		Data []Article `yaml:"data"`
	}
	if err := readLocal(filepath.Join(c.ContentDir(), "articles.yaml"), &env); err != nil {
		return Article{}, err
	}
	for _, a := range env.Data {
		if a.Published && a.Slug == slug && strings.EqualFold(a.LanguageCode, lang) {
			return a, nil
		}
	}
	return Article{}, ErrNotFound
}

// readLocal decodes a YAML file into out. A missing file leaves out empty.
func readLocal(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cms: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cms: parse %s: %w", path, err)
	}
	return nil
}
