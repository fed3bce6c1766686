package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	heroResource         = "items/hero_section"
	homeSectionsResource = "items/home_sections"
	articlesResource     = "items/articles"

	heroFields = "title,subtitle,background_image.id"
)

// Hero is the singleton banner of the home page.
type Hero struct {
	Title           string  `json:"title" yaml:"title"`
	Subtitle        string  `json:"subtitle" yaml:"subtitle"`
	BackgroundImage FileRef `json:"background_image" yaml:"background_image"`
}

// HomeSection is a card of the home page grid. DetailSlug names the article it links to.
type HomeSection struct {
	ID              int     `json:"id" yaml:"id"`
	Title           string  `json:"title" yaml:"title"`
	Subtitle        string  `json:"subtitle" yaml:"subtitle"`
	DetailSlug      string  `json:"detail_slug" yaml:"detail_slug"`
	BackgroundImage FileRef `json:"background_image" yaml:"background_image"`
	Published       bool    `json:"published" yaml:"published"`
}

// Article is a service detail page.
type Article struct {
	ID           int     `json:"article_id" yaml:"article_id"`
	Title        string  `json:"title" yaml:"title"`
	Slug         string  `json:"slug" yaml:"slug"`
	LanguageCode string  `json:"language_code" yaml:"language_code"`
	Intro        string  `json:"intro" yaml:"intro"`
	Body         string  `json:"body" yaml:"body"`
	HeroImage    FileRef `json:"hero_image" yaml:"hero_image"`
	Published    bool    `json:"-" yaml:"published"`
}

// Hero returns the home page banner. The API may send the singleton as an object or as a
// one-element list; an empty answer is ErrNotFound.
func (c *Client) Hero(ctx context.Context) (Hero, error) {
	if !c.Remote() {
		return c.localHero()
	}
	params := url.Values{}
	params.Set("fields", heroFields)

	var raw json.RawMessage
	if err := c.Fetch(ctx, heroResource, params, &raw); err != nil {
		return Hero{}, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return Hero{}, ErrNotFound
	}
	if raw[0] == '[' {
		var list []Hero
		if err := json.Unmarshal(raw, &list); err != nil {
			return Hero{}, fmt.Errorf("cms: decode %s: %w", heroResource, err)
		}
		if len(list) == 0 {
			return Hero{}, ErrNotFound
		}
		return list[0], nil
	}
	var hero Hero
	if err := json.Unmarshal(raw, &hero); err != nil {
		return Hero{}, fmt.Errorf("cms: decode %s: %w", heroResource, err)
	}
	return hero, nil
}

// HomeSections returns the published home page cards ordered by id. Sections are shared by
// every language.
func (c *Client) HomeSections(ctx context.Context) ([]HomeSection, error) {
	if !c.Remote() {
		return c.localHomeSections()
	}
	params := url.Values{}
	params.Set("filter[published][_eq]", "true")
	params.Set("sort", "id")
	params.Set("fields", "*.*")

	var sections []HomeSection
	if err := c.Fetch(ctx, homeSectionsResource, params, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// Article returns the published article with slug in one language, or ErrNotFound.
func (c *Client) Article(ctx context.Context, slug, lang string) (Article, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Article{}, ErrNotFound
	}
	lang = normalizeLang(lang)
	if !c.Remote() {
		return c.localArticle(slug, lang)
	}
	params := url.Values{}
	params.Set("filter[slug][_eq]", slug)
	params.Set("filter[language_code][_eq]", lang)
	params.Set("filter[published][_eq]", "true")
	params.Set("limit", "1")
	params.Set("fields", "*.*")

	var articles []Article
	if err := c.Fetch(ctx, articlesResource, params, &articles); err != nil {
		return Article{}, err
	}
	if len(articles) == 0 {
		return Article{}, ErrNotFound
	}
	return articles[0], nil
}
