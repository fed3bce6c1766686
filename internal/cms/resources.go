package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/RBoekdrukker/imc-frontend/internal/nav"
)

const (
	navigationResource = "items/navigation_items"
	languagesResource  = "items/languages"
	blocksResource     = "items/content_blocks"

	navigationFields = "id,title,slug,url,parent_id,language_code,sort"
	languageFields   = "id,language_code,label,flag_emoji,sort"
	blockLimit       = 6
)

// ContentBlock is a card shown on a content page.
type ContentBlock struct {
	ID           int     `json:"content_block_id" yaml:"content_block_id"`
	Slug         string  `json:"slug" yaml:"slug"`
	LanguageCode string  `json:"language_code" yaml:"language_code"`
	Title        string  `json:"title" yaml:"title"`
	Subtitle     string  `json:"subtitle" yaml:"subtitle"`
	Type         string  `json:"type" yaml:"type"`
	ImageFile    FileRef `json:"image_file" yaml:"image_file"`
	Details      string  `json:"details" yaml:"details"`
	DetailSlug   string  `json:"detail_slug" yaml:"detail_slug"`
	Format       string  `json:"format" yaml:"format"`
	Published    bool    `json:"-" yaml:"published"`
}

// FileRef is a file id that the API sends either as a string or as {"id": "..."}.
type FileRef string

// UnmarshalJSON accepts null, a string id or an object carrying an id.
func (f *FileRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FileRef(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*f = FileRef(obj.ID)
	return nil
}

// NavigationItems returns the published navigation records of one language, sorted by sort key.
func (c *Client) NavigationItems(ctx context.Context, lang string) ([]nav.Item, error) {
	lang = normalizeLang(lang)
	if !c.Remote() {
		return c.localNavigation(lang)
	}
	params := url.Values{}
	params.Set("filter[language_code][_eq]", lang)
	params.Set("filter[published][_eq]", "true")
	params.Set("fields", navigationFields)
	params.Add("sort[]", "sort")

	var items []nav.Item
	if err := c.Fetch(ctx, navigationResource, params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Languages returns the published site languages, sorted by sort key.
func (c *Client) Languages(ctx context.Context) ([]nav.Language, error) {
	if !c.Remote() {
		return c.localLanguages()
	}
	params := url.Values{}
	params.Set("filter[published][_eq]", "true")
	params.Set("fields", languageFields)
	params.Add("sort[]", "sort")

	var langs []nav.Language
	if err := c.Fetch(ctx, languagesResource, params, &langs); err != nil {
		return nil, err
	}
	for i := range langs {
		langs[i].Published = true
	}
	return langs, nil
}

// ContentBlocks returns up to six published blocks for a page slug in one language.
func (c *Client) ContentBlocks(ctx context.Context, slug, lang string) ([]ContentBlock, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return nil, ErrNotFound
	}
	lang = normalizeLang(lang)
	if !c.Remote() {
		return c.localBlocks(slug, lang)
	}
	params := url.Values{}
	params.Set("filter[slug][_eq]", slug)
	params.Set("filter[language_code][_eq]", lang)
	params.Set("filter[published][_eq]", "true")
	params.Set("sort", "content_block_id")
	params.Set("limit", strconv.Itoa(blockLimit))
	params.Set("fields", "*.*")

	var blocks []ContentBlock
	if err := c.Fetch(ctx, blocksResource, params, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func normalizeLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") {
		return ""
	}
	return slug
}
