package nav

// Item is a navigation record as stored in the content API.
// Children is filled by BuildTree and is never read from source data.
type Item struct {
	ID           int     `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	Slug         string  `json:"slug,omitempty" yaml:"slug"`
	URL          string  `json:"url,omitempty" yaml:"url"`
	ParentID     *int    `json:"parent_id,omitempty" yaml:"parent_id"`
	LanguageCode string  `json:"language_code" yaml:"language_code"`
	Sort         int     `json:"sort" yaml:"sort"`
	Published    bool    `json:"-" yaml:"published"`
	Children     []*Item `json:"-" yaml:"-"`
}

// Language is a published site language.
type Language struct {
	ID        int    `json:"id" yaml:"id"`
	Code      string `json:"language_code" yaml:"language_code"`
	Label     string `json:"label" yaml:"label"`
	FlagEmoji string `json:"flag_emoji,omitempty" yaml:"flag_emoji"`
	Sort      int    `json:"sort" yaml:"sort"`
	Published bool   `json:"published" yaml:"published"`
}
