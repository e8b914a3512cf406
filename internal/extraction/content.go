package extraction

import "strings"

// AcquiredContent is whatever could be obtained about a URL. Any field may
// be empty; Sources lists the strategies that contributed.
type AcquiredContent struct {
	Markdown     string   `json:"markdown,omitempty"`
	HTML         string   `json:"html,omitempty"`
	Caption      string   `json:"caption,omitempty"`
	Title        string   `json:"title,omitempty"`
	AuthorHandle string   `json:"author_handle,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	FinalURL     string   `json:"final_url,omitempty"`
	Sources      []string `json:"sources,omitempty"`
}

// HasText reports whether there is anything for the model to read.
func (c *AcquiredContent) HasText() bool {
	return c != nil && strings.TrimSpace(c.Markdown+c.HTML+c.Caption+c.Title) != ""
}

// IsEmpty reports whether no field carries information.
func (c *AcquiredContent) IsEmpty() bool {
	return c == nil || (!c.HasText() && c.AuthorHandle == "" && c.ThumbnailURL == "")
}

// Merge fills empty fields of c from other. Populated fields are kept.
func (c *AcquiredContent) Merge(other *AcquiredContent) {
	if other == nil {
		return
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Markdown, other.Markdown)
	fill(&c.HTML, other.HTML)
	fill(&c.Caption, other.Caption)
	fill(&c.Title, other.Title)
	fill(&c.AuthorHandle, other.AuthorHandle)
	fill(&c.ThumbnailURL, other.ThumbnailURL)
	fill(&c.FinalURL, other.FinalURL)
	c.Sources = append(c.Sources, other.Sources...)
}
