package extraction

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var plainText = bluemonday.StrictPolicy()

// pageMeta is the metadata a recipe page usually advertises in its head.
type pageMeta struct {
	Title       string
	Description string
	Image       string
	Author      string
	Recipes     []string // raw schema.org Recipe JSON-LD blocks
}

func parsePageMeta(doc string) pageMeta {
	var m pageMeta
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return m
	}

	meta := func(selectors ...string) string {
		for _, sel := range selectors {
			if v, ok := d.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
	m.Title = meta(`meta[property="og:title"]`, `meta[name="twitter:title"]`)
	if m.Title == "" {
		m.Title = strings.TrimSpace(d.Find("title").First().Text())
	}
	m.Description = meta(`meta[property="og:description"]`, `meta[name="description"]`)
	m.Image = meta(`meta[property="og:image"]`, `meta[property="og:image:url"]`, `meta[name="twitter:image"]`)
	m.Author = meta(`meta[name="author"]`, `meta[property="article:author"]`)

	d.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if isRecipeLD(raw) {
			m.Recipes = append(m.Recipes, raw)
		}
	})
	return m
}

// isRecipeLD reports whether a JSON-LD block describes a schema.org Recipe,
// either directly, in an array, or inside an @graph.
func isRecipeLD(raw string) bool {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return false
	}
	var walk func(any) bool
	walk = func(n any) bool {
		switch t := n.(type) {
		case []any:
			for _, e := range t {
				if walk(e) {
					return true
				}
			}
		case map[string]any:
			switch typ := t["@type"].(type) {
			case string:
				if typ == "Recipe" {
					return true
				}
			case []any:
				for _, e := range typ {
					if e == "Recipe" {
						return true
					}
				}
			}
			if g, ok := t["@graph"]; ok {
				return walk(g)
			}
		}
		return false
	}
	return walk(v)
}

// htmlToMarkdown isolates the main content with readability and converts
// it to markdown. When readability finds nothing the whole document is used.
func htmlToMarkdown(doc, pageURL string) (string, error) {
	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil {
		base = u
	}

	source := doc
	if article, err := readability.FromReader(strings.NewReader(doc), base); err == nil {
		var buf strings.Builder
		if err := article.RenderHTML(&buf); err == nil && strings.TrimSpace(buf.String()) != "" {
			source = buf.String()
		}
	}

	md, err := htmltomarkdown.ConvertString(source)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// stripTags turns caption HTML into plain text.
func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

// contentFromHTML builds AcquiredContent from a raw page.
func contentFromHTML(doc, pageURL, source string) (*AcquiredContent, error) {
	meta := parsePageMeta(doc)
	md, err := htmlToMarkdown(doc, pageURL)
	if err != nil {
		return nil, err
	}
	if len(meta.Recipes) > 0 {
		md = md + "\n\nStructured recipe data:\n" + strings.Join(meta.Recipes, "\n")
	}

	out := &AcquiredContent{
		Markdown:     md,
		HTML:         doc,
		Title:        meta.Title,
		Caption:      stripTags(meta.Description),
		AuthorHandle: meta.Author,
		ThumbnailURL: absoluteURL(pageURL, meta.Image),
		FinalURL:     pageURL,
		Sources:      []string{source},
	}
	if strings.TrimSpace(out.Markdown+out.Title+out.Caption) == "" {
		return nil, fmt.Errorf("%s: page has no readable content", source)
	}
	return out, nil
}

func absoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return r.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}
