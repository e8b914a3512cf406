package extraction

import (
	"fmt"
	"strings"
)

const (
	maxPromptMarkdown = 12000
	maxPromptHTML     = 3000
)

const recipeSchema = `{
  "title": string,
  "description": string|null,
  "ingredients": string[],
  "instructions": string[],
  "servings": number|null,
  "prep_time_minutes": number|null,
  "cook_time_minutes": number|null,
  "cuisine": string|null,
  "difficulty": "Easy"|"Medium"|"Hard"|null,
  "image_url": string|null,
  "chef": string|null
}`

// Prompt is what a Generator receives. Image is optional inline data.
type Prompt struct {
	System string
	Text   string
	Image  *InlineImage
}

// InlineImage is a thumbnail fetched for multimodal models.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// BuildPrompt embeds the platform, source URL, acquired text and the output
// schema into a single instruction.
func BuildPrompt(c Classification, content *AcquiredContent) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Source URL (%s): %s\n", c.Platform, c.URL)
	if author := firstNonEmpty(content.AuthorHandle, c.Author()); author != "" {
		fmt.Fprintf(&b, "Creator: %s\n", author)
	}
	if content.Title != "" {
		fmt.Fprintf(&b, "\nPage title:\n%s\n", content.Title)
	}
	if content.Caption != "" {
		fmt.Fprintf(&b, "\nPost caption:\n%s\n", content.Caption)
	}
	if content.Markdown != "" {
		fmt.Fprintf(&b, "\nScraped markdown:\n%s\n", clip(content.Markdown, maxPromptMarkdown))
	}
	if content.HTML != "" {
		fmt.Fprintf(&b, "\nHTML excerpt (may include OG tags):\n%s\n", clip(content.HTML, maxPromptHTML))
	}
	if !content.HasText() {
		b.WriteString("\nNo page text could be retrieved. Use the image if one is attached, otherwise infer only what the URL itself supports and leave the rest null.\n")
	}

	return Prompt{
		System: systemInstruction(),
		Text:   b.String(),
	}
}

func systemInstruction() string {
	return `You are an expert recipe extractor. Given a social video or web page URL and whatever content was scraped from it, extract a clean, structured recipe.
- Prefer explicit ingredient quantities and ordered steps.
- If you are uncertain, leave fields null rather than inventing data.
- Output STRICT JSON only, no code fences, no prose.

Fields:
` + recipeSchema
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
