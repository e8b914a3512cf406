package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pageza/recipebox/backend/internal/models"
)

const (
	// UntitledRecipe is used when nothing usable came back for a title.
	UntitledRecipe = "Untitled Recipe"

	MaxIngredients  = 50
	MaxInstructions = 100
	maxTitleRunes   = 255

	// Column widths of the recipes table.
	maxDifficultyRunes = 32
	maxCuisineRunes    = 100
	maxChefRunes       = 255
)

// Candidate is the untrusted structure produced by the model. Every value
// may be of any JSON type.
type Candidate map[string]any

var leadingInt = regexp.MustCompile(`^\s*([+-]?\d+)`)

// Normalize coerces a candidate into a Recipe. It never fails: whatever the
// input, the result has a non-empty title, non-nil ingredient and
// instruction lists, and integer-or-nil numeric fields.
func Normalize(c Candidate, fallbackImage, fallbackAuthor string) models.Recipe {
	r := models.Recipe{
		Title:        firstString(c, "title", "name"),
		Description:  optionalString(c, "description", "summary"),
		Ingredients:  stringList(c["ingredients"], MaxIngredients),
		Instructions: stringList(firstPresent(c, "instructions", "steps"), MaxInstructions),
		PrepTime:     nonNegativeInt(firstPresent(c, "prep_time_minutes", "prep_time")),
		CookTime:     nonNegativeInt(firstPresent(c, "cook_time_minutes", "cook_time", "total_time_minutes")),
		Servings:     positiveInt(firstPresent(c, "servings", "yield")),
		Difficulty:   difficulty(clipRunes(optionalString(c, "difficulty"), maxDifficultyRunes)),
		Cuisine:      clipRunes(optionalString(c, "cuisine"), maxCuisineRunes),
		Chef:         optionalString(c, "chef", "author"),
		ImageURL:     httpURL(asString(c["image_url"])),
		SourceURL:    httpURL(asString(c["source_url"])),
	}

	if r.Title == "" {
		r.Title = UntitledRecipe
	}
	if runes := []rune(r.Title); len(runes) > maxTitleRunes {
		r.Title = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	if r.ImageURL == nil {
		r.ImageURL = httpURL(fallbackImage)
	}
	if r.Chef == nil {
		r.Chef = nonEmpty(fallbackAuthor)
	}
	r.Chef = clipRunes(r.Chef, maxChefRunes)
	return r
}

// CandidateFromRecipe turns a recipe back into candidate form, so that
// Normalize(CandidateFromRecipe(r), "", "") reproduces r's content.
func CandidateFromRecipe(r models.Recipe) Candidate {
	c := Candidate{
		"title":        r.Title,
		"ingredients":  []string(r.Ingredients),
		"instructions": []string(r.Instructions),
	}
	put := func(key string, s *string) {
		if s != nil {
			c[key] = *s
		}
	}
	putInt := func(key string, n *int) {
		if n != nil {
			c[key] = *n
		}
	}
	put("description", r.Description)
	put("difficulty", r.Difficulty)
	put("cuisine", r.Cuisine)
	put("chef", r.Chef)
	put("image_url", r.ImageURL)
	put("source_url", r.SourceURL)
	putInt("prep_time", r.PrepTime)
	putInt("cook_time", r.CookTime)
	putInt("servings", r.Servings)
	return c
}

func firstPresent(c Candidate, keys ...string) any {
	for _, k := range keys {
		if v, ok := c[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(c Candidate, keys ...string) string {
	for _, k := range keys {
		if s := asString(c[k]); s != "" {
			return s
		}
	}
	return ""
}

func optionalString(c Candidate, keys ...string) *string {
	return nonEmpty(firstString(c, keys...))
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// clipRunes cuts s to at most n runes and drops trailing whitespace left
// by the cut.
func clipRunes(s *string, n int) *string {
	if s == nil {
		return nil
	}
	if runes := []rune(*s); len(runes) > n {
		return nonEmpty(string(runes[:n]))
	}
	return s
}

// asString renders scalars as trimmed text. Containers yield "".
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func stringList(v any, limit int) models.JSONBStringArray {
	out := models.JSONBStringArray{}
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		items = make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
	default:
		return out
	}

	for _, item := range items {
		if len(out) >= limit {
			break
		}
		var s string
		if m, ok := item.(map[string]any); ok {
			s = flattenItem(m)
		} else {
			s = asString(item)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// flattenItem turns {"quantity":"2","unit":"cups","name":"flour"} style
// objects into a single line.
func flattenItem(m map[string]any) string {
	for _, k := range []string{"text", "step", "instruction", "description"} {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	var parts []string
	for _, keys := range [][]string{{"quantity", "amount"}, {"unit"}, {"name", "item", "ingredient"}} {
		for _, k := range keys {
			if s := asString(m[k]); s != "" {
				parts = append(parts, s)
				break
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// lenientInt parses the leading integer of v. Fractions are truncated.
func lenientInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || math.Abs(t) > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		if t > math.MaxInt32 || t < math.MinInt32 {
			return 0, false
		}
		return int(t), true
	case json.Number:
		return lenientInt(t.String())
	case string:
		m := leadingInt.FindStringSubmatch(t)
		if m == nil {
			return 0, false
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func nonNegativeInt(v any) *int {
	n, ok := lenientInt(v)
	if !ok || n < 0 {
		return nil
	}
	return &n
}

func positiveInt(v any) *int {
	n, ok := lenientInt(v)
	if !ok || n <= 0 {
		return nil
	}
	return &n
}

func difficulty(s *string) *string {
	if s == nil {
		return nil
	}
	switch strings.ToLower(*s) {
	case "easy":
		return strPtr("Easy")
	case "medium":
		return strPtr("Medium")
	case "hard":
		return strPtr("Hard")
	}
	return s
}

func httpURL(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}
	return &raw
}

func strPtr(s string) *string { return &s }

// String renders a candidate for prompts and debugging.
func (c Candidate) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(c))
	}
	return string(b)
}
