package extraction

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
)

func assertWellFormed(t *testing.T, r models.Recipe) {
	t.Helper()
	assert.NotEmpty(t, strings.TrimSpace(r.Title))
	assert.NotNil(t, r.Ingredients)
	assert.NotNil(t, r.Instructions)
	for _, n := range []*int{r.PrepTime, r.CookTime} {
		if n != nil {
			assert.GreaterOrEqual(t, *n, 0)
		}
	}
	if r.Servings != nil {
		assert.Greater(t, *r.Servings, 0)
	}
	for _, s := range append(append([]string{}, r.Ingredients...), r.Instructions...) {
		assert.Equal(t, strings.TrimSpace(s), s)
		assert.NotEmpty(t, s)
	}
}

func TestNormalizeNeverPanicsOnMalformedInput(t *testing.T) {
	inputs := []Candidate{
		nil,
		{},
		{"title": nil, "ingredients": nil, "instructions": nil},
		{"title": 42, "ingredients": "flour, sugar", "instructions": map[string]any{"1": "mix"}},
		{"title": map[string]any{"en": "Soup"}, "ingredients": []any{nil, 3, true, []any{"x"}, "  "}},
		{"title": []any{"a"}, "servings": "NaN", "prep_time": math.NaN(), "cook_time": math.Inf(1)},
		{"prep_time_minutes": "-5", "cook_time_minutes": -3.0, "servings": 0},
		{"prep_time": "9999999999999999999999", "servings": 1e300},
		{"image_url": "javascript:alert(1)", "chef": []any{}},
		{"difficulty": 7, "cuisine": false, "description": map[string]any{}},
	}
	for i, in := range inputs {
		t.Run(fmt.Sprintf("input %d", i), func(t *testing.T) {
			var r models.Recipe
			require.NotPanics(t, func() { r = Normalize(in, "", "") })
			assertWellFormed(t, r)
		})
	}
}

func TestNormalizeFields(t *testing.T) {
	c := Candidate{
		"name":              "  Garlic Pasta ",
		"description":       "Quick weeknight dinner",
		"ingredients":       []any{" 2 cups pasta ", "", "3 cloves garlic", map[string]any{"quantity": "1", "unit": "tbsp", "name": "olive oil"}},
		"instructions":      []any{"Boil pasta", map[string]any{"step": "Sauté garlic"}, "   "},
		"prep_time_minutes": "10 minutes",
		"cook_time":         12.9,
		"servings":          "4 people",
		"difficulty":        "EASY",
		"cuisine":           "Italian",
		"image_url":         "https://cdn.example.com/pasta.jpg",
	}

	r := Normalize(c, "https://fallback/img.jpg", "@fallback")

	assert.Equal(t, "Garlic Pasta", r.Title)
	assert.Equal(t, "Quick weeknight dinner", *r.Description)
	assert.Equal(t, models.JSONBStringArray{"2 cups pasta", "3 cloves garlic", "1 tbsp olive oil"}, r.Ingredients)
	assert.Equal(t, models.JSONBStringArray{"Boil pasta", "Sauté garlic"}, r.Instructions)
	assert.Equal(t, 10, *r.PrepTime)
	assert.Equal(t, 12, *r.CookTime)
	assert.Equal(t, 4, *r.Servings)
	assert.Equal(t, "Easy", *r.Difficulty)
	assert.Equal(t, "Italian", *r.Cuisine)
	assert.Equal(t, "https://cdn.example.com/pasta.jpg", *r.ImageURL)
	assert.Equal(t, "@fallback", *r.Chef)
}

func TestNormalizeDefaults(t *testing.T) {
	r := Normalize(Candidate{}, "", "")
	assert.Equal(t, UntitledRecipe, r.Title)
	assert.Empty(t, r.Ingredients)
	assert.Empty(t, r.Instructions)
	assert.Nil(t, r.Description)
	assert.Nil(t, r.PrepTime)
	assert.Nil(t, r.Servings)
	assert.Nil(t, r.ImageURL)
	assert.Nil(t, r.Chef)
}

func TestNormalizeFallbacks(t *testing.T) {
	t.Run("fallback image and author used when candidate has none", func(t *testing.T) {
		r := Normalize(Candidate{"title": "x"}, "https://img.youtube.com/vi/a/hqdefault.jpg", "@cook")
		assert.Equal(t, "https://img.youtube.com/vi/a/hqdefault.jpg", *r.ImageURL)
		assert.Equal(t, "@cook", *r.Chef)
	})

	t.Run("candidate values win", func(t *testing.T) {
		r := Normalize(Candidate{"chef": "Jane", "image_url": "http://x/y.png"}, "https://other/z.png", "@cook")
		assert.Equal(t, "http://x/y.png", *r.ImageURL)
		assert.Equal(t, "Jane", *r.Chef)
	})

	t.Run("invalid candidate image falls back", func(t *testing.T) {
		r := Normalize(Candidate{"image_url": "/relative.png"}, "https://other/z.png", "")
		assert.Equal(t, "https://other/z.png", *r.ImageURL)
	})

	t.Run("total time used when cook time missing", func(t *testing.T) {
		r := Normalize(Candidate{"total_time_minutes": 45}, "", "")
		assert.Equal(t, 45, *r.CookTime)
	})
}

func TestNormalizeCapsLists(t *testing.T) {
	ingredients := make([]any, 80)
	steps := make([]any, 150)
	for i := range ingredients {
		ingredients[i] = fmt.Sprintf("item %d", i)
	}
	for i := range steps {
		steps[i] = fmt.Sprintf("step %d", i)
	}
	r := Normalize(Candidate{"ingredients": ingredients, "instructions": steps}, "", "")
	assert.Len(t, r.Ingredients, MaxIngredients)
	assert.Len(t, r.Instructions, MaxInstructions)
	assert.Equal(t, "item 0", r.Ingredients[0])
	assert.Equal(t, "step 99", r.Instructions[99])
}

func TestNormalizeLongTitle(t *testing.T) {
	r := Normalize(Candidate{"title": strings.Repeat("é", 400)}, "", "")
	assert.Equal(t, 255, len([]rune(r.Title)))
}

func TestNormalizeClipsShortFields(t *testing.T) {
	r := Normalize(Candidate{
		"difficulty": "Medium - needs some knife skills and a bit of patience with the dough",
		"cuisine":    strings.Repeat("ñ", 143),
		"chef":       strings.Repeat("x", 300),
	}, "", "")

	require.NotNil(t, r.Difficulty)
	require.NotNil(t, r.Cuisine)
	require.NotNil(t, r.Chef)
	assert.LessOrEqual(t, len([]rune(*r.Difficulty)), 32)
	assert.Equal(t, 100, len([]rune(*r.Cuisine)))
	assert.Equal(t, 255, len([]rune(*r.Chef)))

	fromURL := Normalize(Candidate{}, "", strings.Repeat("a", 400))
	require.NotNil(t, fromURL.Chef)
	assert.Equal(t, 255, len(*fromURL.Chef))

	again := Normalize(CandidateFromRecipe(r), "", "")
	assert.Equal(t, r.Difficulty, again.Difficulty)
	assert.Equal(t, r.Cuisine, again.Cuisine)
	assert.Equal(t, r.Chef, again.Chef)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []Candidate{
		{},
		{"title": " Soup ", "ingredients": []any{"water", " salt "}, "servings": "2", "difficulty": "medium"},
		{"name": "Stew", "prep_time": -1, "cook_time_minutes": "90", "image_url": "nope"},
		{"title": "Tacos", "chef": "@taco", "source_url": "https://example.com/tacos", "cuisine": "Mexican"},
		PlaceholderCandidate("caption text"),
		{"title": "Bread", "difficulty": "medium                          crumb", "cuisine": strings.Repeat("c", 120)},
	}

	for i, in := range inputs {
		t.Run(fmt.Sprintf("input %d", i), func(t *testing.T) {
			once := Normalize(in, "https://img/x.jpg", "@fallback")

			twice := Normalize(CandidateFromRecipe(once), "", "")
			assert.Equal(t, once, twice)

			data, err := json.Marshal(once)
			require.NoError(t, err)
			var fromJSON Candidate
			require.NoError(t, json.Unmarshal(data, &fromJSON))
			assert.Equal(t, once, Normalize(fromJSON, "", ""))
		})
	}
}

func TestLenientInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{"15", 15, true},
		{" 20 min", 20, true},
		{"1.5", 1, true},
		{"about 20", 0, false},
		{12.7, 12, true},
		{json.Number("7"), 7, true},
		{true, 0, false},
		{nil, 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			n, ok := lenientInt(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, n)
			}
		})
	}
}
