package extraction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipePage = `<!doctype html>
<html>
<head>
  <title>Weeknight Chili | Example Kitchen</title>
  <meta property="og:title" content="Weeknight Chili">
  <meta property="og:description" content="A &lt;b&gt;fast&lt;/b&gt; chili.">
  <meta property="og:image" content="/images/chili.jpg">
  <meta name="author" content="Sam Cook">
  <script type="application/ld+json">{"@context":"https://schema.org","@graph":[{"@type":"WebPage"},{"@type":"Recipe","name":"Weeknight Chili","recipeIngredient":["1 lb beef","1 can beans"]}]}</script>
  <script type="application/ld+json">{"@type":"Organization","name":"Example"}</script>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <article>
    <h1>Weeknight Chili</h1>
    <p>This chili comes together in under an hour and is perfect for busy evenings with the family.</p>
    <h2>Ingredients</h2>
    <ul><li>1 lb ground beef</li><li>1 can kidney beans</li><li>2 tbsp chili powder</li></ul>
    <h2>Instructions</h2>
    <ol><li>Brown the beef.</li><li>Add beans and spices.</li><li>Simmer for 30 minutes.</li></ol>
  </article>
</body>
</html>`

func TestParsePageMeta(t *testing.T) {
	meta := parsePageMeta(recipePage)
	assert.Equal(t, "Weeknight Chili", meta.Title)
	assert.Equal(t, "/images/chili.jpg", meta.Image)
	assert.Equal(t, "Sam Cook", meta.Author)
	require.Len(t, meta.Recipes, 1)
	assert.Contains(t, meta.Recipes[0], "recipeIngredient")
}

func TestIsRecipeLD(t *testing.T) {
	assert.True(t, isRecipeLD(`{"@type":"Recipe"}`))
	assert.True(t, isRecipeLD(`[{"@type":"Person"},{"@type":["Recipe","NewsArticle"]}]`))
	assert.False(t, isRecipeLD(`{"@type":"Article"}`))
	assert.False(t, isRecipeLD(`not json`))
}

func TestPageFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "RecipeBox")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(recipePage))
	}))
	defer srv.Close()

	content, err := NewPageFetcher(nil).Fetch(context.Background(), srv.URL+"/chili")
	require.NoError(t, err)
	assert.Equal(t, "Weeknight Chili", content.Title)
	assert.Equal(t, "A fast chili.", content.Caption)
	assert.Equal(t, "Sam Cook", content.AuthorHandle)
	assert.Equal(t, srv.URL+"/images/chili.jpg", content.ThumbnailURL)
	assert.Contains(t, content.Markdown, "kidney beans")
	assert.Contains(t, content.Markdown, "Structured recipe data")
	assert.Equal(t, []string{"page-fetch"}, content.Sources)
}

func TestPageFetcherRejects(t *testing.T) {
	t.Run("non html", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF"))
		}))
		defer srv.Close()
		_, err := NewPageFetcher(nil).Fetch(context.Background(), srv.URL)
		assert.ErrorContains(t, err, "unsupported content type")
	})

	t.Run("server error is retryable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		_, err := NewPageFetcher(nil).Fetch(context.Background(), srv.URL)
		assert.True(t, IsRetryable(err))
	})
}
