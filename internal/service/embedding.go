package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/recipebox/backend/internal/models"
)

// EmbeddingDimensions must match the recipes.embedding column.
const EmbeddingDimensions = 64

// GenerateEmbedding returns a deterministic hashed bag-of-words vector for
// text, L2-normalised so that distance ordering approximates term overlap.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)
	for _, word := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		sum := h.Sum32()
		sign := float32(1)
		if sum&0x80000000 != 0 {
			sign = -1
		}
		vec[sum%EmbeddingDimensions] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}

// RecipeEmbedding embeds the searchable text of a recipe.
func RecipeEmbedding(r *models.Recipe) pgvector.Vector {
	parts := []string{r.Title}
	for _, p := range []*string{r.Description, r.Cuisine} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	parts = append(parts, r.Ingredients...)
	return GenerateEmbedding(strings.Join(parts, " "))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
