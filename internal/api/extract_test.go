package api_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/extraction"
	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/models"
)

func setupExtractRouter() (http.Handler, *MockExtractor) {
	extractor := new(MockExtractor)
	router, v1 := newTestRouter()
	api.NewExtractHandler(extractor, logging.Discard()).RegisterRoutes(v1)
	return router, extractor
}

func TestExtractSuccess(t *testing.T) {
	router, extractor := setupExtractRouter()

	recipe := &models.Recipe{ID: uuid.New(), UserID: testUserID, Title: "Garlic Noodles"}
	extractor.On("Extract", mock.Anything, extraction.ExtractRequest{
		URL:    "https://youtu.be/abc123",
		UserID: testUserID,
	}).Return(&extraction.Result{
		Recipe:         recipe,
		Classification: extraction.Classification{Platform: extraction.PlatformYouTube, VideoID: "abc123"},
	}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", map[string]any{
		"videoUrl": "https://youtu.be/abc123",
		"userId":   testUserID,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "youtube", body["platform"])
	assert.Equal(t, false, body["needs_review"])
	assert.NotEmpty(t, body["message"])
	got := body["recipe"].(map[string]any)
	assert.Equal(t, recipe.ID.String(), got["id"])
	assert.Equal(t, "Garlic Noodles", got["title"])
	extractor.AssertExpectations(t)
}

func TestExtractNeedsReview(t *testing.T) {
	router, extractor := setupExtractRouter()

	extractor.On("Extract", mock.Anything, mock.Anything).
		Return(&extraction.Result{Recipe: &models.Recipe{Title: "Recipe - Manual Review Needed"}, NeedsReview: true}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", map[string]any{
		"videoUrl": "https://example.com/r",
		"userId":   testUserID,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["needs_review"])
	assert.Contains(t, body["message"], "review")
}

func TestExtractRequiresUserID(t *testing.T) {
	router, extractor := setupExtractRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", map[string]any{"videoUrl": "https://example.com/r"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "userId is required", body["error"])
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractDryRun(t *testing.T) {
	router, extractor := setupExtractRouter()

	extractor.On("Extract", mock.Anything, mock.MatchedBy(func(req extraction.ExtractRequest) bool {
		return req.DryRun && req.UserID == ""
	})).Return(&extraction.Result{Recipe: &models.Recipe{Title: "Preview"}}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", map[string]any{
		"videoUrl": "https://example.com/r",
		"dryRun":   true,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["message"], "not saved")
}

func TestExtractRejectsForeignUser(t *testing.T) {
	router, extractor := setupExtractRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", map[string]any{
		"videoUrl": "https://youtu.be/abc123",
		"userId":   "someone-else",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractMalformedBody(t *testing.T) {
	router, extractor := setupExtractRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["hint"])
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &extraction.Error{Kind: extraction.KindRequestValidation, Stage: extraction.StageClassifying, Message: "videoUrl is required"}, http.StatusBadRequest},
		{"unsupported", &extraction.Error{Kind: extraction.KindUnsupportedPlatform, Stage: extraction.StageClassifying, Message: "tiktok links are not supported"}, http.StatusUnprocessableEntity},
		{"exhausted", &extraction.Error{Kind: extraction.KindAcquisitionExhausted, Stage: extraction.StageAcquiring, Message: "Instagram post content is unavailable", Hint: "check the post is public"}, http.StatusBadGateway},
		{"extraction failed", &extraction.Error{Kind: extraction.KindExtractionFailed, Stage: extraction.StageExtracting, Message: "no AI provider could read the recipe"}, http.StatusBadGateway},
		{"misconfigured", extraction.NotConfigured("firecrawl"), http.StatusServiceUnavailable},
		{"persistence", &extraction.Error{Kind: extraction.KindPersistenceFailed, Stage: extraction.StagePersisting, Message: "failed to save recipe"}, http.StatusInternalServerError},
		{"internal", &extraction.Error{Kind: extraction.KindInternal, Stage: extraction.StageExtracting, Message: "unexpected error"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, extractor := setupExtractRouter()
			extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doJSON(t, router, http.MethodPost, "/api/v1/extract", map[string]any{
				"videoUrl": "https://example.com/r",
				"userId":   testUserID,
			})

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			var e *extraction.Error
			assert.True(t, errors.As(tt.err, &e))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, e.Message, body["error"])
			if e.Stage != "" {
				assert.Equal(t, string(e.Stage), body["stage"])
			}
			if e.Hint != "" {
				assert.Equal(t, e.Hint, body["hint"])
			}
		})
	}
}

func TestExtractForeignError(t *testing.T) {
	router, extractor := setupExtractRouter()
	extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", map[string]any{
		"videoUrl": "https://example.com/r",
		"userId":   testUserID,
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, api.StatusForKind(extraction.Kind("something-new")))
	assert.Equal(t, http.StatusServiceUnavailable, api.StatusForKind(extraction.KindProviderMisconfigured))
}
