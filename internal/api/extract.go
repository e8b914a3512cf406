package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipebox/backend/internal/extraction"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/types"
)

// Extractor runs the extraction pipeline for one link.
type Extractor interface {
	Extract(ctx context.Context, req extraction.ExtractRequest) (*extraction.Result, error)
}

// ExtractHandler serves POST /extract.
type ExtractHandler struct {
	extractor Extractor
	log       logrus.FieldLogger
}

func NewExtractHandler(extractor Extractor, log logrus.FieldLogger) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, log: log}
}

func (h *ExtractHandler) RegisterRoutes(router gin.IRoutes, limiter ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, limiter...), h.Extract)
	router.POST("/extract", handlers...)
}

// Extract turns a pasted link into a saved recipe.
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req types.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "invalid request body",
			Hint:  "send a JSON object with a videoUrl field",
		})
		return
	}

	if req.UserID == "" && !req.DryRun {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "userId is required",
			Stage: string(extraction.StageClassifying),
		})
		return
	}
	if req.UserID != "" && req.UserID != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, types.ErrorResponse{Error: "userId does not match the authenticated user"})
		return
	}

	res, err := h.extractor.Extract(c.Request.Context(), extraction.ExtractRequest{
		URL:    req.VideoURL,
		UserID: req.UserID,
		DryRun: req.DryRun,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusCreated
	message := "Recipe extracted and saved"
	if req.DryRun {
		status = http.StatusOK
		message = "Recipe extracted (not saved)"
	}
	if res.NeedsReview {
		message += "; some details could not be read and need review"
	}

	c.JSON(status, types.ExtractResponse{
		Success:     true,
		Recipe:      res.Recipe,
		Message:     message,
		Platform:    string(res.Classification.Platform),
		NeedsReview: res.NeedsReview,
	})
}

func (h *ExtractHandler) writeError(c *gin.Context, err error) {
	var e *extraction.Error
	if !errors.As(err, &e) {
		h.log.WithError(err).Error("Extraction returned an unclassified error")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(StatusForKind(e.Kind), types.ErrorResponse{
		Error: e.Message,
		Hint:  e.Hint,
		Stage: string(e.Stage),
	})
}

// StatusForKind maps a pipeline failure kind onto an HTTP status.
func StatusForKind(kind extraction.Kind) int {
	switch kind {
	case extraction.KindRequestValidation:
		return http.StatusBadRequest
	case extraction.KindUnsupportedPlatform:
		return http.StatusUnprocessableEntity
	case extraction.KindAcquisitionExhausted, extraction.KindExtractionFailed:
		return http.StatusBadGateway
	case extraction.KindProviderMisconfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
