package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/services"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/validation"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

type ContentHandler struct {
	logger    *logrus.Logger
	content   *services.ContentService
	schemas   *validation.SchemaValidator
	validator *validator.Validate
}

func NewContentHandler(logger *logrus.Logger, content *services.ContentService, schemas *validation.SchemaValidator) *ContentHandler {
	return &ContentHandler{
		logger:    logger,
		content:   content,
		schemas:   schemas,
		validator: validator.New(),
	}
}

func (h *ContentHandler) Ingest(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Failed to read request body",
			},
		})
		return
	}

	if result := h.schemas.ValidatePost(body); !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request does not match the post schema",
				"details": result.Errors,
			},
		})
		return
	}

	var req models.PostIngestionRequest
	if err := bindJSON(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return
	}

	post, err := h.content.Ingest(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "VALIDATION_FAILED",
					"message": err.Error(),
				},
			})
			return
		}
		h.logger.WithError(err).WithField("post_id", req.ID).Error("Failed to ingest post")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INGESTION_FAILED",
				"message": "Failed to ingest post",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *ContentHandler) IngestBatch(c *gin.Context) {
	var req models.PostBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"details": err.Error(),
			},
		})
		return
	}

	stored, failed := h.content.IngestBatch(c.Request.Context(), &req)

	status := http.StatusCreated
	if len(failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"ingested": len(stored),
		"failed":   failed,
	})
}

func (h *ContentHandler) Get(c *gin.Context) {
	postID := c.Param("postId")

	post, err := h.content.Get(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "POST_NOT_FOUND",
					"message": "Post not found",
				},
			})
			return
		}
		h.logger.WithError(err).WithField("post_id", postID).Error("Failed to load post")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "POST_LOOKUP_FAILED",
				"message": "Failed to load post",
			},
		})
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *ContentHandler) Categories(c *gin.Context) {
	categories, err := h.content.Categories(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "CATEGORY_LIST_FAILED",
				"message": "Failed to list categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}
