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

type InteractionHandler struct {
	logger       *logrus.Logger
	orchestrator *services.RecommendationOrchestrator
	schemas      *validation.SchemaValidator
	validator    *validator.Validate
}

func NewInteractionHandler(logger *logrus.Logger, orchestrator *services.RecommendationOrchestrator, schemas *validation.SchemaValidator) *InteractionHandler {
	return &InteractionHandler{
		logger:       logger,
		orchestrator: orchestrator,
		schemas:      schemas,
		validator:    validator.New(),
	}
}

func (h *InteractionHandler) Track(c *gin.Context) {
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

	if result := h.schemas.ValidateInteraction(body); !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request does not match the interaction schema",
				"details": result.Errors,
			},
		})
		return
	}

	var req models.TrackInteractionRequest
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

	event, err := h.orchestrator.TrackInteraction(c.Request.Context(), &req)
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
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID,
			"item_id": req.ItemID,
		}).Error("Failed to track interaction")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_FAILED",
				"message": "Failed to track interaction",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":      "recorded",
		"interaction": event,
	})
}
