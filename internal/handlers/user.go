package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/services"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/validation"
	"github.com/Thalavaimanikandan/Karma-Recommendation-System/pkg/models"
)

type UserHandler struct {
	logger    *logrus.Logger
	users     *services.UserService
	schemas   *validation.SchemaValidator
	validator *validator.Validate
}

func NewUserHandler(logger *logrus.Logger, users *services.UserService, schemas *validation.SchemaValidator) *UserHandler {
	return &UserHandler{
		logger:    logger,
		users:     users,
		schemas:   schemas,
		validator: validator.New(),
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
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

	user, err := h.users.Create(c.Request.Context(), &req)
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
		h.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "USER_CREATE_FAILED",
				"message": "Failed to create user",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	userID := c.Param("userId")

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
			return
		}
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "USER_LOOKUP_FAILED",
				"message": "Failed to load user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Onboard seeds an interest profile from exactly three categories.
func (h *UserHandler) Onboard(c *gin.Context) {
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

	if result := h.schemas.ValidateOnboarding(body); !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Onboarding requires exactly three interest categories",
				"details": result.Errors,
			},
		})
		return
	}

	var req models.OnboardingRequest
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

	if err := h.users.Onboard(c.Request.Context(), &req); err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "VALIDATION_FAILED",
					"message": err.Error(),
				},
			})
			return
		}
		h.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to onboard user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "ONBOARDING_FAILED",
				"message": "Failed to onboard user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "onboarded",
		"user_id":   req.UserID,
		"interests": req.Interests,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	users, err := h.users.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "USER_LIST_FAILED",
				"message": "Failed to list users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// Delete removes the user along with their interests and interactions.
func (h *UserHandler) Delete(c *gin.Context) {
	userID := c.Param("userId")

	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
			return
		}
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "USER_DELETE_FAILED",
				"message": "Failed to delete user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "deleted",
		"user_id": userID,
	})
}

func (h *UserHandler) Interests(c *gin.Context) {
	userID := c.Param("userId")

	entries, err := h.users.Interests(c.Request.Context(), userID)
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
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load interests")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERESTS_FAILED",
				"message": "Failed to load user interests",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"interests": entries,
	})
}

func (h *UserHandler) Stats(c *gin.Context) {
	userID := c.Param("userId")

	stats, err := h.users.Stats(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
			return
		}
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load user stats")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": "Failed to load user stats",
			},
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
