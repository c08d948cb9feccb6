package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/services"
)

type SearchHandler struct {
	logger *logrus.Logger
	search *services.SearchService
}

func NewSearchHandler(logger *logrus.Logger, search *services.SearchService) *SearchHandler {
	return &SearchHandler{logger: logger, search: search}
}

func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	userID := c.Query("user_id")

	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	result, err := h.search.Search(c.Request.Context(), userID, query, limit)
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
		h.logger.WithError(err).WithField("query", query).Error("Search failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": "Failed to execute search",
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) History(c *gin.Context) {
	userID := c.Param("userId")

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.search.History(c.Request.Context(), userID, limit)
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
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load search history")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "HISTORY_FAILED",
				"message": "Failed to load search history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"history": entries,
		"count":   len(entries),
	})
}
