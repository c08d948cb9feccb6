package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/validation"
)

func testSchemas(t *testing.T) *validation.SchemaValidator {
	t.Helper()
	schemas, err := validation.NewSchemaValidator()
	require.NoError(t, err)
	return schemas
}

// Payloads that fail schema validation are rejected before any service is
// touched, so these handlers run with nil services.

func TestTrackRejectsUnknownAction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewInteractionHandler(logrus.New(), nil, testSchemas(t))

	router := gin.New()
	router.POST("/interactions", handler.Track)

	body := `{"user_id":"user-1","item_id":"post-1","action":"teleport"}`
	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
}

func TestTrackRejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewInteractionHandler(logrus.New(), nil, testSchemas(t))

	router := gin.New()
	router.POST("/interactions", handler.Track)

	req := httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader(`{"user_id":"user-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOnboardRejectsWrongInterestCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewUserHandler(logrus.New(), nil, testSchemas(t))

	router := gin.New()
	router.POST("/users/onboard", handler.Onboard)

	for _, body := range []string{
		`{"user_id":"user-1","interests":["cricket","food"]}`,
		`{"user_id":"user-1","interests":["a","b","c","d"]}`,
		`{"user_id":"user-1","interests":[]}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/users/onboard", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
	}
}

func TestIngestRejectsMissingTitle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContentHandler(logrus.New(), nil, testSchemas(t))

	router := gin.New()
	router.POST("/posts", handler.Ingest)

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"id":"post-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
