package gorse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.GorseConfig{
		URL:     url,
		APIKey:  "test-key",
		Timeout: 500 * time.Millisecond,
	}, logrus.New())
}

func TestRecommendBareIDList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recommend/user-1", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		w.Write([]byte(`["post-1","post-2","post-3"]`))
	}))
	defer server.Close()

	items := newTestClient(server.URL).Recommend(context.Background(), "user-1", 3)
	assert.Equal(t, []string{"post-1", "post-2", "post-3"}, items)
}

func TestRecommendObjectList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Id":"post-1","Score":0.9},{"ItemId":"post-2"}]`))
	}))
	defer server.Close()

	items := newTestClient(server.URL).Recommend(context.Background(), "user-1", 2)
	assert.Equal(t, []string{"post-1", "post-2"}, items)
}

func TestRecommendWrappedDict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":["post-9"]}`))
	}))
	defer server.Close()

	items := newTestClient(server.URL).Recommend(context.Background(), "user-1", 1)
	assert.Equal(t, []string{"post-9"}, items)
}

func TestRecommendServerErrorDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	items := newTestClient(server.URL).Recommend(context.Background(), "user-1", 5)
	assert.Empty(t, items)
}

func TestRecommendMalformedPayloadDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"just a string"`))
	}))
	defer server.Close()

	items := newTestClient(server.URL).Recommend(context.Background(), "user-1", 5)
	assert.Empty(t, items)
}

func TestRecommendUnreachableServerDegradesToEmpty(t *testing.T) {
	// Nothing listens on this port.
	items := newTestClient("http://127.0.0.1:1").Recommend(context.Background(), "user-1", 5)
	assert.Empty(t, items)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	for i := 0; i < 10; i++ {
		client.Recommend(context.Background(), "user-1", 5)
	}

	// After five consecutive failures the breaker opens and stops hitting
	// the server; every call still returns an empty list.
	assert.Equal(t, 5, hits)
}

func TestFeedbackPostsListPayload(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient(server.URL).Feedback(context.Background(), "user-1", "post-1", "like")
	require.NoError(t, err)
	assert.Equal(t, "/api/feedback", gotPath)
}

func TestNormalizeItemListRejectsUnknownShape(t *testing.T) {
	_, err := normalizeItemList([]byte(`42`))
	assert.Error(t, err)
}
