package gorse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/config"
)

// Client talks to a Gorse collaborative-filtering server. Gorse is treated
// as an opaque ranking oracle: it must tolerate being entirely absent, so
// every call degrades rather than fails. Recommend runs behind a circuit
// breaker to stop hammering a flapping server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]string]
	logger  *logrus.Logger
}

func NewClient(cfg *config.GorseConfig, logger *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:     "gorse-recommend",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// Recommend returns ranked item ids for a user. Any failure, non-2xx status
// or malformed payload yields an empty list; callers treat empty as "no
// signal", never as an error.
func (c *Client) Recommend(ctx context.Context, userID string, n int) []string {
	items, err := c.breaker.Execute(func() ([]string, error) {
		return c.recommend(ctx, userID, n)
	})
	if err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Gorse recommend unavailable")
		return nil
	}
	return items
}

func (c *Client) recommend(ctx context.Context, userID string, n int) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/recommend/%s?n=%d", c.baseURL, url.PathEscape(userID), n)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gorse returned HTTP %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("malformed gorse response: %w", err)
	}

	return normalizeItemList(raw)
}

// normalizeItemList copes with every response shape Gorse has been seen to
// produce: a bare list of ids, a list of {Id, Score} objects, or a dict
// wrapping either under "items"/"Items". Anything else is malformed.
func normalizeItemList(raw json.RawMessage) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids, nil
	}

	var objects []struct {
		ID     string `json:"Id"`
		ItemID string `json:"ItemId"`
	}
	if err := json.Unmarshal(raw, &objects); err == nil {
		ids = make([]string, 0, len(objects))
		for _, o := range objects {
			switch {
			case o.ID != "":
				ids = append(ids, o.ID)
			case o.ItemID != "":
				ids = append(ids, o.ItemID)
			}
		}
		return ids, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		for _, key := range []string{"items", "Items"} {
			if inner, ok := wrapper[key]; ok {
				return normalizeItemList(inner)
			}
		}
	}

	return nil, fmt.Errorf("unexpected gorse response shape")
}

// InsertUser mirrors a user and their interest labels to Gorse.
func (c *Client) InsertUser(ctx context.Context, userID string, labels []string) error {
	if labels == nil {
		labels = []string{}
	}
	body := map[string]interface{}{
		"UserId": userID,
		"Labels": labels,
	}
	return c.post(ctx, "/api/user", body)
}

// InsertItem mirrors a content item to Gorse.
func (c *Client) InsertItem(ctx context.Context, itemID string, categories, labels []string, timestamp time.Time) error {
	if categories == nil {
		categories = []string{}
	}
	if labels == nil {
		labels = []string{}
	}
	body := map[string]interface{}{
		"ItemId":     itemID,
		"Categories": categories,
		"Labels":     labels,
		"IsHidden":   false,
		"Comment":    "",
		"Timestamp":  timestamp.Format(time.RFC3339),
	}
	return c.post(ctx, "/api/item", body)
}

// Feedback forwards one interaction to Gorse. Gorse expects a list.
func (c *Client) Feedback(ctx context.Context, userID, itemID, feedbackType string) error {
	body := []map[string]interface{}{{
		"FeedbackType": feedbackType,
		"UserId":       userID,
		"ItemId":       itemID,
		"Timestamp":    time.Now().Format(time.RFC3339),
	}}
	return c.post(ctx, "/api/feedback", body)
}

// Ping reports whether the oracle answers at all. Used by health checks
// only; retrieval paths rely on the circuit breaker instead.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health/ready", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gorse health returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal gorse payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("gorse %s returned HTTP %d", path, resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}
