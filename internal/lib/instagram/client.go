// Package instagram is a thin client for the Instagram Graph API.
//
// Responses are decoded into model.GraphPayload and returned as-is, whatever
// the HTTP status. Only transport and decode failures are errors; callers
// inspect the payload for Graph-level failures.
package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/lib/metrics"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Processing states reported by the container status endpoint.
const (
	StatusFinished   = "FINISHED"
	StatusInProgress = "IN_PROGRESS"
	StatusError      = "ERROR"
	StatusExpired    = "EXPIRED"
)

var (
	ErrProcessingFailed  = errors.New("media processing failed")
	ErrProcessingTimeout = errors.New("media processing timed out")
)

// maxResponseBytes caps how much of a Graph response is read.
const maxResponseBytes = 10 << 20

type Client struct {
	baseURL            string
	apiVersion         string
	httpClient         *http.Client
	processingInterval time.Duration
	processingAttempts int
	logger             *zerolog.Logger
}

// NewClient builds a client whose transport reports external segments to New
// Relic when the request context carries a transaction.
func NewClient(cfg config.InstagramConfig, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.GraphURL, "/"),
		apiVersion: strings.Trim(cfg.APIVersion, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newrelic.NewRoundTripper(http.DefaultTransport),
		},
		processingInterval: cfg.ProcessingInterval,
		processingAttempts: cfg.ProcessingMaxAttempts,
		logger:             logger,
	}
}

// URL returns the versioned address of endpoint.
func (c *Client) URL(endpoint string) string {
	endpoint = strings.TrimLeft(endpoint, "/")
	if c.apiVersion == "" {
		return c.baseURL + "/" + endpoint
	}
	return c.baseURL + "/" + c.apiVersion + "/" + endpoint
}

// Call sends method to the versioned endpoint. GET params become query
// parameters; POST params are sent as a JSON body. The token always travels
// as the access_token query parameter.
func (c *Client) Call(ctx context.Context, method, endpoint string, params map[string]any, token string) (model.GraphPayload, error) {
	return c.do(ctx, "call", method, c.URL(endpoint), params, token)
}

func (c *Client) do(ctx context.Context, op, method, rawURL string, params map[string]any, token string) (model.GraphPayload, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse graph url: %w", err)
	}

	query := u.Query()
	if token != "" {
		query.Set("access_token", token)
	}

	var body io.Reader
	if method == http.MethodGet || method == http.MethodDelete {
		for k, v := range params {
			query.Set(k, fmt.Sprint(v))
		}
	} else if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode graph request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build graph request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.GraphDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GraphRequests.WithLabelValues(op, method, "error").Inc()
		// *url.Error prints the request URL, which carries access_token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("graph %s %s: %w", method, op, err)
	}
	defer resp.Body.Close()

	metrics.GraphRequests.WithLabelValues(op, method, strconv.Itoa(resp.StatusCode)).Inc()

	var payload model.GraphPayload
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode graph %s response (status %d): %w", op, resp.StatusCode, err)
	}
	if payload == nil {
		payload = model.GraphPayload{}
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("operation", op).
			Str("method", method).
			Str("path", u.Path).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("graph api call")
	}

	return payload, nil
}

// RefreshToken exchanges a long-lived token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context, token string) (model.GraphPayload, error) {
	return c.do(ctx, "refresh_token", http.MethodGet, c.baseURL+"/refresh_access_token",
		map[string]any{"grant_type": "ig_refresh_token"}, token)
}

// CreateMedia creates a media container for userID.
func (c *Client) CreateMedia(ctx context.Context, userID, token string, params map[string]any) (model.GraphPayload, error) {
	return c.do(ctx, "create_media", http.MethodPost, c.URL(userID+"/media"), params, token)
}

// PublishMedia publishes a finished container.
func (c *Client) PublishMedia(ctx context.Context, userID, token, creationID string) (model.GraphPayload, error) {
	return c.do(ctx, "publish_media", http.MethodPost, c.URL(userID+"/media_publish"),
		map[string]any{"creation_id": creationID}, token)
}

// MediaStatus returns the processing state of a container.
func (c *Client) MediaStatus(ctx context.Context, mediaID, token string) (string, model.GraphPayload, error) {
	payload, err := c.do(ctx, "media_status", http.MethodGet, c.URL(mediaID),
		map[string]any{"fields": "status_code,status"}, token)
	if err != nil {
		return "", nil, err
	}

	if code, ok := payload["status_code"].(string); ok && code != "" {
		return code, payload, nil
	}
	// Older API versions only expose a free text status such as "Finished: ...".
	if status, ok := payload["status"].(string); ok {
		head, _, _ := strings.Cut(status, ":")
		return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(head), " ", "_")), payload, nil
	}
	return "", payload, nil
}

// Insights fetches metrics for a published media object.
func (c *Client) Insights(ctx context.Context, mediaID, token, metricList string) (model.GraphPayload, error) {
	if metricList == "" {
		metricList = model.DefaultInsightMetrics
	}
	return c.do(ctx, "insights", http.MethodGet, c.URL(mediaID+"/insights"),
		map[string]any{"metric": metricList}, token)
}

// Permalink returns the public URL of a published media object.
func (c *Client) Permalink(ctx context.Context, mediaID, token string) (string, error) {
	payload, err := c.do(ctx, "permalink", http.MethodGet, c.URL(mediaID),
		map[string]any{"fields": "permalink"}, token)
	if err != nil {
		return "", err
	}
	link, _ := payload["permalink"].(string)
	return link, nil
}

// WaitForProcessing polls a container until it is FINISHED. ERROR and EXPIRED
// fail immediately; transport errors are retried until attempts run out.
func (c *Client) WaitForProcessing(ctx context.Context, mediaID, token string) error {
	attempts := c.processingAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		status, payload, err := c.MediaStatus(ctx, mediaID, token)
		switch {
		case err != nil:
			lastErr = err
		case status == StatusFinished:
			return nil
		case status == StatusError || status == StatusExpired:
			return fmt.Errorf("%w: container %s is %s: %s", ErrProcessingFailed, mediaID, status, ErrorMessage(payload))
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.processingInterval):
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%w after %d attempts: %w", ErrProcessingTimeout, attempts, lastErr)
	}
	return fmt.Errorf("%w after %d attempts", ErrProcessingTimeout, attempts)
}

// ID returns the "id" field of a payload, accepting string or numeric ids.
func ID(p model.GraphPayload) string {
	switch v := p["id"].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// ErrorMessage extracts the Graph error message from a payload, if any.
func ErrorMessage(p model.GraphPayload) string {
	if e, ok := p["error"].(map[string]any); ok {
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	if msg, ok := p["error"].(string); ok {
		return msg
	}
	return ""
}
