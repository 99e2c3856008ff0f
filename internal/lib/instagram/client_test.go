package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, version string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.InstagramConfig{
		GraphURL:              srv.URL,
		APIVersion:            version,
		Timeout:               5 * time.Second,
		ProcessingInterval:    time.Millisecond,
		ProcessingMaxAttempts: 3,
	}, nil)
}

func TestCall_PostSendsJSONBodyAndToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v18.0/1789/media", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("access_token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://cdn.example/a.jpg", body["image_url"])

		_, _ = w.Write([]byte(`{"id":"c1"}`))
	}, "v18.0")

	payload, err := client.CreateMedia(context.Background(), "1789", "tok", map[string]any{"image_url": "https://cdn.example/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "c1", ID(payload))
}

func TestCall_ReturnsErrorPayloadAsIs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}, "")

	payload, err := client.Call(context.Background(), http.MethodGet, "me", nil, "bad")
	require.NoError(t, err)
	assert.Equal(t, "Invalid OAuth access token", ErrorMessage(payload))
	assert.Empty(t, ID(payload))
}

func TestCall_DecodeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}, "")

	_, err := client.Call(context.Background(), http.MethodGet, "me", nil, "tok")
	require.Error(t, err)
}

func TestRefreshToken_IsUnversioned(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/refresh_access_token", r.URL.Path)
		assert.Equal(t, "ig_refresh_token", r.URL.Query().Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"new","token_type":"bearer","expires_in":5183944}`))
	}, "v18.0")

	payload, err := client.RefreshToken(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "new", payload["access_token"])
}

func TestInsights_DefaultMetrics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/m1/insights", r.URL.Path)
		assert.Equal(t, "impressions,reach,saved,engagement", r.URL.Query().Get("metric"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	}, "")

	payload, err := client.Insights(context.Background(), "m1", "tok", "")
	require.NoError(t, err)
	assert.Contains(t, payload, "data")
}

func TestWaitForProcessing(t *testing.T) {
	t.Run("finishes after polling", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 2 {
				_, _ = w.Write([]byte(`{"status_code":"IN_PROGRESS"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status_code":"FINISHED"}`))
		}, "")

		require.NoError(t, client.WaitForProcessing(context.Background(), "c1", "tok"))
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("legacy status text", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"Finished: Media has been uploaded"}`))
		}, "")

		require.NoError(t, client.WaitForProcessing(context.Background(), "c1", "tok"))
	})

	t.Run("error status fails fast", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status_code":"ERROR"}`))
		}, "")

		err := client.WaitForProcessing(context.Background(), "c1", "tok")
		assert.True(t, errors.Is(err, ErrProcessingFailed))
	})

	t.Run("times out", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`{"status_code":"IN_PROGRESS"}`))
		}, "")

		err := client.WaitForProcessing(context.Background(), "c1", "tok")
		assert.True(t, errors.Is(err, ErrProcessingTimeout))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("honours context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status_code":"IN_PROGRESS"}`))
		}, "")
		client.processingInterval = time.Hour

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := client.WaitForProcessing(ctx, "c1", "tok")
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestID_NumericIDs(t *testing.T) {
	assert.Equal(t, "17895695668004550", ID(map[string]any{"id": json.Number("17895695668004550")}))
	assert.Equal(t, "", ID(map[string]any{}))
}

func TestCall_TransportErrorOmitsToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}, "v18.0")

	_, err := client.CreateMedia(context.Background(), "2002", "client1-token", map[string]any{"image_url": "https://cdn.example/a.jpg"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "client1-token")
	assert.NotContains(t, err.Error(), "access_token")
	assert.Contains(t, err.Error(), "create_media")
}
