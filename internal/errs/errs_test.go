package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "TOO_MANY_REQUESTS", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)))
}

func TestHTTPError_WrapsAndCopies(t *testing.T) {
	base := NewBadRequestError("invalid client", true, nil, nil, nil)
	wrapped := fmt.Errorf("resolve tenant: %w", base)

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.True(t, errors.Is(wrapped, &HTTPError{}))

	changed := base.WithMessage("other")
	assert.Equal(t, "invalid client", base.Message)
	assert.Equal(t, "other", changed.Message)

	withRaw := base.WithRaw(map[string]any{"error": "boom"})
	assert.Nil(t, base.Raw)
	assert.NotNil(t, withRaw.Raw)
}

func TestNewTooManyRequestsError(t *testing.T) {
	err := NewTooManyRequestsError("1s")
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	require.NotNil(t, err.Action)
	assert.Equal(t, ActionTypeRetry, err.Action.Type)
	assert.Equal(t, "1s", err.Action.Value)
}

func TestNewUpstreamError(t *testing.T) {
	err := NewUpstreamError("failed to publish to Instagram")
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "UPSTREAM_ERROR", err.Code)
	assert.True(t, err.Override)
}
