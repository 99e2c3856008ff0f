package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Client    string `param:"client"`
	SessionID string `json:"session_id" validate:"required"`
	Hours     int    `json:"window_hours" validate:"gte=0"`
}

func (r *sampleRequest) Validate() error {
	return Struct(r)
}

type customRequest struct{}

func (r *customRequest) Validate() error {
	return CustomValidationErrors{{Field: "files", Message: "at least one upload id"}}
}

type plainRequest struct{}

func (r *plainRequest) Validate() error {
	return errors.New("image_url is required")
}

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	err := BindAndValidate(newContext(`{"window_hours": -1}`), &sampleRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Validation failed", httpErr.Message)

	fields := map[string]string{}
	for _, fe := range httpErr.Errors {
		fields[fe.Field] = fe.Error
	}
	assert.Equal(t, "is required", fields["session_id"])
	assert.Equal(t, "must be greater than or equal to 0", fields["window_hours"])
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	err := BindAndValidate(newContext(`{"session_id": `), &sampleRequest{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.NotEmpty(t, httpErr.Message)
}

func TestBindAndValidate_CustomAndPlainErrors(t *testing.T) {
	var httpErr *errs.HTTPError

	require.True(t, errors.As(BindAndValidate(newContext(`{}`), &customRequest{}), &httpErr))
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "files", httpErr.Errors[0].Field)

	require.True(t, errors.As(BindAndValidate(newContext(`{}`), &plainRequest{}), &httpErr))
	assert.Equal(t, "image_url is required", httpErr.Message)
	assert.Empty(t, httpErr.Errors)
}

func TestBindAndValidate_OK(t *testing.T) {
	req := &sampleRequest{}
	require.NoError(t, BindAndValidate(newContext(`{"session_id":"s1","window_hours":48}`), req))
	assert.Equal(t, "s1", req.SessionID)
	assert.Equal(t, 48, req.Hours)
}
