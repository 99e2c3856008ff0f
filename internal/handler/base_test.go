package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/sovyx-backend/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string   `json:"name" validate:"required"`
	Notes []string `json:"notes"`
}

func (r *echoRequest) Validate() error {
	return validation.Struct(r)
}

func post(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandle_BindsFreshRequestPerCall(t *testing.T) {
	e := echo.New()
	e.POST("/echo", Handle(func(c echo.Context, req *echoRequest) (*echoRequest, error) {
		return req, nil
	}, http.StatusOK))

	rec := post(e, "/echo", `{"name":"first","notes":["a","b"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"first","notes":["a","b"]}`, rec.Body.String())

	rec = post(e, "/echo", `{"name":"second"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"second","notes":null}`, rec.Body.String())
}

func TestHandle_ValidationFailure(t *testing.T) {
	e := echo.New()
	called := false
	e.POST("/echo", Handle(func(c echo.Context, req *echoRequest) (*echoRequest, error) {
		called = true
		return req, nil
	}, http.StatusOK))

	rec := post(e, "/echo", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestHandle_Accepted(t *testing.T) {
	e := echo.New()
	e.POST("/echo", Handle(func(c echo.Context, req *echoRequest) (any, error) {
		return Accepted{Body: map[string]string{"status": "queued"}}, nil
	}, http.StatusOK))

	rec := post(e, "/echo", `{"name":"x"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"queued"}`, rec.Body.String())
}

func TestHandleFile_DownloadDisposition(t *testing.T) {
	e := echo.New()
	e.POST("/file", HandleFile(func(c echo.Context, req *echoRequest) (*FileResult, error) {
		return &FileResult{Filename: req.Name + ".txt", ContentType: "text/plain", Data: []byte("hello")}, nil
	}, http.StatusOK))

	rec := post(e, "/file", `{"name":"report"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="report.txt"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestHandleNoContent(t *testing.T) {
	e := echo.New()
	e.POST("/none", HandleNoContent(func(c echo.Context, req *echoRequest) error {
		return nil
	}, http.StatusNoContent))

	rec := post(e, "/none", `{"name":"x"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
