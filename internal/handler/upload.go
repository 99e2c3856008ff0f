package handler

import (
	"errors"
	"net/http"

	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/deppfellow/sovyx-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// UploadFormField is the multipart field that carries the files.
const UploadFormField = "files"

type UploadHandler struct {
	Handler
	uploads *service.UploadService
}

func NewUploadHandler(s *server.Server, uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{
		Handler: NewHandler(s),
		uploads: uploads,
	}
}

func (h *UploadHandler) Store(c echo.Context, _ *model.CreateUploadsRequest) (*model.UploadsResponse, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, errs.NewBadRequestError("expected a multipart/form-data body", true, nil, nil, nil)
		}
		return nil, errs.NewBadRequestError("could not read multipart form: "+err.Error(), true, nil, nil, nil)
	}

	return h.uploads.Store(c.Request().Context(), form.File[UploadFormField])
}

func (h *UploadHandler) Delete(c echo.Context, req *model.UploadIDRequest) error {
	return h.uploads.Delete(c.Request().Context(), req.ID)
}

// Serve writes the stored bytes so the Graph API can fetch them by URL.
func (h *UploadHandler) Serve(c echo.Context, req *model.UploadIDRequest) (*FileResult, error) {
	upload, err := h.uploads.Get(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}

	header := c.Response().Header()
	header.Set("Cache-Control", "no-store")
	header.Set(echo.HeaderContentSecurityPolicy, "default-src 'none'; sandbox")
	header.Set(echo.HeaderXContentTypeOptions, "nosniff")

	return &FileResult{
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Data:        upload.Data,
		Inline:      true,
	}, nil
}
