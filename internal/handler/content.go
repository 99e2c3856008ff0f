package handler

import (
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/deppfellow/sovyx-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ContentHandler struct {
	Handler
	content *service.ContentService
}

func NewContentHandler(s *server.Server, content *service.ContentService) *ContentHandler {
	return &ContentHandler{
		Handler: NewHandler(s),
		content: content,
	}
}

func (h *ContentHandler) Analyze(c echo.Context, req *model.AnalyzeContentRequest) (*model.Analysis, error) {
	return h.content.Analyze(req), nil
}

func (h *ContentHandler) Recalibrate(c echo.Context, req *model.RecalibrateContentRequest) (*model.Recalibration, error) {
	return h.content.Recalibrate(req), nil
}
