package handler

import (
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/deppfellow/sovyx-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type SegmentationHandler struct {
	Handler
	segmentation *service.SegmentationService
}

func NewSegmentationHandler(s *server.Server, segmentation *service.SegmentationService) *SegmentationHandler {
	return &SegmentationHandler{
		Handler:      NewHandler(s),
		segmentation: segmentation,
	}
}

func (h *SegmentationHandler) CreateAudience(c echo.Context, req *model.CreateAudienceRequest) (*model.Audience, error) {
	return h.segmentation.CreateAudience(c.Request().Context(), req)
}

func (h *SegmentationHandler) AssignDelivery(c echo.Context, req *model.AssignDeliveryRequest) (*model.Delivery, error) {
	return h.segmentation.AssignDelivery(c.Request().Context(), req)
}

// CreateCampaign builds audience and delivery in a single call.
func (h *SegmentationHandler) CreateCampaign(c echo.Context, req *model.CreateCampaignRequest) (*model.Campaign, error) {
	return h.segmentation.CreateCampaign(c.Request().Context(), req)
}
