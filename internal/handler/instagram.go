package handler

import (
	"github.com/deppfellow/sovyx-backend/internal/middleware"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/deppfellow/sovyx-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type InstagramHandler struct {
	Handler
	instagram   *service.InstagramService
	credentials *service.CredentialService
}

func NewInstagramHandler(s *server.Server, services *service.Services) *InstagramHandler {
	return &InstagramHandler{
		Handler:     NewHandler(s),
		instagram:   services.Instagram,
		credentials: services.Credentials,
	}
}

// RefreshToken returns the Graph API refresh response untouched.
func (h *InstagramHandler) RefreshToken(c echo.Context, req *model.RefreshTokenRequest) (model.GraphPayload, error) {
	return h.credentials.Refresh(c.Request().Context(), req.Client)
}

func (h *InstagramHandler) Publish(c echo.Context, req *model.PublishRequest) (*model.PublishResult, error) {
	return h.instagram.Publish(c.Request().Context(), req)
}

// PublishMedia publishes uploaded files, or queues them when the caller asks
// for async and a worker is available.
func (h *InstagramHandler) PublishMedia(c echo.Context, req *model.PublishMediaRequest) (any, error) {
	// The body may name a client on the unprefixed route; the path wins.
	if client := c.Param("client"); client != "" {
		req.Client = client
	}

	if req.Async {
		if h.instagram.AsyncEnabled() {
			queued, err := h.instagram.EnqueuePublishMedia(c.Request().Context(), req)
			if err != nil {
				return nil, err
			}
			return Accepted{Body: queued}, nil
		}

		middleware.GetLogger(c).Warn().Msg("async publishing requested without a job queue, publishing inline")
	}

	return h.instagram.PublishMedia(c.Request().Context(), req)
}

func (h *InstagramHandler) Insights(c echo.Context, req *model.InsightsRequest) (*model.Insights, error) {
	return h.instagram.Insights(c.Request().Context(), req)
}
