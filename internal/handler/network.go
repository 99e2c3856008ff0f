package handler

import (
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/deppfellow/sovyx-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type NetworkHandler struct {
	Handler
	network       *service.NetworkService
	orchestration *service.OrchestrationService
}

func NewNetworkHandler(s *server.Server, services *service.Services) *NetworkHandler {
	return &NetworkHandler{
		Handler:       NewHandler(s),
		network:       services.Network,
		orchestration: services.Orchestration,
	}
}

func (h *NetworkHandler) Activate(c echo.Context, req *model.ActivateNetworkRequest) (*model.Network, error) {
	return h.network.Activate(req), nil
}

// Execute plans an organic distribution for the tenant named in the path.
func (h *NetworkHandler) Execute(c echo.Context, req *model.ExecuteOrchestrationRequest) (*model.Orchestration, error) {
	return h.orchestration.Execute(c.Request().Context(), req)
}
