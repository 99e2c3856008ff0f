package router

import (
	"net/http"

	"github.com/deppfellow/sovyx-backend/internal/handler"
	"github.com/labstack/echo/v4"
)

// tenantPaths returns the owner path and its /:client variant. prefix is
// inserted before the client segment, e.g. "/ig" + "/refresh" gives
// "/ig/refresh" and "/ig/:client/refresh".
func tenantPaths(prefix, path string) []string {
	return []string{prefix + path, prefix + "/:client" + path}
}

func registerInstagramRoutes(r *echo.Echo, api *echo.Group, h *handler.Handlers) {
	// Token refresh sits outside /api so schedulers can call it without a session.
	for _, p := range tenantPaths("/ig", "/refresh") {
		r.GET(p, handler.Handle(h.Instagram.RefreshToken, http.StatusOK))
	}

	for _, p := range tenantPaths("", "/instagram/publish") {
		api.POST(p, handler.Handle(h.Instagram.Publish, http.StatusOK))
	}
	for _, p := range tenantPaths("", "/instagram/media") {
		api.POST(p, handler.Handle(h.Instagram.PublishMedia, http.StatusOK))
	}
	for _, p := range tenantPaths("", "/instagram/insights/:mediaId") {
		api.GET(p, handler.Handle(h.Instagram.Insights, http.StatusOK))
	}
}

func registerCampaignRoutes(api *echo.Group, h *handler.Handlers) {
	for _, p := range tenantPaths("", "/campaign") {
		api.POST(p, handler.Handle(h.Segmentation.CreateCampaign, http.StatusOK))
	}
	for _, p := range tenantPaths("", "/audience/create") {
		api.POST(p, handler.Handle(h.Segmentation.CreateAudience, http.StatusOK))
	}
	for _, p := range tenantPaths("", "/delivery/assign") {
		api.POST(p, handler.Handle(h.Segmentation.AssignDelivery, http.StatusOK))
	}
	for _, p := range tenantPaths("", "/orchestration/execute") {
		api.POST(p, handler.Handle(h.Network.Execute, http.StatusOK))
	}

	api.POST("/content/analyze", handler.Handle(h.Content.Analyze, http.StatusOK))
	api.POST("/content/recalibrate", handler.Handle(h.Content.Recalibrate, http.StatusOK))
	api.POST("/network/activate", handler.Handle(h.Network.Activate, http.StatusOK))
}

func registerUploadRoutes(r *echo.Echo, api *echo.Group, h *handler.Handlers) {
	api.POST("/uploads", handler.Handle(h.Upload.Store, http.StatusCreated))
	api.DELETE("/uploads/:id", handler.HandleNoContent(h.Upload.Delete, http.StatusNoContent))

	// Public: the Graph API fetches media from here.
	r.GET("/media/:id", handler.HandleFile(h.Upload.Serve, http.StatusOK))
}
