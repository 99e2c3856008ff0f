package router

import (
	"github.com/deppfellow/sovyx-backend/internal/handler"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", h.Health.Banner)
	r.GET("/health", h.Health.Liveness)
	r.GET("/status", h.Health.CheckStatus)
	r.GET("/cors-test", h.Health.CORSTest)

	r.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	r.Static("/static", handler.StaticDir)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
