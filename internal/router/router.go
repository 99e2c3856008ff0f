// Package router builds the Echo instance: global middleware in a fixed
// order, system routes, and the tenant-aware API routes.
package router

import (
	"github.com/deppfellow/sovyx-backend/internal/handler"
	"github.com/deppfellow/sovyx-backend/internal/middleware"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter returns the router together with its middlewares so the caller
// can start background janitors on them.
func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, *middleware.Middlewares) {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler
	router.IPExtractor = middleware.NewIPExtractor(s.Config.Server.TrustedProxies)

	router.Use(
		middlewares.RateLimit.Limit(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	api := router.Group("/api")
	if middlewares.Auth.Enabled() {
		api.Use(middlewares.Auth.RequireAuth)
	} else {
		s.Logger.Warn().Msg("no auth secret key configured, /api routes are public")
	}

	registerInstagramRoutes(router, api, h)
	registerCampaignRoutes(api, h)
	registerUploadRoutes(router, api, h)

	return router, middlewares
}
