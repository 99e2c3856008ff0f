package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/middleware"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/labstack/echo/v4"
)

// Banner is the plain-text body of GET /.
const Banner = "✨ SOVYX backend activo y listo para recibir llamadas 🚀"

type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// Liveness answers GET /health without touching any dependency.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC(),
	})
}

func (h *HealthHandler) Banner(c echo.Context) error {
	return c.String(http.StatusOK, Banner)
}

// CORSTest echoes the caller's Origin so a frontend can confirm it is allowed.
func (h *HealthHandler) CORSTest(c echo.Context) error {
	origin := c.Request().Header.Get(echo.HeaderOrigin)
	if origin == "" {
		origin = "No origin header"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":         true,
		"message":         "CORS configured correctly",
		"frontend_origin": origin,
		"allowed_origins": h.server.Config.Server.CORSAllowedOrigins,
		"timestamp":       time.Now().UTC(),
	})
}

// CheckStatus reports dependency health. Only an unreachable database makes
// the service unhealthy; Redis failures are reported but tolerated.
func (h *HealthHandler) CheckStatus(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "status_check").
		Logger()

	checks := make(map[string]any)
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"tenants":     h.server.Config.TenantNames(),
		"async_jobs":  h.server.Job != nil,
		"checks":      checks,
	}

	isHealthy := true

	if h.server.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		dbStart := time.Now()
		if err := h.server.DB.Pool.Ping(ctx); err != nil {
			checks["database"] = unhealthyCheck(dbStart, err)
			isHealthy = false

			logger.Error().Err(err).Dur("response_time", time.Since(dbStart)).Msg("database health check failed")
			h.recordCheckError("database", dbStart, err)
		} else {
			checks["database"] = healthyCheck(dbStart)
		}
	} else {
		checks["database"] = map[string]any{"status": "disabled"}
	}

	if h.server.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		redisStart := time.Now()
		if err := h.server.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = unhealthyCheck(redisStart, err)

			logger.Error().Err(err).Dur("response_time", time.Since(redisStart)).Msg("redis health check failed")
			h.recordCheckError("redis", redisStart, err)
		} else {
			checks["redis"] = healthyCheck(redisStart)
		}
	} else {
		checks["redis"] = map[string]any{"status": "disabled"}
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().Dur("total_duration", time.Since(start)).Msg("status check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("status check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

func healthyCheck(start time.Time) map[string]any {
	return map[string]any{
		"status":        "healthy",
		"response_time": time.Since(start).String(),
	}
}

func unhealthyCheck(start time.Time, err error) map[string]any {
	return map[string]any{
		"status":        "unhealthy",
		"response_time": time.Since(start).String(),
		"error":         err.Error(),
	}
}

func (h *HealthHandler) recordCheckError(check string, start time.Time, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "status_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": time.Since(start).Milliseconds(),
		"error_message":    err.Error(),
	})
}
