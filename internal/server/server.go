// Package server holds the application container: configuration, loggers,
// optional PostgreSQL and Redis connections, the background job service, and
// the HTTP server lifecycle.
//
// Database and Redis are optional. Without them the service falls back to
// in-memory stores and publishes synchronously.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/database"
	"github.com/deppfellow/sovyx-backend/internal/lib/job"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/sovyx-backend/internal/logger"
)

type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// DB, Redis and Job are nil when their config block is absent.
	DB    *database.Database
	Redis *redis.Client
	Job   *job.JobService

	httpServer *http.Server
}

// New connects to the configured backing services. Job workers are created
// but not started; call Job.InitHandlers and Job.Start once services exist.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}

	if cfg.Database != nil {
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		server.DB = db
	} else {
		logger.Warn().Msg("no database configured, tenant credentials are kept in memory")
	}

	if cfg.Redis != nil {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address})

		if loggerService.GetApplication() != nil {
			redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Redis backs both the upload cache and the job queue, so it is required once configured.
		if err := redisClient.Ping(ctx).Err(); err != nil {
			server.closeDB()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Address, err)
		}

		server.Redis = redisClient
		server.Job = job.NewJobService(logger, cfg)
	} else {
		logger.Warn().Msg("no redis configured, uploads are cached in memory and background jobs are disabled")
	}

	return server, nil
}

// SetupHTTPServer configures the net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start serves HTTP until the server is shut down.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("public_base_url", s.Config.Server.PublicBaseURL).
		Strs("tenants", s.Config.TenantNames()).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains HTTP traffic, then stops workers and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if err := s.closeDB(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
	}

	return errors.Join(errs...)
}

func (s *Server) closeDB() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
