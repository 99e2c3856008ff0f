package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/database"
	"github.com/deppfellow/sovyx-backend/internal/handler"
	"github.com/deppfellow/sovyx-backend/internal/logger"
	"github.com/deppfellow/sovyx-backend/internal/repository"
	"github.com/deppfellow/sovyx-backend/internal/router"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/deppfellow/sovyx-backend/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const DefaultContextTimeout = 30

var rootCmd = &cobra.Command{
	Use:           "sovyx",
	Short:         "Instagram Graph API proxy and campaign builder",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server, background workers and scheduler",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		log := logger.NewLogger(cfg.Observability)
		return database.Migrate(cmd.Context(), &log, cfg, migrateTarget)
	},
}

var migrateTarget int32

func init() {
	migrateCmd.Flags().Int32Var(&migrateTarget, "to", 0, "schema version to migrate to (0 = latest)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("sovyx exited with an error")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if cfg.Database != nil && cfg.Primary.Env != "local" {
		if err := database.Migrate(cmd.Context(), &log, cfg, 0); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := services.Credentials.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed tenant credentials")
	}
	services.Uploads.StartJanitor(ctx)

	if srv.Job != nil {
		srv.Job.InitHandlers(cfg, &log, services.Instagram, services.Credentials)
		if err := srv.Job.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start background jobs")
		}
	}

	r, middlewares := router.NewRouter(srv, handler.NewHandlers(srv, services))
	middlewares.RateLimit.StartJanitor(ctx)

	srv.SetupHTTPServer(r)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
	return nil
}
