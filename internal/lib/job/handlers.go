package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/lib/email"
	"github.com/deppfellow/sovyx-backend/internal/lib/metrics"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Publisher publishes uploaded media synchronously.
type Publisher interface {
	PublishMedia(ctx context.Context, req *model.PublishMediaRequest) (*model.MediaPublication, error)
}

// TokenRefresher refreshes the token of every tenant.
type TokenRefresher interface {
	RefreshAll(ctx context.Context) (refreshed []string, failures []model.RefreshFailure)
}

// InitHandlers injects the services task handlers call into. Notifications
// are sent only when both a Resend key and a notify address are configured.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger, publisher Publisher, refresher TokenRefresher) {
	j.publisher = publisher
	j.refresher = refresher

	if cfg.Integration.ResendAPIKey != "" && cfg.Integration.NotifyEmail != "" {
		j.emailClient = email.NewClient(cfg, logger)
		j.notifyEmail = cfg.Integration.NotifyEmail
	}
}

func (j *JobService) handlePublishMediaTask(ctx context.Context, t *asynq.Task) error {
	var req model.PublishMediaRequest
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		metrics.JobsProcessed.WithLabelValues(TaskPublishMedia, "invalid").Inc()
		return fmt.Errorf("failed to unmarshal publish payload: %v: %w", err, asynq.SkipRetry)
	}
	req.Async = false

	logger := j.logger.With().
		Str("task", TaskPublishMedia).
		Str("client", req.Client).
		Int("files", len(req.Files)).
		Logger()

	logger.Info().Msg("processing publish task")

	pub, err := j.publisher.PublishMedia(ctx, &req)
	if err != nil {
		metrics.JobsProcessed.WithLabelValues(TaskPublishMedia, "error").Inc()
		logger.Error().Err(err).Msg("publish task failed")

		// Client errors (unknown tenant, expired upload) will not succeed on retry.
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status < http.StatusInternalServerError {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	metrics.JobsProcessed.WithLabelValues(TaskPublishMedia, "success").Inc()
	logger.Info().
		Str("post_id", pub.PostID).
		Str("media_type", pub.MediaType).
		Msg("publish task completed")

	if j.emailClient != nil {
		if err := j.emailClient.SendPublishReport(j.notifyEmail, pub); err != nil {
			// The post is live; a failed report must not trigger a republish.
			logger.Error().Err(err).Msg("failed to send publish report")
		}
	}

	return nil
}

func (j *JobService) handleRefreshTokensTask(ctx context.Context, _ *asynq.Task) error {
	logger := j.logger.With().Str("task", TaskRefreshTokens).Logger()
	logger.Info().Msg("processing token refresh task")

	refreshed, failures := j.refresher.RefreshAll(ctx)

	status := "success"
	if len(failures) > 0 {
		status = "partial"
	}
	metrics.JobsProcessed.WithLabelValues(TaskRefreshTokens, status).Inc()

	logger.Info().
		Strs("refreshed", refreshed).
		Int("failures", len(failures)).
		Msg("token refresh task completed")

	if len(failures) > 0 && j.emailClient != nil {
		if err := j.emailClient.SendTokenRefreshFailed(j.notifyEmail, failures, time.Now()); err != nil {
			logger.Error().Err(err).Msg("failed to send token refresh report")
			return err
		}
	}

	return nil
}
