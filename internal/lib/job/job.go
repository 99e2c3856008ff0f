// Package job runs background work on Asynq.
//
// Publishing uploaded media can take minutes while videos are processed, so
// it is enqueued as a task. Token refresh runs on a cron schedule.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type JobService struct {
	Client *asynq.Client

	server    *asynq.Server
	scheduler *asynq.Scheduler
	cron      string
	logger    *zerolog.Logger

	publisher   Publisher
	refresher   TokenRefresher
	emailClient *email.Client
	notifyEmail string
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Jobs.Concurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   newAsynqLogger(logger),
		LogLevel: asynq.WarnLevel,
	})

	return &JobService{
		Client:    client,
		server:    server,
		scheduler: scheduler,
		cron:      cfg.Jobs.TokenRefreshCron,
		logger:    logger,
	}
}

// Start registers handlers, starts the worker pool, and schedules the token
// refresh. InitHandlers must have been called first.
func (j *JobService) Start() error {
	if j.publisher == nil || j.refresher == nil {
		return fmt.Errorf("job handlers are not initialized")
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPublishMedia, j.handlePublishMediaTask)
	mux.HandleFunc(TaskRefreshTokens, j.handleRefreshTokensTask)

	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(mux); err != nil {
		return fmt.Errorf("start job server: %w", err)
	}

	task, err := NewRefreshTokensTask()
	if err != nil {
		return err
	}
	entryID, err := j.scheduler.Register(j.cron, task)
	if err != nil {
		return fmt.Errorf("schedule token refresh %q: %w", j.cron, err)
	}
	if err := j.scheduler.Start(); err != nil {
		return fmt.Errorf("start job scheduler: %w", err)
	}

	j.logger.Info().
		Str("cron", j.cron).
		Str("entry_id", entryID).
		Msg("scheduled token refresh")

	return nil
}

// Enqueue pushes task onto its queue.
func (j *JobService) Enqueue(ctx context.Context, task *asynq.Task) (*asynq.TaskInfo, error) {
	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}

	j.logger.Info().
		Str("task", task.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")

	return info, nil
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.scheduler.Shutdown()
	j.server.Shutdown()
	j.Client.Close()
}

// asynqLogger routes asynq's internal logging into zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) *asynqLogger {
	return &asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
