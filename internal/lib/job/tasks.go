package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/hibiken/asynq"
)

const (
	TaskPublishMedia  = "instagram:publish"
	TaskRefreshTokens = "instagram:refresh_tokens"
)

// NewPublishMediaTask wraps a publish request. Video processing can take
// minutes, hence the long timeout.
func NewPublishMediaTask(req *model.PublishMediaRequest) (*asynq.Task, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode publish payload: %w", err)
	}

	return asynq.NewTask(
		TaskPublishMedia,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueCritical),
		asynq.Timeout(10*time.Minute),
	), nil
}

func NewRefreshTokensTask() (*asynq.Task, error) {
	return asynq.NewTask(
		TaskRefreshTokens,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue(QueueDefault),
		asynq.Timeout(2*time.Minute),
	), nil
}
