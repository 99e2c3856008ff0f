package job

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	got *model.PublishMediaRequest
	err error
}

func (f *fakePublisher) PublishMedia(_ context.Context, req *model.PublishMediaRequest) (*model.MediaPublication, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &model.MediaPublication{Success: true, PostID: "p1", Client: req.Client, MediaType: model.MediaTypeImage}, nil
}

type fakeRefresher struct {
	calls int
}

func (f *fakeRefresher) RefreshAll(context.Context) ([]string, []model.RefreshFailure) {
	f.calls++
	return []string{"owner"}, []model.RefreshFailure{{Tenant: "client1", Error: "expired"}}
}

func newTestJobService(p Publisher, r TokenRefresher) *JobService {
	logger := zerolog.Nop()
	return &JobService{logger: &logger, publisher: p, refresher: r}
}

func TestHandlePublishMediaTask(t *testing.T) {
	publisher := &fakePublisher{}
	j := newTestJobService(publisher, &fakeRefresher{})

	task, err := NewPublishMediaTask(&model.PublishMediaRequest{Client: "client1", Files: []string{"u1"}, Async: true})
	require.NoError(t, err)
	assert.Equal(t, TaskPublishMedia, task.Type())

	require.NoError(t, j.handlePublishMediaTask(context.Background(), task))
	require.NotNil(t, publisher.got)
	assert.Equal(t, "client1", publisher.got.Client)
	assert.Equal(t, []string{"u1"}, publisher.got.Files)
	assert.False(t, publisher.got.Async)
}

func TestHandlePublishMediaTask_SkipsRetryOnClientError(t *testing.T) {
	j := newTestJobService(&fakePublisher{err: errs.NewBadRequestError("invalid client", true, nil, nil, nil)}, &fakeRefresher{})
	task, _ := NewPublishMediaTask(&model.PublishMediaRequest{Client: "nobody", Files: []string{"u1"}})

	err := j.handlePublishMediaTask(context.Background(), task)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandlePublishMediaTask_RetriesUpstreamError(t *testing.T) {
	j := newTestJobService(&fakePublisher{err: errs.NewUpstreamError("failed to publish to Instagram")}, &fakeRefresher{})
	task, _ := NewPublishMediaTask(&model.PublishMediaRequest{Files: []string{"u1"}})

	err := j.handlePublishMediaTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandlePublishMediaTask_BadPayload(t *testing.T) {
	j := newTestJobService(&fakePublisher{}, &fakeRefresher{})

	err := j.handlePublishMediaTask(context.Background(), asynq.NewTask(TaskPublishMedia, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleRefreshTokensTask_WithoutEmail(t *testing.T) {
	refresher := &fakeRefresher{}
	j := newTestJobService(&fakePublisher{}, refresher)

	task, err := NewRefreshTokensTask()
	require.NoError(t, err)

	require.NoError(t, j.handleRefreshTokensTask(context.Background(), task))
	assert.Equal(t, 1, refresher.calls)
}

func TestStart_RequiresHandlers(t *testing.T) {
	j := newTestJobService(nil, nil)
	assert.Error(t, j.Start())
}
