package service

import (
	"context"
	"testing"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestration(t *testing.T) *OrchestrationService {
	d := newTestDeps(t, "http://graph.invalid")
	return NewOrchestrationService(d.credentials, NewNetworkService(clock), clock)
}

func TestExecute_OwnerDefaults(t *testing.T) {
	s := newOrchestration(t)

	got, err := s.Execute(context.Background(), &model.ExecuteOrchestrationRequest{
		Post: model.OrchestrationPost{PostID: "1790001"},
	})
	require.NoError(t, err)

	assert.Equal(t, "orchestration_active", got.Status)
	assert.Equal(t, "High Ticket Viral Push", got.Strategy)
	assert.Equal(t, 0.8, got.Confidence)
	assert.Equal(t, "fast", got.EstimatedVelocity)
	assert.Equal(t, fixedNow, got.StartedAt)

	assert.Equal(t, 20, got.Network.NodesActivated)
	assert.Equal(t, 100.0, got.Network.EstimatedCoverage)
	assert.Equal(t, "High Ticket Viral Push", got.Network.StrategyApplied)

	require.Len(t, got.Schedule, 4)
	assert.Equal(t, "seed_micro_influencers", got.Schedule[0].Action)
	assert.Equal(t, fixedNow.Add(12*time.Hour), got.Schedule[3].ScheduledTime)
	assert.Equal(t, "pending", got.Schedule[0].Status)

	require.Len(t, got.Monitoring.Checkpoints, 12)
	assert.Equal(t, 2, got.Monitoring.Checkpoints[0].Hour)
	assert.Equal(t, 8333, got.Monitoring.Checkpoints[0].ExpectedReach)
	assert.Equal(t, 100000, got.Monitoring.Checkpoints[11].ExpectedReach)
	assert.Equal(t, "1790001", got.Monitoring.PostID)
}

func TestExecute_TenantStrategy(t *testing.T) {
	s := newOrchestration(t)

	got, err := s.Execute(context.Background(), &model.ExecuteOrchestrationRequest{
		Client:   "client1",
		Post:     model.OrchestrationPost{PostID: "p"},
		Network:  &model.ActivateNetworkRequest{AudienceSize: 5000},
		Timeline: model.OrchestrationTimeline{DurationHours: 48, TargetReach: 60000},
	})
	require.NoError(t, err)

	assert.Equal(t, "Premium Network Distribution", got.Strategy)
	assert.Equal(t, 0.95, got.Confidence)
	assert.Equal(t, "moderate", got.EstimatedVelocity)
	assert.Equal(t, 1, got.Network.NodesActivated)
	assert.Equal(t, 5.0, got.Network.EstimatedCoverage)
	assert.Len(t, got.Schedule, 4)
	assert.Len(t, got.Monitoring.Checkpoints, 8)
	assert.Equal(t, 6, got.Monitoring.Checkpoints[0].Hour)
}

func TestExecute_ShortTimelineDropsLatePhases(t *testing.T) {
	s := newOrchestration(t)

	got, err := s.Execute(context.Background(), &model.ExecuteOrchestrationRequest{
		Timeline: model.OrchestrationTimeline{DurationHours: 8, TargetReach: 100000},
	})
	require.NoError(t, err)
	assert.Len(t, got.Schedule, 3)
	assert.Equal(t, "viral", got.EstimatedVelocity)
}

func TestExecute_UnknownClient(t *testing.T) {
	s := newOrchestration(t)

	_, err := s.Execute(context.Background(), &model.ExecuteOrchestrationRequest{Client: "ghost"})
	var httpErr *errs.HTTPError
	assert.ErrorAs(t, err, &httpErr)
}
