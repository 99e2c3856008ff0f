package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSegmentation(t *testing.T) *SegmentationService {
	d := newTestDeps(t, "http://graph.invalid")
	return NewSegmentationService(d.credentials, clock)
}

func TestCreateAudience_Defaults(t *testing.T) {
	s := newSegmentation(t)

	aud, err := s.CreateAudience(context.Background(), &model.CreateAudienceRequest{SessionID: "sess-1"})
	require.NoError(t, err)

	assert.Equal(t, "aud_1741944413000", aud.AudienceID)
	assert.Equal(t, 100000, aud.Size)
	assert.Equal(t, []string{"LATAM", "EUROPA"}, aud.Geo)
	assert.Equal(t, "high_ticket", aud.Segment)
	assert.Equal(t, model.AgeRange{Min: 25, Max: 45}, aud.AgeRange)
	assert.Equal(t, []string{"emprendedores", "creadores_contenido", "fitness_influencers", "agencias"}, aud.BusinessType)
	assert.Equal(t, "5k-10k mensual", aud.RevenueStage)
	assert.Equal(t, "intermedio", aud.ExperienceLevel)
	assert.Equal(t, 1000.0, aud.TicketMin)
	assert.Equal(t, 10000.0, aud.TicketMax)
	assert.Equal(t, 0.9, aud.QualityScore)
	assert.Equal(t, "instagram", aud.Platform)
	assert.Equal(t, "owner", aud.ClientUsed)
	assert.Equal(t, "1001", aud.UserID)
	assert.True(t, aud.AccessTokenUsed)
}

func TestCreateAudience_ConstraintsOverride(t *testing.T) {
	s := newSegmentation(t)

	aud, err := s.CreateAudience(context.Background(), &model.CreateAudienceRequest{
		Client: "client1",
		Constraints: model.Constraints{
			Size:     2500,
			Geo:      []string{"US"},
			AgeRange: &model.AgeRange{Min: 30, Max: 55},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2500, aud.Size)
	assert.Equal(t, []string{"US"}, aud.Geo)
	assert.Equal(t, model.AgeRange{Min: 30, Max: 55}, aud.AgeRange)
	assert.Equal(t, "client1", aud.ClientUsed)
}

func TestSegmentation_RequiresCompleteCredentials(t *testing.T) {
	s := newSegmentation(t)

	_, err := s.CreateAudience(context.Background(), &model.CreateAudienceRequest{Client: "client2"})
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestProjectReach(t *testing.T) {
	cases := []struct {
		hours, reach, closures int
	}{
		{24, 100000, 30000},
		{48, 200000, 60000},
		{30, 100000, 30000},
		{12, 0, 0},
	}
	for _, tc := range cases {
		got := ProjectReach(tc.hours)
		assert.Equal(t, tc.reach, got.ReachTotal, "hours=%d", tc.hours)
		assert.Equal(t, tc.closures, got.CierreEstimado, "hours=%d", tc.hours)
		assert.Equal(t, 0.30, got.ClosureRateAssumed)
	}
}

func TestAssignDelivery(t *testing.T) {
	s := newSegmentation(t)

	del, err := s.AssignDelivery(context.Background(), &model.AssignDeliveryRequest{
		SessionID:   "sess-1",
		AudienceID:  "aud_1",
		Post:        map[string]any{"id": "p1"},
		WindowHours: 72,
	})
	require.NoError(t, err)

	assert.Equal(t, "deliv_1741944413000", del.DeliveryID)
	assert.Equal(t, "scheduled", del.Status)
	assert.Equal(t, "aud_1", del.AudienceID)
	assert.Equal(t, 72, del.WindowHours)
	assert.Equal(t, 300000, del.Target.ReachTotal)
	assert.Equal(t, 90000, del.Target.CierreEstimado)
	assert.Zero(t, del.Target.CPMEstimated)
	assert.Equal(t, fixedNow.Add(72*time.Hour), del.ETA)
}

func TestAssignDelivery_DefaultWindow(t *testing.T) {
	s := newSegmentation(t)

	del, err := s.AssignDelivery(context.Background(), &model.AssignDeliveryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 24, del.WindowHours)
	assert.Equal(t, 100000, del.Target.ReachTotal)
}

func TestCreateCampaign(t *testing.T) {
	s := newSegmentation(t)

	camp, err := s.CreateCampaign(context.Background(), &model.CreateCampaignRequest{
		Client:      "client1",
		SessionID:   "sess-9",
		WindowHours: 48,
	})
	require.NoError(t, err)

	assert.Equal(t, "success", camp.Status)
	assert.Equal(t, "camp_1741944413000", camp.CampaignID)
	assert.True(t, camp.UnifiedResponse)
	assert.Equal(t, camp.Audience.AudienceID, camp.Delivery.AudienceID)
	assert.Equal(t, DefaultPost, camp.Delivery.Post)
	assert.Equal(t, 15.50, camp.Delivery.Target.CPMEstimated)
	assert.Equal(t, 200000, camp.Summary.EstimatedReach)
	assert.Equal(t, 60000, camp.Summary.EstimatedClosures)
	assert.Equal(t, "48 horas", camp.Summary.DeliveryWindow)
	assert.Equal(t, "client1", camp.Summary.Client)
	assert.Equal(t, []string{"audience/create", "delivery/assign"}, camp.Metadata.EndpointsConsolidated)
	assert.Equal(t, "1.0", camp.Metadata.Version)
}

func TestCreateCampaign_RequiresSession(t *testing.T) {
	s := newSegmentation(t)

	_, err := s.CreateCampaign(context.Background(), &model.CreateCampaignRequest{})
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "session_id is required", httpErr.Message)
}
