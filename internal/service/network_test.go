package service

import (
	"testing"

	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivate_Defaults(t *testing.T) {
	s := NewNetworkService(clock)

	n := s.Activate(&model.ActivateNetworkRequest{PostID: "post-1"})

	require.Equal(t, 20, n.TotalNodes)
	require.Len(t, n.Nodes, 20)
	assert.Equal(t, "post-1", n.PostID)
	assert.Equal(t, fixedNow, n.ActivatedAt)

	// 4 nodes of each type: 3000+6000+12500+30000+1250 = 52750 per cycle.
	assert.Equal(t, 211000, n.TotalReachPotential)
	assert.Equal(t, 100.0, n.EstimatedCoverage)
	assert.Equal(t, 147700, n.EstimatedReach)
	assert.Equal(t, "high", n.Efficiency)
	assert.Equal(t, "Premium Organic Distribution", n.Strategy.Name)

	// Core first, then middle, then periphery.
	layers := map[string]int{}
	last := 0
	order := map[string]int{"core": 0, "middle": 1, "periphery": 2}
	for _, node := range n.Nodes {
		layers[node.Layer]++
		assert.GreaterOrEqual(t, order[node.Layer], last)
		last = order[node.Layer]
	}
	assert.Equal(t, map[string]int{"core": 8, "middle": 8, "periphery": 4}, layers)

	first := n.Nodes[0]
	assert.Equal(t, "industry_expert", first.Type)
	assert.Equal(t, "seed_engager", first.Role)
	assert.Equal(t, []string{"industry_expert", "emprendedores", "consultores", "authority"}, first.Tags)
	assert.Equal(t, model.NodeSchedule{StartHour: 0, PeakHour: 4, EndHour: 24, Intensity: "high"}, first.Schedule)

	assert.Len(t, n.Timeline.CheckpointHours, 6)
	assert.Equal(t, 4, n.Timeline.CheckpointHours[0].Hour)
}

func TestActivate_SmallAudience(t *testing.T) {
	s := NewNetworkService(clock)

	n := s.Activate(&model.ActivateNetworkRequest{
		AudienceSize:   12000,
		TimeframeHours: 6,
		Segment:        "mass_market",
		BusinessTypes:  []string{"unknown"},
	})

	require.Equal(t, 3, n.TotalNodes)
	assert.Equal(t, 21500, n.TotalReachPotential)
	assert.Equal(t, 100.0, n.EstimatedCoverage)
	assert.Equal(t, "Standard Organic Amplification", n.Strategy.Name)
	for _, node := range n.Nodes {
		assert.Equal(t, "general", node.Focus)
		for _, a := range node.Actions {
			assert.LessOrEqual(t, a.Hour, 6)
		}
	}

	hours := []int{}
	for _, cp := range n.Timeline.CheckpointHours {
		hours = append(hours, cp.Hour)
	}
	assert.Equal(t, []int{2, 4, 6}, hours)
}

func TestActivate_PartialCoverage(t *testing.T) {
	s := NewNetworkService(clock)

	// One micro influencer node covers 3000 of 4000.
	n := s.Activate(&model.ActivateNetworkRequest{AudienceSize: 4000})
	assert.Equal(t, 75.0, n.EstimatedCoverage)
	assert.Equal(t, "medium", n.Efficiency)
	assert.Equal(t, 2100, n.EstimatedReach)
}
