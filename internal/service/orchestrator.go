package service

import (
	"context"
	"math"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/config"
	"github.com/deppfellow/sovyx-backend/internal/model"
)

const (
	defaultDurationHours = 24
	defaultTargetReach   = 100000
)

type phase struct {
	hour   int
	action string
	target int
}

type distributionStrategy struct {
	name             string
	description      string
	phases           []phase
	engagementTarget float64
}

var (
	highTicketViral = distributionStrategy{
		name:        "High Ticket Viral Push",
		description: "Organic distribution focused on a high ticket audience",
		phases: []phase{
			{hour: 0, action: "seed_micro_influencers", target: 50},
			{hour: 2, action: "community_engagement", target: 500},
			{hour: 6, action: "authority_tagging", target: 2000},
			{hour: 12, action: "cross_promotion", target: 5000},
		},
		engagementTarget: 0.08,
	}

	premiumNetwork = distributionStrategy{
		name:        "Premium Network Distribution",
		description: "Private network of high ticket accounts",
		phases: []phase{
			{hour: 0, action: "network_activation", target: 100},
			{hour: 1, action: "value_add_comments", target: 500},
			{hour: 4, action: "strategic_shares", target: 2000},
			{hour: 8, action: "dm_campaign", target: 10000},
		},
		engagementTarget: 0.12,
	}
)

// OrchestrationService plans the organic distribution of a published post.
type OrchestrationService struct {
	credentials *CredentialService
	network     *NetworkService
	now         func() time.Time
}

func NewOrchestrationService(credentials *CredentialService, network *NetworkService, now func() time.Time) *OrchestrationService {
	return &OrchestrationService{credentials: credentials, network: network, now: now}
}

// Execute picks the tenant's strategy, activates a network for the post and
// lays out the action schedule and monitoring checkpoints.
func (s *OrchestrationService) Execute(ctx context.Context, req *model.ExecuteOrchestrationRequest) (*model.Orchestration, error) {
	cred, err := s.credentials.Resolve(ctx, req.Client)
	if err != nil {
		return nil, err
	}

	duration := req.Timeline.DurationHours
	if duration == 0 {
		duration = defaultDurationHours
	}
	target := req.Timeline.TargetReach
	if target == 0 {
		target = defaultTargetReach
	}

	strategy := premiumNetwork
	if cred.Tenant == config.OwnerTenant {
		strategy = highTicketViral
	}

	networkReq := model.ActivateNetworkRequest{
		PostID:         req.Post.PostID,
		AudienceSize:   target,
		TimeframeHours: duration,
	}
	if req.Network != nil {
		networkReq = *req.Network
		if networkReq.PostID == "" {
			networkReq.PostID = req.Post.PostID
		}
	}
	network := s.network.Activate(&networkReq)

	now := s.now()
	return &model.Orchestration{
		Status:      "orchestration_active",
		Strategy:    strategy.name,
		Description: strategy.description,
		Confidence:  confidence(strategy),
		Network: model.NetworkActivation{
			NodesActivated:    network.TotalNodes,
			ActivationTime:    now.UTC(),
			StrategyApplied:   strategy.name,
			EstimatedCoverage: networkCoverage(network, target),
		},
		Schedule:          scheduleActions(strategy, duration, now),
		Monitoring:        monitoring(req.Post.PostID, duration, target, now),
		EstimatedVelocity: velocity(target, duration),
		StartedAt:         now.UTC(),
	}, nil
}

func scheduleActions(strategy distributionStrategy, duration int, now time.Time) []model.ScheduledAction {
	actions := make([]model.ScheduledAction, 0, len(strategy.phases))
	for _, p := range strategy.phases {
		if p.hour > duration {
			continue
		}
		actions = append(actions, model.ScheduledAction{
			ScheduledTime:  now.Add(time.Duration(p.hour) * time.Hour).UTC(),
			Action:         p.action,
			TargetAccounts: p.target,
			Status:         "pending",
		})
	}
	return actions
}

// monitoring places checkpoints every 2h up to a day, every 6h beyond, each
// expecting a linear share of the target reach.
func monitoring(postID string, duration, target int, now time.Time) model.Monitoring {
	interval := 6
	if duration <= 24 {
		interval = 2
	}

	checkpoints := make([]model.MonitoringCheckpoint, 0, duration/interval)
	for h := interval; h <= duration; h += interval {
		checkpoints = append(checkpoints, model.MonitoringCheckpoint{
			Hour:          h,
			Time:          now.Add(time.Duration(h) * time.Hour).UTC(),
			ExpectedReach: int(math.Floor(float64(target) / float64(duration) * float64(h))),
			Action:        "analyze_and_adjust",
		})
	}

	return model.Monitoring{
		PostID:         postID,
		Checkpoints:    checkpoints,
		MetricsToTrack: []string{"reach", "engagement_rate", "profile_visits", "saves", "shares"},
		AlertThresholds: model.AlertThresholds{
			LowEngagement:        0.03,
			SlowGrowth:           100,
			AlgorithmDownranking: true,
		},
	}
}

func confidence(strategy distributionStrategy) float64 {
	c := 0.7
	if strategy.engagementTarget >= 0.1 {
		c += 0.15
	}
	if len(strategy.phases) >= 4 {
		c += 0.1
	}
	return math.Min(0.95, math.Round(c*100)/100)
}

func velocity(target, duration int) string {
	hourly := float64(target) / float64(duration)
	switch {
	case hourly >= 5000:
		return "viral"
	case hourly >= 2000:
		return "fast"
	case hourly >= 1000:
		return "moderate"
	default:
		return "slow"
	}
}

func networkCoverage(network *model.Network, target int) float64 {
	total := 0
	for _, n := range network.Nodes {
		total += n.ReachPotential
	}
	return math.Min(100, float64(total)/float64(target)*100)
}
