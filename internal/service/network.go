package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/model"
)

const (
	defaultTimeframeHours = 24
	reachPerNode          = 5000
	effectiveReachRatio   = 0.7
)

var defaultNetworkBusinessTypes = []string{"emprendedores", "consultores"}

type nodeProfile struct {
	name       string
	reach      int
	engagement float64
}

// Reach is the midpoint of each type's audience range.
var nodeProfiles = []nodeProfile{
	{name: "micro_influencer", reach: 3000, engagement: 0.08},
	{name: "community_leader", reach: 6000, engagement: 0.12},
	{name: "industry_expert", reach: 12500, engagement: 0.15},
	{name: "strategic_partner", reach: 30000, engagement: 0.10},
	{name: "brand_advocate", reach: 1250, engagement: 0.06},
}

var businessFocus = map[string][]string{
	"emprendedores": {"startup", "business", "entrepreneurship"},
	"consultores":   {"consulting", "strategy", "business"},
	"coaches":       {"coaching", "development", "leadership"},
	"inversores":    {"investment", "finance", "wealth"},
	"profesionales": {"professional", "career", "excellence"},
}

var nodeRoles = []string{
	"seed_engager",
	"content_amplifier",
	"community_leader",
	"authority_voice",
	"network_connector",
}

var roleActions = map[string][]model.NodeAction{
	"seed_engager": {
		{Hour: 0, Action: "like_and_save"},
		{Hour: 1, Action: "value_add_comment"},
		{Hour: 3, Action: "share_to_story"},
	},
	"content_amplifier": {
		{Hour: 2, Action: "repost_content"},
		{Hour: 6, Action: "create_related_content"},
		{Hour: 12, Action: "tag_relevant_accounts"},
	},
	"community_leader": {
		{Hour: 1, Action: "start_discussion"},
		{Hour: 4, Action: "engage_comments"},
		{Hour: 8, Action: "host_qna"},
	},
	"authority_voice": {
		{Hour: 0, Action: "endorse_content"},
		{Hour: 6, Action: "share_insights"},
		{Hour: 18, Action: "case_study_reference"},
	},
	"network_connector": {
		{Hour: 3, Action: "introduce_relevant_accounts"},
		{Hour: 9, Action: "facilitate_collaborations"},
		{Hour: 15, Action: "expand_network_reach"},
	},
}

var scheduleIntensity = []string{"high", "medium", "low"}

// NetworkService assembles a distribution network of partner accounts for a
// post. The network is computed, not discovered: node figures are fixed per
// node type.
type NetworkService struct {
	now func() time.Time
}

func NewNetworkService(now func() time.Time) *NetworkService {
	return &NetworkService{now: now}
}

func networkDefaults(req model.ActivateNetworkRequest) model.ActivateNetworkRequest {
	if req.AudienceSize == 0 {
		req.AudienceSize = DefaultAudienceSize
	}
	if req.TimeframeHours == 0 {
		req.TimeframeHours = defaultTimeframeHours
	}
	if req.Segment == "" {
		req.Segment = DefaultSegment
	}
	if len(req.BusinessTypes) == 0 {
		req.BusinessTypes = append([]string(nil), defaultNetworkBusinessTypes...)
	}
	return req
}

// Activate builds one node per 5000 accounts of audience, layered by reach
// and given a role, actions and a schedule within the timeframe.
func (s *NetworkService) Activate(req *model.ActivateNetworkRequest) *model.Network {
	in := networkDefaults(*req)
	now := s.now()

	nodes := identifyNodes(in, now)
	nodes = organizeByLayer(nodes)
	assignRoles(nodes, in.TimeframeHours)

	total := 0
	for _, n := range nodes {
		total += n.ReachPotential
	}
	coverage := math.Min(100, float64(total)/float64(in.AudienceSize)*100)
	coverage = math.Round(coverage*10) / 10

	return &model.Network{
		PostID:              in.PostID,
		ActivatedAt:         now.UTC(),
		Nodes:               nodes,
		TotalNodes:          len(nodes),
		TotalReachPotential: total,
		EstimatedCoverage:   coverage,
		EstimatedReach:      int(math.Floor(float64(total) * effectiveReachRatio)),
		Efficiency:          efficiency(coverage),
		Strategy:            networkStrategy(in.Segment),
		Timeline: model.NetworkTimeline{
			Hours:           in.TimeframeHours,
			CheckpointHours: networkCheckpoints(in.TimeframeHours),
		},
	}
}

func identifyNodes(in model.ActivateNetworkRequest, now time.Time) []model.Node {
	var focus []string
	for _, bt := range in.BusinessTypes {
		if f, ok := businessFocus[bt]; ok {
			focus = append(focus, f...)
		} else {
			focus = append(focus, "general")
		}
	}

	count := int(math.Ceil(float64(in.AudienceSize) / reachPerNode))
	nodes := make([]model.Node, 0, count)
	for i := 0; i < count; i++ {
		profile := nodeProfiles[i%len(nodeProfiles)]
		nodes = append(nodes, model.Node{
			ID:             fmt.Sprintf("node_%d_%d", now.UnixMilli(), i),
			Type:           profile.name,
			Segment:        in.Segment,
			Focus:          focus[i%len(focus)],
			ReachPotential: profile.reach,
			EngagementRate: profile.engagement,
			Status:         "available",
			ActivationCost: 0,
			Tags:           nodeTags(profile.name, in.BusinessTypes),
		})
	}
	return nodes
}

func nodeTags(nodeType string, businessTypes []string) []string {
	tags := append([]string{nodeType}, businessTypes...)
	if strings.Contains(nodeType, "influencer") {
		tags = append(tags, "social_influence")
	}
	if strings.Contains(nodeType, "expert") {
		tags = append(tags, "authority")
	}
	if strings.Contains(nodeType, "leader") {
		tags = append(tags, "community")
	}
	return tags
}

// organizeByLayer orders nodes core, middle, periphery, keeping the relative
// order inside each layer.
func organizeByLayer(nodes []model.Node) []model.Node {
	var core, middle, periphery []model.Node
	for _, n := range nodes {
		switch {
		case n.ReachPotential >= 10000:
			n.Layer = "core"
			core = append(core, n)
		case n.ReachPotential >= 2000:
			n.Layer = "middle"
			middle = append(middle, n)
		default:
			n.Layer = "periphery"
			periphery = append(periphery, n)
		}
	}

	out := make([]model.Node, 0, len(nodes))
	out = append(out, core...)
	out = append(out, middle...)
	return append(out, periphery...)
}

func assignRoles(nodes []model.Node, timeframe int) {
	for i := range nodes {
		role := nodeRoles[i%len(nodeRoles)]
		nodes[i].Role = role
		nodes[i].Actions = actionsForRole(role, timeframe)
		nodes[i].Schedule = nodeSchedule(i, timeframe)
	}
}

func actionsForRole(role string, timeframe int) []model.NodeAction {
	actions := make([]model.NodeAction, 0, len(roleActions[role]))
	for _, a := range roleActions[role] {
		if a.Hour <= timeframe {
			actions = append(actions, a)
		}
	}
	return actions
}

func nodeSchedule(index, timeframe int) model.NodeSchedule {
	offset := float64(index) * 0.5
	tf := float64(timeframe)
	return model.NodeSchedule{
		StartHour: math.Min(offset, tf*0.1),
		PeakHour:  math.Min(offset+4, tf*0.5),
		EndHour:   timeframe,
		Intensity: scheduleIntensity[index%len(scheduleIntensity)],
	}
}

func efficiency(coverage float64) string {
	switch {
	case coverage >= 80:
		return "high"
	case coverage >= 50:
		return "medium"
	default:
		return "low"
	}
}

func networkStrategy(segment string) model.NetworkStrategy {
	if segment == DefaultSegment {
		return model.NetworkStrategy{
			Name:             "Premium Organic Distribution",
			Focus:            "quality_over_quantity",
			KeyMetrics:       []string{"engagement_rate", "profile_visits", "saves"},
			SuccessThreshold: 0.08,
		}
	}
	return model.NetworkStrategy{
		Name:             "Standard Organic Amplification",
		Focus:            "maximum_reach",
		KeyMetrics:       []string{"reach", "impressions", "shares"},
		SuccessThreshold: 0.05,
	}
}

func networkCheckpoints(hours int) []model.NetworkCheckpoint {
	interval := 4
	if hours <= 12 {
		interval = 2
	}

	checkpoints := make([]model.NetworkCheckpoint, 0, hours/interval)
	for h := interval; h <= hours; h += interval {
		checkpoints = append(checkpoints, model.NetworkCheckpoint{
			Hour:    h,
			Action:  "performance_review",
			Metrics: []string{"reach_growth", "engagement_rate", "network_activity"},
		})
	}
	return checkpoints
}
