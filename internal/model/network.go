package model

import (
	"time"

	"github.com/deppfellow/sovyx-backend/internal/validation"
)

type NodeAction struct {
	Hour   int    `json:"hour"`
	Action string `json:"action"`
}

type NodeSchedule struct {
	StartHour float64 `json:"start_hour"`
	PeakHour  float64 `json:"peak_hour"`
	EndHour   int     `json:"end_hour"`
	Intensity string  `json:"intensity"`
}

// Node is a distribution account taking part in an activation.
type Node struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	Segment        string       `json:"segment"`
	Focus          string       `json:"focus"`
	ReachPotential int          `json:"reach_potential"`
	EngagementRate float64      `json:"engagement_rate"`
	Status         string       `json:"status"`
	ActivationCost int          `json:"activation_cost"`
	Tags           []string     `json:"tags"`
	Layer          string       `json:"layer"`
	Role           string       `json:"role"`
	Actions        []NodeAction `json:"actions"`
	Schedule       NodeSchedule `json:"schedule"`
}

type NetworkStrategy struct {
	Name             string   `json:"name"`
	Focus            string   `json:"focus"`
	KeyMetrics       []string `json:"key_metrics"`
	SuccessThreshold float64  `json:"success_threshold"`
}

type NetworkCheckpoint struct {
	Hour    int      `json:"hour"`
	Action  string   `json:"action"`
	Metrics []string `json:"metrics"`
}

type NetworkTimeline struct {
	Hours           int                 `json:"hours"`
	CheckpointHours []NetworkCheckpoint `json:"checkpoint_hours"`
}

// Network is an activated distribution network for one post.
type Network struct {
	PostID              string          `json:"post_id"`
	ActivatedAt         time.Time       `json:"activated_at"`
	Nodes               []Node          `json:"nodes"`
	TotalNodes          int             `json:"total_nodes"`
	TotalReachPotential int             `json:"total_reach_potential"`
	EstimatedCoverage   float64         `json:"estimated_coverage"`
	EstimatedReach      int             `json:"estimated_reach"`
	Efficiency          string          `json:"efficiency"`
	Strategy            NetworkStrategy `json:"strategy"`
	Timeline            NetworkTimeline `json:"timeline"`
}

type ScheduledAction struct {
	ScheduledTime  time.Time `json:"scheduled_time"`
	Action         string    `json:"action"`
	TargetAccounts int       `json:"target_accounts"`
	Status         string    `json:"status"`
}

type MonitoringCheckpoint struct {
	Hour          int       `json:"hour"`
	Time          time.Time `json:"time"`
	ExpectedReach int       `json:"expected_reach"`
	Action        string    `json:"action"`
}

type AlertThresholds struct {
	LowEngagement        float64 `json:"low_engagement"`
	SlowGrowth           int     `json:"slow_growth"`
	AlgorithmDownranking bool    `json:"algorithm_downranking"`
}

type Monitoring struct {
	PostID          string                 `json:"post_id"`
	Checkpoints     []MonitoringCheckpoint `json:"checkpoints"`
	MetricsToTrack  []string               `json:"metrics_to_track"`
	AlertThresholds AlertThresholds        `json:"alert_thresholds"`
}

type NetworkActivation struct {
	NodesActivated    int       `json:"nodes_activated"`
	ActivationTime    time.Time `json:"activation_time"`
	StrategyApplied   string    `json:"strategy_applied"`
	EstimatedCoverage float64   `json:"estimated_coverage"`
}

// Orchestration is the organic distribution plan for a published post.
type Orchestration struct {
	Status            string            `json:"status"`
	Strategy          string            `json:"strategy"`
	Description       string            `json:"description"`
	Confidence        float64           `json:"confidence"`
	Network           NetworkActivation `json:"network"`
	Schedule          []ScheduledAction `json:"schedule"`
	Monitoring        Monitoring        `json:"monitoring"`
	EstimatedVelocity string            `json:"estimated_velocity"`
	StartedAt         time.Time         `json:"started_at"`
}

// ------------------------------------------------------------

type ActivateNetworkRequest struct {
	PostID         string   `json:"post_id"`
	AudienceSize   int      `json:"audience_size" validate:"gte=0,max=10000000"`
	TimeframeHours int      `json:"timeframe_hours" validate:"gte=0,max=720"`
	Segment        string   `json:"segment"`
	BusinessTypes  []string `json:"business_types"`
}

func (r *ActivateNetworkRequest) Validate() error {
	return validation.Struct(r)
}

type OrchestrationPost struct {
	PostID    string `json:"post_id"`
	MediaType string `json:"media_type"`
}

type OrchestrationTimeline struct {
	DurationHours int `json:"duration_hours" validate:"gte=0,max=720"`
	TargetReach   int `json:"target_reach" validate:"gte=0,max=10000000"`
}

type ExecuteOrchestrationRequest struct {
	Client   string                  `param:"client" json:"-"`
	Post     OrchestrationPost       `json:"post"`
	Network  *ActivateNetworkRequest `json:"network"`
	Timeline OrchestrationTimeline   `json:"timeline"`
}

func (r *ExecuteOrchestrationRequest) Validate() error {
	return validation.Struct(r)
}
