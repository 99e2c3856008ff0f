package model

import (
	"time"

	"github.com/deppfellow/sovyx-backend/internal/validation"
)

// AgeRange bounds the targeted age bracket.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Constraints narrows an audience. Zero values are replaced with defaults.
type Constraints struct {
	Size            int       `json:"size,omitempty" validate:"gte=0"`
	Geo             []string  `json:"geo,omitempty"`
	Segment         string    `json:"segment,omitempty"`
	AgeRange        *AgeRange `json:"age_range,omitempty"`
	BusinessType    []string  `json:"business_type,omitempty"`
	RevenueStage    string    `json:"revenue_stage,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	TicketMin       float64   `json:"ticket_min,omitempty" validate:"gte=0"`
	TicketMax       float64   `json:"ticket_max,omitempty" validate:"gte=0"`
	Platform        string    `json:"platform,omitempty"`
}

// Audience is a marketing segment built from constraints.
type Audience struct {
	AudienceID      string    `json:"audience_id"`
	SessionID       string    `json:"session_id,omitempty"`
	Size            int       `json:"size"`
	Geo             []string  `json:"geo"`
	Segment         string    `json:"segment"`
	AgeRange        AgeRange  `json:"age_range"`
	BusinessType    []string  `json:"business_type"`
	RevenueStage    string    `json:"revenue_stage"`
	ExperienceLevel string    `json:"experience_level"`
	TicketMin       float64   `json:"ticket_min"`
	TicketMax       float64   `json:"ticket_max"`
	QualityScore    float64   `json:"quality_score"`
	Platform        string    `json:"platform"`
	ClientUsed      string    `json:"client_used"`
	UserID          string    `json:"user_id"`
	AccessTokenUsed bool      `json:"access_token_used"`
	CreatedAt       time.Time `json:"created_at"`
}

// DeliveryTarget is the arithmetic reach projection of a delivery window.
type DeliveryTarget struct {
	ReachTotal         int     `json:"reach_total"`
	CierreEstimado     int     `json:"cierre_estimado"`
	ClosureRateAssumed float64 `json:"closure_rate_assumed"`
	CPMEstimated       float64 `json:"cpm_estimated,omitempty"`
}

// Delivery schedules a post for an audience over a window of hours.
type Delivery struct {
	DeliveryID      string         `json:"delivery_id"`
	Status          string         `json:"status"`
	SessionID       string         `json:"session_id,omitempty"`
	AudienceID      string         `json:"audience_id,omitempty"`
	Post            any            `json:"post,omitempty"`
	Geo             []string       `json:"geo"`
	AgeRange        AgeRange       `json:"age_range"`
	BusinessType    []string       `json:"business_type"`
	RevenueStage    string         `json:"revenue_stage"`
	ExperienceLevel string         `json:"experience_level"`
	TicketMin       float64        `json:"ticket_min"`
	TicketMax       float64        `json:"ticket_max"`
	WindowHours     int            `json:"window_hours"`
	Target          DeliveryTarget `json:"target"`
	ETA             time.Time      `json:"eta"`
	ClientUsed      string         `json:"client_used"`
	UserID          string         `json:"user_id"`
	AccessTokenUsed bool           `json:"access_token_used"`
	ScheduledAt     time.Time      `json:"scheduled_at"`
}

type CampaignSummary struct {
	TotalAudience     int    `json:"total_audience"`
	DeliveryWindow    string `json:"delivery_window"`
	EstimatedReach    int    `json:"estimated_reach"`
	EstimatedClosures int    `json:"estimated_closures"`
	Client            string `json:"client"`
	Platform          string `json:"platform"`
}

type CampaignMetadata struct {
	EndpointsConsolidated []string `json:"endpoints_consolidated"`
	SingleCall            bool     `json:"single_call"`
	ResponseTimeMS        int64    `json:"response_time_ms"`
	Version               string   `json:"version"`
}

// Campaign is an audience and its delivery built in a single call.
type Campaign struct {
	Status          string           `json:"status"`
	CampaignID      string           `json:"campaign_id"`
	UnifiedResponse bool             `json:"unified_response"`
	Timestamp       time.Time        `json:"timestamp"`
	Audience        Audience         `json:"audience"`
	Delivery        Delivery         `json:"delivery"`
	Summary         CampaignSummary  `json:"summary"`
	Metadata        CampaignMetadata `json:"metadata"`
}

// ------------------------------------------------------------

type CreateAudienceRequest struct {
	Client      string      `param:"client" json:"-"`
	SessionID   string      `json:"session_id"`
	Constraints Constraints `json:"constraints"`
}

func (r *CreateAudienceRequest) Validate() error {
	return validation.Struct(r)
}

type AssignDeliveryRequest struct {
	Client      string      `param:"client" json:"-"`
	SessionID   string      `json:"session_id"`
	AudienceID  string      `json:"audience_id"`
	Post        any         `json:"post"`
	WindowHours int         `json:"window_hours"`
	Constraints Constraints `json:"constraints"`
}

func (r *AssignDeliveryRequest) Validate() error {
	return validation.Struct(r)
}

type CreateCampaignRequest struct {
	Client      string      `param:"client" json:"-"`
	SessionID   string      `json:"session_id"`
	Post        any         `json:"post"`
	WindowHours int         `json:"window_hours"`
	Constraints Constraints `json:"constraints"`
}

func (r *CreateCampaignRequest) Validate() error {
	return validation.Struct(r)
}
