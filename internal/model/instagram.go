package model

import (
	"time"

	"github.com/deppfellow/sovyx-backend/internal/validation"
)

// Media types accepted by the Graph API container endpoint.
const (
	MediaTypeImage    = "IMAGE"
	MediaTypeVideo    = "VIDEO"
	MediaTypeCarousel = "CAROUSEL"
)

// DefaultInsightMetrics is requested when the caller names no metric.
const DefaultInsightMetrics = "impressions,reach,saved,engagement"

// GraphPayload is a decoded Graph API response, passed through untouched.
type GraphPayload map[string]any

// Credential is the token a tenant uses against the Graph API.
type Credential struct {
	Tenant      string     `json:"tenant"`
	AccessToken string     `json:"-"`
	UserID      string     `json:"user_id"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Complete reports whether both token and user id are set.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.UserID != ""
}

// PublishResult is returned by the single-image publish route.
type PublishResult struct {
	Status     string       `json:"status"`
	CreationID string       `json:"creation_id"`
	Publish    GraphPayload `json:"publish"`
}

// MediaPublication is the outcome of publishing uploaded media.
type MediaPublication struct {
	Success     bool         `json:"success"`
	PostID      string       `json:"post_id"`
	Permalink   string       `json:"permalink,omitempty"`
	MediaType   string       `json:"media_type"`
	Caption     string       `json:"caption"`
	Client      string       `json:"client"`
	Timestamp   time.Time    `json:"timestamp"`
	RawResponse GraphPayload `json:"raw_response"`
}

// QueuedPublication is returned when publishing runs in the background.
type QueuedPublication struct {
	Status string `json:"status"`
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}

type Insights struct {
	MediaID string       `json:"media_id"`
	Metrics GraphPayload `json:"metrics"`
}

// RefreshFailure records a tenant whose token could not be refreshed.
type RefreshFailure struct {
	Tenant string `json:"tenant"`
	Error  string `json:"error"`
}

// ------------------------------------------------------------

type RefreshTokenRequest struct {
	Client string `param:"client" json:"-"`
}

func (r *RefreshTokenRequest) Validate() error {
	return nil
}

type PublishRequest struct {
	Client   string `param:"client" json:"-"`
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

func (r *PublishRequest) Validate() error {
	return validation.Struct(r)
}

// PublishMediaRequest publishes files previously stored through the upload
// endpoint. Files holds upload ids.
type PublishMediaRequest struct {
	Client      string      `param:"client" json:"client,omitempty"`
	Files       []string    `json:"files" validate:"required,min=1,max=10,dive,required"`
	Caption     string      `json:"caption"`
	MediaType   string      `json:"media_type" validate:"omitempty,oneof=IMAGE VIDEO CAROUSEL"`
	Constraints Constraints `json:"constraints"`
	Async       bool        `json:"async"`
}

func (r *PublishMediaRequest) Validate() error {
	return validation.Struct(r)
}

type InsightsRequest struct {
	Client  string `param:"client" json:"-"`
	MediaID string `param:"mediaId" validate:"required"`
	Metric  string `query:"metric"`
}

func (r *InsightsRequest) Validate() error {
	return validation.Struct(r)
}
