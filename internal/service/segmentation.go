package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/errs"
	"github.com/deppfellow/sovyx-backend/internal/model"
)

// Audience defaults. Wire values are part of the frontend contract.
const (
	DefaultAudienceSize    = 100000
	DefaultSegment         = "high_ticket"
	DefaultRevenueStage    = "5k-10k mensual"
	DefaultExperienceLevel = "intermedio"
	DefaultTicketMin       = 1000
	DefaultTicketMax       = 10000
	DefaultPlatform        = "instagram"
	DefaultWindowHours     = 24
	DefaultPost            = "Sin contenido especificado"

	audienceQualityScore = 0.9
	reachPerDay          = 100000
	closureRate          = 0.30
	estimatedCPM         = 15.50
)

var (
	defaultGeo          = []string{"LATAM", "EUROPA"}
	defaultAgeRange     = model.AgeRange{Min: 25, Max: 45}
	defaultBusinessType = []string{"emprendedores", "creadores_contenido", "fitness_influencers", "agencias"}
)

// SegmentationService builds audiences and delivery windows. No targeting
// happens; every figure is derived from the request and the defaults.
type SegmentationService struct {
	credentials *CredentialService
	now         func() time.Time
}

func NewSegmentationService(credentials *CredentialService, now func() time.Time) *SegmentationService {
	return &SegmentationService{credentials: credentials, now: now}
}

// WithDefaults replaces every zero field of c with its default.
func WithDefaults(c model.Constraints) model.Constraints {
	if c.Size == 0 {
		c.Size = DefaultAudienceSize
	}
	if len(c.Geo) == 0 {
		c.Geo = append([]string(nil), defaultGeo...)
	}
	if c.Segment == "" {
		c.Segment = DefaultSegment
	}
	if c.AgeRange == nil {
		r := defaultAgeRange
		c.AgeRange = &r
	}
	if len(c.BusinessType) == 0 {
		c.BusinessType = append([]string(nil), defaultBusinessType...)
	}
	if c.RevenueStage == "" {
		c.RevenueStage = DefaultRevenueStage
	}
	if c.ExperienceLevel == "" {
		c.ExperienceLevel = DefaultExperienceLevel
	}
	if c.TicketMin == 0 {
		c.TicketMin = DefaultTicketMin
	}
	if c.TicketMax == 0 {
		c.TicketMax = DefaultTicketMax
	}
	if c.Platform == "" {
		c.Platform = DefaultPlatform
	}
	return c
}

// ProjectReach is floor(hours/24) * 100000 and the closures at a 30% rate.
func ProjectReach(hours int) model.DeliveryTarget {
	reach := (hours / 24) * reachPerDay
	return model.DeliveryTarget{
		ReachTotal:         reach,
		CierreEstimado:     int(math.Floor(float64(reach) * closureRate)),
		ClosureRateAssumed: closureRate,
	}
}

func windowHours(h int) int {
	if h <= 0 {
		return DefaultWindowHours
	}
	return h
}

func stamp(prefix string, t time.Time) string {
	return prefix + strconv.FormatInt(t.UnixMilli(), 10)
}

func (s *SegmentationService) CreateAudience(ctx context.Context, req *model.CreateAudienceRequest) (*model.Audience, error) {
	cred, err := s.credentials.ResolveComplete(ctx, req.Client)
	if err != nil {
		return nil, err
	}

	audience := buildAudience(cred, req.SessionID, WithDefaults(req.Constraints), s.now())
	return &audience, nil
}

func (s *SegmentationService) AssignDelivery(ctx context.Context, req *model.AssignDeliveryRequest) (*model.Delivery, error) {
	cred, err := s.credentials.ResolveComplete(ctx, req.Client)
	if err != nil {
		return nil, err
	}

	delivery := buildDelivery(cred, req.SessionID, req.AudienceID, req.Post, windowHours(req.WindowHours),
		WithDefaults(req.Constraints), s.now())
	return &delivery, nil
}

// CreateCampaign builds an audience and its delivery from one timestamp and
// links them.
func (s *SegmentationService) CreateCampaign(ctx context.Context, req *model.CreateCampaignRequest) (*model.Campaign, error) {
	start := s.now()

	cred, err := s.credentials.ResolveComplete(ctx, req.Client)
	if err != nil {
		return nil, err
	}
	if req.SessionID == "" {
		return nil, errs.NewBadRequestError("session_id is required", true, nil,
			[]errs.FieldError{{Field: "session_id", Error: "is required"}}, nil)
	}

	constraints := WithDefaults(req.Constraints)
	hours := windowHours(req.WindowHours)

	post := req.Post
	if post == nil || post == "" {
		post = DefaultPost
	}

	audience := buildAudience(cred, req.SessionID, constraints, start)
	delivery := buildDelivery(cred, req.SessionID, audience.AudienceID, post, hours, constraints, start)
	delivery.Target.CPMEstimated = estimatedCPM

	end := s.now()
	return &model.Campaign{
		Status:          "success",
		CampaignID:      stamp("camp_", start),
		UnifiedResponse: true,
		Timestamp:       end.UTC(),
		Audience:        audience,
		Delivery:        delivery,
		Summary: model.CampaignSummary{
			TotalAudience:     audience.Size,
			DeliveryWindow:    fmt.Sprintf("%d horas", hours),
			EstimatedReach:    delivery.Target.ReachTotal,
			EstimatedClosures: delivery.Target.CierreEstimado,
			Client:            cred.Tenant,
			Platform:          audience.Platform,
		},
		Metadata: model.CampaignMetadata{
			EndpointsConsolidated: []string{"audience/create", "delivery/assign"},
			SingleCall:            true,
			ResponseTimeMS:        end.Sub(start).Milliseconds(),
			Version:               "1.0",
		},
	}, nil
}

func buildAudience(cred model.Credential, sessionID string, c model.Constraints, at time.Time) model.Audience {
	return model.Audience{
		AudienceID:      stamp("aud_", at),
		SessionID:       sessionID,
		Size:            c.Size,
		Geo:             c.Geo,
		Segment:         c.Segment,
		AgeRange:        *c.AgeRange,
		BusinessType:    c.BusinessType,
		RevenueStage:    c.RevenueStage,
		ExperienceLevel: c.ExperienceLevel,
		TicketMin:       c.TicketMin,
		TicketMax:       c.TicketMax,
		QualityScore:    audienceQualityScore,
		Platform:        c.Platform,
		ClientUsed:      cred.Tenant,
		UserID:          cred.UserID,
		AccessTokenUsed: true,
		CreatedAt:       at.UTC(),
	}
}

func buildDelivery(cred model.Credential, sessionID, audienceID string, post any, hours int, c model.Constraints, at time.Time) model.Delivery {
	return model.Delivery{
		DeliveryID:      stamp("deliv_", at),
		Status:          "scheduled",
		SessionID:       sessionID,
		AudienceID:      audienceID,
		Post:            post,
		Geo:             c.Geo,
		AgeRange:        *c.AgeRange,
		BusinessType:    c.BusinessType,
		RevenueStage:    c.RevenueStage,
		ExperienceLevel: c.ExperienceLevel,
		TicketMin:       c.TicketMin,
		TicketMax:       c.TicketMax,
		WindowHours:     hours,
		Target:          ProjectReach(hours),
		ETA:             at.Add(time.Duration(hours) * time.Hour).UTC(),
		ClientUsed:      cred.Tenant,
		UserID:          cred.UserID,
		AccessTokenUsed: true,
		ScheduledAt:     at.UTC(),
	}
}
