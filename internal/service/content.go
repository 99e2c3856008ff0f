package service

import (
	"strings"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/model"
)

const cannedRecalibration = "High ticket version: you speak with authority, filter out those who do not qualify, " +
	"and make the next step inevitable for those who are already selling."

// ContentService scores posts against a fixed high ticket rubric.
type ContentService struct {
	now func() time.Time
}

func NewContentService(now func() time.Time) *ContentService {
	return &ContentService{now: now}
}

func (s *ContentService) Analyze(req *model.AnalyzeContentRequest) *model.Analysis {
	return &model.Analysis{
		AnalysisID:    stamp("analysis_", s.now()),
		PostsAnalyzed: len(req.Posts),
		Summary: model.ScoreSummary{
			ClarityScore:     0.78,
			AuthorityScore:   0.72,
			ClosingStrength:  0.55,
			TargetAlignment:  0.81,
			HighTicketSignal: 0.67,
		},
		Issues: []model.ContentIssue{
			{Type: "closing", Description: "The close is too open: it neither filters nor creates inevitability."},
			{Type: "authority", Description: "The tone reads as general advice, not as a proven system for people who already sell."},
		},
		Recommendations: []string{
			"Strengthen the filter: state clearly who this is for and who it is not for.",
			"Switch the close to one based on entry criteria instead of general curiosity.",
		},
	}
}

// Recalibrate rewrites a post with the caption optimizer.
func (s *ContentService) Recalibrate(req *model.RecalibrateContentRequest) *model.Recalibration {
	var original string
	if req.Post != nil {
		original = req.Post.Content
	}

	optimized := cannedRecalibration
	if strings.TrimSpace(original) != "" {
		optimized = OptimizeCaption(original, req.Constraints)
	}

	return &model.Recalibration{
		OriginalExcerpt:  original,
		OptimizedVersion: optimized,
		ChangesExplained: []model.ContentChange{
			{Type: "tone", Before: "Read as generic advice.", After: "Speaks as a systems architect for businesses with sales."},
			{Type: "closing", Before: "Soft CTA.", After: "Filtered CTA: 'If you are already at 5k-10k/month and want to stabilize high tickets, write STRUCTURE'."},
		},
		Objective: req.Objective,
	}
}
