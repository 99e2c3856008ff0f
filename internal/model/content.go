package model

import (
	"encoding/json"

	"github.com/deppfellow/sovyx-backend/internal/validation"
)

type ScoreSummary struct {
	ClarityScore     float64 `json:"clarity_score"`
	AuthorityScore   float64 `json:"authority_score"`
	ClosingStrength  float64 `json:"closing_strength"`
	TargetAlignment  float64 `json:"target_alignment"`
	HighTicketSignal float64 `json:"high_ticket_signal"`
}

type ContentIssue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Analysis scores a batch of posts against the high ticket rubric.
type Analysis struct {
	AnalysisID      string         `json:"analysis_id"`
	PostsAnalyzed   int            `json:"posts_analyzed"`
	Summary         ScoreSummary   `json:"summary"`
	Issues          []ContentIssue `json:"issues"`
	Recommendations []string       `json:"recommendations"`
}

type ContentChange struct {
	Type   string `json:"type"`
	Before string `json:"before"`
	After  string `json:"after"`
}

type Recalibration struct {
	OriginalExcerpt  string          `json:"original_excerpt"`
	OptimizedVersion string          `json:"optimized_version"`
	ChangesExplained []ContentChange `json:"changes_explained"`
	Objective        string          `json:"objective,omitempty"`
}

type ContentPost struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

// ------------------------------------------------------------

// AnalyzeContentRequest accepts posts of any shape; only their count is used.
type AnalyzeContentRequest struct {
	Posts []json.RawMessage `json:"posts"`
}

func (r *AnalyzeContentRequest) Validate() error {
	return nil
}

type RecalibrateContentRequest struct {
	Post        *ContentPost `json:"post"`
	Objective   string       `json:"objective"`
	Constraints Constraints  `json:"constraints"`
}

func (r *RecalibrateContentRequest) Validate() error {
	return validation.Struct(r)
}
