package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusReviewing SubmissionStatus = "reviewing"
	SubmissionStatusReviewed  SubmissionStatus = "reviewed"
)

// MinEligibleScore is the sole gate for downstream media generation.
const MinEligibleScore = 51

type WritingPrompt struct {
	Id         uuid.UUID
	Title      string
	PromptText string
	AgeGroup   string
	Active     bool
	CreatedAt  time.Time
}

// Feedback is the structured evaluation result. Sections may be partially
// populated when sub-evaluations failed; Degraded marks such results instead
// of coercing missing scores to 0.
type Feedback struct {
	TotalScore          int               `json:"totalScore"`
	Breakdown           FeedbackBreakdown `json:"breakdown"`
	GrammarFeedback     string            `json:"grammarFeedback,omitempty"`
	SpellingFeedback    string            `json:"spellingFeedback,omitempty"`
	RelevanceFeedback   string            `json:"relevanceFeedback,omitempty"`
	CreativityFeedback  string            `json:"creativityFeedback,omitempty"`
	Strengths           []string          `json:"strengths,omitempty"`
	AreasForImprovement []string          `json:"areasForImprovement,omitempty"`
	GeneralComment      string            `json:"generalComment,omitempty"`
	NextSteps           []string          `json:"nextSteps,omitempty"`
	Degraded            bool              `json:"degraded"`
	FailedSections      []string          `json:"failedSections,omitempty"`
}

type FeedbackBreakdown struct {
	Grammar    int `json:"grammar"`
	Spelling   int `json:"spelling"`
	Relevance  int `json:"relevance"`
	Creativity int `json:"creativity"`
}

type WritingSubmission struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	PromptId         uuid.UUID
	Content          string
	WordCount        int
	Status           SubmissionStatus
	Score            *int
	SafetyPassed     bool
	Feedback         *Feedback
	FeedbackDegraded bool
	CreditsUsedTotal int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EligibleForGeneration reports whether media may be generated from this
// submission: it must be fully reviewed with a score of at least 51.
func (s *WritingSubmission) EligibleForGeneration() bool {
	return s.Status == SubmissionStatusReviewed && s.Score != nil && *s.Score >= MinEligibleScore
}
