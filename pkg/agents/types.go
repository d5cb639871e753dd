package agents

// Request/response shapes for the AI agents service. Field names follow the
// service's JSON contract.

type AnalyzeWritingRequest struct {
	SubmissionId   string `json:"submissionId"`
	UserId         string `json:"userId"`
	StudentWriting string `json:"studentWriting"`
	OriginalPrompt string `json:"originalPrompt"`
	AgeGroup       string `json:"ageGroup"`
}

type SafetyIssue struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type SafetyCheck struct {
	IsSafe         bool          `json:"isSafe"`
	RiskLevel      string        `json:"riskLevel"`
	Issues         []SafetyIssue `json:"issues,omitempty"`
	Recommendation string        `json:"recommendation,omitempty"`
	Reasoning      string        `json:"reasoning,omitempty"`
	AlertMessage   string        `json:"alertMessage,omitempty"`
}

type FeedbackBreakdown struct {
	Grammar    int `json:"grammar"`
	Spelling   int `json:"spelling"`
	Relevance  int `json:"relevance"`
	Creativity int `json:"creativity"`
}

type FeedbackPayload struct {
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

	// Sections whose sub-evaluation failed upstream. Non-empty means the
	// result is degraded and its scores are not trustworthy.
	FailedSections []string `json:"failedSections,omitempty"`
}

type AnalyzeWritingResponse struct {
	Success  bool             `json:"success"`
	Blocked  bool             `json:"blocked,omitempty"`
	Score    int              `json:"score,omitempty"`
	Feedback *FeedbackPayload `json:"feedback,omitempty"`
	Safety   *SafetyCheck     `json:"safetyCheck,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type CheckContentRequest struct {
	Content  string `json:"content"`
	AgeGroup string `json:"ageGroup"`
	UserId   string `json:"userId"`
}

type CheckContentResponse struct {
	Success bool         `json:"success"`
	Safety  *SafetyCheck `json:"safetyCheck"`
	Error   string       `json:"error,omitempty"`
}

type GenerateImageRequest struct {
	SubmissionId   string `json:"submissionId"`
	UserId         string `json:"userId"`
	StudentWriting string `json:"studentWriting"`
	AgeGroup       string `json:"ageGroup"`
	ImageIndex     int    `json:"imageIndex"`
	ImageStyle     string `json:"imageStyle"`
}

type GenerateImageResponse struct {
	Success    bool   `json:"success"`
	ImageURL   string `json:"imageUrl,omitempty"`
	ImageStyle string `json:"imageStyle,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
	Error      string `json:"error,omitempty"`
}

type GenerateVideoRequest struct {
	SubmissionId   string `json:"submissionId"`
	UserId         string `json:"userId"`
	StudentWriting string `json:"studentWriting"`
	AgeGroup       string `json:"ageGroup"`
	VideoStyle     string `json:"videoStyle"`
}

type GenerateVideoResponse struct {
	Success     bool   `json:"success"`
	VideoURL    string `json:"videoUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	VideoStyle  string `json:"videoStyle,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Error       string `json:"error,omitempty"`
}

type ValidateImageRequest struct {
	ImageURL string `json:"imageUrl"`
	AgeGroup string `json:"ageGroup"`
	Context  string `json:"context,omitempty"`
}

type ValidateImageResponse struct {
	Success bool         `json:"success"`
	IsSafe  bool         `json:"isSafe"`
	Blocked bool         `json:"blocked"`
	Safety  *SafetyCheck `json:"safetyCheck"`
	Error   string       `json:"error,omitempty"`
}

// Known visual styles accepted by the agents service.
var (
	ImageStyles = []string{"standard", "comic", "manga", "princess"}
	VideoStyles = []string{"animation", "cinematic"}
)

func IsValidImageStyle(style string) bool {
	for _, s := range ImageStyles {
		if s == style {
			return true
		}
	}
	return false
}

func IsValidVideoStyle(style string) bool {
	for _, s := range VideoStyles {
		if s == style {
			return true
		}
	}
	return false
}
