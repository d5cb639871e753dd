package safety

import (
	"context"

	"fun-writing-be/internal/pkg/logger"
	"fun-writing-be/pkg/agents"
)

// Risk levels reported by the classifier, lowest to highest.
const (
	RiskNone     = "none"
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Decision is the gate's verdict on a piece of content. When Allowed is
// false the content must not proceed, and AlertMessage (when set) is the
// guardian-facing explanation.
type Decision struct {
	Allowed      bool
	RiskLevel    string
	Reasons      []string
	AlertMessage string
}

// IGate screens text and generated images before they reach children.
// Classifier failures block: an unreachable or erroring classifier is
// treated the same as an unsafe verdict.
type IGate interface {
	CheckContent(ctx context.Context, content, ageGroup, userId string) Decision
	CheckImage(ctx context.Context, imageUrl, ageGroup, contextText string) Decision
}

type GateImpl struct {
	client agents.IClient
	logger logger.ILogger
}

func NewGate(client agents.IClient, log logger.ILogger) *GateImpl {
	return &GateImpl{client: client, logger: log}
}

func (g *GateImpl) CheckContent(ctx context.Context, content, ageGroup, userId string) Decision {
	resp, err := g.client.CheckContent(ctx, agents.CheckContentRequest{
		Content:  content,
		AgeGroup: ageGroup,
		UserId:   userId,
	})
	if err != nil {
		g.logger.Error("safety", "content safety check unavailable, blocking", map[string]interface{}{
			"userId": userId,
			"error":  err.Error(),
		})
		return blockedOnError()
	}
	if !resp.Success || resp.Safety == nil {
		g.logger.Error("safety", "content safety check returned no verdict, blocking", map[string]interface{}{
			"userId": userId,
			"error":  resp.Error,
		})
		return blockedOnError()
	}
	return fromCheck(resp.Safety)
}

func (g *GateImpl) CheckImage(ctx context.Context, imageUrl, ageGroup, contextText string) Decision {
	resp, err := g.client.ValidateImage(ctx, agents.ValidateImageRequest{
		ImageURL: imageUrl,
		AgeGroup: ageGroup,
		Context:  contextText,
	})
	if err != nil {
		g.logger.Error("safety", "image safety check unavailable, blocking", map[string]interface{}{
			"imageUrl": imageUrl,
			"error":    err.Error(),
		})
		return blockedOnError()
	}
	if !resp.Success || resp.Safety == nil {
		g.logger.Error("safety", "image safety check returned no verdict, blocking", map[string]interface{}{
			"imageUrl": imageUrl,
			"error":    resp.Error,
		})
		return blockedOnError()
	}
	return fromCheck(resp.Safety)
}

func fromCheck(check *agents.SafetyCheck) Decision {
	reasons := make([]string, 0, len(check.Issues))
	for _, issue := range check.Issues {
		reasons = append(reasons, issue.Description)
	}
	return Decision{
		Allowed:      check.IsSafe,
		RiskLevel:    check.RiskLevel,
		Reasons:      reasons,
		AlertMessage: check.AlertMessage,
	}
}

func blockedOnError() Decision {
	return Decision{
		Allowed:   false,
		RiskLevel: RiskHigh,
		Reasons:   []string{"safety classifier unavailable"},
	}
}
