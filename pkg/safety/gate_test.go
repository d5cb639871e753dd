package safety

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"fun-writing-be/pkg/agents"
)

type stubAgents struct {
	contentResp  *agents.CheckContentResponse
	contentErr   error
	validateResp *agents.ValidateImageResponse
	validateErr  error
}

func (s *stubAgents) AnalyzeWriting(ctx context.Context, req agents.AnalyzeWritingRequest) (*agents.AnalyzeWritingResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubAgents) CheckContent(ctx context.Context, req agents.CheckContentRequest) (*agents.CheckContentResponse, error) {
	return s.contentResp, s.contentErr
}

func (s *stubAgents) GenerateImage(ctx context.Context, req agents.GenerateImageRequest) (*agents.GenerateImageResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubAgents) GenerateVideo(ctx context.Context, req agents.GenerateVideoRequest) (*agents.GenerateVideoResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubAgents) ValidateImage(ctx context.Context, req agents.ValidateImageRequest) (*agents.ValidateImageResponse, error) {
	return s.validateResp, s.validateErr
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func TestCheckContentAllowsSafeText(t *testing.T) {
	gate := NewGate(&stubAgents{
		contentResp: &agents.CheckContentResponse{
			Success: true,
			Safety:  &agents.SafetyCheck{IsSafe: true, RiskLevel: RiskNone},
		},
	}, noopLogger{})

	decision := gate.CheckContent(context.Background(), "a story about a friendly dragon", "7-9", "user-1")

	assert.True(t, decision.Allowed)
	assert.Equal(t, RiskNone, decision.RiskLevel)
	assert.Empty(t, decision.Reasons)
}

func TestCheckContentBlocksUnsafeText(t *testing.T) {
	gate := NewGate(&stubAgents{
		contentResp: &agents.CheckContentResponse{
			Success: true,
			Safety: &agents.SafetyCheck{
				IsSafe:    false,
				RiskLevel: RiskHigh,
				Issues: []agents.SafetyIssue{
					{Category: "violence", Severity: "high", Description: "graphic violence"},
				},
				AlertMessage: "Your child's submission mentioned graphic violence.",
			},
		},
	}, noopLogger{})

	decision := gate.CheckContent(context.Background(), "something dark", "7-9", "user-1")

	assert.False(t, decision.Allowed)
	assert.Equal(t, RiskHigh, decision.RiskLevel)
	assert.Contains(t, decision.Reasons, "graphic violence")
	assert.NotEmpty(t, decision.AlertMessage)
}

func TestCheckContentFailsClosedOnClassifierError(t *testing.T) {
	gate := NewGate(&stubAgents{contentErr: errors.New("connection refused")}, noopLogger{})

	decision := gate.CheckContent(context.Background(), "anything", "7-9", "user-1")

	assert.False(t, decision.Allowed)
	assert.Equal(t, RiskHigh, decision.RiskLevel)
}

func TestCheckContentFailsClosedOnMissingVerdict(t *testing.T) {
	gate := NewGate(&stubAgents{
		contentResp: &agents.CheckContentResponse{Success: false, Error: "model overloaded"},
	}, noopLogger{})

	decision := gate.CheckContent(context.Background(), "anything", "7-9", "user-1")

	assert.False(t, decision.Allowed)
}

func TestCheckImageFailsClosedOnError(t *testing.T) {
	gate := NewGate(&stubAgents{validateErr: errors.New("timeout")}, noopLogger{})

	decision := gate.CheckImage(context.Background(), "https://cdn.example.com/img.png", "7-9", "a dragon story")

	assert.False(t, decision.Allowed)
}

func TestCheckImageAllowsSafeImage(t *testing.T) {
	gate := NewGate(&stubAgents{
		validateResp: &agents.ValidateImageResponse{
			Success: true,
			IsSafe:  true,
			Safety:  &agents.SafetyCheck{IsSafe: true, RiskLevel: RiskLow},
		},
	}, noopLogger{})

	decision := gate.CheckImage(context.Background(), "https://cdn.example.com/img.png", "7-9", "a dragon story")

	assert.True(t, decision.Allowed)
	assert.Equal(t, RiskLow, decision.RiskLevel)
}
