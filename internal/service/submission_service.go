package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fun-writing-be/internal/config"
	"fun-writing-be/internal/dto"
	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/pkg/apperrors"
	"fun-writing-be/internal/pkg/logger"
	"fun-writing-be/internal/pkg/mailer"
	"fun-writing-be/internal/repository/memory"
	"fun-writing-be/internal/repository/specification"
	"fun-writing-be/internal/repository/unitofwork"
	"fun-writing-be/pkg/agents"
	"fun-writing-be/pkg/events"
	"fun-writing-be/pkg/safety"
)

type ISubmissionService interface {
	Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitWritingRequest) (*dto.SubmissionResponse, error)
	Reanalyze(ctx context.Context, userId uuid.UUID, submissionId uuid.UUID) (*dto.SubmissionResponse, error)
	Show(ctx context.Context, userId uuid.UUID, submissionId uuid.UUID) (*dto.SubmissionResponse, error)
	List(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.ListSubmissionsResponse, error)
	ListPrompts(ctx context.Context) ([]*dto.PromptResponse, error)
}

type submissionService struct {
	uowFactory       unitofwork.RepositoryFactory
	gate             safety.IGate
	agentsClient     agents.IClient
	flightGuard      *memory.FlightGuard
	publisherService IPublisherService
	emailService     mailer.IEmailService
	agentsCfg        config.AgentsConfig
	logger           logger.ILogger
}

func NewSubmissionService(
	uowFactory unitofwork.RepositoryFactory,
	gate safety.IGate,
	agentsClient agents.IClient,
	flightGuard *memory.FlightGuard,
	publisherService IPublisherService,
	emailService mailer.IEmailService,
	agentsCfg config.AgentsConfig,
	log logger.ILogger,
) ISubmissionService {
	return &submissionService{
		uowFactory:       uowFactory,
		gate:             gate,
		agentsClient:     agentsClient,
		flightGuard:      flightGuard,
		publisherService: publisherService,
		emailService:     emailService,
		agentsCfg:        agentsCfg,
		logger:           log,
	}
}

func (s *submissionService) Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitWritingRequest) (*dto.SubmissionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}

	prompt, err := uow.PromptRepository().FindOne(ctx, specification.ByID{ID: req.PromptId})
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "writing prompt not found")
	}

	// Safety first. A blocked submission is never stored in an evaluated
	// state; nothing is persisted at all.
	safetyCtx, cancel := context.WithTimeout(ctx, s.agentsCfg.SafetyTimeout)
	decision := s.gate.CheckContent(safetyCtx, req.Content, user.AgeGroup, userId.String())
	cancel()
	if !decision.Allowed {
		s.notifyGuardianBlocked(user, decision)
		s.publishEvent(ctx, dto.PipelineEventMessage{
			Type:    events.TypeContentBlocked,
			UserId:  userId.String(),
			Title:   "Submission not accepted",
			Message: "Your writing could not be accepted this time. Try a different story!",
			Data: map[string]interface{}{
				"risk_level": decision.RiskLevel,
			},
			OccurredAt: time.Now(),
		})
		return nil, apperrors.New(apperrors.CodeContentRejected, "submission was rejected by the content safety check").
			WithDetail("risk_level", decision.RiskLevel)
	}

	submission := &entity.WritingSubmission{
		Id:           uuid.New(),
		UserId:       userId,
		PromptId:     prompt.Id,
		Content:      req.Content,
		WordCount:    len(strings.Fields(req.Content)),
		Status:       entity.SubmissionStatusSubmitted,
		SafetyPassed: true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := uow.SubmissionRepository().Create(ctx, submission); err != nil {
		return nil, err
	}

	submission.Status = entity.SubmissionStatusReviewing
	if err := uow.SubmissionRepository().Update(ctx, submission); err != nil {
		return nil, err
	}

	if err := s.evaluate(ctx, uow, submission, user, prompt); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, dto.PipelineEventMessage{
		Type:       events.TypeSubmissionReviewed,
		UserId:     userId.String(),
		Title:      "Your writing has been reviewed!",
		Message:    fmt.Sprintf("You scored %d points. Check your feedback!", derefScore(submission.Score)),
		EntityType: "submission",
		EntityId:   submission.Id.String(),
		OccurredAt: time.Now(),
	})

	return toSubmissionResponse(submission), nil
}

// evaluate runs the scoring call and persists the outcome. On a full
// evaluation failure the submission drops back to Submitted so it can be
// re-analyzed; a partial failure still completes the review, tagged degraded.
func (s *submissionService) evaluate(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	submission *entity.WritingSubmission,
	user *entity.User,
	prompt *entity.WritingPrompt,
) error {
	analyzeCtx, cancel := context.WithTimeout(ctx, s.agentsCfg.AnalyzeTimeout)
	defer cancel()

	resp, err := s.agentsClient.AnalyzeWriting(analyzeCtx, agents.AnalyzeWritingRequest{
		SubmissionId:   submission.Id.String(),
		UserId:         user.Id.String(),
		StudentWriting: submission.Content,
		OriginalPrompt: prompt.PromptText,
		AgeGroup:       user.AgeGroup,
	})
	if err != nil || !resp.Success || resp.Feedback == nil {
		if err == nil {
			err = fmt.Errorf("evaluation returned no feedback: %s", resp.Error)
		}
		s.logger.Error("submission", "evaluation failed", map[string]interface{}{
			"submissionId": submission.Id.String(),
			"error":        err.Error(),
		})
		submission.Status = entity.SubmissionStatusSubmitted
		if updErr := uow.SubmissionRepository().Update(ctx, submission); updErr != nil {
			return updErr
		}
		return apperrors.Wrap(apperrors.CodeGenerationServiceError, "writing evaluation is unavailable, please try again", err)
	}

	if resp.Blocked {
		// The deeper evaluation caught something the first screen missed.
		submission.Status = entity.SubmissionStatusSubmitted
		submission.SafetyPassed = false
		if updErr := uow.SubmissionRepository().Update(ctx, submission); updErr != nil {
			return updErr
		}
		if resp.Safety != nil {
			s.notifyGuardianBlocked(user, safetyDecisionFromCheck(resp.Safety))
		}
		return apperrors.New(apperrors.CodeContentRejected, "submission was rejected during evaluation")
	}

	feedback := feedbackFromPayload(resp.Feedback)
	score := resp.Score
	submission.Status = entity.SubmissionStatusReviewed
	submission.Score = &score
	submission.Feedback = feedback
	submission.FeedbackDegraded = feedback.Degraded
	submission.UpdatedAt = time.Now()
	return uow.SubmissionRepository().Update(ctx, submission)
}

func (s *submissionService) Reanalyze(ctx context.Context, userId uuid.UUID, submissionId uuid.UUID) (*dto.SubmissionResponse, error) {
	guardKey := "reanalyze:" + submissionId.String()
	if !s.flightGuard.Acquire(guardKey, s.agentsCfg.AnalyzeTimeout+time.Minute) {
		return nil, apperrors.New(apperrors.CodeEvaluationInProgress, "an evaluation for this submission is already running")
	}
	defer s.flightGuard.Release(guardKey)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	submission, err := uow.SubmissionRepository().FindOne(ctx,
		specification.ByID{ID: submissionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "submission not found")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	prompt, err := uow.PromptRepository().FindOne(ctx, specification.ByID{ID: submission.PromptId})
	if err != nil {
		return nil, err
	}
	if user == nil || prompt == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "submission context not found")
	}

	// Snapshot the stored review so a degraded run cannot destroy it.
	prevStatus := submission.Status
	prevScore := submission.Score
	prevFeedback := submission.Feedback
	prevDegraded := submission.FeedbackDegraded

	submission.Status = entity.SubmissionStatusReviewing
	if err := uow.SubmissionRepository().Update(ctx, submission); err != nil {
		return nil, err
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, s.agentsCfg.AnalyzeTimeout)
	defer cancel()

	resp, err := s.agentsClient.AnalyzeWriting(analyzeCtx, agents.AnalyzeWritingRequest{
		SubmissionId:   submission.Id.String(),
		UserId:         user.Id.String(),
		StudentWriting: submission.Content,
		OriginalPrompt: prompt.PromptText,
		AgeGroup:       user.AgeGroup,
	})
	if err != nil || !resp.Success || resp.Feedback == nil {
		if err == nil {
			err = fmt.Errorf("evaluation returned no feedback: %s", resp.Error)
		}
		submission.Status = prevStatus
		submission.Score = prevScore
		submission.Feedback = prevFeedback
		submission.FeedbackDegraded = prevDegraded
		if updErr := uow.SubmissionRepository().Update(ctx, submission); updErr != nil {
			return nil, updErr
		}
		return nil, apperrors.Wrap(apperrors.CodeGenerationServiceError, "re-analysis failed, previous feedback kept", err)
	}

	newFeedback := feedbackFromPayload(resp.Feedback)
	if newFeedback.Degraded && prevFeedback != nil {
		// Keep the stored review; surface the degraded attempt without
		// persisting it.
		submission.Status = prevStatus
		submission.Score = prevScore
		submission.Feedback = prevFeedback
		submission.FeedbackDegraded = prevDegraded
		if err := uow.SubmissionRepository().Update(ctx, submission); err != nil {
			return nil, err
		}
		out := toSubmissionResponse(submission)
		out.Feedback = newFeedback
		return out, nil
	}

	score := resp.Score
	submission.Status = entity.SubmissionStatusReviewed
	submission.Score = &score
	submission.Feedback = newFeedback
	submission.FeedbackDegraded = newFeedback.Degraded
	submission.UpdatedAt = time.Now()
	if err := uow.SubmissionRepository().Update(ctx, submission); err != nil {
		return nil, err
	}

	return toSubmissionResponse(submission), nil
}

func (s *submissionService) Show(ctx context.Context, userId uuid.UUID, submissionId uuid.UUID) (*dto.SubmissionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	submission, err := uow.SubmissionRepository().FindOne(ctx,
		specification.ByID{ID: submissionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "submission not found")
	}
	return toSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.ListSubmissionsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SubmissionRepository()

	total, err := repo.Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	submissions, err := repo.FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SubmissionListItem, 0, len(submissions))
	for _, sub := range submissions {
		items = append(items, dto.SubmissionListItem{
			Id:        sub.Id,
			PromptId:  sub.PromptId,
			WordCount: sub.WordCount,
			Status:    string(sub.Status),
			Score:     sub.Score,
			CreatedAt: sub.CreatedAt,
		})
	}

	return &dto.ListSubmissionsResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func (s *submissionService) ListPrompts(ctx context.Context) ([]*dto.PromptResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	prompts, err := uow.PromptRepository().FindAll(ctx,
		specification.Filter("active", true),
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.PromptResponse, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, &dto.PromptResponse{
			Id:         p.Id,
			Title:      p.Title,
			PromptText: p.PromptText,
			AgeGroup:   p.AgeGroup,
		})
	}
	return out, nil
}

func (s *submissionService) notifyGuardianBlocked(user *entity.User, decision safety.Decision) {
	if user.GuardianEmail == nil || *user.GuardianEmail == "" {
		return
	}
	reason := decision.AlertMessage
	if reason == "" {
		reason = "The content did not meet our safety guidelines."
	}
	go func(email, name, reason string) {
		if err := s.emailService.SendSafetyAlert(email, name, reason); err != nil {
			s.logger.Error("submission", "failed to send guardian alert", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}(*user.GuardianEmail, user.FullName, reason)
}

func (s *submissionService) publishEvent(ctx context.Context, msg dto.PipelineEventMessage) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("submission", "failed to publish pipeline event", map[string]interface{}{
			"type":  msg.Type,
			"error": err.Error(),
		})
	}
}

func feedbackFromPayload(p *agents.FeedbackPayload) *entity.Feedback {
	return &entity.Feedback{
		TotalScore: p.TotalScore,
		Breakdown: entity.FeedbackBreakdown{
			Grammar:    p.Breakdown.Grammar,
			Spelling:   p.Breakdown.Spelling,
			Relevance:  p.Breakdown.Relevance,
			Creativity: p.Breakdown.Creativity,
		},
		GrammarFeedback:     p.GrammarFeedback,
		SpellingFeedback:    p.SpellingFeedback,
		RelevanceFeedback:   p.RelevanceFeedback,
		CreativityFeedback:  p.CreativityFeedback,
		Strengths:           p.Strengths,
		AreasForImprovement: p.AreasForImprovement,
		GeneralComment:      p.GeneralComment,
		NextSteps:           p.NextSteps,
		Degraded:            len(p.FailedSections) > 0,
		FailedSections:      p.FailedSections,
	}
}

func safetyDecisionFromCheck(check *agents.SafetyCheck) safety.Decision {
	reasons := make([]string, 0, len(check.Issues))
	for _, issue := range check.Issues {
		reasons = append(reasons, issue.Description)
	}
	return safety.Decision{
		Allowed:      check.IsSafe,
		RiskLevel:    check.RiskLevel,
		Reasons:      reasons,
		AlertMessage: check.AlertMessage,
	}
}

func toSubmissionResponse(sub *entity.WritingSubmission) *dto.SubmissionResponse {
	return &dto.SubmissionResponse{
		Id:               sub.Id,
		PromptId:         sub.PromptId,
		Content:          sub.Content,
		WordCount:        sub.WordCount,
		Status:           string(sub.Status),
		Score:            sub.Score,
		Feedback:         sub.Feedback,
		EligibleForMedia: sub.EligibleForGeneration(),
		CreditsUsedTotal: sub.CreditsUsedTotal,
		CreatedAt:        sub.CreatedAt,
		UpdatedAt:        sub.UpdatedAt,
	}
}

func derefScore(score *int) int {
	if score == nil {
		return 0
	}
	return *score
}
