package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fun-writing-be/internal/config"
	"fun-writing-be/internal/dto"
	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/pkg/apperrors"
	"fun-writing-be/internal/pkg/logger"
	"fun-writing-be/internal/repository/contract"
	"fun-writing-be/internal/repository/memory"
	"fun-writing-be/internal/repository/specification"
	"fun-writing-be/internal/repository/unitofwork"
	"fun-writing-be/pkg/agents"
	"fun-writing-be/pkg/credits"
	"fun-writing-be/pkg/events"
	"fun-writing-be/pkg/safety"
)

type IMediaService interface {
	RequestImage(ctx context.Context, userId uuid.UUID, req *dto.GenerateImageRequest) (*dto.GenerationResponse, error)
	RequestVideo(ctx context.Context, userId uuid.UUID, req *dto.GenerateVideoRequest) (*dto.GenerationResponse, error)
	ListBySubmission(ctx context.Context, userId uuid.UUID, submissionId uuid.UUID) ([]dto.MediaResponse, error)
	Gallery(ctx context.Context, userId uuid.UUID, mediaType string, page, limit int) (*dto.GalleryResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, mediaId uuid.UUID) error
}

type mediaService struct {
	uowFactory       unitofwork.RepositoryFactory
	ledger           credits.ILedger
	gate             safety.IGate
	agentsClient     agents.IClient
	flightGuard      *memory.FlightGuard
	publisherService IPublisherService
	agentsCfg        config.AgentsConfig
	creditsCfg       config.CreditsConfig
	logger           logger.ILogger
}

func NewMediaService(
	uowFactory unitofwork.RepositoryFactory,
	ledger credits.ILedger,
	gate safety.IGate,
	agentsClient agents.IClient,
	flightGuard *memory.FlightGuard,
	publisherService IPublisherService,
	agentsCfg config.AgentsConfig,
	creditsCfg config.CreditsConfig,
	log logger.ILogger,
) IMediaService {
	return &mediaService{
		uowFactory:       uowFactory,
		ledger:           ledger,
		gate:             gate,
		agentsClient:     agentsClient,
		flightGuard:      flightGuard,
		publisherService: publisherService,
		agentsCfg:        agentsCfg,
		creditsCfg:       creditsCfg,
		logger:           log,
	}
}

func (s *mediaService) RequestImage(ctx context.Context, userId uuid.UUID, req *dto.GenerateImageRequest) (*dto.GenerationResponse, error) {
	user, submission, err := s.loadEligible(ctx, userId, req.SubmissionId)
	if err != nil {
		return nil, err
	}

	guardKey := fmt.Sprintf("generate:%s:image:%s", req.SubmissionId, req.Style)
	if !s.flightGuard.Acquire(guardKey, s.agentsCfg.ImageTimeout+time.Minute) {
		return nil, apperrors.New(apperrors.CodeDuplicateRequest, "an identical generation request is already running")
	}
	defer s.flightGuard.Release(guardKey)

	reservation, err := s.ledger.Reserve(ctx, userId, s.creditsCfg.ImageCost, "image")
	if err != nil {
		return nil, err
	}

	media, err := s.createPendingAsset(ctx, submission, userId, entity.MediaTypeImage, req.Style, s.creditsCfg.ImageCost)
	if err != nil {
		s.refund(ctx, reservation.Id, "asset row could not be created")
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.agentsCfg.ImageTimeout)
	defer cancel()

	resp, genErr := s.agentsClient.GenerateImage(genCtx, agents.GenerateImageRequest{
		SubmissionId:   submission.Id.String(),
		UserId:         userId.String(),
		StudentWriting: submission.Content,
		AgeGroup:       user.AgeGroup,
		ImageIndex:     req.ImageIndex,
		ImageStyle:     req.Style,
	})
	if genErr != nil || !resp.Success || resp.ImageURL == "" {
		if genErr == nil {
			genErr = fmt.Errorf("image generation returned no result: %s", resp.Error)
		}
		if errors.Is(genErr, context.DeadlineExceeded) {
			// A result arriving after this point belongs to a dead attempt
			// and is never persisted.
			s.logger.Warn("media", "image generation timed out, late results will be discarded", map[string]interface{}{
				"mediaId": media.Id.String(),
			})
		}
		return nil, s.failAsset(ctx, media, reservation.Id, userId, genErr)
	}

	// Generated pictures are screened before a child ever sees them.
	safetyCtx, cancelSafety := context.WithTimeout(ctx, s.agentsCfg.SafetyTimeout)
	decision := s.gate.CheckImage(safetyCtx, resp.ImageURL, user.AgeGroup, submission.Content)
	cancelSafety()
	if !decision.Allowed {
		s.markFailedAndRefund(ctx, media, reservation.Id, userId, fmt.Sprintf("image failed safety validation (%s)", decision.RiskLevel))
		return nil, apperrors.New(apperrors.CodeSafetyRejected, "the generated image did not pass safety validation").
			WithDetail("risk_level", decision.RiskLevel)
	}

	return s.completeAsset(ctx, media, reservation.Id, userId, resp.ImageURL, resp.Prompt)
}

func (s *mediaService) RequestVideo(ctx context.Context, userId uuid.UUID, req *dto.GenerateVideoRequest) (*dto.GenerationResponse, error) {
	user, submission, err := s.loadEligible(ctx, userId, req.SubmissionId)
	if err != nil {
		return nil, err
	}

	guardKey := fmt.Sprintf("generate:%s:video:%s", req.SubmissionId, req.Style)
	if !s.flightGuard.Acquire(guardKey, s.agentsCfg.VideoTimeout+time.Minute) {
		return nil, apperrors.New(apperrors.CodeDuplicateRequest, "an identical generation request is already running")
	}
	defer s.flightGuard.Release(guardKey)

	reservation, err := s.ledger.Reserve(ctx, userId, s.creditsCfg.VideoCost, "video")
	if err != nil {
		return nil, err
	}

	media, err := s.createPendingAsset(ctx, submission, userId, entity.MediaTypeVideo, req.Style, s.creditsCfg.VideoCost)
	if err != nil {
		s.refund(ctx, reservation.Id, "asset row could not be created")
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.agentsCfg.VideoTimeout)
	defer cancel()

	resp, genErr := s.agentsClient.GenerateVideo(genCtx, agents.GenerateVideoRequest{
		SubmissionId:   submission.Id.String(),
		UserId:         userId.String(),
		StudentWriting: submission.Content,
		AgeGroup:       user.AgeGroup,
		VideoStyle:     req.Style,
	})
	if genErr != nil || !resp.Success || resp.VideoURL == "" {
		if genErr == nil {
			genErr = fmt.Errorf("video generation returned no result: %s", resp.Error)
		}
		if errors.Is(genErr, context.DeadlineExceeded) {
			s.logger.Warn("media", "video generation timed out, late results will be discarded", map[string]interface{}{
				"mediaId": media.Id.String(),
			})
		}
		return nil, s.failAsset(ctx, media, reservation.Id, userId, genErr)
	}

	return s.completeAsset(ctx, media, reservation.Id, userId, resp.VideoURL, resp.Prompt)
}

// loadEligible fetches the user and the submission, enforcing the score gate.
func (s *mediaService) loadEligible(ctx context.Context, userId uuid.UUID, submissionId uuid.UUID) (*entity.User, *entity.WritingSubmission, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}

	submission, err := uow.SubmissionRepository().FindOne(ctx,
		specification.ByID{ID: submissionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, nil, err
	}
	if submission == nil {
		return nil, nil, apperrors.New(apperrors.CodeNotFound, "submission not found")
	}
	if !submission.EligibleForGeneration() {
		return nil, nil, apperrors.New(apperrors.CodeSubmissionNotEligible, "submission must be reviewed with a passing score before generating media").
			WithDetail("status", string(submission.Status)).
			WithDetail("min_score", entity.MinEligibleScore)
	}
	return user, submission, nil
}

func (s *mediaService) createPendingAsset(ctx context.Context, submission *entity.WritingSubmission, userId uuid.UUID, mediaType entity.MediaType, style string, cost int) (*entity.GeneratedMedia, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	media := &entity.GeneratedMedia{
		Id:           uuid.New(),
		SubmissionId: submission.Id,
		UserId:       userId,
		MediaType:    mediaType,
		Style:        style,
		Status:       entity.MediaStatusPending,
		Cost:         cost,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := uow.MediaRepository().Create(ctx, media); err != nil {
		return nil, err
	}
	if err := uow.MediaRepository().UpdateStatus(ctx, media.Id, entity.MediaStatusGenerating, contract.MediaPatch{}); err != nil {
		return nil, err
	}
	media.Status = entity.MediaStatusGenerating
	return media, nil
}

// failAsset marks the attempt failed and releases the hold. The refund and
// the status write are independent: losing one does not skip the other.
func (s *mediaService) failAsset(ctx context.Context, media *entity.GeneratedMedia, reservationId uuid.UUID, userId uuid.UUID, cause error) error {
	s.markFailedAndRefund(ctx, media, reservationId, userId, cause.Error())
	return apperrors.Wrap(apperrors.CodeGenerationServiceError, "generation failed, credits were refunded", cause)
}

func (s *mediaService) markFailedAndRefund(ctx context.Context, media *entity.GeneratedMedia, reservationId uuid.UUID, userId uuid.UUID, errMsg string) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MediaRepository().UpdateStatus(ctx, media.Id, entity.MediaStatusFailed, contract.MediaPatch{
		ErrorMessage: &errMsg,
	}); err != nil {
		s.logger.Error("media", "failed to mark asset failed", map[string]interface{}{
			"mediaId": media.Id.String(),
			"error":   err.Error(),
		})
	}

	s.refund(ctx, reservationId, "generation failed")

	s.publishEvent(ctx, dto.PipelineEventMessage{
		Type:       events.TypeMediaFailed,
		UserId:     userId.String(),
		Title:      "Generation did not finish",
		Message:    "We could not create your " + string(media.MediaType) + " this time. Your credits were returned.",
		EntityType: "media",
		EntityId:   media.Id.String(),
		OccurredAt: time.Now(),
	})
}

func (s *mediaService) completeAsset(ctx context.Context, media *entity.GeneratedMedia, reservationId uuid.UUID, userId uuid.UUID, url, prompt string) (*dto.GenerationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	patch := contract.MediaPatch{URL: &url}
	if prompt != "" {
		patch.Prompt = &prompt
	}
	if err := uow.MediaRepository().UpdateStatus(ctx, media.Id, entity.MediaStatusCompleted, patch); err != nil {
		// The asset could not be delivered; do not charge for it.
		s.refund(ctx, reservationId, "completed asset could not be persisted")
		return nil, err
	}
	media.Status = entity.MediaStatusCompleted
	media.URL = &url
	media.UpdatedAt = time.Now()

	if err := s.ledger.Commit(ctx, reservationId, &media.Id); err != nil {
		s.logger.Error("media", "failed to commit reservation", map[string]interface{}{
			"mediaId": media.Id.String(),
			"error":   err.Error(),
		})
	}
	if err := uow.SubmissionRepository().IncrementCreditsUsed(ctx, media.SubmissionId, media.Cost); err != nil {
		s.logger.Error("media", "failed to increment submission credit counter", map[string]interface{}{
			"submissionId": media.SubmissionId.String(),
			"error":        err.Error(),
		})
	}

	s.publishEvent(ctx, dto.PipelineEventMessage{
		Type:       events.TypeMediaCompleted,
		UserId:     userId.String(),
		Title:      "Your " + string(media.MediaType) + " is ready!",
		Message:    "Open your gallery to see it.",
		EntityType: "media",
		EntityId:   media.Id.String(),
		Data:       map[string]interface{}{"url": url},
		OccurredAt: time.Now(),
	})

	balance, err := s.ledger.Balance(ctx, userId)
	if err != nil {
		s.logger.Warn("media", "failed to read balance after generation", map[string]interface{}{
			"userId": userId.String(),
			"error":  err.Error(),
		})
	}

	return &dto.GenerationResponse{
		Media:            toMediaResponse(media),
		RemainingCredits: balance,
	}, nil
}

func (s *mediaService) ListBySubmission(ctx context.Context, userId uuid.UUID, submissionId uuid.UUID) ([]dto.MediaResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.MediaRepository().FindAll(ctx,
		specification.BySubmission{SubmissionID: submissionId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MediaResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMediaResponse(m))
	}
	return out, nil
}

func (s *mediaService) Gallery(ctx context.Context, userId uuid.UUID, mediaType string, page, limit int) (*dto.GalleryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ByStatus{Status: string(entity.MediaStatusCompleted)},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	}
	if mediaType != "" {
		specs = append(specs, specification.Filter("media_type", mediaType))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.MediaRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MediaResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMediaResponse(m))
	}
	return &dto.GalleryResponse{Items: out, Page: page, Limit: limit}, nil
}

func (s *mediaService) Delete(ctx context.Context, userId uuid.UUID, mediaId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	media, err := uow.MediaRepository().FindOne(ctx,
		specification.ByID{ID: mediaId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if media == nil {
		return apperrors.New(apperrors.CodeNotFound, "media not found")
	}
	if !media.IsTerminal() {
		return apperrors.New(apperrors.CodeValidationFailed, "a generation still in progress cannot be deleted")
	}
	return uow.MediaRepository().Delete(ctx, mediaId)
}

func (s *mediaService) refund(ctx context.Context, reservationId uuid.UUID, reason string) {
	if err := s.ledger.Refund(ctx, reservationId, reason); err != nil {
		s.logger.Error("media", "refund failed, reservation kept for reconciliation", map[string]interface{}{
			"reservationId": reservationId.String(),
			"error":         err.Error(),
		})
	}
}

func (s *mediaService) publishEvent(ctx context.Context, msg dto.PipelineEventMessage) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("media", "failed to publish pipeline event", map[string]interface{}{
			"type":  msg.Type,
			"error": err.Error(),
		})
	}
}

func toMediaResponse(m *entity.GeneratedMedia) dto.MediaResponse {
	return dto.MediaResponse{
		Id:           m.Id,
		SubmissionId: m.SubmissionId,
		MediaType:    string(m.MediaType),
		Style:        m.Style,
		Status:       string(m.Status),
		Cost:         m.Cost,
		URL:          m.URL,
		ErrorMessage: m.ErrorMessage,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
