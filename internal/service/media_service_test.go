package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fun-writing-be/internal/config"
	"fun-writing-be/internal/dto"
	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/pkg/apperrors"
	"fun-writing-be/internal/repository/memory"
	"fun-writing-be/pkg/agents"
	"fun-writing-be/pkg/credits"
	"fun-writing-be/pkg/safety"
)

type mediaFixture struct {
	store  *fakeStore
	client *fakeAgentsClient
	ledger credits.ILedger
	svc    IMediaService
	userId uuid.UUID
	subId  uuid.UUID
}

func newMediaFixture(t *testing.T, balance int) *mediaFixture {
	t.Helper()

	store := newFakeStore()
	userId := uuid.New()
	subId := uuid.New()
	score := 85

	store.users[userId] = &entity.User{
		Id:            userId,
		Email:         "kid@example.com",
		FullName:      "Kiddo",
		AgeGroup:      "7-9",
		CreditBalance: balance,
	}
	store.submissions[subId] = &entity.WritingSubmission{
		Id:           subId,
		UserId:       userId,
		PromptId:     uuid.New(),
		Content:      "Once upon a time a dragon learned to bake bread.",
		WordCount:    10,
		Status:       entity.SubmissionStatusReviewed,
		Score:        &score,
		SafetyPassed: true,
		CreatedAt:    time.Now(),
	}

	client := &fakeAgentsClient{}
	log := noopLogger{}
	ledger := credits.NewLedger(store, store, log, 5)

	svc := NewMediaService(
		&fakeUowFactory{store: store},
		ledger,
		safety.NewGate(client, log),
		client,
		memory.NewFlightGuard(),
		nil,
		config.AgentsConfig{
			AnalyzeTimeout: time.Second,
			ImageTimeout:   time.Second,
			VideoTimeout:   time.Second,
			SafetyTimeout:  time.Second,
		},
		config.CreditsConfig{ImageCost: 100, VideoCost: 500, MaxCASRetries: 5},
		log,
	)

	return &mediaFixture{
		store:  store,
		client: client,
		ledger: ledger,
		svc:    svc,
		userId: userId,
		subId:  subId,
	}
}

func (f *mediaFixture) balance(t *testing.T) int {
	t.Helper()
	balance, _, err := f.store.Balance(context.Background(), f.userId)
	require.NoError(t, err)
	return balance
}

func (f *mediaFixture) singleMedia(t *testing.T) *entity.GeneratedMedia {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	require.Len(t, f.store.media, 1)
	for _, m := range f.store.media {
		cp := *m
		return &cp
	}
	return nil
}

func (f *mediaFixture) auditTypes(t *testing.T) []entity.CreditTransactionType {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make([]entity.CreditTransactionType, 0, len(f.store.txs))
	for _, tx := range f.store.txs {
		out = append(out, tx.TransactionType)
	}
	return out
}

func TestRequestImageHappyPath(t *testing.T) {
	f := newMediaFixture(t, 300)
	f.client.imageFn = func(ctx context.Context, req agents.GenerateImageRequest) (*agents.GenerateImageResponse, error) {
		return &agents.GenerateImageResponse{Success: true, ImageURL: "https://cdn.example.com/a.png", Prompt: "a baking dragon"}, nil
	}

	resp, err := f.svc.RequestImage(context.Background(), f.userId, &dto.GenerateImageRequest{
		SubmissionId: f.subId,
		Style:        "comic",
	})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.RemainingCredits)
	assert.Equal(t, "completed", resp.Media.Status)
	require.NotNil(t, resp.Media.URL)
	assert.Equal(t, "https://cdn.example.com/a.png", *resp.Media.URL)

	media := f.singleMedia(t)
	assert.Equal(t, entity.MediaStatusCompleted, media.Status)
	assert.Equal(t, 100, media.Cost)

	f.store.mu.Lock()
	sub := f.store.submissions[f.subId]
	f.store.mu.Unlock()
	assert.Equal(t, 100, sub.CreditsUsedTotal)

	assert.Equal(t, []entity.CreditTransactionType{entity.CreditTxReserve, entity.CreditTxCommit}, f.auditTypes(t))
}

func TestRequestImageGenerationFailureRefunds(t *testing.T) {
	f := newMediaFixture(t, 300)
	f.client.imageFn = func(ctx context.Context, req agents.GenerateImageRequest) (*agents.GenerateImageResponse, error) {
		return nil, errors.New("render farm is on fire")
	}

	_, err := f.svc.RequestImage(context.Background(), f.userId, &dto.GenerateImageRequest{
		SubmissionId: f.subId,
		Style:        "standard",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGenerationServiceError, apperrors.CodeOf(err))

	// The hold is released, so the user ends the attempt with what they started.
	assert.Equal(t, 300, f.balance(t))

	media := f.singleMedia(t)
	assert.Equal(t, entity.MediaStatusFailed, media.Status)
	require.NotNil(t, media.ErrorMessage)

	assert.Equal(t, []entity.CreditTransactionType{entity.CreditTxReserve, entity.CreditTxRefund}, f.auditTypes(t))
}

func TestRequestImageInsufficientCredits(t *testing.T) {
	f := newMediaFixture(t, 99)

	_, err := f.svc.RequestImage(context.Background(), f.userId, &dto.GenerateImageRequest{
		SubmissionId: f.subId,
		Style:        "standard",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInsufficientCredits, apperrors.CodeOf(err))

	assert.Equal(t, 99, f.balance(t))
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.Empty(t, f.store.media, "no asset row may exist for a request that never reserved credits")
}

func TestRequestImageSafetyRejected(t *testing.T) {
	f := newMediaFixture(t, 300)
	f.client.imageFn = func(ctx context.Context, req agents.GenerateImageRequest) (*agents.GenerateImageResponse, error) {
		return &agents.GenerateImageResponse{Success: true, ImageURL: "https://cdn.example.com/sus.png"}, nil
	}
	f.client.validateFn = func(ctx context.Context, req agents.ValidateImageRequest) (*agents.ValidateImageResponse, error) {
		return &agents.ValidateImageResponse{
			Success: true,
			IsSafe:  false,
			Blocked: true,
			Safety:  &agents.SafetyCheck{IsSafe: false, RiskLevel: "high"},
		}, nil
	}

	_, err := f.svc.RequestImage(context.Background(), f.userId, &dto.GenerateImageRequest{
		SubmissionId: f.subId,
		Style:        "standard",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSafetyRejected, apperrors.CodeOf(err))

	assert.Equal(t, 300, f.balance(t))
	media := f.singleMedia(t)
	assert.Equal(t, entity.MediaStatusFailed, media.Status)
}

func TestRequestImageNotEligible(t *testing.T) {
	f := newMediaFixture(t, 300)
	lowScore := 40
	f.store.mu.Lock()
	f.store.submissions[f.subId].Score = &lowScore
	f.store.mu.Unlock()

	_, err := f.svc.RequestImage(context.Background(), f.userId, &dto.GenerateImageRequest{
		SubmissionId: f.subId,
		Style:        "standard",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSubmissionNotEligible, apperrors.CodeOf(err))
	assert.Equal(t, 300, f.balance(t))
}

func TestRequestVideoChargesVideoCost(t *testing.T) {
	f := newMediaFixture(t, 600)
	f.client.videoFn = func(ctx context.Context, req agents.GenerateVideoRequest) (*agents.GenerateVideoResponse, error) {
		return &agents.GenerateVideoResponse{Success: true, VideoURL: "https://cdn.example.com/v.mp4"}, nil
	}

	resp, err := f.svc.RequestVideo(context.Background(), f.userId, &dto.GenerateVideoRequest{
		SubmissionId: f.subId,
		Style:        "animation",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.RemainingCredits)

	media := f.singleMedia(t)
	assert.Equal(t, entity.MediaTypeVideo, media.MediaType)
	assert.Equal(t, 500, media.Cost)
}

func TestDuplicateRequestRejectedWhileFirstInFlight(t *testing.T) {
	f := newMediaFixture(t, 300)

	started := make(chan struct{})
	release := make(chan struct{})
	f.client.imageFn = func(ctx context.Context, req agents.GenerateImageRequest) (*agents.GenerateImageResponse, error) {
		close(started)
		<-release
		return &agents.GenerateImageResponse{Success: true, ImageURL: "https://cdn.example.com/a.png"}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = f.svc.RequestImage(context.Background(), f.userId, &dto.GenerateImageRequest{
			SubmissionId: f.subId,
			Style:        "standard",
		})
	}()

	<-started
	_, dupErr := f.svc.RequestImage(context.Background(), f.userId, &dto.GenerateImageRequest{
		SubmissionId: f.subId,
		Style:        "standard",
	})
	require.Error(t, dupErr)
	assert.Equal(t, apperrors.CodeDuplicateRequest, apperrors.CodeOf(dupErr))

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	// Exactly one generation was paid for.
	assert.Equal(t, 200, f.balance(t))
}

func TestConcurrentRequestsNeverOverspend(t *testing.T) {
	// 150 credits cover one image, not two. Different styles bypass the
	// duplicate guard, so only the balance protects the second request.
	f := newMediaFixture(t, 150)
	f.client.imageFn = func(ctx context.Context, req agents.GenerateImageRequest) (*agents.GenerateImageResponse, error) {
		return &agents.GenerateImageResponse{Success: true, ImageURL: "https://cdn.example.com/" + req.ImageStyle + ".png"}, nil
	}

	styles := []string{"standard", "comic"}
	errs := make([]error, len(styles))
	var wg sync.WaitGroup
	for i, style := range styles {
		wg.Add(1)
		go func(i int, style string) {
			defer wg.Done()
			_, errs[i] = f.svc.RequestImage(context.Background(), f.userId, &dto.GenerateImageRequest{
				SubmissionId: f.subId,
				Style:        style,
			})
		}(i, style)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperrors.CodeInsufficientCredits, apperrors.CodeOf(err))
	}
	require.Equal(t, 1, succeeded)
	assert.Equal(t, 50, f.balance(t))
}

func TestDeleteOnlyTerminalMedia(t *testing.T) {
	f := newMediaFixture(t, 300)

	inFlight := &entity.GeneratedMedia{
		Id:           uuid.New(),
		SubmissionId: f.subId,
		UserId:       f.userId,
		MediaType:    entity.MediaTypeImage,
		Style:        "standard",
		Status:       entity.MediaStatusGenerating,
		Cost:         100,
	}
	done := &entity.GeneratedMedia{
		Id:           uuid.New(),
		SubmissionId: f.subId,
		UserId:       f.userId,
		MediaType:    entity.MediaTypeImage,
		Style:        "comic",
		Status:       entity.MediaStatusCompleted,
		Cost:         100,
	}
	f.store.mu.Lock()
	f.store.media[inFlight.Id] = inFlight
	f.store.media[done.Id] = done
	f.store.mu.Unlock()

	err := f.svc.Delete(context.Background(), f.userId, inFlight.Id)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))

	require.NoError(t, f.svc.Delete(context.Background(), f.userId, done.Id))
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.NotContains(t, f.store.media, done.Id)
	assert.Contains(t, f.store.media, inFlight.Id)
}
