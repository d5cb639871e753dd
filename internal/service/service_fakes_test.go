package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/pkg/apperrors"
	"fun-writing-be/internal/repository/contract"
	"fun-writing-be/internal/repository/specification"
	"fun-writing-be/internal/repository/unitofwork"
	"fun-writing-be/pkg/agents"
)

// fakeStore is the in-memory backing for all fake repositories.
type fakeStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*entity.User
	prompts     map[uuid.UUID]*entity.WritingPrompt
	submissions map[uuid.UUID]*entity.WritingSubmission
	media       map[uuid.UUID]*entity.GeneratedMedia
	txs         []*entity.CreditTransaction
	orders      map[uuid.UUID]*entity.CreditTopUpOrder
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]*entity.User),
		prompts:     make(map[uuid.UUID]*entity.WritingPrompt),
		submissions: make(map[uuid.UUID]*entity.WritingSubmission),
		media:       make(map[uuid.UUID]*entity.GeneratedMedia),
		orders:      make(map[uuid.UUID]*entity.CreditTopUpOrder),
	}
}

// Ledger BalanceStore/AuditSink over the fake store.

func (s *fakeStore) Balance(ctx context.Context, userId uuid.UUID) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userId]
	if !ok {
		return 0, 0, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return u.CreditBalance, u.CreditVersion, nil
}

func (s *fakeStore) CompareAndSwapBalance(ctx context.Context, userId uuid.UUID, newBalance, expectedVersion int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userId]
	if !ok {
		return false, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	if u.CreditVersion != expectedVersion {
		return false, nil
	}
	u.CreditBalance = newBalance
	u.CreditVersion++
	return true, nil
}

func (s *fakeStore) Append(ctx context.Context, tx *entity.CreditTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return nil
}

// specFilter is the subset of specifications the fakes understand.
type specFilter struct {
	id           *uuid.UUID
	userId       *uuid.UUID
	submissionId *uuid.UUID
	status       *string
	fields       map[string]interface{}
}

func parseSpecs(specs []specification.Specification) specFilter {
	f := specFilter{fields: make(map[string]interface{})}
	for _, sp := range specs {
		switch v := sp.(type) {
		case specification.ByID:
			id := v.ID
			f.id = &id
		case specification.UserOwnedBy:
			uid := v.UserID
			f.userId = &uid
		case specification.BySubmission:
			sid := v.SubmissionID
			f.submissionId = &sid
		case specification.ByStatus:
			st := v.Status
			f.status = &st
		case specification.FilterBy:
			f.fields[v.Field] = v.Value
		}
	}
	return f
}

// fakeUserRepo

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *user
	r.store.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if f.id != nil {
		if u, ok := r.store.users[*f.id]; ok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeUserRepo) CompareAndSwapBalance(ctx context.Context, userId uuid.UUID, newBalance, expectedVersion int) (bool, error) {
	return r.store.CompareAndSwapBalance(ctx, userId, newBalance, expectedVersion)
}

// fakePromptRepo

type fakePromptRepo struct{ store *fakeStore }

func (r *fakePromptRepo) Create(ctx context.Context, prompt *entity.WritingPrompt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *prompt
	r.store.prompts[prompt.Id] = &cp
	return nil
}

func (r *fakePromptRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WritingPrompt, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if f.id != nil {
		if p, ok := r.store.prompts[*f.id]; ok {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePromptRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WritingPrompt, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*entity.WritingPrompt, 0, len(r.store.prompts))
	for _, p := range r.store.prompts {
		if want, ok := f.fields["active"]; ok && p.Active != want.(bool) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// fakeSubmissionRepo

type fakeSubmissionRepo struct{ store *fakeStore }

func (r *fakeSubmissionRepo) Create(ctx context.Context, sub *entity.WritingSubmission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *sub
	r.store.submissions[sub.Id] = &cp
	return nil
}

func (r *fakeSubmissionRepo) Update(ctx context.Context, sub *entity.WritingSubmission) error {
	return r.Create(ctx, sub)
}

func (r *fakeSubmissionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WritingSubmission, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if f.id != nil {
		sub, ok := r.store.submissions[*f.id]
		if !ok {
			return nil, nil
		}
		if f.userId != nil && sub.UserId != *f.userId {
			return nil, nil
		}
		cp := *sub
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSubmissionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WritingSubmission, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.WritingSubmission
	for _, sub := range r.store.submissions {
		if f.userId != nil && sub.UserId != *f.userId {
			continue
		}
		cp := *sub
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSubmissionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	subs, err := r.FindAll(ctx, specs...)
	return int64(len(subs)), err
}

func (r *fakeSubmissionRepo) IncrementCreditsUsed(ctx context.Context, id uuid.UUID, amount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub, ok := r.store.submissions[id]
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "submission not found")
	}
	sub.CreditsUsedTotal += amount
	return nil
}

// fakeMediaRepo enforces the same forward-only order as the real repository.

type fakeMediaRepo struct{ store *fakeStore }

func (r *fakeMediaRepo) Create(ctx context.Context, media *entity.GeneratedMedia) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *media
	r.store.media[media.Id] = &cp
	return nil
}

func (r *fakeMediaRepo) UpdateStatus(ctx context.Context, id uuid.UUID, next entity.MediaStatus, patch contract.MediaPatch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.media[id]
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "media not found")
	}
	if !m.CanTransitionTo(next) {
		return apperrors.New(apperrors.CodeInvalidMediaTransition, "invalid media status transition")
	}
	m.Status = next
	if patch.URL != nil {
		m.URL = patch.URL
	}
	if patch.Prompt != nil {
		m.Prompt = patch.Prompt
	}
	if patch.ErrorMessage != nil {
		m.ErrorMessage = patch.ErrorMessage
	}
	return nil
}

func (r *fakeMediaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.media, id)
	return nil
}

func (r *fakeMediaRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedMedia, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if f.id != nil {
		m, ok := r.store.media[*f.id]
		if !ok {
			return nil, nil
		}
		if f.userId != nil && m.UserId != *f.userId {
			return nil, nil
		}
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeMediaRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedMedia, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.GeneratedMedia
	for _, m := range r.store.media {
		if f.userId != nil && m.UserId != *f.userId {
			continue
		}
		if f.submissionId != nil && m.SubmissionId != *f.submissionId {
			continue
		}
		if f.status != nil && string(m.Status) != *f.status {
			continue
		}
		if want, ok := f.fields["media_type"]; ok && string(m.MediaType) != want.(string) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// fakeCreditTxRepo / fakeTopUpRepo

type fakeCreditTxRepo struct{ store *fakeStore }

func (r *fakeCreditTxRepo) Create(ctx context.Context, tx *entity.CreditTransaction) error {
	return r.store.Append(ctx, tx)
}

func (r *fakeCreditTxRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.CreditTransaction
	for _, tx := range r.store.txs {
		if f.userId != nil && tx.UserId != *f.userId {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	return out, nil
}

type fakeTopUpRepo struct{ store *fakeStore }

func (r *fakeTopUpRepo) Create(ctx context.Context, order *entity.CreditTopUpOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *order
	r.store.orders[order.Id] = &cp
	return nil
}

func (r *fakeTopUpRepo) Update(ctx context.Context, order *entity.CreditTopUpOrder) error {
	return r.Create(ctx, order)
}

func (r *fakeTopUpRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CreditTopUpOrder, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if f.id != nil {
		if o, ok := r.store.orders[*f.id]; ok {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTopUpRepo) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.CreditTopUpOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.CreditTopUpOrder
	for _, o := range r.store.orders {
		if o.UserId == userId {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeUow / fakeUowFactory

type fakeUow struct{ store *fakeStore }

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}
func (u *fakeUow) PromptRepository() contract.PromptRepository {
	return &fakePromptRepo{store: u.store}
}
func (u *fakeUow) SubmissionRepository() contract.SubmissionRepository {
	return &fakeSubmissionRepo{store: u.store}
}
func (u *fakeUow) MediaRepository() contract.MediaRepository {
	return &fakeMediaRepo{store: u.store}
}
func (u *fakeUow) CreditTransactionRepository() contract.CreditTransactionRepository {
	return &fakeCreditTxRepo{store: u.store}
}
func (u *fakeUow) TopUpRepository() contract.TopUpRepository {
	return &fakeTopUpRepo{store: u.store}
}

type fakeUowFactory struct{ store *fakeStore }

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

// fakeAgentsClient routes each call to a configurable func.

type fakeAgentsClient struct {
	analyzeFn  func(ctx context.Context, req agents.AnalyzeWritingRequest) (*agents.AnalyzeWritingResponse, error)
	contentFn  func(ctx context.Context, req agents.CheckContentRequest) (*agents.CheckContentResponse, error)
	imageFn    func(ctx context.Context, req agents.GenerateImageRequest) (*agents.GenerateImageResponse, error)
	videoFn    func(ctx context.Context, req agents.GenerateVideoRequest) (*agents.GenerateVideoResponse, error)
	validateFn func(ctx context.Context, req agents.ValidateImageRequest) (*agents.ValidateImageResponse, error)
}

func (f *fakeAgentsClient) AnalyzeWriting(ctx context.Context, req agents.AnalyzeWritingRequest) (*agents.AnalyzeWritingResponse, error) {
	if f.analyzeFn == nil {
		return nil, errors.New("analyze not configured")
	}
	return f.analyzeFn(ctx, req)
}

func (f *fakeAgentsClient) CheckContent(ctx context.Context, req agents.CheckContentRequest) (*agents.CheckContentResponse, error) {
	if f.contentFn == nil {
		return &agents.CheckContentResponse{
			Success: true,
			Safety:  &agents.SafetyCheck{IsSafe: true, RiskLevel: "none"},
		}, nil
	}
	return f.contentFn(ctx, req)
}

func (f *fakeAgentsClient) GenerateImage(ctx context.Context, req agents.GenerateImageRequest) (*agents.GenerateImageResponse, error) {
	if f.imageFn == nil {
		return nil, errors.New("image not configured")
	}
	return f.imageFn(ctx, req)
}

func (f *fakeAgentsClient) GenerateVideo(ctx context.Context, req agents.GenerateVideoRequest) (*agents.GenerateVideoResponse, error) {
	if f.videoFn == nil {
		return nil, errors.New("video not configured")
	}
	return f.videoFn(ctx, req)
}

func (f *fakeAgentsClient) ValidateImage(ctx context.Context, req agents.ValidateImageRequest) (*agents.ValidateImageResponse, error) {
	if f.validateFn == nil {
		return &agents.ValidateImageResponse{
			Success: true,
			IsSafe:  true,
			Safety:  &agents.SafetyCheck{IsSafe: true, RiskLevel: "none"},
		}, nil
	}
	return f.validateFn(ctx, req)
}

// fakeEmailService records sent mail.

type fakeEmailService struct {
	mu           sync.Mutex
	safetyAlerts []string
	receipts     []string
}

func (f *fakeEmailService) SendSafetyAlert(toEmail, studentName, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.safetyAlerts = append(f.safetyAlerts, toEmail)
	return nil
}

func (f *fakeEmailService) SendTopUpReceipt(toEmail string, credits int, orderId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, orderId)
	return nil
}

// noopLogger

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }
