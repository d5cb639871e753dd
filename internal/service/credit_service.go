package service

import (
	"context"
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"fun-writing-be/internal/config"
	"fun-writing-be/internal/dto"
	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/pkg/apperrors"
	"fun-writing-be/internal/pkg/logger"
	"fun-writing-be/internal/pkg/mailer"
	"fun-writing-be/internal/repository/specification"
	"fun-writing-be/internal/repository/unitofwork"
	"fun-writing-be/pkg/credits"
	"fun-writing-be/pkg/events"
)

// creditPackages are the purchasable bundles. Prices are gross IDR.
var creditPackages = []entity.CreditPackage{
	{Slug: "starter", Name: "Starter Pack", Credits: 500, PriceID: 25000},
	{Slug: "creator", Name: "Creator Pack", Credits: 1200, PriceID: 50000},
	{Slug: "studio", Name: "Studio Pack", Credits: 2600, PriceID: 100000},
}

type ICreditService interface {
	Balance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error)
	History(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.CreditHistoryResponse, error)
	Packages(ctx context.Context) []dto.CreditPackageResponse
	TopUp(ctx context.Context, userId uuid.UUID, req *dto.TopUpRequest) (*dto.TopUpResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type creditService struct {
	uowFactory       unitofwork.RepositoryFactory
	ledger           credits.ILedger
	publisherService IPublisherService
	emailService     mailer.IEmailService
	paymentCfg       config.PaymentConfig
	frontendURL      string
	logger           logger.ILogger
}

func NewCreditService(
	uowFactory unitofwork.RepositoryFactory,
	ledger credits.ILedger,
	publisherService IPublisherService,
	emailService mailer.IEmailService,
	paymentCfg config.PaymentConfig,
	frontendURL string,
	log logger.ILogger,
) ICreditService {
	return &creditService{
		uowFactory:       uowFactory,
		ledger:           ledger,
		publisherService: publisherService,
		emailService:     emailService,
		paymentCfg:       paymentCfg,
		frontendURL:      frontendURL,
		logger:           log,
	}
}

func (s *creditService) Balance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return &dto.BalanceResponse{
		Balance:     user.CreditBalance,
		TrialActive: user.TrialActive,
		TrialEndsAt: user.TrialEndsAt,
	}, nil
}

func (s *creditService) History(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.CreditHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.CreditTransactionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CreditHistoryItem, 0, len(txs))
	for _, tx := range txs {
		items = append(items, dto.CreditHistoryItem{
			Id:              tx.Id,
			TransactionType: string(tx.TransactionType),
			Amount:          tx.Amount,
			ServiceUsed:     tx.ServiceUsed,
			RelatedId:       tx.RelatedId,
			Notes:           tx.Notes,
			CreatedAt:       tx.CreatedAt,
		})
	}
	return &dto.CreditHistoryResponse{Items: items, Page: page, Limit: limit}, nil
}

func (s *creditService) Packages(ctx context.Context) []dto.CreditPackageResponse {
	out := make([]dto.CreditPackageResponse, 0, len(creditPackages))
	for _, p := range creditPackages {
		out = append(out, dto.CreditPackageResponse{
			Slug:    p.Slug,
			Name:    p.Name,
			Credits: p.Credits,
			Price:   p.PriceID,
		})
	}
	return out
}

func (s *creditService) TopUp(ctx context.Context, userId uuid.UUID, req *dto.TopUpRequest) (*dto.TopUpResponse, error) {
	pkg := findPackage(req.PackageSlug)
	if pkg == nil {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "unknown credit package").
			WithDetail("package_slug", req.PackageSlug)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}

	order := &entity.CreditTopUpOrder{
		Id:            uuid.New(),
		UserId:        userId,
		PackageSlug:   pkg.Slug,
		Credits:       pkg.Credits,
		GrossAmount:   pkg.PriceID,
		PaymentStatus: entity.TopUpPaymentPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := uow.TopUpRepository().Create(ctx, order); err != nil {
		return nil, err
	}

	// External call after the order row is durable.
	var sClient snap.Client
	env := midtrans.Sandbox
	if s.paymentCfg.MidtransIsProduction {
		env = midtrans.Production
	}
	sClient.New(s.paymentCfg.MidtransServerKey, env)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.Id.String(),
			GrossAmt: pkg.PriceID,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/app?topup=success", s.frontendURL),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.FullName,
			Email: user.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    pkg.Slug,
				Price: pkg.PriceID,
				Qty:   1,
				Name:  pkg.Name,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternalError, "payment provider error", fmt.Errorf("midtrans: %v", midErr.GetMessage()))
	}

	order.SnapToken = &snapResp.Token
	if err := uow.TopUpRepository().Update(ctx, order); err != nil {
		s.logger.Warn("credits", "failed to persist snap token", map[string]interface{}{
			"orderId": order.Id.String(),
			"error":   err.Error(),
		})
	}

	return &dto.TopUpResponse{
		OrderId:         order.Id,
		SnapToken:       snapResp.Token,
		SnapRedirectUrl: snapResp.RedirectURL,
	}, nil
}

// HandleNotification processes the Midtrans webhook. Credits are granted
// exactly once per order: the grant happens only on the pending->paid edge.
func (s *creditService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if s.paymentCfg.MidtransServerKey == "" {
		return apperrors.New(apperrors.CodeInternalError, "payment provider not configured")
	}

	// Midtrans signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + s.paymentCfg.MidtransServerKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))
	if req.SignatureKey != expectedSignature {
		s.logger.Warn("credits", "webhook signature mismatch", map[string]interface{}{
			"orderId": req.OrderId,
		})
		return apperrors.New(apperrors.CodeUnauthorized, "invalid signature")
	}

	orderId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return apperrors.New(apperrors.CodeValidationFailed, "invalid order id")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	order, err := uow.TopUpRepository().FindOne(ctx, specification.ByID{ID: orderId})
	if err != nil {
		return err
	}
	if order == nil {
		return apperrors.New(apperrors.CodeNotFound, "top-up order not found")
	}

	switch req.TransactionStatus {
	case "capture", "settlement":
		if order.PaymentStatus == entity.TopUpPaymentPaid {
			// Midtrans retries notifications; the credits already landed.
			return nil
		}
		now := time.Now()
		order.PaymentStatus = entity.TopUpPaymentPaid
		order.CreditedAt = &now
		order.UpdatedAt = now
		if err := uow.TopUpRepository().Update(ctx, order); err != nil {
			return err
		}
		if err := uow.Commit(); err != nil {
			return err
		}

		if err := s.ledger.Grant(ctx, order.UserId, order.Credits, entity.CreditTxTopUp, "top-up order "+order.Id.String()); err != nil {
			s.logger.Error("credits", "payment settled but grant failed, needs reconciliation", map[string]interface{}{
				"orderId": order.Id.String(),
				"error":   err.Error(),
			})
			return err
		}

		s.afterTopUp(ctx, order)
		return nil

	case "deny", "cancel":
		order.PaymentStatus = entity.TopUpPaymentFailed
	case "expire":
		order.PaymentStatus = entity.TopUpPaymentExpired
	case "refund", "partial_refund":
		order.PaymentStatus = entity.TopUpPaymentRefunded
	case "pending":
		return nil
	default:
		s.logger.Info("credits", "ignoring unhandled transaction status", map[string]interface{}{
			"status":  req.TransactionStatus,
			"orderId": req.OrderId,
		})
		return nil
	}

	order.UpdatedAt = time.Now()
	if err := uow.TopUpRepository().Update(ctx, order); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *creditService) afterTopUp(ctx context.Context, order *entity.CreditTopUpOrder) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: order.UserId})
	if err == nil && user != nil {
		go func(email string, credits int, orderId string) {
			if err := s.emailService.SendTopUpReceipt(email, credits, orderId); err != nil {
				s.logger.Warn("credits", "failed to send receipt", map[string]interface{}{
					"orderId": orderId,
					"error":   err.Error(),
				})
			}
		}(user.Email, order.Credits, order.Id.String())
	}

	if s.publisherService != nil {
		payload, _ := json.Marshal(dto.PipelineEventMessage{
			Type:       events.TypeCreditsToppedUp,
			UserId:     order.UserId.String(),
			Title:      "Credits added!",
			Message:    fmt.Sprintf("%d credits were added to your account.", order.Credits),
			EntityType: "topup",
			EntityId:   order.Id.String(),
			OccurredAt: time.Now(),
		})
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.logger.Warn("credits", "failed to publish top-up event", map[string]interface{}{
				"orderId": order.Id.String(),
				"error":   err.Error(),
			})
		}
	}
}

func findPackage(slug string) *entity.CreditPackage {
	for i := range creditPackages {
		if creditPackages[i].Slug == slug {
			return &creditPackages[i]
		}
	}
	return nil
}
