package credits

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/pkg/apperrors"
	"fun-writing-be/internal/pkg/logger"
)

type ReservationState string

const (
	ReservationHeld      ReservationState = "held"
	ReservationCommitted ReservationState = "committed"
	ReservationRefunded  ReservationState = "refunded"

	// ReservationRefunding is transient: it claims the refund before the
	// balance write so a second refunder or a racing commit cannot slip in
	// between the state check and the credit.
	ReservationRefunding ReservationState = "refunding"
)

// Resolved reservations are kept around so replayed refunds stay no-ops,
// then swept after a retention window.
const (
	resolvedRetention = time.Hour
	sweepEvery        = 5 * time.Minute
)

// Reservation is a hold on credits for one generation attempt. It lives only
// in process memory: the debit itself is already durable in the user row, and
// the audit table records every state change, so a crash loses nothing that
// reconciliation cannot recover.
type Reservation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Amount    int
	Service   string
	State     ReservationState
	CreatedAt time.Time

	resolvedAt time.Time
}

// BalanceStore reads and conditionally writes a user's credit balance.
// CompareAndSwapBalance must only succeed when the stored version still
// matches expectedVersion.
type BalanceStore interface {
	Balance(ctx context.Context, userId uuid.UUID) (balance int, version int, err error)
	CompareAndSwapBalance(ctx context.Context, userId uuid.UUID, newBalance, expectedVersion int) (bool, error)
}

// AuditSink appends immutable credit transaction records.
type AuditSink interface {
	Append(ctx context.Context, tx *entity.CreditTransaction) error
}

// ILedger is the single writer of credit balances. Debits happen at Reserve
// time through a version-checked swap, so two concurrent reservations can
// never spend the same credits.
type ILedger interface {
	Balance(ctx context.Context, userId uuid.UUID) (int, error)
	Reserve(ctx context.Context, userId uuid.UUID, amount int, service string) (*Reservation, error)
	Commit(ctx context.Context, reservationId uuid.UUID, relatedId *uuid.UUID) error
	Refund(ctx context.Context, reservationId uuid.UUID, reason string) error
	Grant(ctx context.Context, userId uuid.UUID, amount int, txType entity.CreditTransactionType, notes string) error
}

type LedgerImpl struct {
	store      BalanceStore
	audit      AuditSink
	logger     logger.ILogger
	maxRetries int

	mu           sync.Mutex
	reservations map[uuid.UUID]*Reservation
	lastSweep    time.Time
}

func NewLedger(store BalanceStore, audit AuditSink, log logger.ILogger, maxRetries int) *LedgerImpl {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &LedgerImpl{
		store:        store,
		audit:        audit,
		logger:       log,
		maxRetries:   maxRetries,
		reservations: make(map[uuid.UUID]*Reservation),
	}
}

func (l *LedgerImpl) Balance(ctx context.Context, userId uuid.UUID) (int, error) {
	balance, _, err := l.store.Balance(ctx, userId)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (l *LedgerImpl) Reserve(ctx context.Context, userId uuid.UUID, amount int, service string) (*Reservation, error) {
	if amount <= 0 {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "reservation amount must be positive")
	}

	for attempt := 0; attempt < l.maxRetries; attempt++ {
		balance, version, err := l.store.Balance(ctx, userId)
		if err != nil {
			return nil, err
		}
		if balance < amount {
			return nil, apperrors.New(apperrors.CodeInsufficientCredits, "not enough credits for this generation").
				WithDetail("required", amount).
				WithDetail("available", balance)
		}

		swapped, err := l.store.CompareAndSwapBalance(ctx, userId, balance-amount, version)
		if err != nil {
			return nil, err
		}
		if !swapped {
			continue
		}

		res := &Reservation{
			Id:        uuid.New(),
			UserId:    userId,
			Amount:    amount,
			Service:   service,
			State:     ReservationHeld,
			CreatedAt: time.Now(),
		}
		l.mu.Lock()
		l.reservations[res.Id] = res
		l.sweepLocked(time.Now())
		l.mu.Unlock()

		l.appendAudit(ctx, userId, entity.CreditTxReserve, -amount, service, nil, "credits held for generation")
		return res, nil
	}

	l.logger.Warn("credits", "balance swap lost race on every attempt", map[string]interface{}{
		"userId":   userId.String(),
		"attempts": l.maxRetries,
	})
	return nil, apperrors.New(apperrors.CodeLedgerConflict, "balance changed concurrently, please retry")
}

func (l *LedgerImpl) Commit(ctx context.Context, reservationId uuid.UUID, relatedId *uuid.UUID) error {
	l.mu.Lock()
	res, ok := l.reservations[reservationId]
	if !ok {
		l.mu.Unlock()
		return apperrors.New(apperrors.CodeNotFound, "reservation not found")
	}
	if res.State != ReservationHeld {
		l.mu.Unlock()
		return apperrors.New(apperrors.CodeAlreadyResolved, "reservation already resolved").
			WithDetail("state", string(res.State))
	}
	res.State = ReservationCommitted
	res.resolvedAt = time.Now()
	l.mu.Unlock()

	l.appendAudit(ctx, res.UserId, entity.CreditTxCommit, -res.Amount, res.Service, relatedId, "generation delivered")
	return nil
}

func (l *LedgerImpl) Refund(ctx context.Context, reservationId uuid.UUID, reason string) error {
	// Claim the transition before touching the balance: only the caller that
	// flips held -> refunding performs the credit, so a racing refund or
	// commit can never resolve the reservation twice.
	l.mu.Lock()
	res, ok := l.reservations[reservationId]
	if !ok {
		l.mu.Unlock()
		return apperrors.New(apperrors.CodeNotFound, "reservation not found")
	}
	switch res.State {
	case ReservationRefunded:
		// Refund is idempotent. The credits went back the first time.
		l.mu.Unlock()
		return nil
	case ReservationCommitted:
		l.mu.Unlock()
		return apperrors.New(apperrors.CodeAlreadyResolved, "reservation already committed")
	case ReservationRefunding:
		l.mu.Unlock()
		return apperrors.New(apperrors.CodeLedgerConflict, "refund already in progress")
	}
	res.State = ReservationRefunding
	l.mu.Unlock()

	if err := l.creditBack(ctx, res.UserId, res.Amount); err != nil {
		// Reservation goes back to held so the refund can be retried.
		l.mu.Lock()
		res.State = ReservationHeld
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	res.State = ReservationRefunded
	res.resolvedAt = time.Now()
	l.mu.Unlock()

	l.appendAudit(ctx, res.UserId, entity.CreditTxRefund, res.Amount, res.Service, nil, reason)
	return nil
}

// sweepLocked drops reservations resolved longer than resolvedRetention ago.
// Caller holds l.mu.
func (l *LedgerImpl) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	l.lastSweep = now
	for id, res := range l.reservations {
		if res.State == ReservationHeld || res.State == ReservationRefunding {
			continue
		}
		if now.Sub(res.resolvedAt) > resolvedRetention {
			delete(l.reservations, id)
		}
	}
}

func (l *LedgerImpl) Grant(ctx context.Context, userId uuid.UUID, amount int, txType entity.CreditTransactionType, notes string) error {
	if amount <= 0 {
		return apperrors.New(apperrors.CodeValidationFailed, "grant amount must be positive")
	}
	if err := l.creditBack(ctx, userId, amount); err != nil {
		return err
	}
	l.appendAudit(ctx, userId, txType, amount, "", nil, notes)
	return nil
}

func (l *LedgerImpl) creditBack(ctx context.Context, userId uuid.UUID, amount int) error {
	for attempt := 0; attempt < l.maxRetries; attempt++ {
		balance, version, err := l.store.Balance(ctx, userId)
		if err != nil {
			return err
		}
		swapped, err := l.store.CompareAndSwapBalance(ctx, userId, balance+amount, version)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}
	return apperrors.New(apperrors.CodeLedgerConflict, "balance changed concurrently, please retry")
}

func (l *LedgerImpl) appendAudit(ctx context.Context, userId uuid.UUID, txType entity.CreditTransactionType, amount int, service string, relatedId *uuid.UUID, notes string) {
	tx := &entity.CreditTransaction{
		Id:              uuid.New(),
		UserId:          userId,
		TransactionType: txType,
		Amount:          amount,
		RelatedId:       relatedId,
		CreatedAt:       time.Now(),
	}
	if service != "" {
		tx.ServiceUsed = &service
	}
	if notes != "" {
		tx.Notes = &notes
	}
	if err := l.audit.Append(ctx, tx); err != nil {
		// The balance mutation already landed; losing an audit row is
		// log-worthy but must not fail the caller.
		l.logger.Error("credits", "failed to append credit audit entry", map[string]interface{}{
			"userId": userId.String(),
			"type":   string(txType),
			"error":  err.Error(),
		})
	}
}
