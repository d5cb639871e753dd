package credits

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fun-writing-be/internal/entity"
	"fun-writing-be/internal/pkg/apperrors"
)

type memStore struct {
	mu      sync.Mutex
	balance int
	version int
}

func (m *memStore) Balance(ctx context.Context, userId uuid.UUID) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance, m.version, nil
}

func (m *memStore) CompareAndSwapBalance(ctx context.Context, userId uuid.UUID, newBalance, expectedVersion int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.version != expectedVersion {
		return false, nil
	}
	m.balance = newBalance
	m.version++
	return true, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []*entity.CreditTransaction
}

func (m *memAudit) Append(ctx context.Context, tx *entity.CreditTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, tx)
	return nil
}

func (m *memAudit) ofType(t entity.CreditTransactionType) []*entity.CreditTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.CreditTransaction
	for _, e := range m.entries {
		if e.TransactionType == t {
			out = append(out, e)
		}
	}
	return out
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func newTestLedger(balance int) (*LedgerImpl, *memStore, *memAudit) {
	store := &memStore{balance: balance}
	audit := &memAudit{}
	return NewLedger(store, audit, noopLogger{}, 5), store, audit
}

func TestReserveDebitsImmediately(t *testing.T) {
	ledger, store, audit := newTestLedger(300)
	userId := uuid.New()

	res, err := ledger.Reserve(context.Background(), userId, 100, "image")
	require.NoError(t, err)

	assert.Equal(t, 200, store.balance)
	assert.Equal(t, ReservationHeld, res.State)
	assert.Len(t, audit.ofType(entity.CreditTxReserve), 1)
	assert.Equal(t, -100, audit.ofType(entity.CreditTxReserve)[0].Amount)
}

func TestReserveInsufficientCredits(t *testing.T) {
	ledger, store, _ := newTestLedger(99)

	_, err := ledger.Reserve(context.Background(), uuid.New(), 100, "image")

	assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientCredits))
	assert.Equal(t, 99, store.balance)
}

func TestCommitThenRefundFails(t *testing.T) {
	ledger, store, _ := newTestLedger(500)
	userId := uuid.New()

	res, err := ledger.Reserve(context.Background(), userId, 500, "video")
	require.NoError(t, err)

	mediaId := uuid.New()
	require.NoError(t, ledger.Commit(context.Background(), res.Id, &mediaId))

	err = ledger.Refund(context.Background(), res.Id, "late refund attempt")
	assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyResolved))
	assert.Equal(t, 0, store.balance)
}

func TestRefundRestoresBalanceAndIsIdempotent(t *testing.T) {
	ledger, store, audit := newTestLedger(300)
	userId := uuid.New()

	res, err := ledger.Reserve(context.Background(), userId, 100, "image")
	require.NoError(t, err)
	assert.Equal(t, 200, store.balance)

	require.NoError(t, ledger.Refund(context.Background(), res.Id, "generation failed"))
	assert.Equal(t, 300, store.balance)

	// Second refund is a no-op, credits are not doubled.
	require.NoError(t, ledger.Refund(context.Background(), res.Id, "generation failed"))
	assert.Equal(t, 300, store.balance)
	assert.Len(t, audit.ofType(entity.CreditTxRefund), 1)
}

// gateStore parks the next armed Balance read so a second caller can be
// interleaved into the middle of a refund's balance write.
type gateStore struct {
	*memStore
	gateMu  sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func newGateStore(balance int) *gateStore {
	return &gateStore{
		memStore: &memStore{balance: balance},
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (s *gateStore) arm() {
	s.gateMu.Lock()
	s.armed = true
	s.gateMu.Unlock()
}

func (s *gateStore) Balance(ctx context.Context, userId uuid.UUID) (int, int, error) {
	s.gateMu.Lock()
	park := s.armed
	s.armed = false
	s.gateMu.Unlock()
	if park {
		close(s.entered)
		<-s.release
	}
	return s.memStore.Balance(ctx, userId)
}

func TestConcurrentRefundsCreditOnce(t *testing.T) {
	store := newGateStore(300)
	audit := &memAudit{}
	ledger := NewLedger(store, audit, noopLogger{}, 5)
	userId := uuid.New()

	res, err := ledger.Reserve(context.Background(), userId, 100, "image")
	require.NoError(t, err)
	require.Equal(t, 200, store.balance)

	store.arm()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = ledger.Refund(context.Background(), res.Id, "generation failed")
	}()
	<-store.entered

	// The first refund is parked inside its balance write. A second refund
	// must not pass the state check and credit the hold again.
	secondErr := ledger.Refund(context.Background(), res.Id, "generation failed")
	if secondErr != nil {
		assert.True(t, apperrors.Is(secondErr, apperrors.CodeLedgerConflict))
	}

	close(store.release)
	wg.Wait()
	require.NoError(t, firstErr)

	assert.Equal(t, 300, store.balance, "a single hold must never be credited back twice")
	assert.Len(t, audit.ofType(entity.CreditTxRefund), 1)

	// A later replay is still a clean no-op.
	require.NoError(t, ledger.Refund(context.Background(), res.Id, "generation failed"))
	assert.Equal(t, 300, store.balance)
}

func TestCommitDuringRefundFails(t *testing.T) {
	store := newGateStore(300)
	audit := &memAudit{}
	ledger := NewLedger(store, audit, noopLogger{}, 5)
	userId := uuid.New()

	res, err := ledger.Reserve(context.Background(), userId, 100, "image")
	require.NoError(t, err)

	store.arm()

	var wg sync.WaitGroup
	wg.Add(1)
	var refundErr error
	go func() {
		defer wg.Done()
		refundErr = ledger.Refund(context.Background(), res.Id, "generation failed")
	}()
	<-store.entered

	err = ledger.Commit(context.Background(), res.Id, nil)
	assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyResolved))

	close(store.release)
	wg.Wait()
	require.NoError(t, refundErr)

	assert.Equal(t, 300, store.balance)
	assert.Empty(t, audit.ofType(entity.CreditTxCommit))
	assert.Len(t, audit.ofType(entity.CreditTxRefund), 1)
}

func TestResolvedReservationsAreSwept(t *testing.T) {
	ledger, _, _ := newTestLedger(300)
	userId := uuid.New()

	resolved, err := ledger.Reserve(context.Background(), userId, 100, "image")
	require.NoError(t, err)
	require.NoError(t, ledger.Refund(context.Background(), resolved.Id, "generation failed"))

	held, err := ledger.Reserve(context.Background(), userId, 100, "video")
	require.NoError(t, err)

	ledger.mu.Lock()
	ledger.reservations[resolved.Id].resolvedAt = time.Now().Add(-2 * resolvedRetention)
	ledger.lastSweep = time.Time{}
	ledger.sweepLocked(time.Now())
	_, resolvedKept := ledger.reservations[resolved.Id]
	_, heldKept := ledger.reservations[held.Id]
	ledger.mu.Unlock()

	assert.False(t, resolvedKept, "resolved reservations past retention are dropped")
	assert.True(t, heldKept, "held reservations are never swept")
}

func TestDoubleCommitFails(t *testing.T) {
	ledger, _, _ := newTestLedger(300)

	res, err := ledger.Reserve(context.Background(), uuid.New(), 100, "image")
	require.NoError(t, err)

	require.NoError(t, ledger.Commit(context.Background(), res.Id, nil))
	err = ledger.Commit(context.Background(), res.Id, nil)
	assert.True(t, apperrors.Is(err, apperrors.CodeAlreadyResolved))
}

func TestConcurrentReservesNeverOverspend(t *testing.T) {
	// 300 credits, ten workers each trying to hold 100: exactly three may win.
	ledger, store, _ := newTestLedger(300)
	userId := uuid.New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var granted, insufficient, conflicted int

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve(context.Background(), userId, 100, "image")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case apperrors.Is(err, apperrors.CodeInsufficientCredits):
				insufficient++
			case apperrors.Is(err, apperrors.CodeLedgerConflict):
				conflicted++
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, granted, 3)
	assert.GreaterOrEqual(t, store.balance, 0)
	assert.Equal(t, 300-granted*100, store.balance)
	assert.Equal(t, 10, granted+insufficient+conflicted)
}

func TestGrantAddsCredits(t *testing.T) {
	ledger, store, audit := newTestLedger(50)
	userId := uuid.New()

	require.NoError(t, ledger.Grant(context.Background(), userId, 1000, entity.CreditTxTopUp, "midtrans order settled"))

	assert.Equal(t, 1050, store.balance)
	assert.Len(t, audit.ofType(entity.CreditTxTopUp), 1)
}
