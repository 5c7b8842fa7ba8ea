package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"payflow/internal/domain"
	"payflow/internal/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskPublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (f *fakeTaskPublisher) PublishSettlementTask(_ context.Context, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, paymentID)
	return nil
}

func stalePendingPayment(store *fakeStore, age time.Duration) *domain.Payment {
	p := &domain.Payment{
		ID:          uuid.New(),
		Reference:   uuid.New().String(),
		AmountCents: 1000,
		Currency:    "ETB",
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().Add(-age),
		UpdatedAt:   time.Now().Add(-age),
	}
	store.add(p)
	return p
}

func TestReconciliationWorker_ReenqueuesStale(t *testing.T) {
	store := newFakeStore()
	pub := &fakeTaskPublisher{}
	counters := metrics.New()
	rw := NewReconciliationWorker(store, pub, counters, testSettlementConfig())

	stale := stalePendingPayment(store, 2*time.Minute)

	require.NoError(t, rw.process(context.Background()))

	assert.Equal(t, []string{stale.ID.String()}, pub.published)
	assert.Equal(t, int64(1), counters.Reenqueued.Load())

	found, err := store.FindByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, found.Status, "re-enqueueing must not change status")
}

func TestReconciliationWorker_ExpiresOldPending(t *testing.T) {
	store := newFakeStore()
	pub := &fakeTaskPublisher{}
	counters := metrics.New()
	rw := NewReconciliationWorker(store, pub, counters, testSettlementConfig())

	expired := stalePendingPayment(store, 20*time.Minute)

	require.NoError(t, rw.process(context.Background()))

	assert.Empty(t, pub.published, "expired payments are failed, not re-enqueued")
	assert.Equal(t, int64(1), counters.SettledFailed.Load())

	found, err := store.FindByID(context.Background(), expired.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, found.Status)
	require.NotNil(t, found.Reason)
	assert.Equal(t, domain.ReasonExpired, *found.Reason)
}

func TestReconciliationWorker_FreshPendingLeftAlone(t *testing.T) {
	store := newFakeStore()
	pub := &fakeTaskPublisher{}
	rw := NewReconciliationWorker(store, pub, metrics.New(), testSettlementConfig())

	fresh := stalePendingPayment(store, time.Second)

	require.NoError(t, rw.process(context.Background()))

	assert.Empty(t, pub.published)

	found, err := store.FindByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, found.Status)
}

func TestReconciliationWorker_PublisherFailure(t *testing.T) {
	store := newFakeStore()
	pub := &fakeTaskPublisher{err: errors.New("broker down")}
	counters := metrics.New()
	rw := NewReconciliationWorker(store, pub, counters, testSettlementConfig())

	stale := stalePendingPayment(store, 2*time.Minute)

	// The sweep itself succeeds; the payment stays PENDING for the
	// next pass.
	require.NoError(t, rw.process(context.Background()))
	assert.Equal(t, int64(0), counters.Reenqueued.Load())

	found, err := store.FindByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, found.Status)
}
