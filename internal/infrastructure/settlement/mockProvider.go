package settlement

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"payflow/internal/domain"
)

// mockProvider simulates the settlement authority. Outcomes are
// memoized per payment id, so a redelivered task gets the same answer
// the first evaluation got. Transient unavailability is never
// memoized; a retry may succeed.
type mockProvider struct {
	mu        sync.RWMutex
	decisions map[string]Decision

	approvePercent    int
	declinePercent    int
	evaluationLatency time.Duration
}

func NewMockProvider() Provider {
	return &mockProvider{
		decisions:         make(map[string]Decision),
		approvePercent:    70,
		declinePercent:    20,
		evaluationLatency: 100 * time.Millisecond,
	}
}

func (m *mockProvider) Evaluate(ctx context.Context, p *domain.Payment) (Decision, error) {
	key := p.ID.String()

	m.mu.RLock()
	if decision, seen := m.decisions[key]; seen {
		m.mu.RUnlock()
		return decision, nil
	}
	m.mu.RUnlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(m.evaluationLatency):
	}

	chance := rand.IntN(100)
	switch {
	case chance < m.approvePercent:
		return m.remember(key, DecisionApprove), nil
	case chance < m.approvePercent+m.declinePercent:
		return m.remember(key, DecisionDecline), nil
	default:
		return "", ErrProviderUnavailable
	}
}

func (m *mockProvider) remember(key string, d Decision) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, seen := m.decisions[key]; seen {
		return existing
	}
	m.decisions[key] = d
	return d
}
