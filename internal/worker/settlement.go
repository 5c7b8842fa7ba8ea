package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"payflow/internal/config"
	"payflow/internal/domain"
	"payflow/internal/infrastructure/settlement"
	"payflow/internal/metrics"
	"payflow/internal/rabbitmq"
	"payflow/internal/repo"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// SettlementWorker turns queued settlement tasks into exactly one
// terminal transition per payment. Duplicate deliveries are no-ops:
// a terminal status or a lost compare-and-set just acks the message.
type SettlementWorker struct {
	repo           repo.PaymentRepo
	provider       settlement.Provider
	counters       *metrics.Counters
	maxAttempts    uint64
	initialBackoff time.Duration
}

func NewSettlementWorker(r repo.PaymentRepo, provider settlement.Provider, counters *metrics.Counters, cfg *config.SettlementConfig) *SettlementWorker {
	return &SettlementWorker{
		repo:           r,
		provider:       provider,
		counters:       counters,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
	}
}

func (w *SettlementWorker) Handle(ctx context.Context, task rabbitmq.SettlementTask) (bool, error) {
	id, err := uuid.Parse(task.PaymentID)
	if err != nil {
		log.Printf("dropping settlement task with invalid id %q: %v", task.PaymentID, err)
		return true, nil
	}

	payment, err := w.repo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrPaymentNotFound) {
		log.Printf("payment %s not found, skipping", id)
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if payment.Status.Terminal() {
		log.Printf("payment %s already %s, skipping", id, payment.Status)
		return true, nil
	}

	decision, err := w.evaluate(ctx, payment)
	switch {
	case err == nil:
		if decision == settlement.DecisionApprove {
			return w.commit(ctx, id, domain.StatusSuccess, "")
		}
		return w.commit(ctx, id, domain.StatusFailed, domain.ReasonDeclined)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Shutting down mid-evaluation: leave the task for redelivery.
		return false, err
	case errors.Is(err, settlement.ErrProviderUnavailable):
		return w.commit(ctx, id, domain.StatusFailed, domain.ReasonRetryExhausted)
	default:
		return w.commit(ctx, id, domain.StatusFailed, domain.ReasonDeclined)
	}
}

// evaluate retries transient provider failures with exponential
// backoff, up to maxAttempts retries. Any other error stops the retry
// loop immediately.
func (w *SettlementWorker) evaluate(ctx context.Context, p *domain.Payment) (settlement.Decision, error) {
	var decision settlement.Decision

	op := func() error {
		d, err := w.provider.Evaluate(ctx, p)
		if err != nil {
			if errors.Is(err, settlement.ErrProviderUnavailable) {
				w.counters.EvaluationRetries.Add(1)
				return err
			}
			return backoff.Permanent(err)
		}
		decision = d
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.initialBackoff

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, w.maxAttempts), ctx))
	return decision, err
}

func (w *SettlementWorker) commit(ctx context.Context, id uuid.UUID, next domain.Status, reason domain.Reason) (bool, error) {
	err := w.repo.CompareAndSetStatus(ctx, id, domain.StatusPending, next, reason)
	switch {
	case err == nil:
		if next == domain.StatusSuccess {
			w.counters.SettledSuccess.Add(1)
		} else {
			w.counters.SettledFailed.Add(1)
		}
		log.Printf("payment %s settled as %s", id, next)
		return true, nil
	case errors.Is(err, repo.ErrPaymentAlreadyProcessed) || errors.Is(err, repo.ErrPaymentNotFound):
		// Another worker committed first.
		log.Printf("payment %s already settled elsewhere, skipping", id)
		return true, nil
	default:
		return false, err
	}
}
