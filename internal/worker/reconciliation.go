package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"payflow/internal/config"
	"payflow/internal/domain"
	"payflow/internal/metrics"
	"payflow/internal/repo"
)

type TaskPublisher interface {
	PublishSettlementTask(ctx context.Context, paymentID string) error
}

// ReconciliationWorker sweeps payments stuck in PENDING. Inside the
// expiry window they are re-enqueued (the compare-and-set makes the
// duplicate delivery harmless); past it they are failed with reason
// EXPIRED, so no payment stays PENDING forever.
type ReconciliationWorker struct {
	repo      repo.PaymentRepo
	publisher TaskPublisher
	counters  *metrics.Counters
	interval  time.Duration
	stale     time.Duration
	expire    time.Duration
	limit     int
}

func NewReconciliationWorker(r repo.PaymentRepo, publisher TaskPublisher, counters *metrics.Counters, cfg *config.SettlementConfig) *ReconciliationWorker {
	return &ReconciliationWorker{
		repo:      r,
		publisher: publisher,
		counters:  counters,
		interval:  cfg.SweepInterval,
		stale:     cfg.StalePending,
		expire:    cfg.ExpirePending,
		limit:     cfg.SweepLimit,
	}
}

func (rw *ReconciliationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	log.Println("reconciliation worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := rw.process(ctx); err != nil {
				log.Printf("reconciliation sweep failed: %v", err)
			}
		}
	}
}

func (rw *ReconciliationWorker) process(ctx context.Context) error {
	stuck, err := rw.repo.FindStalePending(ctx, rw.stale, rw.limit)
	if err != nil {
		return err
	}
	if len(stuck) == 0 {
		return nil
	}

	log.Printf("found %d stale pending payments", len(stuck))

	for _, payment := range stuck {
		if time.Since(payment.UpdatedAt) > rw.expire {
			err := rw.repo.CompareAndSetStatus(ctx, payment.ID, domain.StatusPending, domain.StatusFailed, domain.ReasonExpired)
			if err != nil {
				if !errors.Is(err, repo.ErrPaymentAlreadyProcessed) {
					log.Printf("failed to expire payment %s: %v", payment.ID, err)
				}
				continue
			}
			rw.counters.SettledFailed.Add(1)
			log.Printf("payment %s expired after %s pending", payment.ID, rw.expire)
			continue
		}

		if err := rw.publisher.PublishSettlementTask(ctx, payment.ID.String()); err != nil {
			log.Printf("failed to re-enqueue payment %s: %v", payment.ID, err)
			continue
		}
		rw.counters.Reenqueued.Add(1)
		log.Printf("re-enqueued stale payment %s", payment.ID)
	}

	return nil
}
