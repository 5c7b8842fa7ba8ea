package metrics

import "sync/atomic"

// Counters are process-wide totals, zeroed only at process start.
// All access goes through atomic operations.
type Counters struct {
	Created           atomic.Int64
	Replayed          atomic.Int64
	Rejected          atomic.Int64
	SettledSuccess    atomic.Int64
	SettledFailed     atomic.Int64
	EvaluationRetries atomic.Int64
	Reenqueued        atomic.Int64
}

func New() *Counters {
	return &Counters{}
}

func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"payments_created":    c.Created.Load(),
		"payments_replayed":   c.Replayed.Load(),
		"payments_rejected":   c.Rejected.Load(),
		"settled_success":     c.SettledSuccess.Load(),
		"settled_failed":      c.SettledFailed.Load(),
		"evaluation_retries":  c.EvaluationRetries.Load(),
		"payments_reenqueued": c.Reenqueued.Load(),
	}
}
