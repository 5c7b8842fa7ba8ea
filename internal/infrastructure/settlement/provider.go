package settlement

import (
	"context"
	"errors"

	"payflow/internal/domain"
)

// ErrProviderUnavailable marks transient evaluation failures; callers
// may retry. Any other error is a terminal decline.
var ErrProviderUnavailable = errors.New("settlement provider unavailable")

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionDecline Decision = "DECLINE"
)

// Provider is the external settlement authority (fraud, ledger,
// currency checks) a worker consults before committing a transition.
type Provider interface {
	Evaluate(ctx context.Context, p *domain.Payment) (Decision, error)
}
