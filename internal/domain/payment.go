package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Reason records why a payment was committed FAILED.
type Reason string

const (
	ReasonDeclined       Reason = "DECLINED"
	ReasonRetryExhausted Reason = "RETRY_EXHAUSTED"
	ReasonExpired        Reason = "EXPIRED"
)

type Currency string

type Payment struct {
	ID          uuid.UUID
	Reference   string
	AmountCents int64
	Currency    Currency
	Status      Status
	Reason      *Reason
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
