package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"payflow/internal/domain"
	"payflow/internal/repo"

	"github.com/google/uuid"
)

// ErrValidation wraps all bad-input failures; nothing is persisted
// when it is returned.
var ErrValidation = errors.New("invalid payment request")

type Publisher interface {
	PublishSettlementTask(ctx context.Context, paymentID string) error
}

type CreatePaymentRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Currency  string  `json:"currency" binding:"required"`
	Reference string  `json:"reference" binding:"required"`
}

type CreatePaymentResponse struct {
	ID     uuid.UUID     `json:"id"`
	Status domain.Status `json:"status"`
}

type GetPaymentResponse struct {
	Amount    float64         `json:"amount"`
	Currency  domain.Currency `json:"currency"`
	Reference string          `json:"reference"`
	Status    domain.Status   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type PaymentService struct {
	repo       repo.PaymentRepo
	publisher  Publisher
	currencies map[domain.Currency]struct{}
}

func NewPaymentService(r repo.PaymentRepo, publisher Publisher, currencies []string) *PaymentService {
	supported := make(map[domain.Currency]struct{}, len(currencies))
	for _, c := range currencies {
		supported[domain.Currency(c)] = struct{}{}
	}

	return &PaymentService{
		repo:       r,
		publisher:  publisher,
		currencies: supported,
	}
}

// CreatePayment is idempotent on the reference: a replay returns the
// original payment with created=false and enqueues nothing.
func (s *PaymentService) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, bool, error) {
	if err := s.validate(req); err != nil {
		return nil, false, err
	}

	now := time.Now()
	payment := &domain.Payment{
		Reference:   req.Reference,
		AmountCents: domain.CentsFromAmount(req.Amount),
		Currency:    domain.Currency(req.Currency),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.CreateOrGet(ctx, payment)
	if err != nil {
		return nil, false, err
	}

	if created {
		// A failed publish is not fatal: the reconciliation sweep
		// re-enqueues anything left PENDING past the staleness window.
		if err := s.publisher.PublishSettlementTask(ctx, payment.ID.String()); err != nil {
			log.Printf("failed to enqueue settlement for payment %s: %v", payment.ID, err)
		}
	}

	return &CreatePaymentResponse{
		ID:     payment.ID,
		Status: payment.Status,
	}, created, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*GetPaymentResponse, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &GetPaymentResponse{
		Amount:    domain.AmountFromCents(payment.AmountCents),
		Currency:  payment.Currency,
		Reference: payment.Reference,
		Status:    payment.Status,
		CreatedAt: payment.CreatedAt,
	}, nil
}

func (s *PaymentService) validate(req *CreatePaymentRequest) error {
	if domain.CentsFromAmount(req.Amount) <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.Reference == "" {
		return fmt.Errorf("%w: reference is required", ErrValidation)
	}
	if _, ok := s.currencies[domain.Currency(req.Currency)]; !ok {
		return fmt.Errorf("%w: unsupported currency %q", ErrValidation, req.Currency)
	}
	return nil
}
