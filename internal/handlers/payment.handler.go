package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"payflow/internal/metrics"
	"payflow/internal/repo"
	"payflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, req *service.CreatePaymentRequest) (*service.CreatePaymentResponse, bool, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*service.GetPaymentResponse, error)
}

type PaymentHandler struct {
	svc      PaymentService
	counters *metrics.Counters
}

func NewPaymentHandler(svc PaymentService, counters *metrics.Counters) *PaymentHandler {
	return &PaymentHandler{
		svc:      svc,
		counters: counters,
	}
}

// CreatePayment answers 201 for a fresh creation and 200 when the
// reference replays an existing payment.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.counters.Rejected.Add(1)
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	resp, created, err := h.svc.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			h.counters.Rejected.Add(1)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if created {
		h.counters.Created.Add(1)
		c.JSON(http.StatusCreated, resp)
		return
	}

	h.counters.Replayed.Add(1)
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetPaymentByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	payment, err := h.svc.GetPayment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, payment)
}

func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %q failed validation on %q", fe.Field(), fe.Tag())
	}
	return err.Error()
}
