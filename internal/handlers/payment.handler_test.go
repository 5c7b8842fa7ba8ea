package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"payflow/internal/domain"
	"payflow/internal/metrics"
	"payflow/internal/repo"
	"payflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	createCalls int
	createResp  *service.CreatePaymentResponse
	created     bool
	createErr   error

	getResp *service.GetPaymentResponse
	getErr  error
}

func (f *fakeService) CreatePayment(_ context.Context, _ *service.CreatePaymentRequest) (*service.CreatePaymentResponse, bool, error) {
	f.createCalls++
	return f.createResp, f.created, f.createErr
}

func (f *fakeService) GetPayment(_ context.Context, _ uuid.UUID) (*service.GetPaymentResponse, error) {
	return f.getResp, f.getErr
}

func newTestRouter(svc *fakeService) *gin.Engine {
	return NewRouter(NewPaymentHandler(svc, metrics.New()))
}

func postPayment(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreatePayment_Created(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{
		createResp: &service.CreatePaymentResponse{ID: id, Status: domain.StatusPending},
		created:    true,
	}
	router := newTestRouter(svc)

	w := postPayment(router, `{"amount":100,"currency":"USD","reference":"r1"}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id.String(), body["id"])
	assert.Equal(t, "PENDING", body["status"])
}

func TestCreatePayment_Replay(t *testing.T) {
	id := uuid.New()
	svc := &fakeService{
		createResp: &service.CreatePaymentResponse{ID: id, Status: domain.StatusPending},
		created:    false,
	}
	router := newTestRouter(svc)

	w := postPayment(router, `{"amount":100,"currency":"USD","reference":"r1"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id.String(), body["id"])
}

func TestCreatePayment_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"amount":`},
		{"missing amount", `{"currency":"USD","reference":"r1"}`},
		{"negative amount", `{"amount":-5,"currency":"USD","reference":"r1"}`},
		{"missing reference", `{"amount":10,"currency":"USD"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			router := newTestRouter(svc)

			w := postPayment(router, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, svc.createCalls, "binding failures must not reach the service")

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotContains(t, body, "id", "no id may be returned on rejection")
		})
	}
}

func TestCreatePayment_ServiceValidation(t *testing.T) {
	svc := &fakeService{createErr: service.ErrValidation}
	router := newTestRouter(svc)

	w := postPayment(router, `{"amount":10,"currency":"XYZ","reference":"r1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPaymentByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := &fakeService{
			getResp: &service.GetPaymentResponse{
				Amount:    19.99,
				Currency:  "USD",
				Reference: "r1",
				Status:    domain.StatusSuccess,
			},
		}
		router := newTestRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/payments/"+uuid.New().String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "SUCCESS", body["status"])
		assert.Equal(t, 19.99, body["amount"])
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := &fakeService{getErr: repo.ErrPaymentNotFound}
		router := newTestRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/payments/"+uuid.New().String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		svc := &fakeService{}
		router := newTestRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/payments/not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
