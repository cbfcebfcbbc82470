package withdrawal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct{ mock.Mock }

func (m *MockService) Submit(ctx context.Context, tutorID int64, req SubmitRequest, idempotencyKey string) (*Withdrawal, error) {
	args := m.Called(ctx, tutorID, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Withdrawal), args.Error(1)
}

func (m *MockService) Approve(ctx context.Context, id int64) (*Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Withdrawal), args.Error(1)
}

func (m *MockService) Reject(ctx context.Context, id int64, reason string) (*Withdrawal, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Withdrawal), args.Error(1)
}

func (m *MockService) ListByTutor(ctx context.Context, tutorID int64) ([]Withdrawal, error) {
	args := m.Called(ctx, tutorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Withdrawal), args.Error(1)
}

func (m *MockService) ListPending(ctx context.Context) ([]WithdrawalWithTutor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]WithdrawalWithTutor), args.Error(1)
}

func submitRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/withdrawals", func(c *gin.Context) {
		c.Set("user_id", int64(5))
		NewHandler(svc).Submit(c)
	})
	return router
}

func postWithdrawal(router *gin.Engine, body SubmitRequest, idempotencyKey string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/withdrawals", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitHandler_StatusMapping(t *testing.T) {
	req := SubmitRequest{Tokens: 50, PayoutMethod: MethodUPI, UPIID: "tutor@upi"}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Not a tutor", ErrNotTutor, http.StatusForbidden},
		{"Bad payout details", ErrInvalidPayoutDetails, http.StatusBadRequest},
		{"Insufficient tokens", &InsufficientTokensError{Need: 50, Have: 20}, http.StatusPaymentRequired},
		{"Idempotency conflict", ErrIdempotencyConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Submit", mock.Anything, int64(5), req, "").Return(nil, tt.err)

			w := postWithdrawal(submitRouter(svc), req, "")
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestSubmitHandler_Created(t *testing.T) {
	req := SubmitRequest{Tokens: 50, PayoutMethod: MethodUPI, UPIID: "tutor@upi"}

	svc := new(MockService)
	svc.On("Submit", mock.Anything, int64(5), req, "retry-1").
		Return(&Withdrawal{ID: 9, TutorID: 5, Tokens: 50, Status: StatusPending}, nil)

	w := postWithdrawal(submitRouter(svc), req, "retry-1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestSubmitHandler_InvalidBody(t *testing.T) {
	svc := new(MockService)
	router := submitRouter(svc)

	// negative tokens fail binding validation before the service is called
	w := postWithdrawal(router, SubmitRequest{Tokens: -5, PayoutMethod: MethodUPI}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
	assert.Contains(t, w.Body.String(), "Tokens must be greater than 0")
	svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
