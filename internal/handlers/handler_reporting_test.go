package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/SscSPs/books_backend/internal/handlers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) GetTrialBalance(ctx context.Context, rc domain.RequestContext, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, rc, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}

func (m *MockReportingService) GetLedger(ctx context.Context, rc domain.RequestContext, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, rc, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) RecordBankTransaction(ctx context.Context, rc domain.RequestContext, req dto.CreateBankTransactionRequest) (*domain.BankTransaction, error) {
	args := m.Called(ctx, rc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

func (m *MockReconciliationService) ListUnreconciledTransactions(ctx context.Context, rc domain.RequestContext, bankAccountID string) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, rc, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

func (m *MockReconciliationService) PreviewReconciliation(ctx context.Context, rc domain.RequestContext, req dto.ReconciliationRequest) (*dto.ReconciliationResponse, error) {
	args := m.Called(ctx, rc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconciliationResponse), args.Error(1)
}

func (m *MockReconciliationService) CompleteReconciliation(ctx context.Context, rc domain.RequestContext, req dto.ReconciliationRequest) (*domain.Reconciliation, error) {
	args := m.Called(ctx, rc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)

func newReportingRouter(t *testing.T) (*gin.Engine, *MockReportingService, *MockReconciliationService, string) {
	router, v1 := newTestRouter(t)
	reporting := new(MockReportingService)
	recon := new(MockReconciliationService)
	handlers.RegisterReportingRoutes(v1, reporting)
	handlers.RegisterReconciliationRoutes(v1, recon)
	token := generateTestToken(t, uuid.NewString(), uuid.NewString(), domain.RoleOwner)
	return router, reporting, recon, token
}

func TestGetTrialBalance_ParsesAsOf(t *testing.T) {
	router, reporting, _, token := newReportingRouter(t)
	asOf := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	reporting.On("GetTrialBalance", mock.Anything, mock.Anything, mock.MatchedBy(func(d time.Time) bool {
		return d.Equal(asOf)
	})).Return(&domain.TrialBalance{
		AsOf:         asOf,
		TotalDebits:  decimal.NewFromInt(150),
		TotalCredits: decimal.NewFromInt(150),
		Difference:   decimal.Zero,
		IsBalanced:   true,
	}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newRequest(t, http.MethodGet, "/api/v1/reports/trial-balance?asOf=2026-03-31", "", token))

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.TrialBalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2026-03-31", body.AsOf)
	assert.True(t, body.IsBalanced)
	reporting.AssertExpectations(t)
}

func TestGetTrialBalance_DefaultsToZeroDate(t *testing.T) {
	router, reporting, _, token := newReportingRouter(t)
	reporting.On("GetTrialBalance", mock.Anything, mock.Anything, time.Time{}).
		Return(&domain.TrialBalance{AsOf: time.Now().UTC()}, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newRequest(t, http.MethodGet, "/api/v1/reports/trial-balance", "", token))

	assert.Equal(t, http.StatusOK, w.Code)
	reporting.AssertExpectations(t)
}

func TestGetTrialBalance_InvalidDate(t *testing.T) {
	router, reporting, _, token := newReportingRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newRequest(t, http.MethodGet, "/api/v1/reports/trial-balance?asOf=31-03-2026", "", token))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	reporting.AssertNotCalled(t, "GetTrialBalance")
}

func TestGetLedger_UnknownAccount(t *testing.T) {
	router, reporting, _, token := newReportingRouter(t)
	reporting.On("GetLedger", mock.Anything, mock.Anything, mock.MatchedBy(func(f domain.LedgerFilter) bool {
		return f.AccountID != nil && *f.AccountID == "missing"
	})).Return(nil, apperrors.NewNotFoundError("account missing not found")).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newRequest(t, http.MethodGet, "/api/v1/reports/ledger?accountID=missing", "", token))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteReconciliation_OutsideTolerance(t *testing.T) {
	router, _, recon, token := newReportingRouter(t)
	recon.On("CompleteReconciliation", mock.Anything, mock.Anything, mock.MatchedBy(func(req dto.ReconciliationRequest) bool {
		return req.StatementBalance == "600.00" && len(req.TransactionIDs) == 3
	})).Return(nil, fmt.Errorf("%w: difference -20.00 exceeds tolerance", apperrors.ErrValidation)).Once()

	body := `{"bankAccountID":"bank","statementDate":"2026-03-31T00:00:00Z","statementBalance":"600.00","transactionIDs":["t1","t2","t3"]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newRequest(t, http.MethodPost, "/api/v1/reconciliations", body, token))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
	recon.AssertExpectations(t)
}

func TestPreviewReconciliation_BadAmount(t *testing.T) {
	router, _, recon, token := newReportingRouter(t)

	body := `{"bankAccountID":"bank","statementDate":"2026-03-31T00:00:00Z","statementBalance":"six hundred","transactionIDs":[]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newRequest(t, http.MethodPost, "/api/v1/reconciliations/preview", body, token))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	recon.AssertNotCalled(t, "PreviewReconciliation")
}

func TestRecordBankTransaction(t *testing.T) {
	router, _, recon, token := newReportingRouter(t)
	txn := &domain.BankTransaction{
		TransactionID:   uuid.NewString(),
		BankAccountID:   "bank",
		TransactionDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:          decimal.NewFromInt(-30),
	}
	recon.On("RecordBankTransaction", mock.Anything, mock.Anything, mock.Anything).Return(txn, nil).Once()

	body := `{"bankAccountID":"bank","transactionDate":"2026-03-05T00:00:00Z","description":"Fees","amount":"-30"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newRequest(t, http.MethodPost, "/api/v1/bank-transactions", body, token))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.BankTransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, txn.TransactionID, resp.TransactionID)
	assert.Nil(t, resp.ReconciliationID)
}
