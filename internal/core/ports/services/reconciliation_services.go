package services

import (
	"context"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/dto"
)

// BankTransactionSvc records and lists bank feed lines
type BankTransactionSvc interface {
	// RecordBankTransaction stores a bank transaction against a bank (asset) account.
	RecordBankTransaction(ctx context.Context, rc domain.RequestContext, req dto.CreateBankTransactionRequest) (*domain.BankTransaction, error)

	// ListUnreconciledTransactions lists the bank account's transactions not yet reconciled.
	ListUnreconciledTransactions(ctx context.Context, rc domain.RequestContext, bankAccountID string) ([]domain.BankTransaction, error)
}

// ReconciliationSvc computes and completes bank reconciliations
type ReconciliationSvc interface {
	// PreviewReconciliation computes the reconciled balance and difference without persisting.
	PreviewReconciliation(ctx context.Context, rc domain.RequestContext, req dto.ReconciliationRequest) (*dto.ReconciliationResponse, error)

	// CompleteReconciliation persists the reconciliation when the difference is within tolerance.
	CompleteReconciliation(ctx context.Context, rc domain.RequestContext, req dto.ReconciliationRequest) (*domain.Reconciliation, error)
}

// ReconciliationSvcFacade combines bank transaction and reconciliation services
type ReconciliationSvcFacade interface {
	BankTransactionSvc
	ReconciliationSvc
}
