package repositories

import (
	"context"

	"github.com/SscSPs/books_backend/internal/core/domain"
)

// BankTransactionRepository stores bank feed lines.
type BankTransactionRepository interface {
	// SaveBankTransaction persists a bank transaction.
	SaveBankTransaction(ctx context.Context, txn domain.BankTransaction) error

	// ListUnreconciled returns the bank account's transactions not yet part of a completed reconciliation, oldest first.
	ListUnreconciled(ctx context.Context, businessID string, bankAccountID string) ([]domain.BankTransaction, error)

	// FindBankTransactionsByIDs retrieves bank transactions of a business keyed by ID.
	FindBankTransactionsByIDs(ctx context.Context, businessID string, ids []string) (map[string]domain.BankTransaction, error)
}

// ReconciliationRepository stores completed reconciliations.
type ReconciliationRepository interface {
	// FindLastCompletedReconciliation returns the latest completed reconciliation of a bank account,
	// or apperrors.ErrNotFound when there is none.
	FindLastCompletedReconciliation(ctx context.Context, businessID string, bankAccountID string) (*domain.Reconciliation, error)

	// SaveCompletedReconciliation persists rec and marks its transactions reconciled in one transaction.
	// It fails with apperrors.ErrConflict if any of them was reconciled concurrently.
	SaveCompletedReconciliation(ctx context.Context, rec domain.Reconciliation) error
}

// BankRepositoryFacade combines bank transaction and reconciliation storage.
type BankRepositoryFacade interface {
	BankTransactionRepository
	ReconciliationRepository
}
