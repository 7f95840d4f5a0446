package repositories

import (
	"context"

	"github.com/SscSPs/books_backend/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account of a business.
	FindAccountByID(ctx context.Context, businessID string, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts of a business, keyed by ID. Unknown IDs are simply absent.
	FindAccountsByIDs(ctx context.Context, businessID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves the chart of accounts of a business ordered by code.
	ListAccounts(ctx context.Context, businessID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A duplicate code within the business yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
