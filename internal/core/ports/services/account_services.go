package services

import (
	"context"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account of the caller's business.
	GetAccountByID(ctx context.Context, rc domain.RequestContext, accountID string) (*domain.Account, error)

	// ListAccounts retrieves the chart of accounts of the caller's business.
	ListAccounts(ctx context.Context, rc domain.RequestContext) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, rc domain.RequestContext, req dto.CreateAccountRequest) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
