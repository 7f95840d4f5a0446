package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: repo,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, rc domain.RequestContext, req dto.CreateAccountRequest) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, rc, domain.RoleOwner, domain.RoleAccountant, domain.RoleAccountantSupervisor); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.AccountType)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		BusinessID:  rc.TenantID,
		Code:        code,
		Name:        name,
		AccountType: req.AccountType,
		IsActive:    true,
		Balance:     decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor(rc),
			LastUpdatedAt: now,
			LastUpdatedBy: actor(rc),
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, err, "Account code already in use", slog.String("code", code))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, rc domain.RequestContext, accountID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, rc.TenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, rc domain.RequestContext) ([]domain.Account, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, rc.TenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
