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
	"github.com/SscSPs/books_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reconciliationService matches bank statements against recorded bank transactions.
type reconciliationService struct {
	BaseService
	bankRepo    portsrepo.BankRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(bankRepo portsrepo.BankRepositoryFacade, accountRepo portsrepo.AccountReader) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		bankRepo:    bankRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// bankAccount loads an account and checks it can carry bank transactions.
func (s *reconciliationService) bankAccount(ctx context.Context, rc domain.RequestContext, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, rc.TenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bank account %s: %w", accountID, err)
	}
	if account.AccountType != domain.Asset {
		return nil, fmt.Errorf("%w: account %s is not an asset account", apperrors.ErrValidation, account.Code)
	}
	return account, nil
}

func parseSignedAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a decimal amount", apperrors.ErrValidation, field, s)
	}
	if !accounting.FitsScale(d) {
		return decimal.Zero, fmt.Errorf("%w: %s %s has more than %d decimal places", apperrors.ErrValidation, field, s, accounting.AmountScale)
	}
	return d, nil
}

// RecordBankTransaction stores a bank feed line.
func (s *reconciliationService) RecordBankTransaction(ctx context.Context, rc domain.RequestContext, req dto.CreateBankTransactionRequest) (*domain.BankTransaction, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}
	if _, err := s.bankAccount(ctx, rc, req.BankAccountID); err != nil {
		return nil, err
	}
	amount, err := parseSignedAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must not be zero", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	txn := domain.BankTransaction{
		TransactionID:   uuid.NewString(),
		BusinessID:      rc.TenantID,
		BankAccountID:   req.BankAccountID,
		TransactionDate: domain.CalendarDay(req.TransactionDate),
		Description:     strings.TrimSpace(req.Description),
		Amount:          amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor(rc),
			LastUpdatedAt: now,
			LastUpdatedBy: actor(rc),
		},
	}
	if err := s.bankRepo.SaveBankTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save bank transaction", slog.String("bank_account_id", req.BankAccountID))
		return nil, fmt.Errorf("failed to save bank transaction: %w", err)
	}

	s.LogInfo(ctx, "Bank transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("bank_account_id", txn.BankAccountID),
		slog.String("amount", txn.Amount.String()))
	return &txn, nil
}

// ListUnreconciledTransactions lists the bank account's open transactions.
func (s *reconciliationService) ListUnreconciledTransactions(ctx context.Context, rc domain.RequestContext, bankAccountID string) ([]domain.BankTransaction, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}
	if _, err := s.bankAccount(ctx, rc, bankAccountID); err != nil {
		return nil, err
	}
	txns, err := s.bankRepo.ListUnreconciled(ctx, rc.TenantID, bankAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled transactions: %w", err)
	}
	return txns, nil
}

// compute builds the reconciliation described by req without persisting it.
func (s *reconciliationService) compute(ctx context.Context, rc domain.RequestContext, req dto.ReconciliationRequest) (*domain.Reconciliation, accounting.ReconciliationFigures, error) {
	var figures accounting.ReconciliationFigures

	if _, err := s.bankAccount(ctx, rc, req.BankAccountID); err != nil {
		return nil, figures, err
	}
	statement, err := parseSignedAmount("statement balance", req.StatementBalance)
	if err != nil {
		return nil, figures, err
	}

	opening := decimal.Zero
	if req.OpeningBalance != nil {
		if opening, err = parseSignedAmount("opening balance", *req.OpeningBalance); err != nil {
			return nil, figures, err
		}
	} else {
		last, err := s.bankRepo.FindLastCompletedReconciliation(ctx, rc.TenantID, req.BankAccountID)
		switch {
		case err == nil:
			opening = last.StatementBalance
		case errors.Is(err, apperrors.ErrNotFound):
		default:
			return nil, figures, fmt.Errorf("failed to load previous reconciliation: %w", err)
		}
	}

	seen := make(map[string]bool, len(req.TransactionIDs))
	for _, id := range req.TransactionIDs {
		if seen[id] {
			return nil, figures, fmt.Errorf("%w: transaction %s selected twice", apperrors.ErrValidation, id)
		}
		seen[id] = true
	}

	txns, err := s.bankRepo.FindBankTransactionsByIDs(ctx, rc.TenantID, req.TransactionIDs)
	if err != nil {
		return nil, figures, fmt.Errorf("failed to load bank transactions: %w", err)
	}
	amounts := make([]decimal.Decimal, 0, len(req.TransactionIDs))
	for _, id := range req.TransactionIDs {
		txn, ok := txns[id]
		switch {
		case !ok:
			return nil, figures, fmt.Errorf("%w: bank transaction %s does not exist", apperrors.ErrValidation, id)
		case txn.BankAccountID != req.BankAccountID:
			return nil, figures, fmt.Errorf("%w: bank transaction %s belongs to another account", apperrors.ErrValidation, id)
		case txn.IsReconciled():
			return nil, figures, fmt.Errorf("%w: bank transaction %s is already reconciled", apperrors.ErrValidation, id)
		}
		amounts = append(amounts, txn.Amount)
	}

	figures = accounting.Reconcile(opening, statement, amounts)
	rec := &domain.Reconciliation{
		BusinessID:        rc.TenantID,
		BankAccountID:     req.BankAccountID,
		StatementDate:     domain.CalendarDay(req.StatementDate),
		StatementBalance:  statement,
		OpeningBalance:    opening,
		ReconciledBalance: figures.ReconciledBalance,
		Difference:        figures.Difference,
		Status:            domain.ReconciliationInProgress,
		TransactionIDs:    append([]string{}, req.TransactionIDs...),
	}
	return rec, figures, nil
}

// PreviewReconciliation reports the figures a completion would produce.
func (s *reconciliationService) PreviewReconciliation(ctx context.Context, rc domain.RequestContext, req dto.ReconciliationRequest) (*dto.ReconciliationResponse, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}
	rec, figures, err := s.compute(ctx, rc, req)
	if err != nil {
		s.logRejection(ctx, err, "Reconciliation preview rejected", slog.String("bank_account_id", req.BankAccountID))
		return nil, err
	}
	resp := dto.ToReconciliationResponse(rec, figures.CanComplete)
	return &resp, nil
}

// CompleteReconciliation persists the reconciliation once the statement is matched.
func (s *reconciliationService) CompleteReconciliation(ctx context.Context, rc domain.RequestContext, req dto.ReconciliationRequest) (*domain.Reconciliation, error) {
	if err := s.AuthorizeUser(ctx, rc, domain.RoleOwner, domain.RoleAccountant, domain.RoleAccountantSupervisor); err != nil {
		return nil, err
	}
	rec, figures, err := s.compute(ctx, rc, req)
	if err != nil {
		s.logRejection(ctx, err, "Reconciliation rejected", slog.String("bank_account_id", req.BankAccountID))
		return nil, err
	}
	if !figures.CanComplete {
		err := fmt.Errorf("%w: reconciliation is out of balance by %s", apperrors.ErrValidation, figures.Difference.StringFixed(2))
		s.LogWarn(ctx, err, "Reconciliation out of balance", slog.String("bank_account_id", req.BankAccountID))
		return nil, err
	}

	now := time.Now().UTC()
	rec.ReconciliationID = uuid.NewString()
	rec.Status = domain.ReconciliationCompleted
	rec.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor(rc),
		LastUpdatedAt: now,
		LastUpdatedBy: actor(rc),
	}

	if err := s.bankRepo.SaveCompletedReconciliation(ctx, *rec); err != nil {
		s.logRejection(ctx, err, "Failed to save reconciliation", slog.String("bank_account_id", req.BankAccountID))
		return nil, fmt.Errorf("failed to save reconciliation: %w", err)
	}

	s.LogInfo(ctx, "Reconciliation completed",
		slog.String("reconciliation_id", rec.ReconciliationID),
		slog.String("bank_account_id", rec.BankAccountID),
		slog.Int("transaction_count", len(rec.TransactionIDs)))
	return rec, nil
}
