package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/SscSPs/books_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// journalService owns the journal entry lifecycle: every status change goes through
// domain.Transition and every persisted line set through the shared balance validator.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines converts request lines into domain lines, parsing every amount.
func buildLines(entryID string, reqLines []dto.JournalLineRequest) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, len(reqLines))
	for i, l := range reqLines {
		debit, err := accounting.ParseAmount(l.Debit)
		if err != nil {
			return nil, fmt.Errorf("line %d debit: %w", i+1, err)
		}
		credit, err := accounting.ParseAmount(l.Credit)
		if err != nil {
			return nil, fmt.Errorf("line %d credit: %w", i+1, err)
		}
		if strings.TrimSpace(l.AccountID) == "" {
			return nil, fmt.Errorf("%w: line %d has no account", apperrors.ErrValidation, i+1)
		}
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			LineNo:      i + 1,
			AccountID:   strings.TrimSpace(l.AccountID),
			Description: strings.TrimSpace(l.Description),
			Debit:       debit,
			Credit:      credit,
		}
	}
	return lines, nil
}

// resolveAccounts loads the accounts referenced by lines. Every account must belong to
// the business; when requireActive is set, deactivated accounts are refused as well.
func (s *journalService) resolveAccounts(ctx context.Context, businessID string, lines []domain.JournalLine, requireActive bool) (map[string]domain.Account, error) {
	ids := domain.JournalEntry{Lines: lines}.AccountIDs()
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, businessID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrValidation, id)
		}
		if requireActive && !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s (%s) is inactive", apperrors.ErrValidation, acc.Code, id)
		}
	}
	return accounts, nil
}

// loadEntry fetches an entry scoped to the caller's business.
func (s *journalService) loadEntry(ctx context.Context, rc domain.RequestContext, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, rc.TenantID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal entry %s: %w", entryID, err)
	}
	return entry, nil
}

// CreateJournalEntry creates a new journal entry with its lines after validation.
// Implements portssvc.JournalSvcFacade
func (s *journalService) CreateJournalEntry(ctx context.Context, rc domain.RequestContext, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}

	event := domain.EventCreate
	if req.AutoPost {
		event = domain.EventCreatePosted
	}
	status, err := domain.Transition(domain.StatusNone, event, rc.Role)
	if err != nil {
		s.logRejection(ctx, err, "Journal entry creation refused", slog.String("event", string(event)))
		return nil, err
	}

	if _, err := accounting.RequireBalanced(dto.ToAmountPairs(req.Lines)); err != nil {
		s.logRejection(ctx, err, "Journal entry lines rejected")
		return nil, err
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = domain.SourceManual
	}
	if !sourceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown source type %q", apperrors.ErrValidation, sourceType)
	}
	if req.EntryDate.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	lines, err := buildLines(entryID, req.Lines)
	if err != nil {
		return nil, err
	}

	accounts, err := s.resolveAccounts(ctx, rc.TenantID, lines, true)
	if err != nil {
		s.logRejection(ctx, err, "Journal entry references invalid accounts")
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		BusinessID:  rc.TenantID,
		EntryDate:   domain.CalendarDay(req.EntryDate),
		Description: strings.TrimSpace(req.Description),
		SourceType:  sourceType,
		SourceID:    req.SourceID,
		Status:      status,
		Lines:       lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor(rc),
			LastUpdatedAt: now,
			LastUpdatedBy: actor(rc),
		},
	}

	var changes map[string]decimal.Decimal
	if status == domain.StatusPosted {
		entry.PostedAt = &now
		if changes, err = accounting.BalanceChanges(lines, accounts); err != nil {
			return nil, err
		}
	}

	if err := s.journalRepo.CreateEntry(ctx, &entry, changes); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.logRejection(ctx, err, "Journal entry source already recorded", slog.String("source_type", string(entry.SourceType)))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("status", string(entry.Status)),
		slog.String("source_type", string(entry.SourceType)))
	return &entry, nil
}

// UpdateJournalEntry replaces the editable fields of a draft or in-review entry.
func (s *journalService) UpdateJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string, req dto.UpdateJournalEntryRequest) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}

	entry, err := s.loadEntry(ctx, rc, entryID)
	if err != nil {
		return nil, err
	}

	status, err := domain.Transition(entry.Status, domain.EventEdit, rc.Role)
	if err != nil {
		s.logRejection(ctx, err, "Journal entry edit refused", slog.String("entry_id", entryID))
		return nil, err
	}
	if req.Version != 0 && req.Version != entry.Version {
		return nil, apperrors.NewConflictError(fmt.Sprintf("journal entry %s is at version %d, not %d", entryID, entry.Version, req.Version))
	}

	updated := *entry
	updated.Status = status
	if req.EntryDate != nil {
		if req.EntryDate.IsZero() {
			return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
		}
		updated.EntryDate = domain.CalendarDay(*req.EntryDate)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}

	replaceLines := req.Lines != nil
	if replaceLines {
		if _, err := accounting.RequireBalanced(dto.ToAmountPairs(req.Lines)); err != nil {
			s.logRejection(ctx, err, "Journal entry lines rejected", slog.String("entry_id", entryID))
			return nil, err
		}
		if updated.Lines, err = buildLines(entry.EntryID, req.Lines); err != nil {
			return nil, err
		}
		if _, err := s.resolveAccounts(ctx, rc.TenantID, updated.Lines, true); err != nil {
			s.logRejection(ctx, err, "Journal entry references invalid accounts", slog.String("entry_id", entryID))
			return nil, err
		}
	}

	return s.persist(ctx, rc, entry, updated, replaceLines, nil, "Journal entry updated")
}

// AskForReviewJournalEntry hands a draft to a supervisor.
func (s *journalService) AskForReviewJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}

	entry, err := s.loadEntry(ctx, rc, entryID)
	if err != nil {
		return nil, err
	}

	status, err := domain.Transition(entry.Status, domain.EventAskForReview, rc.Role)
	if err != nil {
		s.logRejection(ctx, err, "Ask for review refused", slog.String("entry_id", entryID))
		return nil, err
	}

	updated := *entry
	updated.Status = status
	return s.persist(ctx, rc, entry, updated, false, nil, "Journal entry submitted for review")
}

// PostJournalEntry re-validates the stored lines and posts the entry, updating account balances.
func (s *journalService) PostJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}

	entry, err := s.loadEntry(ctx, rc, entryID)
	if err != nil {
		return nil, err
	}

	status, err := domain.Transition(entry.Status, domain.EventPost, rc.Role)
	if err != nil {
		s.logRejection(ctx, err, "Journal entry post refused", slog.String("entry_id", entryID))
		return nil, err
	}

	if _, err := accounting.RequireBalanced(accounting.PairsFromLines(entry.Lines)); err != nil {
		s.logRejection(ctx, err, "Journal entry cannot be posted", slog.String("entry_id", entryID))
		return nil, err
	}

	accounts, err := s.resolveAccounts(ctx, rc.TenantID, entry.Lines, true)
	if err != nil {
		s.logRejection(ctx, err, "Journal entry references invalid accounts", slog.String("entry_id", entryID))
		return nil, err
	}
	changes, err := accounting.BalanceChanges(entry.Lines, accounts)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := *entry
	updated.Status = status
	updated.PostedAt = &now
	return s.persist(ctx, rc, entry, updated, false, changes, "Journal entry posted")
}

// VoidJournalEntry voids a posted entry. Its original postings stop counting and
// the persisted account balances are reversed in the same transaction.
func (s *journalService) VoidJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string, reason string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}

	entry, err := s.loadEntry(ctx, rc, entryID)
	if err != nil {
		return nil, err
	}

	status, err := domain.Transition(entry.Status, domain.EventVoid, rc.Role)
	if err != nil {
		s.logRejection(ctx, err, "Journal entry void refused", slog.String("entry_id", entryID))
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a void reason is required", apperrors.ErrValidation)
	}

	accounts, err := s.resolveAccounts(ctx, rc.TenantID, entry.Lines, false)
	if err != nil {
		return nil, err
	}
	changes, err := accounting.BalanceChanges(entry.Lines, accounts)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := *entry
	updated.Status = status
	updated.VoidedAt = &now
	updated.VoidReason = &reason
	return s.persist(ctx, rc, entry, updated, false, accounting.Negate(changes), "Journal entry voided")
}

// DeleteJournalEntry removes a draft entry.
func (s *journalService) DeleteJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string) error {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return err
	}

	entry, err := s.loadEntry(ctx, rc, entryID)
	if err != nil {
		return err
	}

	if _, err := domain.Transition(entry.Status, domain.EventDelete, rc.Role); err != nil {
		s.logRejection(ctx, err, "Journal entry delete refused", slog.String("entry_id", entryID))
		return err
	}

	if err := s.journalRepo.DeleteEntry(ctx, rc.TenantID, entryID, entry.Version); err != nil {
		s.logRejection(ctx, err, "Failed to delete journal entry", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry deleted", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	return nil
}

// persist writes updated over loaded with a compare-and-swap on loaded.Version.
func (s *journalService) persist(ctx context.Context, rc domain.RequestContext, loaded *domain.JournalEntry, updated domain.JournalEntry, replaceLines bool, changes map[string]decimal.Decimal, msg string) (*domain.JournalEntry, error) {
	now := time.Now().UTC()
	updated.Version = loaded.Version + 1
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor(rc)

	err := s.journalRepo.UpdateEntry(ctx, portsrepo.EntryMutation{
		Entry:           updated,
		ExpectedVersion: loaded.Version,
		ReplaceLines:    replaceLines,
		BalanceChanges:  changes,
	})
	if err != nil {
		s.logRejection(ctx, err, "Failed to save journal entry", slog.String("entry_id", loaded.EntryID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	s.LogInfo(ctx, msg,
		slog.String("entry_id", updated.EntryID),
		slog.String("entry_number", updated.EntryNumber),
		slog.String("from_status", string(loaded.Status)),
		slog.String("to_status", string(updated.Status)))
	return &updated, nil
}

// GetJournalEntry retrieves a journal entry of the caller's business.
func (s *journalService) GetJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}
	return s.loadEntry(ctx, rc, entryID)
}

// ListJournalEntries retrieves a page of journal entries, newest first.
func (s *journalService) ListJournalEntries(ctx context.Context, rc domain.RequestContext, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}

	filter := portsrepo.JournalListFilter{
		StartDate: calendarDayPtr(params.StartDate),
		EndDate:   calendarDayPtr(params.EndDate),
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	if params.Status != "" {
		status := domain.EntryStatus(params.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, params.Status)
		}
		filter.Status = &status
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, rc.TenantID, filter)
	if err != nil {
		s.logRejection(ctx, err, "Failed to list journal entries")
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	return &dto.ListJournalEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

// CheckBalance is the live balanced/unbalanced indicator shown while lines are edited.
func (s *journalService) CheckBalance(ctx context.Context, lines []dto.JournalLineRequest) (*dto.BalanceCheckResponse, error) {
	res, err := accounting.EvaluateBalance(dto.ToAmountPairs(lines))
	if err != nil {
		return nil, err
	}
	resp := dto.ToBalanceCheckResponse(res)
	return &resp, nil
}
