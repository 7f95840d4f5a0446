package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/utils/accounting"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service
func NewReportingService(repo portsrepo.ReportingRepository) portssvc.ReportingService {
	return &reportingService{
		reportingRepo: repo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// GetTrialBalance generates a trial balance report as of a specific date
func (s *reportingService) GetTrialBalance(ctx context.Context, rc domain.RequestContext, asOf time.Time) (*domain.TrialBalance, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = domain.CalendarDay(asOf)

	snapshot, err := s.reportingRepo.GetPostingSnapshot(ctx, rc.TenantID, &asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to get trial balance data", slog.String("business_id", rc.TenantID))
		return nil, fmt.Errorf("failed to get trial balance data: %w", err)
	}

	tb := accounting.BuildTrialBalance(snapshot.Accounts, snapshot.Entries, asOf)
	if !tb.IsBalanced {
		// Every posted entry is balanced on the way in, so this points at corrupted data.
		s.LogError(ctx, apperrors.ErrUnbalancedEntry, "Trial balance does not balance",
			slog.String("business_id", rc.TenantID),
			slog.String("difference", tb.Difference.String()))
	}

	s.LogDebug(ctx, "Trial balance generated",
		slog.String("as_of", asOf.Format("2006-01-02")),
		slog.Int("row_count", len(tb.Rows)))
	return &tb, nil
}

// GetLedger returns chronological postings with running balances
func (s *reportingService) GetLedger(ctx context.Context, rc domain.RequestContext, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	if err := s.AuthorizeUser(ctx, rc); err != nil {
		return nil, err
	}
	filter.StartDate = calendarDayPtr(filter.StartDate)
	filter.EndDate = calendarDayPtr(filter.EndDate)
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, fmt.Errorf("%w: start date must not be after end date", apperrors.ErrValidation)
	}

	snapshot, err := s.reportingRepo.GetPostingSnapshot(ctx, rc.TenantID, filter.EndDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to get ledger data", slog.String("business_id", rc.TenantID))
		return nil, fmt.Errorf("failed to get ledger data: %w", err)
	}

	if filter.AccountID != nil {
		if _, ok := snapshot.Accounts[*filter.AccountID]; !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", *filter.AccountID))
		}
	}

	return accounting.BuildLedger(snapshot.Accounts, snapshot.Entries, filter), nil
}

func calendarDayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := domain.CalendarDay(*t)
	return &day
}
