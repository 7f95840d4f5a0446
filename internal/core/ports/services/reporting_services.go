package services

import (
	"context"
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
)

// ReportingService defines operations for deriving ledgers and trial balances from posted entries
type ReportingService interface {
	// GetTrialBalance generates a trial balance as of a specific date
	GetTrialBalance(ctx context.Context, rc domain.RequestContext, asOf time.Time) (*domain.TrialBalance, error)

	// GetLedger returns chronological postings with running balances
	GetLedger(ctx context.Context, rc domain.RequestContext, filter domain.LedgerFilter) ([]domain.LedgerEntry, error)
}
