package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
)

// PostingSnapshot is everything the ledger and trial balance are derived from,
// read at a single point in time.
type PostingSnapshot struct {
	Accounts map[string]domain.Account
	// Entries holds posted entries with their lines.
	Entries []domain.JournalEntry
}

// ReportingRepository defines the read path used by reports
type ReportingRepository interface {
	// GetPostingSnapshot returns the business's accounts and every posted entry dated
	// on or before until (nil means no bound) from one consistent read.
	GetPostingSnapshot(ctx context.Context, businessID string, until *time.Time) (*PostingSnapshot, error)
}
