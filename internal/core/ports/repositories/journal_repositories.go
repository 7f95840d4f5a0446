package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalListFilter narrows ListEntries.
type JournalListFilter struct {
	Status    *domain.EntryStatus
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	NextToken *string
}

// EntryMutation describes one atomic write to an existing journal entry.
type EntryMutation struct {
	// Entry carries the new header values (and lines when ReplaceLines is set).
	Entry domain.JournalEntry
	// ExpectedVersion must match the stored version or the write fails with apperrors.ErrConflict.
	ExpectedVersion int64
	ReplaceLines    bool
	// BalanceChanges are applied to the persisted account balances in the same transaction.
	BalanceChanges map[string]decimal.Decimal
}

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines. Entries of other businesses are reported as apperrors.ErrNotFound.
	FindEntryByID(ctx context.Context, businessID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries (with lines), newest first, and a token for the next page.
	ListEntries(ctx context.Context, businessID string, filter JournalListFilter) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// CreateEntry persists a new entry with its lines, assigning EntryNumber and Version on the passed entry,
	// and applies balanceChanges to account balances atomically.
	CreateEntry(ctx context.Context, entry *domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error

	// UpdateEntry applies a mutation guarded by a compare-and-swap on the entry version.
	UpdateEntry(ctx context.Context, mutation EntryMutation) error

	// DeleteEntry removes an entry and its lines, guarded by the entry version.
	DeleteEntry(ctx context.Context, businessID string, entryID string, expectedVersion int64) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
