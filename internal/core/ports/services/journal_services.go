package services

import (
	"context"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines.
	GetJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entries of the caller's business.
	ListJournalEntries(ctx context.Context, rc domain.RequestContext, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// JournalWriterSvc defines the lifecycle operations on journal entries
type JournalWriterSvc interface {
	// CreateJournalEntry validates and persists a new entry, as a draft or directly posted.
	CreateJournalEntry(ctx context.Context, rc domain.RequestContext, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error)

	// UpdateJournalEntry replaces the date, description and lines of a draft or in-review entry.
	UpdateJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string, req dto.UpdateJournalEntryRequest) (*domain.JournalEntry, error)

	// AskForReviewJournalEntry submits a draft for supervisor review.
	AskForReviewJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string) (*domain.JournalEntry, error)

	// PostJournalEntry posts a balanced entry and updates account balances.
	PostJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string) (*domain.JournalEntry, error)

	// VoidJournalEntry voids a posted entry, reversing its effect on account balances.
	VoidJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string, reason string) (*domain.JournalEntry, error)

	// DeleteJournalEntry removes a draft.
	DeleteJournalEntry(ctx context.Context, rc domain.RequestContext, entryID string) error
}

// JournalCalculatorSvc defines calculation operations related to journals
type JournalCalculatorSvc interface {
	// CheckBalance evaluates lines with the same validator used on create, edit and post.
	CheckBalance(ctx context.Context, lines []dto.JournalLineRequest) (*dto.BalanceCheckResponse, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalCalculatorSvc
}
