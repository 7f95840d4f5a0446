package dto

import (
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one line of a journal entry as sent by a client.
// Amounts are decimal strings; an empty string means zero.
type JournalLineRequest struct {
	AccountID   string `json:"accountID" binding:"required"`
	Description string `json:"description"`
	Debit       string `json:"debit" binding:"omitempty,nonnegative_amount"`
	Credit      string `json:"credit" binding:"omitempty,nonnegative_amount"`
}

// CreateJournalEntryRequest defines the data needed to create a journal entry.
type CreateJournalEntryRequest struct {
	EntryDate   time.Time            `json:"entryDate" binding:"required"`
	Description string               `json:"description"`
	SourceType  domain.SourceType    `json:"sourceType" binding:"omitempty,oneof=manual invoice bill expense"`
	SourceID    *string              `json:"sourceID"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,dive"`
	// AutoPost creates the entry directly in the posted state.
	AutoPost bool `json:"autoPost"`
}

// UpdateJournalEntryRequest replaces the editable parts of a draft or in-review entry.
// Nil fields are left unchanged; a non-nil Lines slice replaces every line.
type UpdateJournalEntryRequest struct {
	EntryDate   *time.Time           `json:"entryDate"`
	Description *string              `json:"description"`
	Lines       []JournalLineRequest `json:"lines" binding:"omitempty,dive"`
	// Version, when set, must match the entry's current version.
	Version int64 `json:"version"`
}

// VoidJournalEntryRequest carries the mandatory void reason.
type VoidJournalEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BalanceCheckRequest asks whether a set of lines balances.
type BalanceCheckRequest struct {
	Lines []JournalLineRequest `json:"lines" binding:"dive"`
}

// BalanceCheckResponse is the live balanced/unbalanced indicator.
type BalanceCheckResponse struct {
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Difference  decimal.Decimal `json:"difference"`
	IsBalanced  bool            `json:"isBalanced"`
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	Status    string     `form:"status" binding:"omitempty,oneof=draft ask_for_review posted voided"`
	StartDate *time.Time `form:"startDate" time_format:"2006-01-02" time_utc:"1"`
	EndDate   *time.Time `form:"endDate" time_format:"2006-01-02" time_utc:"1"`
	Limit     int        `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string    `form:"nextToken"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	LineNo      int             `json:"lineNo"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID       string                `json:"entryID"`
	EntryNumber   string                `json:"entryNumber"`
	EntryDate     time.Time             `json:"entryDate"`
	Description   string                `json:"description"`
	SourceType    domain.SourceType     `json:"sourceType"`
	SourceID      *string               `json:"sourceID,omitempty"`
	Status        domain.EntryStatus    `json:"status"`
	PostedAt      *time.Time            `json:"postedAt,omitempty"`
	VoidedAt      *time.Time            `json:"voidedAt,omitempty"`
	VoidReason    *string               `json:"voidReason,omitempty"`
	TotalDebit    decimal.Decimal       `json:"totalDebit"`
	TotalCredit   decimal.Decimal       `json:"totalCredit"`
	Version       int64                 `json:"version"`
	Lines         []JournalLineResponse `json:"lines"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
	LastUpdatedAt time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy string                `json:"lastUpdatedBy"`
}

// ListJournalEntriesResponse wraps a page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToAmountPairs converts request lines to the validator's input.
func ToAmountPairs(lines []JournalLineRequest) []accounting.AmountPair {
	pairs := make([]accounting.AmountPair, len(lines))
	for i, l := range lines {
		pairs[i] = accounting.AmountPair{Debit: l.Debit, Credit: l.Credit}
	}
	return pairs
}

// ToBalanceCheckResponse converts a validator result.
func ToBalanceCheckResponse(res accounting.BalanceResult) BalanceCheckResponse {
	return BalanceCheckResponse{
		TotalDebit:  res.TotalDebit,
		TotalCredit: res.TotalCredit,
		Difference:  res.Difference(),
		IsBalanced:  res.IsBalanced,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:       e.EntryID,
		EntryNumber:   e.EntryNumber,
		EntryDate:     e.EntryDate,
		Description:   e.Description,
		SourceType:    e.SourceType,
		SourceID:      e.SourceID,
		Status:        e.Status,
		PostedAt:      e.PostedAt,
		VoidedAt:      e.VoidedAt,
		VoidReason:    e.VoidReason,
		TotalDebit:    decimal.Zero,
		TotalCredit:   decimal.Zero,
		Version:       e.Version,
		Lines:         make([]JournalLineResponse, len(e.Lines)),
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		LastUpdatedAt: e.LastUpdatedAt,
		LastUpdatedBy: e.LastUpdatedBy,
	}
	for i, l := range e.Lines {
		resp.Lines[i] = JournalLineResponse{
			LineID:      l.LineID,
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
		resp.TotalDebit = resp.TotalDebit.Add(l.Debit)
		resp.TotalCredit = resp.TotalCredit.Add(l.Credit)
	}
	return resp
}

// ToJournalEntryResponses converts a slice of domain.JournalEntry.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}
