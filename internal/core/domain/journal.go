package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft        EntryStatus = "draft"
	StatusAskForReview EntryStatus = "ask_for_review"
	StatusPosted       EntryStatus = "posted"
	StatusVoided       EntryStatus = "voided"
)

// IsValid reports whether s is one of the four lifecycle states.
func (s EntryStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusAskForReview, StatusPosted, StatusVoided:
		return true
	}
	return false
}

// SourceType records what produced a journal entry.
type SourceType string

const (
	SourceManual  SourceType = "manual"
	SourceInvoice SourceType = "invoice"
	SourceBill    SourceType = "bill"
	SourceExpense SourceType = "expense"
)

// IsValid reports whether s is a known source type.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceManual, SourceInvoice, SourceBill, SourceExpense:
		return true
	}
	return false
}

// JournalLine is one debit or credit posting inside a journal entry.
// Lines are exclusively owned by their entry.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	LineNo      int             `json:"lineNo"` // 1-based position within the entry
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntry is a dated set of balanced lines belonging to one business.
type JournalEntry struct {
	EntryID     string        `json:"entryID"`
	BusinessID  string        `json:"businessID"`
	EntryNumber string        `json:"entryNumber"` // server-assigned, unique per business
	EntryDate   time.Time     `json:"entryDate"`
	Description string        `json:"description"`
	SourceType  SourceType    `json:"sourceType"`
	SourceID    *string       `json:"sourceID,omitempty"` // weak back-reference, traceability only
	Status      EntryStatus   `json:"status"`
	PostedAt    *time.Time    `json:"postedAt,omitempty"`
	VoidedAt    *time.Time    `json:"voidedAt,omitempty"`
	VoidReason  *string       `json:"voidReason,omitempty"`
	Lines       []JournalLine `json:"lines"`
	Version     int64         `json:"version"` // bumped on every write; used for compare-and-swap
	AuditFields
}

// AccountIDs returns the distinct account ids referenced by the entry's lines, in line order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// HasExternalSource reports whether the entry was requested by an upstream document.
// At most one entry per business may exist for a given source type and source id.
func (e JournalEntry) HasExternalSource() bool {
	return e.SourceType != SourceManual && e.SourceID != nil && *e.SourceID != ""
}

// EntryNumberPrefix starts every human-readable entry number.
const EntryNumberPrefix = "JE-"

// FormatEntryNumber renders the n-th entry number of a business, e.g. JE-000042.
func FormatEntryNumber(n int64) string {
	return fmt.Sprintf("%s%06d", EntryNumberPrefix, n)
}

// CalendarDay returns the date of t, in t's own location, as midnight UTC.
// Entry, statement and report dates are compared as whole days.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
