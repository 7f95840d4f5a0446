package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID     string     `db:"entry_id"`
	BusinessID  string     `db:"business_id"`
	EntryNumber string     `db:"entry_number"`
	EntryDate   time.Time  `db:"entry_date"`
	Description string     `db:"description"`
	SourceType  string     `db:"source_type"`
	SourceID    *string    `db:"source_id"`
	Status      string     `db:"status"`
	PostedAt    *time.Time `db:"posted_at"`
	VoidedAt    *time.Time `db:"voided_at"`
	VoidReason  *string    `db:"void_reason"`
	Version     int64      `db:"version"`
	AuditFields
}

// JournalLine is a row of the journal_entry_lines table.
type JournalLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	LineNo      int             `db:"line_no"`
	AccountID   string          `db:"account_id"`
	Description string          `db:"description"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
}
