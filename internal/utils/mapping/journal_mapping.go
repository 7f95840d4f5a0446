package mapping

import (
	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:     d.EntryID,
		BusinessID:  d.BusinessID,
		EntryNumber: d.EntryNumber,
		EntryDate:   d.EntryDate,
		Description: d.Description,
		SourceType:  string(d.SourceType),
		SourceID:    d.SourceID,
		Status:      string(d.Status),
		PostedAt:    d.PostedAt,
		VoidedAt:    d.VoidedAt,
		VoidReason:  d.VoidReason,
		Version:     d.Version,
		AuditFields: models.AuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry and its lines to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	d := domain.JournalEntry{
		EntryID:     m.EntryID,
		BusinessID:  m.BusinessID,
		EntryNumber: m.EntryNumber,
		EntryDate:   m.EntryDate,
		Description: m.Description,
		SourceType:  domain.SourceType(m.SourceType),
		SourceID:    m.SourceID,
		Status:      domain.EntryStatus(m.Status),
		PostedAt:    m.PostedAt,
		VoidedAt:    m.VoidedAt,
		VoidReason:  m.VoidReason,
		Version:     m.Version,
		Lines:       make([]domain.JournalLine, len(lines)),
		AuditFields: domain.AuditFields(m.AuditFields),
	}
	for i, l := range lines {
		d.Lines[i] = ToDomainJournalLine(l)
	}
	return d
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		LineNo:      d.LineNo,
		AccountID:   d.AccountID,
		Description: d.Description,
		Debit:       d.Debit,
		Credit:      d.Credit,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		LineNo:      m.LineNo,
		AccountID:   m.AccountID,
		Description: m.Description,
		Debit:       m.Debit,
		Credit:      m.Credit,
	}
}
