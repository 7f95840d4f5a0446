package dto

import (
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
)

// JournalEntryRequestedEvent is the message upstream producers (invoicing, bills,
// expenses, receipt ingestion) publish to have a journal entry recorded.
type JournalEntryRequestedEvent struct {
	EventID     string               `json:"eventID"`
	BusinessID  string               `json:"businessID" binding:"required"`
	ProducerID  string               `json:"producerID"`
	EntryDate   time.Time            `json:"entryDate" binding:"required"`
	Description string               `json:"description"`
	SourceType  domain.SourceType    `json:"sourceType" binding:"required,oneof=manual invoice bill expense"`
	SourceID    *string              `json:"sourceID"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,dive"`
	AutoPost    bool                 `json:"autoPost"`
}

// ToCreateJournalEntryRequest converts the event into the request the journal service accepts.
// Without a SourceID the EventID identifies the document, so a redelivered event maps to the same source.
func (e JournalEntryRequestedEvent) ToCreateJournalEntryRequest() CreateJournalEntryRequest {
	sourceID := e.SourceID
	if (sourceID == nil || *sourceID == "") && e.EventID != "" {
		eventID := e.EventID
		sourceID = &eventID
	}
	return CreateJournalEntryRequest{
		EntryDate:   e.EntryDate,
		Description: e.Description,
		SourceType:  e.SourceType,
		SourceID:    sourceID,
		Lines:       e.Lines,
		AutoPost:    e.AutoPost,
	}
}
