package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_Allowed(t *testing.T) {
	tests := []struct {
		name  string
		from  domain.EntryStatus
		event domain.EntryEvent
		role  domain.ActorRole
		want  domain.EntryStatus
	}{
		{"owner creates draft", domain.StatusNone, domain.EventCreate, domain.RoleOwner, domain.StatusDraft},
		{"system creates draft", domain.StatusNone, domain.EventCreate, domain.RoleSystem, domain.StatusDraft},
		{"supervisor auto posts", domain.StatusNone, domain.EventCreatePosted, domain.RoleAccountantSupervisor, domain.StatusPosted},
		{"system auto posts", domain.StatusNone, domain.EventCreatePosted, domain.RoleSystem, domain.StatusPosted},
		{"owner edits draft", domain.StatusDraft, domain.EventEdit, domain.RoleOwner, domain.StatusDraft},
		{"accountant asks for review", domain.StatusDraft, domain.EventAskForReview, domain.RoleAccountant, domain.StatusAskForReview},
		{"accountant edits under review", domain.StatusAskForReview, domain.EventEdit, domain.RoleAccountant, domain.StatusAskForReview},
		{"supervisor posts draft", domain.StatusDraft, domain.EventPost, domain.RoleAccountantSupervisor, domain.StatusPosted},
		{"supervisor posts reviewed", domain.StatusAskForReview, domain.EventPost, domain.RoleAccountantSupervisor, domain.StatusPosted},
		{"supervisor voids", domain.StatusPosted, domain.EventVoid, domain.RoleAccountantSupervisor, domain.StatusVoided},
		{"owner deletes draft", domain.StatusDraft, domain.EventDelete, domain.RoleOwner, domain.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Transition(tt.from, tt.event, tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransition_InvalidState(t *testing.T) {
	tests := []struct {
		from  domain.EntryStatus
		event domain.EntryEvent
	}{
		{domain.StatusPosted, domain.EventEdit},
		{domain.StatusVoided, domain.EventEdit},
		{domain.StatusPosted, domain.EventPost},
		{domain.StatusVoided, domain.EventPost},
		{domain.StatusDraft, domain.EventVoid},
		{domain.StatusAskForReview, domain.EventVoid},
		{domain.StatusVoided, domain.EventVoid},
		{domain.StatusAskForReview, domain.EventAskForReview},
		{domain.StatusPosted, domain.EventAskForReview},
		{domain.StatusAskForReview, domain.EventDelete},
		{domain.StatusPosted, domain.EventDelete},
		{domain.StatusDraft, domain.EventCreate},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			// The role never rescues an invalid state: even the supervisor is refused.
			got, err := domain.Transition(tt.from, tt.event, domain.RoleAccountantSupervisor)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
			assert.Equal(t, tt.from, got)

			var stErr *apperrors.InvalidStateTransitionError
			require.True(t, errors.As(err, &stErr))
			assert.Equal(t, string(tt.from), stErr.Current)
			assert.Equal(t, string(tt.event), stErr.Attempted)
		})
	}
}

func TestTransition_Forbidden(t *testing.T) {
	tests := []struct {
		name  string
		from  domain.EntryStatus
		event domain.EntryEvent
		role  domain.ActorRole
	}{
		{"owner cannot auto post", domain.StatusNone, domain.EventCreatePosted, domain.RoleOwner},
		{"accountant cannot auto post", domain.StatusNone, domain.EventCreatePosted, domain.RoleAccountant},
		{"owner cannot post", domain.StatusDraft, domain.EventPost, domain.RoleOwner},
		{"accountant cannot post", domain.StatusAskForReview, domain.EventPost, domain.RoleAccountant},
		{"owner cannot ask for review", domain.StatusDraft, domain.EventAskForReview, domain.RoleOwner},
		{"owner locked out of reviewed entry", domain.StatusAskForReview, domain.EventEdit, domain.RoleOwner},
		{"accountant cannot void", domain.StatusPosted, domain.EventVoid, domain.RoleAccountant},
		{"system cannot edit", domain.StatusDraft, domain.EventEdit, domain.RoleSystem},
		{"unknown role", domain.StatusDraft, domain.EventEdit, domain.ActorRole("guest")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Transition(tt.from, tt.event, tt.role)
			assert.ErrorIs(t, err, apperrors.ErrForbidden)
			assert.NotErrorIs(t, err, apperrors.ErrInvalidStateTransition)
			assert.Equal(t, tt.from, got)
		})
	}
}

func TestTerminalStatesAreNotEditable(t *testing.T) {
	assert.True(t, domain.StatusDraft.IsEditable())
	assert.True(t, domain.StatusAskForReview.IsEditable())
	assert.False(t, domain.StatusPosted.IsEditable())
	assert.False(t, domain.StatusVoided.IsEditable())

	for _, role := range []domain.ActorRole{domain.RoleOwner, domain.RoleAccountant, domain.RoleAccountantSupervisor, domain.RoleSystem} {
		assert.False(t, domain.CanTransition(domain.StatusPosted, domain.EventEdit, role))
		assert.False(t, domain.CanTransition(domain.StatusVoided, domain.EventEdit, role))
	}
}

func TestAccountType_NormalBalance(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        domain.NormalBalance
	}{
		{domain.Asset, domain.DebitNormal},
		{domain.Expense, domain.DebitNormal},
		{domain.Liability, domain.CreditNormal},
		{domain.Equity, domain.CreditNormal},
		{domain.Revenue, domain.CreditNormal},
	}
	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.accountType.NormalBalance())
			assert.Equal(t, tt.want, domain.Account{AccountType: tt.accountType}.NormalBalance())
		})
	}
}

func TestJournalEntry_AccountIDs(t *testing.T) {
	e := domain.JournalEntry{Lines: []domain.JournalLine{{AccountID: "a"}, {AccountID: "b"}, {AccountID: "a"}}}
	assert.Equal(t, []string{"a", "b"}, e.AccountIDs())
}

func TestCalendarDay(t *testing.T) {
	want := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, domain.CalendarDay(time.Date(2024, time.March, 31, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, want, domain.CalendarDay(time.Date(2024, time.March, 31, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*60*60))))
	assert.Equal(t, want, domain.CalendarDay(time.Date(2024, time.March, 31, 0, 15, 0, 0, time.FixedZone("UTC+10", 10*60*60))))
	assert.Equal(t, want, domain.CalendarDay(want))
}

func TestJournalEntry_HasExternalSource(t *testing.T) {
	ref := "INV-7"
	empty := ""
	assert.True(t, domain.JournalEntry{SourceType: domain.SourceInvoice, SourceID: &ref}.HasExternalSource())
	assert.False(t, domain.JournalEntry{SourceType: domain.SourceManual, SourceID: &ref}.HasExternalSource())
	assert.False(t, domain.JournalEntry{SourceType: domain.SourceBill}.HasExternalSource())
	assert.False(t, domain.JournalEntry{SourceType: domain.SourceBill, SourceID: &empty}.HasExternalSource())
}
