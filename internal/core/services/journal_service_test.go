package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/core/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/SscSPs/books_backend/internal/repositories/database/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testBusinessID = "biz-1"

// JournalServiceTestSuite runs the journal lifecycle against the in-memory store.
type JournalServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	container *portssvc.ServiceContainer

	cash    domain.Account
	revenue domain.Account
	rent    domain.Account
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	suite.container = services.NewServiceContainer(memory.NewRepositoryProvider(suite.store))

	suite.cash = suite.seedAccount(testBusinessID, "101000", "Cash", domain.Asset)
	suite.revenue = suite.seedAccount(testBusinessID, "421000", "Sales", domain.Revenue)
	suite.rent = suite.seedAccount(testBusinessID, "610000", "Rent", domain.Expense)
}

func (suite *JournalServiceTestSuite) seedAccount(businessID, code, name string, accountType domain.AccountType) domain.Account {
	acc := domain.Account{
		AccountID:   uuid.NewString(),
		BusinessID:  businessID,
		Code:        code,
		Name:        name,
		AccountType: accountType,
		IsActive:    true,
		Balance:     decimal.Zero,
	}
	suite.Require().NoError(suite.store.SaveAccount(suite.ctx, acc))
	return acc
}

func rc(role domain.ActorRole) domain.RequestContext {
	return domain.RequestContext{TenantID: testBusinessID, UserID: "user-" + string(role), Role: role}
}

func (suite *JournalServiceTestSuite) saleRequest(debit, credit string, autoPost bool) dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		EntryDate:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Description: "Cash sale",
		Lines: []dto.JournalLineRequest{
			{AccountID: suite.cash.AccountID, Debit: debit, Credit: "0"},
			{AccountID: suite.revenue.AccountID, Debit: "0", Credit: credit},
		},
		AutoPost: autoPost,
	}
}

func (suite *JournalServiceTestSuite) balanceOf(accountID string) decimal.Decimal {
	acc, err := suite.store.FindAccountByID(suite.ctx, testBusinessID, accountID)
	suite.Require().NoError(err)
	return acc.Balance
}

func (suite *JournalServiceTestSuite) trialBalance() *domain.TrialBalance {
	tb, err := suite.container.Reporting.GetTrialBalance(suite.ctx, rc(domain.RoleOwner), time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	return tb
}

func (suite *JournalServiceTestSuite) createDraft() *domain.JournalEntry {
	entry, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountant), suite.saleRequest("100.00", "100.00", false))
	suite.Require().NoError(err)
	return entry
}

func (suite *JournalServiceTestSuite) TestCreate_AutoPostSingleSale() {
	entry, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), suite.saleRequest("100.00", "100.00", true))
	suite.Require().NoError(err)

	suite.Equal(domain.StatusPosted, entry.Status)
	suite.NotNil(entry.PostedAt)
	suite.Equal("JE-000001", entry.EntryNumber)
	suite.Equal(int64(1), entry.Version)
	suite.Equal(domain.SourceManual, entry.SourceType)

	tb := suite.trialBalance()
	suite.Equal("100.00", tb.TotalDebits.StringFixed(2))
	suite.Equal("100.00", tb.TotalCredits.StringFixed(2))
	suite.True(tb.IsBalanced)

	suite.Equal("100.00", suite.balanceOf(suite.cash.AccountID).StringFixed(2))
	suite.Equal("100.00", suite.balanceOf(suite.revenue.AccountID).StringFixed(2))
}

func (suite *JournalServiceTestSuite) TestCreateDraftThenPost_MatchesAutoPost() {
	draft := suite.createDraft()
	suite.Equal(domain.StatusDraft, draft.Status)
	suite.Nil(draft.PostedAt)
	suite.True(suite.balanceOf(suite.cash.AccountID).IsZero(), "drafts never touch balances")
	suite.Empty(suite.trialBalance().Rows)

	posted, err := suite.container.Journal.PostJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), draft.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, posted.Status)
	suite.NotNil(posted.PostedAt)
	suite.Equal(int64(2), posted.Version)

	tb := suite.trialBalance()
	suite.Equal("100.00", tb.TotalDebits.StringFixed(2))
	suite.Equal("100.00", tb.TotalCredits.StringFixed(2))
	suite.Equal("100.00", suite.balanceOf(suite.cash.AccountID).StringFixed(2))
}

func (suite *JournalServiceTestSuite) TestCreate_UnbalancedIsNotPersisted() {
	_, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), suite.saleRequest("100.00", "90.00", true))
	suite.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	_, err = suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountant), suite.saleRequest("100.00", "90.00", false))
	suite.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	list, err := suite.container.Journal.ListJournalEntries(suite.ctx, rc(domain.RoleOwner), dto.ListJournalEntriesParams{Limit: 10})
	suite.Require().NoError(err)
	suite.Empty(list.Entries)
	suite.True(suite.balanceOf(suite.cash.AccountID).IsZero())
}

func (suite *JournalServiceTestSuite) TestCreate_ValidationErrors() {
	req := suite.saleRequest("100.00", "100.00", false)
	req.Lines = req.Lines[:1]
	_, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleOwner), req)
	suite.ErrorIs(err, apperrors.ErrInsufficientLines)

	req = suite.saleRequest("-100.00", "100.00", false)
	_, err = suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleOwner), req)
	suite.ErrorIs(err, apperrors.ErrValidation)

	req = suite.saleRequest("100.00", "100.00", false)
	req.Lines[1].AccountID = "no-such-account"
	_, err = suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleOwner), req)
	suite.ErrorIs(err, apperrors.ErrValidation)

	other := suite.seedAccount("biz-2", "999000", "Foreign", domain.Revenue)
	req = suite.saleRequest("100.00", "100.00", false)
	req.Lines[1].AccountID = other.AccountID
	_, err = suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleOwner), req)
	suite.ErrorIs(err, apperrors.ErrValidation, "accounts of another business are invisible")
}

func (suite *JournalServiceTestSuite) TestCreate_AutoPostRequiresPostingRole() {
	for _, role := range []domain.ActorRole{domain.RoleOwner, domain.RoleAccountant} {
		_, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(role), suite.saleRequest("100.00", "100.00", true))
		suite.ErrorIs(err, apperrors.ErrForbidden, string(role))
	}

	// The state machine is consulted before the balance check.
	_, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleOwner), suite.saleRequest("100.00", "90.00", true))
	suite.ErrorIs(err, apperrors.ErrForbidden)

	entry, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleSystem), suite.saleRequest("100.00", "100.00", true))
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, entry.Status)
}

func (suite *JournalServiceTestSuite) TestVoid_RestoresBalancesAndTrialBalance() {
	before := suite.trialBalance()

	entry, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), suite.saleRequest("100.00", "100.00", true))
	suite.Require().NoError(err)

	voided, err := suite.container.Journal.VoidJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), entry.EntryID, "  duplicate entry ")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusVoided, voided.Status)
	suite.Require().NotNil(voided.VoidReason)
	suite.Equal("duplicate entry", *voided.VoidReason)
	suite.NotNil(voided.VoidedAt)

	after := suite.trialBalance()
	suite.True(before.TotalDebits.Equal(after.TotalDebits))
	suite.True(before.TotalCredits.Equal(after.TotalCredits))
	suite.True(suite.balanceOf(suite.cash.AccountID).IsZero())
	suite.True(suite.balanceOf(suite.revenue.AccountID).IsZero())

	ledger, err := suite.container.Reporting.GetLedger(suite.ctx, rc(domain.RoleOwner), domain.LedgerFilter{AccountID: &suite.cash.AccountID})
	suite.Require().NoError(err)
	suite.Empty(ledger)
}

func (suite *JournalServiceTestSuite) TestVoid_RequiresReasonAndPostedState() {
	draft := suite.createDraft()
	_, err := suite.container.Journal.VoidJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), draft.EntryID, "oops")
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	posted, err := suite.container.Journal.PostJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), draft.EntryID)
	suite.Require().NoError(err)

	_, err = suite.container.Journal.VoidJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), posted.EntryID, "   ")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.container.Journal.VoidJournalEntry(suite.ctx, rc(domain.RoleAccountant), posted.EntryID, "duplicate")
	suite.ErrorIs(err, apperrors.ErrForbidden)

	stored, err := suite.container.Journal.GetJournalEntry(suite.ctx, rc(domain.RoleOwner), posted.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, stored.Status)
}

func (suite *JournalServiceTestSuite) TestUpdate_TerminalStatesAreImmutable() {
	entry, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), suite.saleRequest("100.00", "100.00", true))
	suite.Require().NoError(err)

	newLines := []dto.JournalLineRequest{
		{AccountID: suite.rent.AccountID, Debit: "40.00"},
		{AccountID: suite.cash.AccountID, Credit: "40.00"},
	}

	_, err = suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), entry.EntryID, dto.UpdateJournalEntryRequest{Lines: newLines})
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	_, err = suite.container.Journal.VoidJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), entry.EntryID, "duplicate entry")
	suite.Require().NoError(err)

	_, err = suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), entry.EntryID, dto.UpdateJournalEntryRequest{Lines: newLines})
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	var stErr *apperrors.InvalidStateTransitionError
	suite.Require().True(errors.As(err, &stErr))
	suite.Equal("voided", stErr.Current)
	suite.Equal("edit", stErr.Attempted)

	stored, err := suite.container.Journal.GetJournalEntry(suite.ctx, rc(domain.RoleOwner), entry.EntryID)
	suite.Require().NoError(err)
	suite.Equal(entry.Lines, stored.Lines)
}

func (suite *JournalServiceTestSuite) TestUpdate_ReplacesLinesAtomically() {
	draft := suite.createDraft()
	desc := "Corrected sale"
	newDate := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)

	updated, err := suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID, dto.UpdateJournalEntryRequest{
		EntryDate:   &newDate,
		Description: &desc,
		Lines: []dto.JournalLineRequest{
			{AccountID: suite.cash.AccountID, Debit: "60.00"},
			{AccountID: suite.cash.AccountID, Debit: "40.00"},
			{AccountID: suite.revenue.AccountID, Credit: "100.00"},
		},
		Version: draft.Version,
	})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, updated.Status)
	suite.Equal(desc, updated.Description)
	suite.Require().Len(updated.Lines, 3)
	suite.Equal(3, updated.Lines[2].LineNo)

	// An unbalanced edit is refused and leaves the stored lines alone.
	_, err = suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID, dto.UpdateJournalEntryRequest{
		Lines: []dto.JournalLineRequest{
			{AccountID: suite.cash.AccountID, Debit: "60.00"},
			{AccountID: suite.revenue.AccountID, Credit: "100.00"},
		},
	})
	suite.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	stored, err := suite.container.Journal.GetJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID)
	suite.Require().NoError(err)
	suite.Len(stored.Lines, 3)
	suite.Equal(draft.EntryNumber, stored.EntryNumber)
	suite.True(newDate.Equal(stored.EntryDate))
}

func (suite *JournalServiceTestSuite) TestUpdate_StaleVersionConflicts() {
	draft := suite.createDraft()
	desc := "first"
	_, err := suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID, dto.UpdateJournalEntryRequest{Description: &desc, Version: draft.Version})
	suite.Require().NoError(err)

	desc = "second"
	_, err = suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID, dto.UpdateJournalEntryRequest{Description: &desc, Version: draft.Version})
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *JournalServiceTestSuite) TestReviewFlow() {
	draft := suite.createDraft()

	_, err := suite.container.Journal.AskForReviewJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	inReview, err := suite.container.Journal.AskForReviewJournalEntry(suite.ctx, rc(domain.RoleAccountant), draft.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusAskForReview, inReview.Status)

	desc := "owner tweak"
	_, err = suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID, dto.UpdateJournalEntryRequest{Description: &desc})
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.container.Journal.AskForReviewJournalEntry(suite.ctx, rc(domain.RoleAccountant), draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	err = suite.container.Journal.DeleteJournalEntry(suite.ctx, rc(domain.RoleAccountant), draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	_, err = suite.container.Journal.PostJournalEntry(suite.ctx, rc(domain.RoleAccountant), draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	posted, err := suite.container.Journal.PostJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), draft.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, posted.Status)

	_, err = suite.container.Journal.PostJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (suite *JournalServiceTestSuite) TestPost_UnbalancedStoredEntryIsRefused() {
	// Entries written by an older client may be stored unbalanced; posting re-validates them.
	entry := &domain.JournalEntry{
		EntryID:    uuid.NewString(),
		BusinessID: testBusinessID,
		EntryDate:  time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
		SourceType: domain.SourceManual,
		Status:     domain.StatusDraft,
		Lines: []domain.JournalLine{
			{LineID: uuid.NewString(), LineNo: 1, AccountID: suite.cash.AccountID, Debit: decimal.RequireFromString("100.00"), Credit: decimal.Zero},
			{LineID: uuid.NewString(), LineNo: 2, AccountID: suite.revenue.AccountID, Debit: decimal.Zero, Credit: decimal.RequireFromString("90.00")},
		},
	}
	suite.Require().NoError(suite.store.CreateEntry(suite.ctx, entry, nil))

	_, err := suite.container.Journal.PostJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), entry.EntryID)
	suite.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	stored, err := suite.container.Journal.GetJournalEntry(suite.ctx, rc(domain.RoleOwner), entry.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, stored.Status)
	suite.Nil(stored.PostedAt)
	suite.True(suite.balanceOf(suite.cash.AccountID).IsZero())
}

func (suite *JournalServiceTestSuite) TestPost_InactiveAccountIsRefused() {
	closed := domain.Account{
		AccountID:   uuid.NewString(),
		BusinessID:  testBusinessID,
		Code:        "102000",
		Name:        "Closed bank",
		AccountType: domain.Asset,
		Balance:     decimal.Zero,
	}
	suite.Require().NoError(suite.store.SaveAccount(suite.ctx, closed))

	req := suite.saleRequest("100.00", "100.00", false)
	req.Lines[0].AccountID = closed.AccountID
	_, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleOwner), req)
	suite.ErrorIs(err, apperrors.ErrValidation)

	// A draft written before the account was closed.
	entry := &domain.JournalEntry{
		EntryID:    uuid.NewString(),
		BusinessID: testBusinessID,
		EntryDate:  time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
		SourceType: domain.SourceManual,
		Status:     domain.StatusDraft,
		Lines: []domain.JournalLine{
			{LineID: uuid.NewString(), LineNo: 1, AccountID: closed.AccountID, Debit: decimal.RequireFromString("100.00"), Credit: decimal.Zero},
			{LineID: uuid.NewString(), LineNo: 2, AccountID: suite.revenue.AccountID, Debit: decimal.Zero, Credit: decimal.RequireFromString("100.00")},
		},
	}
	suite.Require().NoError(suite.store.CreateEntry(suite.ctx, entry, nil))

	_, err = suite.container.Journal.PostJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), entry.EntryID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestDelete() {
	draft := suite.createDraft()

	err := suite.container.Journal.DeleteJournalEntry(suite.ctx, rc(domain.RoleSystem), draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	suite.Require().NoError(suite.container.Journal.DeleteJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID))

	_, err = suite.container.Journal.GetJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	err = suite.container.Journal.DeleteJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestCrossTenantAccessIsNotFound() {
	draft := suite.createDraft()
	outsider := domain.RequestContext{TenantID: "biz-2", UserID: "mallory", Role: domain.RoleAccountantSupervisor}

	_, err := suite.container.Journal.GetJournalEntry(suite.ctx, outsider, draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.container.Journal.PostJournalEntry(suite.ctx, outsider, draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.container.Journal.GetJournalEntry(suite.ctx, domain.RequestContext{Role: domain.RoleOwner}, draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *JournalServiceTestSuite) TestConcurrentPostsExactlyOneWins() {
	draft := suite.createDraft()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = suite.container.Journal.PostJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), draft.EntryID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		suite.True(errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrInvalidStateTransition), err.Error())
	}
	suite.Equal(1, succeeded)
	suite.Equal("100.00", suite.balanceOf(suite.cash.AccountID).StringFixed(2))
}

func (suite *JournalServiceTestSuite) TestListJournalEntries_PaginatesNewestFirst() {
	for d := 1; d <= 5; d++ {
		req := suite.saleRequest("10.00", "10.00", false)
		req.EntryDate = time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
		_, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountant), req)
		suite.Require().NoError(err)
	}

	first, err := suite.container.Journal.ListJournalEntries(suite.ctx, rc(domain.RoleOwner), dto.ListJournalEntriesParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first.Entries, 2)
	suite.Require().NotNil(first.NextToken)
	suite.Equal(5, first.Entries[0].EntryDate.Day())
	suite.Equal(4, first.Entries[1].EntryDate.Day())

	var days []int
	token := first.NextToken
	for token != nil {
		page, err := suite.container.Journal.ListJournalEntries(suite.ctx, rc(domain.RoleOwner), dto.ListJournalEntriesParams{Limit: 2, NextToken: token})
		suite.Require().NoError(err)
		for _, e := range page.Entries {
			days = append(days, e.EntryDate.Day())
		}
		token = page.NextToken
	}
	suite.Equal([]int{3, 2, 1}, days)

	posted := "posted"
	none, err := suite.container.Journal.ListJournalEntries(suite.ctx, rc(domain.RoleOwner), dto.ListJournalEntriesParams{Limit: 10, Status: posted})
	suite.Require().NoError(err)
	suite.Empty(none.Entries)

	bad := "bogus"
	_, err = suite.container.Journal.ListJournalEntries(suite.ctx, rc(domain.RoleOwner), dto.ListJournalEntriesParams{Limit: 10, NextToken: &bad})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestCheckBalance_AgreesWithCreate() {
	lines := []dto.JournalLineRequest{
		{AccountID: suite.cash.AccountID, Debit: "10.005"},
		{AccountID: suite.revenue.AccountID, Credit: "10"},
	}
	res, err := suite.container.Journal.CheckBalance(suite.ctx, lines)
	suite.Require().NoError(err)
	suite.True(res.IsBalanced)

	_, err = suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleOwner), dto.CreateJournalEntryRequest{
		EntryDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Lines:     lines,
	})
	suite.NoError(err)

	res, err = suite.container.Journal.CheckBalance(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.True(res.IsBalanced, "the live indicator accepts an empty form")
}

func (suite *JournalServiceTestSuite) TestReports_IncludeEntriesFromLaterThatDay() {
	req := suite.saleRequest("150.00", "150.00", true)
	req.EntryDate = time.Date(2024, time.March, 31, 15, 0, 0, 0, time.UTC)
	entry, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), req)
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), entry.EntryDate)

	monthEnd := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	tb, err := suite.container.Reporting.GetTrialBalance(suite.ctx, rc(domain.RoleOwner), monthEnd)
	suite.Require().NoError(err)
	suite.Len(tb.Rows, 2)
	suite.Equal("150.00", tb.TotalDebits.StringFixed(2))

	ledger, err := suite.container.Reporting.GetLedger(suite.ctx, rc(domain.RoleOwner), domain.LedgerFilter{AccountID: &suite.cash.AccountID, EndDate: &monthEnd})
	suite.Require().NoError(err)
	suite.Len(ledger, 1)

	// A report date carrying a time of day still covers the whole day.
	late := time.Date(2024, time.March, 31, 9, 30, 0, 0, time.UTC)
	ledger, err = suite.container.Reporting.GetLedger(suite.ctx, rc(domain.RoleOwner), domain.LedgerFilter{StartDate: &late, EndDate: &late})
	suite.Require().NoError(err)
	suite.Len(ledger, 2)
}

func (suite *JournalServiceTestSuite) TestEntryDateKeepsTheSendersCalendarDay() {
	draft := suite.createDraft()
	eastern := time.FixedZone("UTC-5", -5*60*60)
	lateEvening := time.Date(2024, time.March, 31, 23, 30, 0, 0, eastern)

	updated, err := suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID, dto.UpdateJournalEntryRequest{EntryDate: &lateEvening})
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), updated.EntryDate)
}

func (suite *JournalServiceTestSuite) TestCreate_RejectsAmountsBeyondStoredScale() {
	_, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountant), suite.saleRequest("100.00995", "100.00", false))
	suite.ErrorIs(err, apperrors.ErrValidation)

	draft := suite.createDraft()
	_, err = suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleOwner), draft.EntryID, dto.UpdateJournalEntryRequest{
		Lines: []dto.JournalLineRequest{
			{AccountID: suite.cash.AccountID, Debit: "100.00001"},
			{AccountID: suite.revenue.AccountID, Credit: "100.00001"},
		},
	})
	suite.ErrorIs(err, apperrors.ErrValidation)

	entry, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountant), suite.saleRequest("100.12340", "100.1234", false))
	suite.Require().NoError(err, "trailing zeros fit the stored scale")
	suite.Equal(domain.StatusDraft, entry.Status)
}

func (suite *JournalServiceTestSuite) TestUpdate_StateIsCheckedBeforeVersion() {
	entry, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), suite.saleRequest("100.00", "100.00", true))
	suite.Require().NoError(err)
	_, err = suite.container.Journal.VoidJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), entry.EntryID, "wrong customer")
	suite.Require().NoError(err)

	desc := "late fix"
	_, err = suite.container.Journal.UpdateJournalEntry(suite.ctx, rc(domain.RoleAccountantSupervisor), entry.EntryID,
		dto.UpdateJournalEntryRequest{Description: &desc, Version: entry.Version})
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	suite.NotErrorIs(err, apperrors.ErrConflict)
}

func (suite *JournalServiceTestSuite) TestCreate_SourceDocumentIsRecordedOnce() {
	invoiceID := "INV-7"
	req := suite.saleRequest("150.00", "150.00", true)
	req.SourceType = domain.SourceInvoice
	req.SourceID = &invoiceID

	first, err := suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleSystem), req)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPosted, first.Status)

	_, err = suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleSystem), req)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Equal("150.00", suite.balanceOf(suite.cash.AccountID).StringFixed(2))

	// The same document number from another source type is a different document.
	req.SourceType = domain.SourceBill
	_, err = suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleSystem), req)
	suite.Require().NoError(err)

	// Manual entries may repeat a reference.
	manual := suite.saleRequest("10.00", "10.00", false)
	manual.SourceID = &invoiceID
	for i := 0; i < 2; i++ {
		_, err = suite.container.Journal.CreateJournalEntry(suite.ctx, rc(domain.RoleAccountant), manual)
		suite.Require().NoError(err)
	}
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

// Ensure the store satisfies the ports the container expects.
func TestMemoryStoreImplementsPorts(t *testing.T) {
	store := memory.NewStore()
	var provider portsrepo.RepositoryProvider = memory.NewRepositoryProvider(store)
	assert.NotNil(t, provider.JournalRepo)
	require.NotNil(t, services.NewServiceContainer(provider).Journal)
}
