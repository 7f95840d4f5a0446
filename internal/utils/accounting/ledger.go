package accounting

import (
	"sort"
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// postedOnly keeps entries that currently affect the books.
// Voided entries are dropped whole, original postings included.
func postedOnly(entries []domain.JournalEntry) []domain.JournalEntry {
	out := make([]domain.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status == domain.StatusPosted {
			out = append(out, e)
		}
	}
	return out
}

// sortChronologically orders entries by date, then entry number, then creation time.
func sortChronologically(entries []domain.JournalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.EntryNumber != b.EntryNumber {
			return a.EntryNumber < b.EntryNumber
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func onOrBefore(t time.Time, bound time.Time) bool {
	return !t.After(bound)
}

// BuildLedger returns the chronological postings for the filtered account(s) with a
// running balance in each account's normal-balance convention. Running balances start
// from the first posting ever, so rows after StartDate carry the real opening balance.
func BuildLedger(accounts map[string]domain.Account, entries []domain.JournalEntry, filter domain.LedgerFilter) []domain.LedgerEntry {
	posted := postedOnly(entries)
	sortChronologically(posted)

	running := make(map[string]decimal.Decimal)
	result := []domain.LedgerEntry{}
	for _, e := range posted {
		if filter.EndDate != nil && !onOrBefore(e.EntryDate, *filter.EndDate) {
			break
		}
		lines := append([]domain.JournalLine(nil), e.Lines...)
		sort.SliceStable(lines, func(i, j int) bool { return lines[i].LineNo < lines[j].LineNo })
		for _, l := range lines {
			if filter.AccountID != nil && l.AccountID != *filter.AccountID {
				continue
			}
			acc, ok := accounts[l.AccountID]
			if !ok {
				continue
			}
			running[l.AccountID] = running[l.AccountID].Add(SignedAmount(acc.NormalBalance(), l.Debit, l.Credit))
			if filter.StartDate != nil && e.EntryDate.Before(*filter.StartDate) {
				continue
			}
			description := l.Description
			if description == "" {
				description = e.Description
			}
			result = append(result, domain.LedgerEntry{
				EntryID:        e.EntryID,
				EntryNumber:    e.EntryNumber,
				EntryDate:      e.EntryDate,
				AccountID:      l.AccountID,
				Description:    description,
				Debit:          l.Debit,
				Credit:         l.Credit,
				RunningBalance: running[l.AccountID],
			})
		}
	}
	return result
}

// BuildTrialBalance aggregates posted entries dated on or before asOf.
// Each account's net position is reported in exactly one column: its normal side when
// the balance is positive, the opposite side when it has gone negative.
func BuildTrialBalance(accounts map[string]domain.Account, entries []domain.JournalEntry, asOf time.Time) domain.TrialBalance {
	type totals struct {
		debit, credit decimal.Decimal
	}
	perAccount := make(map[string]*totals)
	for _, e := range postedOnly(entries) {
		if !onOrBefore(e.EntryDate, asOf) {
			continue
		}
		for _, l := range e.Lines {
			t, ok := perAccount[l.AccountID]
			if !ok {
				t = &totals{}
				perAccount[l.AccountID] = t
			}
			t.debit = t.debit.Add(l.Debit)
			t.credit = t.credit.Add(l.Credit)
		}
	}

	tb := domain.TrialBalance{
		AsOf:         asOf,
		Rows:         []domain.TrialBalanceRow{},
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for accountID, t := range perAccount {
		if t.debit.IsZero() && t.credit.IsZero() {
			continue
		}
		acc, ok := accounts[accountID]
		if !ok {
			acc = domain.Account{AccountID: accountID, AccountType: domain.Asset}
		}
		row := domain.TrialBalanceRow{
			AccountID:     accountID,
			AccountCode:   acc.Code,
			AccountName:   acc.Name,
			AccountType:   acc.AccountType,
			NormalBalance: acc.NormalBalance(),
			TotalDebits:   t.debit,
			TotalCredits:  t.credit,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
		}
		net := t.debit.Sub(t.credit)
		if net.IsPositive() {
			row.Debit = net
		} else if net.IsNegative() {
			row.Credit = net.Neg()
		}
		tb.TotalDebits = tb.TotalDebits.Add(row.Debit)
		tb.TotalCredits = tb.TotalCredits.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}
	sort.Slice(tb.Rows, func(i, j int) bool {
		if tb.Rows[i].AccountCode != tb.Rows[j].AccountCode {
			return tb.Rows[i].AccountCode < tb.Rows[j].AccountCode
		}
		return tb.Rows[i].AccountID < tb.Rows[j].AccountID
	})
	tb.Difference = tb.TotalDebits.Sub(tb.TotalCredits)
	tb.IsBalanced = tb.Difference.Abs().LessThan(BalanceTolerance)
	return tb
}
