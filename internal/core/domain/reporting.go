package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one posting in an account's chronological ledger.
type LedgerEntry struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	AccountID      string          `json:"accountID"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // in the account's normal-balance convention
}

// TrialBalanceRow represents a single row in a trial balance report.
// Only one of Debit/Credit is non-zero: the side the account's net position falls on.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	NormalBalance NormalBalance   `json:"normalBalance"`
	TotalDebits   decimal.Decimal `json:"totalDebits"`  // gross activity
	TotalCredits  decimal.Decimal `json:"totalCredits"` // gross activity
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// TrialBalance lists every account with activity and the two grand totals.
type TrialBalance struct {
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
	Difference   decimal.Decimal   `json:"difference"` // TotalDebits - TotalCredits
	IsBalanced   bool              `json:"isBalanced"`
}

// LedgerFilter narrows a ledger query. Nil fields mean "no bound".
type LedgerFilter struct {
	AccountID *string
	StartDate *time.Time
	EndDate   *time.Time
}
