package dto

import (
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceParams defines query parameters for the trial balance report.
type TrialBalanceParams struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02" time_utc:"1"`
}

// LedgerParams defines query parameters for the ledger report.
type LedgerParams struct {
	AccountID *string    `form:"accountID"`
	StartDate *time.Time `form:"startDate" time_format:"2006-01-02" time_utc:"1"`
	EndDate   *time.Time `form:"endDate" time_format:"2006-01-02" time_utc:"1"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID     string               `json:"accountID"`
	AccountCode   string               `json:"accountCode"`
	AccountName   string               `json:"accountName"`
	AccountType   domain.AccountType   `json:"accountType"`
	NormalBalance domain.NormalBalance `json:"normalBalance"`
	TotalDebits   decimal.Decimal      `json:"totalDebits"`
	TotalCredits  decimal.Decimal      `json:"totalCredits"`
	Debit         decimal.Decimal      `json:"debit"`
	Credit        decimal.Decimal      `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf         string                    `json:"asOf"`
	Rows         []TrialBalanceRowResponse `json:"rows"`
	TotalDebits  decimal.Decimal           `json:"totalDebits"`
	TotalCredits decimal.Decimal           `json:"totalCredits"`
	Difference   decimal.Decimal           `json:"difference"`
	IsBalanced   bool                      `json:"isBalanced"`
}

// LedgerEntryResponse is one row of an account ledger.
type LedgerEntryResponse struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	AccountID      string          `json:"accountID"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// LedgerResponse represents the ledger report response
type LedgerResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
}

// ToTrialBalanceResponse converts a domain.TrialBalance.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		AsOf:         tb.AsOf.Format("2006-01-02"),
		Rows:         make([]TrialBalanceRowResponse, len(tb.Rows)),
		TotalDebits:  tb.TotalDebits,
		TotalCredits: tb.TotalCredits,
		Difference:   tb.Difference,
		IsBalanced:   tb.IsBalanced,
	}
	for i, r := range tb.Rows {
		resp.Rows[i] = TrialBalanceRowResponse{
			AccountID:     r.AccountID,
			AccountCode:   r.AccountCode,
			AccountName:   r.AccountName,
			AccountType:   r.AccountType,
			NormalBalance: r.NormalBalance,
			TotalDebits:   r.TotalDebits,
			TotalCredits:  r.TotalCredits,
			Debit:         r.Debit,
			Credit:        r.Credit,
		}
	}
	return resp
}

// ToLedgerResponse converts ledger rows.
func ToLedgerResponse(rows []domain.LedgerEntry) LedgerResponse {
	resp := LedgerResponse{Entries: make([]LedgerEntryResponse, len(rows))}
	for i, r := range rows {
		resp.Entries[i] = LedgerEntryResponse{
			EntryID:        r.EntryID,
			EntryNumber:    r.EntryNumber,
			EntryDate:      r.EntryDate,
			AccountID:      r.AccountID,
			Description:    r.Description,
			Debit:          r.Debit,
			Credit:         r.Credit,
			RunningBalance: r.RunningBalance,
		}
	}
	return resp
}
