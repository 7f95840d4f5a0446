package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account naturally increases.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "DEBIT"
	CreditNormal NormalBalance = "CREDIT"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalBalance derives the normal balance from the account type.
// Asset and expense accounts are debit-normal, everything else is credit-normal.
func (t AccountType) NormalBalance() NormalBalance {
	switch t {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}

// Account represents a financial account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID   string          `json:"accountID"`   // Primary Key (e.g., UUID)
	BusinessID  string          `json:"businessID"`  // Owning tenant
	Code        string          `json:"code"`        // Short human identifier, e.g. "421000"
	Name        string          `json:"name"`        // User-defined name
	AccountType AccountType     `json:"accountType"` // ASSET, LIABILITY, etc.
	IsActive    bool            `json:"isActive"`    // Soft delete or status flag
	Balance     decimal.Decimal `json:"balance"`     // Persisted balance in normal-balance convention
	AuditFields
}

// NormalBalance is never stored; it always follows AccountType.
func (a Account) NormalBalance() NormalBalance {
	return a.AccountType.NormalBalance()
}
