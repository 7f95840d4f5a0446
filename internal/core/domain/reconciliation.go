package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is a line from a bank feed, recorded against a bank (asset) account.
type BankTransaction struct {
	TransactionID    string          `json:"transactionID"`
	BusinessID       string          `json:"businessID"`
	BankAccountID    string          `json:"bankAccountID"`
	TransactionDate  time.Time       `json:"transactionDate"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"` // positive = deposit, negative = withdrawal
	ReconciliationID *string         `json:"reconciliationID,omitempty"`
	AuditFields
}

// IsReconciled reports whether the transaction was included in a completed reconciliation.
func (t BankTransaction) IsReconciled() bool {
	return t.ReconciliationID != nil
}

// ReconciliationStatus is the state of a reconciliation.
type ReconciliationStatus string

const (
	ReconciliationInProgress ReconciliationStatus = "in_progress"
	ReconciliationCompleted  ReconciliationStatus = "completed"
)

// Reconciliation matches a bank statement balance against recorded bank transactions.
type Reconciliation struct {
	ReconciliationID  string               `json:"reconciliationID"`
	BusinessID        string               `json:"businessID"`
	BankAccountID     string               `json:"bankAccountID"`
	StatementDate     time.Time            `json:"statementDate"`
	StatementBalance  decimal.Decimal      `json:"statementBalance"`
	OpeningBalance    decimal.Decimal      `json:"openingBalance"`
	ReconciledBalance decimal.Decimal      `json:"reconciledBalance"` // opening + selected amounts
	Difference        decimal.Decimal      `json:"difference"`        // statement - reconciled
	Status            ReconciliationStatus `json:"status"`
	TransactionIDs    []string             `json:"transactionIDs"`
	AuditFields
}
