package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is a row of the bank_transactions table.
type BankTransaction struct {
	TransactionID    string          `db:"transaction_id"`
	BusinessID       string          `db:"business_id"`
	BankAccountID    string          `db:"bank_account_id"`
	TransactionDate  time.Time       `db:"transaction_date"`
	Description      string          `db:"description"`
	Amount           decimal.Decimal `db:"amount"`
	ReconciliationID *string         `db:"reconciliation_id"`
	AuditFields
}

// Reconciliation is a row of the reconciliations table.
type Reconciliation struct {
	ReconciliationID  string          `db:"reconciliation_id"`
	BusinessID        string          `db:"business_id"`
	BankAccountID     string          `db:"bank_account_id"`
	StatementDate     time.Time       `db:"statement_date"`
	StatementBalance  decimal.Decimal `db:"statement_balance"`
	OpeningBalance    decimal.Decimal `db:"opening_balance"`
	ReconciledBalance decimal.Decimal `db:"reconciled_balance"`
	Difference        decimal.Decimal `db:"difference"`
	Status            string          `db:"status"`
	AuditFields
}
