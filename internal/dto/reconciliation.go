package dto

import (
	"time"

	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBankTransactionRequest records one line of a bank feed.
type CreateBankTransactionRequest struct {
	BankAccountID   string    `json:"bankAccountID" binding:"required"`
	TransactionDate time.Time `json:"transactionDate" binding:"required"`
	Description     string    `json:"description"`
	// Amount is signed: deposits positive, withdrawals negative.
	Amount string `json:"amount" binding:"required,decimal_amount"`
}

// BankTransactionResponse defines the data returned for a bank transaction.
type BankTransactionResponse struct {
	TransactionID    string          `json:"transactionID"`
	BankAccountID    string          `json:"bankAccountID"`
	TransactionDate  time.Time       `json:"transactionDate"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	ReconciliationID *string         `json:"reconciliationID,omitempty"`
}

// ReconciliationRequest is shared by preview and completion.
type ReconciliationRequest struct {
	BankAccountID    string    `json:"bankAccountID" binding:"required"`
	StatementDate    time.Time `json:"statementDate" binding:"required"`
	StatementBalance string    `json:"statementBalance" binding:"required,decimal_amount"`
	// OpeningBalance defaults to the statement balance of the last completed reconciliation.
	OpeningBalance *string  `json:"openingBalance" binding:"omitempty,decimal_amount"`
	TransactionIDs []string `json:"transactionIDs" binding:"dive,required"`
}

// ReconciliationResponse reports the reconciliation figures.
type ReconciliationResponse struct {
	ReconciliationID  string                      `json:"reconciliationID,omitempty"`
	BankAccountID     string                      `json:"bankAccountID"`
	StatementDate     time.Time                   `json:"statementDate"`
	StatementBalance  decimal.Decimal             `json:"statementBalance"`
	OpeningBalance    decimal.Decimal             `json:"openingBalance"`
	ReconciledBalance decimal.Decimal             `json:"reconciledBalance"`
	Difference        decimal.Decimal             `json:"difference"`
	CanComplete       bool                        `json:"canComplete"`
	Status            domain.ReconciliationStatus `json:"status"`
	TransactionIDs    []string                    `json:"transactionIDs"`
}

// ToBankTransactionResponse converts a domain.BankTransaction.
func ToBankTransactionResponse(t *domain.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		TransactionID:    t.TransactionID,
		BankAccountID:    t.BankAccountID,
		TransactionDate:  t.TransactionDate,
		Description:      t.Description,
		Amount:           t.Amount,
		ReconciliationID: t.ReconciliationID,
	}
}

// ToBankTransactionResponses converts a slice of domain.BankTransaction.
func ToBankTransactionResponses(txns []domain.BankTransaction) []BankTransactionResponse {
	res := make([]BankTransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToBankTransactionResponse(&txns[i])
	}
	return res
}

// ToReconciliationResponse converts a domain.Reconciliation.
func ToReconciliationResponse(r *domain.Reconciliation, canComplete bool) ReconciliationResponse {
	return ReconciliationResponse{
		ReconciliationID:  r.ReconciliationID,
		BankAccountID:     r.BankAccountID,
		StatementDate:     r.StatementDate,
		StatementBalance:  r.StatementBalance,
		OpeningBalance:    r.OpeningBalance,
		ReconciledBalance: r.ReconciledBalance,
		Difference:        r.Difference,
		CanComplete:       canComplete,
		Status:            r.Status,
		TransactionIDs:    r.TransactionIDs,
	}
}
