package mapping

import (
	"github.com/SscSPs/books_backend/internal/core/domain"
	"github.com/SscSPs/books_backend/internal/models"
)

// ToModelBankTransaction converts a domain BankTransaction to a model BankTransaction
func ToModelBankTransaction(d domain.BankTransaction) models.BankTransaction {
	return models.BankTransaction{
		TransactionID:    d.TransactionID,
		BusinessID:       d.BusinessID,
		BankAccountID:    d.BankAccountID,
		TransactionDate:  d.TransactionDate,
		Description:      d.Description,
		Amount:           d.Amount,
		ReconciliationID: d.ReconciliationID,
		AuditFields:      models.AuditFields(d.AuditFields),
	}
}

// ToDomainBankTransaction converts a model BankTransaction to a domain BankTransaction
func ToDomainBankTransaction(m models.BankTransaction) domain.BankTransaction {
	return domain.BankTransaction{
		TransactionID:    m.TransactionID,
		BusinessID:       m.BusinessID,
		BankAccountID:    m.BankAccountID,
		TransactionDate:  m.TransactionDate,
		Description:      m.Description,
		Amount:           m.Amount,
		ReconciliationID: m.ReconciliationID,
		AuditFields:      domain.AuditFields(m.AuditFields),
	}
}

// ToModelReconciliation converts a domain Reconciliation to a model Reconciliation
func ToModelReconciliation(d domain.Reconciliation) models.Reconciliation {
	return models.Reconciliation{
		ReconciliationID:  d.ReconciliationID,
		BusinessID:        d.BusinessID,
		BankAccountID:     d.BankAccountID,
		StatementDate:     d.StatementDate,
		StatementBalance:  d.StatementBalance,
		OpeningBalance:    d.OpeningBalance,
		ReconciledBalance: d.ReconciledBalance,
		Difference:        d.Difference,
		Status:            string(d.Status),
		AuditFields:       models.AuditFields(d.AuditFields),
	}
}

// ToDomainReconciliation converts a model Reconciliation and its transaction ids to a domain Reconciliation
func ToDomainReconciliation(m models.Reconciliation, transactionIDs []string) domain.Reconciliation {
	return domain.Reconciliation{
		ReconciliationID:  m.ReconciliationID,
		BusinessID:        m.BusinessID,
		BankAccountID:     m.BankAccountID,
		StatementDate:     m.StatementDate,
		StatementBalance:  m.StatementBalance,
		OpeningBalance:    m.OpeningBalance,
		ReconciledBalance: m.ReconciledBalance,
		Difference:        m.Difference,
		Status:            domain.ReconciliationStatus(m.Status),
		TransactionIDs:    transactionIDs,
		AuditFields:       domain.AuditFields(m.AuditFields),
	}
}
