package services

import (
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:        NewAccountService(repos.AccountRepo),
		Journal:        NewJournalService(repos.JournalRepo, repos.AccountRepo),
		Reporting:      NewReportingService(repos.ReportRepo),
		Reconciliation: NewReconciliationService(repos.BankRepo, repos.AccountRepo),
	}
}
