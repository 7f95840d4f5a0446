// Package memory is a process-local implementation of the repository ports.
// It backs the service tests and development runs without PGSQL_URL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	"github.com/SscSPs/books_backend/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// Store keeps every table in maps guarded by one RWMutex. Each method is atomic.
type Store struct {
	mu              sync.RWMutex
	accounts        map[string]domain.Account
	entries         map[string]domain.JournalEntry
	sequences       map[string]int64
	bankTxns        map[string]domain.BankTransaction
	reconciliations map[string]domain.Reconciliation
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:        make(map[string]domain.Account),
		entries:         make(map[string]domain.JournalEntry),
		sequences:       make(map[string]int64),
		bankTxns:        make(map[string]domain.BankTransaction),
		reconciliations: make(map[string]domain.Reconciliation),
	}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.BankRepositoryFacade    = (*Store)(nil)
	_ portsrepo.ReportingRepository     = (*Store)(nil)
)

// NewRepositoryProvider wires one store behind every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: store,
		JournalRepo: store,
		BankRepo:    store,
		ReportRepo:  store,
	}
}

func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return e
}

// --- accounts ---

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.BusinessID == account.BusinessID && existing.Code == account.Code {
			return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
		}
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) FindAccountByID(_ context.Context, businessID string, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok || acc.BusinessID != businessID {
		return nil, apperrors.NewNotFoundError("account " + accountID + " not found")
	}
	return &acc, nil
}

func (s *Store) FindAccountsByIDs(_ context.Context, businessID string, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok && acc.BusinessID == businessID {
			out[id] = acc
		}
	}
	return out, nil
}

func (s *Store) ListAccounts(_ context.Context, businessID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAccountsLocked(businessID), nil
}

func (s *Store) listAccountsLocked(businessID string) []domain.Account {
	out := []domain.Account{}
	for _, acc := range s.accounts {
		if acc.BusinessID == businessID {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// applyBalanceChangesLocked checks every account first so a failure leaves balances untouched.
func (s *Store) applyBalanceChangesLocked(businessID string, changes map[string]decimal.Decimal, updatedBy string, at time.Time) error {
	for id := range changes {
		if acc, ok := s.accounts[id]; !ok || acc.BusinessID != businessID {
			return apperrors.NewNotFoundError("account " + id + " not found")
		}
	}
	for id, delta := range changes {
		acc := s.accounts[id]
		acc.Balance = acc.Balance.Add(delta)
		acc.LastUpdatedAt = at
		acc.LastUpdatedBy = updatedBy
		s.accounts[id] = acc
	}
	return nil
}

// --- journal entries ---

func (s *Store) CreateEntry(_ context.Context, entry *domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
	}
	if entry.HasExternalSource() {
		for _, e := range s.entries {
			if e.BusinessID == entry.BusinessID && e.SourceType == entry.SourceType && e.HasExternalSource() && *e.SourceID == *entry.SourceID {
				return fmt.Errorf("%w: %s %s is already recorded as %s", apperrors.ErrDuplicate, entry.SourceType, *entry.SourceID, e.EntryNumber)
			}
		}
	}
	if err := s.applyBalanceChangesLocked(entry.BusinessID, balanceChanges, entry.CreatedBy, entry.CreatedAt); err != nil {
		return err
	}

	s.sequences[entry.BusinessID]++
	entry.EntryNumber = domain.FormatEntryNumber(s.sequences[entry.BusinessID])
	entry.Version = 1
	s.entries[entry.EntryID] = copyEntry(*entry)
	return nil
}

func (s *Store) FindEntryByID(_ context.Context, businessID string, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[entryID]
	if !ok || e.BusinessID != businessID {
		return nil, apperrors.NewNotFoundError("journal entry " + entryID + " not found")
	}
	e = copyEntry(e)
	return &e, nil
}

// checkVersionLocked returns the stored entry when expectedVersion is current.
func (s *Store) checkVersionLocked(businessID, entryID string, expectedVersion int64) (domain.JournalEntry, error) {
	stored, ok := s.entries[entryID]
	if !ok || stored.BusinessID != businessID {
		return domain.JournalEntry{}, apperrors.NewNotFoundError("journal entry " + entryID + " not found")
	}
	if stored.Version != expectedVersion {
		return domain.JournalEntry{}, apperrors.NewConflictError(fmt.Sprintf("journal entry %s was modified concurrently", entryID))
	}
	return stored, nil
}

func (s *Store) UpdateEntry(_ context.Context, mutation portsrepo.EntryMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := mutation.Entry
	stored, err := s.checkVersionLocked(next.BusinessID, next.EntryID, mutation.ExpectedVersion)
	if err != nil {
		return err
	}
	if err := s.applyBalanceChangesLocked(next.BusinessID, mutation.BalanceChanges, next.LastUpdatedBy, next.LastUpdatedAt); err != nil {
		return err
	}

	if !mutation.ReplaceLines {
		next.Lines = stored.Lines
	}
	next.EntryNumber = stored.EntryNumber
	next.AuditFields.CreatedAt = stored.CreatedAt
	next.AuditFields.CreatedBy = stored.CreatedBy
	s.entries[next.EntryID] = copyEntry(next)
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, businessID string, entryID string, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.checkVersionLocked(businessID, entryID, expectedVersion); err != nil {
		return err
	}
	delete(s.entries, entryID)
	return nil
}

func (s *Store) ListEntries(_ context.Context, businessID string, filter portsrepo.JournalListFilter) ([]domain.JournalEntry, *string, error) {
	var cursor *pagination.EntryCursor
	if filter.NextToken != nil && *filter.NextToken != "" {
		c, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, err
		}
		cursor = &c
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []domain.JournalEntry{}
	for _, e := range s.entries {
		switch {
		case e.BusinessID != businessID:
			continue
		case filter.Status != nil && e.Status != *filter.Status:
			continue
		case filter.StartDate != nil && e.EntryDate.Before(*filter.StartDate):
			continue
		case filter.EndDate != nil && e.EntryDate.After(*filter.EndDate):
			continue
		case cursor != nil && cursor.Before(e.EntryDate, e.CreatedAt, e.EntryID):
			continue
		}
		matches = append(matches, copyEntry(e))
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.After(b.EntryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.EntryID > b.EntryID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(matches) <= limit {
		return matches, nil, nil
	}
	page := matches[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(pagination.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
	return page, &token, nil
}

// GetPostingSnapshot reads accounts and posted entries under one read lock.
func (s *Store) GetPostingSnapshot(_ context.Context, businessID string, until *time.Time) (*portsrepo.PostingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := &portsrepo.PostingSnapshot{
		Accounts: make(map[string]domain.Account),
		Entries:  []domain.JournalEntry{},
	}
	for _, acc := range s.listAccountsLocked(businessID) {
		snapshot.Accounts[acc.AccountID] = acc
	}
	for _, e := range s.entries {
		if e.BusinessID != businessID || e.Status != domain.StatusPosted {
			continue
		}
		if until != nil && e.EntryDate.After(*until) {
			continue
		}
		snapshot.Entries = append(snapshot.Entries, copyEntry(e))
	}
	sort.Slice(snapshot.Entries, func(i, j int) bool { return snapshot.Entries[i].EntryNumber < snapshot.Entries[j].EntryNumber })
	return snapshot, nil
}

// --- bank transactions and reconciliations ---

func (s *Store) SaveBankTransaction(_ context.Context, txn domain.BankTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bankTxns[txn.TransactionID]; exists {
		return fmt.Errorf("%w: bank transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
	}
	s.bankTxns[txn.TransactionID] = txn
	return nil
}

func (s *Store) ListUnreconciled(_ context.Context, businessID string, bankAccountID string) ([]domain.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.BankTransaction{}
	for _, t := range s.bankTxns {
		if t.BusinessID == businessID && t.BankAccountID == bankAccountID && !t.IsReconciled() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].TransactionID < out[j].TransactionID
	})
	return out, nil
}

func (s *Store) FindBankTransactionsByIDs(_ context.Context, businessID string, ids []string) (map[string]domain.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.BankTransaction, len(ids))
	for _, id := range ids {
		if t, ok := s.bankTxns[id]; ok && t.BusinessID == businessID {
			out[id] = t
		}
	}
	return out, nil
}

func (s *Store) FindLastCompletedReconciliation(_ context.Context, businessID string, bankAccountID string) (*domain.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last *domain.Reconciliation
	for _, r := range s.reconciliations {
		if r.BusinessID != businessID || r.BankAccountID != bankAccountID || r.Status != domain.ReconciliationCompleted {
			continue
		}
		if last == nil || r.StatementDate.After(last.StatementDate) ||
			(r.StatementDate.Equal(last.StatementDate) && r.CreatedAt.After(last.CreatedAt)) {
			r := r
			last = &r
		}
	}
	if last == nil {
		return nil, apperrors.NewNotFoundError("no completed reconciliation for account " + bankAccountID)
	}
	return last, nil
}

func (s *Store) SaveCompletedReconciliation(_ context.Context, rec domain.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range rec.TransactionIDs {
		t, ok := s.bankTxns[id]
		if !ok || t.BusinessID != rec.BusinessID {
			return apperrors.NewNotFoundError("bank transaction " + id + " not found")
		}
		if t.IsReconciled() {
			return apperrors.NewConflictError("bank transaction " + id + " is already reconciled")
		}
	}
	recID := rec.ReconciliationID
	for _, id := range rec.TransactionIDs {
		t := s.bankTxns[id]
		t.ReconciliationID = &recID
		t.LastUpdatedAt = rec.CreatedAt
		t.LastUpdatedBy = rec.CreatedBy
		s.bankTxns[id] = t
	}
	rec.TransactionIDs = append([]string(nil), rec.TransactionIDs...)
	s.reconciliations[rec.ReconciliationID] = rec
	return nil
}
