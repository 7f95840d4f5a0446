package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	"github.com/SscSPs/books_backend/internal/models"
	"github.com/SscSPs/books_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, business_id, code, name, account_type, is_active,
	created_at, created_by, last_updated_at, last_updated_by, balance`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.BusinessID,
		m.Code,
		m.Name,
		m.AccountType,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Balance,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, businessID string, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE business_id = $1 AND account_id = $2;`

	rows, err := r.Pool.Query(ctx, query, businessID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account " + accountID + " not found")
		}
		return nil, fmt.Errorf("failed to scan account %s: %w", accountID, err)
	}

	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, businessID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	return findAccounts(ctx, r.Pool, `SELECT `+accountColumns+` FROM accounts WHERE business_id = $1 AND account_id = ANY($2);`, businessID, accountIDs)
}

// ListAccounts retrieves the chart of accounts of a business.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, businessID string) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE business_id = $1 ORDER BY code;`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}

	accounts := make([]domain.Account, len(ms))
	for i, m := range ms {
		accounts[i] = mapping.ToDomainAccount(m)
	}
	return accounts, nil
}

func findAccounts(ctx context.Context, q querier, query string, args ...any) (map[string]domain.Account, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}

	out := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		out[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return out, nil
}

// applyBalanceChanges locks the touched accounts in id order and adds each delta to its balance.
func applyBalanceChanges(ctx context.Context, tx pgx.Tx, businessID string, changes map[string]decimal.Decimal, updatedBy string, at time.Time) error {
	if len(changes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	locked, err := findAccounts(ctx, tx,
		`SELECT `+accountColumns+` FROM accounts WHERE business_id = $1 AND account_id = ANY($2) ORDER BY account_id FOR UPDATE;`,
		businessID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return apperrors.NewNotFoundError("account " + id + " not found")
		}
	}

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`
			UPDATE accounts
			SET balance = balance + $1, last_updated_at = $2, last_updated_by = $3
			WHERE business_id = $4 AND account_id = $5;`,
			changes[id], at, updatedBy, businessID, id)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}
	return nil
}
