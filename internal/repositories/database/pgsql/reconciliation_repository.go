package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	"github.com/SscSPs/books_backend/internal/models"
	"github.com/SscSPs/books_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bankTransactionColumns = `transaction_id, business_id, bank_account_id, transaction_date, description, amount,
	reconciliation_id, created_at, created_by, last_updated_at, last_updated_by`

const reconciliationColumns = `reconciliation_id, business_id, bank_account_id, statement_date, statement_balance,
	opening_balance, reconciled_balance, difference, status,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxBankRepository struct {
	BaseRepository
}

func newPgxBankRepository(pool *pgxpool.Pool) *PgxBankRepository {
	return &PgxBankRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankRepositoryFacade = (*PgxBankRepository)(nil)

func (r *PgxBankRepository) SaveBankTransaction(ctx context.Context, txn domain.BankTransaction) error {
	m := mapping.ToModelBankTransaction(txn)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO bank_transactions (`+bankTransactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		m.TransactionID, m.BusinessID, m.BankAccountID, m.TransactionDate, m.Description, m.Amount,
		m.ReconciliationID, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bank transaction %s", apperrors.ErrDuplicate, m.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to save bank transaction "+m.TransactionID, err)
	}
	return nil
}

func collectBankTransactions(rows pgx.Rows) ([]domain.BankTransaction, error) {
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BankTransaction])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan bank transactions", err)
	}
	out := make([]domain.BankTransaction, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainBankTransaction(m)
	}
	return out, nil
}

func (r *PgxBankRepository) ListUnreconciled(ctx context.Context, businessID string, bankAccountID string) ([]domain.BankTransaction, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+bankTransactionColumns+` FROM bank_transactions
		WHERE business_id = $1 AND bank_account_id = $2 AND reconciliation_id IS NULL
		ORDER BY transaction_date, transaction_id;`, businessID, bankAccountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list unreconciled bank transactions", err)
	}
	return collectBankTransactions(rows)
}

func (r *PgxBankRepository) FindBankTransactionsByIDs(ctx context.Context, businessID string, ids []string) (map[string]domain.BankTransaction, error) {
	out := make(map[string]domain.BankTransaction, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+bankTransactionColumns+` FROM bank_transactions WHERE business_id = $1 AND transaction_id = ANY($2);`, businessID, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find bank transactions", err)
	}
	txns, err := collectBankTransactions(rows)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		out[t.TransactionID] = t
	}
	return out, nil
}

func (r *PgxBankRepository) FindLastCompletedReconciliation(ctx context.Context, businessID string, bankAccountID string) (*domain.Reconciliation, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+reconciliationColumns+` FROM reconciliations
		WHERE business_id = $1 AND bank_account_id = $2 AND status = $3
		ORDER BY statement_date DESC, created_at DESC
		LIMIT 1;`, businessID, bankAccountID, string(domain.ReconciliationCompleted))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find last reconciliation", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Reconciliation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no completed reconciliation for account " + bankAccountID)
		}
		return nil, apperrors.NewAppError(500, "failed to scan reconciliation", err)
	}

	idRows, err := r.Pool.Query(ctx, `SELECT transaction_id FROM bank_transactions WHERE reconciliation_id = $1 ORDER BY transaction_id;`, m.ReconciliationID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to load reconciled transactions", err)
	}
	ids, err := pgx.CollectRows(idRows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan reconciled transactions", err)
	}

	rec := mapping.ToDomainReconciliation(m, ids)
	return &rec, nil
}

// SaveCompletedReconciliation inserts the reconciliation and claims its transactions.
// The claim only matches rows that are still unreconciled, so a concurrent completion
// over the same transactions leaves one of the two with fewer rows than it asked for.
func (r *PgxBankRepository) SaveCompletedReconciliation(ctx context.Context, rec domain.Reconciliation) error {
	m := mapping.ToModelReconciliation(rec)

	return r.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reconciliations (`+reconciliationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
			m.ReconciliationID, m.BusinessID, m.BankAccountID, m.StatementDate, m.StatementBalance,
			m.OpeningBalance, m.ReconciledBalance, m.Difference, m.Status,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert reconciliation", err)
		}
		if len(rec.TransactionIDs) == 0 {
			return nil
		}

		tag, err := tx.Exec(ctx, `
			UPDATE bank_transactions
			SET reconciliation_id = $1, last_updated_at = $2, last_updated_by = $3
			WHERE business_id = $4 AND transaction_id = ANY($5) AND reconciliation_id IS NULL;`,
			m.ReconciliationID, m.CreatedAt, m.CreatedBy, m.BusinessID, rec.TransactionIDs)
		if err != nil {
			return apperrors.NewAppError(500, "failed to mark bank transactions reconciled", err)
		}
		if int(tag.RowsAffected()) != len(rec.TransactionIDs) {
			return apperrors.NewConflictError("some bank transactions were reconciled concurrently")
		}
		return nil
	})
}
