package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	"github.com/SscSPs/books_backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) *reportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetPostingSnapshot reads accounts, posted entries and their lines in one
// read-only REPEATABLE READ transaction so all three come from the same snapshot.
func (r *reportingRepository) GetPostingSnapshot(ctx context.Context, businessID string, until *time.Time) (*portsrepo.PostingSnapshot, error) {
	snapshot := &portsrepo.PostingSnapshot{}

	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := r.WithTx(ctx, opts, func(tx pgx.Tx) error {
		accounts, err := findAccounts(ctx, tx, `SELECT `+accountColumns+` FROM accounts WHERE business_id = $1;`, businessID)
		if err != nil {
			return err
		}
		snapshot.Accounts = accounts

		query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE business_id = $1 AND status = $2`
		args := []any{businessID, string(domain.StatusPosted)}
		if until != nil {
			query += ` AND entry_date <= $3`
			args = append(args, *until)
		}
		query += ` ORDER BY entry_date, entry_number;`

		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return apperrors.NewAppError(500, "error querying posted entries", err)
		}
		headers, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
		if err != nil {
			return apperrors.NewAppError(500, "error scanning posted entries", err)
		}

		snapshot.Entries, err = withLines(ctx, tx, headers)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
