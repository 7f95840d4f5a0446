package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	"github.com/SscSPs/books_backend/internal/models"
	"github.com/SscSPs/books_backend/internal/utils/mapping"
	"github.com/SscSPs/books_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, business_id, entry_number, entry_date, description, source_type, source_id,
	status, posted_at, voided_at, void_reason, version,
	created_at, created_by, last_updated_at, last_updated_by`

// sourceUniqueIndex guards one entry per upstream document, see migration 000004.
const sourceUniqueIndex = "uq_journal_entries_source"

const lineColumns = `line_id, entry_id, line_no, account_id, description, debit, credit`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// CreateEntry saves the entry and its lines, assigns the next entry number of the
// business and applies balanceChanges, all within one DB transaction.
func (r *PgxJournalRepository) CreateEntry(ctx context.Context, entry *domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	created := *entry
	created.Version = 1

	err := r.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var seq int64
		err := tx.QueryRow(ctx, `
			INSERT INTO journal_entry_sequences (business_id, last_value)
			VALUES ($1, 1)
			ON CONFLICT (business_id) DO UPDATE SET last_value = journal_entry_sequences.last_value + 1
			RETURNING last_value;`, created.BusinessID).Scan(&seq)
		if err != nil {
			return apperrors.NewAppError(500, "failed to allocate entry number", err)
		}
		created.EntryNumber = domain.FormatEntryNumber(seq)

		m := mapping.ToModelJournalEntry(created)
		_, err = tx.Exec(ctx, `
			INSERT INTO journal_entries (`+entryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`,
			m.EntryID, m.BusinessID, m.EntryNumber, m.EntryDate, m.Description, m.SourceType, m.SourceID,
			m.Status, m.PostedAt, m.VoidedAt, m.VoidReason, m.Version,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolationOn(err, sourceUniqueIndex) {
				return fmt.Errorf("%w: %s %s is already recorded", apperrors.ErrDuplicate, created.SourceType, *created.SourceID)
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, m.EntryID)
			}
			return apperrors.NewAppError(500, "failed to insert journal entry "+m.EntryID, err)
		}

		if err := insertLines(ctx, tx, created.Lines); err != nil {
			return err
		}
		return applyBalanceChanges(ctx, tx, created.BusinessID, balanceChanges, created.CreatedBy, created.CreatedAt)
	})
	if err != nil {
		return err
	}

	entry.EntryNumber = created.EntryNumber
	entry.Version = created.Version
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, l := range lines {
		m := mapping.ToModelJournalLine(l)
		batch.Queue(`INSERT INTO journal_entry_lines (`+lineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			m.LineID, m.EntryID, m.LineNo, m.AccountID, m.Description, m.Debit, m.Credit)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert journal entry lines", err)
	}
	return nil
}

// loadLines returns the lines of the given entries keyed by entry id, in line order.
func loadLines(ctx context.Context, q querier, entryIDs []string) (map[string][]models.JournalLine, error) {
	out := make(map[string][]models.JournalLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM journal_entry_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_no;`, entryIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal entry lines", err)
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalLine])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan journal entry lines", err)
	}
	for _, l := range lines {
		out[l.EntryID] = append(out[l.EntryID], l)
	}
	return out, nil
}

// withLines attaches lines to entry headers, preserving header order.
func withLines(ctx context.Context, q querier, headers []models.JournalEntry) ([]domain.JournalEntry, error) {
	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.EntryID
	}
	lines, err := loadLines(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.JournalEntry, len(headers))
	for i, h := range headers {
		entries[i] = mapping.ToDomainJournalEntry(h, lines[h.EntryID])
	}
	return entries, nil
}

// FindEntryByID retrieves an entry and its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, businessID string, entryID string) (*domain.JournalEntry, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE business_id = $1 AND entry_id = $2;`, businessID, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find journal entry "+entryID, err)
	}
	header, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal entry " + entryID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to scan journal entry "+entryID, err)
	}

	entries, err := withLines(ctx, r.Pool, []models.JournalEntry{header})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// versionMismatch explains why a guarded write touched no row.
func versionMismatch(ctx context.Context, q querier, businessID, entryID string) error {
	var current int64
	err := q.QueryRow(ctx, `SELECT version FROM journal_entries WHERE business_id = $1 AND entry_id = $2;`, businessID, entryID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError("journal entry " + entryID + " not found")
	}
	if err != nil {
		return apperrors.NewAppError(500, "failed to read journal entry version", err)
	}
	return apperrors.NewConflictError(fmt.Sprintf("journal entry %s was modified concurrently (now at version %d)", entryID, current))
}

// UpdateEntry writes the mutation only if the stored version still matches.
func (r *PgxJournalRepository) UpdateEntry(ctx context.Context, mutation portsrepo.EntryMutation) error {
	e := mutation.Entry
	m := mapping.ToModelJournalEntry(e)

	return r.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE journal_entries
			SET entry_date = $1, description = $2, source_type = $3, source_id = $4, status = $5,
			    posted_at = $6, voided_at = $7, void_reason = $8, version = $9,
			    last_updated_at = $10, last_updated_by = $11
			WHERE business_id = $12 AND entry_id = $13 AND version = $14;`,
			m.EntryDate, m.Description, m.SourceType, m.SourceID, m.Status,
			m.PostedAt, m.VoidedAt, m.VoidReason, m.Version,
			m.LastUpdatedAt, m.LastUpdatedBy,
			m.BusinessID, m.EntryID, mutation.ExpectedVersion,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to update journal entry "+m.EntryID, err)
		}
		if tag.RowsAffected() == 0 {
			return versionMismatch(ctx, tx, m.BusinessID, m.EntryID)
		}

		if mutation.ReplaceLines {
			if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, m.EntryID); err != nil {
				return apperrors.NewAppError(500, "failed to delete journal entry lines", err)
			}
			if err := insertLines(ctx, tx, e.Lines); err != nil {
				return err
			}
		}
		return applyBalanceChanges(ctx, tx, e.BusinessID, mutation.BalanceChanges, e.LastUpdatedBy, e.LastUpdatedAt)
	})
}

// DeleteEntry removes a journal entry; its lines go with it via ON DELETE CASCADE.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, businessID string, entryID string, expectedVersion int64) error {
	return r.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE business_id = $1 AND entry_id = $2 AND version = $3;`,
			businessID, entryID, expectedVersion)
		if err != nil {
			return apperrors.NewAppError(500, "failed to delete journal entry "+entryID, err)
		}
		if tag.RowsAffected() == 0 {
			return versionMismatch(ctx, tx, businessID, entryID)
		}
		return nil
	})
}

// ListEntries retrieves a page of entries using token-based pagination.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, businessID string, filter portsrepo.JournalListFilter) ([]domain.JournalEntry, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	conds := []string{"business_id = $1"}
	args := []any{businessID}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != nil {
		conds = append(conds, "status = "+arg(string(*filter.Status)))
	}
	if filter.StartDate != nil {
		conds = append(conds, "entry_date >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conds = append(conds, "entry_date <= "+arg(*filter.EndDate))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, err
		}
		// Tuple comparison matches the ORDER BY below.
		conds = append(conds, fmt.Sprintf("(entry_date, created_at, entry_id) < (%s, %s, %s)",
			arg(cursor.EntryDate), arg(cursor.CreatedAt), arg(cursor.EntryID)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT ` + arg(limit+1) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list journal entries", err)
	}
	headers, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan journal entries", err)
	}

	var nextToken *string
	if len(headers) > limit {
		headers = headers[:limit]
		last := headers[limit-1]
		token := pagination.EncodeToken(pagination.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
		nextToken = &token
	}

	entries, err := withLines(ctx, r.Pool, headers)
	if err != nil {
		return nil, nil, err
	}
	return entries, nextToken, nil
}
