package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kassa/kassa/internal/date"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type EntryRepo interface {
	// Store persists a single manually entered transaction and returns its id.
	Store(ctx context.Context, userId int, entry Entry) (int, error)
	// StoreAll inserts materialized entries in one batched write, silently
	// skipping rows that collide with the (user, rule, transaction date)
	// uniqueness constraint. This conflict-ignoring insert is the only
	// concurrency mechanism materialization relies on.
	StoreAll(ctx context.Context, userId int, entries []Entry) error
	FindByDateRange(ctx context.Context, userId int, from, to date.Date) ([]Entry, error)
	CountForOwner(ctx context.Context, userId int) (int, error)
	Delete(ctx context.Context, userId int, uid string) (bool, error)
}

type EntryRepoImpl struct {
	db *pgxpool.Pool
}

func NewEntryRepo(db *pgxpool.Pool) *EntryRepoImpl {
	return &EntryRepoImpl{db: db}
}

const entryColumns = 11

func (r EntryRepoImpl) Store(ctx context.Context, userId int, entry Entry) (int, error) {
	query := `INSERT INTO ledger_entry (
					uid,
					user_id,
					kind,
					amount,
					currency,
					category_id,
					title,
					description,
					transaction_date,
					rule_id,
					occurrence_date
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`

	var lastInsertID int
	err := r.db.QueryRow(ctx, query, entryArgs(userId, entry)...).Scan(&lastInsertID)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}

	return lastInsertID, nil
}

func (r EntryRepoImpl) StoreAll(ctx context.Context, userId int, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*entryColumns)
	for i, entry := range entries {
		base := i * entryColumns
		group := make([]string, entryColumns)
		for j := range group {
			group[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(group, ", ")+")")
		args = append(args, entryArgs(userId, entry)...)
	}

	query := `INSERT INTO ledger_entry (
					uid,
					user_id,
					kind,
					amount,
					currency,
					category_id,
					title,
					description,
					transaction_date,
					rule_id,
					occurrence_date
				) VALUES ` + strings.Join(placeholders, ", ") + ` ON CONFLICT DO NOTHING`

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		err := fmt.Errorf("could not execute batched insert: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r EntryRepoImpl) FindByDateRange(ctx context.Context, userId int, from, to date.Date) ([]Entry, error) {
	query := `SELECT id, uid, kind, amount::text, currency, category_id, title, description,
					transaction_date, rule_id, occurrence_date
				FROM ledger_entry
				WHERE user_id = $1 AND transaction_date BETWEEN $2 AND $3
				ORDER BY transaction_date, id`
	rows, err := r.db.Query(ctx, query, userId, from.Time(), to.Time())
	if err != nil {
		err := fmt.Errorf("could not query entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var kind, amount string
		var categoryId, ruleId sql.NullInt64
		var description sql.NullString
		var transactionDate time.Time
		var occurrenceDate sql.NullTime
		if err := rows.Scan(
			&entry.Id,
			&entry.Uid,
			&kind,
			&amount,
			&entry.Currency,
			&categoryId,
			&entry.Title,
			&description,
			&transactionDate,
			&ruleId,
			&occurrenceDate,
		); err != nil {
			err := fmt.Errorf("could not scan entry: %w", err)
			log.Error(err)
			return nil, err
		}
		entry.Kind = EntryKind(kind)
		parsedAmount, err := decimal.NewFromString(amount)
		if err != nil {
			err := fmt.Errorf("could not parse amount %q: %w", amount, err)
			log.Error(err)
			return nil, err
		}
		entry.Amount = parsedAmount
		if categoryId.Valid {
			id := int(categoryId.Int64)
			entry.CategoryId = &id
		}
		entry.Description = description.String
		entry.TransactionDate = date.FromTime(transactionDate)
		if ruleId.Valid {
			id := int(ruleId.Int64)
			entry.RuleId = &id
		}
		if occurrenceDate.Valid {
			d := date.FromTime(occurrenceDate.Time)
			entry.OccurrenceDate = &d
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return entries, nil
}

func (r EntryRepoImpl) CountForOwner(ctx context.Context, userId int) (int, error) {
	query := "SELECT COUNT(*) FROM ledger_entry WHERE user_id = $1"
	var count int
	if err := r.db.QueryRow(ctx, query, userId).Scan(&count); err != nil {
		err := fmt.Errorf("could not count entries: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r EntryRepoImpl) Delete(ctx context.Context, userId int, uid string) (bool, error) {
	query := "DELETE FROM ledger_entry WHERE uid = $1 AND user_id = $2"
	result, err := r.db.Exec(ctx, query, uid, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func entryArgs(userId int, entry Entry) []any {
	var occurrenceDate interface{}
	if entry.OccurrenceDate != nil {
		occurrenceDate = entry.OccurrenceDate.Time()
	}
	return []any{
		entry.Uid,
		userId,
		string(entry.Kind),
		entry.Amount.String(),
		entry.Currency,
		entry.CategoryId,
		entry.Title,
		entry.Description,
		entry.TransactionDate.Time(),
		entry.RuleId,
		occurrenceDate,
	}
}
