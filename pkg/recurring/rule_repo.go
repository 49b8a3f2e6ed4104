package recurring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kassa/kassa/internal/date"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type RuleRepo interface {
	// Store persists a new rule and returns its id.
	Store(ctx context.Context, userId int, rule Rule) (int, error)
	FindById(ctx context.Context, userId int, ruleId int) (Rule, error)
	// FindAll returns the owner's rules; with activeOnly only rules whose
	// active flag is set.
	FindAll(ctx context.Context, userId int, activeOnly bool) ([]Rule, error)
	Update(ctx context.Context, userId int, rule Rule) (bool, error)
	SetActive(ctx context.Context, userId int, ruleId int, active bool) (bool, error)
}

type RuleRepoImpl struct {
	db *pgxpool.Pool
}

func NewRuleRepo(db *pgxpool.Pool) *RuleRepoImpl {
	return &RuleRepoImpl{db: db}
}

const ruleColumns = `id, kind, amount::text, currency, category_id, title, description,
		start_date, end_date, frequency, interval_count, timezone, active`

func (r RuleRepoImpl) Store(ctx context.Context, userId int, rule Rule) (int, error) {
	query := `INSERT INTO recurring_rule (
					user_id,
					kind,
					amount,
					currency,
					category_id,
					title,
					description,
					start_date,
					end_date,
					frequency,
					interval_count,
					timezone,
					active
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`

	var lastInsertID int
	err := r.db.QueryRow(ctx, query,
		userId,
		string(rule.Kind),
		rule.Amount.String(),
		rule.Currency,
		rule.CategoryId,
		rule.Title,
		rule.Description,
		rule.StartDate.Time(),
		endDateParam(rule.EndDate),
		string(rule.Frequency),
		rule.Interval,
		rule.Timezone,
		rule.Active,
	).Scan(&lastInsertID)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}

	return lastInsertID, nil
}

func (r RuleRepoImpl) FindById(ctx context.Context, userId int, ruleId int) (Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM recurring_rule WHERE id = $1 AND user_id = $2`

	rule, err := scanRule(r.db.QueryRow(ctx, query, ruleId, userId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrRuleNotFound
		}
		err := fmt.Errorf("could not query rule: %w", err)
		log.Error(err)
		return Rule{}, err
	}
	return rule, nil
}

func (r RuleRepoImpl) FindAll(ctx context.Context, userId int, activeOnly bool) ([]Rule, error) {
	activeWhereQuery := ""
	if activeOnly {
		activeWhereQuery = "AND active"
	}
	query := fmt.Sprintf(
		`SELECT `+ruleColumns+` FROM recurring_rule WHERE user_id = $1 %s ORDER BY id`,
		activeWhereQuery,
	)
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query rules: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			err := fmt.Errorf("could not scan rule: %w", err)
			log.Error(err)
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return rules, nil
}

func (r RuleRepoImpl) Update(ctx context.Context, userId int, rule Rule) (bool, error) {
	query := `UPDATE recurring_rule SET
					kind = $1,
					amount = $2,
					currency = $3,
					category_id = $4,
					title = $5,
					description = $6,
					start_date = $7,
					end_date = $8,
					frequency = $9,
					interval_count = $10,
					timezone = $11,
					active = $12
				WHERE id = $13 AND user_id = $14`
	result, err := r.db.Exec(ctx, query,
		string(rule.Kind),
		rule.Amount.String(),
		rule.Currency,
		rule.CategoryId,
		rule.Title,
		rule.Description,
		rule.StartDate.Time(),
		endDateParam(rule.EndDate),
		string(rule.Frequency),
		rule.Interval,
		rule.Timezone,
		rule.Active,
		rule.Id,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r RuleRepoImpl) SetActive(ctx context.Context, userId int, ruleId int, active bool) (bool, error) {
	query := "UPDATE recurring_rule SET active = $1 WHERE id = $2 AND user_id = $3"
	result, err := r.db.Exec(ctx, query, active, ruleId, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (Rule, error) {
	var rule Rule
	var kind, frequency, amount string
	var categoryId sql.NullInt64
	var description, timezone sql.NullString
	var startDate time.Time
	var endDate sql.NullTime

	if err := row.Scan(
		&rule.Id,
		&kind,
		&amount,
		&rule.Currency,
		&categoryId,
		&rule.Title,
		&description,
		&startDate,
		&endDate,
		&frequency,
		&rule.Interval,
		&timezone,
		&rule.Active,
	); err != nil {
		return Rule{}, err
	}

	rule.Kind = RuleKind(kind)
	rule.Frequency = Frequency(frequency)
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return Rule{}, fmt.Errorf("could not parse amount %q: %w", amount, err)
	}
	rule.Amount = parsedAmount
	if categoryId.Valid {
		id := int(categoryId.Int64)
		rule.CategoryId = &id
	}
	rule.Description = description.String
	rule.Timezone = timezone.String
	rule.StartDate = date.FromTime(startDate)
	if endDate.Valid {
		rule.EndDate = date.FromTime(endDate.Time)
	}
	return rule, nil
}

func endDateParam(d date.Date) interface{} {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}
