package recurring

import (
	"errors"
	"fmt"

	"github.com/kassa/kassa/internal/date"
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type RuleKind string

const (
	Income  RuleKind = "income"
	Expense RuleKind = "expense"
)

var ErrInvalidRule = errors.New("invalid recurrence rule")
var ErrRuleNotFound = errors.New("recurrence rule not found")

// Rule is a stored recurrence specification. Occurrences are never computed
// eagerly from it; callers materialize whatever window they need, on demand.
type Rule struct {
	Id          int
	Kind        RuleKind
	Amount      decimal.Decimal
	Currency    string
	CategoryId  *int
	Title       string
	Description string
	StartDate   date.Date
	// EndDate is inclusive; the zero Date means the rule is unbounded.
	EndDate   date.Date
	Frequency Frequency
	Interval  int
	// Timezone is informational for display only. Cadence arithmetic uses the
	// fixed calendar in internal/date, so DST can never move an occurrence.
	Timezone string
	Active   bool
}

// Validate rejects rules before they ever reach the calculator or the store.
func (r Rule) Validate() error {
	if r.Interval < 1 {
		return fmt.Errorf("%w: interval must be >= 1, got %d", ErrInvalidRule, r.Interval)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidRule, r.Amount)
	}
	if r.Currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidRule)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRule)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidRule)
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidRule, r.EndDate, r.StartDate)
	}
	switch r.Frequency {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, r.Frequency)
	}
	switch r.Kind {
	case Income, Expense:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
	}
	return nil
}
