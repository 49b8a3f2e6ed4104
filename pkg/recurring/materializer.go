package recurring

import (
	"context"
	"errors"
	"fmt"

	"github.com/kassa/kassa/internal/date"
	"github.com/kassa/kassa/pkg/ledger"
	log "github.com/sirupsen/logrus"
)

// Materializer expands every active rule of an owner over a date window and
// writes the resulting ledger entries. Safe to call repeatedly and
// concurrently for overlapping windows: entry identity is deterministic and
// the ledger store ignores conflicting rows, so re-runs are no-ops.
type Materializer interface {
	Materialize(ctx context.Context, ownerId int, windowStart, windowEnd date.Date) error
}

type MaterializerImpl struct {
	rules   RuleRepo
	entries ledger.EntryRepo
}

func NewMaterializer(rules RuleRepo, entries ledger.EntryRepo) *MaterializerImpl {
	return &MaterializerImpl{rules: rules, entries: entries}
}

// Materialize ensures a ledger entry exists for every (active rule, occurrence)
// pair inside [windowStart, windowEnd]. A rule that fails to expand or to
// write does not stop the others; its error is joined into the returned error
// so the caller can retry the whole window, which is harmless.
func (m *MaterializerImpl) Materialize(ctx context.Context, ownerId int, windowStart, windowEnd date.Date) error {
	rules, err := m.rules.FindAll(ctx, ownerId, true)
	if err != nil {
		return fmt.Errorf("failed to load active rules: %w", err)
	}

	var errs []error
	for _, rule := range rules {
		days, err := Occurrences(rule, windowStart, windowEnd)
		if err != nil {
			log.Warnf("skipping rule %d for user %d: %v", rule.Id, ownerId, err)
			errs = append(errs, fmt.Errorf("rule %d: %w", rule.Id, err))
			continue
		}
		if len(days) == 0 {
			continue
		}

		entries := make([]ledger.Entry, 0, len(days))
		for _, day := range days {
			entries = append(entries, entryForOccurrence(ownerId, rule, day))
		}
		// One batched write per rule keeps a transient store failure from
		// discarding the occurrences of the remaining rules.
		if err := m.entries.StoreAll(ctx, ownerId, entries); err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", rule.Id, err))
			continue
		}
		log.Debugf("materialized %d occurrence(s) of rule %d in [%s, %s]", len(entries), rule.Id, windowStart, windowEnd)
	}
	return errors.Join(errs...)
}

func entryForOccurrence(ownerId int, rule Rule, day date.Date) ledger.Entry {
	occurrence := day
	ruleId := rule.Id
	return ledger.Entry{
		Uid:             ledger.OccurrenceUid(ownerId, rule.Id, day),
		Kind:            ledger.EntryKind(rule.Kind),
		Amount:          rule.Amount,
		Currency:        rule.Currency,
		CategoryId:      rule.CategoryId,
		Title:           rule.Title,
		Description:     rule.Description,
		TransactionDate: day,
		RuleId:          &ruleId,
		OccurrenceDate:  &occurrence,
	}
}
