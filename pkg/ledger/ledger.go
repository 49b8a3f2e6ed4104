package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kassa/kassa/internal/date"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	Income  EntryKind = "income"
	Expense EntryKind = "expense"
)

// entryNamespace is the fixed UUIDv5 namespace for entries born from a
// recurrence rule. It must never change: the derived uid is the entry's
// public identity and part of what makes materialization idempotent.
var entryNamespace = uuid.MustParse("7a9c6f2e-5d14-4b38-9f14-3ce0a7b14a55")

// Entry is one row of the ledger: either a manually recorded transaction or
// an occurrence materialized from a recurrence rule.
type Entry struct {
	Id              int
	Uid             string
	Kind            EntryKind
	Amount          decimal.Decimal
	Currency        string
	CategoryId      *int
	Title           string
	Description     string
	TransactionDate date.Date
	// RuleId and OccurrenceDate back-reference the originating rule for
	// materialized entries; both are nil for manual ones.
	RuleId         *int
	OccurrenceDate *date.Date
}

// OccurrenceUid derives the deterministic identity of a materialized entry
// from (owner, rule, occurrence date). Wall-clock of insertion never
// participates, so re-materializing a window regenerates the same uid.
func OccurrenceUid(ownerId int, ruleId int, day date.Date) string {
	return uuid.NewSHA1(entryNamespace, []byte(fmt.Sprintf("%d:%d:%s", ownerId, ruleId, day))).String()
}

// NewManualUid returns a random identity for a hand-entered transaction.
func NewManualUid() string {
	return uuid.NewString()
}
