package ledger

import (
	"context"
	"fmt"

	"github.com/kassa/kassa/internal/date"
	"github.com/kassa/kassa/internal/utils"
	"github.com/kassa/kassa/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Materializer is the slice of the recurring engine this package needs:
// backfill a window before it is read.
type Materializer interface {
	Materialize(ctx context.Context, ownerId int, windowStart, windowEnd date.Date) error
}

type Service interface {
	// ListRange materializes the requested window and returns every entry in
	// it, manual and rule-born alike.
	ListRange(ctx context.Context, from, to date.Date) ([]Entry, error)
	// ListCurrentMonth is the dashboard window: the calendar month of "today".
	ListCurrentMonth(ctx context.Context) ([]Entry, error)
	Create(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, uid string) (bool, error)
}

type ServiceImpl struct {
	repo         EntryRepo
	materializer Materializer
	clock        utils.Clock
}

func NewEntryService(repo EntryRepo, materializer Materializer, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, materializer: materializer, clock: clock}
}

func (s *ServiceImpl) ListRange(ctx context.Context, from, to date.Date) ([]Entry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	// Materialize lazily on read: a rule may have existed for months without
	// anyone looking at this window yet. A partial materialization failure
	// still surfaces whatever is already stored, and the next successful call
	// over an overlapping window self-heals the gap.
	if err := s.materializer.Materialize(ctx, userId, from, to); err != nil {
		log.Warnf("materialization incomplete for user %d window [%s, %s]: %v", userId, from, to, err)
	}

	return s.repo.FindByDateRange(ctx, userId, from, to)
}

func (s *ServiceImpl) ListCurrentMonth(ctx context.Context) ([]Entry, error) {
	today := date.FromTime(s.clock.Now())
	from := date.New(today.Year(), today.Month(), 1)
	to := date.New(today.Year(), today.Month(), date.DaysInMonth(today.Year(), today.Month()))
	return s.ListRange(ctx, from, to)
}

func (s *ServiceImpl) Create(ctx context.Context, entry Entry) (Entry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !entry.Amount.IsPositive() {
		return Entry{}, fmt.Errorf("amount must be positive, got %s", entry.Amount)
	}

	entry.Uid = NewManualUid()
	entry.RuleId = nil
	entry.OccurrenceDate = nil

	id, err := s.repo.Store(ctx, userId, entry)
	if err != nil {
		return Entry{}, err
	}
	entry.Id = id

	return entry, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, uid string) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	deleted, err := s.repo.Delete(ctx, userId, uid)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("entry not deleted, probably because it does not exist (%s) or the user (%d) is not the owner", uid, userId)
		return false, nil
	}
	return true, nil
}
