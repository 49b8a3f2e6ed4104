package recurring

import (
	"context"
	"fmt"

	"github.com/kassa/kassa/internal/date"
	"github.com/kassa/kassa/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Get(ctx context.Context, ruleId int) (Rule, error)
	List(ctx context.Context, activeOnly bool) ([]Rule, error)
	Create(ctx context.Context, rule Rule) (Rule, error)
	Update(ctx context.Context, rule Rule) (Rule, error)
	// Deactivate turns a rule off without touching entries it already
	// materialized; history is never retroactively deleted.
	Deactivate(ctx context.Context, ruleId int) (bool, error)
	// Materialize backfills ledger entries for the current user's active
	// rules over an explicit window.
	Materialize(ctx context.Context, windowStart, windowEnd date.Date) error
}

type ServiceImpl struct {
	repo         RuleRepo
	materializer Materializer
}

func NewRuleService(repo RuleRepo, materializer Materializer) *ServiceImpl {
	return &ServiceImpl{repo: repo, materializer: materializer}
}

func (s *ServiceImpl) Materialize(ctx context.Context, windowStart, windowEnd date.Date) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.materializer.Materialize(ctx, userId, windowStart, windowEnd)
}

func (s *ServiceImpl) Get(ctx context.Context, ruleId int) (Rule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.FindById(ctx, userId, ruleId)
}

func (s *ServiceImpl) List(ctx context.Context, activeOnly bool) ([]Rule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.FindAll(ctx, userId, activeOnly)
}

func (s *ServiceImpl) Create(ctx context.Context, rule Rule) (Rule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	rule.Active = true
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}

	id, err := s.repo.Store(ctx, userId, rule)
	if err != nil {
		return Rule{}, err
	}
	rule.Id = id

	return rule, nil
}

func (s *ServiceImpl) Update(ctx context.Context, rule Rule) (Rule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}

	updated, err := s.repo.Update(ctx, userId, rule)
	if err != nil {
		return Rule{}, err
	}
	if !updated {
		log.Warnf("rule not updated, probably because it does not exist (%d) or the user (%d) is not the owner", rule.Id, userId)
		return Rule{}, ErrRuleNotFound
	}
	return rule, nil
}

func (s *ServiceImpl) Deactivate(ctx context.Context, ruleId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	deactivated, err := s.repo.SetActive(ctx, userId, ruleId, false)
	if err != nil {
		return false, err
	}
	if !deactivated {
		log.Warnf("rule not deactivated, probably because it does not exist (%d) or the user (%d) is not the owner", ruleId, userId)
		return false, nil
	}
	return true, nil
}
