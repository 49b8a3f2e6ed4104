package recurring

import (
	"context"
	"sort"
)

type StubRuleRepo struct {
	nextId int
	rules  map[int]Rule
	owners map[int]int
}

func NewStubRuleRepo() *StubRuleRepo {
	return &StubRuleRepo{rules: map[int]Rule{}, owners: map[int]int{}}
}

func (s *StubRuleRepo) Store(ctx context.Context, userId int, rule Rule) (int, error) {
	s.nextId++
	rule.Id = s.nextId
	s.rules[rule.Id] = rule
	s.owners[rule.Id] = userId
	return rule.Id, nil
}

func (s *StubRuleRepo) FindById(ctx context.Context, userId int, ruleId int) (Rule, error) {
	rule, exists := s.rules[ruleId]
	if !exists || s.owners[ruleId] != userId {
		return Rule{}, ErrRuleNotFound
	}
	return rule, nil
}

func (s *StubRuleRepo) FindAll(ctx context.Context, userId int, activeOnly bool) ([]Rule, error) {
	var rules []Rule
	for id, rule := range s.rules {
		if s.owners[id] != userId {
			continue
		}
		if activeOnly && !rule.Active {
			continue
		}
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Id < rules[j].Id })
	return rules, nil
}

func (s *StubRuleRepo) Update(ctx context.Context, userId int, rule Rule) (bool, error) {
	if _, exists := s.rules[rule.Id]; !exists || s.owners[rule.Id] != userId {
		return false, nil
	}
	s.rules[rule.Id] = rule
	return true, nil
}

func (s *StubRuleRepo) SetActive(ctx context.Context, userId int, ruleId int, active bool) (bool, error) {
	rule, exists := s.rules[ruleId]
	if !exists || s.owners[ruleId] != userId {
		return false, nil
	}
	rule.Active = active
	s.rules[ruleId] = rule
	return true, nil
}

func (s *StubRuleRepo) Cleanup() {
	s.rules = map[int]Rule{}
	s.owners = map[int]int{}
	s.nextId = 0
}
