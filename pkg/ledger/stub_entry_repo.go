package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/kassa/kassa/internal/date"
)

// StubEntryRepo mimics the store's uniqueness semantics in memory: repeated
// inserts for the same (owner, rule, transaction date) are silently ignored,
// exactly like the conflict-ignoring batched write.
type StubEntryRepo struct {
	nextId  int
	entries map[string]Entry
	owners  map[string]int

	// FailStoreAll forces the next StoreAll calls to fail, for exercising
	// transient store errors.
	FailStoreAll error
}

func NewStubEntryRepo() *StubEntryRepo {
	return &StubEntryRepo{entries: map[string]Entry{}, owners: map[string]int{}}
}

func (s *StubEntryRepo) Store(ctx context.Context, userId int, entry Entry) (int, error) {
	if _, exists := s.entries[entry.Uid]; exists {
		return 0, errors.New("duplicate uid")
	}
	s.nextId++
	entry.Id = s.nextId
	s.entries[entry.Uid] = entry
	s.owners[entry.Uid] = userId
	return entry.Id, nil
}

func (s *StubEntryRepo) StoreAll(ctx context.Context, userId int, entries []Entry) error {
	if s.FailStoreAll != nil {
		return s.FailStoreAll
	}
	for _, entry := range entries {
		if _, exists := s.entries[entry.Uid]; exists {
			continue
		}
		s.nextId++
		entry.Id = s.nextId
		s.entries[entry.Uid] = entry
		s.owners[entry.Uid] = userId
	}
	return nil
}

func (s *StubEntryRepo) FindByDateRange(ctx context.Context, userId int, from, to date.Date) ([]Entry, error) {
	var entries []Entry
	for uid, entry := range s.entries {
		if s.owners[uid] != userId {
			continue
		}
		if entry.TransactionDate.Before(from) || entry.TransactionDate.After(to) {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].TransactionDate.Equal(entries[j].TransactionDate) {
			return entries[i].TransactionDate.Before(entries[j].TransactionDate)
		}
		return entries[i].Id < entries[j].Id
	})
	return entries, nil
}

func (s *StubEntryRepo) CountForOwner(ctx context.Context, userId int) (int, error) {
	count := 0
	for uid := range s.entries {
		if s.owners[uid] == userId {
			count++
		}
	}
	return count, nil
}

func (s *StubEntryRepo) Delete(ctx context.Context, userId int, uid string) (bool, error) {
	if _, exists := s.entries[uid]; !exists || s.owners[uid] != userId {
		return false, nil
	}
	delete(s.entries, uid)
	delete(s.owners, uid)
	return true, nil
}

func (s *StubEntryRepo) Cleanup() {
	s.entries = map[string]Entry{}
	s.owners = map[string]int{}
	s.nextId = 0
	s.FailStoreAll = nil
}
