package category

import (
	"context"
	"sort"
)

type StubCategoryRepo struct {
	nextId     int
	categories map[int]Category
	owners     map[int]int
}

func NewStubCategoryRepo() *StubCategoryRepo {
	return &StubCategoryRepo{categories: map[int]Category{}, owners: map[int]int{}}
}

func (s *StubCategoryRepo) Store(ctx context.Context, userId int, category Category) (int, error) {
	s.nextId++
	category.Id = s.nextId
	s.categories[category.Id] = category
	s.owners[category.Id] = userId
	return category.Id, nil
}

func (s *StubCategoryRepo) GetAll(ctx context.Context, userId int) ([]Category, error) {
	var categories []Category
	for id, category := range s.categories {
		if s.owners[id] == userId {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *StubCategoryRepo) Update(ctx context.Context, userId int, category Category) (bool, error) {
	if _, exists := s.categories[category.Id]; !exists || s.owners[category.Id] != userId {
		return false, nil
	}
	s.categories[category.Id] = category
	return true, nil
}

func (s *StubCategoryRepo) Delete(ctx context.Context, userId int, categoryId int) (bool, error) {
	if _, exists := s.categories[categoryId]; !exists || s.owners[categoryId] != userId {
		return false, nil
	}
	delete(s.categories, categoryId)
	delete(s.owners, categoryId)
	return true, nil
}

func (s *StubCategoryRepo) Cleanup() {
	s.categories = map[int]Category{}
	s.owners = map[int]int{}
	s.nextId = 0
}
