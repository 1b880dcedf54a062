// Package categories seeds the category taxonomy and provides in-memory
// lookups over it.
package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/spendlens/spendlens/internal/model"
)

// Repository is the storage the taxonomy needs.
type Repository interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, c model.Category) (int64, error)
	Count(ctx context.Context) (int, error)
}

// SeedIfEmpty writes seeds when no categories exist yet. It returns the
// number of categories created.
func SeedIfEmpty(ctx context.Context, repo Repository, seeds []Seed) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, top := range seeds {
		parentID, err := repo.Create(ctx, model.Category{Name: top.Name, Description: top.Description})
		if err != nil {
			return created, fmt.Errorf("seeding %q: %w", top.Name, err)
		}
		created++
		for _, child := range top.Children {
			if _, err := repo.Create(ctx, model.Category{Name: child.Name, ParentID: parentID, Description: child.Description}); err != nil {
				return created, fmt.Errorf("seeding %q: %w", child.Name, err)
			}
			created++
		}
	}
	return created, nil
}

// Service provides in-memory lookup over the taxonomy.
type Service struct {
	categories []model.Category
	byID       map[int64]model.Category
	byName     map[string]model.Category
}

// NewService creates a Service from a slice of categories.
func NewService(categories []model.Category) *Service {
	byID := make(map[int64]model.Category, len(categories))
	byName := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
		byName[strings.ToLower(c.Name)] = c
	}
	return &Service{categories: categories, byID: byID, byName: byName}
}

// Load reads every category from repo.
func Load(ctx context.Context, repo Repository) (*Service, error) {
	cats, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return NewService(cats), nil
}

// All returns all categories.
func (s *Service) All() []model.Category {
	return s.categories
}

// Get returns a category by ID.
func (s *Service) Get(id int64) (model.Category, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// ByName looks a category up ignoring case.
func (s *Service) ByName(name string) (model.Category, bool) {
	c, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Children returns the direct subcategories of parentID.
func (s *Service) Children(parentID int64) []model.Category {
	var result []model.Category
	for _, c := range s.categories {
		if c.ParentID == parentID && c.ID != parentID {
			result = append(result, c)
		}
	}
	return result
}

// Path renders a category as "Parent > Child". Unknown ids render empty.
func (s *Service) Path(id int64) string {
	c, ok := s.byID[id]
	if !ok {
		return ""
	}
	if p, ok := s.byID[c.ParentID]; ok && !c.IsTopLevel() {
		return p.Name + " > " + c.Name
	}
	return c.Name
}
