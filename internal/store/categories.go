package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/database"
	"github.com/spendlens/spendlens/internal/model"
)

// CategoryRepository persists the category taxonomy.
type CategoryRepository struct {
	db  *database.DB
	log zerolog.Logger
}

func scanCategory(s rowScanner) (model.Category, error) {
	var (
		c        model.Category
		parentID sql.NullInt64
	)
	if err := s.Scan(&c.ID, &c.Name, &parentID, &c.Description); err != nil {
		return model.Category{}, err
	}
	c.ParentID = parentID.Int64
	return c, nil
}

// List returns all categories ordered by id.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.FetchMany(ctx, `SELECT id, name, parent_id, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var result []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Get returns a category by id.
func (r *CategoryRepository) Get(ctx context.Context, id int64) (*model.Category, error) {
	return r.getOne(ctx, `SELECT id, name, parent_id, description FROM categories WHERE id = ?`, id)
}

// GetByName returns a category by its unique name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	return r.getOne(ctx, `SELECT id, name, parent_id, description FROM categories WHERE name = ?`, name)
}

func (r *CategoryRepository) getOne(ctx context.Context, query string, arg any) (*model.Category, error) {
	c, err := scanCategory(r.db.FetchOne(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return &c, nil
}

// Create inserts a category and returns its id.
func (r *CategoryRepository) Create(ctx context.Context, c model.Category) (int64, error) {
	res, err := r.db.Execute(ctx, `INSERT INTO categories (name, parent_id, description) VALUES (?, ?, ?) RETURNING id`,
		c.Name, database.NullID(c.ParentID), c.Description)
	if err != nil {
		return 0, fmt.Errorf("creating category %q: %w", c.Name, err)
	}
	return res.GeneratedID, nil
}

// Count returns the number of categories.
func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.FetchOne(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting categories: %w", err)
	}
	return n, nil
}
