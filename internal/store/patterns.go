package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/database"
	"github.com/spendlens/spendlens/internal/model"
)

// PatternRepository persists similarity patterns.
type PatternRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// List returns every pattern ordered by id.
func (r *PatternRepository) List(ctx context.Context) ([]model.SimilarityPattern, error) {
	rows, err := r.db.FetchMany(ctx, `SELECT id, pattern_type, pattern_value, category_id, parent_category_id,
		confidence_score, usage_count FROM similarity_patterns ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing patterns: %w", err)
	}
	defer rows.Close()

	var result []model.SimilarityPattern
	for rows.Next() {
		var (
			p                  model.SimilarityPattern
			patternType        string
			categoryID, parent sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &patternType, &p.PatternValue, &categoryID, &parent,
			&p.ConfidenceScore, &p.UsageCount); err != nil {
			return nil, fmt.Errorf("scanning pattern: %w", err)
		}
		p.PatternType = model.PatternType(patternType)
		p.CategoryID = categoryID.Int64
		p.ParentCategoryID = parent.Int64
		result = append(result, p)
	}
	return result, rows.Err()
}

// Create inserts a pattern. A zero confidence becomes the default.
func (r *PatternRepository) Create(ctx context.Context, p model.SimilarityPattern) (int64, error) {
	if p.ConfidenceScore == 0 {
		p.ConfidenceScore = model.DefaultConfidence
	}
	res, err := r.db.Execute(ctx, `INSERT INTO similarity_patterns
		(pattern_type, pattern_value, category_id, parent_category_id, confidence_score, usage_count)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		string(p.PatternType), p.PatternValue, database.NullID(p.CategoryID), database.NullID(p.ParentCategoryID),
		p.ConfidenceScore, p.UsageCount)
	if err != nil {
		return 0, fmt.Errorf("creating pattern: %w", err)
	}
	return res.GeneratedID, nil
}

// IncrementUsage bumps a pattern's usage count by one.
func (r *PatternRepository) IncrementUsage(ctx context.Context, id int64) error {
	res, err := r.db.Execute(ctx, `UPDATE similarity_patterns SET usage_count = usage_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementing pattern usage: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
