package model

import "fmt"

// PatternType selects how a similarity pattern is compared to a description.
type PatternType string

const (
	PatternExact      PatternType = "exact"
	PatternContains   PatternType = "contains"
	PatternStartsWith PatternType = "starts_with"
	PatternRegex      PatternType = "regex"
)

// DefaultConfidence is applied to patterns created without a score.
const DefaultConfidence = 1.0

// ParsePatternType validates a pattern type string.
func ParsePatternType(s string) (PatternType, error) {
	switch pt := PatternType(s); pt {
	case PatternExact, PatternContains, PatternStartsWith, PatternRegex:
		return pt, nil
	default:
		return "", fmt.Errorf("unknown pattern type %q", s)
	}
}

// SimilarityPattern maps a text-matching rule to a category.
type SimilarityPattern struct {
	ID               int64
	PatternType      PatternType
	PatternValue     string
	CategoryID       int64 // 0 = none
	ParentCategoryID int64 // 0 = none
	ConfidenceScore  float64
	UsageCount       int
}
