// Package categorize assigns categories to transactions from similarity
// patterns.
package categorize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/model"
)

// matcher compiles each regex value at most once. It lives for one
// Matches call so the compiled set tracks the pattern list it was given.
type matcher struct {
	log zerolog.Logger
	// regexes maps a pattern value to its compiled form; nil marks invalid
	// syntax.
	regexes map[string]*regexp.Regexp
}

func newMatcher(log zerolog.Logger) *matcher {
	return &matcher{log: log, regexes: make(map[string]*regexp.Regexp)}
}

func (m *matcher) compile(value string) *regexp.Regexp {
	if re, ok := m.regexes[value]; ok {
		return re
	}
	re, err := regexp.Compile("(?i)" + value)
	if err != nil {
		m.log.Warn().Err(err).Str("pattern", value).Msg("Invalid regex pattern, never matches")
		re = nil
	}
	m.regexes[value] = re
	return re
}

func (m *matcher) match(description string, p model.SimilarityPattern) bool {
	desc := strings.ToLower(description)
	value := strings.ToLower(p.PatternValue)

	switch p.PatternType {
	case model.PatternExact:
		return desc == value
	case model.PatternContains:
		return strings.Contains(desc, value)
	case model.PatternStartsWith:
		return strings.HasPrefix(desc, value)
	case model.PatternRegex:
		re := m.compile(p.PatternValue)
		return re != nil && re.MatchString(description)
	default:
		m.log.Warn().Int64("pattern_id", p.ID).Str("type", string(p.PatternType)).Msg("Unknown pattern type")
		return false
	}
}

// Match reports whether a single pattern matches description.
func Match(description string, p model.SimilarityPattern, log zerolog.Logger) bool {
	return newMatcher(log).match(description, p)
}

// Matches returns the patterns matching description, in input order.
func Matches(description string, patterns []model.SimilarityPattern, log zerolog.Logger) []model.SimilarityPattern {
	m := newMatcher(log)
	var result []model.SimilarityPattern
	for _, p := range patterns {
		if m.match(description, p) {
			result = append(result, p)
		}
	}
	return result
}

// Best picks the highest-confidence match. Equal scores go to the lowest
// pattern id so the winner does not depend on storage order.
func Best(matches []model.SimilarityPattern) (model.SimilarityPattern, bool) {
	if len(matches) == 0 {
		return model.SimilarityPattern{}, false
	}
	ranked := append([]model.SimilarityPattern(nil), matches...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ConfidenceScore != ranked[j].ConfidenceScore {
			return ranked[i].ConfidenceScore > ranked[j].ConfidenceScore
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked[0], true
}
