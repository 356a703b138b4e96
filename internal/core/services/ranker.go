package services

import (
	"sort"
	"strings"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

// Scoring weights. Title tiers are mutually exclusive; the phonetic and
// frequency terms are additive on top of whichever tier matched.
const (
	scoreExactTitle    = 100
	scorePrefixTitle   = 50
	scoreContainsTitle = 25
	scorePhonetic      = 30
	scorePerUse        = 10
)

// Score computes the relevance of a candidate for a query. A score the
// provider already supplied is preserved as-is, which lets a provider
// force absolute ranking (an explicitly triggered plugin scores 1000 and
// outranks any ambient match).
func Score(result domain.SearchResult, query string) float64 {
	if result.Score != nil {
		return *result.Score
	}

	var score float64
	lowerQuery := strings.ToLower(query)
	lowerTitle := strings.ToLower(result.Title)

	switch {
	case lowerTitle == lowerQuery:
		score += scoreExactTitle
	case strings.HasPrefix(lowerTitle, lowerQuery):
		score += scorePrefixTitle
	case strings.Contains(lowerTitle, lowerQuery):
		score += scoreContainsTitle
	}

	if result.PhoneticKey != "" && strings.Contains(result.PhoneticKey, lowerQuery) {
		score += scorePhonetic
	}

	score += float64(result.Frequency) * scorePerUse

	return score
}

// Rank assigns scores and orders results by descending score. The sort
// is stable, so ties preserve provider-iteration order. Truncation is
// the caller's job and happens only after the full ordering.
func Rank(results []domain.SearchResult, query string) []domain.SearchResult {
	ranked := make([]domain.SearchResult, len(results))
	for i, r := range results {
		s := Score(r, query)
		r.Score = &s
		ranked[i] = r
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Score > *ranked[j].Score
	})

	return ranked
}
