package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

func TestScoreTitleTiers(t *testing.T) {
	tests := []struct {
		name  string
		title string
		query string
		want  float64
	}{
		{"exact match", "Firefox", "firefox", 100},
		{"prefix match", "Firefox Developer", "firefox", 50},
		{"contains match", "Mozilla Firefox", "firefox", 25},
		{"no match", "Chromium", "firefox", 0},
		{"case insensitive exact", "FIREFOX", "firefox", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(domain.SearchResult{Title: tt.title}, tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScorePhoneticAndFrequencyAreAdditive(t *testing.T) {
	result := domain.SearchResult{
		Title:       "Télégramme",
		PhoneticKey: "telegramme",
		Frequency:   3,
	}

	// No title tier matches the folded query, but the phonetic key
	// does: 30 + 3*10.
	got := Score(result, "telegram")
	assert.Equal(t, float64(60), got)
}

func TestScorePreservesProviderSuppliedScore(t *testing.T) {
	supplied := 1000.0
	result := domain.SearchResult{Title: "zzz", Score: &supplied}

	assert.Equal(t, 1000.0, Score(result, "firefox"))
}

func TestRankOrdersDescending(t *testing.T) {
	results := []domain.SearchResult{
		{ID: "contains", Title: "Mozilla Firefox"},
		{ID: "exact", Title: "Firefox"},
		{ID: "prefix", Title: "Firefox Developer"},
	}

	ranked := Rank(results, "firefox")

	require.Len(t, ranked, 3)
	assert.Equal(t, "exact", ranked[0].ID)
	assert.Equal(t, "prefix", ranked[1].ID)
	assert.Equal(t, "contains", ranked[2].ID)
}

func TestRankAssignsScoreToEveryResult(t *testing.T) {
	ranked := Rank([]domain.SearchResult{{Title: "anything"}}, "query")

	require.Len(t, ranked, 1)
	require.NotNil(t, ranked[0].Score)
	assert.Equal(t, float64(0), *ranked[0].Score)
}

func TestRankTiesPreserveInputOrder(t *testing.T) {
	results := []domain.SearchResult{
		{ID: "first", Title: "Term"},
		{ID: "second", Title: "Term"},
		{ID: "third", Title: "Term"},
	}

	ranked := Rank(results, "term")

	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].ID)
	assert.Equal(t, "second", ranked[1].ID)
	assert.Equal(t, "third", ranked[2].ID)
}

func TestRankTriggeredPluginOutranksAmbientMatches(t *testing.T) {
	triggered := 1000.0
	results := []domain.SearchResult{
		{ID: "exact-app", Title: "Deploy"},
		{ID: "plugin", Title: "zzz unrelated", Score: &triggered},
	}

	ranked := Rank(results, "deploy")

	assert.Equal(t, "plugin", ranked[0].ID)
}
