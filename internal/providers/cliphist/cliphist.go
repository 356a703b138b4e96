// Package cliphist is the built-in clipboard-history provider. It is
// reached explicitly with the "cb" trigger or the "history" keyword so
// clipboard contents never pollute ambient searches.
package cliphist

import (
	"context"
	"strings"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// Provider searches the captured clipboard buffer.
type Provider struct {
	history driven.ClipboardHistory
}

// New creates the clipboard-history provider over a live buffer.
func New(history driven.ClipboardHistory) *Provider {
	return &Provider{history: history}
}

// Name returns the unique registration key.
func (p *Provider) Name() string { return "clipboard-history" }

// Description returns the display string.
func (p *Provider) Description() string { return "Search and paste clipboard history" }

// Priority orders provider iteration.
func (p *Provider) Priority() int { return 100 }

// Icon returns the display glyph.
func (p *Provider) Icon() string { return "📋" }

// External reports the provider is built in.
func (p *Provider) External() bool { return false }

// Match requires the explicit "cb" trigger or the "history" keyword.
func (p *Provider) Match(query string) bool {
	return strings.HasPrefix(query, "cb") || query == "history"
}

// Search filters the history by the keyword after the trigger. "cb"
// alone lists everything.
func (p *Provider) Search(_ context.Context, query string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	var keyword string
	switch {
	case strings.HasPrefix(query, "cb "):
		keyword = strings.ToLower(strings.TrimSpace(query[3:]))
	case strings.HasPrefix(query, "cb"), query == "history":
		keyword = ""
	default:
		return nil, nil
	}

	var results []domain.SearchResult
	for _, item := range p.history.History() {
		if keyword != "" && !strings.Contains(strings.ToLower(item.Text), keyword) {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:       "clipboard:" + item.ID,
			Title:    strings.ReplaceAll(item.Text, "\n", " "),
			Subtitle: item.CapturedAt.Format("2006-01-02 15:04:05"),
			Icon:     "📋",
			Type:     domain.ResultTypePlugin,
			Action:   domain.ActionCopy,
			Data:     map[string]any{"text": item.Text},
		})
	}
	return results, nil
}
