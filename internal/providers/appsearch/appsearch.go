// Package appsearch is the built-in application provider. It is a thin
// adapter over the app indexer plus icon attachment: any non-empty query
// is eligible, and relevance comes from the indexer and the ranker.
package appsearch

import (
	"context"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// Ensure Provider implements the interface.
var (
	_ driven.Provider = (*Provider)(nil)
	_ driven.Loader   = (*Provider)(nil)
)

// Provider searches the indexed applications.
type Provider struct {
	indexer driven.AppIndexer
	icons   driven.IconProvider

	// customPaths are the user-configured scan roots handed to the
	// index build.
	customPaths []string
}

// New creates the app-search provider over an indexer and an icon
// capability.
func New(indexer driven.AppIndexer, icons driven.IconProvider, customPaths []string) *Provider {
	return &Provider{
		indexer:     indexer,
		icons:       icons,
		customPaths: customPaths,
	}
}

// Name returns the unique registration key.
func (p *Provider) Name() string { return "app-search" }

// Description returns the display string.
func (p *Provider) Description() string { return "Search installed applications" }

// Priority orders provider iteration.
func (p *Provider) Priority() int { return 100 }

// Icon returns the display glyph.
func (p *Provider) Icon() string { return "🚀" }

// External reports the provider is built in.
func (p *Provider) External() bool { return false }

// Match accepts any non-empty query.
func (p *Provider) Match(query string) bool {
	return len(query) > 0
}

// Search maps indexed applications to results, attaching icons from the
// icon capability. Icon failures degrade to the default placeholder.
func (p *Provider) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	apps := p.indexer.Search(query, opts.Mode)
	logger.Debug("app-search: %d apps from indexer for %q", len(apps), query)

	results := make([]domain.SearchResult, 0, len(apps))
	for _, app := range apps {
		results = append(results, domain.SearchResult{
			ID:          "app:" + app.Path,
			Title:       app.Name,
			Subtitle:    app.Path,
			Icon:        p.appIcon(ctx, app),
			Type:        domain.ResultTypeApp,
			Action:      domain.ActionLaunchApp,
			Data:        map[string]any{"path": app.Path},
			Frequency:   app.Frequency,
			PhoneticKey: app.PhoneticKey,
		})
	}
	return results, nil
}

// appIcon fetches an icon for regular entries. Store apps have no
// extractable icon yet.
func (p *Provider) appIcon(ctx context.Context, app domain.AppInfo) string {
	if p.icons == nil || app.Source == domain.AppSourceUWP {
		return ""
	}
	return p.icons.Extract(ctx, app.Path)
}

// OnLoad builds the initial index.
func (p *Provider) OnLoad(ctx context.Context) error {
	logger.Info("App search provider loading...")
	if err := p.indexer.BuildIndex(ctx, p.customPaths); err != nil {
		return err
	}
	logger.Info("App search provider loaded")
	return nil
}
