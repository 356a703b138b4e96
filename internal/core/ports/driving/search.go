// Package driving defines the inbound interfaces through which callers
// (the CLI, an IPC shell) drive the search core.
package driving

import (
	"context"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

// SearchService is the single query and execution surface exposed to the
// UI boundary.
type SearchService interface {
	// Search dispatches the query to all enabled, matching providers
	// concurrently and returns the merged, ranked, truncated result
	// list. Blank queries return an empty list without invoking any
	// provider.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Execute routes an action verb and its payload to the appropriate
	// handler or owning provider.
	Execute(ctx context.Context, action string, data map[string]any) error

	// ExecuteResult executes a previously returned result.
	ExecuteResult(ctx context.Context, result domain.SearchResult) error

	// Providers returns the introspection records for the settings UI,
	// in provider-iteration order.
	Providers() []domain.ProviderInfo

	// SetProviderEnabled toggles a provider without touching its
	// registration order or lifecycle hooks.
	SetProviderEnabled(name string, enabled bool) error

	// ReloadExternalProviders unloads every external provider, reloads
	// plugins from disk, and registers the new set. Built-in providers
	// are untouched. Concurrent searches observe either the fully-old
	// or the fully-new provider set.
	ReloadExternalProviders(ctx context.Context) error
}

// Market is the plugin marketplace surface.
type Market interface {
	// List fetches the available plugins from the registry.
	List(ctx context.Context) ([]MarketPlugin, error)

	// Install downloads and installs a plugin, then triggers a reload.
	Install(ctx context.Context, plugin MarketPlugin) error

	// InstallLocal installs a plugin from a local zip archive.
	InstallLocal(ctx context.Context, zipPath string) error

	// Uninstall removes an installed plugin by ID.
	Uninstall(ctx context.Context, pluginID string) error
}

// MarketPlugin is one registry entry.
type MarketPlugin struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	Repo        string `json:"repo"`
	DownloadURL string `json:"downloadUrl"`
	Icon        string `json:"icon,omitempty"`
}
