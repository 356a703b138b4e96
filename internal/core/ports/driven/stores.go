package driven

import (
	"context"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

// PluginStore is a persistent key-value namespace scoped to a single
// plugin ID. A plugin cannot address any other plugin's data.
type PluginStore interface {
	// Get returns the stored value, or domain.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or replaces a value.
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether the key exists.
	Has(ctx context.Context, key string) (bool, error)
}

// PluginStores hands out isolated namespaces keyed by plugin ID.
type PluginStores interface {
	Namespace(pluginID string) PluginStore
}

// FrequencyStore is the persistent usage counter keyed by application
// path. It lives beside the index so launches never invalidate the
// in-memory records.
type FrequencyStore interface {
	// Get returns the count for a path, zero when unseen.
	Get(ctx context.Context, path string) (int, error)

	// Increment adds one to the count for a path.
	Increment(ctx context.Context, path string) error
}

// ClipboardHistoryStore persists captured clipboard entries.
type ClipboardHistoryStore interface {
	// Upsert inserts an entry or refreshes its timestamp.
	Upsert(ctx context.Context, item domain.ClipboardItem) error

	// Recent returns the newest entries, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.ClipboardItem, error)

	// Trim drops everything beyond the newest max entries.
	Trim(ctx context.Context, max int) error

	// Clear removes all entries.
	Clear(ctx context.Context) error
}

// SettingsStore persists the launcher configuration. The search core
// only reads from it.
type SettingsStore interface {
	// Settings returns the current configuration, normalized.
	Settings() domain.Settings

	// Save persists a new configuration.
	Save(settings domain.Settings) error
}
