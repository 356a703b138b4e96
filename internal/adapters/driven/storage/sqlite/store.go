// Package sqlite is the unified persistent store of the launcher:
// per-plugin key-value namespaces, application usage counters, and
// clipboard history, all in one database file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/zephyrlaunch/zephyr/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
)

// Store is a SQLite-backed implementation of the launcher's persistent
// stores, exposed through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.zephyr/data/launcher.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".zephyr", "data")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "launcher.db")

	// WAL mode for better concurrency between the poller and searches.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// PluginStores returns the per-plugin namespace factory backed by this
// store.
func (s *Store) PluginStores() driven.PluginStores {
	return &pluginStores{store: s}
}

// FrequencyStore returns the usage counter backed by this store.
func (s *Store) FrequencyStore() driven.FrequencyStore {
	return &frequencyStore{store: s}
}

// ClipboardStore returns the clipboard history backed by this store.
func (s *Store) ClipboardStore() driven.ClipboardHistoryStore {
	return &clipboardStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Plugin Stores ====================

// pluginStores implements driven.PluginStores.
type pluginStores struct {
	store *Store
}

var _ driven.PluginStores = (*pluginStores)(nil)

// Namespace returns the isolated key-value store for one plugin ID.
func (p *pluginStores) Namespace(pluginID string) driven.PluginStore {
	return &pluginStore{store: p.store, pluginID: pluginID}
}

// pluginStore implements driven.PluginStore for one namespace.
type pluginStore struct {
	store    *Store
	pluginID string
}

var _ driven.PluginStore = (*pluginStore)(nil)

// Get returns the stored value, or domain.ErrNotFound.
func (p *pluginStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.store.db.QueryRowContext(ctx,
		"SELECT value FROM plugin_data WHERE plugin_id = ? AND key = ?",
		p.pluginID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting plugin value: %w", err)
	}
	return value, nil
}

// Set stores or replaces a value.
func (p *pluginStore) Set(ctx context.Context, key, value string) error {
	_, err := p.store.db.ExecContext(ctx, `
		INSERT INTO plugin_data (plugin_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT (plugin_id, key) DO UPDATE SET value = excluded.value`,
		p.pluginID, key, value,
	)
	if err != nil {
		return fmt.Errorf("setting plugin value: %w", err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (p *pluginStore) Delete(ctx context.Context, key string) error {
	_, err := p.store.db.ExecContext(ctx,
		"DELETE FROM plugin_data WHERE plugin_id = ? AND key = ?",
		p.pluginID, key,
	)
	if err != nil {
		return fmt.Errorf("deleting plugin value: %w", err)
	}
	return nil
}

// Has reports whether the key exists.
func (p *pluginStore) Has(ctx context.Context, key string) (bool, error) {
	var one int
	err := p.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM plugin_data WHERE plugin_id = ? AND key = ?",
		p.pluginID, key,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking plugin key: %w", err)
	}
	return true, nil
}

// ==================== Frequency Store ====================

// frequencyStore implements driven.FrequencyStore.
type frequencyStore struct {
	store *Store
}

var _ driven.FrequencyStore = (*frequencyStore)(nil)

// Get returns the count for a path, zero when unseen.
func (f *frequencyStore) Get(ctx context.Context, path string) (int, error) {
	var count int
	err := f.store.db.QueryRowContext(ctx,
		"SELECT count FROM app_frequency WHERE path = ?", path,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting frequency: %w", err)
	}
	return count, nil
}

// Increment adds one to the count for a path.
func (f *frequencyStore) Increment(ctx context.Context, path string) error {
	_, err := f.store.db.ExecContext(ctx, `
		INSERT INTO app_frequency (path, count) VALUES (?, 1)
		ON CONFLICT (path) DO UPDATE SET count = count + 1`,
		path,
	)
	if err != nil {
		return fmt.Errorf("incrementing frequency: %w", err)
	}
	return nil
}

// ==================== Clipboard Store ====================

// clipboardStore implements driven.ClipboardHistoryStore.
type clipboardStore struct {
	store *Store
}

var _ driven.ClipboardHistoryStore = (*clipboardStore)(nil)

// Upsert inserts an entry or refreshes the timestamp of an entry with
// the same text.
func (c *clipboardStore) Upsert(ctx context.Context, item domain.ClipboardItem) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO clipboard_history (id, text, captured_at) VALUES (?, ?, ?)
		ON CONFLICT (text) DO UPDATE SET captured_at = excluded.captured_at`,
		item.ID, item.Text, item.CapturedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upserting clipboard item: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (c *clipboardStore) Recent(ctx context.Context, limit int) ([]domain.ClipboardItem, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, text, captured_at FROM clipboard_history ORDER BY captured_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying clipboard history: %w", err)
	}
	defer rows.Close()

	var items []domain.ClipboardItem
	for rows.Next() {
		var item domain.ClipboardItem
		var ms int64
		if err := rows.Scan(&item.ID, &item.Text, &ms); err != nil {
			return nil, fmt.Errorf("scanning clipboard item: %w", err)
		}
		item.CapturedAt = time.UnixMilli(ms)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clipboard history: %w", err)
	}
	return items, nil
}

// Trim drops everything beyond the newest max entries.
func (c *clipboardStore) Trim(ctx context.Context, max int) error {
	_, err := c.store.db.ExecContext(ctx, `
		DELETE FROM clipboard_history WHERE id NOT IN (
			SELECT id FROM clipboard_history ORDER BY captured_at DESC LIMIT ?
		)`,
		max,
	)
	if err != nil {
		return fmt.Errorf("trimming clipboard history: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (c *clipboardStore) Clear(ctx context.Context) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM clipboard_history"); err != nil {
		return fmt.Errorf("clearing clipboard history: %w", err)
	}
	return nil
}
