// Package index maintains the in-memory application index. A build is a
// full rescan of the application directories followed by an atomic swap
// of the record set; queries only ever see a complete index.
package index

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// maxSearchResults caps what a single index query returns.
const maxSearchResults = 20

// penaltyKeywords mark entries that lose a de-duplication contest: an
// app's uninstaller or helper should never shadow the app itself.
var penaltyKeywords = []string{"uninstall", "helper", "update", "crash"}

// Ensure Indexer implements the port.
var _ driven.AppIndexer = (*Indexer)(nil)

// Indexer scans freedesktop application directories and answers name
// queries against the resulting records.
type Indexer struct {
	frequency driven.FrequencyStore

	mu       sync.RWMutex
	apps     []domain.AppInfo
	building atomic.Bool
}

// NewIndexer creates an indexer. The frequency store is consulted once
// per record at build time; it may be nil in tests.
func NewIndexer(frequency driven.FrequencyStore) *Indexer {
	return &Indexer{frequency: frequency}
}

// BuildIndex performs a full rescan and atomically replaces the
// in-memory set. A call while a build is in flight returns
// domain.ErrIndexInProgress.
func (i *Indexer) BuildIndex(ctx context.Context, customPaths []string) error {
	if !i.building.CompareAndSwap(false, true) {
		return domain.ErrIndexInProgress
	}
	defer i.building.Store(false)

	var scanned []domain.AppInfo
	for _, dir := range systemApplicationDirs() {
		scanned = append(scanned, i.scanDir(ctx, dir, domain.AppSourceExe)...)
	}
	for _, dir := range containerApplicationDirs() {
		scanned = append(scanned, i.scanDir(ctx, dir, domain.AppSourceUWP)...)
	}
	for _, dir := range customPaths {
		scanned = append(scanned, i.scanDir(ctx, dir, domain.AppSourceCustom)...)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	apps := dedupe(scanned)
	for idx := range apps {
		apps[idx].Frequency = i.lookupFrequency(ctx, apps[idx].Path)
	}

	i.mu.Lock()
	i.apps = apps
	i.mu.Unlock()

	logger.Debug("index: built %d application records", len(apps))
	return nil
}

// Search returns the top matches by frequency descending. Empty query
// returns nil.
func (i *Indexer) Search(query string, mode domain.SearchMode) []domain.AppInfo {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	i.mu.RLock()
	apps := i.apps
	i.mu.RUnlock()

	var matched []domain.AppInfo
	for _, app := range apps {
		if matches(app, query, mode) {
			matched = append(matched, app)
		}
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].Frequency > matched[b].Frequency
	})

	if len(matched) > maxSearchResults {
		matched = matched[:maxSearchResults]
	}
	return matched
}

// All returns the current index contents.
func (i *Indexer) All() []domain.AppInfo {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]domain.AppInfo, len(i.apps))
	copy(out, i.apps)
	return out
}

// Indexing reports whether a build is in flight.
func (i *Indexer) Indexing() bool {
	return i.building.Load()
}

func (i *Indexer) scanDir(ctx context.Context, dir string, source domain.AppSource) []domain.AppInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Missing directories are normal; every distro ships a
		// different subset.
		return nil
	}

	var apps []domain.AppInfo
	for _, entry := range entries {
		if ctx.Err() != nil {
			return apps
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".desktop") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		desktop, err := parseDesktopFile(path)
		if err != nil {
			logger.Warn("index: skipping %s: %v", path, err)
			continue
		}
		if desktop == nil {
			continue
		}

		apps = append(apps, domain.AppInfo{
			Name:        desktop.Name,
			Path:        path,
			PhoneticKey: phoneticKey(desktop.Name),
			Source:      source,
		})
	}
	return apps
}

func (i *Indexer) lookupFrequency(ctx context.Context, path string) int {
	if i.frequency == nil {
		return 0
	}
	count, err := i.frequency.Get(ctx, path)
	if err != nil {
		return 0
	}
	return count
}

func matches(app domain.AppInfo, query string, mode domain.SearchMode) bool {
	if strings.Contains(strings.ToLower(app.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(app.Path), query) {
		return true
	}
	if mode == domain.SearchModeFuzzy && app.PhoneticKey != "" {
		return strings.Contains(app.PhoneticKey, query)
	}
	return false
}

// dedupe collapses records sharing a path. Entries carrying a penalty
// keyword in their name lose to clean ones; among peers the shorter
// name wins, so "Firefox" beats "Firefox Web Browser" for the same
// launch path.
func dedupe(apps []domain.AppInfo) []domain.AppInfo {
	byKey := make(map[string]domain.AppInfo, len(apps))
	var order []string

	for _, app := range apps {
		key := app.DedupKey()
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = app
			order = append(order, key)
			continue
		}
		if prefer(app, existing) {
			byKey[key] = app
		}
	}

	out := make([]domain.AppInfo, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

func prefer(candidate, existing domain.AppInfo) bool {
	candPenalty := penalised(candidate.Name)
	existPenalty := penalised(existing.Name)
	if candPenalty != existPenalty {
		return !candPenalty
	}
	return len(candidate.Name) < len(existing.Name)
}

func penalised(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range penaltyKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// phoneticKey folds a display name to a lowercase Latin skeleton so
// accented names match their unaccented spellings.
func phoneticKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	if folded == strings.ToLower(name) {
		// No diacritics to fold; keep the key anyway so fuzzy mode
		// has a stable field to probe.
		return folded
	}
	return folded
}
