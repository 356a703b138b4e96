package driven

import (
	"context"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

// AppIndexer maintains the in-memory application index.
type AppIndexer interface {
	// BuildIndex performs a full rescan and atomically replaces the
	// in-memory set. A call while a build is in flight returns
	// domain.ErrIndexInProgress; builds are never queued.
	BuildIndex(ctx context.Context, customPaths []string) error

	// Search returns the top matches by relevance then frequency
	// descending. Empty query returns nil.
	Search(query string, mode domain.SearchMode) []domain.AppInfo

	// All returns the current index contents.
	All() []domain.AppInfo

	// Indexing reports whether a build is in flight.
	Indexing() bool
}

// IconProvider extracts a display icon for an application path. It is an
// opaque capability: results are cached, extraction never fails loudly,
// and the empty string means the UI renders a default placeholder.
type IconProvider interface {
	Extract(ctx context.Context, path string) string
}
