package driven

import (
	"context"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

// Provider is one registered search source, built-in or externally
// loaded. Implementations must keep Match cheap and side-effect-free;
// Search runs concurrently with every other matched provider and the
// slowest one bounds the query's latency.
type Provider interface {
	// Name is the unique registration key, used for enable/disable and
	// execution routing.
	Name() string

	// Description is a short display string.
	Description() string

	// Priority orders provider iteration, higher first. It does not
	// affect result ranking beyond tie-breaking.
	Priority() int

	// Icon is an optional display glyph or URL.
	Icon() string

	// External reports whether the provider was dynamically loaded.
	External() bool

	// Match reports whether Search should be invoked for the query.
	// Must return false for the empty query.
	Match(query string) bool

	// Search produces candidates for the query. Implementations should
	// recover their own internal failures; the aggregator additionally
	// converts any returned error into an empty contribution.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// Executor is implemented by providers that execute their own results,
// reached through the generic plugin-execute verb.
type Executor interface {
	Execute(ctx context.Context, result domain.SearchResult) error
}

// Loader is implemented by providers with a registration-time hook.
// Failures are logged and do not prevent other providers from loading.
type Loader interface {
	OnLoad(ctx context.Context) error
}

// Unloader is implemented by providers with a deregistration-time hook.
// Best effort; failures are logged only.
type Unloader interface {
	OnUnload(ctx context.Context) error
}

// ProviderGeneration is one full set of externally loaded providers, in
// effect between one reload and the next. Closing a generation releases
// every loaded module it owns together.
type ProviderGeneration interface {
	Providers() []Provider
	Close(ctx context.Context) error
}

// PluginLoader discovers and loads external plugins from disk. Each Load
// produces a fresh generation that re-reads every plugin directory,
// never reusing previously loaded module state.
type PluginLoader interface {
	Load(ctx context.Context) (ProviderGeneration, error)
}
