package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driving"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultMaxResults caps the result list when the caller does not.
const DefaultMaxResults = 10

// defaultProviderTimeout bounds each provider's Search call. A provider
// past its deadline is treated as failed and contributes nothing.
const defaultProviderTimeout = time.Second

// registration pairs a provider with its mutable enabled flag. The flag
// toggles any number of times between load and unload without
// re-invoking lifecycle hooks.
type registration struct {
	provider driven.Provider
	enabled  bool
}

// SearchService is the search aggregator: it holds the ordered provider
// registry, fans a query out to all matching enabled providers
// concurrently, and merges, ranks, and truncates their results.
type SearchService struct {
	mu            sync.RWMutex
	registrations []*registration
	extGeneration driven.ProviderGeneration

	loader    driven.PluginLoader
	launcher  driven.Launcher
	clipboard driven.ClipboardHistory
	frequency driven.FrequencyStore

	providerTimeout time.Duration

	// reloadMu serialises reloads against each other; the registry swap
	// itself happens under mu so searches see one consistent set.
	reloadMu sync.Mutex
}

// NewSearchService creates a new search aggregator.
// The launcher and frequency store back the built-in action verbs; the
// clipboard and plugin loader are optional (can be nil).
func NewSearchService(launcher driven.Launcher, frequency driven.FrequencyStore) *SearchService {
	return &SearchService{
		launcher:        launcher,
		frequency:       frequency,
		providerTimeout: defaultProviderTimeout,
	}
}

// SetPluginLoader sets the loader used by ReloadExternalProviders.
func (s *SearchService) SetPluginLoader(loader driven.PluginLoader) {
	s.loader = loader
}

// SetClipboardHistory sets the clipboard buffer backing the copy action.
func (s *SearchService) SetClipboardHistory(c driven.ClipboardHistory) {
	s.clipboard = c
}

// SetProviderTimeout overrides the per-provider search deadline.
func (s *SearchService) SetProviderTimeout(d time.Duration) {
	if d > 0 {
		s.providerTimeout = d
	}
}

// RegisterProvider adds a provider to the registry and re-sorts by
// priority descending. Duplicate names are rejected.
func (s *SearchService) RegisterProvider(p driven.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reg := range s.registrations {
		if reg.provider.Name() == p.Name() {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateProvider, p.Name())
		}
	}

	s.registrations = append(s.registrations, &registration{provider: p, enabled: true})
	s.sortLocked()

	logger.Info("Provider registered: %s", p.Name())
	return nil
}

// UnregisterProvider removes a provider by name. Removing an unknown
// name is a no-op.
func (s *SearchService) UnregisterProvider(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, reg := range s.registrations {
		if reg.provider.Name() == name {
			s.registrations = append(s.registrations[:i], s.registrations[i+1:]...)
			logger.Info("Provider unregistered: %s", name)
			return
		}
	}
}

// sortLocked orders registrations by priority descending. Stable, so
// equal priorities keep registration order. Caller holds mu.
func (s *SearchService) sortLocked() {
	sort.SliceStable(s.registrations, func(i, j int) bool {
		return s.registrations[i].provider.Priority() > s.registrations[j].provider.Priority()
	})
}

// InitializeProviders invokes OnLoad on every registered provider that
// has one. A failing hook is logged and does not prevent the others
// from loading.
func (s *SearchService) InitializeProviders(ctx context.Context) {
	for _, reg := range s.snapshot() {
		if l, ok := reg.provider.(driven.Loader); ok {
			if err := l.OnLoad(ctx); err != nil {
				logger.Error("Error initializing provider %s: %v", reg.provider.Name(), err)
				continue
			}
			logger.Info("Provider initialized: %s", reg.provider.Name())
		}
	}
}

// CleanupProviders invokes OnUnload on every registered provider that
// has one. Best effort.
func (s *SearchService) CleanupProviders(ctx context.Context) {
	for _, reg := range s.snapshot() {
		if u, ok := reg.provider.(driven.Unloader); ok {
			if err := u.OnUnload(ctx); err != nil {
				logger.Error("Error cleaning up provider %s: %v", reg.provider.Name(), err)
			}
		}
	}
}

// snapshot copies the registration list so a query observes one
// consistent registry version even if a reload swaps it mid-flight.
func (s *SearchService) snapshot() []*registration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	regs := make([]*registration, len(s.registrations))
	copy(regs, s.registrations)
	return regs
}

// Search dispatches the query to all enabled, matching providers
// concurrently and returns the merged, ranked list truncated to
// opts.MaxResults.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	// Hard short-circuit: no provider is invoked for a blank query.
	if strings.TrimSpace(query) == "" {
		logger.Debug("Blank query, returning no results")
		return []domain.SearchResult{}, nil
	}

	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if !opts.Mode.IsValid() {
		opts.Mode = domain.SearchModeFuzzy
	}

	var matched []*registration
	for _, reg := range s.snapshot() {
		if reg.enabled && reg.provider.Match(query) {
			matched = append(matched, reg)
		}
	}
	logger.Debug("Matched providers: %d", len(matched))

	// Fan out to every matched provider; each slot keeps its position so
	// the flattened list preserves provider-iteration order.
	batches := make([][]domain.SearchResult, len(matched))

	var wg sync.WaitGroup
	wg.Add(len(matched))

	for i, reg := range matched {
		go func(i int, p driven.Provider) {
			defer wg.Done()
			batches[i] = s.searchOne(ctx, p, query, opts)
		}(i, reg.provider)
	}

	wg.Wait()

	var results []domain.SearchResult
	for _, batch := range batches {
		results = append(results, batch...)
	}
	logger.Debug("Raw results: %d", len(results))

	ranked := Rank(results, query)
	if len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
	}
	logger.Info("Final results: %d", len(ranked))

	return ranked, nil
}

// searchOne invokes one provider under the per-provider deadline. Any
// failure mode - error, panic, timeout - contributes an empty batch and
// never fails the aggregate query.
func (s *SearchService) searchOne(ctx context.Context, p driven.Provider, query string, opts domain.SearchOptions) []domain.SearchResult {
	ctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	type outcome struct {
		results []domain.SearchResult
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		results, err := p.Search(ctx, query, opts)
		done <- outcome{results: results, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			logger.Error("Error in provider %s: %v", p.Name(), o.err)
			return nil
		}
		logger.Debug("Provider %s: %d results", p.Name(), len(o.results))
		return o.results
	case <-ctx.Done():
		logger.Error("Provider %s: %v", p.Name(), domain.ErrProviderTimeout)
		return nil
	}
}

// Execute routes an action verb to its handler. Provider failures are
// logged and returned as reported errors; they are never fatal to the
// service.
func (s *SearchService) Execute(ctx context.Context, action string, data map[string]any) error {
	result := domain.SearchResult{Action: action, Data: data}

	switch action {
	case domain.ActionLaunchApp:
		return s.launchApp(ctx, result.DataString("path"))

	case domain.ActionCopy:
		if s.clipboard == nil {
			return fmt.Errorf("copy-to-clipboard: clipboard unavailable")
		}
		return s.clipboard.Write(result.DataString("text"))

	case domain.ActionSystemCommand:
		return s.launcher.RunCommand(ctx, result.DataString("command"))

	case domain.ActionOpenPath:
		return s.launcher.OpenPath(ctx, result.DataString("path"))

	case domain.ActionPluginExecute:
		return s.executePlugin(ctx, result)

	default:
		logger.Warn("Unknown action: %s", action)
		return fmt.Errorf("%w: %s", domain.ErrUnknownAction, action)
	}
}

// ExecuteResult executes a previously returned result.
func (s *SearchService) ExecuteResult(ctx context.Context, result domain.SearchResult) error {
	return s.Execute(ctx, result.Action, result.Data)
}

// launchApp bumps the usage counter and opens the application. The
// counter is a side table, so the in-memory index stays valid.
func (s *SearchService) launchApp(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("launch-app: missing path")
	}

	if s.frequency != nil {
		if err := s.frequency.Increment(ctx, path); err != nil {
			logger.Warn("Failed to bump frequency for %s: %v", path, err)
		}
	}

	if err := s.launcher.OpenPath(ctx, path); err != nil {
		return fmt.Errorf("launch %s: %w", path, err)
	}

	logger.Info("Launched app: %s", path)
	return nil
}

// executePlugin routes the generic dispatch verb back to the owning
// provider by the routing key embedded at result-construction time.
func (s *SearchService) executePlugin(ctx context.Context, result domain.SearchResult) error {
	name := result.OwningProvider()
	if name == "" {
		return fmt.Errorf("plugin-execute: missing provider routing key")
	}

	var target driven.Provider
	for _, reg := range s.snapshot() {
		if reg.provider.Name() == name {
			target = reg.provider
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", domain.ErrProviderNotFound, name)
	}

	exec, ok := target.(driven.Executor)
	if !ok {
		logger.Debug("Provider %s has no execute hook", name)
		return nil
	}

	if err := exec.Execute(ctx, result); err != nil {
		logger.Error("Error executing result via %s: %v", name, err)
		return fmt.Errorf("execute via %s: %w", name, err)
	}
	return nil
}

// Providers returns introspection records in provider-iteration order.
func (s *SearchService) Providers() []domain.ProviderInfo {
	regs := s.snapshot()

	infos := make([]domain.ProviderInfo, len(regs))
	for i, reg := range regs {
		infos[i] = domain.ProviderInfo{
			Name:        reg.provider.Name(),
			Description: reg.provider.Description(),
			Priority:    reg.provider.Priority(),
			Enabled:     reg.enabled,
			External:    reg.provider.External(),
			Icon:        reg.provider.Icon(),
		}
	}
	return infos
}

// SetProviderEnabled toggles a provider without affecting registration
// order or invoking lifecycle hooks.
func (s *SearchService) SetProviderEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reg := range s.registrations {
		if reg.provider.Name() == name {
			reg.enabled = enabled
			logger.Info("Provider %s enabled=%t", name, enabled)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrProviderNotFound, name)
}

// ReloadExternalProviders replaces the external provider set with a
// freshly loaded generation. The registry swap is a single critical
// section: a concurrent search sees either the fully-old or fully-new
// set, never a partial splice. The old generation's unload hooks and
// module teardown run after the swap, so new searches can no longer
// reach it.
func (s *SearchService) ReloadExternalProviders(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.loader == nil {
		return nil
	}

	logger.Section("Plugin Reload")

	// Load the new generation while the old one is still serving.
	newGen, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load plugins: %w", err)
	}

	s.mu.Lock()
	var kept []*registration
	var oldExternals []driven.Provider
	taken := make(map[string]bool)

	for _, reg := range s.registrations {
		if reg.provider.External() {
			oldExternals = append(oldExternals, reg.provider)
			continue
		}
		kept = append(kept, reg)
		taken[reg.provider.Name()] = true
	}

	var loaded []driven.Provider
	for _, p := range newGen.Providers() {
		if taken[p.Name()] {
			logger.Warn("Skipping plugin %s: name already registered", p.Name())
			continue
		}
		taken[p.Name()] = true
		kept = append(kept, &registration{provider: p, enabled: true})
		loaded = append(loaded, p)
	}

	s.registrations = kept
	s.sortLocked()

	oldGen := s.extGeneration
	s.extGeneration = newGen
	s.mu.Unlock()

	// Old generation teardown: unload hooks, then drop every module the
	// generation owns together.
	for _, p := range oldExternals {
		if u, ok := p.(driven.Unloader); ok {
			if err := u.OnUnload(ctx); err != nil {
				logger.Error("Error unloading plugin %s: %v", p.Name(), err)
			}
		}
	}
	if oldGen != nil {
		if err := oldGen.Close(ctx); err != nil {
			logger.Warn("Error closing old plugin generation: %v", err)
		}
	}

	for _, p := range loaded {
		if l, ok := p.(driven.Loader); ok {
			if err := l.OnLoad(ctx); err != nil {
				logger.Error("Error initializing plugin %s: %v", p.Name(), err)
			}
		}
	}

	logger.Info("Reload complete: %d external providers", len(loaded))
	return nil
}
