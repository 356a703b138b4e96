package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockProvider implements driven.Provider for testing.
type mockProvider struct {
	name      string
	priority  int
	external  bool
	matchAll  bool
	results   []domain.SearchResult
	searchErr error
	delay     time.Duration
	panics    bool

	mu          sync.Mutex
	searchCalls int
}

func (m *mockProvider) Name() string        { return m.name }
func (m *mockProvider) Description() string { return "mock " + m.name }
func (m *mockProvider) Priority() int       { return m.priority }
func (m *mockProvider) Icon() string        { return "" }
func (m *mockProvider) External() bool      { return m.external }

func (m *mockProvider) Match(query string) bool {
	if query == "" {
		return false
	}
	return m.matchAll
}

func (m *mockProvider) Search(ctx context.Context, _ string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()

	if m.panics {
		panic("mock provider panic")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

// mockLifecycleProvider adds OnLoad/OnUnload hooks.
type mockLifecycleProvider struct {
	mockProvider
	loadErr    error
	loaded     int
	unloaded   int
	lifecycleM sync.Mutex
}

func (m *mockLifecycleProvider) OnLoad(_ context.Context) error {
	m.lifecycleM.Lock()
	defer m.lifecycleM.Unlock()
	m.loaded++
	return m.loadErr
}

func (m *mockLifecycleProvider) OnUnload(_ context.Context) error {
	m.lifecycleM.Lock()
	defer m.lifecycleM.Unlock()
	m.unloaded++
	return nil
}

// mockExecutorProvider adds an Execute hook.
type mockExecutorProvider struct {
	mockProvider
	executed   []domain.SearchResult
	executeErr error
}

func (m *mockExecutorProvider) Execute(_ context.Context, result domain.SearchResult) error {
	m.executed = append(m.executed, result)
	return m.executeErr
}

// mockLauncher implements driven.Launcher.
type mockLauncher struct {
	opened   []string
	ran      []string
	openErr  error
	runErr   error
	launchMu sync.Mutex
}

func (m *mockLauncher) OpenPath(_ context.Context, path string) error {
	m.launchMu.Lock()
	defer m.launchMu.Unlock()
	m.opened = append(m.opened, path)
	return m.openErr
}

func (m *mockLauncher) RunCommand(_ context.Context, command string) error {
	m.launchMu.Lock()
	defer m.launchMu.Unlock()
	m.ran = append(m.ran, command)
	return m.runErr
}

// mockFrequency implements driven.FrequencyStore.
type mockFrequency struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMockFrequency() *mockFrequency {
	return &mockFrequency{counts: map[string]int{}}
}

func (m *mockFrequency) Get(_ context.Context, path string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[path], nil
}

func (m *mockFrequency) Increment(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[path]++
	return nil
}

// mockClipboard implements driven.ClipboardHistory.
type mockClipboard struct {
	written []string
	items   []domain.ClipboardItem
}

func (m *mockClipboard) History() []domain.ClipboardItem { return m.items }
func (m *mockClipboard) Write(text string) error {
	m.written = append(m.written, text)
	return nil
}

// mockGeneration implements driven.ProviderGeneration.
type mockGeneration struct {
	providers []driven.Provider
	closed    bool
}

func (m *mockGeneration) Providers() []driven.Provider { return m.providers }
func (m *mockGeneration) Close(_ context.Context) error {
	m.closed = true
	return nil
}

// mockLoader implements driven.PluginLoader.
type mockLoader struct {
	generations []*mockGeneration
	loadErr     error
	loads       int
}

func (m *mockLoader) Load(_ context.Context) (driven.ProviderGeneration, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	gen := m.generations[m.loads%len(m.generations)]
	m.loads++
	return gen, nil
}

func resultNamed(title string) domain.SearchResult {
	return domain.SearchResult{ID: title, Title: title}
}

// --- Tests ---

func TestRegisterProviderRejectsDuplicates(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())

	require.NoError(t, svc.RegisterProvider(&mockProvider{name: "apps"}))
	err := svc.RegisterProvider(&mockProvider{name: "apps"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateProvider)
	assert.Len(t, svc.Providers(), 1)
}

func TestProvidersOrderedByPriorityDescending(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())

	require.NoError(t, svc.RegisterProvider(&mockProvider{name: "low", priority: 10}))
	require.NoError(t, svc.RegisterProvider(&mockProvider{name: "high", priority: 100}))
	require.NoError(t, svc.RegisterProvider(&mockProvider{name: "mid", priority: 50}))

	infos := svc.Providers()
	require.Len(t, infos, 3)
	assert.Equal(t, "high", infos[0].Name)
	assert.Equal(t, "mid", infos[1].Name)
	assert.Equal(t, "low", infos[2].Name)
}

func TestEqualPriorityKeepsRegistrationOrder(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())

	require.NoError(t, svc.RegisterProvider(&mockProvider{name: "first", priority: 50}))
	require.NoError(t, svc.RegisterProvider(&mockProvider{name: "second", priority: 50}))

	infos := svc.Providers()
	assert.Equal(t, "first", infos[0].Name)
	assert.Equal(t, "second", infos[1].Name)
}

func TestSearchBlankQueryInvokesNoProvider(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	p := &mockProvider{name: "apps", matchAll: true, panics: true}
	require.NoError(t, svc.RegisterProvider(p))

	results, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, p.calls())
}

func TestSearchMergesAcrossProviders(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "a", matchAll: true,
		results: []domain.SearchResult{resultNamed("alpha")},
	}))
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "b", matchAll: true,
		results: []domain.SearchResult{resultNamed("beta")},
	}))

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchProviderFailureIsIsolated(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "broken", matchAll: true, searchErr: errors.New("boom"),
	}))
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "healthy", matchAll: true,
		results: []domain.SearchResult{resultNamed("ok")},
	}))

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Title)
}

func TestSearchProviderPanicIsIsolated(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "panicky", matchAll: true, panics: true,
	}))
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "healthy", matchAll: true,
		results: []domain.SearchResult{resultNamed("ok")},
	}))

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Title)
}

func TestSearchSlowProviderTimesOut(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	svc.SetProviderTimeout(20 * time.Millisecond)

	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "slow", matchAll: true, delay: time.Second,
		results: []domain.SearchResult{resultNamed("late")},
	}))
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "fast", matchAll: true,
		results: []domain.SearchResult{resultNamed("fast")},
	}))

	start := time.Now()
	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fast", results[0].Title)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSearchRespectsMaxResults(t *testing.T) {
	var many []domain.SearchResult
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		many = append(many, resultNamed(title))
	}

	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "many", matchAll: true, results: many,
	}))

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{MaxResults: 3})

	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchSkipsDisabledProviders(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	p := &mockProvider{
		name: "apps", matchAll: true,
		results: []domain.SearchResult{resultNamed("hit")},
	}
	require.NoError(t, svc.RegisterProvider(p))
	require.NoError(t, svc.SetProviderEnabled("apps", false))

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, p.calls())

	// Re-enabling restores participation without lifecycle churn.
	require.NoError(t, svc.SetProviderEnabled("apps", true))
	results, err = svc.Search(context.Background(), "query", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSetProviderEnabledUnknownName(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	err := svc.SetProviderEnabled("ghost", true)
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestExecuteLaunchAppBumpsFrequency(t *testing.T) {
	launcher := &mockLauncher{}
	freq := newMockFrequency()
	svc := NewSearchService(launcher, freq)

	err := svc.Execute(context.Background(), domain.ActionLaunchApp, map[string]any{
		"path": "/usr/share/applications/firefox.desktop",
	})

	require.NoError(t, err)
	require.Len(t, launcher.opened, 1)
	count, _ := freq.Get(context.Background(), "/usr/share/applications/firefox.desktop")
	assert.Equal(t, 1, count)
}

func TestExecuteCopyWritesClipboard(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	cb := &mockClipboard{}
	svc.SetClipboardHistory(cb)

	err := svc.Execute(context.Background(), domain.ActionCopy, map[string]any{"text": "42"})

	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, cb.written)
}

func TestExecuteSystemCommand(t *testing.T) {
	launcher := &mockLauncher{}
	svc := NewSearchService(launcher, newMockFrequency())

	err := svc.Execute(context.Background(), domain.ActionSystemCommand, map[string]any{
		"command": "systemctl poweroff",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"systemctl poweroff"}, launcher.ran)
}

func TestExecuteUnknownAction(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	err := svc.Execute(context.Background(), "teleport", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestExecutePluginRoutesToOwningProvider(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	exec := &mockExecutorProvider{mockProvider: mockProvider{name: "translator", matchAll: true}}
	require.NoError(t, svc.RegisterProvider(exec))

	result := domain.SearchResult{
		Action: domain.ActionPluginExecute,
		Data: map[string]any{
			domain.DataProviderKey: "translator",
			domain.DataPayloadKey:  "hello",
		},
	}
	require.NoError(t, svc.ExecuteResult(context.Background(), result))
	require.Len(t, exec.executed, 1)
	assert.Equal(t, "hello", exec.executed[0].Data[domain.DataPayloadKey])
}

func TestExecutePluginUnknownProvider(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())

	err := svc.Execute(context.Background(), domain.ActionPluginExecute, map[string]any{
		domain.DataProviderKey: "ghost",
	})
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestLifecycleHookFailureDoesNotBlockOthers(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())

	failing := &mockLifecycleProvider{
		mockProvider: mockProvider{name: "failing"},
		loadErr:      errors.New("no index"),
	}
	healthy := &mockLifecycleProvider{mockProvider: mockProvider{name: "healthy"}}

	require.NoError(t, svc.RegisterProvider(failing))
	require.NoError(t, svc.RegisterProvider(healthy))

	svc.InitializeProviders(context.Background())

	assert.Equal(t, 1, failing.loaded)
	assert.Equal(t, 1, healthy.loaded)

	svc.CleanupProviders(context.Background())
	assert.Equal(t, 1, healthy.unloaded)
}

func TestReloadReplacesExternalProviders(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	require.NoError(t, svc.RegisterProvider(&mockProvider{name: "builtin", priority: 100}))

	oldExt := &mockLifecycleProvider{mockProvider: mockProvider{name: "old-plugin", external: true}}
	newExt := &mockLifecycleProvider{mockProvider: mockProvider{name: "new-plugin", external: true}}

	oldGen := &mockGeneration{providers: []driven.Provider{oldExt}}
	newGen := &mockGeneration{providers: []driven.Provider{newExt}}
	loader := &mockLoader{generations: []*mockGeneration{oldGen, newGen}}
	svc.SetPluginLoader(loader)

	require.NoError(t, svc.ReloadExternalProviders(context.Background()))
	require.NoError(t, svc.ReloadExternalProviders(context.Background()))

	names := []string{}
	for _, info := range svc.Providers() {
		names = append(names, info.Name)
	}
	assert.Contains(t, names, "builtin")
	assert.Contains(t, names, "new-plugin")
	assert.NotContains(t, names, "old-plugin")

	assert.True(t, oldGen.closed)
	assert.False(t, newGen.closed)
	assert.Equal(t, 1, oldExt.unloaded)
	assert.Equal(t, 1, newExt.loaded)
}

func TestReloadSkipsBuiltinNameCollision(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	require.NoError(t, svc.RegisterProvider(&mockProvider{name: "calculator"}))

	impostor := &mockProvider{name: "calculator", external: true}
	loader := &mockLoader{generations: []*mockGeneration{
		{providers: []driven.Provider{impostor}},
	}}
	svc.SetPluginLoader(loader)

	require.NoError(t, svc.ReloadExternalProviders(context.Background()))

	infos := svc.Providers()
	require.Len(t, infos, 1)
	assert.False(t, infos[0].External)
}

func TestReloadLoadFailureKeepsOldGeneration(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	ext := &mockProvider{name: "plugin", external: true, matchAll: true,
		results: []domain.SearchResult{resultNamed("hit")}}
	gen := &mockGeneration{providers: []driven.Provider{ext}}
	loader := &mockLoader{generations: []*mockGeneration{gen}}
	svc.SetPluginLoader(loader)

	require.NoError(t, svc.ReloadExternalProviders(context.Background()))

	loader.loadErr = errors.New("disk gone")
	err := svc.ReloadExternalProviders(context.Background())
	require.Error(t, err)

	// Old set still serves.
	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.False(t, gen.closed)
}

func TestConcurrentSearchDuringReload(t *testing.T) {
	svc := NewSearchService(&mockLauncher{}, newMockFrequency())
	require.NoError(t, svc.RegisterProvider(&mockProvider{
		name: "builtin", matchAll: true,
		results: []domain.SearchResult{resultNamed("builtin-hit")},
	}))

	gens := []*mockGeneration{
		{providers: []driven.Provider{&mockProvider{name: "ext-a", external: true, matchAll: true,
			results: []domain.SearchResult{resultNamed("ext-hit")}}}},
		{providers: []driven.Provider{&mockProvider{name: "ext-b", external: true, matchAll: true,
			results: []domain.SearchResult{resultNamed("ext-hit")}}}},
	}
	loader := &mockLoader{generations: gens}
	svc.SetPluginLoader(loader)
	require.NoError(t, svc.ReloadExternalProviders(context.Background()))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			_ = svc.ReloadExternalProviders(context.Background())
		}
		close(stop)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			results, err := svc.Search(context.Background(), "query", domain.SearchOptions{})
			assert.NoError(t, err)
			// The built-in plus exactly one external generation: never
			// zero externals mid-swap, never both.
			assert.Len(t, results, 2)
		}
	}()

	wg.Wait()
}
