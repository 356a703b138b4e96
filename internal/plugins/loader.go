package plugins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tetratelabs/wazero"

	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// Ensure the loader and its generations implement the ports.
var (
	_ driven.PluginLoader       = (*Loader)(nil)
	_ driven.ProviderGeneration = (*Generation)(nil)
)

// Loader discovers plugin directories and loads their modules. Each
// Load builds a fresh generation with its own runtime, so modules are
// always re-read from disk and a dropped generation releases everything
// it loaded together.
type Loader struct {
	settings   driven.SettingsStore
	stores     driven.PluginStores
	defaultDir string
}

// NewLoader creates a plugin loader. defaultDir is used when settings
// do not name a valid plugin path.
func NewLoader(settings driven.SettingsStore, stores driven.PluginStores, defaultDir string) *Loader {
	return &Loader{
		settings:   settings,
		stores:     stores,
		defaultDir: defaultDir,
	}
}

// Dir returns the active plugin root: the configured path when it
// exists, else the default.
func (l *Loader) Dir() string {
	if l.settings != nil {
		if p := l.settings.Settings().PluginPath; p != "" {
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				return p
			}
		}
	}
	return l.defaultDir
}

// Load scans the plugin root and loads every valid plugin. One bad
// plugin directory never aborts the scan of the rest.
func (l *Loader) Load(ctx context.Context) (driven.ProviderGeneration, error) {
	dir := l.Dir()
	logger.Info("[loader] Scanning for plugins in: %s", dir)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create plugin dir: %w", err)
	}

	runtime, err := newRuntime(ctx, l.stores)
	if err != nil {
		return nil, err
	}

	gen := &Generation{runtime: runtime}

	entries, err := os.ReadDir(dir)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("read plugin dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pluginDir := filepath.Join(dir, entry.Name())

		adapter, err := l.loadOne(ctx, runtime, pluginDir)
		if err != nil {
			logger.Error("[loader] Failed to load plugin at %s: %v", pluginDir, err)
			continue
		}
		if adapter == nil {
			continue
		}

		gen.providers = append(gen.providers, adapter)
		logger.Info("[loader] Loaded external plugin: %s", adapter.Name())
	}

	return gen, nil
}

// loadOne loads a single plugin directory. A directory without a
// manifest is silently skipped; everything else that goes wrong is an
// error isolated to this plugin.
func (l *Loader) loadOne(ctx context.Context, runtime wazero.Runtime, dir string) (*Adapter, error) {
	if _, err := os.Stat(filepath.Join(dir, ManifestFile)); os.IsNotExist(err) {
		return nil, nil
	}

	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	wasmBytes, err := os.ReadFile(filepath.Join(dir, manifest.EntryFile()))
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile module: %w", err)
	}

	modConfig := wazero.NewModuleConfig().
		WithName(manifest.ID).
		WithStartFunctions("_initialize")

	instance, err := runtime.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		return nil, fmt.Errorf("instantiate module: %w", err)
	}

	module, err := newWasmModule(instance)
	if err != nil {
		// Module lacks the required surface; drop the instance now so
		// it does not linger for the generation's lifetime.
		_ = instance.Close(ctx)
		logger.Warn("[loader] Plugin %s skipped: %v", manifest.ID, err)
		return nil, nil
	}

	return NewAdapter(module, manifest, dir), nil
}

// Generation is one loaded plugin set. It owns the runtime every module
// of the set was instantiated in; Close drops them all together.
type Generation struct {
	runtime   wazero.Runtime
	providers []driven.Provider
}

// Providers returns the loaded providers in scan order.
func (g *Generation) Providers() []driven.Provider {
	return g.providers
}

// Close releases every module of this generation.
func (g *Generation) Close(ctx context.Context) error {
	if g.runtime == nil {
		return nil
	}
	return g.runtime.Close(ctx)
}
