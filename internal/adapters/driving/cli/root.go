// Package cli wires the launcher core behind a cobra command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zephyrlaunch/zephyr/internal/adapters/driven/clipboard"
	"github.com/zephyrlaunch/zephyr/internal/adapters/driven/config/file"
	"github.com/zephyrlaunch/zephyr/internal/adapters/driven/execrun"
	"github.com/zephyrlaunch/zephyr/internal/adapters/driven/icons"
	"github.com/zephyrlaunch/zephyr/internal/adapters/driven/index"
	"github.com/zephyrlaunch/zephyr/internal/adapters/driven/storage/sqlite"
	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/services"
	"github.com/zephyrlaunch/zephyr/internal/logger"
	"github.com/zephyrlaunch/zephyr/internal/market"
	"github.com/zephyrlaunch/zephyr/internal/plugins"
	"github.com/zephyrlaunch/zephyr/internal/providers/appsearch"
	"github.com/zephyrlaunch/zephyr/internal/providers/calculator"
	"github.com/zephyrlaunch/zephyr/internal/providers/cliphist"
	"github.com/zephyrlaunch/zephyr/internal/providers/syscmd"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
)

// Wired services, shared across commands. Populated by setup in
// PersistentPreRunE.
var (
	settingsStore    *file.SettingsStore
	store            *sqlite.Store
	appIndexer       *index.Indexer
	iconService      *icons.Service
	clipboardMonitor *clipboard.Monitor
	searchService    *services.SearchService
	pluginLoader     *plugins.Loader
	marketService    *market.Service
)

var rootCmd = &cobra.Command{
	Use:   "zephyr",
	Short: "Zephyr quick launcher",
	Long: `Zephyr indexes your applications, evaluates expressions, runs
system commands, and searches your clipboard history and installed
plugins from a single query box.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if cmd.Name() == "version" {
			return nil
		}
		return setup(cmd)
	},
}

func init() {
	// Assigned here rather than in the literal above to avoid an
	// initialization cycle (teardown refers to rootCmd).
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		teardown()
	}
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.zephyr)")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

// setup builds the full service graph: storage, index, icons,
// clipboard, the search core with its built-in providers, and the
// plugin loader.
func setup(cmd *cobra.Command) error {
	var err error

	settingsStore, err = file.NewSettingsStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}
	settings := settingsStore.Settings()

	store, err = sqlite.NewStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	appIndexer = index.NewIndexer(store.FrequencyStore())
	iconService = icons.NewService(cacheDir())
	clipboardMonitor = clipboard.NewMonitor(store.ClipboardStore())
	clipboardMonitor.SetEnabled(settings.ClipboardEnabled)

	searchService = services.NewSearchService(execrun.NewLauncher(), store.FrequencyStore())
	searchService.SetClipboardHistory(clipboardMonitor)

	builtins := []struct {
		name     string
		register func() error
	}{
		{"app-search", func() error {
			return searchService.RegisterProvider(appsearch.New(appIndexer, iconService, settings.CustomPaths))
		}},
		{"calculator", func() error {
			return searchService.RegisterProvider(calculator.New())
		}},
		{"system", func() error {
			return searchService.RegisterProvider(syscmd.New())
		}},
		{"clipboard-history", func() error {
			return searchService.RegisterProvider(cliphist.New(clipboardMonitor))
		}},
	}
	for _, b := range builtins {
		if err := b.register(); err != nil {
			return fmt.Errorf("register %s: %w", b.name, err)
		}
	}

	pluginLoader = plugins.NewLoader(settingsStore, store.PluginStores(), defaultPluginDir())
	searchService.SetPluginLoader(pluginLoader)

	marketService = market.NewService("", pluginLoader.Dir(), searchService.ReloadExternalProviders)

	ctx := cmd.Context()
	searchService.InitializeProviders(ctx)
	if err := searchService.ReloadExternalProviders(ctx); err != nil {
		logger.Warn("plugin load failed: %v", err)
	}
	applyProviderSettings(settings.Plugins)

	return nil
}

func teardown() {
	if searchService != nil {
		searchService.CleanupProviders(rootCmd.Context())
	}
	if iconService != nil {
		iconService.Close()
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("close store: %v", err)
		}
	}
}

// applyProviderSettings restores persisted enable/disable state.
func applyProviderSettings(saved map[string]domain.PluginSettings) {
	for name, ps := range saved {
		if err := searchService.SetProviderEnabled(name, ps.Enabled); err != nil {
			logger.Debug("provider %s not present, skipping saved state", name)
		}
	}
}

func configDir() string {
	if flagConfigDir != "" {
		return flagConfigDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".zephyr")
}

func cacheDir() string {
	return filepath.Join(configDir(), "cache", "icons")
}

func defaultPluginDir() string {
	return filepath.Join(configDir(), "plugins")
}
