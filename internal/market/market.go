// Package market fetches the plugin registry and installs plugin
// archives into the plugin directory.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zephyrlaunch/zephyr/internal/core/ports/driving"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// DefaultRegistryURL is the public plugin registry index.
const DefaultRegistryURL = "https://registry.zephyrlaunch.dev/plugins.json"

// Ensure Service implements the port.
var _ driving.Market = (*Service)(nil)

// ReloadFunc is called after an install or uninstall so the running
// provider set picks up the change.
type ReloadFunc func(ctx context.Context) error

// Service talks to the plugin registry and manages the on-disk plugin
// directory.
type Service struct {
	registryURL string
	pluginDir   string
	client      *http.Client
	reload      ReloadFunc
}

// NewService creates a market service installing into pluginDir. An
// empty registryURL selects the default registry; reload may be nil.
func NewService(registryURL, pluginDir string, reload ReloadFunc) *Service {
	if registryURL == "" {
		registryURL = DefaultRegistryURL
	}
	return &Service{
		registryURL: registryURL,
		pluginDir:   pluginDir,
		client:      &http.Client{Timeout: 30 * time.Second},
		reload:      reload,
	}
}

// List fetches the available plugins from the registry.
func (s *Service) List(ctx context.Context) ([]driving.MarketPlugin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.registryURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch registry: unexpected status %d", resp.StatusCode)
	}

	var plugins []driving.MarketPlugin
	if err := json.NewDecoder(resp.Body).Decode(&plugins); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return plugins, nil
}

// Install downloads and installs a plugin, then triggers a reload.
func (s *Service) Install(ctx context.Context, plugin driving.MarketPlugin) error {
	if plugin.DownloadURL == "" {
		return fmt.Errorf("plugin %s: no download URL", plugin.ID)
	}

	archive, err := s.download(ctx, plugin.DownloadURL)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	if _, err := installFromZip(s.pluginDir, archive, plugin.ID); err != nil {
		return err
	}

	logger.Info("market: installed %s %s", plugin.ID, plugin.Version)
	return s.triggerReload(ctx)
}

// InstallLocal installs a plugin from a local zip archive. The plugin
// ID is taken from the archive's manifest.
func (s *Service) InstallLocal(ctx context.Context, zipPath string) error {
	id, err := installFromZip(s.pluginDir, zipPath, "")
	if err != nil {
		return err
	}
	logger.Info("market: installed %s from %s", id, zipPath)
	return s.triggerReload(ctx)
}

// Uninstall removes an installed plugin by ID.
func (s *Service) Uninstall(ctx context.Context, pluginID string) error {
	dir := filepath.Join(s.pluginDir, pluginID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("plugin %s is not installed", pluginID)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", pluginID, err)
	}

	logger.Info("market: uninstalled %s", pluginID)
	return s.triggerReload(ctx)
}

func (s *Service) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "zephyr-plugin-*.zip")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("download: %w", err)
	}
	return tmp.Name(), nil
}

func (s *Service) triggerReload(ctx context.Context) error {
	if s.reload == nil {
		return nil
	}
	if err := s.reload(ctx); err != nil {
		return fmt.Errorf("reload providers: %w", err)
	}
	return nil
}
