// Package plugins implements the external plugin protocol: filesystem
// discovery of plugin directories, WASM module loading behind the
// provider capability, capability-scoped persistent storage, and
// generation-based hot reload.
package plugins

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

// ManifestFile is the descriptor every plugin directory must contain.
const ManifestFile = "plugin.toml"

// ReadManifest parses the manifest in a plugin directory. The directory
// name becomes the plugin's stable ID regardless of what the file says.
func ReadManifest(dir string) (domain.PluginManifest, error) {
	var manifest domain.PluginManifest

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return manifest, fmt.Errorf("read manifest: %w", err)
	}

	if err := toml.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("parse manifest: %w", err)
	}

	manifest.ID = filepath.Base(dir)
	if manifest.Name == "" {
		manifest.Name = manifest.ID
	}

	if err := manifest.Validate(); err != nil {
		return manifest, err
	}
	return manifest, nil
}
