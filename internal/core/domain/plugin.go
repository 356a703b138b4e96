package domain

import (
	"errors"
	"strings"
)

// DefaultPluginEntry is the module file loaded when a manifest does not
// name one.
const DefaultPluginEntry = "plugin.wasm"

// PluginManifest is the on-disk descriptor of an external plugin,
// read from plugin.toml in the plugin's directory at every load scan.
type PluginManifest struct {
	// ID is derived from the directory name, never from the file. It is
	// the stable key for storage scoping and market uninstall.
	ID string `toml:"-"`

	// Name is the display name.
	Name string `toml:"name"`

	// Description is an optional display string.
	Description string `toml:"description"`

	// Triggers is the ordered set of activation prefixes. A plugin with
	// no triggers never matches and is effectively dormant.
	Triggers []string `toml:"triggers"`

	// Icon is a path relative to the plugin directory, or a literal glyph.
	Icon string `toml:"icon"`

	// Entry is the module file name, defaulting to plugin.wasm.
	Entry string `toml:"entry"`
}

// Validate checks the manifest for the minimum required fields.
func (m PluginManifest) Validate() error {
	if m.ID == "" {
		return errors.New("plugin manifest: missing id")
	}
	if m.Name == "" {
		return errors.New("plugin manifest: missing name")
	}
	return nil
}

// EntryFile returns the configured entry file, or the default.
func (m PluginManifest) EntryFile() string {
	if m.Entry != "" {
		return m.Entry
	}
	return DefaultPluginEntry
}

// MatchTrigger returns the first trigger the query starts with,
// case-insensitively, and whether one matched.
func (m PluginManifest) MatchTrigger(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, t := range m.Triggers {
		if t == "" {
			continue
		}
		if strings.HasPrefix(lower, strings.ToLower(t)) {
			return t, true
		}
	}
	return "", false
}

// StripTrigger removes the matched trigger prefix and surrounding
// whitespace from the query.
func (m PluginManifest) StripTrigger(query string) string {
	trigger, ok := m.MatchTrigger(query)
	if !ok {
		return strings.TrimSpace(query)
	}
	return strings.TrimSpace(query[len(trigger):])
}
