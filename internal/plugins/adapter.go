package plugins

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// Ensure Adapter implements the provider capabilities.
var (
	_ driven.Provider = (*Adapter)(nil)
	_ driven.Executor = (*Adapter)(nil)
	_ driven.Loader   = (*Adapter)(nil)
	_ driven.Unloader = (*Adapter)(nil)
)

// triggeredScore is forced onto results of an explicitly triggered
// plugin so they outrank any ambient match.
const triggeredScore = 1000

// assetScheme prefixes plugin-relative files rewritten into resolvable
// asset URLs for the UI layer.
const assetScheme = "zephyr-asset://"

// Adapter wraps one loaded external module behind the provider
// capability: trigger-prefix matching, icon/asset resolution, and error
// isolation. An external plugin can never crash a query.
type Adapter struct {
	manifest domain.PluginManifest
	module   moduleHandle
	dir      string
	icon     string
}

// NewAdapter builds the adapter for a loaded module. The manifest icon
// is resolved once: a file relative to the plugin directory becomes an
// asset URL, anything else passes through as a literal glyph.
func NewAdapter(module moduleHandle, manifest domain.PluginManifest, dir string) *Adapter {
	return &Adapter{
		manifest: manifest,
		module:   module,
		dir:      dir,
		icon:     resolveIcon(dir, manifest.Icon),
	}
}

// Name returns the unique registration key.
func (a *Adapter) Name() string { return a.manifest.Name }

// ID returns the stable plugin ID (the directory name).
func (a *Adapter) ID() string { return a.manifest.ID }

// Description returns the display string.
func (a *Adapter) Description() string {
	if a.manifest.Description != "" {
		return a.manifest.Description
	}
	return "External plugin"
}

// Priority orders provider iteration. External plugins sort after the
// built-ins.
func (a *Adapter) Priority() int { return 0 }

// Icon returns the resolved manifest icon.
func (a *Adapter) Icon() string { return a.icon }

// External reports the provider was dynamically loaded.
func (a *Adapter) External() bool { return true }

// Match is true iff the query starts with one of the manifest triggers,
// case-insensitively. A plugin with no triggers never matches.
func (a *Adapter) Match(query string) bool {
	if query == "" {
		return false
	}
	_, ok := a.manifest.MatchTrigger(query)
	return ok
}

// Search strips the matched trigger prefix and delegates to the module.
// Any module failure is logged and converted to an empty list.
func (a *Adapter) Search(ctx context.Context, query string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	_, triggered := a.manifest.MatchTrigger(query)
	clean := a.manifest.StripTrigger(query)

	logger.Debug("[plugin/%s] searching query=%q triggered=%t", a.manifest.ID, clean, triggered)

	items, err := a.module.Search(ctx, clean)
	if err != nil {
		logger.Error("Error in plugin %s: %v", a.manifest.ID, err)
		return nil, nil
	}

	results := make([]domain.SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, a.adaptItem(item, triggered))
	}
	return results, nil
}

// adaptItem converts one raw module item into a SearchResult.
func (a *Adapter) adaptItem(item map[string]any, triggered bool) domain.SearchResult {
	id, _ := item["id"].(string)
	if id == "" {
		id = a.manifest.ID + "-" + uuid.NewString()
	}

	title, _ := item["title"].(string)
	if title == "" {
		title = "No Title"
	}
	subtitle, _ := item["subtitle"].(string)

	icon := a.icon
	if raw, _ := item["icon"].(string); raw != "" {
		icon = resolveIcon(a.dir, raw)
	}

	// The payload routed back on execute is the item's data, or the
	// whole item when the plugin supplied none.
	payload := item["data"]
	if payload == nil {
		payload = item
	}

	score := float64(0)
	if triggered {
		score = triggeredScore
	}
	if supplied, ok := item["score"].(float64); ok {
		score = supplied
	}

	return domain.SearchResult{
		ID:       id,
		Title:    title,
		Subtitle: subtitle,
		Icon:     icon,
		Type:     domain.ResultTypePlugin,
		Action:   domain.ActionPluginExecute,
		Data: map[string]any{
			domain.DataProviderKey: a.manifest.Name,
			domain.DataPayloadKey:  payload,
		},
		Score: &score,
	}
}

// Execute delegates to the module's optional execute hook. No hook or
// no payload is a no-op.
func (a *Adapter) Execute(ctx context.Context, result domain.SearchResult) error {
	if !a.module.HasExecute() {
		return nil
	}
	payload, ok := result.Data[domain.DataPayloadKey]
	if !ok || payload == nil {
		return nil
	}
	return a.module.Execute(ctx, payload)
}

// OnLoad delegates to the module's optional load hook.
func (a *Adapter) OnLoad(ctx context.Context) error {
	return a.module.OnLoad(ctx)
}

// OnUnload delegates to the module's optional unload hook.
func (a *Adapter) OnUnload(ctx context.Context) error {
	return a.module.OnUnload(ctx)
}

// resolveIcon distinguishes the three icon representations: fully
// qualified data/http URLs pass through, an existing file (absolute or
// relative to the plugin directory) becomes an asset URL, and anything
// else is treated as a literal glyph.
func resolveIcon(base, icon string) string {
	if icon == "" {
		return ""
	}
	if strings.HasPrefix(icon, "data:") || strings.Contains(icon, "://") {
		return icon
	}

	candidate := icon
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, icon)
	}
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return assetScheme + filepath.ToSlash(candidate)
	}
	return icon
}
