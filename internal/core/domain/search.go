package domain

import "strings"

// ResultType classifies a search result for the presentation layer.
type ResultType string

// Available result types.
const (
	ResultTypeApp        ResultType = "app"
	ResultTypeFile       ResultType = "file"
	ResultTypeCalculator ResultType = "calculator"
	ResultTypeSystem     ResultType = "system"
	ResultTypePlugin     ResultType = "plugin"
)

// IsValid returns true if the result type is recognised.
func (t ResultType) IsValid() bool {
	switch t {
	case ResultTypeApp, ResultTypeFile, ResultTypeCalculator, ResultTypeSystem, ResultTypePlugin:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ResultType) String() string {
	return string(t)
}

// SearchMode controls how providers match candidates against the query.
type SearchMode string

// Available search modes.
const (
	// SearchModeFuzzy matches substrings and phonetic keys.
	SearchModeFuzzy SearchMode = "fuzzy"

	// SearchModeExact requires literal substring matches only.
	SearchModeExact SearchMode = "exact"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	return m == SearchModeFuzzy || m == SearchModeExact
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Action verbs understood by the execution dispatcher. A result's action
// together with its data must be sufficient to route execution without
// knowing which provider produced it.
const (
	ActionLaunchApp     = "launch-app"
	ActionCopy          = "copy-to-clipboard"
	ActionSystemCommand = "execute-system-command"
	ActionOpenPath      = "open-path"
	ActionPluginExecute = "plugin-execute"
)

// Data keys used by plugin-execute routing.
const (
	// DataProviderKey names the provider that owns a plugin result.
	DataProviderKey = "provider"

	// DataPayloadKey holds the raw item the plugin returned.
	DataPayloadKey = "payload"
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// MaxResults caps the returned list. Zero or negative uses the default.
	MaxResults int

	// Mode selects fuzzy or exact matching.
	Mode SearchMode
}

// SearchResult is a single ranked candidate produced by a provider.
type SearchResult struct {
	// ID is unique per provider invocation, not stable across reindexing.
	ID string `json:"id"`

	// Title is the primary display string.
	Title string `json:"title"`

	// Subtitle is an optional secondary line.
	Subtitle string `json:"subtitle,omitempty"`

	// Icon is an inline data URI, a resolvable asset URL, or a short
	// literal glyph, distinguished by prefix.
	Icon string `json:"icon,omitempty"`

	// Type classifies the result.
	Type ResultType `json:"resultType"`

	// Action is the execution verb for this result.
	Action string `json:"action"`

	// Data is the opaque payload consumed by whichever action handler
	// executes the result.
	Data map[string]any `json:"data,omitempty"`

	// Frequency is the usage counter feeding the ranker.
	Frequency int `json:"frequency"`

	// PhoneticKey is a Latin transliteration for non-Latin-script titles.
	PhoneticKey string `json:"phoneticKey,omitempty"`

	// Score, when set by the provider, is preserved by the ranker as-is.
	// Nil means the ranker computes it.
	Score *float64 `json:"score,omitempty"`
}

// DataString returns a string field from the result payload, or "" when
// absent or not a string.
func (r SearchResult) DataString(key string) string {
	if r.Data == nil {
		return ""
	}
	s, _ := r.Data[key].(string)
	return s
}

// OwningProvider returns the routing key embedded in plugin results.
func (r SearchResult) OwningProvider() string {
	return r.DataString(DataProviderKey)
}

// IconIsLiteral reports whether the icon field is a short glyph rather
// than a data URI or URL.
func (r SearchResult) IconIsLiteral() bool {
	return r.Icon != "" &&
		!strings.HasPrefix(r.Icon, "data:") &&
		!strings.HasPrefix(r.Icon, "http://") &&
		!strings.HasPrefix(r.Icon, "https://") &&
		!strings.Contains(r.Icon, "://")
}

// ProviderInfo is the introspection record exposed to the settings UI
// for each registered provider.
type ProviderInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Enabled     bool   `json:"enabled"`
	External    bool   `json:"external"`
	Icon        string `json:"icon,omitempty"`
}
