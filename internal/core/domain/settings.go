package domain

// Settings is the full launcher configuration. The search core reads it;
// the GUI shell owns hotkey, theme, and window fields.
type Settings struct {
	Hotkey           string                    `toml:"hotkey"`
	Theme            string                    `toml:"theme"`
	Language         string                    `toml:"language"`
	AutoStart        bool                      `toml:"auto_start"`
	ShowTray         bool                      `toml:"show_tray"`
	HideOnBlur       bool                      `toml:"hide_on_blur"`
	ClipboardEnabled bool                      `toml:"clipboard_enabled"`
	MaxResults       int                       `toml:"max_results"`
	SearchMode       SearchMode                `toml:"search_mode"`
	CustomPaths      []string                  `toml:"custom_paths"`
	PluginPath       string                    `toml:"plugin_path"`
	Window           WindowSettings            `toml:"window"`
	Plugins          map[string]PluginSettings `toml:"plugins"`
}

// WindowSettings is the launcher window appearance block. The core never
// interprets it.
type WindowSettings struct {
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	Opacity  float64 `toml:"opacity"`
	FontSize int     `toml:"font_size"`
}

// PluginSettings is the persisted per-provider state.
type PluginSettings struct {
	Enabled bool              `toml:"enabled"`
	Config  map[string]string `toml:"config,omitempty"`
}

// DefaultSettings returns the configuration used before the user has
// saved anything.
func DefaultSettings() Settings {
	return Settings{
		Hotkey:           "Alt+Space",
		Theme:            "auto",
		Language:         "en",
		AutoStart:        true,
		ShowTray:         true,
		HideOnBlur:       true,
		ClipboardEnabled: false,
		MaxResults:       10,
		SearchMode:       SearchModeFuzzy,
		CustomPaths:      []string{},
		Window: WindowSettings{
			Width:    800,
			Height:   600,
			Opacity:  0.95,
			FontSize: 14,
		},
		Plugins: map[string]PluginSettings{},
	}
}

// Normalize fills invalid fields with defaults so a hand-edited config
// file cannot break the search path.
func (s Settings) Normalize() Settings {
	if s.MaxResults <= 0 {
		s.MaxResults = 10
	}
	if !s.SearchMode.IsValid() {
		s.SearchMode = SearchModeFuzzy
	}
	if s.Plugins == nil {
		s.Plugins = map[string]PluginSettings{}
	}
	return s
}
