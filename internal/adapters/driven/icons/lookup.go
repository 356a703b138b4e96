package icons

import (
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// iconSizeDirs in preference order under a hicolor theme. Larger raster
// sizes first, scalable as the fallback.
var iconSizeDirs = []string{
	"128x128", "96x96", "64x64", "48x48", "256x256", "32x32", "scalable",
}

// desktopIconName reads the Icon key from a .desktop file.
func desktopIconName(path string) (string, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return "", err
	}
	section, err := cfg.GetSection("Desktop Entry")
	if err != nil {
		return "", nil
	}
	return section.Key("Icon").String(), nil
}

// resolveIconPath maps an icon name to a file on disk. Absolute names
// are taken verbatim; bare names are probed against the hicolor theme
// and the legacy pixmap directory.
func resolveIconPath(name string) string {
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return name
		}
		return ""
	}

	for _, root := range iconThemeRoots() {
		for _, size := range iconSizeDirs {
			dir := filepath.Join(root, "hicolor", size, "apps")
			for _, ext := range iconExtensions {
				candidate := filepath.Join(dir, name+ext)
				if fileExists(candidate) {
					return candidate
				}
			}
		}
	}

	for _, ext := range iconExtensions {
		candidate := filepath.Join("/usr/share/pixmaps", name+ext)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func iconThemeRoots() []string {
	roots := []string{"/usr/share/icons"}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append([]string{filepath.Join(home, ".local", "share", "icons")}, roots...)
	}
	return roots
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
