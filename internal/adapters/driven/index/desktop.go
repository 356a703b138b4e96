package index

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// desktopEntry is the subset of a freedesktop .desktop file the index
// cares about.
type desktopEntry struct {
	Name string
	Exec string
	Icon string
}

// fieldCodes are the Exec key placeholders stripped before storing a
// launch command. See the desktop entry spec, "The Exec key".
var fieldCodes = []string{"%f", "%F", "%u", "%U", "%d", "%D", "%n", "%N", "%i", "%c", "%k", "%v", "%m"}

// parseDesktopFile reads a .desktop file and returns its entry, or
// (nil, nil) when the file describes something that should not be
// surfaced: hidden entries, non-applications, entries without a name.
func parseDesktopFile(path string) (*desktopEntry, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, err
	}

	section, err := cfg.GetSection("Desktop Entry")
	if err != nil {
		return nil, nil
	}

	if section.Key("Type").String() != "Application" {
		return nil, nil
	}
	if section.Key("NoDisplay").MustBool(false) || section.Key("Hidden").MustBool(false) {
		return nil, nil
	}

	name := strings.TrimSpace(section.Key("Name").String())
	if name == "" {
		return nil, nil
	}

	exec := section.Key("Exec").String()
	for _, code := range fieldCodes {
		exec = strings.ReplaceAll(exec, code, "")
	}

	return &desktopEntry{
		Name: name,
		Exec: strings.TrimSpace(exec),
		Icon: section.Key("Icon").String(),
	}, nil
}

// systemApplicationDirs returns the standard directories scanned for
// regular application entries.
func systemApplicationDirs() []string {
	dirs := []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}
	return dirs
}

// containerApplicationDirs returns the export directories used by
// containerised application formats.
func containerApplicationDirs() []string {
	dirs := []string{
		"/var/lib/flatpak/exports/share/applications",
		"/var/lib/snapd/desktop/applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "flatpak", "exports", "share", "applications"))
	}
	return dirs
}
