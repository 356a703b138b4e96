package market

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zephyrlaunch/zephyr/internal/plugins"
)

// installFromZip extracts a plugin archive into the plugin directory.
// The archive must contain a plugin manifest either at its root or
// inside a single top-level directory (the layout release archives
// usually have). wantID, when non-empty, overrides the destination
// directory name.
func installFromZip(pluginDir, zipPath, wantID string) (string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	prefix := archivePrefix(reader.File)

	manifestSeen := false
	for _, f := range reader.File {
		if strings.TrimPrefix(f.Name, prefix) == plugins.ManifestFile {
			manifestSeen = true
			break
		}
	}
	if !manifestSeen {
		return "", fmt.Errorf("archive has no %s", plugins.ManifestFile)
	}

	id := wantID
	if id == "" {
		if prefix != "" {
			id = strings.TrimSuffix(prefix, "/")
		} else {
			id = strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
		}
	}

	dest := filepath.Join(pluginDir, id)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}

	for _, f := range reader.File {
		name := strings.TrimPrefix(f.Name, prefix)
		if name == "" {
			continue
		}
		if err := extractFile(dest, name, f); err != nil {
			os.RemoveAll(dest)
			return "", err
		}
	}
	return id, nil
}

// archivePrefix returns the shared top-level directory of every entry,
// or "" when entries sit at the archive root.
func archivePrefix(files []*zip.File) string {
	var prefix string
	for _, f := range files {
		idx := strings.Index(f.Name, "/")
		if idx < 0 {
			return ""
		}
		top := f.Name[:idx+1]
		if prefix == "" {
			prefix = top
		} else if prefix != top {
			return ""
		}
	}
	return prefix
}

func extractFile(dest, name string, f *zip.File) error {
	// Reject entries that would escape the destination.
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes destination", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
