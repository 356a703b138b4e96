package icons

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeApp creates a .desktop file whose Icon key points at a real
// image file, so extraction is deterministic.
func writeApp(t *testing.T, dir string, iconData []byte) string {
	t.Helper()

	iconPath := filepath.Join(dir, "app-icon.png")
	require.NoError(t, os.WriteFile(iconPath, iconData, 0o644))

	desktopPath := filepath.Join(dir, "app.desktop")
	content := "[Desktop Entry]\nType=Application\nName=App\nIcon=" + iconPath + "\n"
	require.NoError(t, os.WriteFile(desktopPath, []byte(content), 0o644))
	return desktopPath
}

func TestExtractBuildsDataURI(t *testing.T) {
	dir := t.TempDir()
	desktopPath := writeApp(t, dir, []byte("fake-png"))

	svc := NewService("")
	defer svc.Close()

	uri := svc.Extract(context.Background(), desktopPath)

	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(decoded))
}

func TestExtractEmptyPathReturnsEmpty(t *testing.T) {
	svc := NewService("")
	defer svc.Close()

	assert.Empty(t, svc.Extract(context.Background(), ""))
}

func TestExtractUnresolvableIconReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	desktopPath := filepath.Join(dir, "ghost.desktop")
	content := "[Desktop Entry]\nType=Application\nName=Ghost\nIcon=/nonexistent/icon.png\n"
	require.NoError(t, os.WriteFile(desktopPath, []byte(content), 0o644))

	svc := NewService("")
	defer svc.Close()

	assert.Empty(t, svc.Extract(context.Background(), desktopPath))
}

func TestExtractMemoryCacheSurvivesIconDeletion(t *testing.T) {
	dir := t.TempDir()
	desktopPath := writeApp(t, dir, []byte("cached"))

	svc := NewService("")
	defer svc.Close()

	first := svc.Extract(context.Background(), desktopPath)
	require.NotEmpty(t, first)

	// Remove the icon from disk; the cached URI still serves.
	require.NoError(t, os.Remove(filepath.Join(dir, "app-icon.png")))
	assert.Equal(t, first, svc.Extract(context.Background(), desktopPath))
}

func TestExtractFileCacheSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	desktopPath := writeApp(t, dir, []byte("persisted"))

	svc := NewService(cacheDir)
	first := svc.Extract(context.Background(), desktopPath)
	require.NotEmpty(t, first)
	svc.Close()

	// A fresh service with the icon gone reads the file cache.
	require.NoError(t, os.Remove(filepath.Join(dir, "app-icon.png")))
	fresh := NewService(cacheDir)
	defer fresh.Close()

	assert.Equal(t, first, fresh.Extract(context.Background(), desktopPath))
}

func TestConcurrentExtractsCoalesce(t *testing.T) {
	dir := t.TempDir()
	desktopPath := writeApp(t, dir, []byte("shared"))

	svc := NewService("")
	defer svc.Close()

	var wg sync.WaitGroup
	uris := make([]string, 8)
	for i := range uris {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uris[i] = svc.Extract(context.Background(), desktopPath)
		}(i)
	}
	wg.Wait()

	for _, uri := range uris {
		assert.Equal(t, uris[0], uri)
		assert.NotEmpty(t, uri)
	}
}

func TestExtractCancelledContext(t *testing.T) {
	dir := t.TempDir()
	first := writeApp(t, dir, []byte("warm"))

	second := filepath.Join(dir, "second.desktop")
	content := "[Desktop Entry]\nType=Application\nName=Second\nIcon=" + filepath.Join(dir, "app-icon.png") + "\n"
	require.NoError(t, os.WriteFile(second, []byte(content), 0o644))

	svc := NewService("")
	defer svc.Close()

	// Occupy the worker so the second request stays queued, then
	// cancel: the caller gets the empty placeholder immediately
	// instead of waiting its turn.
	require.NotEmpty(t, svc.Extract(context.Background(), first))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, svc.Extract(ctx, second))
}

func TestResolveIconPathAbsolute(t *testing.T) {
	dir := t.TempDir()
	iconPath := filepath.Join(dir, "x.png")
	require.NoError(t, os.WriteFile(iconPath, []byte("png"), 0o644))

	assert.Equal(t, iconPath, resolveIconPath(iconPath))
	assert.Empty(t, resolveIconPath(filepath.Join(dir, "missing.png")))
}
