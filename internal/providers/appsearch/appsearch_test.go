package appsearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

type fakeIndexer struct {
	apps       []domain.AppInfo
	built      int
	builtPaths []string
}

func (f *fakeIndexer) BuildIndex(_ context.Context, customPaths []string) error {
	f.built++
	f.builtPaths = customPaths
	return nil
}

func (f *fakeIndexer) Search(_ string, _ domain.SearchMode) []domain.AppInfo {
	return f.apps
}

func (f *fakeIndexer) All() []domain.AppInfo { return f.apps }
func (f *fakeIndexer) Indexing() bool        { return false }

type fakeIcons struct {
	extracted []string
}

func (f *fakeIcons) Extract(_ context.Context, path string) string {
	f.extracted = append(f.extracted, path)
	return "data:image/png;base64,AAAA"
}

func TestMatchAcceptsAnyNonEmptyQuery(t *testing.T) {
	p := New(&fakeIndexer{}, &fakeIcons{}, nil)

	assert.True(t, p.Match("f"))
	assert.True(t, p.Match("firefox"))
	assert.False(t, p.Match(""))
}

func TestSearchMapsAppsToResults(t *testing.T) {
	indexer := &fakeIndexer{apps: []domain.AppInfo{{
		Name:        "Firefox",
		Path:        "/usr/share/applications/firefox.desktop",
		PhoneticKey: "firefox",
		Frequency:   4,
		Source:      domain.AppSourceExe,
	}}}
	icons := &fakeIcons{}
	p := New(indexer, icons, nil)

	results, err := p.Search(context.Background(), "fire", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "app:/usr/share/applications/firefox.desktop", r.ID)
	assert.Equal(t, "Firefox", r.Title)
	assert.Equal(t, domain.ActionLaunchApp, r.Action)
	assert.Equal(t, "/usr/share/applications/firefox.desktop", r.Data["path"])
	assert.Equal(t, 4, r.Frequency)
	assert.Equal(t, "firefox", r.PhoneticKey)
	assert.NotEmpty(t, r.Icon)
}

func TestSearchSkipsIconForStoreApps(t *testing.T) {
	indexer := &fakeIndexer{apps: []domain.AppInfo{{
		Name:   "Store App",
		Path:   "/var/lib/flatpak/exports/share/applications/app.desktop",
		Source: domain.AppSourceUWP,
	}}}
	icons := &fakeIcons{}
	p := New(indexer, icons, nil)

	results, err := p.Search(context.Background(), "store", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Icon)
	assert.Empty(t, icons.extracted)
}

func TestSearchNilIconProvider(t *testing.T) {
	indexer := &fakeIndexer{apps: []domain.AppInfo{{
		Name: "App", Path: "/a.desktop", Source: domain.AppSourceExe,
	}}}
	p := New(indexer, nil, nil)

	results, err := p.Search(context.Background(), "app", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Icon)
}

func TestOnLoadBuildsIndexWithCustomPaths(t *testing.T) {
	indexer := &fakeIndexer{}
	p := New(indexer, nil, []string{"/opt/tools"})

	require.NoError(t, p.OnLoad(context.Background()))

	assert.Equal(t, 1, indexer.built)
	assert.Equal(t, []string{"/opt/tools"}, indexer.builtPaths)
}
