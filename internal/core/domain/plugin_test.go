package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchTrigger(t *testing.T) {
	m := PluginManifest{Triggers: []string{"tr", "fy"}}

	trigger, ok := m.MatchTrigger("tr hello")
	assert.True(t, ok)
	assert.Equal(t, "tr", trigger)

	trigger, ok = m.MatchTrigger("FY word")
	assert.True(t, ok)
	assert.Equal(t, "fy", trigger)

	_, ok = m.MatchTrigger("hello tr")
	assert.False(t, ok)

	_, ok = PluginManifest{}.MatchTrigger("anything")
	assert.False(t, ok)

	// Empty triggers are skipped, never match-all.
	_, ok = PluginManifest{Triggers: []string{""}}.MatchTrigger("anything")
	assert.False(t, ok)
}

func TestStripTrigger(t *testing.T) {
	m := PluginManifest{Triggers: []string{"tr"}}

	assert.Equal(t, "hello world", m.StripTrigger("tr hello world"))
	assert.Equal(t, "", m.StripTrigger("tr"))
	assert.Equal(t, "no trigger here", m.StripTrigger("no trigger here"))
}

func TestManifestValidate(t *testing.T) {
	assert.Error(t, PluginManifest{}.Validate())
	assert.Error(t, PluginManifest{ID: "x"}.Validate())
	assert.NoError(t, PluginManifest{ID: "x", Name: "X"}.Validate())
}

func TestEntryFileDefault(t *testing.T) {
	assert.Equal(t, "plugin.wasm", PluginManifest{}.EntryFile())
	assert.Equal(t, "mod.wasm", PluginManifest{Entry: "mod.wasm"}.EntryFile())
}
