// Package syscmd is the built-in system-command provider: power, lock
// and session verbs reached by typing a keyword prefix.
package syscmd

import (
	"context"
	"strings"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// command is one keyword-triggered system action.
type command struct {
	Keyword string
	Title   string
	Command string
	Icon    string
}

var defaultCommands = []command{
	{Keyword: "shutdown", Title: "Shut Down", Command: "systemctl poweroff", Icon: "⚡"},
	{Keyword: "restart", Title: "Restart", Command: "systemctl reboot", Icon: "🔄"},
	{Keyword: "sleep", Title: "Sleep", Command: "systemctl suspend", Icon: "💤"},
	{Keyword: "lock", Title: "Lock Screen", Command: "loginctl lock-session", Icon: "🔒"},
	{Keyword: "logout", Title: "Log Out", Command: "loginctl terminate-session self", Icon: "👋"},
}

// Provider matches system command keywords by prefix.
type Provider struct {
	commands []command
}

// New creates the system-command provider with the default verb table.
func New() *Provider {
	return &Provider{commands: defaultCommands}
}

// Name returns the unique registration key.
func (p *Provider) Name() string { return "system" }

// Description returns the display string.
func (p *Provider) Description() string { return "System power and session commands" }

// Priority orders provider iteration.
func (p *Provider) Priority() int { return 80 }

// Icon returns the display glyph.
func (p *Provider) Icon() string { return "⚡" }

// External reports the provider is built in.
func (p *Provider) External() bool { return false }

// Match reports whether the query is a prefix of some command keyword.
func (p *Provider) Match(query string) bool {
	if query == "" {
		return false
	}
	lower := strings.ToLower(query)
	for _, cmd := range p.commands {
		if strings.HasPrefix(cmd.Keyword, lower) {
			return true
		}
	}
	return false
}

// Search returns every command whose keyword starts with the query.
func (p *Provider) Search(_ context.Context, query string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	lower := strings.ToLower(query)

	var results []domain.SearchResult
	for _, cmd := range p.commands {
		if !strings.HasPrefix(cmd.Keyword, lower) {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:       "system:" + cmd.Keyword,
			Title:    cmd.Title,
			Subtitle: cmd.Keyword,
			Icon:     cmd.Icon,
			Type:     domain.ResultTypeSystem,
			Action:   domain.ActionSystemCommand,
			Data:     map[string]any{"command": cmd.Command},
		})
	}
	return results, nil
}
