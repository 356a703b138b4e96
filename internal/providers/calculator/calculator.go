// Package calculator is the built-in arithmetic provider. It matches
// queries that look like math expressions and returns a single result
// holding the evaluated value, ready to copy.
package calculator

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// expressionRe gates Match: digits, arithmetic operators, parentheses,
// power and square-root signs, whitespace.
var expressionRe = regexp.MustCompile(`^[\d+\-*/().^√\s]+$`)

// Provider evaluates arithmetic expressions.
type Provider struct{}

// New creates the calculator provider.
func New() *Provider {
	return &Provider{}
}

// Name returns the unique registration key.
func (p *Provider) Name() string { return "calculator" }

// Description returns the display string.
func (p *Provider) Description() string { return "Evaluate arithmetic expressions" }

// Priority orders provider iteration.
func (p *Provider) Priority() int { return 90 }

// Icon returns the display glyph.
func (p *Provider) Icon() string { return "🔢" }

// External reports the provider is built in.
func (p *Provider) External() bool { return false }

// Match reports whether the query looks like a math expression.
func (p *Provider) Match(query string) bool {
	return len(query) > 0 && expressionRe.MatchString(query)
}

// Search evaluates the expression. Anything unparseable or non-finite
// yields no results rather than an error.
func (p *Provider) Search(_ context.Context, query string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	value, err := Evaluate(query)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, nil
	}

	text := FormatValue(value)
	return []domain.SearchResult{{
		ID:       "calc:result",
		Title:    text,
		Subtitle: fmt.Sprintf("= %s", query),
		Icon:     "🔢",
		Type:     domain.ResultTypeCalculator,
		Action:   domain.ActionCopy,
		Data:     map[string]any{"text": text},
	}}, nil
}

// FormatValue renders a result without a trailing fraction for whole
// numbers.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
