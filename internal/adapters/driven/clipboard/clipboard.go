// Package clipboard captures the system clipboard into a bounded
// in-memory history, optionally persisted across restarts.
package clipboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

const (
	// pollInterval is how often the system clipboard is sampled. The
	// clipboard has no change notification on most platforms, so
	// polling it is.
	pollInterval = time.Second

	// maxHistory bounds the number of retained entries.
	maxHistory = 50
)

// Ensure Monitor implements the port.
var _ driven.ClipboardHistory = (*Monitor)(nil)

// Monitor polls the system clipboard and keeps the newest-first
// history.
type Monitor struct {
	store driven.ClipboardHistoryStore

	mu       sync.RWMutex
	items    []domain.ClipboardItem
	lastSeen string
	enabled  bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMonitor creates a monitor. The store may be nil, in which case the
// history is memory-only.
func NewMonitor(store driven.ClipboardHistoryStore) *Monitor {
	return &Monitor{
		store:   store,
		enabled: true,
		stop:    make(chan struct{}),
	}
}

// Start loads persisted history and begins polling. It blocks until
// ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.loadPersisted(ctx)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// Stop ends polling.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// SetEnabled pauses or resumes capture without stopping the poller.
func (m *Monitor) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	m.mu.Unlock()
}

// History returns captured entries, most recent first.
func (m *Monitor) History() []domain.ClipboardItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ClipboardItem, len(m.items))
	copy(out, m.items)
	return out
}

// Write places text on the system clipboard without re-capturing it.
func (m *Monitor) Write(text string) error {
	m.mu.Lock()
	m.lastSeen = text
	m.mu.Unlock()
	return clipboard.WriteAll(text)
}

func (m *Monitor) loadPersisted(ctx context.Context) {
	if m.store == nil {
		return
	}
	items, err := m.store.Recent(ctx, maxHistory)
	if err != nil {
		logger.Warn("clipboard: load history: %v", err)
		return
	}
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
}

func (m *Monitor) poll(ctx context.Context) {
	text, err := clipboard.ReadAll()
	if err != nil {
		// Headless sessions have no clipboard; stay quiet.
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	m.mu.Lock()
	if !m.enabled || text == m.lastSeen {
		m.mu.Unlock()
		return
	}
	m.lastSeen = text
	item := m.capture(text)
	m.mu.Unlock()

	m.persist(ctx, item)
}

// capture records text at the front of the history, bumping an existing
// duplicate instead of inserting a second copy. Caller holds the lock.
func (m *Monitor) capture(text string) domain.ClipboardItem {
	for idx, existing := range m.items {
		if existing.Text == text {
			existing.CapturedAt = time.Now()
			m.items = append(m.items[:idx], m.items[idx+1:]...)
			m.items = append([]domain.ClipboardItem{existing}, m.items...)
			return existing
		}
	}

	item := domain.ClipboardItem{
		ID:         uuid.NewString(),
		Text:       text,
		CapturedAt: time.Now(),
	}
	m.items = append([]domain.ClipboardItem{item}, m.items...)
	if len(m.items) > maxHistory {
		m.items = m.items[:maxHistory]
	}
	return item
}

func (m *Monitor) persist(ctx context.Context, item domain.ClipboardItem) {
	if m.store == nil {
		return
	}
	if err := m.store.Upsert(ctx, item); err != nil {
		logger.Warn("clipboard: persist: %v", err)
		return
	}
	if err := m.store.Trim(ctx, maxHistory); err != nil {
		logger.Warn("clipboard: trim: %v", err)
	}
}
