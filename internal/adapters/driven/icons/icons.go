// Package icons resolves display icons for indexed applications. Icon
// extraction is cheap but bursty: a single search can surface dozens of
// apps at once, so requests run through a single worker with a small
// inter-item delay, results are cached in memory and on disk, and
// concurrent requests for the same path share one extraction.
package icons

import (
	"context"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// extractDelay spaces successive extractions so a burst of fresh
// requests never saturates disk reads.
const extractDelay = 50 * time.Millisecond

// iconExtensions in lookup preference order.
var iconExtensions = []string{".png", ".svg", ".xpm"}

// Ensure Service implements the port.
var _ driven.IconProvider = (*Service)(nil)

type request struct {
	path string
	done chan string
}

// Service extracts icons through a serialized worker queue.
type Service struct {
	cacheDir string

	mu       sync.Mutex
	memory   map[string]string
	inFlight map[string][]chan string

	queue chan request
	stop  chan struct{}
	once  sync.Once
}

// NewService creates an icon service caching to cacheDir. An empty
// cacheDir disables the file cache.
func NewService(cacheDir string) *Service {
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o700); err != nil {
			logger.Warn("icons: cache dir unavailable: %v", err)
			cacheDir = ""
		}
	}

	s := &Service{
		cacheDir: cacheDir,
		memory:   make(map[string]string),
		inFlight: make(map[string][]chan string),
		queue:    make(chan request, 256),
		stop:     make(chan struct{}),
	}
	go s.worker()
	return s
}

// Close stops the extraction worker.
func (s *Service) Close() {
	s.once.Do(func() { close(s.stop) })
}

// Extract returns a data URI for the application at path, or the empty
// string when no icon can be resolved. Extraction never fails loudly.
func (s *Service) Extract(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}

	s.mu.Lock()
	if uri, ok := s.memory[path]; ok {
		s.mu.Unlock()
		return uri
	}

	if cached, ok := s.readFileCache(path); ok {
		s.memory[path] = cached
		s.mu.Unlock()
		return cached
	}

	done := make(chan string, 1)
	waiters, pending := s.inFlight[path]
	s.inFlight[path] = append(waiters, done)
	s.mu.Unlock()

	if !pending {
		select {
		case s.queue <- request{path: path, done: done}:
		default:
			// Queue is saturated; drop the request rather than
			// block a search.
			s.settle(path, "")
			return ""
		}
	}

	select {
	case uri := <-done:
		return uri
	case <-ctx.Done():
		return ""
	}
}

func (s *Service) worker() {
	for {
		select {
		case <-s.stop:
			return
		case req := <-s.queue:
			uri := s.extract(req.path)
			s.settle(req.path, uri)

			select {
			case <-s.stop:
				return
			case <-time.After(extractDelay):
			}
		}
	}
}

// settle stores a result and wakes every waiter coalesced onto the
// same path. The file cache is written before any waiter wakes so a
// caller never observes a result that a restart would lose.
func (s *Service) settle(path, uri string) {
	if uri != "" {
		s.writeFileCache(path, uri)
	}

	s.mu.Lock()
	s.memory[path] = uri
	waiters := s.inFlight[path]
	delete(s.inFlight, path)
	s.mu.Unlock()

	for _, w := range waiters {
		w <- uri
	}
}

func (s *Service) extract(path string) string {
	iconName, err := desktopIconName(path)
	if err != nil || iconName == "" {
		return ""
	}

	iconPath := resolveIconPath(iconName)
	if iconPath == "" {
		return ""
	}

	data, err := os.ReadFile(iconPath)
	if err != nil {
		logger.Warn("icons: read %s: %v", iconPath, err)
		return ""
	}

	mime := "image/png"
	if strings.HasSuffix(iconPath, ".svg") {
		mime = "image/svg+xml"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

func (s *Service) cacheFile(path string) string {
	if s.cacheDir == "" {
		return ""
	}
	h := fnv.New64a()
	h.Write([]byte(path))
	return filepath.Join(s.cacheDir, fmt.Sprintf("%x.uri", h.Sum64()))
}

func (s *Service) readFileCache(path string) (string, bool) {
	file := s.cacheFile(path)
	if file == "" {
		return "", false
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s *Service) writeFileCache(path, uri string) {
	file := s.cacheFile(path)
	if file == "" {
		return
	}
	if err := os.WriteFile(file, []byte(uri), 0o600); err != nil {
		logger.Warn("icons: cache write: %v", err)
	}
}
