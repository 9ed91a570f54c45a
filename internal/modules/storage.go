package modules

import (
	"encoding/hex"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/zeebo/blake3"
)

// Storage holds every module loaded for one program run, keyed by import path.
type Storage struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

func NewStorage() *Storage {
	return &Storage{modules: make(map[string]*Module)}
}

// Push adds m unless a module with the same name is already stored. It
// reports whether m was added.
func (s *Storage) Push(m *Module) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.modules[m.Name]; ok {
		if existing.Digest != m.Digest {
			slog.Warn("module already loaded from different source, keeping the first",
				slog.String("module", m.Name),
				slog.String("kept", existing.Path),
				slog.String("keptDigest", existing.Digest),
				slog.String("ignored", m.Path),
				slog.String("ignoredDigest", m.Digest))
		}
		return false
	}
	s.modules[m.Name] = m
	return true
}

func (s *Storage) Get(name string) (*Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[name]
	return m, ok
}

func (s *Storage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Digest is the hex blake3 hash of a module's source.
func Digest(src string) string {
	h := blake3.New()
	_, _ = io.WriteString(h, src)
	return hex.EncodeToString(h.Sum(nil))
}
