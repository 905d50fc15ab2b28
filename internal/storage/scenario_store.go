// internal/storage/scenario_store.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ScenarioStore reads authored scenario files from a directory. It is
// read-only: sessions are never written back to disk.
type ScenarioStore struct {
	BaseDir string

	cache      map[string]*CacheEntry
	cacheMutex sync.RWMutex
}

// CacheEntry holds the bytes of a file and the mtime they were read at
type CacheEntry struct {
	Data      []byte
	ModTime   time.Time
	Timestamp time.Time
}

// NewScenarioStore opens a scenario directory. A missing directory is
// not an error; it simply holds no scenarios.
func NewScenarioStore(baseDir string) (*ScenarioStore, error) {
	if baseDir != "" {
		info, err := os.Stat(baseDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat scenario dir: %w", err)
		}
		if err == nil && !info.IsDir() {
			return nil, fmt.Errorf("scenario path %s is not a directory", baseDir)
		}
	}

	return &ScenarioStore{
		BaseDir: baseDir,
		cache:   make(map[string]*CacheEntry),
	}, nil
}

// List returns scenario file names sorted by name
func (s *ScenarioStore) List() ([]string, error) {
	if s.BaseDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the content of one scenario file. The cached copy is
// reused while the file's mtime is unchanged.
func (s *ScenarioStore) Load(name string) ([]byte, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid scenario file name %q", name)
	}
	fullPath := filepath.Join(s.BaseDir, name)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("stat scenario file: %w", err)
	}

	s.cacheMutex.RLock()
	if entry, exists := s.cache[fullPath]; exists && entry.ModTime.Equal(info.ModTime()) {
		s.cacheMutex.RUnlock()
		return entry.Data, nil
	}
	s.cacheMutex.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	s.cacheMutex.Lock()
	s.cache[fullPath] = &CacheEntry{
		Data:      content,
		ModTime:   info.ModTime(),
		Timestamp: time.Now(),
	}
	s.cacheMutex.Unlock()

	return content, nil
}

// Invalidate drops every cached file
func (s *ScenarioStore) Invalidate() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	s.cache = make(map[string]*CacheEntry)
}

// Cached reports how many files are held in memory
func (s *ScenarioStore) Cached() int {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()
	return len(s.cache)
}
