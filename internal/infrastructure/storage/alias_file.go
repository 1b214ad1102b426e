package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
)

// FileAliasStore persists learned aliases as one flat JSON object and
// serves lookups from an in-memory index merged over an optional static
// base dictionary. The merged index is derived state, rebuilt whenever
// either table changes; the JSON files are the source of truth.
type FileAliasStore struct {
	mu      sync.RWMutex
	path    string
	base    map[string]int
	learned map[string]int
	merged  map[string]int
}

// NewFileAliasStore loads the base dictionary (optional, may be "") and
// the learned table. Missing files are fine; corrupt files start empty
// rather than blocking startup.
func NewFileAliasStore(path, baseDictPath string) (*FileAliasStore, error) {
	s := &FileAliasStore{
		path:    path,
		base:    map[string]int{},
		learned: map[string]int{},
	}
	if baseDictPath != "" {
		if err := readJSONFile(baseDictPath, &s.base); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("base dictionary %s: %w", baseDictPath, err)
		}
	}
	if err := readJSONFile(path, &s.learned); err != nil && !os.IsNotExist(err) {
		// A half-written learned table should not kill the bot.
		s.learned = map[string]int{}
	}
	s.rebuildLocked()
	return s, nil
}

// Lookup consults the merged exact-match index. No I/O.
func (s *FileAliasStore) Lookup(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.merged[key]
	return id, ok
}

// Put overwrites (last write wins), persists the whole learned table
// atomically, and rebuilds the merged index.
func (s *FileAliasStore) Put(_ context.Context, key string, itemID int) error {
	if key == "" || itemID <= 0 {
		return fmt.Errorf("refusing alias %q -> %d", key, itemID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learned[key] = itemID
	s.rebuildLocked()
	return writeJSONAtomic(s.path, s.learned)
}

// Learned returns a copy of the learned overlay.
func (s *FileAliasStore) Learned() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.learned))
	for k, v := range s.learned {
		out[k] = v
	}
	return out
}

func (s *FileAliasStore) rebuildLocked() {
	merged := make(map[string]int, len(s.base)+len(s.learned))
	for k, v := range s.base {
		merged[k] = v
	}
	for k, v := range s.learned {
		merged[k] = v
	}
	s.merged = merged
}

func readJSONFile(path string, dst interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// writeJSONAtomic writes to a temp file in the same directory and
// renames over the target, so a crash never leaves a torn table.
func writeJSONAtomic(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ repository.AliasRepository = (*FileAliasStore)(nil)
