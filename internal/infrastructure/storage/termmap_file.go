package storage

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
)

// SeedTermMap is the baseline dialect dictionary (zh-TW player slang ->
// catalog wording). The persisted table overlays it; user entries win.
var SeedTermMap = map[string]string{
	"咕波":    "庫啵",
	"咕波裝備箱": "庫啵裝備箱",
	"咕波箱":   "庫啵裝備箱",
	"紅蘿蔔":   "胡蘿蔔",
	"山雞蟾蜍":  "山雞",
	"卡札納爾":  "卡扎纳尔",
	"鯰魚精":   "鲶鱼精",
}

// FileTermMap persists the merged table as one flat JSON object,
// overwritten whole on change.
type FileTermMap struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

func NewFileTermMap(path string) (*FileTermMap, error) {
	m := &FileTermMap{path: path, entries: map[string]string{}}
	for k, v := range SeedTermMap {
		m.entries[k] = v
	}
	var fromDisk map[string]string
	if err := readJSONFile(path, &fromDisk); err != nil && !os.IsNotExist(err) {
		// Corrupt table: keep the seed baseline.
		fromDisk = nil
	}
	for k, v := range fromDisk {
		if k != "" && v != "" {
			m.entries[k] = v
		}
	}
	return m, nil
}

// All returns a copy of the merged table.
func (m *FileTermMap) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

func (m *FileTermMap) Put(_ context.Context, pattern, replacement string) error {
	if pattern == "" || replacement == "" || pattern == replacement {
		return fmt.Errorf("refusing term-map entry %q -> %q", pattern, replacement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[pattern] = replacement
	return writeJSONAtomic(m.path, m.entries)
}

var _ repository.TermMapRepository = (*FileTermMap)(nil)
