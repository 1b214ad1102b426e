package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileAliasStoreMergePrecedence(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "items_base.json")
	aliasPath := filepath.Join(dir, "items_zh_manual.json")

	base := map[string]int{"咕波裝備箱": 100, "藏寶圖": 200}
	b, err := json.Marshal(base)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(basePath, b, 0o644))

	s, err := NewFileAliasStore(aliasPath, basePath)
	require.NoError(t, err)

	id, ok := s.Lookup("藏寶圖")
	require.True(t, ok)
	require.Equal(t, 200, id)

	// Learned entry overrides the base dictionary on key collision.
	require.NoError(t, s.Put(context.Background(), "藏寶圖", 999))
	id, ok = s.Lookup("藏寶圖")
	require.True(t, ok)
	require.Equal(t, 999, id)

	// Base-only entries survive the rebuild.
	id, ok = s.Lookup("咕波裝備箱")
	require.True(t, ok)
	require.Equal(t, 100, id)
}

func TestFileAliasStorePersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	aliasPath := filepath.Join(dir, "items_zh_manual.json")

	s, err := NewFileAliasStore(aliasPath, "")
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "山雞蟾蜍", 4321))

	// No stray temp files left behind by the atomic write.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	reloaded, err := NewFileAliasStore(aliasPath, "")
	require.NoError(t, err)
	id, ok := reloaded.Lookup("山雞蟾蜍")
	require.True(t, ok)
	require.Equal(t, 4321, id)
}

func TestFileAliasStoreRejectsEmptyKey(t *testing.T) {
	s, err := NewFileAliasStore(filepath.Join(t.TempDir(), "a.json"), "")
	require.NoError(t, err)
	require.Error(t, s.Put(context.Background(), "", 1))
	require.Error(t, s.Put(context.Background(), "x", 0))
}

func TestFileTermMapSeedsAndOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "term_map.json")

	m, err := NewFileTermMap(path)
	require.NoError(t, err)
	require.Equal(t, "庫啵", m.All()["咕波"])

	require.NoError(t, m.Put(context.Background(), "咕波", "庫啵王"))
	require.Equal(t, "庫啵王", m.All()["咕波"])

	reloaded, err := NewFileTermMap(path)
	require.NoError(t, err)
	require.Equal(t, "庫啵王", reloaded.All()["咕波"])
	// Untouched seeds still present after reload.
	require.Equal(t, "胡蘿蔔", reloaded.All()["紅蘿蔔"])
}

func TestFileTermMapRejectsIdentity(t *testing.T) {
	m, err := NewFileTermMap(filepath.Join(t.TempDir(), "tm.json"))
	require.NoError(t, err)
	require.Error(t, m.Put(context.Background(), "同字", "同字"))
}

func TestCorruptFilesStartEmpty(t *testing.T) {
	dir := t.TempDir()
	aliasPath := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(aliasPath, []byte("{not json"), 0o644))

	s, err := NewFileAliasStore(aliasPath, "")
	require.NoError(t, err)
	_, ok := s.Lookup("anything")
	require.False(t, ok)

	tmPath := filepath.Join(dir, "broken_tm.json")
	require.NoError(t, os.WriteFile(tmPath, []byte("[1,2"), 0o644))
	m, err := NewFileTermMap(tmPath)
	require.NoError(t, err)
	require.Equal(t, "庫啵", m.All()["咕波"])
}
