package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
)

const (
	pgConnectAttempts = 10
	pgConnectDelay    = 2 * time.Second
)

// OpenPostgres connects with a ping-retry loop (the database container
// often comes up after the bot) and ensures the two dictionary tables.
func OpenPostgres(dsn string) (*sql.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= pgConnectAttempts; attempt++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if pingErr := db.Ping(); pingErr == nil {
				if err := ensureTables(db); err != nil {
					db.Close()
					return nil, err
				}
				return db, nil
			} else {
				err = pingErr
			}
		}
		if db != nil {
			db.Close()
		}
		lastErr = err
		time.Sleep(pgConnectDelay)
	}
	return nil, fmt.Errorf("postgres connect: %w", lastErr)
}

func ensureTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alias_entries (
			key TEXT PRIMARY KEY,
			item_id BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS term_map_entries (
			pattern TEXT PRIMARY KEY,
			replacement TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure tables: %w", err)
		}
	}
	return nil
}

// PostgresAliasStore keeps the merged index in memory (the fast path
// must never touch the network) and writes through to the table.
type PostgresAliasStore struct {
	mu      sync.RWMutex
	db      *sql.DB
	base    map[string]int
	learned map[string]int
	merged  map[string]int
}

func NewPostgresAliasStore(db *sql.DB, baseDictPath string) (*PostgresAliasStore, error) {
	s := &PostgresAliasStore{
		db:      db,
		base:    map[string]int{},
		learned: map[string]int{},
	}
	if baseDictPath != "" {
		if err := readJSONFile(baseDictPath, &s.base); err != nil {
			s.base = map[string]int{}
		}
	}
	rows, err := db.Query(`SELECT key, item_id FROM alias_entries`)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, err
		}
		s.learned[key] = int(id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.rebuildLocked()
	return s, nil
}

func (s *PostgresAliasStore) Lookup(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.merged[key]
	return id, ok
}

func (s *PostgresAliasStore) Put(ctx context.Context, key string, itemID int) error {
	if key == "" || itemID <= 0 {
		return fmt.Errorf("refusing alias %q -> %d", key, itemID)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alias_entries (key, item_id, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET item_id = EXCLUDED.item_id, updated_at = now()`,
		key, int64(itemID))
	if err != nil {
		return fmt.Errorf("upsert alias: %w", err)
	}
	s.mu.Lock()
	s.learned[key] = itemID
	s.rebuildLocked()
	s.mu.Unlock()
	return nil
}

func (s *PostgresAliasStore) Learned() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.learned))
	for k, v := range s.learned {
		out[k] = v
	}
	return out
}

func (s *PostgresAliasStore) rebuildLocked() {
	merged := make(map[string]int, len(s.base)+len(s.learned))
	for k, v := range s.base {
		merged[k] = v
	}
	for k, v := range s.learned {
		merged[k] = v
	}
	s.merged = merged
}

// PostgresTermMap mirrors FileTermMap on a table.
type PostgresTermMap struct {
	mu      sync.RWMutex
	db      *sql.DB
	entries map[string]string
}

func NewPostgresTermMap(db *sql.DB) (*PostgresTermMap, error) {
	m := &PostgresTermMap{db: db, entries: map[string]string{}}
	for k, v := range SeedTermMap {
		m.entries[k] = v
	}
	rows, err := db.Query(`SELECT pattern, replacement FROM term_map_entries`)
	if err != nil {
		return nil, fmt.Errorf("load term map: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pattern, replacement string
		if err := rows.Scan(&pattern, &replacement); err != nil {
			return nil, err
		}
		if pattern != "" && replacement != "" {
			m.entries[pattern] = replacement
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PostgresTermMap) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

func (m *PostgresTermMap) Put(ctx context.Context, pattern, replacement string) error {
	if pattern == "" || replacement == "" || pattern == replacement {
		return fmt.Errorf("refusing term-map entry %q -> %q", pattern, replacement)
	}
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO term_map_entries (pattern, replacement, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (pattern) DO UPDATE SET replacement = EXCLUDED.replacement, updated_at = now()`,
		pattern, replacement)
	if err != nil {
		return fmt.Errorf("upsert term map: %w", err)
	}
	m.mu.Lock()
	m.entries[pattern] = replacement
	m.mu.Unlock()
	return nil
}

var (
	_ repository.AliasRepository   = (*PostgresAliasStore)(nil)
	_ repository.TermMapRepository = (*PostgresTermMap)(nil)
)
