package repository

import "context"

// AliasRepository is the durable normalized-query -> item-id index,
// merged over a static base dictionary (alias entries win on collision).
// Lookup hits the in-memory merged index only; writes persist and
// rebuild it. Entries are never deleted, only overwritten.
type AliasRepository interface {
	Lookup(key string) (int, bool)
	Put(ctx context.Context, key string, itemID int) error
	// Learned returns a copy of the learned overlay (without the base
	// dictionary), for export and inspection.
	Learned() map[string]int
}

// TermMapRepository is the persisted dialect dictionary. All returns a
// copy of the merged (seed ∪ learned) table.
type TermMapRepository interface {
	All() map[string]string
	Put(ctx context.Context, pattern, replacement string) error
}
