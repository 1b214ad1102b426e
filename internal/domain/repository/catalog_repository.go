package repository

import (
	"context"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
)

// CatalogRepository is the item search service. Results carry no
// ordering guarantee from upstream; implementations rank by similarity
// before returning.
type CatalogRepository interface {
	Search(ctx context.Context, query string, limit int) ([]entity.Candidate, error)
	GetMeta(ctx context.Context, itemID int) (*entity.ItemMeta, error)
}

// MarketRepository fetches per-world market data. A (nil, nil) return
// means the world has no data right now; callers must treat that as a
// displayable outcome, not a failure.
type MarketRepository interface {
	GetWorldMarket(ctx context.Context, world string, itemID int) (*entity.WorldMarket, error)
}

// ScriptConverter converts between the catalog's indexing script and the
// user's display script. Pure functions; implementations return the
// input unchanged when conversion is impossible.
type ScriptConverter interface {
	ToIndexing(s string) string
	ToDisplay(s string) string
}
