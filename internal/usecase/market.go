package usecase

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
)

// MarketService fans out per-world price lookups and folds them into a
// quality-split report with mood commentary.
type MarketService struct {
	market      repository.MarketRepository
	worlds      []string
	concurrency int
	mood        *MoodPicker
}

func NewMarketService(market repository.MarketRepository, worlds []string, concurrency int, mood *MoodPicker) *MarketService {
	return &MarketService{
		market:      market,
		worlds:      worlds,
		concurrency: concurrency,
		mood:        mood,
	}
}

// Report fetches every configured world concurrently and aggregates the
// results. World order in the report matches the configured order; a
// failed or empty world becomes an all-nil quote row.
func (s *MarketService) Report(ctx context.Context, itemID int, itemName string) (*entity.PriceReport, error) {
	markets := make([]*entity.WorldMarket, len(s.worlds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, world := range s.worlds {
		i, world := i, world
		g.Go(func() error {
			m, err := s.market.GetWorldMarket(gctx, world, itemID)
			if err != nil {
				// A single bad world must not sink the whole table.
				log.Printf("market %s/%d: %v", world, itemID, err)
				return nil
			}
			markets[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &entity.PriceReport{ItemID: itemID, ItemName: itemName}
	for i, m := range markets {
		world := s.worlds[i]
		report.NQ = append(report.NQ, worldQuote(world, m, false))
		report.HQ = append(report.HQ, worldQuote(world, m, true))
	}
	report.BestNQ = bestQuote(report.NQ)
	report.BestHQ = bestQuote(report.HQ)
	if s.mood != nil {
		if report.BestNQ != nil {
			report.NQMood = s.mood.Pick(report.BestNQ.DeltaPct)
		}
		if report.BestHQ != nil {
			report.HQMood = s.mood.Pick(report.BestHQ.DeltaPct)
		}
	}
	return report, nil
}

// worldQuote aggregates one world's payload for one quality class:
// cheapest active listing, mean sold price over the stats window, and
// the percentage gap between them.
func worldQuote(world string, m *entity.WorldMarket, hq bool) entity.WorldQuote {
	q := entity.WorldQuote{World: world}
	if m == nil {
		return q
	}

	for _, l := range m.Listings {
		if l.HQ != hq {
			continue
		}
		if q.Min == nil || l.PricePerUnit < *q.Min {
			p := l.PricePerUnit
			q.Min = &p
		}
	}

	var sum float64
	var n int
	for _, s := range m.Sales {
		if s.HQ != hq {
			continue
		}
		sum += s.PricePerUnit
		n++
	}
	if n > 0 {
		avg := sum / float64(n)
		q.AvgSold = &avg
	}

	if q.Min != nil && q.AvgSold != nil && *q.AvgSold > 0 {
		d := (*q.Min - *q.AvgSold) / *q.AvgSold * 100
		q.DeltaPct = &d
	}
	return q
}

// bestQuote picks the world with the lowest minimum listing; nil when no
// world has any listing of this quality.
func bestQuote(quotes []entity.WorldQuote) *entity.WorldQuote {
	var best *entity.WorldQuote
	for i := range quotes {
		if quotes[i].Min == nil {
			continue
		}
		if best == nil || *quotes[i].Min < *best.Min {
			best = &quotes[i]
		}
	}
	return best
}
