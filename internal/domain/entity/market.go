package entity

// Listing is one active sell offer on a world's market board.
type Listing struct {
	PricePerUnit float64
	HQ           bool
}

// Sale is one historical transaction inside the stats window.
type Sale struct {
	PricePerUnit float64
	HQ           bool
}

// WorldMarket is the raw per-world payload from the market data service.
// A nil *WorldMarket means "no data" and is a valid, displayable outcome.
type WorldMarket struct {
	World    string
	Listings []Listing
	Sales    []Sale
}

// WorldQuote is one aggregated row of the price table. Nil pointers mean
// the value is unavailable and should render as "—".
type WorldQuote struct {
	World    string
	Min      *float64
	AvgSold  *float64
	DeltaPct *float64
}

// PriceReport aggregates one item's prices across all configured worlds,
// split by quality.
type PriceReport struct {
	ItemID   int
	ItemName string
	NQ       []WorldQuote
	HQ       []WorldQuote
	BestNQ   *WorldQuote
	BestHQ   *WorldQuote
	NQMood   string
	HQMood   string
}

// HasData reports whether at least one world returned a live listing.
func (r *PriceReport) HasData() bool {
	return r.BestNQ != nil || r.BestHQ != nil
}
