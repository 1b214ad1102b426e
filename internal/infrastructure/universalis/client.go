// Package universalis fetches per-world market board data. Exhausted
// retries degrade to a "no data" result instead of an error: a quiet
// world and a dead upstream look the same to the user, and neither
// should break the price table.
package universalis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/constants"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
)

const defaultBaseURL = "https://universalis.app/api/v2"

type Client struct {
	httpClient *http.Client
	baseURL    string
	attempts   int
	baseDelay  time.Duration
}

func NewClient(attempts int, baseDelay time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		attempts:   attempts,
		baseDelay:  baseDelay,
	}
}

func (c *Client) SetBaseURL(u string) { c.baseURL = u }

type marketResponse struct {
	Listings []struct {
		PricePerUnit float64 `json:"pricePerUnit"`
		HQ           bool    `json:"hq"`
	} `json:"listings"`
	RecentHistory []struct {
		PricePerUnit float64 `json:"pricePerUnit"`
		HQ           bool    `json:"hq"`
	} `json:"recentHistory"`
}

// GetWorldMarket returns (nil, nil) when the world has no usable data.
func (c *Client) GetWorldMarket(ctx context.Context, world string, itemID int) (*entity.WorldMarket, error) {
	u := fmt.Sprintf("%s/%s/%d?listings=20&entries=20&entriesWithin=%d&statsWithin=%d",
		c.baseURL, url.PathEscape(world), itemID,
		constants.SalesWindowSeconds, constants.SalesWindowSeconds)

	var payload marketResponse
	if err := c.getJSON(ctx, u, &payload); err != nil {
		log.Printf("universalis %s/%d: %v (degrading to no data)", world, itemID, err)
		return nil, nil
	}

	m := &entity.WorldMarket{World: world}
	for _, l := range payload.Listings {
		m.Listings = append(m.Listings, entity.Listing{PricePerUnit: l.PricePerUnit, HQ: l.HQ})
	}
	for _, h := range payload.RecentHistory {
		m.Sales = append(m.Sales, entity.Sale{PricePerUnit: h.PricePerUnit, HQ: h.HQ})
	}
	if len(m.Listings) == 0 && len(m.Sales) == 0 {
		return nil, nil
	}
	return m, nil
}

func (c *Client) getJSON(ctx context.Context, u string, dst interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.baseDelay * time.Duration(attempt-1)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}
		return json.Unmarshal(body, dst)
	}
	return lastErr
}
