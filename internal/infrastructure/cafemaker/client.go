// Package cafemaker implements the catalog search client against the
// CafeMaker XIVAPI mirror. Queries go out in the indexing script and
// names come back converted to the display script, ranked by similarity
// to the user's query (upstream gives no ordering guarantee).
package cafemaker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/pkg/textnorm"
)

const defaultBaseURL = "https://cafemaker.wakingsands.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	conv       repository.ScriptConverter
	attempts   int
	baseDelay  time.Duration
}

func NewClient(conv repository.ScriptConverter, attempts int, baseDelay time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		conv:       conv,
		attempts:   attempts,
		baseDelay:  baseDelay,
	}
}

// SetBaseURL overrides the upstream endpoint (tests, mirrors).
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

type searchResponse struct {
	Results []struct {
		ID   int    `json:"ID"`
		Name string `json:"Name"`
	} `json:"Results"`
}

type itemResponse struct {
	ID                 int    `json:"ID"`
	Name               string `json:"Name"`
	ItemSearchCategory struct {
		Name string `json:"Name"`
	} `json:"ItemSearchCategory"`
	ItemUICategory struct {
		Name string `json:"Name"`
	} `json:"ItemUICategory"`
}

// Search queries the item index and returns candidates scored against
// the original (display-script) query, best first.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]entity.Candidate, error) {
	u := fmt.Sprintf("%s/search?string=%s&indexes=item&limit=%d",
		c.baseURL, url.QueryEscape(c.conv.ToIndexing(query)), limit)

	var payload searchResponse
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("cafemaker search %q: %w", query, err)
	}

	out := make([]entity.Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.ID <= 0 {
			continue
		}
		name := c.conv.ToDisplay(r.Name)
		out = append(out, entity.Candidate{
			ID:    r.ID,
			Name:  name,
			Score: textnorm.Similarity(query, name),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// GetMeta fetches one item's name and classification fields.
func (c *Client) GetMeta(ctx context.Context, itemID int) (*entity.ItemMeta, error) {
	u := fmt.Sprintf("%s/item/%d?language=chs&columns=ID,Name,ItemSearchCategory.Name,ItemUICategory.Name",
		c.baseURL, itemID)

	var payload itemResponse
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("cafemaker item %d: %w", itemID, err)
	}
	if payload.ID == 0 {
		payload.ID = itemID
	}
	name := c.conv.ToDisplay(payload.Name)
	if name == "" {
		name = fmt.Sprintf("%d", itemID)
	}
	return &entity.ItemMeta{
		ID:             payload.ID,
		Name:           name,
		SearchCategory: c.conv.ToDisplay(payload.ItemSearchCategory.Name),
		UICategory:     c.conv.ToDisplay(payload.ItemUICategory.Name),
	}, nil
}

// getJSON fetches with linear backoff (baseDelay × attempt number).
// Any network error or non-2xx status counts as transient.
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
