package usecase

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/constants"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
)

// BrowserConfig is the tunable surface of the category browser.
type BrowserConfig struct {
	SearchLimit      int
	CategoryPageSize int
	ItemPageSize     int
	MetaConcurrency  int
	Seeds            map[string][]string
	SessionTTL       time.Duration
	SessionCap       int
	SessionEvictStep int

	Now func() time.Time
}

// Browser drives the paged category exploration flow: seed searches fan
// out per keyword, results are enriched with classification metadata,
// grouped, and served through a per-user session state machine.
type Browser struct {
	catalog repository.CatalogRepository

	searchLimit      int
	categoryPageSize int
	itemPageSize     int
	metaConcurrency  int
	seeds            map[string][]string

	sessions *sessionStore[*browseSession]
}

// browseSession serializes its own mutation: two button presses racing
// on the same session must apply one at a time.
type browseSession struct {
	mu    sync.Mutex
	state entity.BrowseState
}

func NewBrowser(catalog repository.CatalogRepository, cfg BrowserConfig) *Browser {
	return &Browser{
		catalog:          catalog,
		searchLimit:      cfg.SearchLimit,
		categoryPageSize: cfg.CategoryPageSize,
		itemPageSize:     cfg.ItemPageSize,
		metaConcurrency:  cfg.MetaConcurrency,
		seeds:            cfg.Seeds,
		sessions:         newSessionStore[*browseSession](cfg.SessionTTL, cfg.SessionCap, cfg.SessionEvictStep, cfg.Now),
	}
}

// IsSeedKeyword reports whether a bare keyword has a configured seed
// set and can trigger browsing without the explicit prefix.
func (b *Browser) IsSeedKeyword(keyword string) bool {
	_, ok := b.seeds[keyword]
	return ok
}

// CategoryPageSize reports the page size for the category list view.
func (b *Browser) CategoryPageSize() int { return b.categoryPageSize }

// ItemPageSize reports the page size for the item list view.
func (b *Browser) ItemPageSize() int { return b.itemPageSize }

// StartBrowse builds the category tree for a keyword and opens a
// session at the category list view.
func (b *Browser) StartBrowse(ctx context.Context, keyword string, userID int64) (*entity.BrowseState, error) {
	cats, err := b.buildCategories(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, ErrNoCategories
	}

	token := uuid.New().String()
	state := entity.BrowseState{
		SessionID:  token,
		Keyword:    keyword,
		View:       entity.ViewCategories,
		Categories: cats,
		MaxPage:    maxPage(len(cats), b.categoryPageSize),
	}
	b.sessions.Put(token, userID, &browseSession{state: state})
	return cloneState(&state), nil
}

// Advance applies one user action to a session and returns the new
// state. Out-of-range page moves are no-ops; picking an item closes the
// session.
func (b *Browser) Advance(sessionToken string, userID int64, action entity.BrowseAction) (*entity.BrowseState, error) {
	sess, err := b.sessions.Get(sessionToken, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	st := &sess.state

	switch action.Kind {
	case entity.BrowseSelectCategory:
		idx := action.CategoryIndex
		if idx < 0 || idx >= len(st.Categories) {
			return nil, ErrUnknownCandidate
		}
		st.View = entity.ViewItems
		st.CurrentCategory = idx
		st.ItemPage = 0
		st.MaxPage = maxPage(len(st.Categories[idx].Items), b.itemPageSize)

	case entity.BrowseBack:
		if st.View == entity.ViewItems {
			st.View = entity.ViewCategories
			st.MaxPage = maxPage(len(st.Categories), b.categoryPageSize)
		}

	case entity.BrowseNextPage:
		if st.View == entity.ViewItems {
			if st.ItemPage < st.MaxPage {
				st.ItemPage++
			}
		} else if st.CatPage < st.MaxPage {
			st.CatPage++
		}

	case entity.BrowsePrevPage:
		if st.View == entity.ViewItems {
			if st.ItemPage > 0 {
				st.ItemPage--
			}
		} else if st.CatPage > 0 {
			st.CatPage--
		}

	case entity.BrowsePickItem:
		if st.View != entity.ViewItems {
			return nil, ErrUnknownCandidate
		}
		cat := st.Categories[st.CurrentCategory]
		for i := range cat.Items {
			if cat.Items[i].ID == action.ItemID {
				st.Picked = &cat.Items[i]
				b.sessions.Delete(sessionToken)
				return cloneState(st), nil
			}
		}
		return nil, ErrUnknownCandidate
	}

	return cloneState(st), nil
}

// buildCategories runs the seed searches, enriches survivors with
// metadata, and groups them. Individual seed or metadata failures drop
// that slice of results instead of failing the whole browse.
func (b *Browser) buildCategories(ctx context.Context, keyword string) ([]entity.Category, error) {
	seeds, ok := b.seeds[keyword]
	if !ok {
		seeds = []string{keyword}
	}

	seen := make(map[int]struct{})
	var pool []entity.Candidate
	for _, seed := range seeds {
		found, err := b.catalog.Search(ctx, seed, b.searchLimit)
		if err != nil {
			log.Printf("browse seed %q: %v", seed, err)
			continue
		}
		for _, c := range found {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	var metas []entity.ItemMeta
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.metaConcurrency)
	for _, cand := range pool {
		c := cand
		g.Go(func() error {
			meta, err := b.catalog.GetMeta(gctx, c.ID)
			if err != nil || meta == nil {
				// Drop the item; a browse page with a hole beats no page.
				return nil
			}
			mu.Lock()
			metas = append(metas, *meta)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return groupByCategory(keyword, metas), nil
}

var treasureTierRe = regexp.MustCompile(`[GＧ]\s*(\d+)`)

// groupByCategory assigns each item to a label. Treasure-map browsing
// uses tier numbers parsed out of the name; everything else uses the
// catalog's own classification fields.
func groupByCategory(keyword string, metas []entity.ItemMeta) []entity.Category {
	groups := make(map[string][]entity.CategoryItem)
	for _, m := range metas {
		label := categoryLabel(keyword, m)
		groups[label] = append(groups[label], entity.CategoryItem{ID: m.ID, Name: m.Name})
	}

	coll := collate.New(language.TraditionalChinese)
	cats := make([]entity.Category, 0, len(groups))
	for label, items := range groups {
		sort.Slice(items, func(i, j int) bool {
			return coll.CompareString(items[i].Name, items[j].Name) < 0
		})
		cats = append(cats, entity.Category{Key: label, Label: label, Items: items})
	}
	sort.Slice(cats, func(i, j int) bool {
		if len(cats[i].Items) != len(cats[j].Items) {
			return len(cats[i].Items) > len(cats[j].Items)
		}
		return coll.CompareString(cats[i].Label, cats[j].Label) < 0
	})
	return cats
}

func categoryLabel(keyword string, m entity.ItemMeta) string {
	if keyword == constants.TreasureMapKeyword {
		if tier := treasureTierRe.FindStringSubmatch(m.Name); tier != nil {
			return "G" + tier[1]
		}
		switch {
		case strings.Contains(m.Name, "魔紋"):
			return "魔紋圖"
		case strings.Contains(m.Name, "龍皮"):
			return "龍皮圖"
		case strings.Contains(m.Name, "陳舊"):
			return "陳舊地圖"
		case strings.Contains(m.Name, "藏寶圖"):
			return "藏寶圖"
		}
		return constants.FallbackCategoryLabel
	}
	if m.SearchCategory != "" {
		return m.SearchCategory
	}
	if m.UICategory != "" {
		return m.UICategory
	}
	return constants.FallbackCategoryLabel
}

// maxPage is the last valid zero-based page index for n items.
func maxPage(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n - 1) / pageSize
}

// cloneState hands callers a snapshot so later session mutation cannot
// race with rendering.
func cloneState(st *entity.BrowseState) *entity.BrowseState {
	out := *st
	return &out
}
