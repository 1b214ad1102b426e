package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/constants"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
)

type stubCatalog struct {
	search func(ctx context.Context, query string, limit int) ([]entity.Candidate, error)
	meta   func(ctx context.Context, itemID int) (*entity.ItemMeta, error)
}

func (s *stubCatalog) Search(ctx context.Context, query string, limit int) ([]entity.Candidate, error) {
	if s.search == nil {
		return nil, nil
	}
	return s.search(ctx, query, limit)
}

func (s *stubCatalog) GetMeta(ctx context.Context, itemID int) (*entity.ItemMeta, error) {
	if s.meta == nil {
		return nil, assert.AnError
	}
	return s.meta(ctx, itemID)
}

type stubAliases struct {
	mu      sync.Mutex
	entries map[string]int
	puts    map[string]int
}

func newStubAliases(entries map[string]int) *stubAliases {
	if entries == nil {
		entries = map[string]int{}
	}
	return &stubAliases{entries: entries, puts: map[string]int{}}
}

func (s *stubAliases) Lookup(key string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[key]
	return id, ok
}

func (s *stubAliases) Put(_ context.Context, key string, itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = itemID
	s.puts[key] = itemID
	return nil
}

func (s *stubAliases) Learned() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.puts))
	for k, v := range s.puts {
		out[k] = v
	}
	return out
}

type stubTerms struct {
	mu      sync.Mutex
	entries map[string]string
	puts    map[string]string
}

func newStubTerms(entries map[string]string) *stubTerms {
	if entries == nil {
		entries = map[string]string{}
	}
	return &stubTerms{entries: entries, puts: map[string]string{}}
}

func (s *stubTerms) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

func (s *stubTerms) Put(_ context.Context, pattern, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[pattern] = replacement
	s.puts[pattern] = replacement
	return nil
}

// fakeClock drives session expiry without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

func testEngineConfig() EngineConfig {
	return EngineConfig{
		SearchLimit:       constants.DefaultSearchLimit,
		MinAliasLen:       constants.DefaultMinAliasLen,
		GenericHanLen:     constants.DefaultGenericHanLen,
		RescueLearnMinLen: constants.DefaultRescueLearnMinLen,
		StripSuffixes:     constants.DefaultStripSuffixes,
		SafeSuffixes:      constants.DefaultSafeSuffixes,
		PickSessionTTL:    constants.DefaultPickSessionTTL,
		SessionCap:        constants.DefaultSessionCap,
		SessionEvictStep:  constants.DefaultSessionEvictStep,
	}
}

func newTestEngine(catalog *stubCatalog, aliases *stubAliases, terms *stubTerms) *Engine {
	return NewEngine(catalog, aliases, terms, testEngineConfig())
}

func newTestEngineWithClock(catalog *stubCatalog, aliases *stubAliases, terms *stubTerms, clock *fakeClock) *Engine {
	cfg := testEngineConfig()
	cfg.Now = clock.Now
	return NewEngine(catalog, aliases, terms, cfg)
}

func TestResolveAliasFastPathSkipsSearch(t *testing.T) {
	searched := false
	catalog := &stubCatalog{
		search: func(context.Context, string, int) ([]entity.Candidate, error) {
			searched = true
			return nil, nil
		},
		meta: func(_ context.Context, id int) (*entity.ItemMeta, error) {
			return &entity.ItemMeta{ID: id, Name: "庫啵裝備箱"}, nil
		},
	}
	aliases := newStubAliases(map[string]int{"咕波箱": 23992})
	e := newTestEngine(catalog, aliases, newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "咕波箱", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, res.Kind)
	assert.Equal(t, 23992, res.Item.ID)
	assert.Equal(t, "庫啵裝備箱", res.Item.Name)
	assert.False(t, searched, "alias hit must not touch the network search")
}

func TestResolveAliasVariantHit(t *testing.T) {
	// 台 and 臺 are interchangeable in the wild; a stored alias under one
	// script variant must be found from the other.
	catalog := &stubCatalog{
		meta: func(_ context.Context, id int) (*entity.ItemMeta, error) {
			return &entity.ItemMeta{ID: id, Name: "臺座零件"}, nil
		},
	}
	aliases := newStubAliases(map[string]int{"臺座零件": 512})
	e := newTestEngine(catalog, aliases, newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "台座零件", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, res.Kind)
	assert.Equal(t, 512, res.Item.ID)
}

func TestResolveStaleAliasFallsThrough(t *testing.T) {
	catalog := &stubCatalog{
		search: func(_ context.Context, q string, _ int) ([]entity.Candidate, error) {
			if q == "舊別名物品" {
				return []entity.Candidate{{ID: 42, Name: "舊別名物品", Score: 1}}, nil
			}
			return nil, nil
		},
		meta: func(context.Context, int) (*entity.ItemMeta, error) {
			return nil, assert.AnError
		},
	}
	aliases := newStubAliases(map[string]int{"舊別名物品": 99})
	e := newTestEngine(catalog, aliases, newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "舊別名物品", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, res.Kind)
	assert.Equal(t, 42, res.Item.ID)
}

func TestResolveDirectSearchUsesMappedQuery(t *testing.T) {
	// A term-map hit must feed the direct search; no rescue pass needed.
	var asked []string
	catalog := &stubCatalog{
		search: func(_ context.Context, q string, _ int) ([]entity.Candidate, error) {
			asked = append(asked, q)
			if q == "庫啵" {
				return []entity.Candidate{{ID: 7, Name: "庫啵", Score: 1}}, nil
			}
			return nil, nil
		},
	}
	terms := newStubTerms(map[string]string{"咕波": "庫啵"})
	e := newTestEngine(catalog, newStubAliases(nil), terms)

	res, err := e.Resolve(context.Background(), "咕波", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, res.Kind)
	assert.Equal(t, 7, res.Item.ID)
	assert.Equal(t, []string{"庫啵"}, asked)
	assert.Nil(t, res.Rescue)
}

func TestResolveEmptyQuery(t *testing.T) {
	e := newTestEngine(&stubCatalog{}, newStubAliases(nil), newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "  ​ ", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeNotFound, res.Kind)
}

func TestResolveSingleHitLearnsAlias(t *testing.T) {
	catalog := &stubCatalog{
		search: func(_ context.Context, q string, _ int) ([]entity.Candidate, error) {
			if q == "陳舊的綠圖騰藏寶圖" {
				return []entity.Candidate{{ID: 6688, Name: "陳舊的綠圖騰藏寶圖", Score: 1}}, nil
			}
			return nil, nil
		},
	}
	aliases := newStubAliases(nil)
	e := newTestEngine(catalog, aliases, newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "陳舊的綠圖騰藏寶圖", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, res.Kind)
	assert.Equal(t, map[string]int{"陳舊的綠圖騰藏寶圖": 6688}, aliases.Learned())
}

func TestResolveGenericQueryNotLearned(t *testing.T) {
	catalog := &stubCatalog{
		search: func(context.Context, string, int) ([]entity.Candidate, error) {
			return []entity.Candidate{{ID: 5, Name: "鐵礦", Score: 1}}, nil
		},
	}
	aliases := newStubAliases(nil)
	e := newTestEngine(catalog, aliases, newStubTerms(nil))

	// Two cases: below minimum length, and a short all-Han single token.
	for _, q := range []string{"礦", "鐵礦石"} {
		res, err := e.Resolve(context.Background(), q, 1)
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeResolved, res.Kind)
	}
	assert.Empty(t, aliases.Learned())
}

func TestResolveRescueLearnsTermMap(t *testing.T) {
	catalog := &stubCatalog{
		search: func(_ context.Context, q string, _ int) ([]entity.Candidate, error) {
			if q == "咕波" {
				return []entity.Candidate{{ID: 23992, Name: "庫啵裝備箱", Score: 0.8}}, nil
			}
			return nil, nil
		},
	}
	aliases := newStubAliases(nil)
	terms := newStubTerms(nil)
	e := newTestEngine(catalog, aliases, terms)

	res, err := e.Resolve(context.Background(), "咕波裝備箱", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, res.Kind)
	require.NotNil(t, res.Rescue)
	assert.Equal(t, "咕波", res.Rescue.UsedQuery)
	// Five runes clears the rescue learning gate: both stores get it.
	assert.Equal(t, map[string]string{"咕波裝備箱": "咕波"}, terms.puts)
	assert.Equal(t, map[string]int{"咕波裝備箱": 23992}, aliases.Learned())
}

func TestResolveRescueShortQueryNoTermMapWrite(t *testing.T) {
	catalog := &stubCatalog{
		search: func(_ context.Context, q string, _ int) ([]entity.Candidate, error) {
			if q == "藏寶圖" {
				return []entity.Candidate{{ID: 11, Name: "藏寶圖", Score: 0.7}}, nil
			}
			return nil, nil
		},
	}
	terms := newStubTerms(nil)
	e := newTestEngine(catalog, newStubAliases(nil), terms)

	// 舊藏寶圖 rescues via its safe suffix but at 4 runes is a generic
	// single Han token, so neither store learns it.
	res, err := e.Resolve(context.Background(), "舊藏寶圖", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, res.Kind)
	assert.Empty(t, terms.puts)
}

func TestResolveNotFound(t *testing.T) {
	catalog := &stubCatalog{
		search: func(context.Context, string, int) ([]entity.Candidate, error) { return nil, nil },
	}
	e := newTestEngine(catalog, newStubAliases(nil), newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "絕對不存在的物品名稱", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeNotFound, res.Kind)
}

func TestResolveSearchErrorStillRescues(t *testing.T) {
	catalog := &stubCatalog{
		search: func(_ context.Context, q string, _ int) ([]entity.Candidate, error) {
			if q == "山雞蟾蜍" {
				return nil, assert.AnError
			}
			if q == "山雞蟾" {
				return []entity.Candidate{{ID: 2, Name: "山雞", Score: 0.6}}, nil
			}
			return nil, nil
		},
	}
	e := newTestEngine(catalog, newStubAliases(nil), newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "山雞蟾蜍", 1)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, res.Kind)
	require.NotNil(t, res.Rescue)
	assert.Equal(t, "山雞蟾", res.Rescue.UsedQuery)
}

func multiCatalog(cands []entity.Candidate) *stubCatalog {
	return &stubCatalog{
		search: func(context.Context, string, int) ([]entity.Candidate, error) {
			return cands, nil
		},
	}
}

func TestResolveAmbiguousThenSelect(t *testing.T) {
	cands := []entity.Candidate{
		{ID: 1, Name: "庫啵裝備箱", Score: 0.9},
		{ID: 2, Name: "庫啵時裝箱", Score: 0.8},
	}
	aliases := newStubAliases(nil)
	e := newTestEngine(multiCatalog(cands), aliases, newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "庫啵裝備箱子", 7)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeAmbiguous, res.Kind)
	assert.Len(t, res.Candidates, 2)
	require.NotEmpty(t, res.SessionID)

	picked, err := e.SelectCandidate(context.Background(), res.SessionID, 2, 7)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeResolved, picked.Kind)
	assert.Equal(t, 2, picked.Item.ID)
	assert.Equal(t, map[string]int{"庫啵裝備箱子": 2}, aliases.Learned())

	// The session is single-use.
	_, err = e.SelectCandidate(context.Background(), res.SessionID, 2, 7)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSelectCandidateUnknownID(t *testing.T) {
	cands := []entity.Candidate{
		{ID: 1, Name: "甲物品名稱", Score: 0.9},
		{ID: 2, Name: "乙物品名稱", Score: 0.8},
	}
	e := newTestEngine(multiCatalog(cands), newStubAliases(nil), newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "某個物品名稱", 7)
	require.NoError(t, err)
	require.Equal(t, entity.OutcomeAmbiguous, res.Kind)

	_, err = e.SelectCandidate(context.Background(), res.SessionID, 999, 7)
	assert.ErrorIs(t, err, ErrUnknownCandidate)

	// The bad pick did not consume the session.
	picked, err := e.SelectCandidate(context.Background(), res.SessionID, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, picked.Item.ID)
}

func TestSelectCandidateWrongOwner(t *testing.T) {
	cands := []entity.Candidate{
		{ID: 1, Name: "甲物品名稱", Score: 0.9},
		{ID: 2, Name: "乙物品名稱", Score: 0.8},
	}
	e := newTestEngine(multiCatalog(cands), newStubAliases(nil), newStubTerms(nil))

	res, err := e.Resolve(context.Background(), "某個物品名稱", 7)
	require.NoError(t, err)

	_, err = e.SelectCandidate(context.Background(), res.SessionID, 1, 8)
	assert.ErrorIs(t, err, ErrSessionNotOwned)

	// The owner can still pick afterwards.
	picked, err := e.SelectCandidate(context.Background(), res.SessionID, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, picked.Item.ID)
}

func TestSelectCandidateExpired(t *testing.T) {
	cands := []entity.Candidate{
		{ID: 1, Name: "甲物品名稱", Score: 0.9},
		{ID: 2, Name: "乙物品名稱", Score: 0.8},
	}
	clock := newFakeClock()
	e := newTestEngineWithClock(multiCatalog(cands), newStubAliases(nil), newStubTerms(nil), clock)

	res, err := e.Resolve(context.Background(), "某個物品名稱", 7)
	require.NoError(t, err)

	clock.Advance(constants.DefaultPickSessionTTL + time.Second)

	_, err = e.SelectCandidate(context.Background(), res.SessionID, 1, 7)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestIsGeneric(t *testing.T) {
	e := newTestEngine(&stubCatalog{}, newStubAliases(nil), newStubTerms(nil))

	cases := []struct {
		query string
		want  bool
	}{
		{"礦", true},        // below minimum length
		{"鐵礦", true},       // below minimum length
		{"鐵礦石", true},      // all-Han single token at the generic bound
		{"陳舊的地圖", false},   // five runes, over the bound
		{"abc", false},     // not Han
		{"鐵礦 石", false},    // two tokens
		{"G12地圖", false},   // mixed script
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, e.IsGenericQuery(c.query), "query %q", c.query)
	}
}
