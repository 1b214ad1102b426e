// Package usecase holds the resolution engine: the multi-stage pipeline
// turning a free-text zh-TW item name into a catalog identifier, the
// tiered learning policy feeding the alias store, and the category
// browse session machine.
package usecase

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/pkg/textnorm"
)

// EngineConfig carries the thresholds of the tiered learning policy and
// the rescue vocabularies. All of it comes from configuration; the
// values are policy, not law.
type EngineConfig struct {
	SearchLimit       int
	MinAliasLen       int
	GenericHanLen     int
	RescueLearnMinLen int
	StripSuffixes     []string
	SafeSuffixes      []string
	PickSessionTTL    time.Duration
	SessionCap        int
	SessionEvictStep  int

	// Now is the clock used for session expiry; nil means time.Now.
	Now func() time.Time
}

// Engine is the name-to-identifier resolution pipeline.
//
// Order per request: merged alias index (exact, no network) -> direct
// catalog search on the term-mapped query -> rescue search. A single
// surviving candidate is used immediately and conditionally learned;
// multiple candidates become a disambiguation session and only the
// user's explicit pick is learned.
type Engine struct {
	catalog repository.CatalogRepository
	aliases repository.AliasRepository
	terms   repository.TermMapRepository

	searchLimit       int
	minAliasLen       int
	genericHanLen     int
	rescueLearnMinLen int
	vocab             rescueVocab

	picks *sessionStore[*pickSession]
}

// pickSession is one pending disambiguation prompt.
type pickSession struct {
	query      string
	candidates []entity.Candidate
	rescue     *entity.RescueInfo
}

func NewEngine(catalog repository.CatalogRepository, aliases repository.AliasRepository, terms repository.TermMapRepository, cfg EngineConfig) *Engine {
	return &Engine{
		catalog:           catalog,
		aliases:           aliases,
		terms:             terms,
		searchLimit:       cfg.SearchLimit,
		minAliasLen:       cfg.MinAliasLen,
		genericHanLen:     cfg.GenericHanLen,
		rescueLearnMinLen: cfg.RescueLearnMinLen,
		vocab: rescueVocab{
			stripSuffixes: cfg.StripSuffixes,
			safeSuffixes:  cfg.SafeSuffixes,
		},
		picks: newSessionStore[*pickSession](cfg.PickSessionTTL, cfg.SessionCap, cfg.SessionEvictStep, cfg.Now),
	}
}

// Resolve runs the full pipeline for one raw query.
func (e *Engine) Resolve(ctx context.Context, rawQuery string, userID int64) (*entity.Resolution, error) {
	query := textnorm.Normalize(rawQuery)
	if query == "" {
		return &entity.Resolution{Kind: entity.OutcomeNotFound}, nil
	}

	// Fast path: merged base ∪ learned index, exact normalized key.
	if id, ok := e.lookupAlias(query); ok {
		if meta, err := e.catalog.GetMeta(ctx, id); err == nil && meta != nil {
			return &entity.Resolution{
				Kind: entity.OutcomeResolved,
				Item: &entity.Candidate{ID: meta.ID, Name: meta.Name, Score: 1},
			}, nil
		}
		// Stale alias or upstream hiccup: fall through to search.
	}

	tm := ApplyTermMap(query, e.terms.All())

	candidates, err := e.catalog.Search(ctx, tm.Mapped, e.searchLimit)
	if err != nil {
		// Transient upstream failure degrades to an empty result; the
		// rescue ladder still gets its chance.
		log.Printf("direct search %q: %v", tm.Mapped, err)
		candidates = nil
	}

	var rescue *entity.RescueInfo
	if len(candidates) == 0 {
		r := e.rescueSearch(ctx, query, tm.Mapped)
		candidates = r.Candidates
		if r.UsedQuery != "" {
			rescue = &entity.RescueInfo{UsedQuery: r.UsedQuery, Reason: r.Reason}
		}
	}

	switch len(candidates) {
	case 0:
		return &entity.Resolution{Kind: entity.OutcomeNotFound}, nil
	case 1:
		e.learn(ctx, query, candidates[0].ID, rescue)
		return &entity.Resolution{
			Kind:   entity.OutcomeResolved,
			Item:   &candidates[0],
			Rescue: rescue,
		}, nil
	}

	token := uuid.New().String()
	e.picks.Put(token, userID, &pickSession{
		query:      query,
		candidates: candidates,
		rescue:     rescue,
	})
	return &entity.Resolution{
		Kind:            entity.OutcomeAmbiguous,
		Candidates:      candidates,
		SessionID:       token,
		Rescue:          rescue,
		QueryTooGeneric: e.isGeneric(query),
	}, nil
}

// SelectCandidate resolves a pending disambiguation with the user's
// explicit pick. The pick is always honored for this request; whether
// it is persisted still depends on the learning policy.
func (e *Engine) SelectCandidate(ctx context.Context, sessionToken string, itemID int, userID int64) (*entity.Resolution, error) {
	ps, err := e.picks.Get(sessionToken, userID)
	if err != nil {
		return nil, err
	}

	var picked *entity.Candidate
	for i := range ps.candidates {
		if ps.candidates[i].ID == itemID {
			picked = &ps.candidates[i]
			break
		}
	}
	if picked == nil {
		return nil, ErrUnknownCandidate
	}

	e.picks.Delete(sessionToken)
	e.learn(ctx, ps.query, picked.ID, ps.rescue)
	return &entity.Resolution{
		Kind:   entity.OutcomeResolved,
		Item:   picked,
		Rescue: ps.rescue,
	}, nil
}

// IsGenericQuery exposes the gating decision for UI hints ("this one is
// too short to remember").
func (e *Engine) IsGenericQuery(query string) bool {
	return e.isGeneric(textnorm.Normalize(query))
}

// lookupAlias consults the merged index for the query and, failing
// that, for its known script-variant rewrites (台/臺 and friends).
func (e *Engine) lookupAlias(query string) (int, bool) {
	if id, ok := e.aliases.Lookup(textnorm.NormalizeKey(query)); ok {
		return id, true
	}
	for _, v := range textnorm.ExpandVariants(query) {
		if id, ok := e.aliases.Lookup(textnorm.NormalizeKey(v)); ok {
			return id, true
		}
	}
	return 0, false
}

// learn applies the tiered write policy. Persistence failures are
// logged and skipped; they never block answering the user.
func (e *Engine) learn(ctx context.Context, query string, itemID int, rescue *entity.RescueInfo) {
	generic := e.isGeneric(query)

	// Rescue-derived term-map entries need the stricter gate: the match
	// was indirect, so binding the original wording needs more length.
	if rescue != nil && rescue.UsedQuery != "" && rescue.UsedQuery != query {
		if !generic && runeLen(textnorm.NormalizeKey(query)) >= e.rescueLearnMinLen {
			if err := e.terms.Put(ctx, query, rescue.UsedQuery); err != nil {
				log.Printf("term-map write %q -> %q skipped: %v", query, rescue.UsedQuery, err)
			}
		}
	}

	if generic {
		return
	}
	if err := e.aliases.Put(ctx, textnorm.NormalizeKey(query), itemID); err != nil {
		log.Printf("alias write %q skipped: %v", query, err)
	}
}

// isGeneric classifies queries too short or too broad to bind to one
// identifier forever: below the minimum length, or a single all-Han
// token at or below the slightly higher threshold (two or three Han
// characters name whole families of items, not one).
func (e *Engine) isGeneric(query string) bool {
	key := textnorm.NormalizeKey(query)
	n := runeLen(key)
	if n < e.minAliasLen {
		return true
	}
	singleToken := len(strings.Fields(query)) <= 1
	return singleToken && n <= e.genericHanLen && allHan(key)
}

func allHan(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.Is(unicode.Han, r) {
			return false
		}
	}
	return true
}

func runeLen(s string) int { return len([]rune(s)) }
