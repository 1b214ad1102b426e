package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/pkg/textnorm"
)

// RescueResult reports the first fallback query that produced results,
// with a human-readable reason so the user can be told which rule fired.
type RescueResult struct {
	Candidates []entity.Candidate
	UsedQuery  string
	Reason     string
}

type rescueAttempt struct {
	query  string
	reason string
}

// rescueVocab holds the configured fallback vocabularies. Fixed and
// ordered on purpose: enumerable rules keep worst-case latency and the
// false-positive rate bounded, and every hit is explainable in one
// phrase. A generic fuzzy scan over the whole catalog is neither.
type rescueVocab struct {
	stripSuffixes []string
	safeSuffixes  []string
}

// buildRescueAttempts generates the ordered, deduplicated fallback
// queries. Attempts shorter than two characters (normalized) are
// skipped; `tried` seeds the dedupe set with queries already issued, so
// the direct search is never repeated.
func buildRescueAttempts(original, mapped string, vocab rescueVocab, tried []string) []rescueAttempt {
	var attempts []rescueAttempt
	seen := map[string]bool{}
	for _, q := range tried {
		seen[q] = true
	}

	push := func(q, reason string) {
		q = textnorm.Normalize(q)
		if q == "" || seen[q] {
			return
		}
		if len([]rune(textnorm.NormalizeKey(q))) < 2 {
			return
		}
		seen[q] = true
		attempts = append(attempts, rescueAttempt{query: q, reason: reason})
	}

	// 1. The mapped query, when the term map changed anything.
	if mapped != "" && mapped != original {
		push(mapped, "詞彙映射")
	}

	// 2. Container/slot suffix stripped, needs at least one extra
	// character before the suffix.
	origRunes, mappedRunes := []rune(original), []rune(mapped)
	for _, suf := range vocab.stripSuffixes {
		sufLen := len([]rune(suf))
		if hasSuffixRunes(origRunes, suf) && len(origRunes) > sufLen+1 {
			push(string(origRunes[:len(origRunes)-sufLen]), fmt.Sprintf("去掉後綴「%s」", suf))
		}
		if hasSuffixRunes(mappedRunes, suf) && len(mappedRunes) > sufLen+1 {
			push(string(mappedRunes[:len(mappedRunes)-sufLen]), fmt.Sprintf("去掉後綴「%s」(映射後)", suf))
		}
	}

	// 3. Prefix truncation, length 3 then 2, original before mapped.
	if len(origRunes) >= 4 {
		push(string(origRunes[:3]), "取前 3 字")
	}
	if len(origRunes) >= 3 {
		push(string(origRunes[:2]), "取前 2 字")
	}
	if len(mappedRunes) >= 4 {
		push(string(mappedRunes[:3]), "取前 3 字(映射後)")
	}
	if len(mappedRunes) >= 3 {
		push(string(mappedRunes[:2]), "取前 2 字(映射後)")
	}

	// 4. Whitelisted suffixes that are meaningful items on their own.
	for _, suf := range vocab.safeSuffixes {
		if hasSuffixRunes(origRunes, suf) {
			push(suf, fmt.Sprintf("取後綴「%s」", suf))
		}
		if hasSuffixRunes(mappedRunes, suf) {
			push(suf, fmt.Sprintf("取後綴「%s」(映射後)", suf))
		}
	}

	return attempts
}

func hasSuffixRunes(rs []rune, suffix string) bool {
	sufRunes := []rune(suffix)
	if len(sufRunes) == 0 || len(rs) < len(sufRunes) {
		return false
	}
	return string(rs[len(rs)-len(sufRunes):]) == suffix
}

// rescueSearch tries each attempt in order and stops at the first
// non-empty result. Individual upstream failures are skipped, not
// fatal: the next rule may still land.
func (e *Engine) rescueSearch(ctx context.Context, original, mapped string) RescueResult {
	attempts := buildRescueAttempts(original, mapped, e.vocab, []string{textnorm.Normalize(mapped)})
	for _, a := range attempts {
		results, err := e.catalog.Search(ctx, a.query, e.searchLimit)
		if err != nil {
			log.Printf("rescue attempt %q (%s): %v", a.query, a.reason, err)
			continue
		}
		if len(results) > 0 {
			return RescueResult{Candidates: results, UsedQuery: a.query, Reason: a.reason}
		}
	}
	return RescueResult{}
}
