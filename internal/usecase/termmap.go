package usecase

import (
	"sort"
	"strings"
)

// TermMapResult reports the outcome of one dialect-mapping pass.
type TermMapResult struct {
	Mapped string
	Used   bool
}

// ApplyTermMap rewrites dialect terms into catalog wording. An exact
// full-string hit wins outright; otherwise keys are tried longest-first
// as substrings and the first hit replaces that substring, once. Not
// iterative: one substitution per call.
//
// Longest-first matters because short dialect terms are often prefixes
// of longer compound terms naming a different item (咕波 vs 咕波裝備箱);
// replacing the short key inside the compound would corrupt it.
func ApplyTermMap(query string, terms map[string]string) TermMapResult {
	if query == "" || len(terms) == 0 {
		return TermMapResult{Mapped: query}
	}

	if v, ok := terms[query]; ok && v != "" {
		return TermMapResult{Mapped: v, Used: true}
	}

	keys := make([]string, 0, len(terms))
	for k := range terms {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := len([]rune(keys[i])), len([]rune(keys[j]))
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		if !strings.Contains(query, k) {
			continue
		}
		mapped := strings.ReplaceAll(query, k, terms[k])
		if mapped != query {
			return TermMapResult{Mapped: mapped, Used: true}
		}
		break
	}
	return TermMapResult{Mapped: query}
}
