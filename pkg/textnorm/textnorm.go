// Package textnorm canonicalizes user input for lookup keys and computes
// the edit-distance similarity used to rank search candidates.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Invisible characters that chat clients smuggle into copy-pasted item
// names: zero-width space/joiners, word joiner, BOM.
var invisible = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200b, Hi: 0x200d, Stride: 1},
		{Lo: 0x2060, Hi: 0x2060, Stride: 1},
		{Lo: 0xfeff, Hi: 0xfeff, Stride: 1},
	},
}

// NFKC folds fullwidth colons/commas/brackets/periods to their ASCII
// forms; what it leaves alone is handled by the replacer below.
var foldChain = transform.Chain(norm.NFKC, runes.Remove(runes.In(invisible)))

var punctReplacer = strings.NewReplacer(
	"。", ".",
	"、", ",",
	"・", "·",
	"‧", "·",
	"•", "·",
	"【", "[",
	"】", "]",
	"〔", "[",
	"〕", "]",
)

// Normalize canonicalizes raw text for comparison: compatibility folding,
// invisible-character stripping, punctuation unification, trim. Never
// fails; whitespace-only input yields "".
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		folded = s
	}
	return strings.TrimSpace(punctReplacer.Replace(folded))
}

// NormalizeKey produces the exact-match dictionary key form: Normalize,
// lowercase, all whitespace removed. Idempotent.
func NormalizeKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(Normalize(s)))
}

// Script variants that zh-TW players type interchangeably. Deliberately
// a short enumerable list, not a transliteration table: anything broader
// starts rewriting names into different items.
var confusable = map[rune]rune{
	'台': '臺', '臺': '台',
	'裡': '裏', '裏': '裡',
	'著': '着', '着': '著',
	'綫': '線', '線': '綫',
}

// ExpandVariants returns rewrites of q with each known confusable
// character swapped for its sibling, one character class per rewrite.
// The original string is not included.
func ExpandVariants(q string) []string {
	q = Normalize(q)
	if q == "" {
		return nil
	}
	var out []string
	seen := map[string]bool{q: true}
	for _, r := range q {
		alt, ok := confusable[r]
		if !ok {
			continue
		}
		v := strings.ReplaceAll(q, string(r), string(alt))
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Levenshtein computes rune-level edit distance with unit costs, no
// transposition discount. Single-row DP.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(curr[j-1]+1, minInt(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity scores two strings in [0,1] over their normalized key
// forms. Symmetric and deterministic; 0 when either side normalizes to
// empty.
func Similarity(a, b string) float64 {
	ka, kb := NormalizeKey(a), NormalizeKey(b)
	if ka == "" || kb == "" {
		return 0
	}
	la, lb := len([]rune(ka)), len([]rune(kb))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1 - float64(Levenshtein(ka, kb))/float64(maxLen)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
