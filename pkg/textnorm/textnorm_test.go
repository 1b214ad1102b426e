package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsInvisibleAndFolds(t *testing.T) {
	assert.Equal(t, "", Normalize("   \t "))
	assert.Equal(t, "咕波", Normalize("咕​波"))
	// Fullwidth punctuation folds to ASCII via NFKC.
	assert.Equal(t, "a:b,c", Normalize("ａ：ｂ，ｃ"))
	assert.Equal(t, "藏寶圖.", Normalize("藏寶圖。"))
	assert.Equal(t, "中·點", Normalize("中・點"))
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	inputs := []string{"", "  咕波 裝備箱 ", "Ｇ１２ Map", "ＡＢＣ def", "陳舊的藏寶圖"}
	for _, s := range inputs {
		once := NormalizeKey(s)
		assert.Equal(t, once, NormalizeKey(once), "input %q", s)
	}
}

func TestNormalizeKeyLowersAndRemovesSpace(t *testing.T) {
	assert.Equal(t, "g12map", NormalizeKey("Ｇ１２ Map"))
	assert.Equal(t, "咕波裝備箱", NormalizeKey(" 咕波 裝備箱 "))
}

func TestExpandVariants(t *testing.T) {
	got := ExpandVariants("台風之裡")
	assert.Contains(t, got, "臺風之裡")
	assert.Contains(t, got, "台風之裏")
	assert.NotContains(t, got, "台風之裡")

	assert.Empty(t, ExpandVariants("咕波"))
	assert.Empty(t, ExpandVariants(""))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, Levenshtein("", ""))
	assert.Equal(t, 3, Levenshtein("", "abc"))
	assert.Equal(t, 1, Levenshtein("咕波", "庫波"))
	assert.Equal(t, 2, Levenshtein("咕波", "庫啵"))
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
}

func TestSimilaritySelfIsOne(t *testing.T) {
	for _, s := range []string{"a", "咕波", "陳舊的藏寶圖", "Mixed 咕波 123"} {
		assert.Equal(t, 1.0, Similarity(s, s), "input %q", s)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"咕波", "庫啵"},
		{"藏寶圖", "陳舊的藏寶圖"},
		{"abc", "axc"},
		{"", "abc"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "pair %v", p)
	}
}

func TestSimilarityEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "abc"))
	assert.Equal(t, 0.0, Similarity("   ", "abc"))
}

func TestSimilarityValue(t *testing.T) {
	// 1 - 2/2 = 0 for fully substituted two-char strings.
	assert.InDelta(t, 0.0, Similarity("咕波", "庫啵"), 1e-9)
	// 1 - 1/2 = 0.5 for one substitution out of two.
	assert.InDelta(t, 0.5, Similarity("咕波", "咕啵"), 1e-9)
}
