package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyTermMapExactHit(t *testing.T) {
	terms := map[string]string{"A": "B"}

	got := ApplyTermMap("A", terms)
	assert.Equal(t, "B", got.Mapped)
	assert.True(t, got.Used)
}

func TestApplyTermMapSubstring(t *testing.T) {
	terms := map[string]string{"A": "B"}

	got := ApplyTermMap("XAY", terms)
	assert.Equal(t, "XBY", got.Mapped)
	assert.True(t, got.Used)
}

func TestApplyTermMapMiss(t *testing.T) {
	terms := map[string]string{"A": "B"}

	got := ApplyTermMap("Z", terms)
	assert.Equal(t, "Z", got.Mapped)
	assert.False(t, got.Used)
}

func TestApplyTermMapLongestKeyWins(t *testing.T) {
	terms := map[string]string{
		"咕波":    "庫啵",
		"咕波裝備箱": "庫啵裝備箱",
	}

	// The compound key must win over its prefix; substituting 咕波 alone
	// inside 咕波裝備箱 would still happen to produce the right string
	// here, but exact-match and longest-first are what guarantee it.
	got := ApplyTermMap("咕波裝備箱", terms)
	assert.Equal(t, "庫啵裝備箱", got.Mapped)
	assert.True(t, got.Used)
}

func TestApplyTermMapSingleSubstitutionNotIterative(t *testing.T) {
	terms := map[string]string{
		"甲": "乙",
		"乙": "丙",
	}

	got := ApplyTermMap("甲", terms)
	assert.Equal(t, "乙", got.Mapped, "output must not be re-mapped")
}

func TestApplyTermMapEmptyInputs(t *testing.T) {
	assert.Equal(t, TermMapResult{Mapped: ""}, ApplyTermMap("", map[string]string{"A": "B"}))
	assert.Equal(t, TermMapResult{Mapped: "X"}, ApplyTermMap("X", nil))
}
