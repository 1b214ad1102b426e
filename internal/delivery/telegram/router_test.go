package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/constants"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/usecase"
)

func testHandlerForRouting() *BotHandler {
	browser := usecase.NewBrowser(nil, usecase.BrowserConfig{
		Seeds: constants.DefaultCategorySeeds,
	})
	return &BotHandler{browser: browser}
}

func TestBrowseKeywordTriggers(t *testing.T) {
	h := testHandlerForRouting()

	cases := []struct {
		text    string
		keyword string
		ok      bool
	}{
		{"分類 地圖", "地圖", true},
		{"分類 魚竿", "魚竿", true}, // explicit prefix works for any keyword
		{"分類 ", "", false},
		{"(地圖)", "地圖", true},
		{"（礦石）", "礦石", true}, // fullwidth parens
		{"地圖", "地圖", true},   // bare seed keyword
		{"魚竿", "", false},    // bare non-seed keyword is a price query
		{"陳舊的藏寶圖", "", false},
	}
	for _, c := range cases {
		kw, ok := h.browseKeyword(c.text)
		assert.Equalf(t, c.ok, ok, "text %q", c.text)
		if c.ok {
			assert.Equalf(t, c.keyword, kw, "text %q", c.text)
		}
	}
}
