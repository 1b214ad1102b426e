package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/constants"
)

// Start runs the update loop until the context is cancelled.
func (h *BotHandler) Start(ctx context.Context) error {
	h.workerPool.start(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.workerPool.shutdown()
			return ctx.Err()
		case update := <-updates:
			if update.CallbackQuery != nil {
				go h.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil {
				continue
			}
			go h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Text == "" {
		return
	}
	userID := message.From.ID
	username := message.From.UserName
	if username == "" {
		username = message.From.FirstName
	}
	chatID := message.Chat.ID

	// When a price chat is configured, queries anywhere else are ignored.
	if h.cfg.PriceChatID != 0 && chatID != h.cfg.PriceChatID &&
		message.Chat != nil && !message.Chat.IsPrivate() {
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	// "分類 地圖", "(地圖)", or a bare seed keyword open the browser
	// instead of a price lookup.
	if keyword, ok := h.browseKeyword(text); ok {
		go h.startBrowse(ctx, chatID, userID, keyword)
		return
	}

	h.workerPool.submit(&queryRequest{
		ctx:       ctx,
		userID:    userID,
		username:  username,
		chatID:    chatID,
		messageID: message.MessageID,
		text:      text,
	})
}

// browseKeyword extracts the category keyword from a browse trigger, or
// reports that the text is a plain price query.
func (h *BotHandler) browseKeyword(text string) (string, bool) {
	if strings.HasPrefix(text, constants.CategoryTriggerPrefix) {
		kw := strings.TrimSpace(strings.TrimPrefix(text, constants.CategoryTriggerPrefix))
		if kw != "" {
			return kw, true
		}
		return "", false
	}
	for _, pair := range [][2]string{{"(", ")"}, {"（", "）"}} {
		if strings.HasPrefix(text, pair[0]) && strings.HasSuffix(text, pair[1]) {
			kw := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, pair[0]), pair[1]))
			if kw != "" {
				return kw, true
			}
		}
	}
	if h.browser.IsSeedKeyword(text) {
		return text, true
	}
	return "", false
}

func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start", "help":
		h.sendPlain(chatID, helpText(h.cfg.Worlds))
	case "worlds":
		h.sendPlain(chatID, "查價伺服器: "+strings.Join(h.cfg.Worlds, "、"))
	case "export":
		h.handleExportCommand(ctx, message)
	}
}

func helpText(worlds []string) string {
	var b strings.Builder
	b.WriteString("直接輸入物品名稱就能查市場價格,例如:陳舊的緑圖騰藏寶圖\n")
	b.WriteString("輸入「分類 地圖」或 (地圖) 可以分類瀏覽。\n")
	b.WriteString("查價伺服器: ")
	b.WriteString(strings.Join(worlds, "、"))
	return b.String()
}
