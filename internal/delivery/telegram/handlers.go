package telegram

import (
	"context"
	"errors"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/usecase"
)

// processQuery runs one price lookup end to end. Called from workers.
func (h *BotHandler) processQuery(ctx context.Context, req *queryRequest) {
	h.sendTyping(req.chatID)

	res, err := h.engine.Resolve(ctx, req.text, req.userID)
	if err != nil {
		log.Printf("resolve %q: %v", req.text, err)
		h.sendAutoDelete(req.chatID, "⚠️ 查詢失敗,請稍後再試。")
		return
	}

	switch res.Kind {
	case entity.OutcomeNotFound:
		h.sendAutoDelete(req.chatID, "找不到「"+req.text+"」,換個關鍵字試試?")

	case entity.OutcomeResolved:
		h.showPriceReport(ctx, req.chatID, res.Item, res.Rescue)

	case entity.OutcomeAmbiguous:
		text := renderCandidateList(req.text, res)
		markup := candidateKeyboard(res.SessionID, res.Candidates)
		msg := tgbotapi.NewMessage(req.chatID, text)
		msg.ReplyMarkup = markup
		sent, err := h.bot.Send(msg)
		if err != nil {
			log.Printf("send candidate list: %v", err)
			return
		}
		h.scheduleDelete(req.chatID, sent.MessageID)
	}
}

// showPriceReport fetches the cross-world prices and renders the table.
func (h *BotHandler) showPriceReport(ctx context.Context, chatID int64, item *entity.Candidate, rescue *entity.RescueInfo) {
	h.sendTyping(chatID)

	report, err := h.market.Report(ctx, item.ID, item.Name)
	if err != nil {
		log.Printf("price report %d: %v", item.ID, err)
		h.sendAutoDelete(chatID, "⚠️ 市場資料暫時拿不到,請稍後再試。")
		return
	}

	h.sendHTMLAutoDelete(chatID, renderPriceReport(report, rescue))
}

// startBrowse opens a category browse session and posts the first view.
func (h *BotHandler) startBrowse(ctx context.Context, chatID, userID int64, keyword string) {
	h.sendTyping(chatID)

	state, err := h.browser.StartBrowse(ctx, keyword, userID)
	if err != nil {
		if errors.Is(err, usecase.ErrNoCategories) {
			h.sendAutoDelete(chatID, "「"+keyword+"」這個分類找不到東西。")
			return
		}
		log.Printf("start browse %q: %v", keyword, err)
		h.sendAutoDelete(chatID, "⚠️ 分類瀏覽失敗,請稍後再試。")
		return
	}

	text, markup := renderBrowse(state, h.browser.CategoryPageSize(), h.browser.ItemPageSize())
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	sent, err := h.bot.Send(msg)
	if err != nil {
		log.Printf("send browse view: %v", err)
		return
	}
	h.scheduleDelete(chatID, sent.MessageID)
}

func (h *BotHandler) sendTyping(chatID int64) {
	if h.bot == nil {
		return
	}
	h.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

func (h *BotHandler) sendPlain(chatID int64, text string) {
	if h.bot == nil {
		return
	}
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("send message error: %v", err)
	}
}

// sendAutoDelete sends a plain message and schedules its removal.
func (h *BotHandler) sendAutoDelete(chatID int64, text string) {
	if h.bot == nil {
		return
	}
	sent, err := h.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		log.Printf("send message error: %v", err)
		return
	}
	h.scheduleDelete(chatID, sent.MessageID)
}

func (h *BotHandler) sendHTMLAutoDelete(chatID int64, text string) {
	if h.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := h.bot.Send(msg)
	if err != nil {
		log.Printf("send message error: %v", err)
		return
	}
	h.scheduleDelete(chatID, sent.MessageID)
}

// scheduleDelete removes a bot message after the configured delay so
// the price chat does not silt up. Group chats only; direct messages
// stay.
func (h *BotHandler) scheduleDelete(chatID int64, messageID int) {
	if h.autoDelete <= 0 || chatID >= 0 {
		return
	}
	time.AfterFunc(h.autoDelete, func() {
		h.deleteMessage(chatID, messageID)
	})
}

func (h *BotHandler) deleteMessage(chatID int64, messageID int) {
	if h.bot == nil || messageID == 0 {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		log.Printf("delete message %d/%d: %v", chatID, messageID, err)
	}
}

func (h *BotHandler) editMessage(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = markup
	if _, err := h.bot.Send(edit); err != nil {
		log.Printf("edit message %d/%d: %v", chatID, messageID, err)
	}
}
