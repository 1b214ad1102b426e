package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/usecase"
)

// Callback data formats, all under Telegram's 64-byte limit:
//
//	pick|<session>|<itemID>   disambiguation pick
//	cat|<session>|<index>     browse: open category
//	item|<session>|<itemID>   browse: pick item
//	nav|<session>|prev|next   browse: page move
//	back|<session>            browse: back to category list
//	noop                      decorative buttons
func (h *BotHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.From == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	data := cq.Data

	// Stop the client-side spinner.
	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("callback ack error: %v", err)
	}

	if data == "noop" {
		return
	}

	parts := strings.Split(data, "|")
	if len(parts) < 2 {
		return
	}
	cmd, sessionID := parts[0], parts[1]

	switch cmd {
	case "pick":
		if len(parts) != 3 {
			return
		}
		itemID, err := strconv.Atoi(parts[2])
		if err != nil {
			return
		}
		h.handlePickCallback(ctx, cq, chatID, userID, sessionID, itemID)

	case "cat":
		if len(parts) != 3 {
			return
		}
		idx, err := strconv.Atoi(parts[2])
		if err != nil {
			return
		}
		h.advanceBrowse(ctx, cq, chatID, userID, sessionID,
			entity.BrowseAction{Kind: entity.BrowseSelectCategory, CategoryIndex: idx})

	case "item":
		if len(parts) != 3 {
			return
		}
		itemID, err := strconv.Atoi(parts[2])
		if err != nil {
			return
		}
		h.advanceBrowse(ctx, cq, chatID, userID, sessionID,
			entity.BrowseAction{Kind: entity.BrowsePickItem, ItemID: itemID})

	case "nav":
		if len(parts) != 3 {
			return
		}
		kind := entity.BrowseNextPage
		if parts[2] == "prev" {
			kind = entity.BrowsePrevPage
		}
		h.advanceBrowse(ctx, cq, chatID, userID, sessionID, entity.BrowseAction{Kind: kind})

	case "back":
		h.advanceBrowse(ctx, cq, chatID, userID, sessionID,
			entity.BrowseAction{Kind: entity.BrowseBack})
	}
}

func (h *BotHandler) handlePickCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, chatID, userID int64, sessionID string, itemID int) {
	res, err := h.engine.SelectCandidate(ctx, sessionID, itemID, userID)
	if err != nil {
		h.answerSessionError(cq, chatID, err)
		return
	}

	// Replace the candidate list with the chosen name, then fetch prices.
	h.editMessage(chatID, cq.Message.MessageID, "✅ "+res.Item.Name, nil)
	h.showPriceReport(ctx, chatID, res.Item, res.Rescue)
}

func (h *BotHandler) advanceBrowse(ctx context.Context, cq *tgbotapi.CallbackQuery, chatID, userID int64, sessionID string, action entity.BrowseAction) {
	state, err := h.browser.Advance(sessionID, userID, action)
	if err != nil {
		h.answerSessionError(cq, chatID, err)
		return
	}

	if state.Picked != nil {
		h.editMessage(chatID, cq.Message.MessageID, "✅ "+state.Picked.Name, nil)
		item := &entity.Candidate{ID: state.Picked.ID, Name: state.Picked.Name}
		h.showPriceReport(ctx, chatID, item, nil)
		return
	}

	text, markup := renderBrowse(state, h.browser.CategoryPageSize(), h.browser.ItemPageSize())
	h.editMessage(chatID, cq.Message.MessageID, text, &markup)
}

// answerSessionError maps session errors onto user-visible feedback. A
// stranger pressing someone else's button only gets a private alert.
func (h *BotHandler) answerSessionError(cq *tgbotapi.CallbackQuery, chatID int64, err error) {
	switch {
	case errors.Is(err, usecase.ErrSessionNotOwned):
		alert := tgbotapi.NewCallbackWithAlert(cq.ID, "這不是你的查詢喔。")
		if _, e := h.bot.Request(alert); e != nil {
			log.Printf("callback alert error: %v", e)
		}
	case errors.Is(err, usecase.ErrSessionExpired):
		h.editMessage(chatID, cq.Message.MessageID, "這個選單過期了,請重新查詢。", nil)
	case errors.Is(err, usecase.ErrUnknownCandidate):
		log.Printf("callback with unknown candidate: %v", err)
	default:
		log.Printf("callback error: %v", err)
	}
}
