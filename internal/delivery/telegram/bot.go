// Package telegram is the delivery layer: it maps updates from the
// Telegram Bot API onto the resolution, browse, and market services and
// renders their results back as messages.
package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/config"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/repository"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/usecase"
)

// BotHandler owns the Telegram connection and the services behind it.
type BotHandler struct {
	bot     *tgbotapi.BotAPI
	cfg     *config.Config
	engine  *usecase.Engine
	browser *usecase.Browser
	market  *usecase.MarketService
	aliases repository.AliasRepository
	terms   repository.TermMapRepository

	workerPool *workerPool

	autoDelete time.Duration
}

func NewBotHandler(
	cfg *config.Config,
	engine *usecase.Engine,
	browser *usecase.Browser,
	market *usecase.MarketService,
	aliases repository.AliasRepository,
	terms repository.TermMapRepository,
) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	handler := &BotHandler{
		bot:        bot,
		cfg:        cfg,
		engine:     engine,
		browser:    browser,
		market:     market,
		aliases:    aliases,
		terms:      terms,
		autoDelete: time.Duration(cfg.AutoDeleteMinutes) * time.Minute,
	}
	handler.workerPool = newWorkerPool(handler, defaultWorkerCount)
	return handler, nil
}

// GetBotUsername returns the bot's username from Telegram API state.
func (h *BotHandler) GetBotUsername() string {
	return h.bot.Self.UserName
}
