package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/config"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/delivery/telegram"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/infrastructure/cafemaker"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/infrastructure/scriptconv"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/infrastructure/storage"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/infrastructure/universalis"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/usecase"
	"github.com/denny0613music-cmd/ff14-market-bot-2.0/pkg/logger"
)

func main() {
	initDefaultTimezone()

	logger.Init()
	logger.InfoLogger.Println("🚀 啟動中...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 設定載入失敗: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Keep-alive endpoint for the hosting platform's health checks.
	go startHealthServer(cfg.HealthPort)

	// 1. Script converter (zh-TW <-> zh-CN)
	converter, err := scriptconv.New()
	if err != nil {
		log.Fatalf("❌ 簡繁轉換初始化失敗: %v", err)
	}
	logger.InfoLogger.Println("✅ 簡繁轉換就緒")

	// 2. Upstream clients
	catalog := cafemaker.NewClient(converter, cfg.RetryAttempts, cfg.RetryBaseDelay)
	marketRepo := universalis.NewClient(cfg.RetryAttempts, cfg.RetryBaseDelay)
	logger.InfoLogger.Println("✅ 上游 API client 就緒")

	// 3. Dictionary stores (files, or Postgres when DATABASE_URL is set)
	aliases, terms, err := storage.NewStoresFromEnv(cfg.DatabaseURL, cfg.AliasFile(), cfg.TermMapFile(), cfg.BaseDictFile)
	if err != nil {
		log.Fatalf("❌ 詞庫儲存初始化失敗: %v", err)
	}
	logger.InfoLogger.Println("✅ 詞庫儲存就緒")

	// 4. Services
	engine := usecase.NewEngine(catalog, aliases, terms, usecase.EngineConfig{
		SearchLimit:       cfg.SearchLimit,
		MinAliasLen:       cfg.MinAliasLen,
		GenericHanLen:     cfg.GenericHanLen,
		RescueLearnMinLen: cfg.RescueLearnMinLen,
		StripSuffixes:     cfg.StripSuffixes,
		SafeSuffixes:      cfg.SafeSuffixes,
		PickSessionTTL:    cfg.PickSessionTTL,
		SessionCap:        cfg.SessionCap,
		SessionEvictStep:  cfg.SessionEvictStep(),
	})
	browser := usecase.NewBrowser(catalog, usecase.BrowserConfig{
		SearchLimit:      cfg.CategorySearchLimit,
		CategoryPageSize: cfg.CategoryPageSize,
		ItemPageSize:     cfg.ItemPageSize,
		MetaConcurrency:  cfg.MetaConcurrency,
		Seeds:            cfg.CategorySeeds(),
		SessionTTL:       cfg.BrowseSessionTTL,
		SessionCap:       cfg.SessionCap,
		SessionEvictStep: cfg.SessionEvictStep(),
	})
	market := usecase.NewMarketService(marketRepo, cfg.Worlds, cfg.WorldConcurrency, usecase.NewMoodPicker())
	logger.InfoLogger.Println("✅ 服務就緒")

	// 5. Telegram bot handler
	botHandler, err := telegram.NewBotHandler(cfg, engine, browser, market, aliases, terms)
	if err != nil {
		log.Fatalf("❌ Bot handler 建立失敗: %v", err)
	}
	logger.InfoLogger.Printf("✅ Telegram bot 就緒: @%s", botHandler.GetBotUsername())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := botHandler.Start(ctx); err != nil {
			logger.ErrorLogger.Printf("❌ Bot 錯誤: %v", err)
		}
	}()

	logger.InfoLogger.Println("🤖 Bot 運行中,Ctrl+C 結束。")

	<-sigChan
	logger.InfoLogger.Println("⏳ 收到停止訊號...")

	cancel()
	logger.InfoLogger.Println("✅ Bot 已停止。")
}

func startHealthServer(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.ErrorLogger.Printf("health server: %v", err)
	}
}

func initDefaultTimezone() {
	const tzName = "Asia/Taipei"
	if loc, err := time.LoadLocation(tzName); err == nil {
		time.Local = loc
		return
	}
	time.Local = time.FixedZone(tzName, 8*60*60)
}
