package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/constants"
)

// Config is everything the bot reads from the environment. Thresholds
// and rescue vocabularies live here rather than in code; the shipped
// defaults are the hand-tuned zh-TW values.
type Config struct {
	TelegramToken string
	PriceChatID   int64 // 0 = answer anywhere
	AdminUserID   int64 // 0 = dictionary export disabled

	Worlds            []string
	AutoDeleteMinutes int

	DataDir      string
	BaseDictFile string
	DatabaseURL  string

	// Tiered learning thresholds.
	MinAliasLen       int
	GenericHanLen     int
	RescueLearnMinLen int

	// Rescue vocabularies.
	StripSuffixes []string
	SafeSuffixes  []string

	SearchLimit         int
	CategorySearchLimit int
	CategoryPageSize    int
	ItemPageSize        int
	MetaConcurrency     int
	WorldConcurrency    int

	PickSessionTTL   time.Duration
	BrowseSessionTTL time.Duration
	SessionCap       int

	RetryAttempts  int
	RetryBaseDelay time.Duration

	HealthPort string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		Worlds:              getEnvList("WORLD_LIST", nil),
		AutoDeleteMinutes:   getEnvInt("AUTO_DELETE_MINUTES", constants.DefaultAutoDeleteMinutes),
		DataDir:             getEnvDefault("DATA_DIR", defaultDataDir()),
		BaseDictFile:        os.Getenv("BASE_DICT_FILE"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		MinAliasLen:         getEnvInt("MIN_ALIAS_LEN", constants.DefaultMinAliasLen),
		GenericHanLen:       getEnvInt("GENERIC_HAN_LEN", constants.DefaultGenericHanLen),
		RescueLearnMinLen:   getEnvInt("RESCUE_LEARN_MIN_LEN", constants.DefaultRescueLearnMinLen),
		StripSuffixes:       getEnvList("RESCUE_STRIP_SUFFIXES", constants.DefaultStripSuffixes),
		SafeSuffixes:        getEnvList("RESCUE_SAFE_SUFFIXES", constants.DefaultSafeSuffixes),
		SearchLimit:         getEnvInt("SEARCH_LIMIT", constants.DefaultSearchLimit),
		CategorySearchLimit: getEnvInt("CATEGORY_SEARCH_LIMIT", constants.DefaultCategorySearchLimit),
		CategoryPageSize:    getEnvInt("CATEGORY_PAGE_SIZE", constants.DefaultCategoryPageSize),
		ItemPageSize:        getEnvInt("ITEM_PAGE_SIZE", constants.DefaultItemPageSize),
		MetaConcurrency:     getEnvInt("CATEGORY_META_CONCURRENCY", constants.DefaultMetaConcurrency),
		WorldConcurrency:    getEnvInt("WORLD_CONCURRENCY", constants.DefaultWorldConcurrency),
		PickSessionTTL:      getEnvSeconds("PICK_SESSION_TTL_SECONDS", constants.DefaultPickSessionTTL),
		BrowseSessionTTL:    getEnvSeconds("BROWSE_SESSION_TTL_SECONDS", constants.DefaultBrowseSessionTTL),
		SessionCap:          getEnvInt("SESSION_CAP", constants.DefaultSessionCap),
		RetryAttempts:       getEnvInt("RETRY_ATTEMPTS", constants.DefaultRetryAttempts),
		RetryBaseDelay:      getEnvMillis("RETRY_BASE_DELAY_MS", constants.DefaultRetryBaseDelay),
		HealthPort:          getEnvDefault("PORT", "10000"),
	}

	if raw := strings.TrimSpace(os.Getenv("PRICE_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("PRICE_CHAT_ID is not a chat id: %w", err)
		}
		cfg.PriceChatID = id
	}
	if raw := strings.TrimSpace(os.Getenv("ADMIN_USER_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_USER_ID is not a user id: %w", err)
		}
		cfg.AdminUserID = id
	}

	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is empty")
	}
	if len(cfg.Worlds) == 0 {
		return nil, fmt.Errorf("WORLD_LIST environment variable is empty")
	}
	if cfg.MinAliasLen < 1 {
		cfg.MinAliasLen = constants.DefaultMinAliasLen
	}
	if cfg.GenericHanLen < cfg.MinAliasLen {
		cfg.GenericHanLen = cfg.MinAliasLen
	}
	if cfg.RescueLearnMinLen < cfg.MinAliasLen {
		cfg.RescueLearnMinLen = cfg.MinAliasLen
	}

	return cfg, nil
}

// AliasFile is the learned-alias table path under DataDir.
func (c *Config) AliasFile() string { return c.DataDir + "/items_zh_manual.json" }

// TermMapFile is the dialect dictionary path under DataDir.
func (c *Config) TermMapFile() string { return c.DataDir + "/term_map.json" }

// SessionEvictStep is the batch size used when the session cap is hit,
// derived so a full store frees a quarter of its capacity at once.
func (c *Config) SessionEvictStep() int {
	step := c.SessionCap / 4
	if step < 1 {
		step = constants.DefaultSessionEvictStep
	}
	return step
}

// CategorySeeds returns the browse seed table. Not configurable from
// the environment; the hand-tuned defaults are part of the product.
func (c *Config) CategorySeeds() map[string][]string {
	return constants.DefaultCategorySeeds
}

func defaultDataDir() string {
	// Render-style persistent disk if mounted, else local.
	if st, err := os.Stat("/data"); err == nil && st.IsDir() {
		return "/data"
	}
	return "data"
}

func getEnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	if n := getEnvInt(key, 0); n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func getEnvMillis(key string, def time.Duration) time.Duration {
	if n := getEnvInt(key, 0); n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return def
}

func getEnvList(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
