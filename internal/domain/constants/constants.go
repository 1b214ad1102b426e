package constants

import "time"

const (
	// Search limits.
	DefaultSearchLimit         = 20
	DefaultCategorySearchLimit = 180

	// Paging.
	DefaultCategoryPageSize = 10
	DefaultItemPageSize     = 10

	// Tiered learning: queries shorter than MinAliasLen are never
	// remembered; all-Han single tokens up to GenericHanLen are treated
	// as generic too; rescue-derived term-map entries need
	// RescueLearnMinLen because an indirect match deserves less trust.
	DefaultMinAliasLen       = 3
	DefaultGenericHanLen     = 4
	DefaultRescueLearnMinLen = 4

	// Concurrency caps for upstream fan-out.
	DefaultMetaConcurrency  = 6
	DefaultWorldConcurrency = 4

	// Sessions.
	DefaultSessionCap       = 200
	DefaultSessionEvictStep = 50
	DefaultPickSessionTTL   = 60 * time.Second
	DefaultBrowseSessionTTL = 120 * time.Second

	// Upstream retries: linear backoff, base delay times attempt number.
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 400 * time.Millisecond

	DefaultAutoDeleteMinutes = 30

	// Market history window for averages (7 days, in seconds).
	SalesWindowSeconds = 7 * 24 * 60 * 60

	// Browse trigger prefix, e.g. "分類 地圖".
	CategoryTriggerPrefix = "分類 "

	// Grouping fallback when an item carries no classification.
	FallbackCategoryLabel = "其他"
)

// Container/equipment-slot suffixes tried by rescue search (strip the
// suffix, search the stem). Hand-tuned for the zh-TW/zh-CN pair;
// overridable from config.
var DefaultStripSuffixes = []string{
	"裝備箱", "箱子", "寶箱", "套裝", "外套", "手套", "靴", "鞋", "帽", "頭盔",
}

// Suffixes that are meaningful standalone catalog nouns; safe to search
// on their own when everything else fails.
var DefaultSafeSuffixes = []string{"結晶片", "藏寶圖", "魔紋"}

// Seed queries per browse keyword. Unknown keywords fall back to using
// the keyword itself as the only seed.
var DefaultCategorySeeds = map[string][]string{
	"地圖": {"藏寶圖", "陳舊的藏寶圖", "魔紋", "龍皮", "地圖"},
	"礦石": {"礦", "原礦", "礦石", "礦砂", "碎晶"},
	"木材": {"原木", "木材", "木", "木板"},
	"皮革": {"皮革", "獸皮", "革"},
	"布料": {"布", "布料", "絲", "毛線"},
	"食材": {"食材", "肉", "魚", "蔬菜", "香料"},
}

// TreasureMapKeyword gets irregular subgrouping rules (numbered tiers
// etc.) instead of the item's own classification field.
const TreasureMapKeyword = "地圖"
