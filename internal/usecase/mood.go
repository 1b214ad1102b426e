package usecase

import "math/rand"

// MoodPicker turns a price delta (current minimum vs. recent average,
// in percent) into a short commentary line. Pools are bucketed by how
// far the market sits from its recent average; the line inside a bucket
// is chosen randomly so repeated lookups do not read like a broken
// record.
type MoodPicker struct {
	intn func(int) int
}

func NewMoodPicker() *MoodPicker {
	return &MoodPicker{intn: rand.Intn}
}

// newMoodPickerWithRand exists for deterministic tests.
func newMoodPickerWithRand(intn func(int) int) *MoodPicker {
	return &MoodPicker{intn: intn}
}

var moodNoHistory = []string{
	"近期沒有成交紀錄,無從比較。",
	"冷門貨,最近都沒人買過。",
	"有人掛賣但沒人成交,行情成謎。",
}

var moodCrash = []string{ // delta <= -30
	"價格大崩盤!現在買就是撿到寶!",
	"跳樓大拍賣中,錯過不再!",
	"比平常便宜超多,快掃貨!",
	"賣家集體破產價,不買對不起自己。",
}

var moodCheap = []string{ // -30 < delta <= -15
	"比近期均價便宜不少,入手好時機。",
	"行情偏低,可以考慮買進。",
	"現在買算是小賺。",
	"價格親民,值得一看。",
}

var moodSlightlyCheap = []string{ // -15 < delta <= -5
	"略低於均價,還算划算。",
	"小便宜,buy 不 buy 隨意。",
	"比平常便宜一點點。",
}

var moodFair = []string{ // -5 < delta < 5
	"價格四平八穩,沒什麼好說的。",
	"行情正常,該買就買。",
	"不貴不便宜,就是市價。",
}

var moodSlightlyDear = []string{ // 5 <= delta < 15
	"稍微偏貴,不急可以再等等。",
	"比均價高一點,看你急不急。",
	"小貴,斟酌一下。",
}

var moodDear = []string{ // 15 <= delta < 30
	"行情偏高,建議觀望。",
	"有點貴喔,等跌一點再買?",
	"賣家開價不客氣,自己衡量。",
}

var moodGouging = []string{ // delta >= 30
	"天價!賣家是認真的嗎?",
	"搶錢啊!除非很急,不然千萬別買。",
	"貴到離譜,建議換個伺服器看看。",
	"這價格……建議先深呼吸。",
}

// Pick selects a commentary line for the given delta percentage. A nil
// delta means listings exist but no recent sales to compare against.
func (p *MoodPicker) Pick(deltaPct *float64) string {
	pool := p.poolFor(deltaPct)
	return pool[p.intn(len(pool))]
}

func (p *MoodPicker) poolFor(deltaPct *float64) []string {
	if deltaPct == nil {
		return moodNoHistory
	}
	d := *deltaPct
	switch {
	case d <= -30:
		return moodCrash
	case d <= -15:
		return moodCheap
	case d <= -5:
		return moodSlightlyCheap
	case d < 5:
		return moodFair
	case d < 15:
		return moodSlightlyDear
	case d < 30:
		return moodDear
	default:
		return moodGouging
	}
}
