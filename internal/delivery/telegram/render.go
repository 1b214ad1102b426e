package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/denny0613music-cmd/ff14-market-bot-2.0/internal/domain/entity"
)

// numPrinter renders prices with thousand separators (12,345).
var numPrinter = message.NewPrinter(language.TraditionalChinese)

const (
	worldColWidth = 10
	priceColWidth = 9
	deltaColWidth = 7

	maxCandidateButtons = 10
)

func renderCandidateList(query string, res *entity.Resolution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "「%s」找到 %d 個結果,請選一個:", query, len(res.Candidates))
	if res.Rescue != nil {
		fmt.Fprintf(&b, "\n💡 已改用「%s」(%s)搜尋", res.Rescue.UsedQuery, res.Rescue.Reason)
	}
	if res.QueryTooGeneric {
		b.WriteString("\nℹ️ 關鍵字太短,這次的選擇不會被記住。")
	}
	return b.String()
}

func candidateKeyboard(sessionID string, candidates []entity.Candidate) tgbotapi.InlineKeyboardMarkup {
	n := len(candidates)
	if n > maxCandidateButtons {
		n = maxCandidateButtons
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, n)
	for _, c := range candidates[:n] {
		data := fmt.Sprintf("pick|%s|%d", sessionID, c.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// renderPriceReport builds the cross-world price table as HTML. The
// table body sits in <pre> so the columns align; world names are padded
// by display width because CJK runes are double-wide.
func renderPriceReport(report *entity.PriceReport, rescue *entity.RescueInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 <b>%s</b>\n", html.EscapeString(report.ItemName))
	if rescue != nil {
		fmt.Fprintf(&b, "💡 用「%s」(%s)找到的\n", html.EscapeString(rescue.UsedQuery), html.EscapeString(rescue.Reason))
	}

	if !report.HasData() {
		b.WriteString("目前所有伺服器都沒有掛賣。")
		return b.String()
	}

	writeQualitySection(&b, "NQ", report.NQ, report.BestNQ, report.NQMood)
	if report.BestHQ != nil {
		b.WriteString("\n")
		writeQualitySection(&b, "HQ", report.HQ, report.BestHQ, report.HQMood)
	}
	return b.String()
}

func writeQualitySection(b *strings.Builder, label string, quotes []entity.WorldQuote, best *entity.WorldQuote, mood string) {
	if best == nil {
		return
	}
	fmt.Fprintf(b, "<b>%s</b>\n<pre>", label)
	b.WriteString(tableHeader())
	for _, q := range quotes {
		b.WriteString(tableRow(q, best))
	}
	b.WriteString("</pre>\n")
	if mood != "" {
		fmt.Fprintf(b, "💬 %s\n", html.EscapeString(mood))
	}
}

func tableHeader() string {
	return padCJK("伺服器", worldColWidth+2) +
		padLeft("最低價", priceColWidth) +
		padLeft("7日均", priceColWidth) +
		padLeft("差%", deltaColWidth) + "\n"
}

func tableRow(q entity.WorldQuote, best *entity.WorldQuote) string {
	marker := "  "
	if best != nil && q.World == best.World {
		marker = "🏆"
	}
	return marker + padCJK(q.World, worldColWidth) +
		padLeft(fmtPrice(q.Min), priceColWidth) +
		padLeft(fmtPrice(q.AvgSold), priceColWidth) +
		padLeft(fmtDelta(q.DeltaPct), deltaColWidth) + "\n"
}

func fmtPrice(v *float64) string {
	if v == nil {
		return "—"
	}
	return numPrinter.Sprintf("%d", int64(*v+0.5))
}

func fmtDelta(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%+.0f%%", *v)
}

// padCJK pads to a display width, not a rune count.
func padCJK(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return " " + s
	}
	return strings.Repeat(" ", width-w) + s
}

// renderBrowse builds the text and keyboard for the current browse view.
func renderBrowse(state *entity.BrowseState, catPageSize, itemPageSize int) (string, tgbotapi.InlineKeyboardMarkup) {
	if state.View == entity.ViewItems {
		return renderItemView(state, itemPageSize)
	}
	return renderCategoryView(state, catPageSize)
}

func renderCategoryView(state *entity.BrowseState, pageSize int) (string, tgbotapi.InlineKeyboardMarkup) {
	text := fmt.Sprintf("📂 「%s」的分類 (第 %d/%d 頁)", state.Keyword, state.CatPage+1, state.MaxPage+1)

	start := state.CatPage * pageSize
	end := start + pageSize
	if end > len(state.Categories) {
		end = len(state.Categories)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := start; i < end; i++ {
		cat := state.Categories[i]
		label := fmt.Sprintf("%s (%d)", cat.Label, len(cat.Items))
		data := fmt.Sprintf("cat|%s|%d", state.SessionID, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, data),
		))
	}
	if state.MaxPage > 0 {
		rows = append(rows, navRow(state.SessionID, state.CatPage, state.MaxPage))
	}
	return text, tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderItemView(state *entity.BrowseState, pageSize int) (string, tgbotapi.InlineKeyboardMarkup) {
	cat := state.Categories[state.CurrentCategory]
	text := fmt.Sprintf("📂 %s › %s (第 %d/%d 頁)", state.Keyword, cat.Label, state.ItemPage+1, state.MaxPage+1)

	start := state.ItemPage * pageSize
	end := start + pageSize
	if end > len(cat.Items) {
		end = len(cat.Items)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := start; i < end; i++ {
		it := cat.Items[i]
		data := fmt.Sprintf("item|%s|%d", state.SessionID, it.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(it.Name, data),
		))
	}
	if state.MaxPage > 0 {
		rows = append(rows, navRow(state.SessionID, state.ItemPage, state.MaxPage))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ 回分類", "back|"+state.SessionID),
	))
	return text, tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func navRow(sessionID string, page, maxPage int) []tgbotapi.InlineKeyboardButton {
	prev := tgbotapi.NewInlineKeyboardButtonData("◀️", fmt.Sprintf("nav|%s|prev", sessionID))
	next := tgbotapi.NewInlineKeyboardButtonData("▶️", fmt.Sprintf("nav|%s|next", sessionID))
	label := tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page+1, maxPage+1), "noop")
	if page <= 0 {
		prev = tgbotapi.NewInlineKeyboardButtonData("·", "noop")
	}
	if page >= maxPage {
		next = tgbotapi.NewInlineKeyboardButtonData("·", "noop")
	}
	return tgbotapi.NewInlineKeyboardRow(prev, label, next)
}
