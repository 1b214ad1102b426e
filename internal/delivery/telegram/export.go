package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

// handleExportCommand sends the learned dictionaries as an xlsx file.
// Admin only; the exported file is the practical way to audit what the
// bot has picked up from users.
func (h *BotHandler) handleExportCommand(_ context.Context, message *tgbotapi.Message) {
	if h.cfg.AdminUserID == 0 || message.From.ID != h.cfg.AdminUserID {
		h.sendPlain(message.Chat.ID, "❌ 這個指令只有管理員能用。")
		return
	}

	xlsxBytes, err := buildDictionaryXLSX(h.aliases.Learned(), h.terms.All())
	if err != nil {
		log.Printf("dictionary export xlsx error: %v", err)
		h.sendPlain(message.Chat.ID, "❌ 匯出檔案製作失敗。")
		return
	}

	filename := fmt.Sprintf("dictionary_%s.xlsx", time.Now().Format("20060102_150405"))
	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{Name: filename, Bytes: xlsxBytes})
	doc.Caption = fmt.Sprintf("📖 學習詞庫匯出\n別名 %d 筆 / 詞彙映射 %d 筆", len(h.aliases.Learned()), len(h.terms.All()))
	if _, err := h.bot.Send(doc); err != nil {
		log.Printf("dictionary export send error: %v", err)
		h.sendPlain(message.Chat.ID, "❌ 匯出檔案傳送失敗。")
	}
}

func buildDictionaryXLSX(aliases map[string]int, terms map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const aliasSheet = "別名"
	f.SetSheetName(f.GetSheetName(0), aliasSheet)
	f.SetCellValue(aliasSheet, "A1", "查詢詞")
	f.SetCellValue(aliasSheet, "B1", "物品ID")

	aliasKeys := make([]string, 0, len(aliases))
	for k := range aliases {
		aliasKeys = append(aliasKeys, k)
	}
	sort.Strings(aliasKeys)
	for i, k := range aliasKeys {
		row := i + 2
		f.SetCellValue(aliasSheet, fmt.Sprintf("A%d", row), k)
		f.SetCellValue(aliasSheet, fmt.Sprintf("B%d", row), aliases[k])
	}

	const termSheet = "詞彙映射"
	if _, err := f.NewSheet(termSheet); err != nil {
		return nil, err
	}
	f.SetCellValue(termSheet, "A1", "原詞")
	f.SetCellValue(termSheet, "B1", "替換詞")

	termKeys := make([]string, 0, len(terms))
	for k := range terms {
		termKeys = append(termKeys, k)
	}
	sort.Strings(termKeys)
	for i, k := range termKeys {
		row := i + 2
		f.SetCellValue(termSheet, fmt.Sprintf("A%d", row), k)
		f.SetCellValue(termSheet, fmt.Sprintf("B%d", row), terms[k])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
