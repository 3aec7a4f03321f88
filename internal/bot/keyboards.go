package bot

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/pixbot/core/telegram/keyboard"
	"github.com/m3rciful/pixbot/internal/models"
)

var categoryLabels = map[models.Category]string{
	models.CategoryPhoto:        "📷 Photo",
	models.CategoryIllustration: "🎨 Illustration",
	models.CategoryVector:       "📐 Vector",
	models.CategoryVideo:        "🎬 Video",
	models.CategoryMusic:        "🎵 Music",
	models.CategoryGif:          "🎞 GIF",
}

func categoryLabel(cat models.Category) string {
	if label, ok := categoryLabels[cat]; ok {
		return label
	}
	return string(cat)
}

func mainMenuKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🔍 Search", Unique: string(ActionSearch)}},
		[]keyboard.InlineBtn{{Text: "🗂 Category", Unique: string(ActionCategories)}},
	)
}

// categoryKeyboard lists every category two per row, marking the current
// one, with a back button on its own row.
func categoryKeyboard(current models.Category) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(models.Categories))
	for _, cat := range models.Categories {
		text := categoryLabel(cat)
		if cat == current {
			text = "• " + text
		}
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   text,
			Unique: string(ActionSetCategory),
			Data:   string(cat),
		})
	}
	rows := keyboard.ChunkInline(buttons, 2)
	rows = append(rows, []keyboard.InlineBtn{{
		Text:   "🔍 Search in " + categoryLabel(current),
		Unique: string(ActionSearchIn),
		Data:   string(current),
	}})
	rows = append(rows, []keyboard.InlineBtn{{Text: "⬅️ Back", Unique: string(ActionMenu)}})
	return keyboard.InlineButtonsRows(rows...)
}

// gateKeyboard shows one join link per pending channel, in configured
// order, plus the re-verify button.
func gateKeyboard(pending []models.Channel) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([][]tele.InlineButton, 0, len(pending)+1)
	for _, ch := range pending {
		rows = append(rows, []tele.InlineButton{{
			Text: "@" + ch.Handle,
			URL:  "https://t.me/" + ch.Handle,
		}})
	}
	verify := markup.Data("✅ I subscribed", string(ActionVerify))
	rows = append(rows, []tele.InlineButton{*verify.Inline()})
	markup.InlineKeyboard = rows
	return markup
}

// pagerKeyboard hides the arrow pointing past an edge. The counter button
// keeps the current result without navigation.
func pagerKeyboard(index, total int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var nav []tele.InlineButton
	if index > 0 {
		nav = append(nav, *markup.Data("⬅️", string(ActionPrev)).Inline())
	}
	counter := fmt.Sprintf("%d/%d", index+1, total)
	nav = append(nav, *markup.Data(counter, string(ActionSelect)).Inline())
	if index < total-1 {
		nav = append(nav, *markup.Data("➡️", string(ActionNext)).Inline())
	}
	markup.InlineKeyboard = [][]tele.InlineButton{
		nav,
		{*markup.Data("🏠 Menu", string(ActionMenu)).Inline()},
	}
	return markup
}

func adminKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "📊 Stats", Unique: string(ActionAdminStats)},
			{Text: "📣 Broadcast", Unique: string(ActionAdminBroadcast)},
		},
		[]keyboard.InlineBtn{
			{Text: "🚫 Ban", Unique: string(ActionAdminBan)},
			{Text: "♻️ Unban", Unique: string(ActionAdminUnban)},
		},
		[]keyboard.InlineBtn{
			{Text: "📢 Channels", Unique: string(ActionAdminChannels)},
		},
	)
}

func adminChannelsKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "➕ Add", Unique: string(ActionAdminAddChan)},
			{Text: "➖ Remove", Unique: string(ActionAdminRemoveChan)},
		},
		[]keyboard.InlineBtn{{Text: "⬅️ Back", Unique: string(ActionAdminBack)}},
	)
}
