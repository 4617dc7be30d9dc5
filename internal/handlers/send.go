package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Outbound helpers. Transport failures are logged and swallowed so one
// blocked recipient never takes a flow down.

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Warn("send failed")
	}
}

func (b *Bot) sendKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Warn("send failed")
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Warn("send failed")
	}
}

func (b *Bot) sendPhoto(chatID int64, fileID, caption string, keyboard tgbotapi.InlineKeyboardMarkup) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	photo.ReplyMarkup = keyboard
	if _, err := b.api.Send(photo); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Warn("send photo failed")
	}
}

// edit rewrites the message a callback button lives on.
func (b *Bot) edit(query *tgbotapi.CallbackQuery, text string) {
	msg := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithField("chat_id", query.Message.Chat.ID).WithError(err).Warn("edit failed")
	}
}

func (b *Bot) editKeyboard(query *tgbotapi.CallbackQuery, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewEditMessageTextAndMarkup(query.Message.Chat.ID, query.Message.MessageID, text, keyboard)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithField("chat_id", query.Message.Chat.ID).WithError(err).Warn("edit failed")
	}
}

// answer pops an ephemeral notice on a callback press.
func (b *Bot) answer(queryID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		b.log.WithError(err).Debug("callback answer failed")
	}
}

func (b *Bot) sendError(chatID int64) {
	b.send(chatID, "An error occurred. Please try again.")
}

func backToMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu"),
		),
	)
}

func backToHelpKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Help Menu", "help"),
		),
	)
}
