package handlers

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/LR-TechX/Ethereal-bot/internal/models"
	"github.com/LR-TechX/Ethereal-bot/internal/repository"
	"github.com/LR-TechX/Ethereal-bot/internal/session"
)

type faqEntry struct {
	Key      string
	Question string
	Answer   string
}

var faqs = []faqEntry{
	{
		Key:      "what_is_ethereal",
		Question: "What is Ethereal?",
		Answer:   "Ethereal is a platform where you earn money by completing tasks like reading posts, playing games, sending Snapchat streaks, and inviting friends.",
	},
	{
		Key:      "payment_methods",
		Question: "What payment methods are available?",
		Answer:   "Payments can be made via bank transfer, mobile money, or Zelle, depending on your country. Check the 'How to Pay' guide in the Help menu.",
	},
	{
		Key:      "task_rewards",
		Question: "How are task rewards calculated?",
		Answer:   "Rewards vary by task type. For example, reading posts earns $2.5 per 10 words, Candy Crush tasks earn $5 daily, and Snapchat streaks can earn up to $20.",
	},
}

type topicKind int

const (
	topicText topicKind = iota
	topicVideo
	topicToggle
	topicFAQ
	topicInput
)

type helpTopic struct {
	Key   string
	Label string
	Kind  topicKind
	Text  string // topicText, topicInput prompts
	URL   string // topicVideo
}

var helpTopics = []helpTopic{
	{Key: "how_to_pay", Label: "How to Pay", Kind: topicVideo, URL: "https://youtu.be/YourPaymentGuide"},
	{Key: "register", Label: "Registration Process", Kind: topicText, Text: "1. Once you have clicked start → choose package\n" +
		"2. Select your coach\n" +
		"3. Pay via your selected country account → upload screenshot\n" +
		"4. Wait for approval, then send details\n" +
		"5. Join the group and start earning! 🎉"},
	{Key: "daily_tasks", Label: "Daily Tasks", Kind: topicVideo, URL: "https://youtu.be/YourTasksGuide"},
	{Key: "reminder", Label: "Toggle Reminder", Kind: topicToggle},
	{Key: "faq", Label: "FAQs", Kind: topicFAQ},
	{Key: "password_recovery", Label: "Password Recovery", Kind: topicInput, Text: "Please provide your registered email to request password recovery:"},
	{Key: "apply_coach", Label: "Apply to be a Coach", Kind: topicText, Text: "To apply to be a coach, use the /coach command. An admin will contact you."},
}

func findHelpTopic(key string) (helpTopic, bool) {
	for _, t := range helpTopics {
		if t.Key == key {
			return t, true
		}
	}
	return helpTopic{}, false
}

func (b *Bot) showHelpMenu(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	status, err := b.svc.Status(chatID)
	if err != nil {
		b.sendError(chatID)
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range helpTopics {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Label, t.Key)))
	}
	if status == models.StatusRegistered {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Refer a Friend", "refer_friend")))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")))
	b.editKeyboard(query, "What would you like help with?", tgbotapi.NewInlineKeyboardMarkup(rows...))
	b.svc.LogInteraction(chatID, "help_menu")
}

func (b *Bot) showHelpTopic(query *tgbotapi.CallbackQuery, topic helpTopic) {
	chatID := query.From.ID
	switch topic.Kind {
	case topicInput:
		b.sessions.Expect(chatID, session.Expectation{Kind: session.ExpectPasswordRecovery})
		b.editKeyboard(query, topic.Text, backToHelpKeyboard())
	case topicToggle:
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Toggle Reminder On/Off", "toggle_reminder")),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔙 Help Menu", "help")),
		)
		b.editKeyboard(query, "Toggle your daily reminder:", keyboard)
	case topicFAQ:
		b.showFAQMenu(query)
	case topicVideo:
		b.editKeyboard(query, "Watch here: "+topic.URL, backToHelpKeyboard())
	default:
		b.editKeyboard(query, topic.Text, backToHelpKeyboard())
	}
}

func (b *Bot) showFAQMenu(query *tgbotapi.CallbackQuery) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range faqs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.Question, "faq_"+f.Key)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Ask Another Question", "faq_custom")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Help Menu", "help")),
	)
	b.editKeyboard(query, "Select a question or ask your own:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleFAQSelection(query *tgbotapi.CallbackQuery, key string) {
	chatID := query.From.ID
	if key == "custom" {
		b.sessions.Expect(chatID, session.Expectation{Kind: session.ExpectFAQQuestion})
		b.editKeyboard(query, "Please type your question:", backToHelpKeyboard())
		return
	}
	for _, f := range faqs {
		if f.Key == key {
			keyboard := tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("🔙 FAQ Menu", "faq"),
					tgbotapi.NewInlineKeyboardButtonData("🔙 Help Menu", "help"),
				),
			)
			b.editKeyboard(query, fmt.Sprintf("❓ %s\n\n%s", f.Question, f.Answer), keyboard)
			return
		}
	}
	b.editKeyboard(query, "FAQ not found.", backToHelpKeyboard())
}

func (b *Bot) handleFAQQuestion(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"FAQ from @%s (chat_id: %d): %s", displayName(message.From), chatID, message.Text))
	b.send(chatID, "Thank you! We'll get back to you soon.")
	b.sessions.ClearExpectation(chatID)
}

func (b *Bot) handlePasswordRecovery(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	email := message.Text
	password, err := b.svc.ResetPassword(chatID, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.send(chatID, "No account found with that email or you are not fully registered. Please try again or contact @bigscottmedia.")
			b.sessions.ClearExpectation(chatID)
			return
		}
		b.sendError(chatID)
		return
	}
	b.send(chatID, fmt.Sprintf(
		"Your password has been reset.\nNew Password: %s\nKeep it safe and use 'Password Recovery' if needed again.", password))
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"Password reset for @%s (chat_id: %d, email: %s)", displayName(message.From), chatID, email))
	b.sessions.ClearExpectation(chatID)
}
