package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/LR-TechX/Ethereal-bot/internal/models"
)

func (b *Bot) referralLink(chatID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=ref_%d", b.username, chatID)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	var referredBy *int64
	if args := message.CommandArguments(); strings.HasPrefix(args, "ref_") {
		if id, err := strconv.ParseInt(strings.TrimPrefix(args, "ref_"), 10, 64); err == nil {
			referredBy = &id
		}
	}

	if _, _, err := b.svc.RegisterVisitor(chatID, displayName(message.From), referredBy); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Error("visitor registration failed")
		b.sendError(chatID)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Proceed", "menu"),
		),
	)
	b.sendKeyboard(chatID,
		"Welcome to Ethereal!\n\nGet paid for working with AI and doing what you love most.\n"+
			"• Read posts ➜ earn $2.5/10 words\n• Play Candy Crush daily ➜ earn $5\n"+
			"• Send Snapchat streaks ➜ earn up to $20\n• Invite friends and more!\n\n"+
			fmt.Sprintf("Your referral link: %s\n", b.referralLink(chatID))+
			"Choose your package and start earning today.\nClick below to get started.",
		keyboard)

	fallback := tgbotapi.NewMessage(chatID, "Use the button below 'ONLY' if you get stuck on a process:")
	fallback.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/menu(🔙)")),
	)
	if _, err := b.api.Send(fallback); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Warn("send failed")
	}
}

func (b *Bot) handleReset(message *tgbotapi.Message) {
	b.sessions.Clear(message.Chat.ID)
	b.send(message.Chat.ID, "State reset. Try the flow again.")
}

func (b *Bot) mainMenuKeyboard(chatID int64) tgbotapi.InlineKeyboardMarkup {
	user, err := b.svc.User(chatID)
	if err != nil || user.PaymentStatus != models.StatusRegistered {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("How It Works", "how_it_works")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Purchase Coupon", "coupon")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💸 Register & Make Payment", "package_selector")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❓ Help", "help")),
		)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 My Stats", "stats")),
	}
	if user.Package == models.PackageX {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🚀 Boost with AI", "boost_ai")))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Do Daily Tasks", "daily_tasks")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💰 Earn Extra for the Day", "earn_extra")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Purchase Coupon", "coupon")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❓ Help", "help")),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) showMainMenu(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	b.editKeyboard(query, "Select an option below:", b.mainMenuKeyboard(chatID))
	b.svc.LogInteraction(chatID, "show_main_menu")
}

func (b *Bot) showMainMenuMessage(chatID int64) {
	b.sendKeyboard(chatID, "Select an option below:", b.mainMenuKeyboard(chatID))
	b.svc.LogInteraction(chatID, "show_main_menu")
}

func (b *Bot) statsView(chatID int64) (string, tgbotapi.InlineKeyboardMarkup, error) {
	user, err := b.svc.User(chatID)
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, err
	}
	pkg := user.Package
	if pkg == "" {
		pkg = "Not selected"
	}
	text := fmt.Sprintf(
		"📊 Your Platform Stats:\n\n• Package: %s\n• Payment Status: %s\n• Streaks: %d\n• Invites: %d\n• Balance: $%.2f",
		pkg, capitalize(user.PaymentStatus), user.Streaks, user.Invites, user.Balance,
	)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")),
	)
	if user.Balance >= 30 {
		keyboard = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💸 Withdraw", "withdraw")),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")),
		)
	}
	return text, keyboard, nil
}

func (b *Bot) sendStats(chatID int64) {
	text, keyboard, err := b.statsView(chatID)
	if err != nil {
		b.send(chatID, "No user data found. Please start with /start.")
		return
	}
	b.sendKeyboard(chatID, text, keyboard)
}

func (b *Bot) editStats(query *tgbotapi.CallbackQuery) {
	text, keyboard, err := b.statsView(query.From.ID)
	if err != nil {
		b.answer(query.ID, "No user data found. Please start with /start.")
		return
	}
	b.editKeyboard(query, text, keyboard)
}

func (b *Bot) showReferFriend(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	text := "👥 Refer a Friend and Earn Rewards!\n\n" +
		"Share your referral link with friends. For each friend who joins using your link, you earn $0.1. " +
		"If they register, you earn an additional $0.4 for Standard or $0.9 for X package.\n\n" +
		fmt.Sprintf("Your referral link: %s", b.referralLink(chatID))
	b.editKeyboard(query, text, backToHelpKeyboard())
}

func (b *Bot) handleWithdraw(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	user, err := b.svc.User(chatID)
	if err != nil {
		b.answer(query.ID, "No user data found. Please start with /start.")
		return
	}
	if user.Balance < 30 {
		b.answer(query.ID, "Your balance is less than $30.")
		return
	}
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"Withdrawal request from @%s (chat_id: %d)\nAmount: $%.2f",
		displayName(query.From), chatID, user.Balance,
	))
	b.editKeyboard(query, "Your withdrawal request has been sent to the admin. Please wait for processing.", backToMenuKeyboard())
}

func (b *Bot) showHowItWorks(query *tgbotapi.CallbackQuery) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💎Get Started", "package_selector")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")),
	)
	b.editKeyboard(query,
		"🔖 How Ethereal💚 Works\n"+
			"Ethereal rewards you for everyday activities — like reading posts, playing games (e.g., Candy Crush), "+
			"sending Snapchat streaks, and clicking links.\n"+
			"— — —\n"+
			"📍 ETHEREAL STANDARD — ₦9,000\n"+
			"• Instant ₦8,000 cashback\n"+
			"• Free up to 3GB data on signup\n"+
			"• Earn up to $1 per link\n"+
			"• Earn up to ₦2,500 for every 10 words read\n"+
			"• Up to ₦5,000 daily from Candy Crush\n"+
			"• Daily passive income from your team + your earnings (₦5,000 daily)\n"+
			"• Earn up to $20 sending Snapchat streaks\n"+
			"• ₦8,100–₦8,400 per person you invite\n"+
			"• Valid for 5 months (renewal fee required)\n"+
			"• No personal AI-assisted earnings\n\n"+
			"— — —\n\n"+
			"📍 ETHEREAL-X — ₦14,000\n"+
			"• Instant ₦12,000 cashback\n"+
			"• Free up to 5GB data on signup\n"+
			"• Earn up to $2 per link\n"+
			"• Earn up to ₦3,500 per 10 words (no cap)\n"+
			"• Up to ₦5,000 daily from Candy Crush\n"+
			"• Earn up to $50 sending Snapchat streaks\n"+
			"• Daily passive income from your team + your earnings (₦10,000 daily)\n"+
			"• ₦12,500–₦13,000 per person you invite\n"+
			"• Valid for 1 year (no renewal fee)\n"+
			"• Includes personal AI-assisted earnings",
		keyboard)
}

func (b *Bot) showBoostAI(query *tgbotapi.CallbackQuery) {
	b.editKeyboard(query,
		fmt.Sprintf("🚀 Boost with AI\n\nAccess AI-powered features to maximize your earnings: %s", b.cfg.AIBoostLink),
		backToMenuKeyboard())
}

func (b *Bot) showDailyTasks(query *tgbotapi.CallbackQuery) {
	user, err := b.svc.User(query.From.ID)
	if err != nil {
		b.answer(query.ID, "No user data found. Please start with /start.")
		return
	}
	msg := fmt.Sprintf("Follow this link to perform your daily tasks and earn: %s", b.cfg.DailyTaskLink)
	if user.Package == models.PackageX {
		msg = fmt.Sprintf("🌟 X Users: Maximize your earnings with this special daily task link: %s", b.cfg.DailyTaskLink)
	}
	b.editKeyboard(query, msg, backToMenuKeyboard())
}

// showRegistrationDetails re-displays the stored site credentials.
func (b *Bot) showRegistrationDetails(query *tgbotapi.CallbackQuery) {
	user, err := b.svc.User(query.From.ID)
	if err != nil {
		b.editKeyboard(query, "No registration data found.", backToMenuKeyboard())
		return
	}
	b.editKeyboard(query, fmt.Sprintf(
		"🎉 Registration Complete!\n\n• Site: %s\n• Username: %s\n• Email: %s\n• Password: %s\n\n"+
			"Keep your credentials safe. Use 'Password Recovery' in the Help menu if needed.",
		b.cfg.SiteLink, user.Username, user.Email, user.Password,
	), backToMenuKeyboard())
}
