package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/LR-TechX/Ethereal-bot/internal/service"
	"github.com/LR-TechX/Ethereal-bot/internal/session"
)

const restrictedText = "This command is restricted to the super admin."

func (b *Bot) isAdmin(chatID int64) bool {
	return chatID == b.cfg.AdminID
}

// handleSupport opens the support conversation for any user.
func (b *Bot) handleSupport(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.sessions.Expect(chatID, session.Expectation{Kind: session.ExpectSupportMessage})
	b.send(chatID, "Please describe your issue or question:")
	b.svc.LogInteraction(chatID, "support_initiated")
}

func (b *Bot) handleSupportMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"Support request from @%s (chat_id: %d): %s",
		displayName(message.From), chatID, message.Text))
	b.send(chatID, "Thank you! Our support team will get back to you soon.")
	b.sessions.ClearExpectation(chatID)
}

// handleApplyCoach lets a registered user ask the admin to become a coach.
func (b *Bot) handleApplyCoach(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	status, err := b.svc.Status(chatID)
	if err != nil {
		b.sendError(chatID)
		return
	}
	if status != "registered" {
		b.send(chatID, "Only registered users can apply to be a coach.")
		return
	}
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"User @%s (chat_id: %d) wants to apply to be a coach.",
		displayName(message.From), chatID))
	b.send(chatID, "Your application has been sent. An admin will contact you soon.")
	b.svc.LogInteraction(chatID, "apply_coach")
}

// handleMyUsers lists a coach's registered users. Usable from private chat
// and from the broadcast channel.
func (b *Bot) handleMyUsers(chatID int64) {
	isCoach, err := b.svc.IsCoach(chatID)
	if err != nil {
		b.sendError(chatID)
		return
	}
	if !isCoach {
		b.send(chatID, "You are not a coach.")
		return
	}
	users, err := b.svc.CoachUsers(chatID)
	if err != nil {
		b.sendError(chatID)
		return
	}
	if len(users) == 0 {
		b.send(chatID, "You have no registered users.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Your Registered Users:\n\n")
	for _, u := range users {
		registered := "Unknown"
		if u.RegistrationDate != nil {
			registered = u.RegistrationDate.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&sb, "Chat ID: %d, Username: %s, Package: %s, Registered: %s\n",
			u.ChatID, orUnknown(u.Username), u.Package, registered)
	}
	b.send(chatID, sb.String())
	b.svc.LogInteraction(chatID, "my_users")
}

func (b *Bot) handleBroadcastCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	b.sessions.Expect(chatID, session.Expectation{Kind: session.ExpectBroadcastMessage})
	b.send(chatID, "Please enter the broadcast message to send to all registered users:")
	b.svc.LogInteraction(chatID, "broadcast_initiated")
}

func (b *Bot) handleBroadcastMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.log.WithField("text", message.Text).Info("sending broadcast")
	recipients, err := b.svc.BroadcastRecipients()
	if err != nil {
		b.sendError(chatID)
		return
	}
	text := "📢 Broadcast: " + message.Text
	for _, userID := range recipients {
		if _, err := b.api.Send(tgbotapi.NewMessage(userID, text)); err != nil {
			b.log.WithFields(logrus.Fields{"chat_id": userID}).
				WithError(err).Error("failed to send broadcast")
		}
	}
	b.send(chatID, fmt.Sprintf("Broadcast sent to %d users.", len(recipients)))
	b.sessions.ClearExpectation(chatID)
}

func (b *Bot) handleBotStats(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	stats, err := b.svc.BotStats()
	if err != nil {
		b.sendError(chatID)
		return
	}
	runtime := time.Since(b.startedAt)
	text := fmt.Sprintf(
		"🤖 Bot Stats:\n\n"+
			"• Runtime: %dh %dm\n"+
			"• Total Users: %d\n"+
			"• Registered Users: %d\n"+
			"• Bot Link Clicks: %d\n"+
			"• Hourly Interactions: %d\n"+
			"• Daily Interactions: %d",
		int(runtime.Hours()), int(runtime.Minutes())%60,
		stats.TotalUsers, stats.RegisteredUsers, stats.LinkClicks,
		stats.HourlyInteractions, stats.DailyInteractions)
	b.send(chatID, text)
	b.svc.LogInteraction(chatID, "botstats")
}

func (b *Bot) handleRegisteredUsers(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	users, err := b.svc.RegisteredUsers()
	if err != nil {
		b.sendError(chatID)
		return
	}
	if len(users) == 0 {
		b.send(chatID, "No registered users found.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Registered Users:\n\n")
	for _, u := range users {
		registered := "Unknown"
		if u.RegistrationDate != nil {
			registered = u.RegistrationDate.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&sb, "Chat ID: %d, Username: %s, Package: %s, Registered: %s\n",
			u.ChatID, orUnknown(u.Username), u.Package, registered)
	}
	b.send(chatID, sb.String())
	b.svc.LogInteraction(chatID, "registered_users")
}

func (b *Bot) handleAddTask(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	args := strings.Fields(message.CommandArguments())
	if len(args) != 3 {
		b.send(chatID, "Usage: /add_task <type> <link> <reward>")
		return
	}
	reward, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		b.send(chatID, "Reward must be a number.")
		return
	}
	if _, err := b.svc.AddTask(args[0], args[1], reward); err != nil {
		if errors.Is(err, service.ErrUnknownTaskType) {
			b.send(chatID, "Task type must be one of: join_group, join_channel, external_task.")
			return
		}
		b.sendError(chatID)
		return
	}
	b.send(chatID, "Task added successfully.")
	b.svc.LogInteraction(chatID, "add_task")
}

func (b *Bot) handleAddCoach(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	args := strings.Fields(message.CommandArguments())
	if len(args) != 1 {
		b.send(chatID, "Usage: /addcoach <chat_id>")
		return
	}
	coachID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(chatID, "Invalid chat_id.")
		return
	}
	coachName := fmt.Sprintf("Coach %d", coachID)
	if coachID == b.cfg.AdminID {
		coachName = "Big Scott Media"
	}
	if err := b.svc.AddCoach(coachID, coachName, b.cfg.AdminID); err != nil {
		if errors.Is(err, service.ErrCoachExists) {
			b.send(chatID, "This user is already a coach.")
			return
		}
		b.sendError(chatID)
		return
	}
	b.send(chatID, fmt.Sprintf("Coach %d added successfully as %s.", coachID, coachName))
	b.svc.LogInteraction(chatID, "add_coach")
}

func (b *Bot) handleListCoaches(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	coaches, err := b.svc.ListCoaches()
	if err != nil {
		b.sendError(chatID)
		return
	}
	if len(coaches) == 0 {
		b.send(chatID, "No coaches found.")
		return
	}
	var sb strings.Builder
	sb.WriteString("List of Coaches:\n\n")
	for _, c := range coaches {
		fmt.Fprintf(&sb, "Coach ID: %d, Name: %s\n", c.CoachID, c.Name)
	}
	b.send(chatID, sb.String())
	b.svc.LogInteraction(chatID, "list_coaches")
}

func (b *Bot) handleRemoveCoach(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	args := strings.Fields(message.CommandArguments())
	if len(args) != 1 {
		b.send(chatID, "Usage: /remove_coach <coach_id>")
		return
	}
	coachID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.send(chatID, "Invalid coach_id.")
		return
	}
	removed, err := b.svc.RemoveCoach(coachID)
	if err != nil {
		b.sendError(chatID)
		return
	}
	if !removed {
		b.send(chatID, "Coach not found.")
	} else {
		b.send(chatID, fmt.Sprintf("Coach %d removed successfully.", coachID))
	}
	b.svc.LogInteraction(chatID, "remove_coach")
}

func (b *Bot) handleRegistrationStats(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	stats, err := b.svc.RegistrationStats()
	if err != nil {
		b.sendError(chatID)
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Registration Statistics:\n\nTotal Registered Users: %d\n\n", stats.Total)
	sb.WriteString("Registrations per Package:\n")
	for _, p := range stats.ByPackage {
		fmt.Fprintf(&sb, "- %s: %d\n", p.Package, p.Count)
	}
	sb.WriteString("\nRegistrations per Coach:\n")
	for _, c := range stats.ByCoach {
		if c.CoachID != nil {
			fmt.Fprintf(&sb, "- %s: %d\n", b.svc.CoachName(*c.CoachID), c.Count)
		} else {
			fmt.Fprintf(&sb, "- No coach: %d\n", c.Count)
		}
	}
	b.send(chatID, sb.String())
	b.svc.LogInteraction(chatID, "registration_stats")
}

func (b *Bot) handleAddAccount(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	args := strings.Fields(message.CommandArguments())
	if len(args) < 3 {
		b.send(chatID, "Usage: /add_account <country> <flag> <details>")
		return
	}
	country, flag := args[0], args[1]
	details := strings.Join(args[2:], " ")
	if err := b.svc.AddPaymentAccount(country, flag, details); err != nil {
		b.sendError(chatID)
		return
	}
	b.send(chatID, fmt.Sprintf("Payment account for %s added successfully.", country))
	b.svc.LogInteraction(chatID, "add_account")
}

func (b *Bot) handleDeleteAccount(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	args := strings.Fields(message.CommandArguments())
	if len(args) != 1 {
		b.send(chatID, "Usage: /delete_account <country>")
		return
	}
	country := args[0]
	deleted, err := b.svc.DeletePaymentAccount(country)
	if err != nil {
		b.sendError(chatID)
		return
	}
	if !deleted {
		b.send(chatID, "Account not found.")
	} else {
		b.send(chatID, fmt.Sprintf("Payment account for %s deleted successfully.", country))
	}
	b.svc.LogInteraction(chatID, "delete_account")
}

func (b *Bot) handleListAccounts(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.send(chatID, restrictedText)
		return
	}
	accounts, err := b.svc.ListPaymentAccounts()
	if err != nil {
		b.sendError(chatID)
		return
	}
	if len(accounts) == 0 {
		b.send(chatID, "No payment accounts found.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Payment Accounts:\n\n")
	for _, a := range accounts {
		status := "Inactive"
		if a.IsActive {
			status = "Active"
		}
		fmt.Fprintf(&sb, "Country: %s %s, Details: %s, Status: %s\n", a.Country, a.Flag, a.Details, status)
	}
	b.send(chatID, sb.String())
	b.svc.LogInteraction(chatID, "list_accounts")
}

// SendDailyReminders pings every user with the reminder alarm on. Wired to
// the morning schedule by main.
func (b *Bot) SendDailyReminders() {
	recipients, err := b.svc.ReminderRecipients()
	if err != nil {
		b.log.WithError(err).Error("failed to load reminder recipients")
		return
	}
	for _, chatID := range recipients {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID,
			"🌟 Daily Reminder: Complete your Ethereal tasks to maximize your earnings!")); err != nil {
			b.log.WithFields(logrus.Fields{"chat_id": chatID}).
				WithError(err).Error("failed to send daily reminder")
			continue
		}
		b.svc.LogInteraction(chatID, "daily_reminder")
	}
}

// SendDailySummary delivers the evening report to the admin.
func (b *Bot) SendDailySummary() {
	summary, err := b.svc.DailySummaryReport()
	if err != nil {
		b.log.WithError(err).Error("failed to build daily summary")
		b.send(b.cfg.AdminID, "Error generating daily summary.")
		return
	}
	text := fmt.Sprintf(
		"📊 Daily Summary (%s):\n\n"+
			"• New Users: %d\n"+
			"• Total Payments Approved: ₦%.0f\n"+
			"• Tasks Completed: %d\n"+
			"• Total Balance Distributed: $%.2f",
		time.Now().Format("2006-01-02"),
		summary.NewUsers, summary.PaymentsApproved, summary.TasksCompleted, summary.RewardsPaid)
	b.send(b.cfg.AdminID, text)
}

func orUnknown(username string) string {
	if username == "" {
		return "@Unknown"
	}
	if strings.HasPrefix(username, "@") {
		return username
	}
	return "@" + username
}
