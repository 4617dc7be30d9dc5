package handlers

import (
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/LR-TechX/Ethereal-bot/internal/models"
	"github.com/LR-TechX/Ethereal-bot/internal/repository"
	"github.com/LR-TechX/Ethereal-bot/internal/scheduler"
	"github.com/LR-TechX/Ethereal-bot/internal/service"
	"github.com/LR-TechX/Ethereal-bot/internal/session"
)

// registrationReminderDelay is how long a screenshot may sit unapproved
// before the user and their coach are nudged.
const registrationReminderDelay = time.Hour

func (b *Bot) showPackageSelector(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	status, err := b.svc.Status(chatID)
	if err != nil {
		b.sendError(chatID)
		return
	}
	if status == models.StatusRegistered {
		b.send(chatID, "You are already registered.")
		return
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🚀X (₦14,000)", "reg_x")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✈️Standard (₦9,000)", "reg_standard")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")),
	)
	b.editKeyboard(query, "Choose your package:", keyboard)
}

func (b *Bot) handlePackageChoice(query *tgbotapi.CallbackQuery, pkg string) {
	chatID := query.From.ID
	if err := b.svc.ChoosePackage(chatID, displayName(query.From), pkg); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Error("package choice failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	b.sessions.Update(chatID, func(s *session.Session) {
		s.Package = pkg
	})

	coaches, err := b.svc.ListCoaches()
	if err != nil {
		b.log.WithError(err).Error("coach listing failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	if len(coaches) == 0 {
		b.edit(query, "No coaches available. Please contact @bigscottmedia.")
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, coach := range coaches {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(coach.Name, fmt.Sprintf("select_coach_%d", coach.CoachID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")))
	b.editKeyboard(query, "Select your coach:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) countryKeyboard() (tgbotapi.InlineKeyboardMarkup, error) {
	accounts, err := b.svc.ActivePaymentAccounts()
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{}, err
	}
	if len(accounts) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, repository.ErrNotFound
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, account := range accounts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", account.Flag, account.Country),
				"reg_country_"+account.Country,
			),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Others", "reg_country_others")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}

func (b *Bot) handleSelectCoach(query *tgbotapi.CallbackQuery, coachID int64) {
	chatID := query.From.ID
	if _, err := b.svc.SelectCoach(chatID, coachID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.answer(query.ID, "Coach not found.")
			return
		}
		b.log.WithField("chat_id", chatID).WithError(err).Error("coach selection failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	keyboard, err := b.countryKeyboard()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.edit(query, "No active payment accounts available. Contact @bigscottmedia.")
			return
		}
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	b.editKeyboard(query, "Select your country for payment:", keyboard)
}

func (b *Bot) showCountrySelection(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	s, ok := b.sessions.Peek(chatID)
	if !ok || s.Package == "" {
		b.editKeyboard(query, "Please select a package first.", backToMenuKeyboard())
		return
	}
	keyboard, err := b.countryKeyboard()
	if err != nil {
		b.edit(query, "No active payment accounts available. Contact @bigscottmedia.")
		return
	}
	b.editKeyboard(query, "Select your country for payment:", keyboard)
}

func (b *Bot) handleRegCountry(query *tgbotapi.CallbackQuery, country string) {
	chatID := query.From.ID
	details, err := b.svc.ActiveAccountDetails(country)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.sendKeyboard(chatID, "Error: Invalid country. Contact @bigscottmedia.", backToMenuKeyboard())
			return
		}
		b.sendError(chatID)
		return
	}
	b.sessions.Update(chatID, func(s *session.Session) {
		s.SelectedCountry = country
		s.Expect = session.Expectation{Kind: session.ExpectRegScreenshot}
	})
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Change Country", "show_country_selection")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")),
	)
	b.sendKeyboard(chatID, fmt.Sprintf(
		"Payment details for %s:\n\n%s\n\nPlease make the payment and send the screenshot.",
		country, details,
	), keyboard)
}

func (b *Bot) handleOtherCountryPrompt(query *tgbotapi.CallbackQuery) {
	b.sessions.Expect(query.From.ID, session.Expectation{Kind: session.ExpectOtherCountry})
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Country Selection", "show_country_selection")),
	)
	b.editKeyboard(query, "Please enter your country:", keyboard)
}

func (b *Bot) handleOtherCountry(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"User @%s (chat_id: %d) requested registration for country: %s",
		displayName(message.From), chatID, message.Text,
	))
	b.sendKeyboard(chatID,
		"Your request has been sent to the admin. Please contact @bigscottmedia to complete your registration.",
		backToMenuKeyboard())
	b.sessions.ClearExpectation(chatID)
}

// handleRegScreenshot forwards the payment proof to the admin and schedules
// the one-hour follow-up. The expectation is cleared by handlePhoto, so a
// re-sent screenshot after this point is a no-op.
func (b *Bot) handleRegScreenshot(message *tgbotapi.Message, fileID string) {
	chatID := message.Chat.ID
	if err := b.svc.MarkScreenshotUploaded(chatID); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Error("screenshot timestamp update failed")
	}

	coachName := "None"
	if user, err := b.svc.User(chatID); err == nil && user.SelectedCoach != nil {
		coachName = b.svc.CoachName(*user.SelectedCoach)
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Approve", fmt.Sprintf("approve_reg_%d", chatID))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Pending", fmt.Sprintf("pending_reg_%d", chatID))),
	)
	b.sendPhoto(b.cfg.AdminID, fileID, fmt.Sprintf(
		"📸 Registration Payment from @%s (chat_id: %d)\nSelected Coach: %s",
		displayName(message.From), chatID, coachName,
	), keyboard)
	b.send(chatID, "✅ Screenshot received! Awaiting admin approval.")

	b.sessions.Update(chatID, func(s *session.Session) {
		s.Waiting = session.Approval{Kind: session.ApprovalRegistration}
	})
	b.sched.Defer(scheduler.FlowRegistration, chatID, registrationReminderDelay, func() {
		b.checkRegistrationPayment(chatID)
	})
}

// checkRegistrationPayment is the deferred follow-up: only the ledger's
// status decides whether to act, the session may be long gone.
func (b *Bot) checkRegistrationPayment(chatID int64) {
	status, err := b.svc.Status(chatID)
	if err != nil || status != models.StatusPendingPayment {
		return
	}
	if user, err := b.svc.User(chatID); err == nil && user.SelectedCoach != nil {
		b.send(*user.SelectedCoach, fmt.Sprintf(
			"Reminder: User (chat_id: %d) has not completed registration within the time limit.", chatID,
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Payment Approval Stats", "check_approval")),
	)
	b.sendKeyboard(chatID, "Your payment is still being reviewed. Click below to check status:", keyboard)
}

func (b *Bot) handleApproveRegistration(query *tgbotapi.CallbackQuery, userChatID int64) {
	if err := b.svc.ApproveRegistrationPayment(userChatID); err != nil {
		b.log.WithField("chat_id", userChatID).WithError(err).Error("registration approval failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	b.sched.Cancel(scheduler.FlowRegistration, userChatID)
	b.sendMarkdown(userChatID,
		"✅ Your payment is approved!\n\n*KINDLY 🎯 SEND YOUR DETAILS FOR YOUR REGISTRATION*\n"+
			"➡️ Email address\n➡️ Full name\n➡️ Username (e.g. @you)\n➡️ Phone number (with your country code)\n\n"+
			"All in one message, each on its own line as seen.")
	b.edit(query, "Payment approved. Waiting for user details.")
}

// handleDetailsSubmission consumes the four-line detail message. Validation
// failures re-prompt without committing anything.
func (b *Bot) handleDetailsSubmission(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	details, err := b.svc.SubmitRegistrationDetails(chatID, message.Text)
	switch {
	case errors.Is(err, service.ErrDetailLines):
		b.send(chatID, "❗️ Please send all four lines.")
		return
	case errors.Is(err, service.ErrInvalidEmail):
		b.send(chatID, "❗️ Invalid email.")
		return
	case errors.Is(err, service.ErrInvalidUsername):
		b.send(chatID, "❗️ Username must start with @.")
		return
	case err != nil:
		b.log.WithField("chat_id", chatID).WithError(err).Error("detail submission failed")
		b.sendError(chatID)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Finalize Registration", fmt.Sprintf("finalize_reg_%d", chatID)),
		),
	)
	b.sendKeyboard(b.cfg.AdminID, fmt.Sprintf(
		"🆕 User Details Received:\nUser ID: %d\nUsername: %s\nPackage: %s\nEmail: %s\nName: %s\nPhone: %s\n\n"+
			"Please finalize registration by providing credentials.",
		chatID, details.Username, details.Package, details.Email, details.FullName, details.Phone,
	), keyboard)
	b.sendKeyboard(chatID, "✅ Details received! Awaiting admin finalization.", backToMenuKeyboard())
}

func (b *Bot) handleFinalizeRegistration(query *tgbotapi.CallbackQuery, userChatID int64) {
	b.sessions.Expect(b.cfg.AdminID, session.Expectation{Kind: session.ExpectUserCredentials, ForUser: userChatID})
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"Please send the username and password for user %d in the format:\nusername\npassword", userChatID,
	))
	b.edit(query, "Waiting for user credentials.")
}

// handleUserCredentials completes registration from the admin's two-line
// credential message.
func (b *Bot) handleUserCredentials(message *tgbotapi.Message, forUser int64) {
	adminID := message.Chat.ID
	result, err := b.svc.FinalizeRegistration(forUser, message.Text)
	if errors.Is(err, service.ErrCredentialLines) {
		b.send(adminID, "Please send username and password in two lines.")
		return
	}
	if err != nil {
		b.log.WithField("chat_id", forUser).WithError(err).Error("registration finalization failed")
		b.sendError(adminID)
		return
	}

	user := result.User
	b.send(forUser, fmt.Sprintf(
		"🎉 Registration successful! Your username is\n %s\n and password is\n %s\n\n "+
			"Join the group using the link below to keep up with info:\n %s",
		user.Username, user.Password, b.cfg.GroupLink,
	))
	if user.SelectedCoach != nil {
		b.send(*user.SelectedCoach, fmt.Sprintf(
			"New registration under your coaching:\nUser ID: %d\nUsername: %s\nPackage: %s\nEmail: %s\nName: %s\nPhone: %s",
			forUser, user.Username, user.Package, user.Email, user.Name, user.Phone,
		))
	}
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"New registration:\nUser ID: %d\nUsername: %s\nPackage: %s\nEmail: %s\nName: %s\nPhone: %s\nCoach: %s",
		forUser, user.Username, user.Package, user.Email, user.Name, user.Phone, result.CoachName,
	))
	b.send(adminID, "Credentials set and sent to the user.")

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Yes, enable reminders", "enable_reminders")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("No, disable reminders", "disable_reminders")),
	)
	b.sendKeyboard(forUser, "Would you like to receive daily reminders to complete your tasks?", keyboard)
	b.sessions.Clear(adminID)
}

func (b *Bot) handleSetReminders(query *tgbotapi.CallbackQuery, enabled bool) {
	chatID := query.From.ID
	if err := b.svc.SetAlarm(chatID, enabled); err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Error("alarm update failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	if enabled {
		b.editKeyboard(query, "✅ Daily reminders enabled!", backToMenuKeyboard())
	} else {
		b.editKeyboard(query, "❌ Okay, daily reminders not set.", backToMenuKeyboard())
	}
}

func (b *Bot) handleToggleReminder(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	enabled, err := b.svc.ToggleAlarm(chatID)
	if err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Error("alarm toggle failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	b.editKeyboard(query, fmt.Sprintf("Daily reminder %s.", state), backToHelpKeyboard())
}

// handleCheckApproval reports where a pending submission stands. The session
// marker says which flow to look at; the ledger supplies the truth.
func (b *Bot) handleCheckApproval(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	s, ok := b.sessions.Peek(chatID)
	if !ok || s.Waiting.Kind == session.ApprovalNone {
		b.send(chatID, "You have no pending payments.")
		return
	}
	switch s.Waiting.Kind {
	case session.ApprovalRegistration:
		status, err := b.svc.Status(chatID)
		if err != nil {
			b.sendError(chatID)
			return
		}
		switch status {
		case models.StatusPendingDetails:
			b.send(chatID, "Payment approved. Please send your details.")
		case models.StatusRegistered:
			b.send(chatID, "Your registration is complete.")
		default:
			b.send(chatID, "Your payment is being reviewed.")
		}
	case session.ApprovalCoupon:
		payment, err := b.svc.Payment(s.Waiting.PaymentID)
		if err != nil {
			b.sendError(chatID)
			return
		}
		if payment.Status == models.PaymentApproved {
			b.send(chatID, "Coupon payment approved. Check your coupons above.")
		} else {
			b.send(chatID, "Your coupon payment is being reviewed.")
		}
	}
}
