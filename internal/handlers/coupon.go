package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/LR-TechX/Ethereal-bot/internal/models"
	"github.com/LR-TechX/Ethereal-bot/internal/repository"
	"github.com/LR-TechX/Ethereal-bot/internal/scheduler"
	"github.com/LR-TechX/Ethereal-bot/internal/session"
)

const couponReminderDelay = time.Hour

// couponAccount is a static payment destination for coupon purchases,
// separate from the registration payment_accounts table.
type couponAccount struct {
	Name    string
	Details string
}

var couponAccounts = []couponAccount{
	{Name: "Kuda Account", Details: "2036035854\n Kuda Microfinance Bank\n Eluem, Chike Olanrewaju"},
	{Name: "Opay Account", Details: "8051454564\n Opay\n Chike Eluem Olanrewaju"},
	{Name: "Zenith Account", Details: "2267515466\n Zenith Bank\n Chike Eluem Olanrewaju"},
}

func couponAccountDetails(name string) (string, bool) {
	for _, account := range couponAccounts {
		if account.Name == name {
			return account.Details, true
		}
	}
	return "", false
}

func couponAccountKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, account := range couponAccounts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(account.Name, "coupon_account_"+account.Name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) startCouponPurchase(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	b.sessions.Clear(chatID)
	b.sessions.Expect(chatID, session.Expectation{Kind: session.ExpectCouponQuantity})
	b.editKeyboard(query, "How many coupons do you want to purchase?", backToMenuKeyboard())
}

func (b *Bot) handleCouponQuantity(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	quantity, err := strconv.Atoi(strings.TrimSpace(message.Text))
	if err != nil || quantity <= 0 {
		// Expectation stays set so the user can retry.
		b.send(chatID, "Please enter a valid positive integer.")
		return
	}
	b.sessions.Update(chatID, func(s *session.Session) {
		s.CouponQuantity = quantity
		s.Expect = session.Expectation{}
	})
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Standard (₦9,000)", "coupon_standard")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("X (₦14,000)", "coupon_x")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")),
	)
	b.sendKeyboard(chatID, "Select the package for your coupons:", keyboard)
}

func (b *Bot) handleCouponPackage(query *tgbotapi.CallbackQuery, pkg string) {
	chatID := query.From.ID
	s, ok := b.sessions.Peek(chatID)
	if !ok || s.CouponQuantity <= 0 {
		b.editKeyboard(query, "Please start your coupon purchase again.", backToMenuKeyboard())
		return
	}
	total := s.CouponQuantity * models.PackagePrice(pkg)
	b.sessions.Update(chatID, func(sess *session.Session) {
		sess.CouponPackage = pkg
		sess.CouponTotal = total
	})
	b.send(b.cfg.AdminID, fmt.Sprintf(
		"User @%s (chat_id: %d) wants to purchase %d %s coupons for ₦%d.",
		displayName(query.From), chatID, s.CouponQuantity, pkg, total,
	))
	b.editKeyboard(query, fmt.Sprintf(
		"You are purchasing %d %s coupons.\nTotal amount: ₦%d\n\nSelect the account to pay to:\n\n"+
			"For coupon payment accounts in other countries not listed, contact @bigscottmedia",
		s.CouponQuantity, pkg, total,
	), couponAccountKeyboard())
}

func (b *Bot) handleCouponAccount(query *tgbotapi.CallbackQuery, account string) {
	chatID := query.From.ID
	details, ok := couponAccountDetails(account)
	if !ok {
		b.sendKeyboard(chatID, "Error: Invalid account. Contact @bigscottmedia.", backToMenuKeyboard())
		return
	}
	s, found := b.sessions.Peek(chatID)
	if !found || s.CouponQuantity <= 0 || s.CouponPackage == "" {
		b.sendKeyboard(chatID, "Please start your coupon purchase again.", backToMenuKeyboard())
		return
	}

	paymentID, err := b.svc.CreateCouponPayment(chatID, s.CouponPackage, s.CouponQuantity, account)
	if err != nil {
		b.log.WithField("chat_id", chatID).WithError(err).Error("coupon payment creation failed")
		b.sendError(chatID)
		return
	}
	b.sessions.Update(chatID, func(s *session.Session) {
		s.SelectedAccount = account
		s.Waiting = session.Approval{Kind: session.ApprovalCoupon, PaymentID: paymentID}
		s.Expect = session.Expectation{Kind: session.ExpectCouponScreenshot}
	})

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Change Account", "change_coupon_account")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Main Menu", "menu")),
	)
	b.sendKeyboard(chatID, fmt.Sprintf(
		"Payment details:\n\n%s\n\nPlease make the payment and send the screenshot.", details,
	), keyboard)
}

func (b *Bot) showCouponAccountSelection(query *tgbotapi.CallbackQuery) {
	chatID := query.From.ID
	s, ok := b.sessions.Peek(chatID)
	if !ok || s.CouponQuantity <= 0 {
		b.editKeyboard(query, "Please start your coupon purchase again.", backToMenuKeyboard())
		return
	}
	b.editKeyboard(query, fmt.Sprintf(
		"You are purchasing %d %s coupons.\nTotal amount: ₦%d\n\nSelect the account to pay to:",
		s.CouponQuantity, s.CouponPackage, s.CouponTotal,
	), couponAccountKeyboard())
}

func (b *Bot) handleCouponScreenshot(message *tgbotapi.Message, fileID string) {
	chatID := message.Chat.ID
	s, ok := b.sessions.Peek(chatID)
	if !ok || s.Waiting.Kind != session.ApprovalCoupon {
		b.send(chatID, "You have no pending coupon purchase.")
		return
	}
	paymentID := s.Waiting.PaymentID
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Approve", fmt.Sprintf("approve_coupon_%d", paymentID))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Pending", fmt.Sprintf("pending_coupon_%d", paymentID))),
	)
	b.sendPhoto(b.cfg.AdminID, fileID, fmt.Sprintf(
		"📸 Coupon Payment from @%s (chat_id: %d)", displayName(message.From), chatID,
	), keyboard)
	b.send(chatID, "✅ Screenshot received! Awaiting admin approval.")
	b.sched.Defer(scheduler.FlowCoupon, paymentID, couponReminderDelay, func() {
		b.checkCouponPayment(paymentID)
	})
}

// checkCouponPayment re-reads the payment at fire time: a state change since
// scheduling makes this a no-op.
func (b *Bot) checkCouponPayment(paymentID int64) {
	payment, err := b.svc.Payment(paymentID)
	if err != nil || payment.Status != models.PaymentPending {
		return
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Payment Approval Stats", "check_approval")),
	)
	b.sendKeyboard(payment.ChatID, "Your coupon payment is still being reviewed. Click below to check status:", keyboard)
}

func (b *Bot) handleApproveCoupon(query *tgbotapi.CallbackQuery, paymentID int64) {
	if _, err := b.svc.ApproveCouponPayment(paymentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.edit(query, "Payment not found.")
			return
		}
		b.log.WithField("payment_id", paymentID).WithError(err).Error("coupon approval failed")
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	b.sched.Cancel(scheduler.FlowCoupon, paymentID)
	b.sessions.Expect(b.cfg.AdminID, session.Expectation{Kind: session.ExpectCouponCodes, PaymentID: paymentID})
	b.send(b.cfg.AdminID, fmt.Sprintf("Payment %d approved. Please send the coupon codes (one per line).", paymentID))
	b.edit(query, "Payment approved. Waiting for coupon codes.")
}

func (b *Bot) handlePendingCoupon(query *tgbotapi.CallbackQuery, paymentID int64) {
	payment, err := b.svc.Payment(paymentID)
	if err != nil {
		b.edit(query, "An error occurred. Please try again.")
		return
	}
	b.send(payment.ChatID, "Your coupon payment is still being reviewed.")
}

// handleCouponCodes turns the admin's newline-separated codes into coupon
// rows and delivers them verbatim, one per line, to the purchaser.
func (b *Bot) handleCouponCodes(message *tgbotapi.Message, paymentID int64) {
	adminID := message.Chat.ID
	codes, purchaser, err := b.svc.IssueCoupons(paymentID, message.Text)
	if err != nil {
		b.log.WithField("payment_id", paymentID).WithError(err).Error("coupon issuance failed")
		b.sendError(adminID)
		return
	}
	b.send(purchaser, "🎉 Your coupon purchase is approved!\n\nHere are your coupons:\n"+strings.Join(codes, "\n"))
	b.send(adminID, "Coupons sent to the user successfully.")
	b.sessions.ClearExpectation(adminID)
}
