package handlers

import (
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/LR-TechX/Ethereal-bot/internal/config"
	"github.com/LR-TechX/Ethereal-bot/internal/models"
	"github.com/LR-TechX/Ethereal-bot/internal/scheduler"
	"github.com/LR-TechX/Ethereal-bot/internal/service"
	"github.com/LR-TechX/Ethereal-bot/internal/session"
)

// BotAPI is the slice of the Telegram client the handlers need.
// *tgbotapi.BotAPI satisfies it; tests substitute a fake.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Bot routes every inbound update into exactly one flow handler.
type Bot struct {
	api       BotAPI
	svc       *service.Service
	sessions  *session.Manager
	sched     *scheduler.Scheduler
	cfg       *config.Config
	log       *logrus.Logger
	username  string // bot's own username, for referral links
	startedAt time.Time
}

func NewBot(api BotAPI, svc *service.Service, sessions *session.Manager, sched *scheduler.Scheduler, cfg *config.Config, log *logrus.Logger, username string) *Bot {
	return &Bot{
		api:       api,
		svc:       svc,
		sessions:  sessions,
		sched:     sched,
		cfg:       cfg,
		log:       log,
		username:  username,
		startedAt: time.Now(),
	}
}

// HandleUpdate is the single entry point for the update loop.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	if update.ChannelPost != nil {
		if b.cfg.ChannelID != 0 && update.ChannelPost.Chat.ID == b.cfg.ChannelID {
			b.handleChannelPost(update.ChannelPost)
		}
		return
	}
	if update.Message != nil {
		b.handleMessage(update.Message)
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(message)
		return
	}
	if len(message.Photo) > 0 {
		b.handlePhoto(message)
		return
	}
	if message.Text != "" {
		b.handleText(message)
	}
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.svc.LogInteraction(chatID, message.Command())

	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "menu":
		b.showMainMenuMessage(chatID)
	case "stats":
		b.sendStats(chatID)
	case "reset":
		b.handleReset(message)
	case "support":
		b.handleSupport(message)
	case "coach":
		b.handleApplyCoach(message)
	case "my_users":
		b.handleMyUsers(chatID)
	case "broadcast":
		b.handleBroadcastCommand(message)
	case "botstats":
		b.handleBotStats(message)
	case "registered_users":
		b.handleRegisteredUsers(message)
	case "add_task":
		b.handleAddTask(message)
	case "addcoach":
		b.handleAddCoach(message)
	case "list_coaches":
		b.handleListCoaches(message)
	case "remove_coach":
		b.handleRemoveCoach(message)
	case "registration_stats":
		b.handleRegistrationStats(message)
	case "add_account":
		b.handleAddAccount(message)
	case "delete_account":
		b.handleDeleteAccount(message)
	case "list_accounts":
		b.handleListAccounts(message)
	}
}

// handleText routes free text by the pending expectation; without one, text
// from a pending_details user is treated as the four-line detail submission.
// Anything else is ignored.
func (b *Bot) handleText(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.svc.LogInteraction(chatID, "text_message")

	exp := b.sessions.Expectation(chatID)
	switch exp.Kind {
	case session.ExpectCouponQuantity:
		b.handleCouponQuantity(message)
	case session.ExpectOtherCountry:
		b.handleOtherCountry(message)
	case session.ExpectFAQQuestion:
		b.handleFAQQuestion(message)
	case session.ExpectPasswordRecovery:
		b.handlePasswordRecovery(message)
	case session.ExpectSupportMessage:
		b.handleSupportMessage(message)
	case session.ExpectCouponCodes:
		if chatID == b.cfg.AdminID {
			b.handleCouponCodes(message, exp.PaymentID)
		}
	case session.ExpectBroadcastMessage:
		if chatID == b.cfg.AdminID {
			b.handleBroadcastMessage(message)
		}
	case session.ExpectUserCredentials:
		if chatID == b.cfg.AdminID {
			b.handleUserCredentials(message, exp.ForUser)
		}
	default:
		status, err := b.svc.Status(chatID)
		if err != nil {
			b.log.WithField("chat_id", chatID).WithError(err).Error("status lookup failed")
			return
		}
		if status == models.StatusPendingDetails {
			b.handleDetailsSubmission(message)
		}
	}
}

// handlePhoto routes photos purely by expectation tag; unexpected photos
// are ignored.
func (b *Bot) handlePhoto(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	fileID := message.Photo[len(message.Photo)-1].FileID

	exp := b.sessions.Expectation(chatID)
	switch exp.Kind {
	case session.ExpectRegScreenshot:
		b.handleRegScreenshot(message, fileID)
	case session.ExpectCouponScreenshot:
		b.handleCouponScreenshot(message, fileID)
	case session.ExpectTaskScreenshot:
		b.handleTaskScreenshot(message, fileID, exp.TaskID)
	default:
		return
	}
	b.sessions.ClearExpectation(chatID)
	b.svc.LogInteraction(chatID, "photo_upload")
}

func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	data := query.Data
	chatID := query.From.ID
	b.log.WithFields(logrus.Fields{"chat_id": chatID, "data": data}).Info("callback received")
	b.answer(query.ID, "")
	b.svc.LogInteraction(chatID, "button_"+data)

	switch {
	case data == "menu":
		b.sessions.Clear(chatID)
		b.showMainMenu(query)
	case data == "stats":
		b.editStats(query)
	case data == "refer_friend":
		b.showReferFriend(query)
	case data == "withdraw":
		b.handleWithdraw(query)
	case data == "how_it_works":
		b.showHowItWorks(query)
	case data == "coupon":
		b.startCouponPurchase(query)
	case data == "coupon_standard":
		b.handleCouponPackage(query, models.PackageStandard)
	case data == "coupon_x":
		b.handleCouponPackage(query, models.PackageX)
	case strings.HasPrefix(data, "coupon_account_"):
		b.handleCouponAccount(query, strings.TrimPrefix(data, "coupon_account_"))
	case data == "change_coupon_account":
		b.showCouponAccountSelection(query)
	case data == "package_selector":
		b.showPackageSelector(query)
	case data == "reg_standard":
		b.handlePackageChoice(query, models.PackageStandard)
	case data == "reg_x":
		b.handlePackageChoice(query, models.PackageX)
	case strings.HasPrefix(data, "select_coach_"):
		if coachID, ok := parseID(strings.TrimPrefix(data, "select_coach_")); ok {
			b.handleSelectCoach(query, coachID)
		}
	case data == "reg_country_others":
		b.handleOtherCountryPrompt(query)
	case strings.HasPrefix(data, "reg_country_"):
		b.handleRegCountry(query, strings.TrimPrefix(data, "reg_country_"))
	case data == "show_country_selection":
		b.showCountrySelection(query)
	case strings.HasPrefix(data, "approve_reg_"):
		if userID, ok := parseID(strings.TrimPrefix(data, "approve_reg_")); ok {
			b.handleApproveRegistration(query, userID)
		}
	case strings.HasPrefix(data, "approve_coupon_"):
		if paymentID, ok := parseID(strings.TrimPrefix(data, "approve_coupon_")); ok {
			b.handleApproveCoupon(query, paymentID)
		}
	case strings.HasPrefix(data, "approve_task_"):
		if taskID, userID, ok := parseIDPair(strings.TrimPrefix(data, "approve_task_")); ok {
			b.handleApproveTask(query, taskID, userID)
		}
	case strings.HasPrefix(data, "reject_task_"):
		if taskID, userID, ok := parseIDPair(strings.TrimPrefix(data, "reject_task_")); ok {
			b.handleRejectTask(query, taskID, userID)
		}
	case strings.HasPrefix(data, "finalize_reg_"):
		if userID, ok := parseID(strings.TrimPrefix(data, "finalize_reg_")); ok {
			b.handleFinalizeRegistration(query, userID)
		}
	case strings.HasPrefix(data, "pending_reg_"):
		if userID, ok := parseID(strings.TrimPrefix(data, "pending_reg_")); ok {
			b.send(userID, "Your payment is still being reviewed. Please check back later.")
		}
	case strings.HasPrefix(data, "pending_coupon_"):
		if paymentID, ok := parseID(strings.TrimPrefix(data, "pending_coupon_")); ok {
			b.handlePendingCoupon(query, paymentID)
		}
	case data == "check_approval":
		b.handleCheckApproval(query)
	case data == "toggle_reminder":
		b.handleToggleReminder(query)
	case data == "enable_reminders":
		b.handleSetReminders(query, true)
	case data == "disable_reminders":
		b.handleSetReminders(query, false)
	case data == "boost_ai":
		b.showBoostAI(query)
	case data == "user_registered":
		b.showRegistrationDetails(query)
	case data == "daily_tasks":
		b.showDailyTasks(query)
	case data == "earn_extra":
		b.showExtraTasks(query)
	case strings.HasPrefix(data, "verify_task_"):
		if taskID, ok := parseID(strings.TrimPrefix(data, "verify_task_")); ok {
			b.handleVerifyTask(query, taskID)
		}
	case data == "faq":
		b.showFAQMenu(query)
	case strings.HasPrefix(data, "faq_"):
		b.handleFAQSelection(query, strings.TrimPrefix(data, "faq_"))
	case data == "help":
		b.showHelpMenu(query)
	default:
		if topic, ok := findHelpTopic(data); ok {
			b.showHelpTopic(query, topic)
			return
		}
		b.log.WithField("data", data).Warn("unknown callback action")
		b.answer(query.ID, "Unknown action. Please use /menu.")
	}
}

// handleChannelPost serves the three read-only commands allowed in the
// broadcast channel.
func (b *Bot) handleChannelPost(message *tgbotapi.Message) {
	switch message.Text {
	case "/help":
		b.send(message.Chat.ID, "Help message for channel members.")
	case "/stats":
		b.send(message.Chat.ID, "Channel stats coming soon!")
	case "/my_users":
		b.handleMyUsers(message.Chat.ID)
	}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}

// parseIDPair splits "<first>_<second>" identifiers such as
// approve_task_<task>_<user>.
func parseIDPair(s string) (int64, int64, bool) {
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	first, err1 := strconv.ParseInt(parts[0], 10, 64)
	second, err2 := strconv.ParseInt(parts[1], 10, 64)
	return first, second, err1 == nil && err2 == nil
}

func displayName(from *tgbotapi.User) string {
	if from == nil || from.UserName == "" {
		return "Unknown"
	}
	return from.UserName
}
