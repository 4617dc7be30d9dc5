package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/LR-TechX/Ethereal-bot/internal/models"
	"github.com/LR-TechX/Ethereal-bot/internal/repository"
)

// Validation errors surfaced to flows so they can re-prompt without
// mutating any state.
var (
	ErrDetailLines     = errors.New("details must contain four lines")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidUsername = errors.New("username must start with @")
	ErrBadQuantity     = errors.New("quantity must be a positive integer")
	ErrCredentialLines = errors.New("credentials must contain two lines")
	ErrTaskCompleted   = errors.New("task already completed")
	ErrCoachExists     = errors.New("user is already a coach")
	ErrUnknownPackage  = errors.New("unknown package")
	ErrUnknownTaskType = errors.New("unknown task type")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service implements the business rules on top of the ledger: referral
// bonuses, registration state transitions, coupon issuance, task rewards.
type Service struct {
	repo *repository.Repository
	log  *logrus.Logger
}

func NewService(repo *repository.Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// LogInteraction appends an audit record. Failures are logged and swallowed
// so a broken audit log never aborts a flow.
func (s *Service) LogInteraction(chatID int64, action string) {
	if err := s.repo.LogInteraction(chatID, action, time.Now()); err != nil {
		s.log.WithFields(logrus.Fields{"chat_id": chatID, "action": action}).
			WithError(err).Error("failed to log interaction")
	}
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// RegisterVisitor ensures a user row exists for a first /start, assigning a
// referral code and crediting the referrer's click bonus on creation.
func (s *Service) RegisterVisitor(chatID int64, username string, referredBy *int64) (*models.User, bool, error) {
	user, err := s.repo.GetUser(chatID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	// Self-referrals get no credit.
	if referredBy != nil && *referredBy == chatID {
		referredBy = nil
	}
	if err := s.repo.CreateUser(chatID, username, newToken(), referredBy, time.Now()); err != nil {
		return nil, false, err
	}
	if referredBy != nil {
		if err := s.repo.CreditReferralClick(*referredBy); err != nil {
			s.log.WithField("referrer", *referredBy).WithError(err).Error("failed to credit referral click")
		}
	}
	user, err = s.repo.GetUser(chatID)
	return user, true, err
}

func (s *Service) User(chatID int64) (*models.User, error) {
	return s.repo.GetUser(chatID)
}

// Status returns the user's payment status, "" for unknown chats.
func (s *Service) Status(chatID int64) (string, error) {
	status, err := s.repo.GetStatus(chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	return status, err
}

// Registration flow

func (s *Service) ChoosePackage(chatID int64, username, pkg string) error {
	if models.PackagePrice(pkg) == 0 {
		return ErrUnknownPackage
	}
	return s.repo.SetPackage(chatID, pkg, username, time.Now())
}

func (s *Service) SelectCoach(chatID, coachID int64) (*models.Coach, error) {
	coach, err := s.repo.GetCoach(coachID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetSelectedCoach(chatID, coachID); err != nil {
		return nil, err
	}
	return coach, nil
}

func (s *Service) MarkScreenshotUploaded(chatID int64) error {
	return s.repo.SetScreenshotUploaded(chatID, time.Now())
}

func (s *Service) ApproveRegistrationPayment(chatID int64) error {
	return s.repo.ApproveRegistration(chatID, time.Now())
}

// RegistrationDetails is the validated four-line submission.
type RegistrationDetails struct {
	Email    string
	FullName string
	Username string
	Phone    string
	Package  string
}

// SubmitRegistrationDetails validates and persists the four-line detail
// message. Validation failures mutate nothing so the user can resend.
// A provisional password is generated alongside; the admin replaces it at
// finalization.
func (s *Service) SubmitRegistrationDetails(chatID int64, text string) (*RegistrationDetails, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) < 4 {
		return nil, ErrDetailLines
	}
	email, fullName, username, phone := lines[0], lines[1], lines[2], lines[3]
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if !strings.HasPrefix(username, "@") {
		return nil, ErrInvalidUsername
	}

	if err := s.repo.UpdateDetails(chatID, email, fullName, username, phone, newToken()); err != nil {
		return nil, err
	}
	user, err := s.repo.GetUser(chatID)
	if err != nil {
		return nil, err
	}
	return &RegistrationDetails{
		Email:    email,
		FullName: fullName,
		Username: username,
		Phone:    phone,
		Package:  user.Package,
	}, nil
}

// FinalizedRegistration reports the outcome of credential issuance.
type FinalizedRegistration struct {
	User          *models.User
	CoachName     string
	ReferrerBonus float64 // 0 when no referrer was credited
}

// FinalizeRegistration parses the admin's two-line credential message,
// marks the user registered and pays the referrer's registration bonus.
// Issuing credentials twice never double-credits: the bonus is only paid on
// the transition into the registered state.
func (s *Service) FinalizeRegistration(chatID int64, text string) (*FinalizedRegistration, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 2 {
		return nil, ErrCredentialLines
	}
	username := strings.TrimSpace(lines[0])
	password := strings.TrimSpace(lines[1])

	user, err := s.repo.GetUser(chatID)
	if err != nil {
		return nil, err
	}
	alreadyRegistered := user.PaymentStatus == models.StatusRegistered

	if err := s.repo.FinalizeRegistration(chatID, username, password, time.Now()); err != nil {
		return nil, err
	}

	var bonus float64
	if !alreadyRegistered && user.ReferredBy != nil {
		bonus = models.ReferralRegistrationBonus(user.Package)
		if err := s.repo.AddBalance(*user.ReferredBy, bonus); err != nil {
			s.log.WithField("referrer", *user.ReferredBy).WithError(err).Error("failed to credit referral bonus")
			bonus = 0
		}
	}

	coachName := "None"
	if user.SelectedCoach != nil {
		if coach, err := s.repo.GetCoach(*user.SelectedCoach); err == nil {
			coachName = coach.Name
		}
	}

	updated, err := s.repo.GetUser(chatID)
	if err != nil {
		return nil, err
	}
	return &FinalizedRegistration{User: updated, CoachName: coachName, ReferrerBonus: bonus}, nil
}

// ResetPassword issues a new password for a registered user who proved
// ownership of their email.
func (s *Service) ResetPassword(chatID int64, email string) (string, error) {
	if _, err := s.repo.FindRegisteredByEmail(chatID, email); err != nil {
		return "", err
	}
	password := newToken()
	if err := s.repo.UpdatePassword(chatID, password); err != nil {
		return "", err
	}
	return password, nil
}

func (s *Service) SetAlarm(chatID int64, enabled bool) error {
	return s.repo.SetAlarm(chatID, enabled)
}

// ToggleAlarm flips the reminder setting and returns the new value.
func (s *Service) ToggleAlarm(chatID int64) (bool, error) {
	user, err := s.repo.GetUser(chatID)
	if err != nil {
		return false, err
	}
	enabled := !user.AlarmSetting
	if err := s.repo.SetAlarm(chatID, enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// Coupon flow

// CreateCouponPayment opens a pending coupon purchase and returns its id.
func (s *Service) CreateCouponPayment(chatID int64, pkg string, quantity int, account string) (int64, error) {
	if quantity <= 0 {
		return 0, ErrBadQuantity
	}
	price := models.PackagePrice(pkg)
	if price == 0 {
		return 0, ErrUnknownPackage
	}
	return s.repo.CreatePayment(chatID, "coupon", pkg, quantity, quantity*price, account, time.Now())
}

func (s *Service) Payment(id int64) (*models.Payment, error) {
	return s.repo.GetPayment(id)
}

func (s *Service) ApproveCouponPayment(id int64) (*models.Payment, error) {
	if _, err := s.repo.GetPayment(id); err != nil {
		return nil, err
	}
	if err := s.repo.ApprovePayment(id, time.Now()); err != nil {
		return nil, err
	}
	return s.repo.GetPayment(id)
}

// IssueCoupons turns each non-blank line of the admin's message into a
// coupon row under the payment, preserving order, and returns the codes
// verbatim along with the purchaser's chat ID.
func (s *Service) IssueCoupons(paymentID int64, text string) ([]string, int64, error) {
	payment, err := s.repo.GetPayment(paymentID)
	if err != nil {
		return nil, 0, err
	}
	var codes []string
	for _, line := range strings.Split(text, "\n") {
		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		if err := s.repo.AddCoupon(paymentID, code); err != nil {
			return nil, 0, fmt.Errorf("store coupon: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, payment.ChatID, nil
}

// Task flow

// AddTask creates a task expiring 24 hours after creation.
func (s *Service) AddTask(taskType, link string, reward float64) (int64, error) {
	switch taskType {
	case models.TaskJoinGroup, models.TaskJoinChannel, models.TaskExternal:
	default:
		return 0, ErrUnknownTaskType
	}
	now := time.Now()
	return s.repo.CreateTask(taskType, link, reward, now, now.Add(24*time.Hour))
}

func (s *Service) Task(id int64) (*models.Task, error) {
	return s.repo.GetTask(id)
}

func (s *Service) AvailableTasks(chatID int64) ([]models.Task, error) {
	return s.repo.AvailableTasks(chatID, time.Now())
}

// CompleteTask records a completion and credits the reward exactly once.
// A second attempt for the same (user, task) pair returns ErrTaskCompleted
// and changes nothing.
func (s *Service) CompleteTask(chatID, taskID int64) (float64, error) {
	task, err := s.repo.GetTask(taskID)
	if err != nil {
		return 0, err
	}
	done, err := s.repo.HasCompletion(chatID, taskID)
	if err != nil {
		return 0, err
	}
	if done {
		return 0, ErrTaskCompleted
	}
	if err := s.repo.InsertCompletion(chatID, taskID, time.Now()); err != nil {
		return 0, err
	}
	if err := s.repo.AddBalance(chatID, task.Reward); err != nil {
		return 0, err
	}
	return task.Reward, nil
}

// RejectTask revokes an earlier approval: the reward is clawed back and the
// completion removed, but only when the balance covers the reward. With an
// insufficient balance the completion and funds stay untouched; the flow
// favors under-deduction over a negative balance.
func (s *Service) RejectTask(chatID, taskID int64) (bool, float64, error) {
	task, err := s.repo.GetTask(taskID)
	if err != nil {
		return false, 0, err
	}
	deducted, err := s.repo.DeductBalance(chatID, task.Reward)
	if err != nil {
		return false, 0, err
	}
	if !deducted {
		return false, task.Reward, nil
	}
	if err := s.repo.DeleteCompletion(chatID, taskID); err != nil {
		return false, 0, err
	}
	return true, task.Reward, nil
}

// Coaches

func (s *Service) AddCoach(coachID int64, name string, addedBy int64) error {
	if _, err := s.repo.GetCoach(coachID); err == nil {
		return ErrCoachExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return s.repo.AddCoach(coachID, name, addedBy, time.Now())
}

func (s *Service) ListCoaches() ([]models.Coach, error) {
	return s.repo.ListCoaches()
}

func (s *Service) RemoveCoach(coachID int64) (bool, error) {
	return s.repo.RemoveCoach(coachID)
}

func (s *Service) IsCoach(chatID int64) (bool, error) {
	_, err := s.repo.GetCoach(chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) CoachUsers(coachID int64) ([]models.User, error) {
	return s.repo.UsersByCoach(coachID)
}

// Payment accounts

func (s *Service) AddPaymentAccount(country, flag, details string) error {
	return s.repo.AddPaymentAccount(country, flag, details)
}

func (s *Service) DeletePaymentAccount(country string) (bool, error) {
	return s.repo.DeletePaymentAccount(country)
}

func (s *Service) ListPaymentAccounts() ([]models.PaymentAccount, error) {
	return s.repo.ListPaymentAccounts()
}

func (s *Service) ActivePaymentAccounts() ([]models.PaymentAccount, error) {
	return s.repo.ActivePaymentAccounts()
}

func (s *Service) ActiveAccountDetails(country string) (string, error) {
	return s.repo.ActiveAccountDetails(country)
}

// Lists

func (s *Service) RegisteredUsers() ([]models.User, error) {
	return s.repo.RegisteredUsers()
}

func (s *Service) BroadcastRecipients() ([]int64, error) {
	return s.repo.RegisteredChatIDs()
}

func (s *Service) ReminderRecipients() ([]int64, error) {
	return s.repo.AlarmChatIDs()
}

func (s *Service) CoachName(coachID int64) string {
	coach, err := s.repo.GetCoach(coachID)
	if err != nil {
		return "None"
	}
	return coach.Name
}

// Reporting

// BotStats aggregates the numbers behind /botstats.
type BotStats struct {
	TotalUsers         int
	RegisteredUsers    int
	LinkClicks         int
	HourlyInteractions int
	DailyInteractions  int
}

func (s *Service) BotStats() (*BotStats, error) {
	now := time.Now()
	stats := &BotStats{}
	var err error
	if stats.TotalUsers, err = s.repo.CountUsers(); err != nil {
		return nil, err
	}
	if stats.RegisteredUsers, err = s.repo.CountRegistered(); err != nil {
		return nil, err
	}
	if stats.LinkClicks, err = s.repo.CountInteractionsByAction("start"); err != nil {
		return nil, err
	}
	if stats.HourlyInteractions, err = s.repo.CountInteractionsSince(now.Add(-time.Hour)); err != nil {
		return nil, err
	}
	if stats.DailyInteractions, err = s.repo.CountInteractionsSince(now.Add(-24 * time.Hour)); err != nil {
		return nil, err
	}
	return stats, nil
}

// RegistrationStats aggregates the numbers behind /registration_stats.
type RegistrationStats struct {
	Total     int
	ByPackage []repository.PackageCount
	ByCoach   []repository.CoachCount
}

func (s *Service) RegistrationStats() (*RegistrationStats, error) {
	stats := &RegistrationStats{}
	var err error
	if stats.Total, err = s.repo.CountRegistered(); err != nil {
		return nil, err
	}
	if stats.ByPackage, err = s.repo.RegistrationsByPackage(); err != nil {
		return nil, err
	}
	if stats.ByCoach, err = s.repo.RegistrationsByCoach(); err != nil {
		return nil, err
	}
	return stats, nil
}

// DailySummary aggregates the last 24 hours for the evening admin report.
type DailySummary struct {
	NewUsers         int
	PaymentsApproved float64 // naira: registrations at package price + coupon totals
	TasksCompleted   int
	RewardsPaid      float64 // dollars distributed through task rewards
}

func (s *Service) DailySummaryReport() (*DailySummary, error) {
	since := time.Now().Add(-24 * time.Hour)
	summary := &DailySummary{}
	var err error
	if summary.NewUsers, err = s.repo.CountNewRegistrationsSince(since); err != nil {
		return nil, err
	}
	regRevenue, err := s.repo.RegistrationRevenueSince(since)
	if err != nil {
		return nil, err
	}
	couponRevenue, err := s.repo.CouponRevenueSince(since)
	if err != nil {
		return nil, err
	}
	summary.PaymentsApproved = regRevenue + couponRevenue
	if summary.TasksCompleted, err = s.repo.CountCompletionsSince(since); err != nil {
		return nil, err
	}
	if summary.RewardsPaid, err = s.repo.RewardsDistributedSince(since); err != nil {
		return nil, err
	}
	return summary, nil
}
