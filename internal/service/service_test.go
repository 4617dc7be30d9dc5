package service

import (
	"database/sql"
	"io"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LR-TechX/Ethereal-bot/internal/models"
	"github.com/LR-TechX/Ethereal-bot/internal/repository"
)

var testSchema = []string{
	`CREATE TABLE users (
		chat_id INTEGER PRIMARY KEY,
		package TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL DEFAULT 'new',
		name TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		password TEXT NOT NULL DEFAULT '',
		join_date TIMESTAMP NOT NULL,
		alarm_setting BOOLEAN NOT NULL DEFAULT 0,
		streaks INTEGER NOT NULL DEFAULT 0,
		invites INTEGER NOT NULL DEFAULT 0,
		balance REAL NOT NULL DEFAULT 0,
		screenshot_uploaded_at TIMESTAMP,
		approved_at TIMESTAMP,
		registration_date TIMESTAMP,
		referral_code TEXT NOT NULL DEFAULT '',
		referred_by INTEGER,
		selected_coach INTEGER
	)`,
	`CREATE TABLE payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		package TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		total_amount INTEGER NOT NULL,
		payment_account TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending_payment',
		timestamp TIMESTAMP NOT NULL,
		approved_at TIMESTAMP
	)`,
	`CREATE TABLE coupons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		payment_id INTEGER NOT NULL REFERENCES payments(id),
		code TEXT NOT NULL
	)`,
	`CREATE TABLE interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		link TEXT NOT NULL,
		reward REAL NOT NULL,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE user_tasks (
		user_id INTEGER NOT NULL,
		task_id INTEGER NOT NULL,
		completed_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, task_id)
	)`,
	`CREATE TABLE coaches (
		coach_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		added_by INTEGER NOT NULL,
		added_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE payment_accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		country TEXT NOT NULL,
		flag TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1
	)`,
}

func setupTestService(t *testing.T) (*Service, *repository.Repository) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := repository.NewRepository(db)
	return NewService(repo, log), repo
}

func TestRegisterVisitorCreditsReferrerOnce(t *testing.T) {
	svc, repo := setupTestService(t)

	referrer, created, err := svc.RegisterVisitor(1, "referrer", nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 0.0, referrer.Balance)

	referrerID := referrer.ChatID
	_, created, err = svc.RegisterVisitor(2, "friend", &referrerID)
	require.NoError(t, err)
	assert.True(t, created)

	referrer, err = repo.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 1, referrer.Invites)
	assert.InDelta(t, models.ReferralClickBonus, referrer.Balance, 1e-9)

	// Repeat /start is not a new visit and pays nothing.
	_, created, err = svc.RegisterVisitor(2, "friend", &referrerID)
	require.NoError(t, err)
	assert.False(t, created)

	referrer, _ = repo.GetUser(1)
	assert.Equal(t, 1, referrer.Invites)
}

func TestRegisterVisitorIgnoresSelfReferral(t *testing.T) {
	svc, _ := setupTestService(t)

	self := int64(3)
	user, created, err := svc.RegisterVisitor(3, "loop", &self)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, user.ReferredBy)
	assert.Equal(t, 0.0, user.Balance)
}

func TestSubmitRegistrationDetailsValidation(t *testing.T) {
	svc, _ := setupTestService(t)
	_, _, err := svc.RegisterVisitor(10, "u", nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"too few lines", "a@b.com\nName\n@user", ErrDetailLines},
		{"bad email", "not-an-email\nName\n@user\n+2348000", ErrInvalidEmail},
		{"bad username", "a@b.com\nName\nuser\n+2348000", ErrInvalidUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitRegistrationDetails(10, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	details, err := svc.SubmitRegistrationDetails(10, "a@b.com\nFull Name\n@user\n+2348000")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", details.Email)
	assert.Equal(t, "Full Name", details.FullName)
	assert.Equal(t, "@user", details.Username)
	assert.Equal(t, "+2348000", details.Phone)
}

func TestSubmitRegistrationDetailsSkipsBlankLines(t *testing.T) {
	svc, _ := setupTestService(t)
	_, _, err := svc.RegisterVisitor(11, "u", nil)
	require.NoError(t, err)

	details, err := svc.SubmitRegistrationDetails(11, "\na@b.com\n\nFull Name\n@user\n\n+2348000\n")
	require.NoError(t, err)
	assert.Equal(t, "+2348000", details.Phone)
}

func TestFinalizeRegistrationPaysBonusOnce(t *testing.T) {
	svc, repo := setupTestService(t)

	_, _, err := svc.RegisterVisitor(20, "referrer", nil)
	require.NoError(t, err)
	referrerID := int64(20)
	_, _, err = svc.RegisterVisitor(21, "friend", &referrerID)
	require.NoError(t, err)
	require.NoError(t, svc.ChoosePackage(21, "friend", models.PackageX))

	result, err := svc.FinalizeRegistration(21, "newuser\nnewpass")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistered, result.User.PaymentStatus)
	assert.Equal(t, 0.9, result.ReferrerBonus)

	referrer, _ := repo.GetUser(20)
	assert.InDelta(t, 0.1+0.9, referrer.Balance, 1e-9)

	// Issuing credentials again must not double-credit.
	result, err = svc.FinalizeRegistration(21, "newuser\nnewpass2")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.ReferrerBonus)

	referrer, _ = repo.GetUser(20)
	assert.InDelta(t, 1.0, referrer.Balance, 1e-9)
}

func TestFinalizeRegistrationStandardBonus(t *testing.T) {
	svc, repo := setupTestService(t)

	_, _, err := svc.RegisterVisitor(30, "referrer", nil)
	require.NoError(t, err)
	referrerID := int64(30)
	_, _, err = svc.RegisterVisitor(31, "friend", &referrerID)
	require.NoError(t, err)
	require.NoError(t, svc.ChoosePackage(31, "friend", models.PackageStandard))

	result, err := svc.FinalizeRegistration(31, "user\npass")
	require.NoError(t, err)
	assert.Equal(t, 0.4, result.ReferrerBonus)

	referrer, _ := repo.GetUser(30)
	assert.InDelta(t, 0.5, referrer.Balance, 1e-9)
}

func TestFinalizeRegistrationRequiresTwoLines(t *testing.T) {
	svc, _ := setupTestService(t)
	_, _, err := svc.RegisterVisitor(40, "u", nil)
	require.NoError(t, err)

	_, err = svc.FinalizeRegistration(40, "only-one-line")
	assert.ErrorIs(t, err, ErrCredentialLines)
}

func TestIssueCouponsPreservesOrder(t *testing.T) {
	svc, _ := setupTestService(t)

	paymentID, err := svc.CreateCouponPayment(50, models.PackageStandard, 2, "Kuda")
	require.NoError(t, err)

	codes, purchaser, err := svc.IssueCoupons(paymentID, "ABC123\n\n  XYZ999  \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC123", "XYZ999"}, codes)
	assert.Equal(t, int64(50), purchaser)
}

func TestCreateCouponPaymentValidation(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.CreateCouponPayment(51, models.PackageStandard, 0, "Kuda")
	assert.ErrorIs(t, err, ErrBadQuantity)

	_, err = svc.CreateCouponPayment(51, "Platinum", 1, "Kuda")
	assert.ErrorIs(t, err, ErrUnknownPackage)

	paymentID, err := svc.CreateCouponPayment(51, models.PackageX, 3, "Opay")
	require.NoError(t, err)
	payment, err := svc.Payment(paymentID)
	require.NoError(t, err)
	assert.Equal(t, 3*14000, payment.TotalAmount)
}

func TestCompleteTaskOnlyOnce(t *testing.T) {
	svc, repo := setupTestService(t)
	_, _, err := svc.RegisterVisitor(60, "worker", nil)
	require.NoError(t, err)

	taskID, err := svc.AddTask(models.TaskExternal, "https://example.com", 5.0)
	require.NoError(t, err)

	reward, err := svc.CompleteTask(60, taskID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, reward)

	user, _ := repo.GetUser(60)
	assert.Equal(t, 5.0, user.Balance)

	_, err = svc.CompleteTask(60, taskID)
	assert.ErrorIs(t, err, ErrTaskCompleted)

	user, _ = repo.GetUser(60)
	assert.Equal(t, 5.0, user.Balance)
}

func TestRejectTaskRevokesRewardAndCompletion(t *testing.T) {
	svc, repo := setupTestService(t)
	_, _, err := svc.RegisterVisitor(61, "worker", nil)
	require.NoError(t, err)

	taskID, err := svc.AddTask(models.TaskExternal, "https://example.com", 5.0)
	require.NoError(t, err)
	_, err = svc.CompleteTask(61, taskID)
	require.NoError(t, err)

	revoked, reward, err := svc.RejectTask(61, taskID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 5.0, reward)

	user, _ := repo.GetUser(61)
	assert.Equal(t, 0.0, user.Balance)

	// The task is available again after a full revocation.
	done, err := repo.HasCompletion(61, taskID)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRejectTaskInsufficientBalanceLeavesState(t *testing.T) {
	svc, repo := setupTestService(t)
	_, _, err := svc.RegisterVisitor(62, "worker", nil)
	require.NoError(t, err)

	taskID, err := svc.AddTask(models.TaskExternal, "https://example.com", 5.0)
	require.NoError(t, err)
	_, err = svc.CompleteTask(62, taskID)
	require.NoError(t, err)

	// The user spent part of the reward already.
	deducted, err := repo.DeductBalance(62, 2.0)
	require.NoError(t, err)
	require.True(t, deducted)

	revoked, reward, err := svc.RejectTask(62, taskID)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, 5.0, reward)

	user, _ := repo.GetUser(62)
	assert.Equal(t, 3.0, user.Balance)

	done, _ := repo.HasCompletion(62, taskID)
	assert.True(t, done)
}

func TestAddTaskRejectsUnknownType(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.AddTask("bogus", "https://example.com", 1.0)
	assert.ErrorIs(t, err, ErrUnknownTaskType)
}

func TestAddCoachRejectsDuplicate(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.AddCoach(70, "Coach 70", 1))
	err := svc.AddCoach(70, "Coach 70", 1)
	assert.ErrorIs(t, err, ErrCoachExists)

	isCoach, err := svc.IsCoach(70)
	require.NoError(t, err)
	assert.True(t, isCoach)

	isCoach, err = svc.IsCoach(71)
	require.NoError(t, err)
	assert.False(t, isCoach)
}

func TestResetPasswordRequiresRegisteredEmail(t *testing.T) {
	svc, repo := setupTestService(t)
	_, _, err := svc.RegisterVisitor(80, "u", nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateDetails(80, "me@example.com", "Me", "@me", "+234", "pw"))

	_, err = svc.ResetPassword(80, "me@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.FinalizeRegistration(80, "@me", "pw", time.Now()))

	password, err := svc.ResetPassword(80, "me@example.com")
	require.NoError(t, err)
	assert.Len(t, password, 12)

	user, _ := repo.GetUser(80)
	assert.Equal(t, password, user.Password)
}

func TestToggleAlarm(t *testing.T) {
	svc, _ := setupTestService(t)
	_, _, err := svc.RegisterVisitor(90, "u", nil)
	require.NoError(t, err)

	enabled, err := svc.ToggleAlarm(90)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = svc.ToggleAlarm(90)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestStatusUnknownChatIsEmpty(t *testing.T) {
	svc, _ := setupTestService(t)

	status, err := svc.Status(12345)
	require.NoError(t, err)
	assert.Equal(t, "", status)
}
