package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LR-TechX/Ethereal-bot/internal/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Repository is the durable ledger for users, payments, coupons, tasks,
// completions, coaches, payment accounts and the interaction audit log.
// All timestamps are supplied by callers rather than database defaults.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the schema if it does not exist yet. PostgreSQL dialect.
func (r *Repository) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			chat_id BIGINT PRIMARY KEY,
			package TEXT NOT NULL DEFAULT '',
			payment_status TEXT NOT NULL DEFAULT 'new',
			name TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			password TEXT NOT NULL DEFAULT '',
			join_date TIMESTAMP NOT NULL,
			alarm_setting BOOLEAN NOT NULL DEFAULT FALSE,
			streaks INTEGER NOT NULL DEFAULT 0,
			invites INTEGER NOT NULL DEFAULT 0,
			balance DOUBLE PRECISION NOT NULL DEFAULT 0,
			screenshot_uploaded_at TIMESTAMP,
			approved_at TIMESTAMP,
			registration_date TIMESTAMP,
			referral_code TEXT NOT NULL DEFAULT '',
			referred_by BIGINT,
			selected_coach BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			type TEXT NOT NULL,
			package TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			total_amount INTEGER NOT NULL,
			payment_account TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending_payment',
			timestamp TIMESTAMP NOT NULL,
			approved_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS coupons (
			id BIGSERIAL PRIMARY KEY,
			payment_id BIGINT NOT NULL REFERENCES payments(id),
			code TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id BIGSERIAL PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			action TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			type TEXT NOT NULL,
			link TEXT NOT NULL,
			reward DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_tasks (
			user_id BIGINT NOT NULL,
			task_id BIGINT NOT NULL,
			completed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, task_id)
		)`,
		`CREATE TABLE IF NOT EXISTS coaches (
			coach_id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			added_by BIGINT NOT NULL,
			added_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS payment_accounts (
			id BIGSERIAL PRIMARY KEY,
			country TEXT NOT NULL,
			flag TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

const userColumns = `chat_id, package, payment_status, name, username, email, phone, password,
	join_date, alarm_setting, streaks, invites, balance,
	screenshot_uploaded_at, approved_at, registration_date,
	referral_code, referred_by, selected_coach`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var screenshotAt, approvedAt, registeredAt sql.NullTime
	var referredBy, selectedCoach sql.NullInt64
	err := row.Scan(
		&u.ChatID, &u.Package, &u.PaymentStatus, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Password,
		&u.JoinDate, &u.AlarmSetting, &u.Streaks, &u.Invites, &u.Balance,
		&screenshotAt, &approvedAt, &registeredAt,
		&u.ReferralCode, &referredBy, &selectedCoach,
	)
	if err != nil {
		return nil, err
	}
	if screenshotAt.Valid {
		u.ScreenshotUploadedAt = &screenshotAt.Time
	}
	if approvedAt.Valid {
		u.ApprovedAt = &approvedAt.Time
	}
	if registeredAt.Valid {
		u.RegistrationDate = &registeredAt.Time
	}
	if referredBy.Valid {
		u.ReferredBy = &referredBy.Int64
	}
	if selectedCoach.Valid {
		u.SelectedCoach = &selectedCoach.Int64
	}
	return &u, nil
}

// User methods

func (r *Repository) CreateUser(chatID int64, username, referralCode string, referredBy *int64, joinedAt time.Time) error {
	var ref sql.NullInt64
	if referredBy != nil {
		ref = sql.NullInt64{Int64: *referredBy, Valid: true}
	}
	_, err := r.db.Exec(`
		INSERT INTO users (chat_id, username, referral_code, referred_by, join_date)
		VALUES ($1, $2, $3, $4, $5)
	`, chatID, username, referralCode, ref, joinedAt)
	return err
}

func (r *Repository) GetUser(chatID int64) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE chat_id = $1`, chatID)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetStatus returns the user's payment_status, ErrNotFound for unknown chats.
func (r *Repository) GetStatus(chatID int64) (string, error) {
	var status string
	err := r.db.QueryRow(`SELECT payment_status FROM users WHERE chat_id = $1`, chatID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return status, err
}

// SetPackage records the package choice and moves the user to
// pending_payment, inserting the row if the user never ran /start.
func (r *Repository) SetPackage(chatID int64, pkg, username string, now time.Time) error {
	res, err := r.db.Exec(`
		UPDATE users SET package = $1, payment_status = $2 WHERE chat_id = $3
	`, pkg, models.StatusPendingPayment, chatID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = r.db.Exec(`
			INSERT INTO users (chat_id, package, payment_status, username, join_date)
			VALUES ($1, $2, $3, $4, $5)
		`, chatID, pkg, models.StatusPendingPayment, username, now)
	}
	return err
}

func (r *Repository) SetSelectedCoach(chatID, coachID int64) error {
	_, err := r.db.Exec(`UPDATE users SET selected_coach = $1 WHERE chat_id = $2`, coachID, chatID)
	return err
}

func (r *Repository) SetScreenshotUploaded(chatID int64, at time.Time) error {
	_, err := r.db.Exec(`UPDATE users SET screenshot_uploaded_at = $1 WHERE chat_id = $2`, at, chatID)
	return err
}

// ApproveRegistration moves the user to pending_details.
func (r *Repository) ApproveRegistration(chatID int64, at time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users SET payment_status = $1, approved_at = $2 WHERE chat_id = $3
	`, models.StatusPendingDetails, at, chatID)
	return err
}

func (r *Repository) UpdateDetails(chatID int64, email, name, username, phone, password string) error {
	_, err := r.db.Exec(`
		UPDATE users SET email = $1, name = $2, username = $3, phone = $4, password = $5
		WHERE chat_id = $6
	`, email, name, username, phone, password, chatID)
	return err
}

// FinalizeRegistration stores the admin-issued credentials and marks the
// user registered.
func (r *Repository) FinalizeRegistration(chatID int64, username, password string, at time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users SET username = $1, password = $2, payment_status = $3, registration_date = $4
		WHERE chat_id = $5
	`, username, password, models.StatusRegistered, at, chatID)
	return err
}

func (r *Repository) UpdatePassword(chatID int64, password string) error {
	_, err := r.db.Exec(`UPDATE users SET password = $1 WHERE chat_id = $2`, password, chatID)
	return err
}

// AddBalance credits (or, with a negative amount, debits) a user.
func (r *Repository) AddBalance(chatID int64, amount float64) error {
	_, err := r.db.Exec(`UPDATE users SET balance = balance + $1 WHERE chat_id = $2`, amount, chatID)
	return err
}

// DeductBalance subtracts amount only when the balance covers it, reporting
// whether the deduction happened. The balance can never go negative.
func (r *Repository) DeductBalance(chatID int64, amount float64) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE users SET balance = balance - $1 WHERE chat_id = $2 AND balance >= $1
	`, amount, chatID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CreditReferralClick rewards the referrer for a referred first contact.
func (r *Repository) CreditReferralClick(referrerID int64) error {
	_, err := r.db.Exec(`
		UPDATE users SET invites = invites + 1, balance = balance + $1 WHERE chat_id = $2
	`, models.ReferralClickBonus, referrerID)
	return err
}

func (r *Repository) SetAlarm(chatID int64, enabled bool) error {
	_, err := r.db.Exec(`UPDATE users SET alarm_setting = $1 WHERE chat_id = $2`, enabled, chatID)
	return err
}

// FindRegisteredByEmail matches a fully registered user by their own chat ID
// and email, for password recovery.
func (r *Repository) FindRegisteredByEmail(chatID int64, email string) (*models.User, error) {
	row := r.db.QueryRow(`
		SELECT `+userColumns+` FROM users
		WHERE email = $1 AND chat_id = $2 AND payment_status = $3
	`, email, chatID, models.StatusRegistered)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) queryUsers(query string, args ...any) ([]models.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *Repository) RegisteredUsers() ([]models.User, error) {
	return r.queryUsers(`SELECT ` + userColumns + ` FROM users WHERE payment_status = 'registered'`)
}

func (r *Repository) UsersByCoach(coachID int64) ([]models.User, error) {
	return r.queryUsers(`
		SELECT `+userColumns+` FROM users
		WHERE selected_coach = $1 AND payment_status = 'registered'
	`, coachID)
}

func (r *Repository) queryChatIDs(query string, args ...any) ([]int64, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RegisteredChatIDs lists broadcast recipients.
func (r *Repository) RegisteredChatIDs() ([]int64, error) {
	return r.queryChatIDs(`SELECT chat_id FROM users WHERE payment_status = 'registered'`)
}

// AlarmChatIDs lists daily-reminder recipients.
func (r *Repository) AlarmChatIDs() ([]int64, error) {
	return r.queryChatIDs(`SELECT chat_id FROM users WHERE alarm_setting = $1`, true)
}

// Payment methods

func (r *Repository) CreatePayment(chatID int64, paymentType, pkg string, quantity, totalAmount int, account string, at time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO payments (chat_id, type, package, quantity, total_amount, payment_account, status, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, chatID, paymentType, pkg, quantity, totalAmount, account, models.PaymentPending, at).Scan(&id)
	return id, err
}

func (r *Repository) GetPayment(id int64) (*models.Payment, error) {
	var p models.Payment
	var approvedAt sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, chat_id, type, package, quantity, total_amount, payment_account, status, timestamp, approved_at
		FROM payments WHERE id = $1
	`, id).Scan(&p.ID, &p.ChatID, &p.Type, &p.Package, &p.Quantity, &p.TotalAmount, &p.PaymentAccount, &p.Status, &p.Timestamp, &approvedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		p.ApprovedAt = &approvedAt.Time
	}
	return &p, nil
}

func (r *Repository) ApprovePayment(id int64, at time.Time) error {
	_, err := r.db.Exec(`
		UPDATE payments SET status = $1, approved_at = $2 WHERE id = $3
	`, models.PaymentApproved, at, id)
	return err
}

func (r *Repository) AddCoupon(paymentID int64, code string) error {
	_, err := r.db.Exec(`INSERT INTO coupons (payment_id, code) VALUES ($1, $2)`, paymentID, code)
	return err
}

func (r *Repository) CouponsByPayment(paymentID int64) ([]models.Coupon, error) {
	rows, err := r.db.Query(`
		SELECT id, payment_id, code FROM coupons WHERE payment_id = $1 ORDER BY id
	`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		var c models.Coupon
		if err := rows.Scan(&c.ID, &c.PaymentID, &c.Code); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

// Task methods

func (r *Repository) CreateTask(taskType, link string, reward float64, createdAt, expiresAt time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO tasks (type, link, reward, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, taskType, link, reward, createdAt, expiresAt).Scan(&id)
	return id, err
}

func (r *Repository) GetTask(id int64) (*models.Task, error) {
	var t models.Task
	err := r.db.QueryRow(`
		SELECT id, type, link, reward, created_at, expires_at FROM tasks WHERE id = $1
	`, id).Scan(&t.ID, &t.Type, &t.Link, &t.Reward, &t.CreatedAt, &t.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AvailableTasks lists unexpired tasks the user has not completed yet.
func (r *Repository) AvailableTasks(chatID int64, now time.Time) ([]models.Task, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.type, t.link, t.reward, t.created_at, t.expires_at
		FROM tasks t
		WHERE t.expires_at > $1
		AND t.id NOT IN (SELECT ut.task_id FROM user_tasks ut WHERE ut.user_id = $2)
		ORDER BY t.id
	`, now, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Type, &t.Link, &t.Reward, &t.CreatedAt, &t.ExpiresAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *Repository) InsertCompletion(chatID, taskID int64, at time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO user_tasks (user_id, task_id, completed_at) VALUES ($1, $2, $3)
	`, chatID, taskID, at)
	return err
}

func (r *Repository) HasCompletion(chatID, taskID int64) (bool, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM user_tasks WHERE user_id = $1 AND task_id = $2
	`, chatID, taskID).Scan(&n)
	return n > 0, err
}

func (r *Repository) DeleteCompletion(chatID, taskID int64) error {
	_, err := r.db.Exec(`DELETE FROM user_tasks WHERE user_id = $1 AND task_id = $2`, chatID, taskID)
	return err
}

// Coach methods

func (r *Repository) AddCoach(coachID int64, name string, addedBy int64, at time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO coaches (coach_id, name, added_by, added_at) VALUES ($1, $2, $3, $4)
	`, coachID, name, addedBy, at)
	return err
}

func (r *Repository) GetCoach(coachID int64) (*models.Coach, error) {
	var c models.Coach
	err := r.db.QueryRow(`
		SELECT coach_id, name, added_by, added_at FROM coaches WHERE coach_id = $1
	`, coachID).Scan(&c.CoachID, &c.Name, &c.AddedBy, &c.AddedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) ListCoaches() ([]models.Coach, error) {
	rows, err := r.db.Query(`SELECT coach_id, name, added_by, added_at FROM coaches ORDER BY added_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coaches []models.Coach
	for rows.Next() {
		var c models.Coach
		if err := rows.Scan(&c.CoachID, &c.Name, &c.AddedBy, &c.AddedAt); err != nil {
			return nil, err
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

// RemoveCoach hard-deletes a coach, reporting whether a row was removed.
func (r *Repository) RemoveCoach(coachID int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM coaches WHERE coach_id = $1`, coachID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SeedDefaultCoach guarantees the super admin always exists in the roster.
func (r *Repository) SeedDefaultCoach(adminID int64, name string, at time.Time) error {
	_, err := r.GetCoach(adminID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return r.AddCoach(adminID, name, adminID, at)
}

// Payment account methods

func (r *Repository) AddPaymentAccount(country, flag, details string) error {
	_, err := r.db.Exec(`
		INSERT INTO payment_accounts (country, flag, details, is_active) VALUES ($1, $2, $3, $4)
	`, country, flag, details, true)
	return err
}

// DeletePaymentAccount hard-deletes by country label.
func (r *Repository) DeletePaymentAccount(country string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM payment_accounts WHERE country = $1`, country)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) queryAccounts(query string, args ...any) ([]models.PaymentAccount, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.PaymentAccount
	for rows.Next() {
		var a models.PaymentAccount
		if err := rows.Scan(&a.ID, &a.Country, &a.Flag, &a.Details, &a.IsActive); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) ListPaymentAccounts() ([]models.PaymentAccount, error) {
	return r.queryAccounts(`SELECT id, country, flag, details, is_active FROM payment_accounts ORDER BY id`)
}

func (r *Repository) ActivePaymentAccounts() ([]models.PaymentAccount, error) {
	return r.queryAccounts(`
		SELECT id, country, flag, details, is_active FROM payment_accounts
		WHERE is_active = $1 ORDER BY id
	`, true)
}

// ActiveAccountDetails returns the payment details for an active country
// account, ErrNotFound when the country is unknown or inactive.
func (r *Repository) ActiveAccountDetails(country string) (string, error) {
	var details string
	err := r.db.QueryRow(`
		SELECT details FROM payment_accounts WHERE country = $1 AND is_active = $2
	`, country, true).Scan(&details)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return details, err
}

// Interaction log

// LogInteraction appends an audit record. Callers treat failures as
// non-fatal.
func (r *Repository) LogInteraction(chatID int64, action string, at time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO interactions (chat_id, action, timestamp) VALUES ($1, $2, $3)
	`, chatID, action, at)
	return err
}

// Reporting queries

func (r *Repository) count(query string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRow(query, args...).Scan(&n)
	return n, err
}

func (r *Repository) CountUsers() (int, error) {
	return r.count(`SELECT COUNT(*) FROM users`)
}

func (r *Repository) CountRegistered() (int, error) {
	return r.count(`SELECT COUNT(*) FROM users WHERE payment_status = 'registered'`)
}

func (r *Repository) CountInteractionsByAction(action string) (int, error) {
	return r.count(`SELECT COUNT(*) FROM interactions WHERE action = $1`, action)
}

func (r *Repository) CountInteractionsSince(since time.Time) (int, error) {
	return r.count(`SELECT COUNT(*) FROM interactions WHERE timestamp >= $1`, since)
}

func (r *Repository) CountNewRegistrationsSince(since time.Time) (int, error) {
	return r.count(`SELECT COUNT(*) FROM users WHERE registration_date >= $1`, since)
}

// PackageCount pairs a package label with how many registered users hold it.
type PackageCount struct {
	Package string
	Count   int
}

func (r *Repository) RegistrationsByPackage() ([]PackageCount, error) {
	rows, err := r.db.Query(`
		SELECT package, COUNT(*) FROM users
		WHERE payment_status = 'registered' GROUP BY package ORDER BY package
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []PackageCount
	for rows.Next() {
		var c PackageCount
		if err := rows.Scan(&c.Package, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CoachCount pairs a coach (nil for users without one) with their
// registered-user count.
type CoachCount struct {
	CoachID *int64
	Count   int
}

func (r *Repository) RegistrationsByCoach() ([]CoachCount, error) {
	rows, err := r.db.Query(`
		SELECT selected_coach, COUNT(*) FROM users
		WHERE payment_status = 'registered' GROUP BY selected_coach
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []CoachCount
	for rows.Next() {
		var c CoachCount
		var coachID sql.NullInt64
		if err := rows.Scan(&coachID, &c.Count); err != nil {
			return nil, err
		}
		if coachID.Valid {
			c.CoachID = &coachID.Int64
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *Repository) sum(query string, args ...any) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRow(query, args...).Scan(&total)
	return total.Float64, err
}

// RegistrationRevenueSince sums package prices of registrations approved
// within the window.
func (r *Repository) RegistrationRevenueSince(since time.Time) (float64, error) {
	return r.sum(`
		SELECT SUM(CASE package WHEN 'Standard' THEN 9000 WHEN 'X' THEN 14000 ELSE 0 END)
		FROM users
		WHERE approved_at >= $1 AND payment_status = 'registered'
	`, since)
}

// CouponRevenueSince sums approved coupon payment totals within the window.
func (r *Repository) CouponRevenueSince(since time.Time) (float64, error) {
	return r.sum(`
		SELECT SUM(total_amount) FROM payments
		WHERE approved_at >= $1 AND status = 'approved'
	`, since)
}

func (r *Repository) CountCompletionsSince(since time.Time) (int, error) {
	return r.count(`SELECT COUNT(*) FROM user_tasks WHERE completed_at >= $1`, since)
}

// RewardsDistributedSince sums rewards of completions within the window.
func (r *Repository) RewardsDistributedSince(since time.Time) (float64, error) {
	return r.sum(`
		SELECT SUM(t.reward)
		FROM user_tasks ut
		JOIN tasks t ON ut.task_id = t.id
		WHERE ut.completed_at >= $1
	`, since)
}
