package models

import "time"

// User payment_status values. Transitions only move forward; there is no
// rejected state, admin silence simply leaves a user where they are.
const (
	StatusNew            = "new"
	StatusPendingPayment = "pending_payment"
	StatusPendingDetails = "pending_details"
	StatusRegistered     = "registered"
)

// Payment status values.
const (
	PaymentPending  = "pending_payment"
	PaymentApproved = "approved"
)

// Membership packages.
const (
	PackageStandard = "Standard"
	PackageX        = "X"
)

// Task types.
const (
	TaskJoinGroup   = "join_group"
	TaskJoinChannel = "join_channel"
	TaskExternal    = "external_task"
)

// ReferralClickBonus is credited to the referrer when an invited user first
// opens the bot through a referral link.
const ReferralClickBonus = 0.1

// PackagePrice returns the unit price in naira for a package, 0 for unknown.
func PackagePrice(pkg string) int {
	switch pkg {
	case PackageStandard:
		return 9000
	case PackageX:
		return 14000
	}
	return 0
}

// ReferralRegistrationBonus is the extra referrer reward paid once the
// invited user completes registration, on top of the click bonus.
func ReferralRegistrationBonus(pkg string) float64 {
	if pkg == PackageX {
		return 0.9
	}
	return 0.4
}

// User represents a platform member keyed by their Telegram chat ID.
type User struct {
	ChatID               int64     // Telegram chat ID, primary key
	Package              string    // "" / Standard / X
	PaymentStatus        string    // see Status* constants
	Name                 string    // Full name, collected during registration
	Username             string    // @nickname; replaced by admin at finalization
	Email                string
	Phone                string
	Password             string    // Site password, issued by admin
	JoinDate             time.Time // First contact with the bot
	AlarmSetting         bool      // Daily reminder opt-in
	Streaks              int
	Invites              int     // Referral link clicks
	Balance              float64 // Never driven below zero
	ScreenshotUploadedAt *time.Time
	ApprovedAt           *time.Time
	RegistrationDate     *time.Time
	ReferralCode         string
	ReferredBy           *int64 // chat ID of the referrer, if any
	SelectedCoach        *int64 // chat ID of the chosen coach
}

// Payment records a coupon purchase awaiting or past admin approval.
type Payment struct {
	ID             int64
	ChatID         int64  // Purchaser (foreign key to users.chat_id)
	Type           string // Always "coupon" for now
	Package        string
	Quantity       int
	TotalAmount    int // quantity x package unit price, in naira
	PaymentAccount string
	Status         string // PaymentPending / PaymentApproved
	Timestamp      time.Time
	ApprovedAt     *time.Time
}

// Coupon is a single code issued under an approved payment.
type Coupon struct {
	ID        int64
	PaymentID int64
	Code      string
}

// Task is an extra-earning opportunity with an expiry.
type Task struct {
	ID        int64
	Type      string // TaskJoinGroup / TaskJoinChannel / TaskExternal
	Link      string
	Reward    float64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Completion proves a user finished a task and was paid exactly once.
// At most one row exists per (user, task) pair.
type Completion struct {
	UserID      int64
	TaskID      int64
	CompletedAt time.Time
}

// Coach is a registered coach. The coach ID doubles as a chat ID so a coach
// can also act as an ordinary bot user.
type Coach struct {
	CoachID int64
	Name    string
	AddedBy int64
	AddedAt time.Time
}

// PaymentAccount is a destination offered during registration payment.
// Inactive accounts are hidden from selection but kept for history.
type PaymentAccount struct {
	ID       int64
	Country  string
	Flag     string
	Details  string
	IsActive bool
}

// Interaction is an append-only audit record of a routed event.
type Interaction struct {
	ID        int64
	ChatID    int64
	Action    string
	Timestamp time.Time
}
