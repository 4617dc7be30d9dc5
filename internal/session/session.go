// Package session holds per-chat conversational state: the single pending
// expectation for the chat's next free-form input, plus flow-scoped scratch
// fields. Everything here is in-memory only; the database remains the
// durable source of truth across restarts.
package session

import (
	"sync"
	"time"
)

// ExpectKind enumerates every input the bot can be waiting for.
type ExpectKind int

const (
	ExpectNone ExpectKind = iota
	ExpectSupportMessage
	ExpectBroadcastMessage
	ExpectCouponQuantity
	ExpectOtherCountry
	ExpectFAQQuestion
	ExpectPasswordRecovery
	ExpectRegScreenshot
	ExpectCouponScreenshot
	ExpectTaskScreenshot
	ExpectCouponCodes
	ExpectUserCredentials
)

// Expectation is a tagged value: the kind plus whatever auxiliary datum the
// kind carries. Unused fields stay zero.
type Expectation struct {
	Kind      ExpectKind
	TaskID    int64 // ExpectTaskScreenshot
	PaymentID int64 // ExpectCouponCodes
	ForUser   int64 // ExpectUserCredentials
}

// ApprovalKind tags which submission a chat is waiting on the admin for.
type ApprovalKind int

const (
	ApprovalNone ApprovalKind = iota
	ApprovalRegistration
	ApprovalCoupon
)

// Approval marks an in-flight admin handshake.
type Approval struct {
	Kind      ApprovalKind
	PaymentID int64 // ApprovalCoupon only
}

// Session is the per-chat state record. Fields are only touched through
// Manager methods so concurrent timers and the update loop never race.
type Session struct {
	Expect          Expectation
	Package         string // registration package pick
	CouponQuantity  int
	CouponPackage   string
	CouponTotal     int
	SelectedAccount string
	SelectedCountry string
	Waiting         Approval
	LastActive      time.Time
}

// Manager owns all sessions. At most one expectation exists per chat;
// setting a new one silently replaces the old.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

func (m *Manager) get(chatID int64) *Session {
	s, ok := m.sessions[chatID]
	if !ok {
		s = &Session{}
		m.sessions[chatID] = s
	}
	s.LastActive = m.now()
	return s
}

// Update runs fn against the chat's session under the lock, creating the
// session on first use.
func (m *Manager) Update(chatID int64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.get(chatID))
}

// Peek returns a copy of the chat's session, if one exists.
func (m *Manager) Peek(chatID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Expect sets the chat's pending expectation, replacing any prior one.
func (m *Manager) Expect(chatID int64, e Expectation) {
	m.Update(chatID, func(s *Session) { s.Expect = e })
}

// Expectation returns the chat's pending expectation, ExpectNone if absent.
func (m *Manager) Expectation(chatID int64) Expectation {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return Expectation{}
	}
	return s.Expect
}

// ClearExpectation consumes the pending expectation, keeping scratch fields.
func (m *Manager) ClearExpectation(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		s.Expect = Expectation{}
	}
}

// Clear drops the whole session record.
func (m *Manager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

// EvictIdle removes sessions idle longer than maxIdle and reports how many
// were dropped.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	evicted := 0
	for chatID, s := range m.sessions {
		if s.LastActive.Before(cutoff) {
			delete(m.sessions, chatID)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
