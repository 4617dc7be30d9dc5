package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectReplacesPrior(t *testing.T) {
	m := NewManager()

	m.Expect(1, Expectation{Kind: ExpectCouponQuantity})
	m.Expect(1, Expectation{Kind: ExpectTaskScreenshot, TaskID: 42})

	e := m.Expectation(1)
	assert.Equal(t, ExpectTaskScreenshot, e.Kind)
	assert.Equal(t, int64(42), e.TaskID)
}

func TestExpectationForUnknownChatIsNone(t *testing.T) {
	m := NewManager()

	e := m.Expectation(99)
	assert.Equal(t, ExpectNone, e.Kind)
	assert.Equal(t, 0, m.Len())
}

func TestClearExpectationKeepsScratchFields(t *testing.T) {
	m := NewManager()

	m.Update(1, func(s *Session) {
		s.Expect = Expectation{Kind: ExpectCouponScreenshot}
		s.CouponQuantity = 3
		s.CouponPackage = "Standard"
	})
	m.ClearExpectation(1)

	s, ok := m.Peek(1)
	require.True(t, ok)
	assert.Equal(t, ExpectNone, s.Expect.Kind)
	assert.Equal(t, 3, s.CouponQuantity)
	assert.Equal(t, "Standard", s.CouponPackage)
}

func TestClearDropsSession(t *testing.T) {
	m := NewManager()

	m.Expect(1, Expectation{Kind: ExpectSupportMessage})
	m.Clear(1)

	_, ok := m.Peek(1)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestPeekReturnsCopy(t *testing.T) {
	m := NewManager()

	m.Update(1, func(s *Session) { s.CouponQuantity = 2 })
	s, ok := m.Peek(1)
	require.True(t, ok)

	s.CouponQuantity = 99
	again, _ := m.Peek(1)
	assert.Equal(t, 2, again.CouponQuantity)
}

func TestEvictIdle(t *testing.T) {
	m := NewManager()
	current := time.Now()
	m.now = func() time.Time { return current }

	m.Expect(1, Expectation{Kind: ExpectOtherCountry})
	m.Expect(2, Expectation{Kind: ExpectFAQQuestion})

	// Chat 2 stays active, chat 1 goes idle.
	current = current.Add(2 * time.Hour)
	m.Update(2, func(s *Session) {})

	evicted := m.EvictIdle(time.Hour)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.Len())

	_, ok := m.Peek(1)
	assert.False(t, ok)
	_, ok = m.Peek(2)
	assert.True(t, ok)
}

func TestEvictIdleKeepsFreshSessions(t *testing.T) {
	m := NewManager()

	m.Expect(1, Expectation{Kind: ExpectRegScreenshot})
	assert.Equal(t, 0, m.EvictIdle(time.Hour))
	assert.Equal(t, 1, m.Len())
}
