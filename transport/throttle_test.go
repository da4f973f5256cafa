package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserThrottleBusyWhileHeld(t *testing.T) {
	assert := assert.New(t)

	th := NewUserThrottle(time.Minute)

	_, ok := th.Acquire(1)
	assert.True(ok)

	remaining, ok := th.Acquire(1)
	assert.False(ok)
	assert.Greater(remaining, 50*time.Second)

	// another user is unaffected
	_, ok = th.Acquire(2)
	assert.True(ok)
}

func TestUserThrottleTrailingCooldown(t *testing.T) {
	assert := assert.New(t)

	th := NewUserThrottle(50 * time.Millisecond)

	_, ok := th.Acquire(1)
	assert.True(ok)
	th.Release(1)

	// still cooling down right after release
	_, ok = th.Acquire(1)
	assert.False(ok)

	time.Sleep(80 * time.Millisecond)
	_, ok = th.Acquire(1)
	assert.True(ok)
}

func TestUserThrottleReleaseAfterExpiry(t *testing.T) {
	assert := assert.New(t)

	th := NewUserThrottle(10 * time.Millisecond)

	_, ok := th.Acquire(1)
	assert.True(ok)
	time.Sleep(30 * time.Millisecond)
	th.Release(1)

	// cooldown already elapsed during the send; the slot frees immediately
	_, ok = th.Acquire(1)
	assert.True(ok)
}

func TestUserThrottleReleaseWithoutAcquire(t *testing.T) {
	th := NewUserThrottle(time.Minute)
	th.Release(99)

	_, ok := th.Acquire(99)
	assert.True(t, ok)
}

func TestGlobalSlowmodeSingleSlot(t *testing.T) {
	assert := assert.New(t)

	sm := NewGlobalSlowmode(time.Minute)

	_, ok := sm.Acquire(1)
	assert.True(ok)

	// a different user still observes busy
	remaining, ok := sm.Acquire(2)
	assert.False(ok)
	assert.Greater(remaining, 50*time.Second)
}

func TestGlobalSlowmodeCooldown(t *testing.T) {
	assert := assert.New(t)

	sm := NewGlobalSlowmode(50 * time.Millisecond)

	_, ok := sm.Acquire(1)
	assert.True(ok)
	sm.Release(1)

	_, ok = sm.Acquire(2)
	assert.False(ok)

	time.Sleep(80 * time.Millisecond)
	_, ok = sm.Acquire(2)
	assert.True(ok)
}
