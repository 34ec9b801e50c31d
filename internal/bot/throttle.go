package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle provides per-user command rate limiting using token buckets.
type Throttle struct {
	mu       sync.Mutex
	users    map[int64]*userLimiter
	rate     rate.Limit // commands per second
	burst    int
	cleanup  time.Duration
	stopOnce sync.Once
	done     chan struct{}
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle creates a per-user throttle allowing perSecond commands with
// the given burst. Idle users are evicted periodically.
func NewThrottle(perSecond float64, burst int) *Throttle {
	t := &Throttle{
		users:   make(map[int64]*userLimiter),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		cleanup: 5 * time.Minute,
		done:    make(chan struct{}),
	}
	go t.cleanupLoop()
	return t
}

// Allow reports whether a command from the user should be processed.
func (t *Throttle) Allow(userID int64) bool {
	t.mu.Lock()
	u, ok := t.users[userID]
	if !ok {
		u = &userLimiter{
			limiter:  rate.NewLimiter(t.rate, t.burst),
			lastSeen: time.Now(),
		}
		t.users[userID] = u
	} else {
		u.lastSeen = time.Now()
	}
	t.mu.Unlock()

	return u.limiter.Allow()
}

func (t *Throttle) cleanupLoop() {
	ticker := time.NewTicker(t.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.evictIdle()
		case <-t.done:
			return
		}
	}
}

func (t *Throttle) evictIdle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-2 * t.cleanup)
	for id, u := range t.users {
		if u.lastSeen.Before(cutoff) {
			delete(t.users, id)
		}
	}
}

// Stop halts the cleanup loop.
func (t *Throttle) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}
