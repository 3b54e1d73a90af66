package ratelimit

import (
	"sync"
	"time"

	"rwanews/internal/logger"
)

// Limiter caps AI judgment requests per day. When the budget is exhausted the
// judge falls back to its permissive defaults instead of calling out.
type Limiter struct {
	mu        sync.Mutex
	count     int
	max       int // 0 = unlimited
	resetTime time.Time
}

func New(maxPerDay int) *Limiter {
	return &Limiter{
		max:       maxPerDay,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether one more request fits the daily budget, counting it
// when it does.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.resetTime) {
		l.count = 0
		l.resetTime = time.Now().Add(24 * time.Hour)
	}

	if l.max > 0 && l.count >= l.max {
		logger.Warn("judgment request budget exhausted", "used", l.count, "max", l.max)
		return false
	}

	l.count++
	return true
}

// Used returns how many requests were counted in the current window.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
