package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Result is the outcome of a rate limit check
type Result struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

type key struct {
	userID   string
	endpoint string
}

type window struct {
	start time.Time
	count int
}

// Limiter counts requests per user and endpoint in fixed windows
type Limiter struct {
	maxRequests int
	window      time.Duration
	windows     map[key]*window
	nextPrune   time.Time
	mu          sync.Mutex
	logger      *zap.Logger
	now         func() time.Time
}

// NewLimiter allows maxRequests per user and endpoint in each window
func NewLimiter(maxRequests int, windowSize time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      windowSize,
		windows:     make(map[key]*window),
		logger:      logger,
		now:         time.Now,
	}
}

// Allow records a request and reports whether it fits in the current window.
// Denied requests still count.
func (l *Limiter) Allow(userID, endpoint string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	k := key{userID: userID, endpoint: endpoint}
	w, ok := l.windows[k]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &window{start: now}
		l.windows[k] = w
	}
	w.count++

	result := Result{
		Allowed:   w.count <= l.maxRequests,
		Remaining: max(0, l.maxRequests-w.count),
		ResetTime: w.start.Add(l.window),
	}
	if !result.Allowed {
		l.logger.Warn("Rate limit exceeded",
			zap.String("user_id", userID),
			zap.String("endpoint", endpoint),
			zap.Int("count", w.count),
			zap.Time("reset_time", result.ResetTime))
	}
	return result
}

// prune drops expired windows at most once per window length
func (l *Limiter) prune(now time.Time) {
	if now.Before(l.nextPrune) {
		return
	}
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, k)
		}
	}
	l.nextPrune = now.Add(l.window)
}

// Tracked reports how many user and endpoint windows are held
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
