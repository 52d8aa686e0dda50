package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdle is how long an unused per-session limiter is kept.
const limiterIdle = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one token bucket per session ID.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

func newLimiterStore(r rate.Limit, burst int) *limiterStore {
	if burst < 1 {
		burst = 1
	}
	return &limiterStore{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
		now:      time.Now,
	}
}

// allow reports whether key may proceed now, pruning idle entries.
func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.limiters {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(s.limiters, k)
		}
	}

	entry, exists := s.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}
