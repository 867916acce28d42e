package rate

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limits configures a LimiterMap.
type Limits struct {
	RPM     int           // sustained requests per minute per client
	Burst   int           // bucket size
	IdleTTL time.Duration // evict clients idle longer than this
}

type entry struct {
	limiter *rate.Limiter
	last    time.Time
}

// LimiterMap provides per-client rate limiting with idle eviction.
type LimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limits   Limits
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLimiterMap creates a LimiterMap and starts its reaper goroutine.
func NewLimiterMap(l Limits) *LimiterMap {
	lm := &LimiterMap{
		limiters: make(map[string]*entry),
		limits:   l,
		stopCh:   make(chan struct{}),
	}
	go lm.reaper()
	return lm
}

func (l *LimiterMap) reaper() {
	t := time.NewTicker(l.limits.IdleTTL)
	defer t.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-t.C:
			l.mu.Lock()
			for k, e := range l.limiters {
				if now.Sub(e.last) > l.limits.IdleTTL {
					delete(l.limiters, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop stops the reaper. Safe to call more than once.
func (l *LimiterMap) Stop() { l.stopOnce.Do(func() { close(l.stopCh) }) }

func (l *LimiterMap) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.limiters[key]; ok {
		e.last = time.Now()
		return e.limiter
	}
	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.limits.RPM)), l.limits.Burst)
	l.limiters[key] = &entry{limiter: lim, last: time.Now()}
	return lim
}

// Allow reports whether a request from the given client may proceed.
func (l *LimiterMap) Allow(key string) bool {
	return l.get(key).Allow()
}

// Len returns the number of tracked clients.
func (l *LimiterMap) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// IPFromRequest extracts the client IP, preferring the first X-Forwarded-For hop.
func IPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
