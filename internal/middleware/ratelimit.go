package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter caps requests per remote address within a rolling window. It
// fronts the credential endpoints, so the bookkeeping stays coarse: one
// counter per address, reset once the window has fully elapsed.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

type clientWindow struct {
	hits     int
	lastSeen time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
	go rl.reap()
	return rl
}

// reap drops addresses that have gone quiet for a full window.
func (rl *RateLimiter) reap() {
	for {
		time.Sleep(rl.window)
		rl.mu.Lock()
		for addr, c := range rl.clients {
			if time.Since(c.lastSeen) > rl.window {
				delete(rl.clients, addr)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[addr]
	if !ok || time.Since(c.lastSeen) > rl.window {
		rl.clients[addr] = &clientWindow{hits: 1, lastSeen: time.Now()}
		return true
	}

	c.hits++
	c.lastSeen = time.Now()
	return c.hits <= rl.limit
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
