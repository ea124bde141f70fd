package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client-IP token bucket.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:   cfg.Burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.limiter(clientIP(r))
		reservation := limiter.ReserveN(l.now(), 1)
		if !reservation.OK() {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		if delay := reservation.DelayFrom(l.now()); delay > 0 {
			reservation.CancelAt(l.now())
			w.Header().Set("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sweep drops limiters idle for longer than maxIdle.
func (l *RateLimiter) Sweep(maxIdle time.Duration) {
	cutoff := l.now().Add(-maxIdle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, cl := range l.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

func (l *RateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = l.now()
	return cl.limiter
}

// clientIP uses RemoteAddr only; X-Forwarded-For is client-controlled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
