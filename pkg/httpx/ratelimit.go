package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines token-bucket parameters for one endpoint class.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed per Window.
	RequestsPerWindow int
	// Window is the time window for the rate.
	Window time.Duration
	// Burst is the bucket size; requests above it are rejected immediately.
	Burst int
}

// Endpoint rate profiles. Login and 2FA verification sit behind StrictLimit
// to slow credential and OTP brute forcing.
var (
	StrictLimit   = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}
	LenientLimit  = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

const visitorIdleTimeout = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterPool struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	cfg      RateLimitConfig
}

func newLimiterPool(cfg RateLimitConfig) *limiterPool {
	p := &limiterPool{
		visitors: make(map[string]*visitor),
		cfg:      cfg,
	}
	go p.cleanup()
	return p
}

func (p *limiterPool) allow(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.visitors[key]
	if !ok {
		limit := rate.Limit(float64(p.cfg.RequestsPerWindow) / p.cfg.Window.Seconds())
		v = &visitor{limiter: rate.NewLimiter(limit, p.cfg.Burst)}
		p.visitors[key] = v
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow()
}

// cleanup drops visitors that have been idle long enough for their bucket to
// be fully refilled anyway.
func (p *limiterPool) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		for key, v := range p.visitors {
			if time.Since(v.lastSeen) > visitorIdleTimeout {
				delete(p.visitors, key)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimitByIP limits requests per client IP with the given profile.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	pool := newLimiterPool(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !pool.allow(host) {
				w.Header().Set("Retry-After", "60")
				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":  "rate_limited",
					"detail": "Too many requests, slow down",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
