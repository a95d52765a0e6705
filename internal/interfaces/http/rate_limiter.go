package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/jhoicas/billar-api/internal/application/dto"
)

// RateLimiterConfig token bucket por tenant.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	EntryTTL          time.Duration // entradas sin uso se descartan
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TenantRateLimiter un limitador por tenant; sin tenant se usa la IP.
type TenantRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

// NewTenantRateLimiter construye el limitador. RequestsPerSecond <= 0 desactiva el límite.
func NewTenantRateLimiter(cfg RateLimiterConfig) *TenantRateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 10 * time.Minute
	}
	return &TenantRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		ttl:      cfg.EntryTTL,
		now:      time.Now,
	}
}

func (rl *TenantRateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	if e, ok := rl.limiters[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	// barrido perezoso de entradas viejas
	for k, e := range rl.limiters {
		if now.Sub(e.lastSeen) > rl.ttl {
			delete(rl.limiters, k)
		}
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[key] = &limiterEntry{limiter: l, lastSeen: now}
	return l
}

// Middleware fiber. Debe ir después de TenantMiddleware.
func (rl *TenantRateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.rate <= 0 {
			return c.Next()
		}
		key := GetTenant(c)
		if key == "" {
			key = "ip:" + c.IP()
		}
		l := rl.get(key)
		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !l.AllowN(rl.now(), 1) {
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones, intente en un momento"})
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(int(l.TokensAt(rl.now()))))
		return c.Next()
	}
}
