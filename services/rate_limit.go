package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/supermercado-sim/mercado_api/shared"
)

// RateLimitService is a fixed-window limiter on Redis. Counters are keyed by
// client IP and scope; windows expire on their own, nothing is cleaned up.
type RateLimitService struct {
	appContext.DefaultService

	redisSvc *RedisService

	limit  int64
	window time.Duration
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.limit = 120
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			svc.limit = n
		}
	}
	svc.window = time.Minute
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// Allow consumes one request from the identifier's window. It returns the
// remaining quota; exhaustion returns allowed=false with the retry delay.
func (svc *RateLimitService) Allow(ctx context.Context, scope, identifier string) (allowed bool, remaining int64, retryAfter time.Duration, err error) {
	key := fmt.Sprintf("ratelimit:%s:%s", scope, identifier)

	count, err := svc.redisSvc.Increment(ctx, key)
	if err != nil {
		return false, 0, 0, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, key, svc.window); err != nil {
			return false, 0, 0, err
		}
	}

	if count > svc.limit {
		ttl, err := svc.redisSvc.TTL(ctx, key)
		if err != nil || ttl < 0 {
			ttl = svc.window
		}
		return false, 0, ttl, nil
	}
	return true, svc.limit - count, 0, nil
}

// RateLimitMiddleware applies the limiter per client IP. Redis being down
// fails open: the game should not stop because the limiter did.
func RateLimitMiddleware(svc *RateLimitService, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, remaining, retryAfter, err := svc.Allow(c.Context(), scope, c.IP())
		if err != nil {
			log.WithError(err).Warn("Rate limiter unavailable, allowing request")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(svc.limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			c.Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			return shared.ResponseError(c, fiber.StatusTooManyRequests,
				"Muitas requisições. Tente novamente em instantes.", nil)
		}
		return c.Next()
	}
}
