package middleware

import (
	"net/http"
	"strconv"
	"time"

	"todolist-web/internal/logging"
	"todolist-web/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled                bool
	RequestsPerMin         int64 // per client IP, every route
	WritesPerMinPerSession int64 // per session, form submissions only
}

// NewRateLimitConfigFromEnv creates rate limit config from environment variables
func NewRateLimitConfigFromEnv() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:                getEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerMin:         int64(getEnvInt("RATE_LIMIT_REQUESTS_PER_MIN", 120)),
		WritesPerMinPerSession: int64(getEnvInt("RATE_LIMIT_WRITES_PER_MIN", 30)),
	}
}

func noopMiddleware(c *gin.Context) {
	c.Next()
}

// GlobalRateLimiter limits every client IP to RequestsPerMin
func GlobalRateLimiter(config *RateLimitConfig) gin.HandlerFunc {
	if !config.Enabled {
		logging.Logger.Info("Rate limiting is disabled")
		return noopMiddleware
	}

	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  config.RequestsPerMin,
	}
	instance := limiter.New(memory.NewStore(), rate)

	logging.Logger.Infof("Rate limiting enabled: %d requests per minute", config.RequestsPerMin)
	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		logging.Logger.WithFields(map[string]interface{}{
			"client_ip":     c.ClientIP(),
			"path":          c.Request.URL.Path,
			"method":        c.Request.Method,
			"rate_limited":  true,
			"limit_per_min": rate.Limit,
		}).Warn("Rate limit exceeded")

		tooManyRequests(c, rate)
	}))
}

// SessionWriteLimiter limits form submissions per session, falling back to the
// client IP when no session is attached. It must run after the session middleware.
func SessionWriteLimiter(config *RateLimitConfig) gin.HandlerFunc {
	if !config.Enabled {
		return noopMiddleware
	}

	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  config.WritesPerMinPerSession,
	}
	instance := limiter.New(memory.NewStore(), rate)

	keyGetter := func(c *gin.Context) string {
		if s := session.Current(c); s != nil {
			return "session:" + s.ID
		}
		return "ip:" + c.ClientIP()
	}

	return mgin.NewMiddleware(instance,
		mgin.WithKeyGetter(keyGetter),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			entry := logging.Logger.WithFields(map[string]interface{}{
				"client_ip":     c.ClientIP(),
				"path":          c.Request.URL.Path,
				"rate_limited":  true,
				"limit_type":    "write",
				"limit_per_min": rate.Limit,
			})
			if s := session.Current(c); s != nil {
				entry = entry.WithField("session", logging.ShortID(s.ID))
			}
			entry.Warn("Write rate limit exceeded")

			tooManyRequests(c, rate)
		}))
}

func tooManyRequests(c *gin.Context, rate limiter.Rate) {
	c.Header("Retry-After", strconv.Itoa(int(rate.Period.Seconds())))
	c.String(http.StatusTooManyRequests, "Too many requests. Please try again later.")
	c.Abort()
}
