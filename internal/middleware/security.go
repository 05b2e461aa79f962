package middleware

import (
	"net/http"
	"strconv"

	"todolist-web/internal/logging"
	"todolist-web/internal/session"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds security middleware configuration
type SecurityConfig struct {
	MaxRequestBodySize int64    // Maximum request body size in bytes
	TrustedProxies     []string // Proxies whose X-Forwarded-For is honoured
}

// NewSecurityConfigFromEnv creates security config from environment variables
func NewSecurityConfigFromEnv() *SecurityConfig {
	return &SecurityConfig{
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 64*1024)),
		TrustedProxies:     parseCommaSeparated(getEnv("TRUSTED_PROXIES", "")),
	}
}

// contentSecurityPolicy allows the embedded stylesheet and script only
const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; " +
	"form-action 'self'; frame-ancestors 'none'; base-uri 'none'"

// SecurityHeaders adds security-related HTTP headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", contentSecurityPolicy)
		c.Header("Referrer-Policy", "same-origin")

		// Pages carry per-session data
		c.Header("Cache-Control", "no-store, private")

		c.Next()
	}
}

// RequestSizeLimit limits the size of incoming request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			logging.Logger.WithFields(map[string]interface{}{
				"client_ip":      c.ClientIP(),
				"content_length": c.Request.ContentLength,
				"max_size":       maxSize,
			}).Warn("Request body too large")

			c.String(http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		c.Next()
	}
}

// ErrorSanitizer logs errors recorded with c.Error and, for 5xx responses no
// handler has written, answers with a generic message
func ErrorSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logging.Logger.WithFields(map[string]interface{}{
			"client_ip": c.ClientIP(),
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
			"error":     err.Error(),
		}).Error("Request error")

		if c.Writer.Status() >= 500 && !c.Writer.Written() {
			c.String(http.StatusInternalServerError, "An internal error occurred. Please try again later.")
		}
	}
}

// IDParam names a numeric route parameter and the message flashed when it
// does not hold a valid ID
type IDParam struct {
	Name    string
	Message string
}

// ValidID reports whether s is a positive decimal integer
func ValidID(s string) bool {
	id, err := strconv.Atoi(s)
	return err == nil && id > 0
}

// IDValidator sends requests with malformed IDs back to the list overview
// with an error flash. It must run after the session middleware.
func IDValidator(params ...IDParam) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, param := range params {
			value := c.Param(param.Name)
			if value == "" || ValidID(value) {
				continue
			}

			logging.Logger.WithFields(map[string]interface{}{
				"client_ip": c.ClientIP(),
				"path":      c.Request.URL.Path,
				"param":     param.Name,
				"value":     value,
			}).Warn("Invalid ID format")

			if s := session.Current(c); s != nil {
				s.SetError(param.Message)
				if err := session.Persist(c); err != nil {
					_ = c.Error(err)
					c.Status(http.StatusInternalServerError)
					c.Abort()
					return
				}
			}
			c.Redirect(http.StatusFound, "/lists")
			c.Abort()
			return
		}
		c.Next()
	}
}
