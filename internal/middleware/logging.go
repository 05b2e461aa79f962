package middleware

import (
	"net/http"
	"time"

	"todolist-web/internal/logging"
	"todolist-web/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request once the handler chain has run
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		logEntry := logging.Logger.WithFields(logrus.Fields{
			"client_ip": c.ClientIP(),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
		})
		if query := c.Request.URL.RawQuery; query != "" {
			logEntry = logEntry.WithField("query", query)
		}
		if userAgent := c.GetHeader("User-Agent"); userAgent != "" {
			logEntry = logEntry.WithField("user_agent", userAgent)
		}

		c.Next()

		statusCode := c.Writer.Status()
		logEntry = logEntry.WithFields(logrus.Fields{
			"status":        statusCode,
			"latency_ms":    time.Since(startTime).Milliseconds(),
			"response_size": c.Writer.Size(),
		})

		// Attached by the session middleware further down the chain
		if s := session.Current(c); s != nil {
			logEntry = logEntry.WithField("session", logging.ShortID(s.ID))
			if s.IsNew {
				logEntry = logEntry.WithField("new_session", true)
			}
		}
		if location := c.Writer.Header().Get("Location"); location != "" {
			logEntry = logEntry.WithField("location", location)
		}
		if len(c.Errors) > 0 {
			logEntry = logEntry.WithField("errors", c.Errors.String())
		}
		if statusCode == http.StatusTooManyRequests {
			logEntry = logEntry.WithField("rate_limited", true)
		}

		switch {
		case statusCode >= 500:
			logEntry.Error("Server error")
		case statusCode >= 400:
			logEntry.Warn("Client error")
		case statusCode >= 300:
			logEntry.Info("Redirect")
		default:
			logEntry.Info("Request completed")
		}
	}
}
