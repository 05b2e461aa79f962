package middleware

import (
	"slices"
	"time"

	"todolist-web/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string // Allowed origins, "*" for all, "https://*.example.com" for subdomains
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // Preflight cache duration in seconds
}

// NewCORSConfigFromEnv creates CORS config from environment variables.
// Pages and forms are served same-origin, so CORS is off unless enabled.
func NewCORSConfigFromEnv() *CORSConfig {
	return &CORSConfig{
		Enabled:          getEnvBool("CORS_ENABLED", false),
		AllowedOrigins:   parseCommaSeparated(getEnv("CORS_ALLOWED_ORIGINS", "")),
		AllowedMethods:   parseCommaSeparated(getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")),
		AllowedHeaders:   parseCommaSeparated(getEnv("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,X-Requested-With")),
		ExposeHeaders:    parseCommaSeparated(getEnv("CORS_EXPOSE_HEADERS", "Content-Length,Content-Type")),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
	}
}

// CORS handles Cross-Origin Resource Sharing through gin-contrib/cors
func CORS(config *CORSConfig) gin.HandlerFunc {
	if !config.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if len(config.AllowedOrigins) == 0 {
		logging.Logger.Warn("CORS enabled without CORS_ALLOWED_ORIGINS; cross-origin requests stay blocked by the browser")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	corsConfig := cors.Config{
		AllowMethods:     config.AllowedMethods,
		AllowHeaders:     config.AllowedHeaders,
		ExposeHeaders:    config.ExposeHeaders,
		AllowCredentials: config.AllowCredentials,
		AllowWildcard:    true,
		MaxAge:           time.Duration(config.MaxAge) * time.Second,
	}
	if slices.Contains(config.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.AllowedOrigins
	}

	logging.Logger.WithField("origins", config.AllowedOrigins).Info("CORS enabled")
	return cors.New(corsConfig)
}
