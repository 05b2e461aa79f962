package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(config *CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORS(config))
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, "success")
	}
	router.GET("/test", handler)
	router.OPTIONS("/test", handler)
	return router
}

func corsRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", http.NoBody)
	// Origins matching the host are treated as same-origin
	req.Host = "todolist.local"
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if method == "OPTIONS" {
		req.Header.Set("Access-Control-Request-Method", "POST")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	setupTest()

	base := func(origins ...string) *CORSConfig {
		return &CORSConfig{
			Enabled:        true,
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		}
	}

	t.Run("disabled adds no headers", func(t *testing.T) {
		config := base("https://example.com")
		config.Enabled = false

		w := corsRequest(corsRouter(config), "GET", "https://example.com")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("enabled without origins is a no-op", func(t *testing.T) {
		w := corsRequest(corsRouter(base()), "GET", "https://example.com")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		w := corsRequest(corsRouter(base("*")), "GET", "https://example.com")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allows listed origin", func(t *testing.T) {
		w := corsRequest(corsRouter(base("https://example.com")), "GET", "https://example.com")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allows wildcard subdomain", func(t *testing.T) {
		w := corsRequest(corsRouter(base("https://*.example.com")), "GET", "https://app.example.com")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("rejects unlisted origin", func(t *testing.T) {
		w := corsRequest(corsRouter(base("https://example.com")), "GET", "https://evil.com")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight", func(t *testing.T) {
		w := corsRequest(corsRouter(base("https://example.com")), "OPTIONS", "https://example.com")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("requests without origin pass", func(t *testing.T) {
		w := corsRequest(corsRouter(base("https://example.com")), "GET", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestNewCORSConfigFromEnv(t *testing.T) {
	setupTest()
	keys := []string{"CORS_ENABLED", "CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_METHODS",
		"CORS_ALLOWED_HEADERS", "CORS_EXPOSE_HEADERS", "CORS_ALLOW_CREDENTIALS", "CORS_MAX_AGE"}

	t.Run("defaults", func(t *testing.T) {
		for _, key := range keys {
			t.Setenv(key, "")
		}

		config := NewCORSConfigFromEnv()

		assert.False(t, config.Enabled)
		assert.Empty(t, config.AllowedOrigins)
		assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, config.AllowedMethods)
		assert.Contains(t, config.AllowedHeaders, "X-Requested-With")
		assert.False(t, config.AllowCredentials)
		assert.Equal(t, 3600, config.MaxAge)
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("CORS_ENABLED", "true")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.com,https://app.example.com")
		t.Setenv("CORS_ALLOWED_METHODS", "GET")
		t.Setenv("CORS_ALLOW_CREDENTIALS", "true")
		t.Setenv("CORS_MAX_AGE", "7200")

		config := NewCORSConfigFromEnv()

		assert.True(t, config.Enabled)
		assert.Len(t, config.AllowedOrigins, 2)
		assert.Equal(t, []string{"GET"}, config.AllowedMethods)
		assert.True(t, config.AllowCredentials)
		assert.Equal(t, 7200, config.MaxAge)
	})
}
