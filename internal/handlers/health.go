package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"todolist-web/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Version is reported by the detailed health check
var Version = "1.0.0"

const probeTimeout = 2 * time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	store     storage.Store
	db        *gorm.DB // nil when sessions are kept in memory
	startTime time.Time
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(store storage.Store, db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		store:     store,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the detailed health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// BasicHealth handles GET /health
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// DetailedHealth handles GET /health/detailed
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	checks := make(map[string]HealthCheck)
	overallStatus := "healthy"

	sessionCheck := h.checkSessionStore(c.Request.Context())
	checks["sessions"] = sessionCheck
	if sessionCheck.Status != "healthy" {
		overallStatus = "unhealthy"
	}

	if h.db != nil {
		checks["database"] = h.databaseStats()
		if h.db.Dialector.Name() == "postgres" {
			checks["migrations"] = h.checkMigrations()
		}
	}

	checks["system"] = h.getSystemInfo()

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    formatDuration(time.Since(h.startTime)),
		Version:   Version,
		Checks:    checks,
	}

	if overallStatus == "unhealthy" {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessProbe handles GET /health/ready
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	if err := h.pingStore(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"reason":  "session_store_unavailable",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessProbe handles GET /health/live
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (h *HealthHandler) pingStore(ctx context.Context) error {
	if h.store == nil {
		return errors.New("session store not initialized")
	}
	return h.store.Ping(ctx)
}

// checkSessionStore pings the store and counts live sessions
func (h *HealthHandler) checkSessionStore(parent context.Context) HealthCheck {
	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	if err := h.pingStore(ctx); err != nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Session store ping failed",
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		}
	}

	count, err := h.store.Count(ctx)
	if err != nil {
		return HealthCheck{
			Status:  "unhealthy",
			Message: "Failed to count sessions",
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		}
	}

	return HealthCheck{
		Status:  "healthy",
		Message: "Session store is healthy",
		Details: map[string]interface{}{
			"active_sessions": count,
		},
	}
}

// databaseStats reports connection pool usage of the SQL session store
func (h *HealthHandler) databaseStats() HealthCheck {
	sqlDB, err := h.db.DB()
	if err != nil {
		return HealthCheck{
			Status:  "unknown",
			Message: "Failed to get database instance",
		}
	}

	stats := sqlDB.Stats()
	return HealthCheck{
		Status:  "info",
		Message: h.db.Dialector.Name() + " connection pool",
		Details: map[string]interface{}{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"wait_count":       stats.WaitCount,
			"wait_duration_ms": stats.WaitDuration.Milliseconds(),
		},
	}
}

// checkMigrations reads the golang-migrate version table
func (h *HealthHandler) checkMigrations() HealthCheck {
	var exists bool
	err := h.db.Raw(`
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'schema_migrations'
		)
	`).Scan(&exists).Error

	if err != nil || !exists {
		return HealthCheck{
			Status:  "unknown",
			Message: "Migration table not found",
		}
	}

	var version uint
	var dirty bool
	err = h.db.Raw(`
		SELECT version, dirty
		FROM schema_migrations
		LIMIT 1
	`).Row().Scan(&version, &dirty)

	if err != nil {
		return HealthCheck{
			Status:  "unknown",
			Message: "Could not read migration status",
		}
	}

	status := "healthy"
	message := "Migrations are up to date"
	if dirty {
		status = "warning"
		message = "Database is in dirty state - manual intervention required"
	}

	return HealthCheck{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"version": version,
			"dirty":   dirty,
		},
	}
}

func (h *HealthHandler) getSystemInfo() HealthCheck {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return HealthCheck{
		Status:  "info",
		Message: "System information",
		Details: map[string]interface{}{
			"goroutines":      runtime.NumGoroutine(),
			"memory_alloc_mb": m.Alloc / 1024 / 1024,
			"num_gc":          m.NumGC,
			"go_version":      runtime.Version(),
		},
	}
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
