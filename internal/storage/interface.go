package storage

import (
	"context"
	"time"

	"todolist-web/internal/models"
)

// Store defines the interface for session storage backends
type Store interface {
	// Load returns a decoded copy of the session, or ErrSessionNotFound when it
	// does not exist or has expired
	Load(ctx context.Context, id string) (*models.SessionData, error)
	// Save creates or replaces the session and pushes its expiry to now+ttl
	Save(ctx context.Context, id string, data *models.SessionData, ttl time.Duration) error
	// Touch pushes the expiry of a live session to now+ttl without rewriting
	// its data. Missing or expired sessions are left alone.
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error

	// Maintenance
	DeleteExpired(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
