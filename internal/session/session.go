package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"todolist-web/internal/logging"
	"todolist-web/internal/models"
	"todolist-web/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKey is the gin context key holding the request's *Session
const ContextKey = "session"

// Session is the per-request view of a user's session. Data is a private copy
// decoded for this request; changes reach the store only through Save.
type Session struct {
	ID    string
	Data  *models.SessionData
	IsNew bool

	modified  bool
	refreshed bool
	store     storage.Store
	ttl      time.Duration
}

// New wraps session data loaded from (or destined for) store
func New(id string, data *models.SessionData, store storage.Store, ttl time.Duration) *Session {
	return &Session{
		ID:    id,
		Data:  data,
		store: store,
		ttl:   ttl,
	}
}

// MarkModified flags the session for saving
func (s *Session) MarkModified() {
	s.modified = true
}

// Modified reports whether the session has unsaved changes
func (s *Session) Modified() bool {
	return s.modified
}

// SetSuccess queues a success message for the next rendered page
func (s *Session) SetSuccess(message string) {
	s.Data.Flash.Success = message
	s.modified = true
}

// SetError queues an error message for the next rendered page
func (s *Session) SetError(message string) {
	s.Data.Flash.Error = message
	s.modified = true
}

// TakeFlash returns the queued messages and clears them
func (s *Session) TakeFlash() models.Flash {
	flash := s.Data.Flash
	if !flash.Empty() {
		s.Data.Flash = models.Flash{}
		s.modified = true
	}
	return flash
}

// Save writes the session to its store if it has changed. An unchanged
// session that already exists only has its expiry pushed out, so the stored
// data lives as long as the re-issued cookie.
func (s *Session) Save(ctx context.Context) error {
	if !s.modified {
		if s.IsNew || s.refreshed {
			return nil
		}
		if err := s.store.Touch(ctx, s.ID, s.ttl); err != nil {
			return err
		}
		s.refreshed = true
		return nil
	}
	if err := s.store.Save(ctx, s.ID, s.Data, s.ttl); err != nil {
		return err
	}
	s.modified = false
	s.refreshed = true
	return nil
}

// Attach stores s in the gin context
func Attach(c *gin.Context, s *Session) {
	c.Set(ContextKey, s)
}

// Current returns the session attached to the request, or nil
func Current(c *gin.Context) *Session {
	value, exists := c.Get(ContextKey)
	if !exists {
		return nil
	}
	s, _ := value.(*Session)
	return s
}

// Persist saves the request's session before a response is written, so the
// next request the browser makes already sees the changes
func Persist(c *gin.Context) error {
	s := Current(c)
	if s == nil {
		return errors.New("no session attached to request")
	}
	return s.Save(c.Request.Context())
}

// Middleware resolves the caller's session from the signed cookie, creating a
// new one when the cookie is absent, invalid or points at an expired session.
// The cookie is re-issued on every request so the session expiry slides.
func Middleware(store storage.Store, config *Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := resolve(c, store, config)
		if err != nil {
			_ = c.Error(err)
			c.Status(http.StatusInternalServerError)
			c.Abort()
			return
		}

		token, err := IssueToken(s.ID, config)
		if err != nil {
			_ = c.Error(err)
			c.Status(http.StatusInternalServerError)
			c.Abort()
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(config.CookieName, token, int(config.TTL.Seconds()), "/", "", config.CookieSecure, true)

		Attach(c, s)
		c.Next()

		if err := s.Save(c.Request.Context()); err != nil {
			logging.ForSession(s.ID).WithError(err).Error("Failed to save session")
			_ = c.Error(err)
		}
	}
}

func resolve(c *gin.Context, store storage.Store, config *Config) (*Session, error) {
	ctx := c.Request.Context()

	cookie, err := c.Cookie(config.CookieName)
	if err != nil || cookie == "" {
		return newSession(uuid.NewString(), store, config), nil
	}

	id, err := ParseToken(cookie, config)
	if err != nil {
		logging.Logger.WithField("client_ip", c.ClientIP()).
			WithError(err).Debug("Discarding unusable session cookie")
		return newSession(uuid.NewString(), store, config), nil
	}

	data, err := store.Load(ctx, id)
	switch {
	case err == nil:
		return New(id, data, store, config.TTL), nil
	case errors.Is(err, storage.ErrSessionNotFound):
		// Valid cookie whose session was never saved or has expired
		return newSession(id, store, config), nil
	case errors.Is(err, storage.ErrCorruptSession):
		logging.ForSession(id).WithError(err).Warn("Replacing corrupt session")
		return newSession(uuid.NewString(), store, config), nil
	default:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
}

func newSession(id string, store storage.Store, config *Config) *Session {
	s := New(id, models.NewSessionData(), store, config.TTL)
	s.IsNew = true
	return s
}
