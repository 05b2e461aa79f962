package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"todolist-web/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCorruptSession  = errors.New("session payload is corrupt")
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Storage provides in-memory session storage. Sessions are kept encoded so that
// every Load hands out an independent copy.
type Storage struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewStorage creates a new in-memory storage instance
func NewStorage() *Storage {
	return &Storage{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// Load retrieves a session by ID
func (s *Storage) Load(_ context.Context, id string) (*models.SessionData, error) {
	s.mu.RLock()
	entry, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.After(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	return decodeSession(entry.payload)
}

// Save stores a session, replacing any previous version
func (s *Storage) Save(_ context.Context, id string, data *models.SessionData, ttl time.Duration) error {
	payload, err := encodeSession(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = memoryEntry{
		payload:   payload,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Touch extends a live session's expiry
func (s *Storage) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, exists := s.sessions[id]
	if !exists || !entry.expiresAt.After(now) {
		return nil
	}
	entry.expiresAt = now.Add(ttl)
	s.sessions[id] = entry
	return nil
}

// Delete removes a session; deleting a missing session is not an error
func (s *Storage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// DeleteExpired removes every expired session and reports how many were removed
func (s *Storage) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed int64
	for id, entry := range s.sessions {
		if !entry.expiresAt.After(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of live sessions
func (s *Storage) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var count int64
	for _, entry := range s.sessions {
		if entry.expiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

// Ping always succeeds for the in-memory store
func (s *Storage) Ping(_ context.Context) error {
	return nil
}
