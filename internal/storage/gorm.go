package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todolist-web/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStorage implements session storage on top of GORM (PostgreSQL or SQLite)
type GormStorage struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStorage creates a new GORM-backed storage instance
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{
		db: db,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Load retrieves a session by ID, removing it if it has expired
func (s *GormStorage) Load(ctx context.Context, id string) (*models.SessionData, error) {
	var record models.SessionRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if !record.ExpiresAt.After(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}

	return decodeSession(record.Data)
}

// Save upserts a session row
func (s *GormStorage) Save(ctx context.Context, id string, data *models.SessionData, ttl time.Duration) error {
	payload, err := encodeSession(data)
	if err != nil {
		return err
	}

	record := models.SessionRecord{
		ID:        id,
		Data:      payload,
		ExpiresAt: s.now().Add(ttl),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session row
func (s *GormStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.SessionRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Touch extends a live session's expiry
func (s *GormStorage) Touch(ctx context.Context, id string, ttl time.Duration) error {
	now := s.now()
	err := s.db.WithContext(ctx).Model(&models.SessionRecord{}).
		Where("id = ? AND expires_at > ?", id, now).
		Update("expires_at", now.Add(ttl)).Error
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// DeleteExpired removes every expired session row
func (s *GormStorage) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.SessionRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Count returns the number of live sessions
func (s *GormStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SessionRecord{}).
		Where("expires_at > ?", s.now()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Ping checks that the underlying database is reachable
func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
