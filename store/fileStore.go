// Package store is the metadata store gateway: every read/write of file
// records and download events goes through it.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/basit/bucketstore-backend/models"
)

// FileStore persists and retrieves file metadata through GORM.
type FileStore struct {
	db *gorm.DB
}

// NewFileStore wraps an open GORM handle.
func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db}
}

// GetFileByID returns the record scoped to (id, bucket), or nil when absent.
// Blocked records are returned so callers can distinguish "blocked" from
// "not found".
func (s *FileStore) GetFileByID(ctx context.Context, id, bucket string) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).
		Where("id = ? AND bucket = ?", id, bucket).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file by id: %w", err)
	}
	return &file, nil
}

// Insert persists a new record; the id is assigned on create and left on the
// record.
func (s *FileStore) Insert(ctx context.Context, record *models.File) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

// SetBlocked flips the only mutable field of a record.
func (s *FileStore) SetBlocked(ctx context.Context, id string, blocked bool) error {
	val := "false"
	if blocked {
		val = "true"
	}
	res := s.db.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		Update("blocked", val)
	if res.Error != nil {
		return fmt.Errorf("set blocked: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListExpired returns records whose absolute expiry has passed.
func (s *FileStore) ListExpired(ctx context.Context, now time.Time) ([]models.File, error) {
	var files []models.File
	if err := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list expired files: %w", err)
	}
	return files, nil
}

// Delete removes a record.
func (s *FileStore) Delete(ctx context.Context, record *models.File) error {
	if err := s.db.WithContext(ctx).Delete(record).Error; err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	return nil
}

// RecordDownload writes a download audit event. Best-effort at call sites.
func (s *FileStore) RecordDownload(ctx context.Context, event *models.DownloadEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("record download event: %w", err)
	}
	return nil
}
