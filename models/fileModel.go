package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Storage type tags. OneDrive and Google Drive are accepted by validation but
// have no working backend yet.
const (
	StorageLocal       = "local"
	StorageS3          = "s3"
	StorageOneDrive    = "one_drive"
	StorageGoogleDrive = "google_drive"
)

// Ingest modes for uploads.
const (
	ModeAttachment = "attachment"
	ModeContent    = "content"
	ModeURL        = "url"
)

// File is the canonical metadata record for a stored file.
//
// RelativePath is the single source of truth for physical location: either
// "s3://<bucket>/<key>" or a path relative to the local base directory.
// Bucket and StorageType are advisory fallbacks used only when the path does
// not embed a scheme.
type File struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileName     string    `json:"file_name"`
	RelativePath string    `json:"relative_path"`
	StorageType  string    `json:"storage_type"`
	Bucket       string    `gorm:"index" json:"bucket"`
	Size         *int64    `json:"size"`
	Mimetype     string    `json:"mimetype"`
	// Exp is the record-level default presign expiry in seconds, used when a
	// download request does not override it.
	Exp int64 `json:"exp"`
	// Blocked is string-encoded ("true"/"false") to match the persisted form.
	Blocked    string     `gorm:"default:'false'" json:"blocked"`
	Mode       string     `json:"mode"`
	UploadedAt time.Time  `json:"uploaded_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// IsBlocked reports whether the record refuses all downloads.
func (f *File) IsBlocked() bool {
	return f.Blocked == "true"
}
