// Package storage implements the multi-backend transfer engine: upload and
// download of files against the local filesystem or S3-compatible object
// storage, location resolution across the two addressing schemes, and
// presigned download URLs for object storage.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/basit/bucketstore-backend/models"
)

// AttachmentPayload references an already-received temporary file.
type AttachmentPayload struct {
	Path         string
	OriginalName string
	Mimetype     string
}

// UploadParams describes one logical upload. Exactly one of Attachment,
// Content or URL is consulted, selected by Mode.
type UploadParams struct {
	Bucket      string
	StorageType string
	UploadPath  string
	Filename    string
	Mimetype    string
	Mode        string
	// Exp is the default presign expiry (seconds) stored on the record.
	Exp int64
	// Retention, when positive, sets an absolute expiry after which the
	// cleanup job removes the file.
	Retention int64
	Overwrite bool

	Attachment *AttachmentPayload
	Content    string // base64-encoded bytes
	URL        string

	UserID *uuid.UUID
}

// DownloadParams describes one logical download.
type DownloadParams struct {
	FileID      string
	Bucket      string
	StorageType string
	// ForceDownload requests an attachment content-disposition when the
	// bytes are streamed directly.
	ForceDownload bool
	// Exp overrides the presign expiry (seconds) when positive.
	Exp int64
}

// SignedURL is the result of presigned-URL issuance. No bytes move; the URL
// itself proves authorization.
type SignedURL struct {
	FileName    string `json:"file_name"`
	Mimetype    string `json:"mimetype"`
	Size        *int64 `json:"size"`
	ExpiresIn   int64  `json:"expires_in"`
	DownloadURL string `json:"download_url"`
}

// DownloadResult carries either a byte stream (local) or a signed URL (S3).
// When Body is set the caller owns closing it.
type DownloadResult struct {
	Record    *models.File
	Body      io.ReadCloser
	SignedURL *SignedURL
}

// ObjectInfo describes one stored object in a listing.
type ObjectInfo struct {
	Key      string     `json:"key,omitempty"`
	Name     string     `json:"name"`
	Size     int64      `json:"size"`
	Modified *time.Time `json:"modified"`
	Mimetype string     `json:"mimetype"`
}

// Backend is the capability a storage type must provide. One implementation
// exists per storage type and is selected once at startup.
type Backend interface {
	// Upload streams src to the destination described by p and returns the
	// metadata record to persist (without an id).
	Upload(ctx context.Context, p UploadParams, src *Ingest) (*models.File, error)

	// Download returns the bytes or a signed URL for an existing record.
	Download(ctx context.Context, record *models.File, p DownloadParams) (*DownloadResult, error)

	// Delete removes the physical object behind a record. Missing objects
	// are not an error.
	Delete(ctx context.Context, record *models.File) error

	// ListFiles returns the objects under bucket/prefix.
	ListFiles(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// ListDirs returns the immediate sub-directories under bucket/prefix.
	ListDirs(ctx context.Context, bucket, prefix string) ([]string, error)

	// CreateBucket creates the bucket, reporting "success" or "exists".
	CreateBucket(ctx context.Context, name string) (string, error)
}
