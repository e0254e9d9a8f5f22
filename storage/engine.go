package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/basit/bucketstore-backend/models"
)

// FileStore is the slice of the metadata store the engine depends on.
type FileStore interface {
	// GetFileByID returns the record scoped to (id, bucket), or nil when no
	// such record exists. Blocked records are returned; the engine owns the
	// blocked gate so that refusal is distinguishable from absence.
	GetFileByID(ctx context.Context, id, bucket string) (*models.File, error)

	// Insert persists a new record and assigns its id.
	Insert(ctx context.Context, record *models.File) error
}

// Engine dispatches logical upload/download operations to the backend for
// the record's storage type and owns the cross-backend invariants: payload
// ingestion, the blocked gate, metadata persistence.
type Engine struct {
	store    FileStore
	backends map[string]Backend
	httpc    *http.Client
	log      zerolog.Logger
}

// NewEngine wires the engine with one backend per storage type. Storage
// types without an entry get a stub that reports them unimplemented.
func NewEngine(store FileStore, backends map[string]Backend, log zerolog.Logger) *Engine {
	all := map[string]Backend{
		models.StorageOneDrive:    NewStubBackend(models.StorageOneDrive),
		models.StorageGoogleDrive: NewStubBackend(models.StorageGoogleDrive),
	}
	for t, b := range backends {
		all[t] = b
	}
	return &Engine{
		store:    store,
		backends: all,
		httpc: &http.Client{
			// Redirects are followed by default; this only bounds the whole
			// url-mode fetch.
			Timeout: 10 * time.Minute,
		},
		log: log.With().Str("component", "storage.engine").Logger(),
	}
}

func (e *Engine) backend(storageType string) (Backend, error) {
	b, ok := e.backends[storageType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStorage, storageType)
	}
	return b, nil
}

func (e *Engine) validateUpload(p UploadParams) error {
	if p.Bucket == "" && p.StorageType != models.StorageS3 {
		return fmt.Errorf("%w: bucket is required", ErrValidation)
	}
	switch p.Mode {
	case models.ModeAttachment, models.ModeContent, models.ModeURL:
	default:
		return fmt.Errorf("%w: invalid mode %q, use attachment, content or url", ErrValidation, p.Mode)
	}
	switch p.StorageType {
	case models.StorageLocal, models.StorageS3, models.StorageOneDrive, models.StorageGoogleDrive:
	default:
		return fmt.Errorf("%w: unsupported storage type %q", ErrValidation, p.StorageType)
	}
	if p.Exp <= 0 {
		return fmt.Errorf("%w: exp must be a positive number of seconds", ErrValidation)
	}
	return nil
}

// Upload ingests the payload, hands the stream to the backend and persists
// the resulting record. The attachment temp file is cleaned up on success
// and failure paths alike; a failed removal is logged, never fatal.
func (e *Engine) Upload(ctx context.Context, p UploadParams) (*models.File, error) {
	if err := e.validateUpload(p); err != nil {
		return nil, err
	}

	backend, err := e.backend(p.StorageType)
	if err != nil {
		return nil, err
	}

	src, err := openIngest(ctx, p, e.httpc)
	if err != nil {
		return nil, err
	}
	defer func() {
		if tempPath, err := src.Close(); err != nil {
			e.log.Warn().Err(err).Str("path", tempPath).Msg("failed to remove temp file")
		}
	}()

	record, err := backend.Upload(ctx, p, src)
	if err != nil {
		return nil, err
	}

	if p.Retention > 0 {
		expiresAt := time.Now().UTC().Add(time.Duration(p.Retention) * time.Second)
		record.ExpiresAt = &expiresAt
	}

	// Not transactional with the byte transfer: a crash here leaves an
	// orphan object with no record, reconciled out-of-band.
	if err := e.store.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("insert file record: %w", err)
	}

	e.log.Info().
		Str("file_id", record.ID.String()).
		Str("bucket", record.Bucket).
		Str("storage_type", record.StorageType).
		Str("mode", p.Mode).
		Msg("file uploaded")
	return record, nil
}

// Download resolves the record, enforces the blocked gate and dispatches to
// the backend: local storage streams bytes, object storage returns a signed
// URL.
func (e *Engine) Download(ctx context.Context, p DownloadParams) (*DownloadResult, error) {
	if p.FileID == "" {
		return nil, fmt.Errorf("%w: fileId is required", ErrValidation)
	}

	record, err := e.store.GetFileByID(ctx, p.FileID, p.Bucket)
	if err != nil {
		return nil, fmt.Errorf("load file record: %w", err)
	}
	if record == nil {
		return nil, ErrNotFound
	}

	// Unconditional: blocked wins over everything, including a valid token.
	if record.IsBlocked() {
		return nil, ErrBlocked
	}

	storageType := record.StorageType
	if storageType == "" {
		storageType = p.StorageType
	}
	backend, err := e.backend(storageType)
	if err != nil {
		return nil, err
	}

	return backend.Download(ctx, record, p)
}

// ListFiles lists objects in a bucket on the given storage type.
func (e *Engine) ListFiles(ctx context.Context, storageType, bucket, prefix string) ([]ObjectInfo, error) {
	backend, err := e.backend(storageType)
	if err != nil {
		return nil, err
	}
	return backend.ListFiles(ctx, bucket, prefix)
}

// ListDirs lists directories in a bucket on the given storage type.
func (e *Engine) ListDirs(ctx context.Context, storageType, bucket, prefix string) ([]string, error) {
	backend, err := e.backend(storageType)
	if err != nil {
		return nil, err
	}
	return backend.ListDirs(ctx, bucket, prefix)
}

// CreateBucket creates a bucket on the given storage type.
func (e *Engine) CreateBucket(ctx context.Context, storageType, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: bucket name is required", ErrValidation)
	}
	backend, err := e.backend(storageType)
	if err != nil {
		return "", err
	}
	return backend.CreateBucket(ctx, name)
}

// DeleteObject removes the physical object behind a record.
func (e *Engine) DeleteObject(ctx context.Context, record *models.File) error {
	backend, err := e.backend(record.StorageType)
	if err != nil {
		return err
	}
	return backend.Delete(ctx, record)
}
