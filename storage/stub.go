package storage

import (
	"context"
	"fmt"

	"github.com/basit/bucketstore-backend/models"
)

// StubBackend stands in for storage types that are recognized but not yet
// implemented (OneDrive, Google Drive). Every operation fails the same way.
type StubBackend struct {
	storageType string
}

// NewStubBackend returns a backend whose operations all report that
// storageType is not implemented.
func NewStubBackend(storageType string) *StubBackend {
	return &StubBackend{storageType: storageType}
}

func (b *StubBackend) err() error {
	return fmt.Errorf("%w: %s not yet implemented", ErrUnsupportedStorage, b.storageType)
}

func (b *StubBackend) Upload(ctx context.Context, p UploadParams, src *Ingest) (*models.File, error) {
	return nil, b.err()
}

func (b *StubBackend) Download(ctx context.Context, record *models.File, p DownloadParams) (*DownloadResult, error) {
	return nil, b.err()
}

func (b *StubBackend) Delete(ctx context.Context, record *models.File) error {
	return b.err()
}

func (b *StubBackend) ListFiles(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	return nil, b.err()
}

func (b *StubBackend) ListDirs(ctx context.Context, bucket, prefix string) ([]string, error) {
	return nil, b.err()
}

func (b *StubBackend) CreateBucket(ctx context.Context, name string) (string, error) {
	return "", b.err()
}

var _ Backend = (*StubBackend)(nil)
