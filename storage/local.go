package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/basit/bucketstore-backend/config"
	"github.com/basit/bucketstore-backend/models"
)

// LocalBackend stores files under <baseDir>/<bucket>/<uploadPath?>/<filename>.
type LocalBackend struct {
	baseDir string
	log     zerolog.Logger
}

// NewLocalBackend builds the local filesystem backend. The base directory is
// created if missing; bucket directories are not (creating one is an explicit
// operation).
func NewLocalBackend(cfg config.LocalConfig, log zerolog.Logger) (*LocalBackend, error) {
	abs, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve base dir: %v", ErrConfig, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create base dir: %v", ErrConfig, err)
	}
	return &LocalBackend{
		baseDir: abs,
		log:     log.With().Str("component", "storage.local").Logger(),
	}, nil
}

func (b *LocalBackend) bucketDir(bucket string) (string, error) {
	dir := filepath.Join(b.baseDir, bucket)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrBucketNotFound, bucket)
	}
	return dir, nil
}

// Upload writes src to the destination path, honoring the overwrite policy.
func (b *LocalBackend) Upload(ctx context.Context, p UploadParams, src *Ingest) (*models.File, error) {
	bucketDir, err := b.bucketDir(p.Bucket)
	if err != nil {
		return nil, err
	}

	finalDir := bucketDir
	if p.UploadPath != "" {
		finalDir = filepath.Join(bucketDir, filepath.Clean(p.UploadPath))
		if !strings.HasPrefix(finalDir, bucketDir+string(filepath.Separator)) {
			return nil, fmt.Errorf("%w: upload path escapes bucket", ErrValidation)
		}
		if err := os.MkdirAll(finalDir, 0o750); err != nil {
			return nil, fmt.Errorf("create upload path: %w", err)
		}
	}

	dest := filepath.Join(finalDir, src.Filename)
	if _, err := os.Stat(dest); err == nil && !p.Overwrite {
		return nil, fmt.Errorf("%w: %q in bucket %q", ErrFileExists, src.Filename, p.Bucket)
	}

	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(f, src.Body); err != nil {
		f.Close()
		os.Remove(dest)
		return nil, fmt.Errorf("write destination: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close destination: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("stat destination: %w", err)
	}
	size := info.Size()

	rel := path.Join(p.Bucket, filepath.ToSlash(filepath.Clean("/"+p.UploadPath)), src.Filename)
	record := &models.File{
		FileName:     src.Filename,
		RelativePath: rel,
		StorageType:  models.StorageLocal,
		Bucket:       p.Bucket,
		Size:         &size,
		Mimetype:     src.Mimetype,
		Exp:          p.Exp,
		Mode:         p.Mode,
		UploadedAt:   time.Now().UTC(),
		UserID:       p.UserID,
	}
	return record, nil
}

// Download streams the file bytes from disk.
func (b *LocalBackend) Download(ctx context.Context, record *models.File, p DownloadParams) (*DownloadResult, error) {
	full, err := resolveLocalPath(b.baseDir, record)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: object missing on disk", ErrNotFound)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return &DownloadResult{Record: record, Body: f}, nil
}

// Delete removes the physical file. A file that is already gone is fine.
func (b *LocalBackend) Delete(ctx context.Context, record *models.File) error {
	full, err := resolveLocalPath(b.baseDir, record)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// ListFiles returns the files under bucket/prefix, recursively.
func (b *LocalBackend) ListFiles(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	bucketDir, err := b.bucketDir(bucket)
	if err != nil {
		return nil, err
	}
	root := bucketDir
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		root = filepath.Join(bucketDir, filepath.Clean(prefix))
	}

	var files []ObjectInfo
	err = filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(bucketDir, p)
		if err != nil {
			return err
		}
		mt := mime.TypeByExtension(filepath.Ext(p))
		if mt == "" {
			mt = "application/octet-stream"
		}
		modified := info.ModTime()
		files = append(files, ObjectInfo{
			Key:      filepath.ToSlash(rel),
			Name:     info.Name(),
			Size:     info.Size(),
			Modified: &modified,
			Mimetype: mt,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

// ListDirs returns the immediate sub-directories under bucket/prefix.
func (b *LocalBackend) ListDirs(ctx context.Context, bucket, prefix string) ([]string, error) {
	bucketDir, err := b.bucketDir(bucket)
	if err != nil {
		return nil, err
	}
	root := bucketDir
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		root = filepath.Join(bucketDir, filepath.Clean(prefix))
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list directories: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// CreateBucket creates the bucket directory under the base dir.
func (b *LocalBackend) CreateBucket(ctx context.Context, name string) (string, error) {
	dir := filepath.Join(b.baseDir, name)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return "exists", nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}
	return "success", nil
}

var _ Backend = (*LocalBackend)(nil)
