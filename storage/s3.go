package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/basit/bucketstore-backend/config"
	"github.com/basit/bucketstore-backend/models"
)

// Presign expiry bounds (seconds). S3 rejects anything above seven days, so
// larger requests are capped, not rejected.
const (
	DefaultPresignExpiry = 3600
	MaxPresignExpiry     = 604800
)

// Multipart upload tuning: bounded part size and worker count cap memory use
// on large uploads.
const (
	multipartPartSize    = 5 * 1024 * 1024
	multipartConcurrency = 4
)

// S3Backend moves bytes against S3 or an S3-compatible endpoint and issues
// presigned download URLs instead of proxying bytes.
type S3Backend struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	cfg      config.S3Config
	log      zerolog.Logger
}

// NewS3Backend validates the config and builds the client, uploader and
// presigner once. Missing credentials fail here, before any network call.
func NewS3Backend(ctx context.Context, cfg config.S3Config, log zerolog.Logger) (*S3Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %v", ErrConfig, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Backend{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = multipartPartSize
			u.Concurrency = multipartConcurrency
		}),
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
		log:     log.With().Str("component", "storage.s3").Logger(),
	}, nil
}

func buildKey(folder, filename string) string {
	if folder == "" {
		return filename
	}
	return strings.Trim(folder, "/") + "/" + filename
}

// Upload streams src to the bucket via bounded multipart transfer. S3 writes
// overwrite unconditionally; there is no destination-existence check.
func (b *S3Backend) Upload(ctx context.Context, p UploadParams, src *Ingest) (*models.File, error) {
	bucket := firstNonEmpty(p.Bucket, b.cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket name is required for S3 uploads", ErrUnresolvedBucket)
	}

	folder := firstNonEmpty(b.cfg.Folder, p.UploadPath)
	key := buildKey(folder, src.Filename)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        src.Body,
		ContentType: aws.String(src.Mimetype),
	}
	if b.cfg.ACL != "" {
		input.ACL = types.ObjectCannedACL(b.cfg.ACL)
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	record := &models.File{
		FileName:     src.Filename,
		RelativePath: fmt.Sprintf("s3://%s/%s", bucket, key),
		StorageType:  models.StorageS3,
		Bucket:       bucket,
		Size:         src.Size,
		Mimetype:     src.Mimetype,
		Exp:          p.Exp,
		Mode:         p.Mode,
		UploadedAt:   time.Now().UTC(),
		UserID:       p.UserID,
	}
	return record, nil
}

// Download issues a presigned GET URL for the record's object instead of
// proxying bytes.
func (b *S3Backend) Download(ctx context.Context, record *models.File, p DownloadParams) (*DownloadResult, error) {
	bucket, key, err := ResolveObjectLocation(record, p.Bucket, b.cfg.Bucket)
	if err != nil {
		return nil, err
	}

	expiresIn := resolvePresignExpiry(p.Exp, record.Exp)

	input := &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", record.FileName)),
	}
	if record.Mimetype != "" {
		input.ResponseContentType = aws.String(record.Mimetype)
	}

	req, err := b.presign.PresignGetObject(ctx, input,
		s3.WithPresignExpires(time.Duration(expiresIn)*time.Second))
	if err != nil {
		return nil, fmt.Errorf("presign get object: %w", err)
	}

	return &DownloadResult{
		Record: record,
		SignedURL: &SignedURL{
			FileName:    record.FileName,
			Mimetype:    record.Mimetype,
			Size:        record.Size,
			ExpiresIn:   expiresIn,
			DownloadURL: req.URL,
		},
	}, nil
}

// resolvePresignExpiry picks the requested expiry, else the record default,
// else an hour, and clamps the result to the S3 presign ceiling.
func resolvePresignExpiry(requested, recordDefault int64) int64 {
	expiresIn := int64(DefaultPresignExpiry)
	if requested > 0 {
		expiresIn = requested
	} else if recordDefault > 0 {
		expiresIn = recordDefault
	}
	if expiresIn > MaxPresignExpiry {
		expiresIn = MaxPresignExpiry
	}
	return expiresIn
}

// Delete removes the object behind a record.
func (b *S3Backend) Delete(ctx context.Context, record *models.File) error {
	bucket, key, err := ResolveObjectLocation(record, "", b.cfg.Bucket)
	if err != nil {
		return err
	}
	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

// ListFiles pages through ListObjectsV2 with continuation tokens, skipping
// zero-size folder markers.
func (b *S3Backend) ListFiles(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	prefixForAPI := normalizePrefix(prefix)

	var files []ObjectInfo
	var continuationToken *string
	for {
		out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefixForAPI),
			ContinuationToken: continuationToken,
			MaxKeys:           aws.Int32(1000),
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list objects: %w", err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			size := aws.ToInt64(obj.Size)
			if strings.HasSuffix(key, "/") && size == 0 {
				continue
			}
			name := key[strings.LastIndex(key, "/")+1:]
			mt := mime.TypeByExtension(path.Ext(name))
			if mt == "" {
				mt = "application/octet-stream"
			}
			files = append(files, ObjectInfo{
				Key:      key,
				Name:     name,
				Size:     size,
				Modified: obj.LastModified,
				Mimetype: mt,
			})
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuationToken = out.NextContinuationToken
	}
	return files, nil
}

// ListDirs lists the "folders" directly under prefix using a "/" delimiter.
func (b *S3Backend) ListDirs(ctx context.Context, bucket, prefix string) ([]string, error) {
	prefixForAPI := normalizePrefix(prefix)

	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefixForAPI),
		Delimiter: aws.String("/"),
		MaxKeys:   aws.Int32(1000),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 list directories: %w", err)
	}

	var dirs []string
	for _, cp := range out.CommonPrefixes {
		full := aws.ToString(cp.Prefix)
		name := strings.TrimSuffix(strings.TrimPrefix(full, prefixForAPI), "/")
		if name != "" {
			dirs = append(dirs, name)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// CreateBucket heads the bucket first and only creates it when missing.
// Outside us-east-1 (and off custom endpoints) S3 requires an explicit
// location constraint.
func (b *S3Backend) CreateBucket(ctx context.Context, name string) (string, error) {
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)}); err == nil {
		return "exists", nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if b.cfg.Region != "us-east-1" && b.cfg.Endpoint == "" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.cfg.Region),
		}
	}

	if _, err := b.client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return "exists", nil
		}
		return "", fmt.Errorf("s3 create bucket: %w", err)
	}
	return "success", nil
}

func normalizePrefix(prefix string) string {
	normalized := strings.Trim(prefix, "/")
	if normalized == "" {
		return ""
	}
	return normalized + "/"
}

var _ Backend = (*S3Backend)(nil)
