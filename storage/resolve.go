package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/basit/bucketstore-backend/models"
)

const s3Scheme = "s3://"

// ResolveObjectLocation maps a file record to a concrete (bucket, key) for
// object storage. RelativePath wins when it embeds the s3:// scheme;
// otherwise the bucket falls back record.Bucket → callerBucket →
// defaultBucket and the key is the slash-trimmed path, defaulting to the
// file name when empty.
func ResolveObjectLocation(record *models.File, callerBucket, defaultBucket string) (string, string, error) {
	rel := record.RelativePath

	var bucket, key string
	if strings.HasPrefix(rel, s3Scheme) {
		without := rel[len(s3Scheme):]
		if idx := strings.Index(without, "/"); idx == -1 {
			bucket = without
			key = ""
		} else {
			bucket = without[:idx]
			key = without[idx+1:]
		}
	} else {
		bucket = firstNonEmpty(record.Bucket, callerBucket, defaultBucket)
		key = strings.Trim(rel, "/")
	}

	if bucket == "" {
		return "", "", ErrUnresolvedBucket
	}
	if key == "" {
		key = record.FileName
	}
	return bucket, key, nil
}

// resolveLocalPath maps a record's relative path to an absolute path under
// baseDir, refusing anything that escapes it.
func resolveLocalPath(baseDir string, record *models.File) (string, error) {
	rel := strings.TrimPrefix(record.RelativePath, "/")
	full := filepath.Join(baseDir, filepath.Clean(rel))
	if !strings.HasPrefix(full, filepath.Clean(baseDir)+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes storage root", ErrValidation)
	}
	return full, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
