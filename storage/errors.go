package storage

import "errors"

// Failure taxonomy for storage operations. Handlers classify with errors.Is
// and never expose anything but these plus a human-readable message.
var (
	// ErrConfig means backend credentials or settings are missing/invalid.
	ErrConfig = errors.New("invalid storage configuration")

	// ErrValidation means a required field is missing or has a bad value.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means no matching file record exists.
	ErrNotFound = errors.New("file not found")

	// ErrBlocked means the record is flagged and refuses all downloads.
	ErrBlocked = errors.New("file is blocked and cannot be downloaded")

	// ErrUnresolvedBucket means no object bucket could be determined.
	ErrUnresolvedBucket = errors.New("cannot determine bucket for this file record")

	// ErrBucketNotFound means the local bucket directory does not exist.
	ErrBucketNotFound = errors.New("bucket does not exist")

	// ErrFileExists means the destination exists and overwrite was not set.
	ErrFileExists = errors.New("file already exists")

	// ErrFetchFailed means a url-mode fetch failed (network or status).
	ErrFetchFailed = errors.New("failed to fetch URL")

	// ErrHTMLNotAllowed means a url-mode fetch returned an HTML page.
	ErrHTMLNotAllowed = errors.New("URL returned HTML page, not a file")

	// ErrUnsupportedStorage means the storage type has no working backend.
	ErrUnsupportedStorage = errors.New("unsupported storage type")
)
