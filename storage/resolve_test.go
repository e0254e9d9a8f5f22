package storage

import (
	"errors"
	"testing"

	"github.com/basit/bucketstore-backend/models"
)

func TestResolveObjectLocation(t *testing.T) {
	tests := []struct {
		name          string
		record        models.File
		callerBucket  string
		defaultBucket string
		wantBucket    string
		wantKey       string
		wantErr       error
	}{
		{
			name:       "s3 scheme path",
			record:     models.File{RelativePath: "s3://my-bucket/a/b/c.png"},
			wantBucket: "my-bucket",
			wantKey:    "a/b/c.png",
		},
		{
			name:       "s3 scheme bucket only defaults key to file name",
			record:     models.File{RelativePath: "s3://my-bucket", FileName: "doc.pdf"},
			wantBucket: "my-bucket",
			wantKey:    "doc.pdf",
		},
		{
			name:       "plain path falls back to record bucket",
			record:     models.File{RelativePath: "a/b/c.png", Bucket: "fallback"},
			wantBucket: "fallback",
			wantKey:    "a/b/c.png",
		},
		{
			name:         "plain path falls back to caller bucket",
			record:       models.File{RelativePath: "/x/y.bin"},
			callerBucket: "caller",
			wantBucket:   "caller",
			wantKey:      "x/y.bin",
		},
		{
			name:          "plain path falls back to config bucket",
			record:        models.File{RelativePath: "x.bin"},
			defaultBucket: "configured",
			wantBucket:    "configured",
			wantKey:       "x.bin",
		},
		{
			name:       "surrounding slashes stripped",
			record:     models.File{RelativePath: "/a/b/", Bucket: "b"},
			wantBucket: "b",
			wantKey:    "a/b",
		},
		{
			name:       "empty path defaults key to file name",
			record:     models.File{RelativePath: "", Bucket: "b", FileName: "f.txt"},
			wantBucket: "b",
			wantKey:    "f.txt",
		},
		{
			name:    "no bucket anywhere",
			record:  models.File{RelativePath: "a/b.png"},
			wantErr: ErrUnresolvedBucket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := ResolveObjectLocation(&tt.record, tt.callerBucket, tt.defaultBucket)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bucket != tt.wantBucket || key != tt.wantKey {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, key, tt.wantBucket, tt.wantKey)
			}
		})
	}
}

func TestResolveLocalPathRejectsEscape(t *testing.T) {
	record := &models.File{RelativePath: "../../etc/passwd"}
	if _, err := resolveLocalPath("/srv/buckets", record); err == nil {
		t.Fatal("path escaping the base dir resolved without error")
	}

	record = &models.File{RelativePath: "bucket/sub/file.txt"}
	full, err := resolveLocalPath("/srv/buckets", record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full != "/srv/buckets/bucket/sub/file.txt" {
		t.Errorf("full = %q", full)
	}
}
