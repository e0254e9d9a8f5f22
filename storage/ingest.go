package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/basit/bucketstore-backend/models"
)

// Ingest is a resolved upload payload: an open byte stream plus everything
// that could be learned about it up front. Close must be called on success
// and failure paths alike; it also removes the attachment temp file.
type Ingest struct {
	Body     io.ReadCloser
	Size     *int64 // nil when unknown (e.g. chunked url fetch)
	Mimetype string
	Filename string

	tempPath string
}

// Close closes the stream and removes the attachment temp file when there is
// one. The temp path is returned so the caller can log a failed removal;
// removal failure is non-fatal.
func (in *Ingest) Close() (tempPath string, err error) {
	if in.Body != nil {
		_ = in.Body.Close()
	}
	if in.tempPath == "" {
		return "", nil
	}
	if err := os.Remove(in.tempPath); err != nil && !os.IsNotExist(err) {
		return in.tempPath, err
	}
	return in.tempPath, nil
}

// openIngest opens the payload described by p as a byte stream and resolves
// the final mimetype and filename. Only content mode materializes the full
// payload in memory; attachment and url modes stream.
func openIngest(ctx context.Context, p UploadParams, httpc *http.Client) (*Ingest, error) {
	switch p.Mode {
	case models.ModeAttachment:
		return openAttachment(p)
	case models.ModeContent:
		return openContent(p)
	case models.ModeURL:
		return openURL(ctx, p, httpc)
	default:
		return nil, fmt.Errorf("%w: invalid mode %q", ErrValidation, p.Mode)
	}
}

func openAttachment(p UploadParams) (*Ingest, error) {
	if p.Attachment == nil || p.Attachment.Path == "" {
		return nil, fmt.Errorf("%w: file object required for attachment mode", ErrValidation)
	}

	f, err := os.Open(p.Attachment.Path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat attachment: %w", err)
	}
	size := info.Size()

	mimetype := p.Mimetype
	if mimetype == "" {
		mimetype = p.Attachment.Mimetype
	}
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}

	filename := p.Filename
	if filename == "" {
		filename = generateFileName(p.Attachment.OriginalName, mimetype)
	}

	return &Ingest{
		Body:     f,
		Size:     &size,
		Mimetype: mimetype,
		Filename: filename,
		tempPath: p.Attachment.Path,
	}, nil
}

func openContent(p UploadParams) (*Ingest, error) {
	if p.Content == "" {
		return nil, fmt.Errorf("%w: base64 string required for content mode", ErrValidation)
	}

	buf, err := base64.StdEncoding.DecodeString(p.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not valid base64", ErrValidation)
	}
	size := int64(len(buf))

	mimetype := p.Mimetype
	if mimetype == "" {
		mimetype = detectMimeFromBase64(p.Content)
	}

	filename := p.Filename
	if filename == "" {
		filename = generateFileName("", mimetype)
	}

	return &Ingest{
		Body:     io.NopCloser(bytes.NewReader(buf)),
		Size:     &size,
		Mimetype: mimetype,
		Filename: filename,
	}, nil
}

func openURL(ctx context.Context, p UploadParams, httpc *http.Client) (*Ingest, error) {
	if p.URL == "" {
		return nil, fmt.Errorf("%w: URL string required for url mode", ErrValidation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	// Some file hosts refuse requests without a browser-like user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "*/*")

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: use a direct file link", ErrHTMLNotAllowed)
	}

	var size *int64
	if resp.ContentLength >= 0 {
		n := resp.ContentLength
		size = &n
	}

	mimetype := p.Mimetype
	if mimetype == "" || mimetype == "application/octet-stream" {
		mimetype = detectMimeFromURL(p.URL)
	}
	if (mimetype == "" || mimetype == "application/octet-stream") && contentType != "" {
		mimetype = contentType
	}
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}

	filename := p.Filename
	if filename == "" {
		filename = generateFileName("", mimetype)
	}

	return &Ingest{
		Body:     resp.Body,
		Size:     size,
		Mimetype: mimetype,
		Filename: filename,
	}, nil
}
