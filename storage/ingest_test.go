package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenContent(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 hello"))
	src, err := openIngest(context.Background(), UploadParams{
		Mode:    "content",
		Content: payload,
	}, http.DefaultClient)
	if err != nil {
		t.Fatalf("openIngest: %v", err)
	}
	defer src.Close()

	if src.Mimetype != "application/pdf" {
		t.Errorf("mimetype = %q, want application/pdf", src.Mimetype)
	}
	data, _ := io.ReadAll(src.Body)
	if string(data) != "%PDF-1.4 hello" {
		t.Errorf("body = %q", data)
	}
	if src.Size == nil || *src.Size != int64(len(data)) {
		t.Errorf("size = %v, want %d", src.Size, len(data))
	}
}

func TestOpenContentBadBase64(t *testing.T) {
	_, err := openIngest(context.Background(), UploadParams{
		Mode:    "content",
		Content: "!!! not base64 !!!",
	}, http.DefaultClient)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestOpenAttachment(t *testing.T) {
	dir := t.TempDir()
	tempFile := filepath.Join(dir, "upload_tmp")
	if err := os.WriteFile(tempFile, []byte("attachment bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := openIngest(context.Background(), UploadParams{
		Mode: "attachment",
		Attachment: &AttachmentPayload{
			Path:         tempFile,
			OriginalName: "notes.txt",
			Mimetype:     "text/plain",
		},
	}, http.DefaultClient)
	if err != nil {
		t.Fatalf("openIngest: %v", err)
	}

	if src.Mimetype != "text/plain" {
		t.Errorf("mimetype = %q, want text/plain", src.Mimetype)
	}
	if src.Filename == "" {
		t.Error("filename not generated")
	}
	data, _ := io.ReadAll(src.Body)
	if string(data) != "attachment bytes" {
		t.Errorf("body = %q", data)
	}

	// Close removes the temp file.
	if _, err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(tempFile); !os.IsNotExist(err) {
		t.Error("temp file not removed on Close")
	}
}

func TestOpenAttachmentMissingFile(t *testing.T) {
	_, err := openIngest(context.Background(), UploadParams{Mode: "attachment"}, http.DefaultClient)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestOpenURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "Mozilla/5.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-file-bytes"))
	}))
	defer srv.Close()

	src, err := openIngest(context.Background(), UploadParams{
		Mode: "url",
		URL:  srv.URL + "/report.pdf",
	}, srv.Client())
	if err != nil {
		t.Fatalf("openIngest: %v", err)
	}
	defer src.Close()

	if src.Mimetype != "application/pdf" {
		t.Errorf("mimetype = %q, want application/pdf", src.Mimetype)
	}
	data, _ := io.ReadAll(src.Body)
	if string(data) != "%PDF-file-bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestOpenURLRejectsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>login page</html>"))
	}))
	defer srv.Close()

	_, err := openIngest(context.Background(), UploadParams{Mode: "url", URL: srv.URL}, srv.Client())
	if !errors.Is(err, ErrHTMLNotAllowed) {
		t.Errorf("err = %v, want ErrHTMLNotAllowed", err)
	}
}

func TestOpenURLNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := openIngest(context.Background(), UploadParams{Mode: "url", URL: srv.URL}, srv.Client())
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("err = %v, want ErrFetchFailed", err)
	}
}

func TestOpenURLNetworkError(t *testing.T) {
	_, err := openIngest(context.Background(), UploadParams{
		Mode: "url",
		URL:  "http://127.0.0.1:1/unreachable",
	}, http.DefaultClient)
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("err = %v, want ErrFetchFailed", err)
	}
}

func TestOpenIngestInvalidMode(t *testing.T) {
	_, err := openIngest(context.Background(), UploadParams{Mode: "carrier-pigeon"}, http.DefaultClient)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
