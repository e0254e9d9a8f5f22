package storage

import (
	"strings"
	"testing"
)

func TestDetectMimeFromBase64(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{"JVBERi0xLjQK", "application/pdf"},
		{"iVBORw0KGgo=", "image/png"},
		{"/9j/4AAQSkZJRg==", "image/jpeg"},
		{"UEsDBBQACAgI", "application/octet-stream"}, // zip, not recognized
		{"", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := detectMimeFromBase64(tt.payload); got != tt.want {
			t.Errorf("detectMimeFromBase64(%q) = %q, want %q", tt.payload, got, tt.want)
		}
	}
}

func TestDetectMimeFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/report.pdf", "application/pdf"},
		{"https://example.com/pic.png?token=abc", "image/png"},
		{"https://example.com/download", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := detectMimeFromURL(tt.url); got != tt.want {
			t.Errorf("detectMimeFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestGenerateFileName(t *testing.T) {
	tests := []struct {
		name         string
		originalName string
		mimetype     string
		wantSuffix   string
	}{
		{"extension from original name", "photo.jpeg", "", ".jpeg"},
		{"extension from mimetype", "", "application/pdf", ".pdf"},
		{"jpeg maps to jpg", "", "image/jpeg", ".jpg"},
		{"fallback bin", "", "", ".bin"},
		{"original name without extension", "README", "image/png", ".png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateFileName(tt.originalName, tt.mimetype)
			if !strings.HasPrefix(got, "file_") {
				t.Errorf("generated name %q does not start with file_", got)
			}
			if !strings.HasSuffix(got, tt.wantSuffix) {
				t.Errorf("generated name %q does not end with %q", got, tt.wantSuffix)
			}
			// file_ + 14-digit timestamp + ext
			if len(got) != len("file_")+14+len(tt.wantSuffix) {
				t.Errorf("generated name %q has unexpected length", got)
			}
		})
	}
}
