package storage

import (
	"mime"
	"net/url"
	"path"
	"strings"
	"time"
)

// detectMimeFromBase64 sniffs the content type from the leading characters of
// a base64 payload. Only PDF, PNG and JPEG signatures are recognized;
// everything else falls back to a generic binary type.
func detectMimeFromBase64(b64 string) string {
	header := b64
	if len(header) > 50 {
		header = header[:50]
	}
	switch {
	case strings.HasPrefix(header, "JVBER"):
		return "application/pdf"
	case strings.HasPrefix(header, "iVBOR"):
		return "image/png"
	case strings.HasPrefix(header, "/9j/"):
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// detectMimeFromURL infers the content type from the URL's file extension,
// ignoring the query string.
func detectMimeFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "application/octet-stream"
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		return "application/octet-stream"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		// TypeByExtension may return parameters (e.g. "; charset=utf-8").
		if idx := strings.Index(mt, ";"); idx != -1 {
			mt = mt[:idx]
		}
		return mt
	}
	return "application/octet-stream"
}

// generateFileName produces "file_<compact-timestamp><ext>" when no filename
// was supplied. The extension comes from the original name, else from the
// mimetype, else ".bin".
func generateFileName(originalName, mimetype string) string {
	timestamp := time.Now().UTC().Format("20060102150405")

	ext := ""
	if strings.Contains(originalName, ".") {
		ext = path.Ext(originalName)
	} else if mimetype != "" {
		if exts, err := mime.ExtensionsByType(mimetype); err == nil && len(exts) > 0 {
			ext = preferredExtension(mimetype, exts)
		}
	}
	if ext == "" {
		ext = ".bin"
	}

	return "file_" + timestamp + ext
}

// preferredExtension picks the conventional extension when the mime package
// offers several (e.g. image/jpeg maps to .jfif, .jpe, .jpeg, .jpg).
func preferredExtension(mimetype string, exts []string) string {
	conventional := map[string]string{
		"image/jpeg":      ".jpg",
		"application/pdf": ".pdf",
		"image/png":       ".png",
		"text/plain":      ".txt",
	}
	if ext, ok := conventional[mimetype]; ok {
		return ext
	}
	return exts[0]
}
