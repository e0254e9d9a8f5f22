package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/basit/bucketstore-backend/auth/middleware"
	"github.com/basit/bucketstore-backend/config"
	"github.com/basit/bucketstore-backend/models"
	"github.com/basit/bucketstore-backend/storage"
	"github.com/basit/bucketstore-backend/token"
)

// FileMetadata is the slice of the metadata store the handlers touch
// directly (everything else goes through the engine).
type FileMetadata interface {
	GetFileByID(ctx context.Context, id, bucket string) (*models.File, error)
	RecordDownload(ctx context.Context, event *models.DownloadEvent) error
}

// FileHandler exposes the storage engine over HTTP.
type FileHandler struct {
	engine *storage.Engine
	files  FileMetadata
	cfg    *config.Config
	log    zerolog.Logger
}

func NewFileHandler(engine *storage.Engine, files FileMetadata, cfg *config.Config, log zerolog.Logger) *FileHandler {
	return &FileHandler{
		engine: engine,
		files:  files,
		cfg:    cfg,
		log:    log.With().Str("component", "handlers.file").Logger(),
	}
}

// Upload handles POST /api/files/upload. The request is multipart form data;
// mode selects the payload source: the "file" part (attachment), the
// "content" field (base64) or the "url" field.
func (h *FileHandler) Upload(c *gin.Context) {
	params := storage.UploadParams{
		Bucket:      c.PostForm("bucket"),
		StorageType: c.PostForm("storage_type"),
		UploadPath:  c.PostForm("path"),
		Filename:    c.PostForm("filename"),
		Mimetype:    c.PostForm("mimetype"),
		Mode:        c.PostForm("mode"),
		Content:     c.PostForm("content"),
		URL:         c.PostForm("url"),
	}
	params.Exp, _ = strconv.ParseInt(c.DefaultPostForm("exp", "3600"), 10, 64)
	params.Retention, _ = strconv.ParseInt(c.PostForm("retention"), 10, 64)
	params.Overwrite = c.PostForm("overwrite") == "true"

	if userID, ok := c.Get(middleware.UserIDKey); ok {
		uid := userID.(uuid.UUID)
		params.UserID = &uid
	}

	if params.Mode == models.ModeAttachment {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, fmt.Errorf("%w: no file uploaded", storage.ErrValidation))
			return
		}
		tempPath := filepath.Join(os.TempDir(), "upload_"+shortuuid.New())
		if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
			respondError(c, fmt.Errorf("save uploaded file: %w", err))
			return
		}
		params.Attachment = &storage.AttachmentPayload{
			Path:         tempPath,
			OriginalName: fileHeader.Filename,
			Mimetype:     fileHeader.Header.Get("Content-Type"),
		}
	}

	record, err := h.engine.Upload(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("File %q uploaded successfully.", record.FileName),
		"data":    record,
	})
}

// Download handles GET /download/:token. The token gates access: it is
// verified before the record is even loaded. Local files stream back
// directly; S3 records redirect to a presigned URL.
func (h *FileHandler) Download(c *gin.Context) {
	payload, err := token.Decode(h.cfg.Auth.DownloadTokenSecret, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	params := storage.DownloadParams{
		FileID:        payload.ID,
		Bucket:        payload.Bucket,
		ForceDownload: c.Query("download") == "true",
	}
	params.Exp, _ = strconv.ParseInt(c.Query("exp"), 10, 64)

	result, err := h.engine.Download(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	h.recordDownload(c, result.Record)

	if result.SignedURL != nil {
		c.Redirect(http.StatusFound, result.SignedURL.DownloadURL)
		return
	}

	defer result.Body.Close()
	h.streamFile(c, result, params.ForceDownload)
}

func (h *FileHandler) streamFile(c *gin.Context, result *storage.DownloadResult, forceDownload bool) {
	record := result.Record

	disposition := "inline"
	if forceDownload {
		disposition = "attachment"
	}
	mimetype := record.Mimetype
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("%s; filename=%q", disposition, record.FileName),
	}

	if record.Size != nil {
		c.DataFromReader(http.StatusOK, *record.Size, mimetype, result.Body, extraHeaders)
		return
	}

	c.Header("Content-Disposition", extraHeaders["Content-Disposition"])
	c.Header("Content-Type", mimetype)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, result.Body); err != nil {
		h.log.Warn().Err(err).Str("file_id", record.ID.String()).Msg("stream interrupted")
	}
}

func (h *FileHandler) recordDownload(c *gin.Context, record *models.File) {
	event := &models.DownloadEvent{
		FileID:    record.ID,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.files.RecordDownload(c.Request.Context(), event); err != nil {
		h.log.Warn().Err(err).Str("file_id", record.ID.String()).Msg("failed to record download event")
	}
}

// Share handles POST /api/files/:id/share: it issues a signed download token
// URL for an existing record. With ?qr=1 the response is a QR code PNG of
// that URL instead of JSON.
func (h *FileHandler) Share(c *gin.Context) {
	fileID := c.Param("id")
	bucket := c.Query("bucket")
	if bucket == "" {
		respondError(c, fmt.Errorf("%w: bucket is required", storage.ErrValidation))
		return
	}

	record, err := h.files.GetFileByID(c.Request.Context(), fileID, bucket)
	if err != nil {
		respondError(c, err)
		return
	}
	if record == nil {
		respondError(c, storage.ErrNotFound)
		return
	}
	if record.IsBlocked() {
		respondError(c, storage.ErrBlocked)
		return
	}

	ttl, _ := strconv.ParseInt(c.DefaultQuery("exp", "3600"), 10, 64)
	if ttl <= 0 {
		ttl = 3600
	}

	tok, err := token.Encode(h.cfg.Auth.DownloadTokenSecret, fileID, ttl, bucket)
	if err != nil {
		respondError(c, err)
		return
	}

	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}
	downloadURL := fmt.Sprintf("%s://%s/download/%s", scheme, c.Request.Host, tok)

	if c.Query("qr") == "1" {
		png, err := qrcode.Encode(downloadURL, qrcode.Medium, 256)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"file_name":    record.FileName,
			"download_url": downloadURL,
			"expires_in":   ttl,
		},
	})
}
