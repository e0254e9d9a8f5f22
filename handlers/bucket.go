package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basit/bucketstore-backend/models"
	"github.com/basit/bucketstore-backend/storage"
)

// CreateBucket handles POST /api/buckets.
func (h *FileHandler) CreateBucket(c *gin.Context) {
	var body struct {
		BucketName  string `json:"bucket_name" binding:"required"`
		StorageType string `json:"storage_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, fmt.Errorf("%w: bucket_name is required", storage.ErrValidation))
		return
	}
	if body.StorageType == "" {
		body.StorageType = models.StorageLocal
	}

	status, err := h.engine.CreateBucket(c.Request.Context(), body.StorageType, body.BucketName)
	if err != nil {
		respondError(c, err)
		return
	}

	message := fmt.Sprintf("Bucket %q created successfully.", body.BucketName)
	if status == "exists" {
		message = fmt.Sprintf("Bucket %q already exists.", body.BucketName)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  status,
		"bucket":  body.BucketName,
		"message": message,
	})
}

// ListFiles handles GET /api/buckets/:bucket/files.
func (h *FileHandler) ListFiles(c *gin.Context) {
	bucket := c.Param("bucket")
	storageType := c.DefaultQuery("storage_type", models.StorageLocal)
	prefix := c.Query("path")

	files, err := h.engine.ListFiles(c.Request.Context(), storageType, bucket, prefix)
	if err != nil {
		respondError(c, err)
		return
	}
	if files == nil {
		files = []storage.ObjectInfo{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"bucket":   bucket,
		"filepath": prefix,
		"files":    files,
	})
}

// ListDirs handles GET /api/buckets/:bucket/dirs.
func (h *FileHandler) ListDirs(c *gin.Context) {
	bucket := c.Param("bucket")
	storageType := c.DefaultQuery("storage_type", models.StorageLocal)
	prefix := c.Query("path")

	dirs, err := h.engine.ListDirs(c.Request.Context(), storageType, bucket, prefix)
	if err != nil {
		respondError(c, err)
		return
	}
	if dirs == nil {
		dirs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"bucket":      bucket,
		"filepath":    prefix,
		"directories": dirs,
	})
}
