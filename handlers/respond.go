package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basit/bucketstore-backend/storage"
	"github.com/basit/bucketstore-backend/token"
)

// respondError maps an engine or token error to a status code and the
// uniform failure envelope. No raw internals leak past this point.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, token.ErrExpired):
		return http.StatusGone
	case errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrBlocked):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrFileExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrValidation),
		errors.Is(err, storage.ErrUnresolvedBucket),
		errors.Is(err, storage.ErrBucketNotFound),
		errors.Is(err, storage.ErrFetchFailed),
		errors.Is(err, storage.ErrHTMLNotAllowed),
		errors.Is(err, storage.ErrUnsupportedStorage):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrConfig):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
