package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/basit/bucketstore-backend/auth/middleware"
	"github.com/basit/bucketstore-backend/handlers"
)

// Register wires all HTTP routes. The token download route is public — the
// token itself is the authorization; everything else under /api requires a
// logged-in user.
func Register(r *gin.Engine, fileHandler *handlers.FileHandler, authHandler *handlers.AuthHandler, jwtSecret string) {
	r.GET("/download/:token", fileHandler.Download)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(jwtSecret))

	api.POST("/files/upload", fileHandler.Upload)
	api.POST("/files/:id/share", fileHandler.Share)
	api.POST("/buckets", fileHandler.CreateBucket)
	api.GET("/buckets/:bucket/files", fileHandler.ListFiles)
	api.GET("/buckets/:bucket/dirs", fileHandler.ListDirs)
}
