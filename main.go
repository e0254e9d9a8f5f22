package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/basit/bucketstore-backend/auth/middleware"
	"github.com/basit/bucketstore-backend/config"
	"github.com/basit/bucketstore-backend/handlers"
	"github.com/basit/bucketstore-backend/initializers"
	"github.com/basit/bucketstore-backend/jobs"
	"github.com/basit/bucketstore-backend/models"
	"github.com/basit/bucketstore-backend/routes"
	"github.com/basit/bucketstore-backend/storage"
	"github.com/basit/bucketstore-backend/store"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := initializers.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("database connected and migrated")

	fileStore := store.NewFileStore(db)
	userStore := store.NewUserStore(db)

	backends := map[string]storage.Backend{}

	local, err := storage.NewLocalBackend(cfg.Local, log)
	if err != nil {
		log.Fatal().Err(err).Msg("local storage init failed")
	}
	backends[models.StorageLocal] = local

	if cfg.S3.Enabled() {
		s3Backend, err := storage.NewS3Backend(context.Background(), cfg.S3, log)
		if err != nil {
			log.Fatal().Err(err).Msg("s3 storage init failed")
		}
		backends[models.StorageS3] = s3Backend
		log.Info().Str("bucket", cfg.S3.Bucket).Str("region", cfg.S3.Region).Msg("s3 backend enabled")
	}

	engine := storage.NewEngine(fileStore, backends, log)

	fileHandler := handlers.NewFileHandler(engine, fileStore, cfg, log)
	authHandler := handlers.NewAuthHandler(userStore, cfg, log)

	jobs.NewCleanup(fileStore, engine, log).Start(context.Background())

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.NewRateLimiter(1, 5).Middleware())

	routes.Register(router, fileHandler, authHandler, cfg.Auth.JWTSecret)

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
