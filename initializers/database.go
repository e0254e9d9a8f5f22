package initializers

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/basit/bucketstore-backend/models"
)

// ConnectDatabase opens the Postgres connection pool and migrates the schema.
// The handle is created once at startup and passed to whoever needs it.
func ConnectDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.DownloadEvent{},
	); err != nil {
		return nil, fmt.Errorf("migrate database schema: %w", err)
	}

	return db, nil
}
