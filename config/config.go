package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting the service needs, loaded once at startup.
type Config struct {
	Port        string
	DatabaseURL string
	Auth        AuthConfig
	Local       LocalConfig
	S3          S3Config
}

// AuthConfig covers the two token secrets used by the service: JWT for API
// auth and the HMAC secret for download tokens.
type AuthConfig struct {
	JWTSecret           string
	DownloadTokenSecret string
}

// LocalConfig configures the local filesystem backend.
type LocalConfig struct {
	// BaseDir is the root directory under which bucket directories live.
	BaseDir string
}

// S3Config configures the S3 (or S3-compatible) backend.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	Folder          string
	ACL             string
}

// Load reads .env (if present) and the environment into a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DB_URL"),
		Auth: AuthConfig{
			JWTSecret:           os.Getenv("JWT_SECRET"),
			DownloadTokenSecret: os.Getenv("DOWNLOAD_TOKEN_SECRET"),
		},
		Local: LocalConfig{
			BaseDir: os.Getenv("BASE_STORAGE_PATH"),
		},
		S3: S3Config{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Region:          os.Getenv("AWS_REGION"),
			Endpoint:        os.Getenv("AWS_ENDPOINT"),
			Bucket:          os.Getenv("AWS_BUCKET_NAME"),
			Folder:          os.Getenv("AWS_BUCKET_FOLDER"),
			ACL:             getEnv("AWS_BUCKET_ACL", "private"),
		},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Local.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		c.Local.BaseDir = filepath.Join(wd, "buckets")
	}
}

// Validate checks settings that must be present for the service to start.
// S3 credential validation happens separately so a local-only deployment can
// run without AWS settings.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("config: DB_URL is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("config: JWT_SECRET is required"))
	}
	if c.Auth.DownloadTokenSecret == "" {
		errs = append(errs, errors.New("config: DOWNLOAD_TOKEN_SECRET is required"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks that the S3 settings are complete enough to build a client.
func (c *S3Config) Validate() error {
	var errs []error
	if c.AccessKeyID == "" {
		errs = append(errs, errors.New("s3: access key id is required"))
	}
	if c.SecretAccessKey == "" {
		errs = append(errs, errors.New("s3: secret access key is required"))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("s3: region is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("s3: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Enabled reports whether any S3 settings were supplied at all.
func (c *S3Config) Enabled() bool {
	return c.AccessKeyID != "" || c.SecretAccessKey != "" || c.Region != "" || c.Bucket != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt reads an integer environment variable with a fallback.
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
