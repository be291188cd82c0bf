package storage

import (
	"fmt"

	"github.com/yi-nology/asset_bridge/pkg/storage/local"
	"github.com/yi-nology/asset_bridge/pkg/storage/s3"
)

// Config holds storage configuration.
type Config struct {
	Type  string
	Local LocalConfig
	S3    S3Config
}

// LocalConfig holds local storage configuration.
type LocalConfig struct {
	BasePath string
	URL      string
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PathStyle    bool
	PublicURL    string
	CacheControl string
}

// New creates a storage adapter based on configuration.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return local.New(cfg.Local.BasePath, cfg.Local.URL)

	case "s3":
		return s3.New(s3.Config{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			PathStyle:    cfg.S3.PathStyle,
			PublicURL:    cfg.S3.PublicURL,
			CacheControl: cfg.S3.CacheControl,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
