package storage

import (
	"fmt"

	"capidrive/config"
)

// NewClient creates a storage client from the application config
func NewClient(cfg *config.Config) (StorageInterface, error) {
	switch cfg.StorageProvider {
	case "local":
		return NewLocalClient(cfg.UploadPath)
	case "s3":
		return NewS3Client(&S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unsupported storage provider type: %s", cfg.StorageProvider)
	}
}
