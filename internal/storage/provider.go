package storage

import (
	"Bookshelf/internal/config"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// New выбирает драйвер хранилища по конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (Storage, error) {
	logger.Infow("Selecting blob storage", "driver", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warnw("Memory blob storage selected: files are lost on restart")
		return NewMemoryStorage(), nil
	case config.StorageMinio:
		return NewMinioStorage(ctx, MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case config.StorageGCS:
		return NewGCSStorage(ctx, GCSConfig{
			Bucket:       cfg.GCSBucket,
			EmulatorHost: cfg.StorageEmulatorHost,
		})
	case config.StorageLocal, "":
		return NewLocalStorage(cfg.StorageRoot)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
